package timesheet

import (
	"context"
	"time"
)

type StoreAPI interface {
	Create(ctx context.Context, e TimeEntry) (TimeEntry, error)
	Get(ctx context.Context, id string) (TimeEntry, error)
	Update(ctx context.Context, e TimeEntry) error
	Delete(ctx context.Context, id string) error
	ListForWorker(ctx context.Context, workerID string, from, to time.Time) ([]TimeEntry, error)
	// Exists reports whether an entry is logged for the pair.
	Exists(ctx context.Context, assignmentID, workerID string) (bool, error)
	// ListKeysBetween returns every (assignment, worker) pair with an entry
	// whose date falls in [from, to]. Backs the batch scan.
	ListKeysBetween(ctx context.Context, from, to time.Time) ([]EntryKey, error)
}
