package schedule

import (
	"context"
	"time"
)

type StoreAPI interface {
	GetAssignment(ctx context.Context, id string) (Assignment, error)
	// ListShifts returns every SHIFT assignment whose workday date falls in
	// [from, to], inclusive. ACTIVITY assignments are never returned.
	ListShifts(ctx context.Context, from, to time.Time) ([]Assignment, error)
	// ListShiftsForWorker narrows ListShifts to assignments whose worker set
	// contains workerID.
	ListShiftsForWorker(ctx context.Context, workerID string, from, to time.Time) ([]Assignment, error)
	// SaveWorkers persists the primary slot and attachment list of the given
	// assignment, leaving every other column untouched.
	SaveWorkers(ctx context.Context, a Assignment) error
}
