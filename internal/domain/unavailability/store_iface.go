package unavailability

import (
	"context"
	"time"
)

type StoreAPI interface {
	Create(ctx context.Context, u Unavailability) (Unavailability, error)
	Get(ctx context.Context, id string) (Unavailability, error)
	ListForWorker(ctx context.Context, workerID string, limit, offset int) ([]Unavailability, error)
	List(ctx context.Context, limit, offset int) ([]Unavailability, error)
	UpdateFields(ctx context.Context, id string, dateStart, dateEnd time.Time, startTime, endTime, note string) error
	UpdateNote(ctx context.Context, id, note string) error
	UpdateStatus(ctx context.Context, id, status string) error
	Delete(ctx context.Context, id string) error
}
