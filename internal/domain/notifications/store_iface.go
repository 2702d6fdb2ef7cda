package notifications

import (
	"context"
	"time"
)

type StoreAPI interface {
	CreateNotification(ctx context.Context, workerID, ntype, title, message string, datesPayload []byte) (string, error)
	ListForWorker(ctx context.Context, workerID string, limit, offset int) ([]Notification, error)
	CountForWorker(ctx context.Context, workerID string) (int, error)
	MarkRead(ctx context.Context, workerID, notificationID string) error
	// ExistsSince reports whether a notification of the given type for the
	// worker was created at or after the given instant.
	ExistsSince(ctx context.Context, workerID, ntype string, after time.Time) (bool, error)
}
