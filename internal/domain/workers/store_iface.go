package workers

import "context"

type StoreAPI interface {
	Get(ctx context.Context, id string) (Worker, error)
	GetByUserID(ctx context.Context, userID string) (Worker, error)
	// ListEligible returns the batch-scan population: active, non-archived
	// workers that are ordinary or not management.
	ListEligible(ctx context.Context) ([]Worker, error)
	List(ctx context.Context, limit, offset int) ([]Worker, error)
}
