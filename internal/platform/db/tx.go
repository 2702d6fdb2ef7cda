package db

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"roster/internal/domain/schedule"
	"roster/internal/domain/unavailability"
)

type txRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner hands out stores bound to a single pgx transaction, backing
// the atomic approval path.
func NewTxRunner(pool *pgxpool.Pool) unavailability.TxRunner {
	return txRunner{pool: pool}
}

func (t txRunner) InTx(ctx context.Context, fn func(unavailability.TxStores) error) error {
	tx, err := t.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	stores := unavailability.TxStores{
		Unavailabilities: unavailability.NewStore(tx),
		Schedule:         schedule.NewStore(tx),
	}
	if err := fn(stores); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}
