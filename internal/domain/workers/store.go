package workers

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"roster/internal/platform/querier"
)

var ErrNotFound = errors.New("worker not found")

type Store struct {
	DB querier.Querier
}

func NewStore(db querier.Querier) *Store {
	return &Store{DB: db}
}

const workerColumns = `id, COALESCE(user_id::text, ''), full_name, email, active, archived, ordinary, management, created_at`

func (s *Store) Get(ctx context.Context, id string) (Worker, error) {
	return s.getBy(ctx, "id", id)
}

func (s *Store) GetByUserID(ctx context.Context, userID string) (Worker, error) {
	return s.getBy(ctx, "user_id", userID)
}

func (s *Store) getBy(ctx context.Context, column, value string) (Worker, error) {
	var w Worker
	err := s.DB.QueryRow(ctx, `
    SELECT `+workerColumns+`
    FROM workers
    WHERE `+column+` = $1
  `, value).Scan(&w.ID, &w.UserID, &w.FullName, &w.Email, &w.Active, &w.Archived, &w.Ordinary, &w.Management, &w.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Worker{}, ErrNotFound
	}
	return w, err
}

func (s *Store) ListEligible(ctx context.Context) ([]Worker, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT `+workerColumns+`
    FROM workers
    WHERE active AND NOT archived AND (ordinary OR NOT management)
    ORDER BY full_name
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectWorkers(rows)
}

func (s *Store) List(ctx context.Context, limit, offset int) ([]Worker, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT `+workerColumns+`
    FROM workers
    ORDER BY full_name
    LIMIT $1 OFFSET $2
  `, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectWorkers(rows)
}

func collectWorkers(rows pgx.Rows) ([]Worker, error) {
	var out []Worker
	for rows.Next() {
		var w Worker
		if err := rows.Scan(&w.ID, &w.UserID, &w.FullName, &w.Email, &w.Active, &w.Archived, &w.Ordinary, &w.Management, &w.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}
