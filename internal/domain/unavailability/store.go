package unavailability

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"roster/internal/platform/querier"
)

type Store struct {
	DB querier.Querier
}

func NewStore(db querier.Querier) *Store {
	return &Store{DB: db}
}

const unavailabilityColumns = `id, worker_id, date_start, date_end,
    COALESCE(start_time, ''), COALESCE(end_time, ''), COALESCE(note, ''), status, created_at`

func (s *Store) Create(ctx context.Context, u Unavailability) (Unavailability, error) {
	err := s.DB.QueryRow(ctx, `
    INSERT INTO unavailabilities (worker_id, date_start, date_end, start_time, end_time, note, status)
    VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), NULLIF($6, ''), $7)
    RETURNING id, created_at
  `, u.WorkerID, u.DateStart, u.DateEnd, u.StartTime, u.EndTime, u.Note, u.Status).Scan(&u.ID, &u.CreatedAt)
	return u, err
}

func (s *Store) Get(ctx context.Context, id string) (Unavailability, error) {
	var u Unavailability
	err := s.DB.QueryRow(ctx, `
    SELECT `+unavailabilityColumns+`
    FROM unavailabilities
    WHERE id = $1
  `, id).Scan(&u.ID, &u.WorkerID, &u.DateStart, &u.DateEnd, &u.StartTime, &u.EndTime, &u.Note, &u.Status, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Unavailability{}, ErrNotFound
	}
	return u, err
}

func (s *Store) ListForWorker(ctx context.Context, workerID string, limit, offset int) ([]Unavailability, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT `+unavailabilityColumns+`
    FROM unavailabilities
    WHERE worker_id = $1
    ORDER BY date_start DESC, created_at DESC
    LIMIT $2 OFFSET $3
  `, workerID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collect(rows)
}

func (s *Store) List(ctx context.Context, limit, offset int) ([]Unavailability, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT `+unavailabilityColumns+`
    FROM unavailabilities
    ORDER BY date_start DESC, created_at DESC
    LIMIT $1 OFFSET $2
  `, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collect(rows)
}

func (s *Store) UpdateFields(ctx context.Context, id string, dateStart, dateEnd time.Time, startTime, endTime, note string) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE unavailabilities
    SET date_start = $1, date_end = $2, start_time = NULLIF($3, ''), end_time = NULLIF($4, ''), note = NULLIF($5, '')
    WHERE id = $6
  `, dateStart, dateEnd, startTime, endTime, note, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) UpdateNote(ctx context.Context, id, note string) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE unavailabilities SET note = NULLIF($1, '') WHERE id = $2
  `, note, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) UpdateStatus(ctx context.Context, id, status string) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE unavailabilities SET status = $1 WHERE id = $2
  `, status, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	tag, err := s.DB.Exec(ctx, `DELETE FROM unavailabilities WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func collect(rows pgx.Rows) ([]Unavailability, error) {
	var out []Unavailability
	for rows.Next() {
		var u Unavailability
		if err := rows.Scan(&u.ID, &u.WorkerID, &u.DateStart, &u.DateEnd, &u.StartTime, &u.EndTime, &u.Note, &u.Status, &u.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}
