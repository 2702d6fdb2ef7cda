package timesheet

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"roster/internal/domain/schedule"
	"roster/internal/platform/querier"
)

const uniqueViolation = "23505"

type Store struct {
	DB querier.Querier
}

func NewStore(db querier.Querier) *Store {
	return &Store{DB: db}
}

const entryColumns = `id, assignment_id, worker_id, date, hours,
    COALESCE(actual_start, ''), COALESCE(actual_end, ''), breaks, COALESCE(note, ''), created_at`

func (s *Store) Create(ctx context.Context, e TimeEntry) (TimeEntry, error) {
	breaks, err := json.Marshal(e.Breaks)
	if err != nil {
		return TimeEntry{}, err
	}
	err = s.DB.QueryRow(ctx, `
    INSERT INTO time_entries (assignment_id, worker_id, date, hours, actual_start, actual_end, breaks, note)
    VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, ''), $7, NULLIF($8, ''))
    RETURNING id, created_at
  `, e.AssignmentID, e.WorkerID, e.Date, e.Hours, e.ActualStart, e.ActualEnd, breaks, e.Note).Scan(&e.ID, &e.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return TimeEntry{}, ErrDuplicateEntry
		}
		return TimeEntry{}, err
	}
	return e, nil
}

func (s *Store) Get(ctx context.Context, id string) (TimeEntry, error) {
	row := s.DB.QueryRow(ctx, `
    SELECT `+entryColumns+`
    FROM time_entries
    WHERE id = $1
  `, id)
	e, err := scanEntry(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return TimeEntry{}, ErrNotFound
	}
	return e, err
}

func (s *Store) Update(ctx context.Context, e TimeEntry) error {
	breaks, err := json.Marshal(e.Breaks)
	if err != nil {
		return err
	}
	tag, err := s.DB.Exec(ctx, `
    UPDATE time_entries
    SET hours = $1, actual_start = NULLIF($2, ''), actual_end = NULLIF($3, ''), breaks = $4, note = NULLIF($5, '')
    WHERE id = $6
  `, e.Hours, e.ActualStart, e.ActualEnd, breaks, e.Note, e.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	tag, err := s.DB.Exec(ctx, `DELETE FROM time_entries WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) ListForWorker(ctx context.Context, workerID string, from, to time.Time) ([]TimeEntry, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT `+entryColumns+`
    FROM time_entries
    WHERE worker_id = $1 AND date BETWEEN $2 AND $3
    ORDER BY date, created_at
  `, workerID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TimeEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) Exists(ctx context.Context, assignmentID, workerID string) (bool, error) {
	var exists bool
	err := s.DB.QueryRow(ctx, `
    SELECT EXISTS (SELECT 1 FROM time_entries WHERE assignment_id = $1 AND worker_id = $2)
  `, assignmentID, workerID).Scan(&exists)
	return exists, err
}

func (s *Store) ListKeysBetween(ctx context.Context, from, to time.Time) ([]EntryKey, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT assignment_id, worker_id
    FROM time_entries
    WHERE date BETWEEN $1 AND $2
  `, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EntryKey
	for rows.Next() {
		var key EntryKey
		if err := rows.Scan(&key.AssignmentID, &key.WorkerID); err != nil {
			return nil, err
		}
		out = append(out, key)
	}
	return out, rows.Err()
}

func scanEntry(row pgx.Row) (TimeEntry, error) {
	var e TimeEntry
	var breaks []byte
	if err := row.Scan(&e.ID, &e.AssignmentID, &e.WorkerID, &e.Date, &e.Hours,
		&e.ActualStart, &e.ActualEnd, &breaks, &e.Note, &e.CreatedAt); err != nil {
		return TimeEntry{}, err
	}
	if len(breaks) > 0 {
		var decoded []schedule.BreakWindow
		if err := json.Unmarshal(breaks, &decoded); err == nil {
			e.Breaks = decoded
		}
	}
	return e, nil
}
