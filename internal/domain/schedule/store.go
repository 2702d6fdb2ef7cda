package schedule

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"roster/internal/platform/querier"
)

var ErrNotFound = errors.New("assignment not found")

type Store struct {
	DB querier.Querier
}

func NewStore(db querier.Querier) *Store {
	return &Store{DB: db}
}

const assignmentColumns = `id, date, event, COALESCE(location, ''), kind,
    COALESCE(start_time, ''), COALESCE(end_time, ''),
    COALESCE(primary_worker_id::text, ''), attachments, breaks, created_at`

func (s *Store) GetAssignment(ctx context.Context, id string) (Assignment, error) {
	row := s.DB.QueryRow(ctx, `
    SELECT `+assignmentColumns+`
    FROM assignments
    WHERE id = $1
  `, id)
	a, err := scanAssignment(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Assignment{}, ErrNotFound
	}
	return a, err
}

func (s *Store) ListShifts(ctx context.Context, from, to time.Time) ([]Assignment, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT `+assignmentColumns+`
    FROM assignments
    WHERE kind = $1 AND date BETWEEN $2 AND $3
    ORDER BY date, created_at
  `, KindShift, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAssignments(rows)
}

func (s *Store) ListShiftsForWorker(ctx context.Context, workerID string, from, to time.Time) ([]Assignment, error) {
	memberFilter, err := json.Marshal([]map[string]string{{"workerId": workerID}})
	if err != nil {
		return nil, err
	}
	rows, err := s.DB.Query(ctx, `
    SELECT `+assignmentColumns+`
    FROM assignments
    WHERE kind = $1 AND date BETWEEN $2 AND $3
      AND (primary_worker_id::text = $4 OR attachments @> $5)
    ORDER BY date, created_at
  `, KindShift, from, to, workerID, memberFilter)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAssignments(rows)
}

func (s *Store) SaveWorkers(ctx context.Context, a Assignment) error {
	attachments, err := json.Marshal(a.Attachments)
	if err != nil {
		return err
	}
	tag, err := s.DB.Exec(ctx, `
    UPDATE assignments
    SET primary_worker_id = NULLIF($1, '')::uuid, attachments = $2, updated_at = now()
    WHERE id = $3
  `, a.PrimaryWorkerID, attachments, a.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("save workers for assignment %s: %w", a.ID, ErrNotFound)
	}
	return nil
}

func collectAssignments(rows pgx.Rows) ([]Assignment, error) {
	var out []Assignment
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func scanAssignment(row pgx.Row) (Assignment, error) {
	var a Assignment
	var attachments, breaks []byte
	if err := row.Scan(&a.ID, &a.Date, &a.Event, &a.Location, &a.Kind,
		&a.StartTime, &a.EndTime, &a.PrimaryWorkerID, &attachments, &breaks, &a.CreatedAt); err != nil {
		return Assignment{}, err
	}
	a.Attachments = decodeAttachments(attachments)
	a.Breaks = decodeBreaks(breaks)
	return a, nil
}

// decodeAttachments degrades malformed stored attachment data to "no
// attachments" so partially-migrated records never break a scan.
func decodeAttachments(raw []byte) []Attachment {
	if len(raw) == 0 {
		return nil
	}
	var out []Attachment
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return out
}

func decodeBreaks(raw []byte) []BreakWindow {
	if len(raw) == 0 {
		return nil
	}
	var out []BreakWindow
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return out
}
