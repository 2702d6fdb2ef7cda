package notifications

import (
	"context"
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

func (s *Store) CreateNotification(ctx context.Context, workerID, ntype, title, message string, datesPayload []byte) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO notifications (worker_id, type, title, message, dates)
    VALUES ($1, $2, $3, $4, $5)
    RETURNING id
  `, workerID, ntype, title, message, datesPayload).Scan(&id)
	return id, err
}

func (s *Store) ListForWorker(ctx context.Context, workerID string, limit, offset int) ([]Notification, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, worker_id, type, COALESCE(title, ''), message, dates, read_at IS NOT NULL, created_at
    FROM notifications
    WHERE worker_id = $1
    ORDER BY created_at DESC
    LIMIT $2 OFFSET $3
  `, workerID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (s *Store) CountForWorker(ctx context.Context, workerID string) (int, error) {
	var total int
	err := s.DB.QueryRow(ctx, `SELECT COUNT(1) FROM notifications WHERE worker_id = $1`, workerID).Scan(&total)
	return total, err
}

func (s *Store) MarkRead(ctx context.Context, workerID, notificationID string) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE notifications SET read_at = now()
    WHERE worker_id = $1 AND id = $2 AND read_at IS NULL
  `, workerID, notificationID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		// already read or not this worker's notification
		var exists bool
		if err := s.DB.QueryRow(ctx, `
      SELECT EXISTS (SELECT 1 FROM notifications WHERE worker_id = $1 AND id = $2)
    `, workerID, notificationID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return ErrNotFound
		}
	}
	return nil
}

func (s *Store) ExistsSince(ctx context.Context, workerID, ntype string, after time.Time) (bool, error) {
	var exists bool
	err := s.DB.QueryRow(ctx, `
    SELECT EXISTS (
      SELECT 1 FROM notifications
      WHERE worker_id = $1 AND type = $2 AND created_at >= $3
    )
  `, workerID, ntype, after).Scan(&exists)
	return exists, err
}

func scanNotification(row pgx.Row) (Notification, error) {
	var n Notification
	var dates []byte
	if err := row.Scan(&n.ID, &n.WorkerID, &n.Type, &n.Title, &n.Message, &dates, &n.Read, &n.CreatedAt); err != nil {
		return Notification{}, err
	}
	n.Dates = DecodeDates(dates)
	if n.Dates == nil {
		// legacy rows carry their dates only in the message text
		n.Dates = DatesFromMessage(n.Message)
	}
	return n, nil
}
