package notifications

import (
	"context"
	"log/slog"
	"time"

	"roster/internal/domain/workers"
	"roster/internal/platform/clock"
	"roster/internal/platform/i18n"
)

type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// MissingChecker re-evaluates whether a missing-hours reminder still holds.
// Implemented by the timesheet scanner; wired at startup.
type MissingChecker interface {
	StillMissing(ctx context.Context, workerID string, dates []time.Time) (bool, error)
}

type Service struct {
	Store   StoreAPI
	Mailer  Mailer
	Clock   clock.Clock
	Checker MissingChecker
	Locale  string
}

func NewService(store StoreAPI, mailer Mailer, clk clock.Clock, locale string) *Service {
	return &Service{Store: store, Mailer: mailer, Clock: clk, Locale: locale}
}

// CreateMissingHours records a missing-hours reminder for the worker. With
// dedup enabled (batch mode) the write is skipped when a same-type reminder
// already exists inside the trailing dedup window; the skip is reported, not
// an error. The read-then-create is not atomic; the rare duplicate from two
// racing scans is accepted.
func (s *Service) CreateMissingHours(ctx context.Context, worker workers.Worker, dates []time.Time, dedup bool) (bool, error) {
	if dedup {
		cutoff := s.Clock.Now().Add(-DedupWindow)
		exists, err := s.Store.ExistsSince(ctx, worker.ID, TypeMissingHours, cutoff)
		if err != nil {
			return false, err
		}
		if exists {
			return false, nil
		}
	}

	payload, err := EncodeDates(dates)
	if err != nil {
		return false, err
	}
	title := i18n.T(s.Locale, "missing_hours_title", nil)
	body := i18n.T(s.Locale, "missing_hours_body", map[string]any{
		"Dates": FormatDateList(dates, s.Locale),
	})

	if _, err := s.Store.CreateNotification(ctx, worker.ID, TypeMissingHours, title, body, payload); err != nil {
		return false, err
	}

	if s.Mailer != nil && worker.Email != "" {
		if err := s.Mailer.Send(ctx, worker.Email, title, body); err != nil {
			slog.Warn("missing-hours email send failed", "workerId", worker.ID, "err", err)
		}
	}
	return true, nil
}

// List returns the worker's notifications, newest first. Unread missing-hours
// reminders are re-checked against the current timesheet state and auto-marked
// read when the underlying condition has been resolved, so a worker is never
// shown a stale reminder.
func (s *Service) List(ctx context.Context, workerID string, limit, offset int) ([]Notification, error) {
	items, err := s.Store.ListForWorker(ctx, workerID, limit, offset)
	if err != nil {
		return nil, err
	}
	if s.Checker == nil {
		return items, nil
	}

	for i, n := range items {
		if n.Read || n.Type != TypeMissingHours || len(n.Dates) == 0 {
			continue
		}
		missing, err := s.Checker.StillMissing(ctx, workerID, n.Dates)
		if err != nil {
			slog.Warn("missing-hours recheck failed", "notificationId", n.ID, "err", err)
			continue
		}
		if missing {
			continue
		}
		if err := s.Store.MarkRead(ctx, workerID, n.ID); err != nil {
			slog.Warn("auto mark-read failed", "notificationId", n.ID, "err", err)
			continue
		}
		items[i].Read = true
	}
	return items, nil
}

func (s *Service) Count(ctx context.Context, workerID string) (int, error) {
	return s.Store.CountForWorker(ctx, workerID)
}

func (s *Service) MarkRead(ctx context.Context, workerID, notificationID string) error {
	return s.Store.MarkRead(ctx, workerID, notificationID)
}
