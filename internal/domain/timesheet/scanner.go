package timesheet

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"roster/internal/domain/schedule"
	"roster/internal/domain/workers"
	"roster/internal/platform/clock"
)

type ScanMode string

const (
	// ModeBatch is the scheduled population-wide run: it honors the dedup
	// window and tolerates per-worker failures.
	ModeBatch ScanMode = "batch"
	// ModeAdHoc is the on-demand admin run: it always creates, even inside
	// the dedup window.
	ModeAdHoc ScanMode = "adhoc"
)

type Notifier interface {
	CreateMissingHours(ctx context.Context, worker workers.Worker, dates []time.Time, dedup bool) (bool, error)
}

// Scanner finds (worker, date) pairs with a scheduled shift and no logged
// time entry, and emits deduplicated reminder notifications.
type Scanner struct {
	Schedule schedule.StoreAPI
	Entries  StoreAPI
	Workers  workers.StoreAPI
	Notify   Notifier
	Clock    clock.Clock
}

func NewScanner(scheduleStore schedule.StoreAPI, entries StoreAPI, workerStore workers.StoreAPI, notify Notifier, clk clock.Clock) *Scanner {
	return &Scanner{Schedule: scheduleStore, Entries: entries, Workers: workerStore, Notify: notify, Clock: clk}
}

type ScanResult struct {
	Created         int      `json:"created"`
	Skipped         int      `json:"skipped"`
	FailedWorkerIDs []string `json:"failedWorkerIds,omitempty"`
}

// Run scans the window [from, to]. Shifts dated today or later never count:
// a worker cannot be late logging hours for a shift that has not happened
// yet. One worker's failed notification write is counted and does not abort
// the rest of the fan-out.
func (s *Scanner) Run(ctx context.Context, from, to time.Time, mode ScanMode, targetWorkerID string) (ScanResult, error) {
	if to.Before(from) {
		return ScanResult{}, errors.New("scan window end before start")
	}

	scope, err := s.population(ctx, targetWorkerID)
	if err != nil {
		return ScanResult{}, err
	}
	if len(scope) == 0 {
		return ScanResult{}, nil
	}

	missing, err := s.missingByWorker(ctx, from, to, scope)
	if err != nil {
		return ScanResult{}, err
	}

	var result ScanResult
	for workerID, dates := range missing {
		created, err := s.Notify.CreateMissingHours(ctx, scope[workerID], dates, mode == ModeBatch)
		if err != nil {
			slog.Warn("missing-hours notification failed", "workerId", workerID, "err", err)
			result.FailedWorkerIDs = append(result.FailedWorkerIDs, workerID)
			continue
		}
		if created {
			result.Created++
		} else {
			result.Skipped++
		}
	}

	slog.Info("missing-hours scan finished",
		"mode", string(mode),
		"from", from.Format("2006-01-02"),
		"to", to.Format("2006-01-02"),
		"created", result.Created,
		"skipped", result.Skipped,
		"failed", len(result.FailedWorkerIDs),
	)
	return result, nil
}

// StillMissing re-evaluates a reminder's date set against the current
// schedule and timesheet. Backs the read-time reconciliation of stale
// notifications.
func (s *Scanner) StillMissing(ctx context.Context, workerID string, dates []time.Time) (bool, error) {
	if len(dates) == 0 {
		return false, nil
	}
	from, to := dates[0], dates[0]
	wanted := make(map[string]bool, len(dates))
	for _, d := range dates {
		d = clock.Midnight(d)
		wanted[d.Format("2006-01-02")] = true
		if d.Before(from) {
			from = d
		}
		if d.After(to) {
			to = d
		}
	}

	shifts, err := s.Schedule.ListShiftsForWorker(ctx, workerID, from, to)
	if err != nil {
		return false, err
	}
	today := s.Clock.Today()
	for _, a := range shifts {
		date := clock.Midnight(a.Date)
		if !clock.DayBefore(date, today) || !wanted[date.Format("2006-01-02")] {
			continue
		}
		exists, err := s.Entries.Exists(ctx, a.ID, workerID)
		if err != nil {
			return false, err
		}
		if !exists {
			return true, nil
		}
	}
	return false, nil
}

// population resolves the worker scope: the single target in ad hoc mode, or
// every eligible worker otherwise.
func (s *Scanner) population(ctx context.Context, targetWorkerID string) (map[string]workers.Worker, error) {
	if targetWorkerID != "" {
		w, err := s.Workers.Get(ctx, targetWorkerID)
		if err != nil {
			return nil, fmt.Errorf("resolve target worker: %w", err)
		}
		return map[string]workers.Worker{w.ID: w}, nil
	}

	eligible, err := s.Workers.ListEligible(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve worker population: %w", err)
	}
	scope := make(map[string]workers.Worker, len(eligible))
	for _, w := range eligible {
		scope[w.ID] = w
	}
	return scope, nil
}

func (s *Scanner) missingByWorker(ctx context.Context, from, to time.Time, scope map[string]workers.Worker) (map[string][]time.Time, error) {
	shifts, err := s.Schedule.ListShifts(ctx, from, to)
	if err != nil {
		return nil, err
	}

	keys, err := s.Entries.ListKeysBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}
	logged := make(map[EntryKey]bool, len(keys))
	for _, key := range keys {
		logged[key] = true
	}

	today := s.Clock.Today()
	missing := make(map[string][]time.Time)
	seen := make(map[string]bool)
	for _, a := range shifts {
		date := clock.Midnight(a.Date)
		if !clock.DayBefore(date, today) {
			continue
		}
		for _, workerID := range a.Members() {
			if _, ok := scope[workerID]; !ok {
				continue
			}
			if logged[EntryKey{AssignmentID: a.ID, WorkerID: workerID}] {
				continue
			}
			dayKey := workerID + "|" + date.Format("2006-01-02")
			if seen[dayKey] {
				continue
			}
			seen[dayKey] = true
			missing[workerID] = append(missing[workerID], date)
		}
	}
	return missing, nil
}
