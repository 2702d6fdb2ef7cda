package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"roster/internal/domain/timesheet"
	"roster/internal/platform/clock"
	"roster/internal/platform/config"
	"roster/internal/platform/metrics"
)

const JobMissingHoursScan = "missing_hours_scan"

// Service runs background jobs on a single worker goroutine and records each
// run in job_runs for inspection.
type Service struct {
	DB      *pgxpool.Pool
	Cfg     config.Config
	Scanner *timesheet.Scanner
	Clock   clock.Clock
	Metrics *metrics.Collector
	queue   chan job
}

type job struct {
	Type string
	Run  func(context.Context) (any, error)
}

func New(db *pgxpool.Pool, cfg config.Config, scanner *timesheet.Scanner, clk clock.Clock, collector *metrics.Collector) *Service {
	return &Service{
		DB:      db,
		Cfg:     cfg,
		Scanner: scanner,
		Clock:   clk,
		Metrics: collector,
		queue:   make(chan job, 128),
	}
}

func (s *Service) Start(ctx context.Context) {
	go s.worker(ctx)
	if s.Cfg.ScanInterval > 0 {
		go s.scheduleScans(ctx, s.Cfg.ScanInterval)
	}
}

func (s *Service) Enqueue(jobType string, run func(context.Context) (any, error)) {
	select {
	case s.queue <- job{Type: jobType, Run: run}:
	default:
		slog.Warn("job queue full", "jobType", jobType)
	}
}

// RunNow executes the job synchronously, still recording a job_runs row.
func (s *Service) RunNow(ctx context.Context, jobType string, run func(context.Context) (any, error)) (any, error) {
	return s.runJob(ctx, job{Type: jobType, Run: run})
}

func (s *Service) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-s.queue:
			if _, err := s.runJob(ctx, j); err != nil {
				slog.Warn("job run failed", "jobType", j.Type, "err", err)
			}
		}
	}
}

func (s *Service) runJob(ctx context.Context, j job) (any, error) {
	runID := ""
	if err := s.DB.QueryRow(ctx, `
    INSERT INTO job_runs (job_type, status)
    VALUES ($1, $2)
    RETURNING id
  `, j.Type, "running").Scan(&runID); err != nil {
		slog.Warn("job run insert failed", "err", err)
	}

	details, err := j.Run(ctx)
	status := "completed"
	if err != nil {
		status = "failed"
	}
	detailsJSON, marshalErr := json.Marshal(details)
	if marshalErr != nil {
		slog.Warn("job details marshal failed", "err", marshalErr)
		detailsJSON = []byte("{}")
	}
	if runID != "" {
		if _, updErr := s.DB.Exec(ctx, `
      UPDATE job_runs
      SET status = $1, details_json = $2, completed_at = now()
      WHERE id = $3
    `, status, detailsJSON, runID); updErr != nil {
			slog.Warn("job run update failed", "err", updErr)
		}
	}
	return details, err
}

func (s *Service) scheduleScans(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Enqueue(JobMissingHoursScan, func(ctx context.Context) (any, error) {
				return s.batchScan(ctx)
			})
		}
	}
}

func (s *Service) batchScan(ctx context.Context) (timesheet.ScanResult, error) {
	to := s.Clock.Today()
	from := to.AddDate(0, 0, -s.Cfg.ScanWindowDays)
	res, err := s.Scanner.Run(ctx, from, to, timesheet.ModeBatch, "")
	if err == nil && s.Metrics != nil {
		s.Metrics.RecordScan(res.Created)
	}
	return res, err
}
