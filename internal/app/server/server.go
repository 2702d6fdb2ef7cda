package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"roster/internal/domain/audit"
	"roster/internal/domain/auth"
	"roster/internal/domain/notifications"
	"roster/internal/domain/schedule"
	"roster/internal/domain/timesheet"
	"roster/internal/domain/unavailability"
	"roster/internal/domain/workers"
	"roster/internal/platform/clock"
	"roster/internal/platform/config"
	"roster/internal/platform/db"
	"roster/internal/platform/email"
	"roster/internal/platform/i18n"
	"roster/internal/platform/jobs"
	"roster/internal/platform/metrics"
	audithandler "roster/internal/transport/http/handlers/audit"
	authhandler "roster/internal/transport/http/handlers/auth"
	notificationshandler "roster/internal/transport/http/handlers/notifications"
	schedulehandler "roster/internal/transport/http/handlers/schedule"
	timesheethandler "roster/internal/transport/http/handlers/timesheet"
	unavailabilityhandler "roster/internal/transport/http/handlers/unavailability"
	workershandler "roster/internal/transport/http/handlers/workers"
	"roster/internal/transport/http/middleware"
)

func Run() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("config invalid", "err", err)
		os.Exit(1)
	}

	clk, err := clock.New(cfg.Timezone)
	if err != nil {
		slog.Error("timezone load failed", "timezone", cfg.Timezone, "err", err)
		os.Exit(1)
	}
	i18n.Init(cfg.Locale)

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		slog.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, "migrations"); err != nil {
			slog.Error("migrations failed", "err", err)
			os.Exit(1)
		}
	}
	if cfg.RunSeed {
		if err := db.Seed(ctx, pool, cfg); err != nil {
			slog.Error("seed failed", "err", err)
			os.Exit(1)
		}
	}

	userStore := auth.NewStore(pool)
	workerStore := workers.NewStore(pool)
	scheduleStore := schedule.NewStore(pool)
	unavailabilityStore := unavailability.NewStore(pool)
	entryStore := timesheet.NewStore(pool)
	notificationStore := notifications.NewStore(pool)
	auditSvc := audit.New(pool)

	mailer := email.New(cfg)
	notifySvc := notifications.NewService(notificationStore, mailer, clk, cfg.Locale)

	unavailabilitySvc := unavailability.NewService(unavailabilityStore, scheduleStore)
	unavailabilitySvc.Tx = db.NewTxRunner(pool)
	timesheetSvc := timesheet.NewService(entryStore, scheduleStore, clk)
	scanner := timesheet.NewScanner(scheduleStore, entryStore, workerStore, notifySvc, clk)
	// The scanner doubles as the reminder re-checker for notification reads.
	notifySvc.Checker = scanner

	collector := metrics.New()
	jobsSvc := jobs.New(pool, cfg, scanner, clk, collector)
	jobsSvc.Start(ctx)

	router := buildRouter(cfg, pool, collector, clk, routerDeps{
		users:          userStore,
		workers:        workerStore,
		schedule:       scheduleStore,
		unavailability: unavailabilitySvc,
		timesheet:      timesheetSvc,
		scanner:        scanner,
		notifications:  notifySvc,
		jobs:           jobsSvc,
		audit:          auditSvc,
	})

	slog.Info("server listening", "addr", cfg.Addr, "timezone", cfg.Timezone)
	if err := http.ListenAndServe(cfg.Addr, router); err != nil {
		slog.Error("server failed", "err", err)
		os.Exit(1)
	}
}

type routerDeps struct {
	users          *auth.Store
	workers        workers.StoreAPI
	schedule       schedule.StoreAPI
	unavailability *unavailability.Service
	timesheet      *timesheet.Service
	scanner        *timesheet.Scanner
	notifications  *notifications.Service
	jobs           *jobs.Service
	audit          *audit.Service
}

func buildRouter(cfg config.Config, pool *pgxpool.Pool, collector *metrics.Collector, clk clock.Clock, deps routerDeps) http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	// outside the limiter and the recoverer so 429s and recovered 500s are
	// counted
	if cfg.MetricsEnabled {
		router.Use(middleware.Metrics(collector))
	}
	router.Use(middleware.Recoverer)
	router.Use(middleware.SecureHeaders(cfg.Environment == "production"))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.Auth(cfg.JWTSecret))
	router.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := pool.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})
	if cfg.MetricsEnabled {
		router.With(middleware.RequireManager).Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			if err := json.NewEncoder(w).Encode(collector.Snapshot()); err != nil {
				slog.Warn("metrics write failed", "err", err)
			}
		})
	}

	router.Route("/api/v1", func(r chi.Router) {
		authhandler.NewHandler(deps.users, deps.workers, cfg.JWTSecret).RegisterRoutes(r)
		workershandler.NewHandler(deps.workers).RegisterRoutes(r)
		schedulehandler.NewHandler(deps.schedule, clk).RegisterRoutes(r)
		unavailabilityhandler.NewHandler(deps.unavailability, deps.audit).RegisterRoutes(r)
		timesheethandler.NewHandler(deps.timesheet, deps.scanner, deps.jobs, deps.audit, clk).RegisterRoutes(r)
		notificationshandler.NewHandler(deps.notifications).RegisterRoutes(r)
		audithandler.NewHandler(deps.audit).RegisterRoutes(r)
	})

	return router
}
