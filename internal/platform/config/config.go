package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Addr        string `env:"APP_ADDR" envDefault:":8080"`
	Environment string `env:"APP_ENV" envDefault:"development"`
	DatabaseURL string `env:"DATABASE_URL"`
	JWTSecret   string `env:"JWT_SECRET"`

	// Timezone is the single reference timezone every date-boundary decision
	// (today exclusion, future-date checks) is made in.
	Timezone string `env:"APP_TIMEZONE" envDefault:"Europe/Rome"`
	Locale   string `env:"APP_LOCALE" envDefault:"en"`

	// ScanInterval is how often the batch missing-hours scan runs;
	// ScanWindowDays is how far back each run looks.
	ScanInterval   time.Duration `env:"SCAN_INTERVAL" envDefault:"24h"`
	ScanWindowDays int           `env:"SCAN_WINDOW_DAYS" envDefault:"30"`

	EmailFrom    string `env:"EMAIL_FROM" envDefault:"no-reply@example.com"`
	EmailEnabled bool   `env:"EMAIL_ENABLED" envDefault:"false"`
	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUser     string `env:"SMTP_USER"`
	SMTPPassword string `env:"SMTP_PASSWORD"`
	SMTPUseTLS   bool   `env:"SMTP_USE_TLS" envDefault:"true"`

	SeedAdminEmail    string `env:"SEED_ADMIN_EMAIL"`
	SeedAdminPassword string `env:"SEED_ADMIN_PASSWORD"`

	RunMigrations bool `env:"RUN_MIGRATIONS" envDefault:"true"`
	RunSeed       bool `env:"RUN_SEED" envDefault:"true"`

	MaxBodyBytes       int64 `env:"MAX_BODY_BYTES" envDefault:"1048576"`
	RateLimitPerMinute int   `env:"RATE_LIMIT_PER_MINUTE" envDefault:"60"`
	MetricsEnabled     bool  `env:"METRICS_ENABLED" envDefault:"true"`
}

func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.Environment == "production" {
		if strings.TrimSpace(c.JWTSecret) == "" {
			return fmt.Errorf("JWT_SECRET must be set to a strong value in production")
		}
		if c.RunSeed && strings.TrimSpace(c.SeedAdminPassword) == "" {
			return fmt.Errorf("SEED_ADMIN_PASSWORD must be changed or RUN_SEED disabled in production")
		}
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("APP_TIMEZONE %q is not a valid zone: %w", c.Timezone, err)
	}
	if c.ScanWindowDays <= 0 {
		return fmt.Errorf("SCAN_WINDOW_DAYS must be positive")
	}
	if c.MaxBodyBytes < 1024 {
		return fmt.Errorf("MAX_BODY_BYTES must be at least 1024")
	}
	if c.RateLimitPerMinute <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must be positive")
	}
	if c.EmailEnabled && c.SMTPHost == "" {
		return fmt.Errorf("SMTP_HOST must be set when EMAIL_ENABLED is true")
	}
	return nil
}
