package db

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"roster/internal/domain/auth"
	"roster/internal/platform/config"
)

// Seed provisions the initial admin account if it does not exist yet.
// Idempotent: re-running against a seeded database changes nothing.
func Seed(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	email := strings.ToLower(strings.TrimSpace(cfg.SeedAdminEmail))
	if email == "" {
		return nil
	}
	if cfg.SeedAdminPassword == "" {
		return errors.New("SEED_ADMIN_PASSWORD must be set when SEED_ADMIN_EMAIL is")
	}

	var existing string
	err := pool.QueryRow(ctx, `SELECT id FROM users WHERE email = $1`, email).Scan(&existing)
	if err == nil {
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	hash, err := auth.HashPassword(cfg.SeedAdminPassword)
	if err != nil {
		return err
	}
	_, err = pool.Exec(ctx, `
    INSERT INTO users (email, password_hash, role)
    VALUES ($1, $2, $3)
  `, email, hash, auth.RoleAdmin)
	return err
}
