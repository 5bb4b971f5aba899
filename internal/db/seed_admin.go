package db

import (
	"context"
	"errors"

	"github.com/candyhaus/sweetshop/internal/config"
	"github.com/candyhaus/sweetshop/internal/domain/user"
	"github.com/candyhaus/sweetshop/internal/security"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureAdminUser seeds the configured admin account. Registration always
// produces role=user, so this is the only path that mints an admin.
func EnsureAdminUser(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return nil
	}

	// check if the user exists

	var dummy int64

	err := pool.QueryRow(ctx, `SELECT id FROM users WHERE email = $1`, cfg.AdminEmail).Scan(&dummy)

	if err == nil {
		return nil
	}

	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	hash, err := security.HashPassword(cfg.AdminPassword)

	if err != nil {
		return err
	}

	username := cfg.AdminUsername
	if username == "" {
		username = "admin"
	}

	_, err = pool.Exec(ctx,
		`INSERT INTO users (username, email, password_hash, role)
		VALUES ($1, $2, $3, $4)
		`,
		username, cfg.AdminEmail, hash, user.RoleAdmin,
	)

	return err
}
