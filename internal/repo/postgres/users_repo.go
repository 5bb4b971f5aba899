package postgres

import (
	"context"
	"errors"

	"github.com/candyhaus/sweetshop/internal/domain/user"
	"github.com/candyhaus/sweetshop/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UsersRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewUsersRepo(pool *pgxpool.Pool, prom *observability.Prom) *UsersRepo {
	return &UsersRepo{pool: pool, prom: prom}
}

func (r *UsersRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

// Create inserts a new user. Email and username duplicates are each checked
// against their own column so both conflicts report accurately; the UNIQUE
// constraints remain the backstop for the check-then-insert race.
func (r *UsersRepo) Create(ctx context.Context, username, email, passwordHash, role string) (u user.User, err error) {
	var emailTaken, usernameTaken bool

	err = r.observe("users.create.duplicate_check", func() error {
		return r.pool.QueryRow(ctx, `
			SELECT
				EXISTS(SELECT 1 FROM users WHERE email = $1),
				EXISTS(SELECT 1 FROM users WHERE username = $2)
		`, email, username).Scan(&emailTaken, &usernameTaken)
	})

	if err != nil {
		return
	}

	if emailTaken {
		err = user.ErrDuplicateEmail
		return
	}

	if usernameTaken {
		err = user.ErrDuplicateUsername
		return
	}

	err = r.observe("users.create.insert", func() error {
		return r.pool.QueryRow(ctx, `
			INSERT INTO users (username, email, password_hash, role)
			VALUES ($1, $2, $3, $4)
			RETURNING id, username, email, password_hash, role, created_at
		`, username, email, passwordHash, role).Scan(
			&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt,
		)
	})

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			switch pgErr.ConstraintName {
			case "users_email_key":
				err = user.ErrDuplicateEmail
			case "users_username_key":
				err = user.ErrDuplicateUsername
			}
		}
		return
	}

	return
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (u user.User, err error) {
	err = r.observe("users.get_by_email", func() error {
		return r.pool.QueryRow(ctx, `
			SELECT id, username, email, password_hash, role, created_at
			FROM users
			WHERE email = $1
		`, email).Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = user.ErrNotFound
		}
		return
	}

	return
}
