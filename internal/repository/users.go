// Package repository provides PostgreSQL persistence for users and relayed
// messages.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/atinyakov/SecureTalk/internal/errs"
	"github.com/atinyakov/SecureTalk/internal/models"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// uniqueViolation is the PostgreSQL SQLSTATE for a unique constraint violation.
const uniqueViolation = "23505"

// PostgresUserRepository implements user and key-material storage.
type PostgresUserRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresUserRepository creates a new PostgresUserRepository with the
// given database connection.
func NewPostgresUserRepository(db *sql.DB) *PostgresUserRepository {
	return &PostgresUserRepository{DB: db}
}

// FindByUsername loads the user with the given username.
// It returns errs.ErrNotFound when no such user exists.
func (r *PostgresUserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var (
		u       models.User
		key, iv sql.NullString
	)
	err := r.DB.QueryRowContext(ctx,
		`SELECT id, username, password, key, iv FROM users WHERE username = $1`,
		username,
	).Scan(&u.ID, &u.Username, &u.PasswordHash, &key, &iv)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errs.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	u.Key = key.String
	u.IV = iv.String
	return &u, nil
}

// Create inserts a new user. An empty ID is filled with a fresh UUID.
// A duplicate username is reported as errs.ErrUserExists.
func (r *PostgresUserRepository) Create(ctx context.Context, u *models.User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO users (id, username, password) VALUES ($1, $2, $3)`,
		u.ID, u.Username, u.PasswordHash,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return errs.ErrUserExists
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// UpdateKey sets key and iv on the named user. Updating an unknown username
// matches no rows and is not an error.
func (r *PostgresUserRepository) UpdateKey(ctx context.Context, username, key, iv string) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE users SET key = $2, iv = $3 WHERE username = $1`,
		username, key, iv,
	)
	if err != nil {
		return fmt.Errorf("update key: %w", err)
	}
	return nil
}

// GetKey returns the stored key material for username. It returns
// errs.ErrNotFound when the user does not exist or either value is unset.
func (r *PostgresUserRepository) GetKey(ctx context.Context, username string) (*models.KeyMaterial, error) {
	var key, iv sql.NullString
	err := r.DB.QueryRowContext(ctx,
		`SELECT key, iv FROM users WHERE username = $1`,
		username,
	).Scan(&key, &iv)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errs.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get key: %w", err)
	}
	if key.String == "" || iv.String == "" {
		return nil, errs.ErrNotFound
	}
	return &models.KeyMaterial{Key: key.String, IV: iv.String}, nil
}
