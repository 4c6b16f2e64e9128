// Package service provides the relay's business logic: account
// registration and password checks, key storage and message relay. Each
// operation is a single repository call guarded by presence checks.
package service

import (
	"context"
	"errors"

	"github.com/atinyakov/SecureTalk/internal/crypto"
	"github.com/atinyakov/SecureTalk/internal/errs"
	"github.com/atinyakov/SecureTalk/internal/models"
)

// UserRepository defines the persistence operations on users required by
// AuthService and KeyService.
type UserRepository interface {
	// FindByUsername returns errs.ErrNotFound when the user does not exist.
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	// Create returns errs.ErrUserExists when the username is taken.
	Create(ctx context.Context, u *models.User) error
	// UpdateKey sets key material; an unknown username is a silent no-op.
	UpdateKey(ctx context.Context, username, key, iv string) error
	// GetKey returns errs.ErrNotFound when no key material is stored.
	GetKey(ctx context.Context, username string) (*models.KeyMaterial, error)
}

// AuthService implements registration and password login.
type AuthService struct {
	repo UserRepository

	hash   func(password string) (string, error)
	verify func(hash, password string) (bool, error)
}

// NewAuthService constructs an AuthService hashing with bcrypt.
func NewAuthService(repo UserRepository) *AuthService {
	return &AuthService{
		repo:   repo,
		hash:   crypto.HashPassword,
		verify: crypto.VerifyPassword,
	}
}

// Register creates a new user with a hashed password. It returns
// errs.ErrUserExists when the username is already registered, either
// by the pre-check or by a concurrent insert losing the race.
func (s *AuthService) Register(ctx context.Context, username, password string) error {
	_, err := s.repo.FindByUsername(ctx, username)
	switch {
	case err == nil:
		return errs.ErrUserExists
	case !errors.Is(err, errs.ErrNotFound):
		return err
	}

	hashed, err := s.hash(password)
	if err != nil {
		return err
	}

	return s.repo.Create(ctx, &models.User{Username: username, PasswordHash: hashed})
}

// Login checks password against the stored hash. It returns
// errs.ErrUserNotFound or errs.ErrWrongPassword on failure. No session is
// created.
func (s *AuthService) Login(ctx context.Context, username, password string) error {
	u, err := s.repo.FindByUsername(ctx, username)
	if errors.Is(err, errs.ErrNotFound) {
		return errs.ErrUserNotFound
	}
	if err != nil {
		return err
	}

	ok, err := s.verify(u.PasswordHash, password)
	if err != nil {
		return err
	}
	if !ok {
		return errs.ErrWrongPassword
	}
	return nil
}
