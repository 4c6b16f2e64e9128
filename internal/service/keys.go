package service

import (
	"context"
	"errors"

	"github.com/atinyakov/SecureTalk/internal/errs"
	"github.com/atinyakov/SecureTalk/internal/models"
)

// KeyService stores and returns the opaque key material clients keep on
// the server.
type KeyService struct {
	repo UserRepository
}

// NewKeyService constructs a KeyService over repo.
func NewKeyService(repo UserRepository) *KeyService {
	return &KeyService{repo: repo}
}

// StoreKey saves key and iv verbatim for username. An unknown username is
// not reported.
func (s *KeyService) StoreKey(ctx context.Context, username, key, iv string) error {
	return s.repo.UpdateKey(ctx, username, key, iv)
}

// GetKey returns the stored key material or errs.ErrKeyNotFound.
func (s *KeyService) GetKey(ctx context.Context, username string) (*models.KeyMaterial, error) {
	km, err := s.repo.GetKey(ctx, username)
	if errors.Is(err, errs.ErrNotFound) {
		return nil, errs.ErrKeyNotFound
	}
	if err != nil {
		return nil, err
	}
	return km, nil
}
