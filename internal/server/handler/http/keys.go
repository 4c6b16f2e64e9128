package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/atinyakov/SecureTalk/internal/errs"
	"github.com/atinyakov/SecureTalk/internal/models"
	"go.uber.org/zap"
)

// KeyService defines the key-material operations required by KeyHandler.
type KeyService interface {
	StoreKey(ctx context.Context, username, key, iv string) error
	// GetKey returns errs.ErrKeyNotFound when nothing is stored.
	GetKey(ctx context.Context, username string) (*models.KeyMaterial, error)
}

// KeyHandler handles /storekey and /getkey.
type KeyHandler struct {
	KeyService KeyService
	Log        *zap.Logger
}

// StoreKeyRequest is the body of /storekey. Key and IV are opaque.
type StoreKeyRequest struct {
	Username string `json:"username" validate:"required"`
	Key      string `json:"key" validate:"required"`
	IV       string `json:"iv" validate:"required"`
}

// UsernameRequest is the body of /getkey and /receive.
type UsernameRequest struct {
	Username string `json:"username" validate:"required"`
}

// StoreKey handles POST /storekey. The update is not checked against an
// existing user, so an unknown username still gets 200.
func (h *KeyHandler) StoreKey(w http.ResponseWriter, r *http.Request) {
	var req StoreKeyRequest
	if err := bind(r, &req); err != nil {
		http.Error(w, "Missing key or iv", http.StatusBadRequest)
		return
	}

	if err := h.KeyService.StoreKey(r.Context(), req.Username, req.Key, req.IV); err != nil {
		h.Log.Error("store key failed", zap.String("username", req.Username), zap.Error(err))
		http.Error(w, "Failed to store key", http.StatusInternalServerError)
		return
	}
	writeText(w, "Key stored")
}

// GetKey handles POST /getkey and answers {"key","iv"}.
func (h *KeyHandler) GetKey(w http.ResponseWriter, r *http.Request) {
	var req UsernameRequest
	if err := bind(r, &req); err != nil {
		http.Error(w, "Missing username", http.StatusBadRequest)
		return
	}

	km, err := h.KeyService.GetKey(r.Context(), req.Username)
	if errors.Is(err, errs.ErrKeyNotFound) {
		http.Error(w, "Key not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.Log.Error("get key failed", zap.String("username", req.Username), zap.Error(err))
		http.Error(w, "Failed to retrieve key", http.StatusInternalServerError)
		return
	}
	writeJSON(w, km)
}
