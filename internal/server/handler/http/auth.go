// Package http provides the relay's HTTP handlers and router.
package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/atinyakov/SecureTalk/internal/errs"
	"go.uber.org/zap"
)

// AuthService defines the account operations required by AuthHandler.
type AuthService interface {
	// Register returns errs.ErrUserExists for a taken username.
	Register(ctx context.Context, username, password string) error
	// Login returns errs.ErrUserNotFound or errs.ErrWrongPassword on failure.
	Login(ctx context.Context, username, password string) error
}

// AuthHandler handles registration and password login.
type AuthHandler struct {
	// AuthService performs the underlying account operations.
	AuthService AuthService
	// Log receives internal errors.
	Log *zap.Logger
}

// CredentialsRequest is the body of /register and /login.
type CredentialsRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Register handles POST /register.
// A taken username is answered with 400.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if err := bind(r, &req); err != nil {
		http.Error(w, "Missing username or password", http.StatusBadRequest)
		return
	}

	err := h.AuthService.Register(r.Context(), req.Username, req.Password)
	switch {
	case err == nil:
		writeText(w, "Registered successfully")
	case errors.Is(err, errs.ErrUserExists):
		http.Error(w, "Username already exists", http.StatusBadRequest)
	default:
		h.Log.Error("register failed", zap.String("username", req.Username), zap.Error(err))
		http.Error(w, "Server error", http.StatusInternalServerError)
	}
}

// Login handles POST /login. Success issues no token: every later call
// names its user in the request body.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if err := bind(r, &req); err != nil {
		http.Error(w, "Missing username or password", http.StatusBadRequest)
		return
	}

	err := h.AuthService.Login(r.Context(), req.Username, req.Password)
	switch {
	case err == nil:
		writeText(w, "Login successful")
	case errors.Is(err, errs.ErrUserNotFound):
		http.Error(w, "User not found", http.StatusUnauthorized)
	case errors.Is(err, errs.ErrWrongPassword):
		http.Error(w, "Wrong password", http.StatusForbidden)
	default:
		h.Log.Error("login failed", zap.String("username", req.Username), zap.Error(err))
		http.Error(w, "Server error", http.StatusInternalServerError)
	}
}
