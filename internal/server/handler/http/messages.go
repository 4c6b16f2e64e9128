package http

import (
	"context"
	"net/http"

	"github.com/atinyakov/SecureTalk/internal/models"
	"go.uber.org/zap"
)

// MessageService defines the relay operations required by MessageHandler.
type MessageService interface {
	Send(ctx context.Context, from, to, encrypted string) (*models.Message, error)
	// Receive returns messages oldest first; never nil on success.
	Receive(ctx context.Context, username string) ([]models.Message, error)
}

// MessageHandler handles /send and /receive.
type MessageHandler struct {
	MessageService MessageService
	Log            *zap.Logger
}

// SendRequest is the body of /send.
type SendRequest struct {
	From      string `json:"from" validate:"required"`
	To        string `json:"to" validate:"required"`
	Encrypted string `json:"encrypted" validate:"required"`
}

// Send handles POST /send.
func (h *MessageHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req SendRequest
	if err := bind(r, &req); err != nil {
		http.Error(w, "Missing fields", http.StatusBadRequest)
		return
	}

	if _, err := h.MessageService.Send(r.Context(), req.From, req.To, req.Encrypted); err != nil {
		h.Log.Error("send failed", zap.String("from", req.From), zap.String("to", req.To), zap.Error(err))
		http.Error(w, "Failed to store message", http.StatusInternalServerError)
		return
	}
	writeText(w, "Message stored")
}

// Receive handles POST /receive. It polls without consuming.
func (h *MessageHandler) Receive(w http.ResponseWriter, r *http.Request) {
	var req UsernameRequest
	if err := bind(r, &req); err != nil {
		http.Error(w, "Missing username", http.StatusBadRequest)
		return
	}

	msgs, err := h.MessageService.Receive(r.Context(), req.Username)
	if err != nil {
		h.Log.Error("receive failed", zap.String("username", req.Username), zap.Error(err))
		http.Error(w, "Failed to retrieve messages", http.StatusInternalServerError)
		return
	}
	writeJSON(w, msgs)
}
