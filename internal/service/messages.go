package service

import (
	"context"

	"github.com/atinyakov/SecureTalk/internal/models"
)

// MessageRepository defines the persistence operations on relayed messages.
type MessageRepository interface {
	// Insert stores msg and fills in its ID and Timestamp.
	Insert(ctx context.Context, msg *models.Message) error
	// FindByRecipient returns messages for recipient, oldest first.
	FindByRecipient(ctx context.Context, recipient string) ([]models.Message, error)
}

// MessageService relays opaque ciphertexts between users.
type MessageService struct {
	repo MessageRepository
}

// NewMessageService constructs a MessageService over repo.
func NewMessageService(repo MessageRepository) *MessageService {
	return &MessageService{repo: repo}
}

// Send stores a message from one identity to another. Neither identity is
// checked against registered users.
func (s *MessageService) Send(ctx context.Context, from, to, encrypted string) (*models.Message, error) {
	msg := &models.Message{From: from, To: to, Encrypted: encrypted}
	if err := s.repo.Insert(ctx, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

// Receive returns all messages for username, oldest first. Reading does not
// consume them. The result is never nil.
func (s *MessageService) Receive(ctx context.Context, username string) ([]models.Message, error) {
	msgs, err := s.repo.FindByRecipient(ctx, username)
	if err != nil {
		return nil, err
	}
	if msgs == nil {
		msgs = []models.Message{}
	}
	return msgs, nil
}
