package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/atinyakov/SecureTalk/internal/models"
	"github.com/google/uuid"
)

// PostgresMessageRepository implements the relay buffer against PostgreSQL.
type PostgresMessageRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresMessageRepository creates a new PostgresMessageRepository
// using the provided *sql.DB.
func NewPostgresMessageRepository(db *sql.DB) *PostgresMessageRepository {
	return &PostgresMessageRepository{DB: db}
}

// Insert stores msg. The ID is generated here and the timestamp is assigned
// by the database; both are written back into msg.
func (r *PostgresMessageRepository) Insert(ctx context.Context, msg *models.Message) error {
	msg.ID = uuid.NewString()
	err := r.DB.QueryRowContext(ctx, `
		INSERT INTO messages (id, sender, recipient, encrypted)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`, msg.ID, msg.From, msg.To, msg.Encrypted).Scan(&msg.Timestamp)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

// FindByRecipient returns every message addressed to recipient, oldest
// first. Messages are left in place.
func (r *PostgresMessageRepository) FindByRecipient(ctx context.Context, recipient string) ([]models.Message, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, sender, recipient, encrypted, created_at
		  FROM messages
		 WHERE recipient = $1
		 ORDER BY created_at ASC, seq ASC
	`, recipient)
	if err != nil {
		return nil, fmt.Errorf("find messages: %w", err)
	}
	defer rows.Close()

	messages := make([]models.Message, 0)
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(&m.ID, &m.From, &m.To, &m.Encrypted, &m.Timestamp); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}
	return messages, nil
}
