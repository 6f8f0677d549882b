package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/syntra-learn/syntra-api/internal/models"
)

// ChatRepository handles chat message database operations. Messages are
// append-only.
type ChatRepository struct {
	db *DB
}

// NewChatRepository creates a new chat repository
func NewChatRepository(db *DB) *ChatRepository {
	return &ChatRepository{db: db}
}

// Append stores one chat message
func (r *ChatRepository) Append(ctx context.Context, msg *models.ChatMessage) error {
	query := `
		INSERT INTO chat_messages (id, user_id, role, text, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, seq
	`

	createdAt := time.Now()
	if msg.CreatedAt != nil {
		createdAt = *msg.CreatedAt
	}
	err := r.db.QueryRowContext(ctx, query,
		msg.ID,
		msg.UserID,
		msg.Role,
		msg.Text,
		createdAt,
	).Scan(&msg.CreatedAt, &msg.Seq)

	if err != nil {
		return fmt.Errorf("failed to append chat message: %w", err)
	}

	return nil
}

// GetByUserID retrieves a user's conversation ordered oldest first
func (r *ChatRepository) GetByUserID(ctx context.Context, userID uuid.UUID) ([]models.ChatMessage, error) {
	query := `
		SELECT id, user_id, role, text, created_at, seq
		FROM chat_messages
		WHERE user_id = $1
		ORDER BY created_at ASC, seq ASC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list chat messages: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var messages []models.ChatMessage
	for rows.Next() {
		var msg models.ChatMessage
		if err := rows.Scan(
			&msg.ID,
			&msg.UserID,
			&msg.Role,
			&msg.Text,
			&msg.CreatedAt,
			&msg.Seq,
		); err != nil {
			return nil, fmt.Errorf("failed to scan chat message: %w", err)
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate chat messages: %w", err)
	}

	return messages, nil
}

// GetRecent retrieves the most recent limit messages, still ordered oldest
// first, for building model context windows.
func (r *ChatRepository) GetRecent(ctx context.Context, userID uuid.UUID, limit int) ([]models.ChatMessage, error) {
	query := `
		SELECT id, user_id, role, text, created_at, seq FROM (
			SELECT id, user_id, role, text, created_at, seq
			FROM chat_messages
			WHERE user_id = $1
			ORDER BY created_at DESC, seq DESC
			LIMIT $2
		) recent
		ORDER BY created_at ASC, seq ASC
	`

	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent chat messages: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var messages []models.ChatMessage
	for rows.Next() {
		var msg models.ChatMessage
		if err := rows.Scan(
			&msg.ID,
			&msg.UserID,
			&msg.Role,
			&msg.Text,
			&msg.CreatedAt,
			&msg.Seq,
		); err != nil {
			return nil, fmt.Errorf("failed to scan chat message: %w", err)
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate chat messages: %w", err)
	}

	return messages, nil
}
