package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/syntra-learn/syntra-api/internal/models"
)

// InboxRepository handles inbox message database operations
type InboxRepository struct {
	db *DB
}

// NewInboxRepository creates a new inbox repository
func NewInboxRepository(db *DB) *InboxRepository {
	return &InboxRepository{db: db}
}

// Create stores a new inbox message
func (r *InboxRepository) Create(ctx context.Context, msg *models.InboxMessage) error {
	query := `
		INSERT INTO inbox_messages (id, user_id, subject, body, read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`

	createdAt := time.Now()
	if msg.CreatedAt != nil {
		createdAt = *msg.CreatedAt
	}
	err := r.db.QueryRowContext(ctx, query,
		msg.ID,
		msg.UserID,
		msg.Subject,
		msg.Body,
		msg.Read,
		createdAt,
	).Scan(&msg.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create inbox message: %w", err)
	}

	return nil
}

// GetByUserID retrieves a user's inbox newest first
func (r *InboxRepository) GetByUserID(ctx context.Context, userID uuid.UUID) ([]models.InboxMessage, error) {
	query := `
		SELECT id, user_id, subject, body, read, created_at
		FROM inbox_messages
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list inbox messages: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var messages []models.InboxMessage
	for rows.Next() {
		var msg models.InboxMessage
		if err := rows.Scan(
			&msg.ID,
			&msg.UserID,
			&msg.Subject,
			&msg.Body,
			&msg.Read,
			&msg.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan inbox message: %w", err)
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate inbox messages: %w", err)
	}

	return messages, nil
}

// MarkRead flags a message as read
func (r *InboxRepository) MarkRead(ctx context.Context, id, userID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE inbox_messages SET read = TRUE WHERE id = $1 AND user_id = $2`,
		id, userID)
	if err != nil {
		return fmt.Errorf("failed to mark inbox message read: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check read update: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("inbox message not found: %w", sql.ErrNoRows)
	}

	return nil
}
