package models

import (
	"time"

	"github.com/google/uuid"
)

// Role identifies the author of a chat message
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatMessage is one turn in the per-user conversation log. Messages are
// immutable once created and ordered by CreatedAt ascending; a nil CreatedAt
// (write not yet confirmed by the remote store) sorts after all timestamped
// messages.
type ChatMessage struct {
	ID        uuid.UUID  `json:"id"`
	UserID    uuid.UUID  `json:"user_id"`
	Role      Role       `json:"role"`
	Text      string     `json:"text"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
	Seq       int64      `json:"-"` // insertion order, breaks CreatedAt ties
}
