package models

import (
	"time"

	"github.com/google/uuid"
)

// InboxMessage is a notification delivered to a user's inbox, such as the
// AI-generated welcome email sent after onboarding.
type InboxMessage struct {
	ID        uuid.UUID  `json:"id"`
	UserID    uuid.UUID  `json:"user_id"`
	Subject   string     `json:"subject"`
	Body      string     `json:"body"`
	Read      bool       `json:"read"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}
