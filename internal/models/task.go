package models

import (
	"time"

	"github.com/google/uuid"
)

// Provenance records how a task came into existence
type Provenance string

const (
	// ProvenanceManual marks tasks the user typed in themselves
	ProvenanceManual Provenance = "manual"
	// ProvenanceAISmart marks tasks created by an [ADD: ...] chat directive
	ProvenanceAISmart Provenance = "ai-smart"
	// ProvenanceAIMagic marks tasks created by the goal "magic breakdown"
	ProvenanceAIMagic Provenance = "ai-magic"
)

// Task represents a planner task
type Task struct {
	ID         uuid.UUID  `json:"id"`
	UserID     uuid.UUID  `json:"user_id"`
	Text       string     `json:"text"`
	Done       bool       `json:"done"`
	Provenance Provenance `json:"provenance"`
	CreatedAt  *time.Time `json:"created_at,omitempty"`
	UpdatedAt  time.Time  `json:"updated_at"`
}
