package models

import (
	"time"

	"github.com/google/uuid"
)

// Profile holds the onboarding assessment result for a user. It is written
// once when onboarding completes and read-only afterwards.
type Profile struct {
	UserID                 uuid.UUID         `json:"user_id"`
	Name                   string            `json:"name"`
	Age                    string            `json:"age"`
	ConscientiousnessScore int               `json:"c_score"`
	OpennessScore          int               `json:"o_score"`
	Essays                 map[string]string `json:"essays,omitempty"`
	CreatedAt              time.Time         `json:"created_at"`
}

// GuestProfile returns the fallback profile used when no persisted profile is
// available (guest access or offline mode).
func GuestProfile(userID uuid.UUID) *Profile {
	return &Profile{
		UserID:                 userID,
		Name:                   "Student",
		Age:                    "18",
		ConscientiousnessScore: 50,
		OpennessScore:          50,
	}
}
