package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/syntra-learn/syntra-api/internal/models"
)

// ProfileRepository handles onboarding profile database operations
type ProfileRepository struct {
	db *DB
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(db *DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// Create stores the onboarding result. Profiles are written once; a second
// write for the same user fails on the primary key.
func (r *ProfileRepository) Create(ctx context.Context, profile *models.Profile) error {
	essaysJSON, err := json.Marshal(profile.Essays)
	if err != nil {
		return fmt.Errorf("failed to marshal essays: %w", err)
	}

	query := `
		INSERT INTO profiles (user_id, name, age, c_score, o_score, essays, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`

	err = r.db.QueryRowContext(ctx, query,
		profile.UserID,
		profile.Name,
		profile.Age,
		profile.ConscientiousnessScore,
		profile.OpennessScore,
		essaysJSON,
		time.Now(),
	).Scan(&profile.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create profile: %w", err)
	}

	return nil
}

// GetByUserID retrieves a user's profile. Returns sql.ErrNoRows when the
// user has not completed onboarding.
func (r *ProfileRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	profile := &models.Profile{}
	var essaysJSON []byte

	query := `
		SELECT user_id, name, age, c_score, o_score, essays, created_at
		FROM profiles
		WHERE user_id = $1
	`

	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&profile.UserID,
		&profile.Name,
		&profile.Age,
		&profile.ConscientiousnessScore,
		&profile.OpennessScore,
		&essaysJSON,
		&profile.CreatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	if len(essaysJSON) > 0 {
		if err := json.Unmarshal(essaysJSON, &profile.Essays); err != nil {
			return nil, fmt.Errorf("failed to unmarshal essays: %w", err)
		}
	}

	return profile, nil
}
