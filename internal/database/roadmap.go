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

// RoadmapRepository handles roadmap database operations. Each user owns at
// most one roadmap row; the node list is stored as a JSONB document.
type RoadmapRepository struct {
	db *DB
}

// NewRoadmapRepository creates a new roadmap repository
func NewRoadmapRepository(db *DB) *RoadmapRepository {
	return &RoadmapRepository{db: db}
}

// storedNode tolerates the legacy document shape where completion was a
// numeric progress value instead of a status string.
type storedNode struct {
	ID        int               `json:"id"`
	Label     string            `json:"label"`
	Details   string            `json:"details"`
	Resources []string          `json:"resources"`
	Status    models.NodeStatus `json:"status,omitempty"`
	Progress  *int              `json:"progress,omitempty"`
}

func (n storedNode) toModel() models.RoadmapNode {
	status := n.Status
	if status == "" {
		// Legacy documents carried progress 0-100 per node.
		status = models.NodeStatusPending
		if n.Progress != nil && *n.Progress >= 100 {
			status = models.NodeStatusDone
		}
	}
	return models.RoadmapNode{
		ID:        n.ID,
		Label:     n.Label,
		Details:   n.Details,
		Resources: n.Resources,
		Status:    status,
	}
}

// Upsert replaces the user's roadmap document
func (r *RoadmapRepository) Upsert(ctx context.Context, roadmap *models.Roadmap) error {
	data, err := json.Marshal(roadmap.Nodes)
	if err != nil {
		return fmt.Errorf("failed to marshal roadmap nodes: %w", err)
	}

	query := `
		INSERT INTO roadmaps (user_id, title, data, notes, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id) DO UPDATE
		SET title = EXCLUDED.title, data = EXCLUDED.data, notes = EXCLUDED.notes, updated_at = EXCLUDED.updated_at
		RETURNING updated_at
	`

	err = r.db.QueryRowContext(ctx, query,
		roadmap.UserID,
		roadmap.Title,
		data,
		roadmap.Notes,
		time.Now(),
	).Scan(&roadmap.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to upsert roadmap: %w", err)
	}

	return nil
}

// GetByUserID retrieves the user's roadmap, migrating legacy documents to
// the status-based node shape. Returns sql.ErrNoRows when the user has no
// roadmap yet.
func (r *RoadmapRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Roadmap, error) {
	roadmap := &models.Roadmap{}
	var data []byte

	query := `
		SELECT user_id, title, data, notes, updated_at
		FROM roadmaps
		WHERE user_id = $1
	`

	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&roadmap.UserID,
		&roadmap.Title,
		&data,
		&roadmap.Notes,
		&roadmap.UpdatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get roadmap: %w", err)
	}

	var stored []storedNode
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, fmt.Errorf("failed to unmarshal roadmap nodes: %w", err)
	}

	roadmap.Nodes = make([]models.RoadmapNode, len(stored))
	for i, n := range stored {
		roadmap.Nodes[i] = n.toModel()
	}

	return roadmap, nil
}

