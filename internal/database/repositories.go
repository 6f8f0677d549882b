package database

import (
	"context"

	"github.com/google/uuid"

	"github.com/syntra-learn/syntra-api/internal/models"
)

// TaskRepositoryInterface defines the interface for task repository operations
// This interface enables better testability by allowing mock implementations
type TaskRepositoryInterface interface {
	Create(ctx context.Context, task *models.Task) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Task, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) ([]models.Task, error)
	Update(ctx context.Context, task *models.Task) error
	Delete(ctx context.Context, id, userID uuid.UUID) error
}

// ChatRepositoryInterface defines the interface for chat repository operations
type ChatRepositoryInterface interface {
	Append(ctx context.Context, msg *models.ChatMessage) error
	GetByUserID(ctx context.Context, userID uuid.UUID) ([]models.ChatMessage, error)
	GetRecent(ctx context.Context, userID uuid.UUID, limit int) ([]models.ChatMessage, error)
}

// RoadmapRepositoryInterface defines the interface for roadmap repository
// operations. The roadmap is a single document per user; node and notes
// edits go through the sync store, which rewrites the whole document so its
// offline mirror stays coherent.
type RoadmapRepositoryInterface interface {
	Upsert(ctx context.Context, roadmap *models.Roadmap) error
	GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Roadmap, error)
}

// ProfileRepositoryInterface defines the interface for profile repository operations
type ProfileRepositoryInterface interface {
	Create(ctx context.Context, profile *models.Profile) error
	GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
}

// InboxRepositoryInterface defines the interface for inbox repository operations
type InboxRepositoryInterface interface {
	Create(ctx context.Context, msg *models.InboxMessage) error
	GetByUserID(ctx context.Context, userID uuid.UUID) ([]models.InboxMessage, error)
	MarkRead(ctx context.Context, id, userID uuid.UUID) error
}

// UserRepositoryInterface defines the interface for user repository operations
type UserRepositoryInterface interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetOrCreate(ctx context.Context, email string, providerID, name *string) (*models.User, bool, error)
	GetOrCreateGuest(ctx context.Context) (*models.User, error)
}

// Ensure concrete types implement the interfaces
var (
	_ TaskRepositoryInterface    = (*TaskRepository)(nil)
	_ ChatRepositoryInterface    = (*ChatRepository)(nil)
	_ RoadmapRepositoryInterface = (*RoadmapRepository)(nil)
	_ ProfileRepositoryInterface = (*ProfileRepository)(nil)
	_ InboxRepositoryInterface   = (*InboxRepository)(nil)
	_ UserRepositoryInterface    = (*UserRepository)(nil)
)
