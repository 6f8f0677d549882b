package store

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/syntra-learn/syntra-api/internal/database"
)

// WatchChanges consumes database change notifications and invalidates the
// affected mirrors so subsequent reads refetch. A zero-value change means
// the listener connection was re-established and events may have been
// missed, so every mirror is invalidated. Blocks until the channel closes
// or the context is canceled.
func (s *Sync) WatchChanges(ctx context.Context, changes <-chan database.Change) {
	for {
		select {
		case <-ctx.Done():
			return
		case change, ok := <-changes:
			if !ok {
				return
			}
			if change.UserID == "" {
				s.InvalidateAll()
				continue
			}
			userID, err := uuid.Parse(change.UserID)
			if err != nil {
				s.logger.Warn("sync_bad_change_user",
					zap.String("user_id", change.UserID),
					zap.Error(err))
				continue
			}
			s.Invalidate(userID)
		}
	}
}
