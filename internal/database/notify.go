package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

// changeChannel is the Postgres NOTIFY channel carrying row change events
const changeChannel = "syntra_changes"

// Change describes one row mutation published over NOTIFY
type Change struct {
	Table  string `json:"table"`
	UserID string `json:"user_id"`
	Op     string `json:"op"`
}

// EnsureChangeTriggers installs the NOTIFY trigger on the tables the sync
// layer watches. Safe to run repeatedly.
func (db *DB) EnsureChangeTriggers(ctx context.Context) error {
	statements := []string{
		`CREATE OR REPLACE FUNCTION syntra_notify_change() RETURNS trigger AS $$
		DECLARE
			row_user UUID;
		BEGIN
			IF TG_OP = 'DELETE' THEN
				row_user := OLD.user_id;
			ELSE
				row_user := NEW.user_id;
			END IF;
			PERFORM pg_notify('` + changeChannel + `',
				json_build_object('table', TG_TABLE_NAME, 'user_id', row_user, 'op', TG_OP)::text);
			RETURN NULL;
		END;
		$$ LANGUAGE plpgsql`,
		`DROP TRIGGER IF EXISTS tasks_notify_change ON tasks`,
		`CREATE TRIGGER tasks_notify_change
			AFTER INSERT OR UPDATE OR DELETE ON tasks
			FOR EACH ROW EXECUTE FUNCTION syntra_notify_change()`,
		`DROP TRIGGER IF EXISTS roadmaps_notify_change ON roadmaps`,
		`CREATE TRIGGER roadmaps_notify_change
			AFTER INSERT OR UPDATE OR DELETE ON roadmaps
			FOR EACH ROW EXECUTE FUNCTION syntra_notify_change()`,
	}

	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to ensure change triggers: %w", err)
		}
	}
	return nil
}

// ChangeListener consumes row change notifications over a dedicated
// Postgres connection.
type ChangeListener struct {
	listener *pq.Listener
	logger   *zap.Logger
	changes  chan Change
}

// NewChangeListener opens the listening connection and subscribes to the
// change channel.
func NewChangeListener(databaseURL string, logger *zap.Logger) (*ChangeListener, error) {
	listener := pq.NewListener(databaseURL, 10*time.Second, time.Minute,
		func(event pq.ListenerEventType, err error) {
			if err != nil {
				logger.Warn("db_listener_event",
					zap.Int("event", int(event)),
					zap.Error(err))
			}
		})

	if err := listener.Listen(changeChannel); err != nil {
		_ = listener.Close()
		return nil, fmt.Errorf("failed to listen on %s: %w", changeChannel, err)
	}

	return &ChangeListener{
		listener: listener,
		logger:   logger,
		changes:  make(chan Change, 64),
	}, nil
}

// Changes returns the stream of decoded change events. The channel closes
// when Run returns.
func (l *ChangeListener) Changes() <-chan Change {
	return l.changes
}

// Run pumps notifications until the context is canceled. A nil notification
// signals a reconnect; it is forwarded as a zero-value Change so consumers
// can resynchronize their snapshots.
func (l *ChangeListener) Run(ctx context.Context) {
	defer close(l.changes)
	defer func() { _ = l.listener.Close() }()

	for {
		select {
		case <-ctx.Done():
			return
		case n, ok := <-l.listener.Notify:
			if !ok {
				return
			}
			if n == nil {
				// Connection re-established after an outage; events may
				// have been missed.
				select {
				case l.changes <- Change{}:
				case <-ctx.Done():
					return
				}
				continue
			}

			var change Change
			if err := json.Unmarshal([]byte(n.Extra), &change); err != nil {
				l.logger.Warn("db_listener_bad_payload", zap.Error(err))
				continue
			}
			select {
			case l.changes <- change:
			case <-ctx.Done():
				return
			}
		case <-time.After(90 * time.Second):
			go func() { _ = l.listener.Ping() }()
		}
	}
}
