// Package store is the single choke point between the application and
// persisted planner state. It fronts the Postgres repositories with a
// per-user in-memory mirror so the application keeps working when the
// database is unreachable: writes land in a pending overlay, reads serve
// the merged view, and an explicit resync pushes pending records back to
// the remote once connectivity returns.
package store

import (
	"context"
	"database/sql"
	"errors"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/syntra-learn/syntra-api/internal/database"
	"github.com/syntra-learn/syntra-api/internal/models"
)

// mirror caches one user's last known remote state plus local writes the
// remote has not confirmed.
type mirror struct {
	tasks        []models.Task
	messages     []models.ChatMessage
	roadmap      *models.Roadmap
	pendingTasks map[uuid.UUID]models.Task
	pendingMsgs  []models.ChatMessage
	tasksFresh   bool
	msgsFresh    bool
}

func newMirror() *mirror {
	return &mirror{pendingTasks: make(map[uuid.UUID]models.Task)}
}

func (m *mirror) pendingTaskList() []models.Task {
	out := make([]models.Task, 0, len(m.pendingTasks))
	for _, t := range m.pendingTasks {
		out = append(out, t)
	}
	return out
}

// Sync mediates all task, chat and roadmap access
type Sync struct {
	tasks    database.TaskRepositoryInterface
	chat     database.ChatRepositoryInterface
	roadmaps database.RoadmapRepositoryInterface
	logger   *zap.Logger

	mu      sync.Mutex
	offline bool
	mirrors map[uuid.UUID]*mirror
}

// NewSync creates the sync store on top of the given repositories
func NewSync(tasks database.TaskRepositoryInterface, chat database.ChatRepositoryInterface, roadmaps database.RoadmapRepositoryInterface, logger *zap.Logger) *Sync {
	return &Sync{
		tasks:    tasks,
		chat:     chat,
		roadmaps: roadmaps,
		logger:   logger,
		mirrors:  make(map[uuid.UUID]*mirror),
	}
}

// Offline reports whether the store is serving from local state only
func (s *Sync) Offline() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.offline
}

func (s *Sync) mirrorFor(userID uuid.UUID) *mirror {
	m, ok := s.mirrors[userID]
	if !ok {
		m = newMirror()
		s.mirrors[userID] = m
	}
	return m
}

// goOffline records the remote failure and flips into local-only mode
func (s *Sync) goOffline(err error) {
	if !s.offline {
		s.logger.Warn("sync_offline", zap.Error(err))
	}
	s.offline = true
}

// Invalidate marks one user's cached snapshots stale so the next online
// read refetches them. Called from the change notification pump.
func (s *Sync) Invalidate(userID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m, ok := s.mirrors[userID]; ok {
		m.tasksFresh = false
		m.msgsFresh = false
		m.roadmap = nil
	}
}

// InvalidateAll marks every cached snapshot stale. Used after the listener
// connection is re-established and events may have been missed.
func (s *Sync) InvalidateAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.mirrors {
		m.tasksFresh = false
		m.msgsFresh = false
		m.roadmap = nil
	}
}

// ListTasks returns the merged task view for a user, CreatedAt ascending
// with unconfirmed writes last.
func (s *Sync) ListTasks(ctx context.Context, userID uuid.UUID) ([]models.Task, error) {
	s.mu.Lock()
	m := s.mirrorFor(userID)
	needsFetch := !s.offline && !m.tasksFresh
	s.mu.Unlock()

	if needsFetch {
		remote, err := s.tasks.GetByUserID(ctx, userID)
		s.mu.Lock()
		if err != nil {
			s.goOffline(err)
		} else {
			m.tasks = remote
			m.tasksFresh = true
		}
		s.mu.Unlock()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return ReconcileTasks(m.tasks, m.pendingTaskList()), nil
}

// CreateTask persists a new task, falling back to the pending overlay when
// the remote is unreachable.
func (s *Sync) CreateTask(ctx context.Context, task *models.Task) error {
	s.mu.Lock()
	offline := s.offline
	s.mu.Unlock()

	if !offline {
		if err := s.tasks.Create(ctx, task); err == nil {
			s.mu.Lock()
			s.mirrorFor(task.UserID).tasksFresh = false
			s.mu.Unlock()
			return nil
		} else {
			s.mu.Lock()
			s.goOffline(err)
			s.mu.Unlock()
		}
	}

	local := *task
	local.CreatedAt = nil // confirmed timestamps come from the remote
	s.mu.Lock()
	s.mirrorFor(task.UserID).pendingTasks[task.ID] = local
	s.mu.Unlock()
	return nil
}

// UpdateTask persists a task mutation, localizing it when offline
func (s *Sync) UpdateTask(ctx context.Context, task *models.Task) error {
	s.mu.Lock()
	m := s.mirrorFor(task.UserID)
	_, isPending := m.pendingTasks[task.ID]
	offline := s.offline
	s.mu.Unlock()

	if !offline && !isPending {
		if err := s.tasks.Update(ctx, task); err == nil {
			s.mu.Lock()
			m.tasksFresh = false
			s.mu.Unlock()
			return nil
		} else {
			s.mu.Lock()
			s.goOffline(err)
			s.mu.Unlock()
		}
	}

	s.mu.Lock()
	m.pendingTasks[task.ID] = *task
	s.mu.Unlock()
	return nil
}

// DeleteTask removes a task. Pending-only tasks are dropped locally;
// remote deletes are refused while offline.
func (s *Sync) DeleteTask(ctx context.Context, id, userID uuid.UUID) error {
	s.mu.Lock()
	m := s.mirrorFor(userID)
	if _, ok := m.pendingTasks[id]; ok {
		delete(m.pendingTasks, id)
		s.mu.Unlock()
		return nil
	}
	offline := s.offline
	s.mu.Unlock()

	if offline {
		return ErrOffline
	}

	if err := s.tasks.Delete(ctx, id, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return err
		}
		s.mu.Lock()
		s.goOffline(err)
		s.mu.Unlock()
		return ErrOffline
	}

	s.mu.Lock()
	m.tasksFresh = false
	s.mu.Unlock()
	return nil
}

// ErrOffline reports that the operation needs the remote store and the
// remote store is unavailable.
var ErrOffline = errors.New("store is offline")

// AppendMessage appends one chat turn, localizing it when offline
func (s *Sync) AppendMessage(ctx context.Context, msg *models.ChatMessage) error {
	s.mu.Lock()
	offline := s.offline
	s.mu.Unlock()

	if !offline {
		if err := s.chat.Append(ctx, msg); err == nil {
			s.mu.Lock()
			s.mirrorFor(msg.UserID).msgsFresh = false
			s.mu.Unlock()
			return nil
		} else {
			s.mu.Lock()
			s.goOffline(err)
			s.mu.Unlock()
		}
	}

	local := *msg
	local.CreatedAt = nil
	s.mu.Lock()
	m := s.mirrorFor(msg.UserID)
	local.Seq = int64(len(m.pendingMsgs))
	m.pendingMsgs = append(m.pendingMsgs, local)
	s.mu.Unlock()
	return nil
}

// ListMessages returns the merged conversation, oldest first
func (s *Sync) ListMessages(ctx context.Context, userID uuid.UUID) ([]models.ChatMessage, error) {
	s.mu.Lock()
	m := s.mirrorFor(userID)
	needsFetch := !s.offline && !m.msgsFresh
	s.mu.Unlock()

	if needsFetch {
		remote, err := s.chat.GetByUserID(ctx, userID)
		s.mu.Lock()
		if err != nil {
			s.goOffline(err)
		} else {
			m.messages = remote
			m.msgsFresh = true
		}
		s.mu.Unlock()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return ReconcileMessages(m.messages, m.pendingMsgs), nil
}

// GetRoadmap returns the user's roadmap, serving the mirror while offline.
// Returns sql.ErrNoRows when no roadmap exists anywhere.
func (s *Sync) GetRoadmap(ctx context.Context, userID uuid.UUID) (*models.Roadmap, error) {
	s.mu.Lock()
	m := s.mirrorFor(userID)
	offline := s.offline
	cached := m.roadmap
	s.mu.Unlock()

	if offline {
		if cached == nil {
			return nil, sql.ErrNoRows
		}
		return cached, nil
	}

	roadmap, err := s.roadmaps.GetByUserID(ctx, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		s.mu.Lock()
		s.goOffline(err)
		s.mu.Unlock()
		if cached == nil {
			return nil, sql.ErrNoRows
		}
		return cached, nil
	}

	s.mu.Lock()
	m.roadmap = roadmap
	s.mu.Unlock()
	return roadmap, nil
}

// PutRoadmap replaces the user's roadmap document
func (s *Sync) PutRoadmap(ctx context.Context, roadmap *models.Roadmap) error {
	s.mu.Lock()
	offline := s.offline
	s.mu.Unlock()

	if !offline {
		if err := s.roadmaps.Upsert(ctx, roadmap); err == nil {
			s.mu.Lock()
			s.mirrorFor(roadmap.UserID).roadmap = roadmap
			s.mu.Unlock()
			return nil
		} else {
			s.mu.Lock()
			s.goOffline(err)
			s.mu.Unlock()
		}
	}

	s.mu.Lock()
	s.mirrorFor(roadmap.UserID).roadmap = roadmap
	s.mu.Unlock()
	return nil
}

// Resync pushes a user's pending records to the remote and, on success,
// clears the overlay and returns the store to online mode. Pending records
// are never replayed implicitly; this is the explicit path back.
func (s *Sync) Resync(ctx context.Context, userID uuid.UUID) error {
	s.mu.Lock()
	m := s.mirrorFor(userID)
	pendingTasks := m.pendingTaskList()
	pendingMsgs := make([]models.ChatMessage, len(m.pendingMsgs))
	copy(pendingMsgs, m.pendingMsgs)
	s.mu.Unlock()

	for i := range pendingTasks {
		task := pendingTasks[i]
		err := s.tasks.Create(ctx, &task)
		if err != nil {
			// The record may already exist remotely when the overlay holds
			// a localized update.
			if updateErr := s.tasks.Update(ctx, &task); updateErr != nil {
				return err
			}
		}
		s.mu.Lock()
		delete(m.pendingTasks, task.ID)
		s.mu.Unlock()
	}

	for i := range pendingMsgs {
		msg := pendingMsgs[i]
		msg.CreatedAt = nil
		if err := s.chat.Append(ctx, &msg); err != nil {
			return err
		}
		s.mu.Lock()
		if len(m.pendingMsgs) > 0 {
			m.pendingMsgs = m.pendingMsgs[1:]
		}
		s.mu.Unlock()
	}

	s.mu.Lock()
	s.offline = false
	m.tasksFresh = false
	m.msgsFresh = false
	s.mu.Unlock()
	s.logger.Info("sync_online", zap.String("user_id", userID.String()))
	return nil
}
