package handlers

import (
	"context"
	"database/sql"
	"errors"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/syntra-learn/syntra-api/internal/database"
	"github.com/syntra-learn/syntra-api/internal/i18n"
	"github.com/syntra-learn/syntra-api/internal/models"
	"github.com/syntra-learn/syntra-api/internal/services/ai"
	"github.com/syntra-learn/syntra-api/internal/store"
)

// In-memory repositories backing the sync store in handler tests.

type memTaskRepo struct {
	mu    sync.Mutex
	tasks map[uuid.UUID]models.Task
	fail  bool
}

var _ database.TaskRepositoryInterface = (*memTaskRepo)(nil)

func newMemTaskRepo() *memTaskRepo {
	return &memTaskRepo{tasks: make(map[uuid.UUID]models.Task)}
}

func (m *memTaskRepo) Create(_ context.Context, task *models.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errors.New("connection refused")
	}
	m.tasks[task.ID] = *task
	return nil
}

func (m *memTaskRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return nil, errors.New("connection refused")
	}
	task, ok := m.tasks[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &task, nil
}

func (m *memTaskRepo) GetByUserID(_ context.Context, userID uuid.UUID) ([]models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return nil, errors.New("connection refused")
	}
	var out []models.Task
	for _, t := range m.tasks {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *memTaskRepo) Update(_ context.Context, task *models.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errors.New("connection refused")
	}
	if _, ok := m.tasks[task.ID]; !ok {
		return sql.ErrNoRows
	}
	m.tasks[task.ID] = *task
	return nil
}

func (m *memTaskRepo) Delete(_ context.Context, id, _ uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errors.New("connection refused")
	}
	if _, ok := m.tasks[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.tasks, id)
	return nil
}

type memChatRepo struct {
	mu       sync.Mutex
	messages []models.ChatMessage
}

var _ database.ChatRepositoryInterface = (*memChatRepo)(nil)

func (m *memChatRepo) Append(_ context.Context, msg *models.ChatMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, *msg)
	return nil
}

func (m *memChatRepo) GetByUserID(_ context.Context, userID uuid.UUID) ([]models.ChatMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.ChatMessage
	for _, msg := range m.messages {
		if msg.UserID == userID {
			out = append(out, msg)
		}
	}
	return out, nil
}

func (m *memChatRepo) GetRecent(ctx context.Context, userID uuid.UUID, limit int) ([]models.ChatMessage, error) {
	msgs, err := m.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	return msgs, nil
}

type memRoadmapRepo struct {
	mu       sync.Mutex
	roadmaps map[uuid.UUID]models.Roadmap
}

var _ database.RoadmapRepositoryInterface = (*memRoadmapRepo)(nil)

func newMemRoadmapRepo() *memRoadmapRepo {
	return &memRoadmapRepo{roadmaps: make(map[uuid.UUID]models.Roadmap)}
}

func (m *memRoadmapRepo) Upsert(_ context.Context, roadmap *models.Roadmap) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.roadmaps[roadmap.UserID] = *roadmap
	return nil
}

func (m *memRoadmapRepo) GetByUserID(_ context.Context, userID uuid.UUID) (*models.Roadmap, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	roadmap, ok := m.roadmaps[userID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &roadmap, nil
}

type memInboxRepo struct {
	mu       sync.Mutex
	messages []models.InboxMessage
	markErr  error
}

var _ database.InboxRepositoryInterface = (*memInboxRepo)(nil)

func (m *memInboxRepo) Create(_ context.Context, msg *models.InboxMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, *msg)
	return nil
}

func (m *memInboxRepo) GetByUserID(_ context.Context, userID uuid.UUID) ([]models.InboxMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.InboxMessage
	for _, msg := range m.messages {
		if msg.UserID == userID {
			out = append(out, msg)
		}
	}
	return out, nil
}

func (m *memInboxRepo) MarkRead(_ context.Context, id, userID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.markErr != nil {
		return m.markErr
	}
	for i := range m.messages {
		if m.messages[i].ID == id && m.messages[i].UserID == userID {
			m.messages[i].Read = true
			return nil
		}
	}
	return sql.ErrNoRows
}

// stubProvider lets each test script the model's behavior per operation.
// Unscripted operations fail loudly.
type stubProvider struct {
	chatFunc      func(ctx context.Context, systemInstruction string, messages []ai.ChatMessage) (string, error)
	roadmapFunc   func(ctx context.Context, goal string, profile *models.Profile, lang i18n.Language) (*models.Roadmap, error)
	breakdownFunc func(ctx context.Context, goal string, lang i18n.Language) ([]string, error)
	insightFunc   func(ctx context.Context, entry string, lang i18n.Language) (string, error)
	welcomeFunc   func(ctx context.Context, profile *models.Profile, lang i18n.Language) (string, error)
}

var _ ai.AIProvider = (*stubProvider)(nil)

func (p *stubProvider) Chat(ctx context.Context, systemInstruction string, messages []ai.ChatMessage) (string, error) {
	if p.chatFunc == nil {
		return "", errors.New("chat not scripted")
	}
	return p.chatFunc(ctx, systemInstruction, messages)
}

func (p *stubProvider) GenerateRoadmap(ctx context.Context, goal string, profile *models.Profile, lang i18n.Language) (*models.Roadmap, error) {
	if p.roadmapFunc == nil {
		return nil, errors.New("roadmap not scripted")
	}
	return p.roadmapFunc(ctx, goal, profile, lang)
}

func (p *stubProvider) MagicBreakdown(ctx context.Context, goal string, lang i18n.Language) ([]string, error) {
	if p.breakdownFunc == nil {
		return nil, errors.New("breakdown not scripted")
	}
	return p.breakdownFunc(ctx, goal, lang)
}

func (p *stubProvider) JournalInsight(ctx context.Context, entry string, lang i18n.Language) (string, error) {
	if p.insightFunc == nil {
		return "", errors.New("insight not scripted")
	}
	return p.insightFunc(ctx, entry, lang)
}

func (p *stubProvider) WelcomeEmail(ctx context.Context, profile *models.Profile, lang i18n.Language) (string, error) {
	if p.welcomeFunc == nil {
		return "", errors.New("welcome not scripted")
	}
	return p.welcomeFunc(ctx, profile, lang)
}

// newTestStore builds a sync store over in-memory repositories
func newTestStore() (*store.Sync, *memTaskRepo, *memChatRepo, *memRoadmapRepo) {
	tasks := newMemTaskRepo()
	chat := &memChatRepo{}
	roadmaps := newMemRoadmapRepo()
	return store.NewSync(tasks, chat, roadmaps, zap.NewNop()), tasks, chat, roadmaps
}
