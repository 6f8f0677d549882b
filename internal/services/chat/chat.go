// Package chat runs the conversational turn pipeline: the user message is
// persisted first, the model is called with a composed system instruction,
// directives in the reply are applied to the planner, and the stripped
// reply (plus any mutation annotations) is persisted as the assistant turn.
package chat

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/syntra-learn/syntra-api/internal/directive"
	"github.com/syntra-learn/syntra-api/internal/i18n"
	"github.com/syntra-learn/syntra-api/internal/models"
	"github.com/syntra-learn/syntra-api/internal/services/ai"
)

// historyWindow caps how many prior turns are sent to the model
const historyWindow = 50

// Store is the slice of the sync layer the chat pipeline needs
type Store interface {
	ListTasks(ctx context.Context, userID uuid.UUID) ([]models.Task, error)
	ListMessages(ctx context.Context, userID uuid.UUID) ([]models.ChatMessage, error)
	AppendMessage(ctx context.Context, msg *models.ChatMessage) error
	GetRoadmap(ctx context.Context, userID uuid.UUID) (*models.Roadmap, error)
	Offline() bool
}

// ProfileSource loads the onboarding profile for prompt composition
type ProfileSource interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
}

// Service coordinates one chat turn end to end
type Service struct {
	store    Store
	profiles ProfileSource
	provider ai.AIProvider
	applier  *directive.Applier
	logger   *zap.Logger
}

// NewService creates the chat service
func NewService(store Store, profiles ProfileSource, provider ai.AIProvider, applier *directive.Applier, logger *zap.Logger) *Service {
	return &Service{
		store:    store,
		profiles: profiles,
		provider: provider,
		applier:  applier,
		logger:   logger,
	}
}

// History returns the user's conversation, oldest first
func (s *Service) History(ctx context.Context, userID uuid.UUID) ([]models.ChatMessage, error) {
	return s.store.ListMessages(ctx, userID)
}

// Send runs one turn. The user message is always appended before the model
// call; a model failure still produces an assistant turn carrying a
// localized error string, so the conversation log stays consistent.
// The stored assistant text is the directive-stripped reply; annotations
// describing applied mutations are returned separately for display.
func (s *Service) Send(ctx context.Context, userID uuid.UUID, lang i18n.Language, text string) (*models.ChatMessage, []string, error) {
	userMsg := &models.ChatMessage{
		ID:     uuid.New(),
		UserID: userID,
		Role:   models.RoleUser,
		Text:   text,
	}
	if err := s.store.AppendMessage(ctx, userMsg); err != nil {
		return nil, nil, err
	}

	profile := s.loadProfile(ctx, userID)
	tasks, err := s.store.ListTasks(ctx, userID)
	if err != nil {
		s.logger.Warn("chat_task_context_failed", zap.Error(err))
	}

	roadmap, err := s.store.GetRoadmap(ctx, userID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		s.logger.Warn("chat_roadmap_context_failed", zap.Error(err))
	}

	history, err := s.store.ListMessages(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	if len(history) > historyWindow {
		history = history[len(history)-historyWindow:]
	}

	system := ai.ComposeSystemInstruction(profile, tasks, roadmap, lang)

	aiMessages := make([]ai.ChatMessage, 0, len(history))
	for _, m := range history {
		aiMessages = append(aiMessages, ai.ChatMessage{
			Role:    string(m.Role),
			Content: m.Text,
		})
	}

	raw, err := s.provider.Chat(ctx, system, aiMessages)
	if err != nil {
		msg, appendErr := s.appendFailureTurn(ctx, userID, lang, err)
		return msg, nil, appendErr
	}

	result := directive.Parse(raw)
	annotations := s.applier.Apply(ctx, userID, lang, result.Directives)

	assistantMsg := &models.ChatMessage{
		ID:     uuid.New(),
		UserID: userID,
		Role:   models.RoleAssistant,
		Text:   result.Display,
	}
	if err := s.store.AppendMessage(ctx, assistantMsg); err != nil {
		return nil, nil, err
	}
	return assistantMsg, annotations, nil
}

// loadProfile falls back to the guest profile when onboarding has not run
// or the store is unreachable.
func (s *Service) loadProfile(ctx context.Context, userID uuid.UUID) *models.Profile {
	profile, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			s.logger.Warn("chat_profile_load_failed",
				zap.String("user_id", userID.String()),
				zap.Error(err))
		}
		return models.GuestProfile(userID)
	}
	return profile
}

func (s *Service) appendFailureTurn(ctx context.Context, userID uuid.UUID, lang i18n.Language, cause error) (*models.ChatMessage, error) {
	key := i18n.KeyConnectError
	if errors.Is(cause, ai.ErrDisabled) {
		key = i18n.KeyAIDisabled
	}
	s.logger.Warn("chat_llm_failed",
		zap.String("user_id", userID.String()),
		zap.Error(cause))

	msg := &models.ChatMessage{
		ID:     uuid.New(),
		UserID: userID,
		Role:   models.RoleAssistant,
		Text:   strings.TrimSpace(i18n.T(lang, key)),
	}
	if err := s.store.AppendMessage(ctx, msg); err != nil {
		return nil, err
	}
	return msg, nil
}
