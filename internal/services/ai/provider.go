package ai

import (
	"context"
	"errors"

	"github.com/syntra-learn/syntra-api/internal/i18n"
	"github.com/syntra-learn/syntra-api/internal/models"
)

// ErrDisabled is returned by the disabled provider when no API key is
// configured. Callers map it to a localized user-facing message instead of
// failing the request.
var ErrDisabled = errors.New("ai provider disabled: no API key configured")

// ChatMessage represents a message in a chat conversation
type ChatMessage struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// AIProvider is the interface for AI providers
type AIProvider interface {
	// Chat sends the conversation with a composed system instruction and
	// returns the raw model response, directives included.
	Chat(ctx context.Context, systemInstruction string, messages []ChatMessage) (string, error)

	// GenerateRoadmap produces a structured learning roadmap for a goal
	GenerateRoadmap(ctx context.Context, goal string, profile *models.Profile, lang i18n.Language) (*models.Roadmap, error)

	// MagicBreakdown splits a goal into a handful of actionable steps
	MagicBreakdown(ctx context.Context, goal string, lang i18n.Language) ([]string, error)

	// JournalInsight returns one sentence of advice for a journal entry
	JournalInsight(ctx context.Context, entry string, lang i18n.Language) (string, error)

	// WelcomeEmail writes the onboarding welcome email body
	WelcomeEmail(ctx context.Context, profile *models.Profile, lang i18n.Language) (string, error)
}

// DisabledProvider is used when the deployment has no AI credentials. Every
// operation fails with ErrDisabled so the rest of the app keeps working.
type DisabledProvider struct{}

var _ AIProvider = (*DisabledProvider)(nil)

func (DisabledProvider) Chat(context.Context, string, []ChatMessage) (string, error) {
	return "", ErrDisabled
}

func (DisabledProvider) GenerateRoadmap(context.Context, string, *models.Profile, i18n.Language) (*models.Roadmap, error) {
	return nil, ErrDisabled
}

func (DisabledProvider) MagicBreakdown(context.Context, string, i18n.Language) ([]string, error) {
	return nil, ErrDisabled
}

func (DisabledProvider) JournalInsight(context.Context, string, i18n.Language) (string, error) {
	return "", ErrDisabled
}

func (DisabledProvider) WelcomeEmail(context.Context, *models.Profile, i18n.Language) (string, error) {
	return "", ErrDisabled
}
