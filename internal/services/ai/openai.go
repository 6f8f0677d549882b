package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
	"go.uber.org/zap"

	"github.com/syntra-learn/syntra-api/internal/i18n"
	"github.com/syntra-learn/syntra-api/internal/models"
)

const (
	// DefaultOpenAIModel is the default model to use
	DefaultOpenAIModel = "gpt-4o-mini"
	// DefaultOpenAIBaseURL is the default OpenAI API base URL
	DefaultOpenAIBaseURL = "https://api.openai.com/v1"
	// DefaultTimeout is the default timeout for API calls
	DefaultTimeout = 30 * time.Second

	// ErrNoChoicesInResponse is returned when the API response has no choices
	ErrNoChoicesInResponse = "no choices in response"

	// stepSeparator joins breakdown steps in the model's reply
	stepSeparator = "|||"
)

// OpenAIProvider implements the AIProvider interface using OpenAI's API
type OpenAIProvider struct {
	client    openai.Client
	model     string
	logger    *zap.Logger
	debugMode bool
}

var _ AIProvider = (*OpenAIProvider)(nil)

// NewOpenAIProvider creates a new OpenAI provider
func NewOpenAIProvider(apiKey string, model string) *OpenAIProvider {
	return NewOpenAIProviderWithLogger(apiKey, DefaultOpenAIBaseURL, model, nil, false)
}

// NewOpenAIProviderWithLogger creates a new OpenAI provider with logger support
func NewOpenAIProviderWithLogger(apiKey string, baseURL string, model string, logger *zap.Logger, debugMode bool) *OpenAIProvider {
	if model == "" {
		model = DefaultOpenAIModel
	}
	if baseURL == "" {
		baseURL = DefaultOpenAIBaseURL
	}

	httpClient := &http.Client{
		Timeout: DefaultTimeout,
	}

	client := openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithBaseURL(baseURL),
		option.WithHTTPClient(httpClient),
	)

	return &OpenAIProvider{
		client:    client,
		model:     model,
		logger:    logger,
		debugMode: debugMode,
	}
}

// complete sends one chat completion request and returns the response text
func (p *OpenAIProvider) complete(ctx context.Context, operation string, messages []openai.ChatCompletionMessageParamUnion, jsonMode bool) (string, error) {
	req := openai.ChatCompletionNewParams{
		Model:    shared.ChatModel(p.model),
		Messages: messages,
	}
	if jsonMode {
		req.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		}
	}

	if p.logger != nil && p.debugMode {
		p.logger.Debug("llm_api_request",
			zap.String("operation", operation),
			zap.String("model", p.model),
			zap.Int("message_count", len(messages)),
		)
	}

	start := time.Now()
	resp, err := p.client.Chat.Completions.New(ctx, req)
	latency := time.Since(start)

	if err != nil {
		if p.logger != nil && p.debugMode {
			p.logger.Debug("llm_api_error",
				zap.String("operation", operation),
				zap.String("model", p.model),
				zap.Error(err),
				zap.Int64("latency_ms", latency.Milliseconds()),
			)
		}
		if apiErr := ExtractAPIError(err); apiErr != nil {
			return "", fmt.Errorf("%s failed: %w", operation, apiErr)
		}
		return "", fmt.Errorf("%s failed: %w", operation, err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New(ErrNoChoicesInResponse)
	}

	content := resp.Choices[0].Message.Content
	if p.logger != nil && p.debugMode {
		p.logger.Debug("llm_api_response",
			zap.String("operation", operation),
			zap.String("model", p.model),
			zap.Int("response_length", len(content)),
			zap.String("response_preview", SanitizeResponse(content, true)),
			zap.Int64("latency_ms", latency.Milliseconds()),
		)
	}
	return content, nil
}

// Chat sends the conversation with the composed system instruction
func (p *OpenAIProvider) Chat(ctx context.Context, systemInstruction string, messages []ChatMessage) (string, error) {
	openAIMessages := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages)+1)
	openAIMessages = append(openAIMessages, openai.SystemMessage(systemInstruction))

	for _, msg := range messages {
		switch msg.Role {
		case "assistant":
			openAIMessages = append(openAIMessages, openai.AssistantMessage(msg.Content))
		default:
			openAIMessages = append(openAIMessages, openai.UserMessage(msg.Content))
		}
	}

	return p.complete(ctx, "chat", openAIMessages, false)
}

// GenerateRoadmap produces a structured learning roadmap for a goal
func (p *OpenAIProvider) GenerateRoadmap(ctx context.Context, goal string, profile *models.Profile, lang i18n.Language) (*models.Roadmap, error) {
	prompt := fmt.Sprintf(`Create a learning roadmap for the goal %q for student %s (age %s, conscientiousness %d, openness %d).
LANGUAGE: %s.
Respond with valid JSON only, in exactly this shape:
{"title": "roadmap title", "nodes": [{"id": 1, "label": "short step name", "details": "one paragraph", "resources": ["resource name"]}]}
Use between 4 and 7 nodes with sequential ids starting at 1.`,
		goal, profile.Name, profile.Age, profile.ConscientiousnessScore, profile.OpennessScore,
		languageName(lang))

	messages := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage("You are a curriculum planner. Respond with valid JSON only."),
		openai.UserMessage(prompt),
	}

	content, err := p.complete(ctx, "generate_roadmap", messages, true)
	if err != nil {
		return nil, err
	}

	roadmap, err := ParseRoadmapDocument(content)
	if err != nil {
		return nil, fmt.Errorf("failed to parse roadmap response: %w", err)
	}
	return roadmap, nil
}

// MagicBreakdown splits a goal into a handful of actionable steps
func (p *OpenAIProvider) MagicBreakdown(ctx context.Context, goal string, lang i18n.Language) ([]string, error) {
	prompt := fmt.Sprintf("Break down goal %q into 3 steps. Language: %s. Return steps joined by %s",
		goal, languageName(lang), stepSeparator)

	messages := []openai.ChatCompletionMessageParamUnion{
		openai.UserMessage(prompt),
	}

	content, err := p.complete(ctx, "magic_breakdown", messages, false)
	if err != nil {
		return nil, err
	}

	var steps []string
	for _, part := range strings.Split(content, stepSeparator) {
		if s := strings.TrimSpace(part); s != "" {
			steps = append(steps, s)
		}
	}
	return steps, nil
}

// JournalInsight returns one sentence of advice for a journal entry
func (p *OpenAIProvider) JournalInsight(ctx context.Context, entry string, lang i18n.Language) (string, error) {
	prompt := fmt.Sprintf("Analyze journal: %q. Give 1 sentence advice in %s.", entry, languageName(lang))

	messages := []openai.ChatCompletionMessageParamUnion{
		openai.UserMessage(prompt),
	}

	content, err := p.complete(ctx, "journal_insight", messages, false)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(content), nil
}

// WelcomeEmail writes the onboarding welcome email body
func (p *OpenAIProvider) WelcomeEmail(ctx context.Context, profile *models.Profile, lang i18n.Language) (string, error) {
	prompt := fmt.Sprintf(`Write a short, professional welcome email for student %s.
Mention their traits (C:%d, O:%d).
LANGUAGE: %s.`,
		profile.Name, profile.ConscientiousnessScore, profile.OpennessScore, languageName(lang))

	messages := []openai.ChatCompletionMessageParamUnion{
		openai.UserMessage(prompt),
	}

	content, err := p.complete(ctx, "welcome_email", messages, false)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(content), nil
}

func languageName(lang i18n.Language) string {
	if lang == i18n.LanguageArabic {
		return "Egyptian Arabic"
	}
	return "English"
}
