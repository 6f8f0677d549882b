package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/syntra-learn/syntra-api/internal/directive"
	"github.com/syntra-learn/syntra-api/internal/i18n"
	"github.com/syntra-learn/syntra-api/internal/models"
	"github.com/syntra-learn/syntra-api/internal/services/ai"
	chatsvc "github.com/syntra-learn/syntra-api/internal/services/chat"
	"github.com/syntra-learn/syntra-api/internal/store"
)

func chatRouter(t *testing.T, provider ai.AIProvider) (*mux.Router, *store.Sync, *memTaskRepo) {
	t.Helper()
	syncStore, taskRepo, _, _ := newTestStore()
	applier := directive.NewApplier(syncStore, nil, zap.NewNop())
	service := chatsvc.NewService(syncStore, newFakeProfileRepo(), provider, applier, zap.NewNop())
	h := NewChatHandler(service, syncStore, nil)
	r := mux.NewRouter()
	h.RegisterRoutes(r.PathPrefix("/chat").Subrouter())
	return r, syncStore, taskRepo
}

func TestChatHistoryEmpty(t *testing.T) {
	t.Parallel()

	router, _, _ := chatRouter(t, &stubProvider{})
	user := &models.User{ID: uuid.New()}

	rec := doAs(t, router, user, "GET", "/chat", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	resp := decodeData[HistoryResponse](t, rec.Body.Bytes())
	if resp.Messages == nil || len(resp.Messages) != 0 {
		t.Errorf("Expected empty non-nil history, got %v", resp.Messages)
	}
}

func TestChatSendAppliesDirectives(t *testing.T) {
	t.Parallel()

	provider := &stubProvider{
		chatFunc: func(_ context.Context, _ string, messages []ai.ChatMessage) (string, error) {
			if len(messages) == 0 {
				t.Error("Expected the user turn in the model history")
			}
			return "Great idea! [ADD: Review biology notes] Keep going.", nil
		},
	}
	router, _, taskRepo := chatRouter(t, provider)
	user := &models.User{ID: uuid.New()}

	rec := doAs(t, router, user, "POST", "/chat", SendMessageRequest{Text: "Help me plan my week"})
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	resp := decodeData[SendResponse](t, rec.Body.Bytes())
	if resp.Message == nil || resp.Message.Role != models.RoleAssistant {
		t.Fatalf("Expected an assistant message, got %+v", resp.Message)
	}
	if strings.Contains(resp.Message.Text, "[ADD:") {
		t.Errorf("Expected directives stripped from display text, got %q", resp.Message.Text)
	}
	if len(resp.Annotations) != 1 {
		t.Errorf("Expected 1 annotation, got %d", len(resp.Annotations))
	}

	found := false
	for _, task := range taskRepo.tasks {
		if task.Text == "Review biology notes" && task.Provenance == models.ProvenanceAISmart {
			found = true
		}
	}
	if !found {
		t.Error("Expected the ADD directive to create an ai-smart task")
	}
}

func TestChatSendModelFailureStillReplies(t *testing.T) {
	t.Parallel()

	provider := &stubProvider{
		chatFunc: func(context.Context, string, []ai.ChatMessage) (string, error) {
			return "", errors.New("upstream timeout")
		},
	}
	router, _, _ := chatRouter(t, provider)
	user := &models.User{ID: uuid.New()}

	rec := doAs(t, router, user, "POST", "/chat?lang=ar", SendMessageRequest{Text: "Are you there?"})
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200 with a fallback reply, got %d: %s", rec.Code, rec.Body.String())
	}

	resp := decodeData[SendResponse](t, rec.Body.Bytes())
	if resp.Message == nil || resp.Message.Text == "" {
		t.Fatal("Expected a localized fallback assistant message")
	}
	want := strings.TrimSpace(i18n.T(i18n.LanguageArabic, i18n.KeyConnectError))
	if resp.Message.Text != want {
		t.Errorf("Expected %q, got %q", want, resp.Message.Text)
	}

	rec = doAs(t, router, user, "GET", "/chat", nil)
	history := decodeData[HistoryResponse](t, rec.Body.Bytes())
	if len(history.Messages) != 2 {
		t.Errorf("Expected user turn plus fallback turn, got %d messages", len(history.Messages))
	}
}

func TestChatSendValidation(t *testing.T) {
	t.Parallel()

	router, _, _ := chatRouter(t, &stubProvider{})
	user := &models.User{ID: uuid.New()}

	rec := doAs(t, router, user, "POST", "/chat", SendMessageRequest{Text: "   "})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for blank message, got %d", rec.Code)
	}
}
