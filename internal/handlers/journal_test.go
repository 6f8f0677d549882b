package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/syntra-learn/syntra-api/internal/i18n"
	"github.com/syntra-learn/syntra-api/internal/models"
	"github.com/syntra-learn/syntra-api/internal/services/ai"
)

func journalRouter(t *testing.T, provider ai.AIProvider) *mux.Router {
	t.Helper()
	h := NewJournalHandler(provider, nil)
	r := mux.NewRouter()
	h.RegisterRoutes(r.PathPrefix("/journal").Subrouter())
	return r
}

func TestAnalyzeJournal(t *testing.T) {
	t.Parallel()

	provider := &stubProvider{
		insightFunc: func(_ context.Context, entry string, lang i18n.Language) (string, error) {
			if entry != "Today was stressful but I finished my homework." {
				t.Errorf("Unexpected entry: %q", entry)
			}
			if lang != i18n.LanguageArabic {
				t.Errorf("Expected Arabic, got %q", lang)
			}
			return "خذ وقتك في الراحة.", nil
		},
	}
	router := journalRouter(t, provider)
	user := &models.User{ID: uuid.New()}

	rec := doAs(t, router, user, "POST", "/journal/analyze?lang=ar", AnalyzeJournalRequest{
		Entry: "Today was stressful but I finished my homework.",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	resp := decodeData[AnalyzeJournalResponse](t, rec.Body.Bytes())
	if resp.Insight == "" {
		t.Error("Expected an insight")
	}
}

func TestAnalyzeJournalTooShort(t *testing.T) {
	t.Parallel()

	router := journalRouter(t, &stubProvider{})
	user := &models.User{ID: uuid.New()}

	rec := doAs(t, router, user, "POST", "/journal/analyze", AnalyzeJournalRequest{Entry: "ok"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for a short entry, got %d", rec.Code)
	}
}

func TestAnalyzeJournalDisabled(t *testing.T) {
	t.Parallel()

	router := journalRouter(t, ai.DisabledProvider{})
	user := &models.User{ID: uuid.New()}

	rec := doAs(t, router, user, "POST", "/journal/analyze", AnalyzeJournalRequest{Entry: "A long enough entry."})
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected 503 when AI is disabled, got %d", rec.Code)
	}
}
