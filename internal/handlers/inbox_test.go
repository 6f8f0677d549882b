package handlers

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/syntra-learn/syntra-api/internal/models"
)

func inboxRouter(t *testing.T, repo *memInboxRepo) *mux.Router {
	t.Helper()
	h := NewInboxHandler(repo)
	r := mux.NewRouter()
	h.RegisterRoutes(r.PathPrefix("/inbox").Subrouter())
	return r
}

func TestListInboxMessages(t *testing.T) {
	t.Parallel()

	repo := &memInboxRepo{}
	router := inboxRouter(t, repo)
	user := &models.User{ID: uuid.New()}
	other := uuid.New()

	repo.messages = []models.InboxMessage{
		{ID: uuid.New(), UserID: user.ID, Subject: "Welcome to Syntra!", Body: "We are glad you are here."},
		{ID: uuid.New(), UserID: other, Subject: "Not yours", Body: "hidden"},
	}

	rec := doAs(t, router, user, "GET", "/inbox", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	messages := decodeData[[]models.InboxMessage](t, rec.Body.Bytes())
	if len(messages) != 1 {
		t.Fatalf("Expected 1 message for this user, got %d", len(messages))
	}
	if messages[0].Subject != "Welcome to Syntra!" {
		t.Errorf("Unexpected subject %q", messages[0].Subject)
	}
}

func TestListInboxEmpty(t *testing.T) {
	t.Parallel()

	router := inboxRouter(t, &memInboxRepo{})
	user := &models.User{ID: uuid.New()}

	rec := doAs(t, router, user, "GET", "/inbox", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	messages := decodeData[[]models.InboxMessage](t, rec.Body.Bytes())
	if messages == nil || len(messages) != 0 {
		t.Errorf("Expected empty non-nil list, got %v", messages)
	}
}

func TestMarkRead(t *testing.T) {
	t.Parallel()

	repo := &memInboxRepo{}
	router := inboxRouter(t, repo)
	user := &models.User{ID: uuid.New()}
	msg := models.InboxMessage{ID: uuid.New(), UserID: user.ID, Subject: "Welcome"}
	repo.messages = []models.InboxMessage{msg}

	rec := doAs(t, router, user, "POST", "/inbox/"+msg.ID.String()+"/read", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !repo.messages[0].Read {
		t.Error("Expected message marked read")
	}
}

func TestMarkReadWrongUser(t *testing.T) {
	t.Parallel()

	repo := &memInboxRepo{}
	router := inboxRouter(t, repo)
	user := &models.User{ID: uuid.New()}
	msg := models.InboxMessage{ID: uuid.New(), UserID: uuid.New(), Subject: "Someone else's"}
	repo.messages = []models.InboxMessage{msg}

	rec := doAs(t, router, user, "POST", "/inbox/"+msg.ID.String()+"/read", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for another user's message, got %d", rec.Code)
	}
}
