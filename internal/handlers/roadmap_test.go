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

func roadmapRouter(t *testing.T, provider ai.AIProvider, profiles *fakeProfileRepo) (*mux.Router, *memRoadmapRepo) {
	t.Helper()
	syncStore, _, _, roadmapRepo := newTestStore()
	h := NewRoadmapHandler(syncStore, profiles, provider, nil)
	r := mux.NewRouter()
	h.RegisterRoutes(r.PathPrefix("/roadmap").Subrouter())
	return r, roadmapRepo
}

func sampleRoadmap(userID uuid.UUID) *models.Roadmap {
	return &models.Roadmap{
		UserID: userID,
		Title:  "Become a web developer",
		Nodes: []models.RoadmapNode{
			{ID: 1, Label: "Learn HTML", Status: models.NodeStatusPending},
			{ID: 2, Label: "Learn CSS", Status: models.NodeStatusPending},
			{ID: 3, Label: "Learn JavaScript", Status: models.NodeStatusPending},
		},
	}
}

func TestGetRoadmapNotFound(t *testing.T) {
	t.Parallel()

	router, _ := roadmapRouter(t, &stubProvider{}, newFakeProfileRepo())
	user := &models.User{ID: uuid.New()}

	rec := doAs(t, router, user, "GET", "/roadmap", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 before generation, got %d", rec.Code)
	}
}

func TestGenerateRoadmap(t *testing.T) {
	t.Parallel()

	profiles := newFakeProfileRepo()
	user := &models.User{ID: uuid.New()}
	profiles.profiles[user.ID] = &models.Profile{UserID: user.ID, Name: "Mona", ConscientiousnessScore: 80, OpennessScore: 70}

	provider := &stubProvider{
		roadmapFunc: func(_ context.Context, goal string, profile *models.Profile, _ i18n.Language) (*models.Roadmap, error) {
			if profile.Name != "Mona" {
				t.Errorf("Expected the stored profile, got %q", profile.Name)
			}
			rm := sampleRoadmap(uuid.Nil)
			rm.Title = goal
			return rm, nil
		},
	}
	router, repo := roadmapRouter(t, provider, profiles)

	rec := doAs(t, router, user, "POST", "/roadmap/generate", GenerateRoadmapRequest{Goal: "Become a web developer"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	roadmap := decodeData[models.Roadmap](t, rec.Body.Bytes())
	if roadmap.UserID != user.ID {
		t.Errorf("Expected roadmap bound to the caller, got %s", roadmap.UserID)
	}
	if len(roadmap.Nodes) != 3 {
		t.Errorf("Expected 3 nodes, got %d", len(roadmap.Nodes))
	}
	if _, ok := repo.roadmaps[user.ID]; !ok {
		t.Error("Expected roadmap persisted")
	}
}

func TestGenerateRoadmapGuestProfileFallback(t *testing.T) {
	t.Parallel()

	provider := &stubProvider{
		roadmapFunc: func(_ context.Context, _ string, profile *models.Profile, _ i18n.Language) (*models.Roadmap, error) {
			if profile.Name != "Student" {
				t.Errorf("Expected guest profile fallback, got %q", profile.Name)
			}
			return sampleRoadmap(uuid.Nil), nil
		},
	}
	router, _ := roadmapRouter(t, provider, newFakeProfileRepo())
	user := &models.User{ID: uuid.New()}

	rec := doAs(t, router, user, "POST", "/roadmap/generate", GenerateRoadmapRequest{Goal: "Learn to draw"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestGenerateRoadmapDisabled(t *testing.T) {
	t.Parallel()

	router, _ := roadmapRouter(t, ai.DisabledProvider{}, newFakeProfileRepo())
	user := &models.User{ID: uuid.New()}

	rec := doAs(t, router, user, "POST", "/roadmap/generate", GenerateRoadmapRequest{Goal: "Learn to draw"})
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected 503 when AI is disabled, got %d", rec.Code)
	}
}

func TestToggleNode(t *testing.T) {
	t.Parallel()

	router, repo := roadmapRouter(t, &stubProvider{}, newFakeProfileRepo())
	user := &models.User{ID: uuid.New()}
	repo.roadmaps[user.ID] = *sampleRoadmap(user.ID)

	rec := doAs(t, router, user, "POST", "/roadmap/nodes/2/toggle", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	roadmap := decodeData[models.Roadmap](t, rec.Body.Bytes())
	if roadmap.Nodes[1].Status != models.NodeStatusDone {
		t.Errorf("Expected node 2 done, got %q", roadmap.Nodes[1].Status)
	}

	rec = doAs(t, router, user, "POST", "/roadmap/nodes/2/toggle", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200 on second toggle, got %d", rec.Code)
	}
	roadmap = decodeData[models.Roadmap](t, rec.Body.Bytes())
	if roadmap.Nodes[1].Status != models.NodeStatusPending {
		t.Errorf("Expected node 2 back to pending, got %q", roadmap.Nodes[1].Status)
	}
}

func TestToggleNodeBounds(t *testing.T) {
	t.Parallel()

	router, repo := roadmapRouter(t, &stubProvider{}, newFakeProfileRepo())
	user := &models.User{ID: uuid.New()}
	repo.roadmaps[user.ID] = *sampleRoadmap(user.ID)

	rec := doAs(t, router, user, "POST", "/roadmap/nodes/0/toggle", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for node 0, got %d", rec.Code)
	}

	rec = doAs(t, router, user, "POST", "/roadmap/nodes/99/toggle", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown node, got %d", rec.Code)
	}
}

func TestSetNotes(t *testing.T) {
	t.Parallel()

	router, repo := roadmapRouter(t, &stubProvider{}, newFakeProfileRepo())
	user := &models.User{ID: uuid.New()}
	repo.roadmaps[user.ID] = *sampleRoadmap(user.ID)

	rec := doAs(t, router, user, "PUT", "/roadmap/notes", SetNotesRequest{Notes: "Focus on CSS grid this week"})
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	roadmap := decodeData[models.Roadmap](t, rec.Body.Bytes())
	if roadmap.Notes != "Focus on CSS grid this week" {
		t.Errorf("Expected notes saved, got %q", roadmap.Notes)
	}
}

func TestSetNotesWithoutRoadmap(t *testing.T) {
	t.Parallel()

	router, _ := roadmapRouter(t, &stubProvider{}, newFakeProfileRepo())
	user := &models.User{ID: uuid.New()}

	rec := doAs(t, router, user, "PUT", "/roadmap/notes", SetNotesRequest{Notes: "anything"})
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 without a roadmap, got %d", rec.Code)
	}
}
