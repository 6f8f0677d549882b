package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/syntra-learn/syntra-api/internal/database"
	"github.com/syntra-learn/syntra-api/internal/models"
	"github.com/syntra-learn/syntra-api/internal/request"
	"github.com/syntra-learn/syntra-api/internal/services/ai"
	"github.com/syntra-learn/syntra-api/internal/store"
	"github.com/syntra-learn/syntra-api/internal/validation"
)

// RoadmapHandler handles goal roadmap requests
type RoadmapHandler struct {
	store       *store.Sync
	profileRepo database.ProfileRepositoryInterface
	aiProvider  ai.AIProvider
	logger      *zap.Logger
}

// NewRoadmapHandler creates a new roadmap handler
func NewRoadmapHandler(s *store.Sync, profileRepo database.ProfileRepositoryInterface, aiProvider ai.AIProvider, logger *zap.Logger) *RoadmapHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RoadmapHandler{store: s, profileRepo: profileRepo, aiProvider: aiProvider, logger: logger}
}

// RegisterRoutes registers roadmap routes on the given router.
// The router should already carry the /roadmap prefix.
func (h *RoadmapHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.GetRoadmap).Methods("GET")
	r.HandleFunc("/generate", h.Generate).Methods("POST")
	r.HandleFunc("/notes", h.SetNotes).Methods("PUT")
	r.HandleFunc("/nodes/{id}/toggle", h.ToggleNode).Methods("POST")
}

// GenerateRoadmapRequest represents a roadmap generation request
type GenerateRoadmapRequest struct {
	Goal string `json:"goal" validate:"required,min=1,max=2000"`
}

// SetNotesRequest represents a roadmap notes update
type SetNotesRequest struct {
	Notes string `json:"notes" validate:"max=20000"`
}

// GetRoadmap returns the user's roadmap, or 404 when none exists
func (h *RoadmapHandler) GetRoadmap(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	roadmap, err := h.store.GetRoadmap(r.Context(), user.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondJSONError(w, http.StatusNotFound, "Not Found", "No roadmap generated yet")
			return
		}
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to load roadmap")
		return
	}

	respondJSON(w, http.StatusOK, roadmap)
}

// Generate replaces the user's roadmap wholesale with a freshly generated
// plan. A model or parse failure leaves the previous roadmap untouched.
func (h *RoadmapHandler) Generate(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	var req GenerateRoadmapRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid JSON body")
		return
	}
	req.Goal = validation.SanitizeText(req.Goal)
	if err := validation.Validate.Struct(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Goal must be 1-2000 characters")
		return
	}

	ctx := r.Context()
	lang := request.Language(r)

	profile, err := h.profileRepo.GetByUserID(ctx, user.ID)
	if err != nil {
		profile = models.GuestProfile(user.ID)
	}

	roadmap, err := h.aiProvider.GenerateRoadmap(ctx, req.Goal, profile, lang)
	if err != nil {
		if errors.Is(err, ai.ErrDisabled) {
			respondJSONError(w, http.StatusServiceUnavailable, "AI Disabled", "AI features are unavailable: no API key is configured")
			return
		}
		h.logger.Warn("roadmap_generation_failed",
			zap.String("user_id", user.ID.String()),
			zap.Error(err))
		respondJSONError(w, http.StatusBadGateway, "AI Error", "Failed to generate roadmap")
		return
	}

	roadmap.UserID = user.ID
	if err := h.store.PutRoadmap(ctx, roadmap); err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to save roadmap")
		return
	}

	respondJSON(w, http.StatusCreated, roadmap)
}

// ToggleNode flips one roadmap node between pending and done
func (h *RoadmapHandler) ToggleNode(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	nodeID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil || nodeID < 1 {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid node ID")
		return
	}

	ctx := r.Context()
	roadmap, err := h.store.GetRoadmap(ctx, user.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondJSONError(w, http.StatusNotFound, "Not Found", "No roadmap generated yet")
			return
		}
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to load roadmap")
		return
	}

	found := false
	for i := range roadmap.Nodes {
		if roadmap.Nodes[i].ID != nodeID {
			continue
		}
		if roadmap.Nodes[i].Status == models.NodeStatusDone {
			roadmap.Nodes[i].Status = models.NodeStatusPending
		} else {
			roadmap.Nodes[i].Status = models.NodeStatusDone
		}
		found = true
		break
	}
	if !found {
		respondJSONError(w, http.StatusNotFound, "Not Found", "Node not found")
		return
	}

	if err := h.store.PutRoadmap(ctx, roadmap); err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to save roadmap")
		return
	}

	respondJSON(w, http.StatusOK, roadmap)
}

// SetNotes replaces the free-text notes attached to the roadmap
func (h *RoadmapHandler) SetNotes(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	var req SetNotesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid JSON body")
		return
	}
	if err := validation.Validate.Struct(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Notes too long")
		return
	}

	ctx := r.Context()
	roadmap, err := h.store.GetRoadmap(ctx, user.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondJSONError(w, http.StatusNotFound, "Not Found", "No roadmap generated yet")
			return
		}
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to load roadmap")
		return
	}

	roadmap.Notes = req.Notes
	if err := h.store.PutRoadmap(ctx, roadmap); err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to save notes")
		return
	}

	respondJSON(w, http.StatusOK, roadmap)
}
