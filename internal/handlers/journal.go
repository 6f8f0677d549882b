package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/syntra-learn/syntra-api/internal/request"
	"github.com/syntra-learn/syntra-api/internal/services/ai"
	"github.com/syntra-learn/syntra-api/internal/validation"
)

// MinJournalEntryLength is the minimum entry length worth analyzing
const MinJournalEntryLength = 5

// JournalHandler handles journal analysis requests. Entries are analyzed
// on the fly and never persisted.
type JournalHandler struct {
	aiProvider ai.AIProvider
	logger     *zap.Logger
}

// NewJournalHandler creates a new journal handler
func NewJournalHandler(aiProvider ai.AIProvider, logger *zap.Logger) *JournalHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &JournalHandler{aiProvider: aiProvider, logger: logger}
}

// RegisterRoutes registers journal routes on the given router.
// The router should already carry the /journal prefix.
func (h *JournalHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/analyze", h.Analyze).Methods("POST")
}

// AnalyzeJournalRequest represents a journal analysis request
type AnalyzeJournalRequest struct {
	Entry string `json:"entry" validate:"required,min=5,max=20000"`
}

// AnalyzeJournalResponse carries the one-sentence advice
type AnalyzeJournalResponse struct {
	Insight string `json:"insight"`
}

// Analyze returns one sentence of advice for a journal entry
func (h *JournalHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	var req AnalyzeJournalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid JSON body")
		return
	}
	req.Entry = validation.SanitizeText(req.Entry)
	if err := validation.Validate.Struct(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Entry must be at least 5 characters")
		return
	}

	lang := request.Language(r)
	insight, err := h.aiProvider.JournalInsight(r.Context(), req.Entry, lang)
	if err != nil {
		if errors.Is(err, ai.ErrDisabled) {
			respondJSONError(w, http.StatusServiceUnavailable, "AI Disabled", "AI features are unavailable: no API key is configured")
			return
		}
		h.logger.Warn("journal_insight_failed",
			zap.String("user_id", user.ID.String()),
			zap.Error(err))
		respondJSONError(w, http.StatusBadGateway, "AI Error", "Failed to analyze entry")
		return
	}

	respondJSON(w, http.StatusOK, AnalyzeJournalResponse{Insight: insight})
}
