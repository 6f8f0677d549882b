package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/syntra-learn/syntra-api/internal/database"
	"github.com/syntra-learn/syntra-api/internal/models"
	"github.com/syntra-learn/syntra-api/internal/request"
)

// InboxHandler handles inbox message requests
type InboxHandler struct {
	inboxRepo database.InboxRepositoryInterface
}

// NewInboxHandler creates a new inbox handler
func NewInboxHandler(inboxRepo database.InboxRepositoryInterface) *InboxHandler {
	return &InboxHandler{inboxRepo: inboxRepo}
}

// RegisterRoutes registers inbox routes on the given router.
// The router should already carry the /inbox prefix.
func (h *InboxHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.ListMessages).Methods("GET")
	r.HandleFunc("/{id}/read", h.MarkRead).Methods("POST")
}

// ListMessages lists inbox messages for the authenticated user, newest first
func (h *InboxHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	messages, err := h.inboxRepo.GetByUserID(r.Context(), user.ID)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to list messages")
		return
	}
	if messages == nil {
		messages = []models.InboxMessage{}
	}

	respondJSON(w, http.StatusOK, messages)
}

// MarkRead marks an inbox message as read
func (h *InboxHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid message ID")
		return
	}

	if err := h.inboxRepo.MarkRead(r.Context(), id, user.ID); err != nil {
		respondJSONError(w, http.StatusNotFound, "Not Found", "Message not found")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"read": id})
}
