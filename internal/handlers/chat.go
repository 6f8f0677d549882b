package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/syntra-learn/syntra-api/internal/models"
	"github.com/syntra-learn/syntra-api/internal/request"
	chatsvc "github.com/syntra-learn/syntra-api/internal/services/chat"
	"github.com/syntra-learn/syntra-api/internal/store"
	"github.com/syntra-learn/syntra-api/internal/validation"
)

// MaxChatMessageLength is the maximum length for a chat message
const MaxChatMessageLength = 8000

// ChatHandler handles conversation requests
type ChatHandler struct {
	service *chatsvc.Service
	store   *store.Sync
	logger  *zap.Logger
}

// NewChatHandler creates a new chat handler
func NewChatHandler(service *chatsvc.Service, s *store.Sync, logger *zap.Logger) *ChatHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChatHandler{service: service, store: s, logger: logger}
}

// RegisterRoutes registers chat routes on the given router.
// The router should already carry the /chat prefix.
func (h *ChatHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.History).Methods("GET")
	r.HandleFunc("", h.Send).Methods("POST")
}

// SendMessageRequest represents a chat send request
type SendMessageRequest struct {
	Text string `json:"text" validate:"required,min=1,max=8000"`
}

// HistoryResponse carries the conversation log plus connectivity state
type HistoryResponse struct {
	Messages []models.ChatMessage `json:"messages"`
	Offline  bool                 `json:"offline"`
}

// SendResponse carries the assistant's reply and any task annotations
// produced by applying its directives.
type SendResponse struct {
	Message     *models.ChatMessage `json:"message"`
	Annotations []string            `json:"annotations"`
	Offline     bool                `json:"offline"`
}

// History returns the full conversation log for the authenticated user
func (h *ChatHandler) History(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	messages, err := h.service.History(r.Context(), user.ID)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to load history")
		return
	}
	if messages == nil {
		messages = []models.ChatMessage{}
	}

	respondJSON(w, http.StatusOK, HistoryResponse{Messages: messages, Offline: h.store.Offline()})
}

// Send runs one conversation turn: the user message is persisted, the model
// replies, directives are applied to the planner, and the stripped assistant
// message comes back with its annotations.
func (h *ChatHandler) Send(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	var req SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid JSON body")
		return
	}
	req.Text = validation.SanitizeText(req.Text)
	if err := validation.Validate.Struct(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Message must be 1-8000 characters")
		return
	}

	lang := request.Language(r)
	msg, annotations, err := h.service.Send(r.Context(), user.ID, lang, req.Text)
	if err != nil {
		h.logger.Error("chat_send_failed",
			zap.String("user_id", user.ID.String()),
			zap.Error(err))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to send message")
		return
	}
	if annotations == nil {
		annotations = []string{}
	}

	respondJSON(w, http.StatusOK, SendResponse{
		Message:     msg,
		Annotations: annotations,
		Offline:     h.store.Offline(),
	})
}
