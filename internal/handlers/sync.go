package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/syntra-learn/syntra-api/internal/request"
	"github.com/syntra-learn/syntra-api/internal/store"
)

// SyncHandler exposes the offline overlay status and the explicit resync path
type SyncHandler struct {
	store  *store.Sync
	logger *zap.Logger
}

// NewSyncHandler creates a new sync handler
func NewSyncHandler(syncStore *store.Sync, logger *zap.Logger) *SyncHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SyncHandler{store: syncStore, logger: logger}
}

// RegisterRoutes registers sync routes on the given router.
// The router should already carry the /sync prefix.
func (h *SyncHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/status", h.Status).Methods("GET")
	r.HandleFunc("/resync", h.Resync).Methods("POST")
}

// SyncStatusResponse reports whether the store is serving from the overlay
type SyncStatusResponse struct {
	Offline bool `json:"offline"`
}

// Status reports the current online/offline mode
func (h *SyncHandler) Status(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, SyncStatusResponse{Offline: h.store.Offline()})
}

// Resync replays the caller's pending records against the remote store
func (h *SyncHandler) Resync(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	if err := h.store.Resync(r.Context(), user.ID); err != nil {
		h.logger.Warn("resync_failed",
			zap.String("user_id", user.ID.String()),
			zap.Error(err))
		respondJSONError(w, http.StatusBadGateway, "Bad Gateway", "Resync failed; pending changes were kept")
		return
	}

	respondJSON(w, http.StatusOK, SyncStatusResponse{Offline: h.store.Offline()})
}
