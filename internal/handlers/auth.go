package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/syntra-learn/syntra-api/internal/request"
	"github.com/syntra-learn/syntra-api/internal/services/oidc"
)

// AuthHandler handles authentication-related requests
type AuthHandler struct {
	oidcClient *oidc.Client
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(oidcClient *oidc.Client) *AuthHandler {
	return &AuthHandler{oidcClient: oidcClient}
}

// RegisterRoutes registers auth routes on the given router.
// The router should already carry the /auth prefix.
func (h *AuthHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/oidc/login", h.GetOIDCLogin).Methods("GET")
	r.HandleFunc("/me", h.GetMe).Methods("GET")
}

// LoginConfigResponse carries what the frontend needs to start a login
type LoginConfigResponse struct {
	AuthURL string `json:"auth_url"`
	Issuer  string `json:"issuer"`
}

// GetOIDCLogin returns the authorization URL for the configured provider
func (h *AuthHandler) GetOIDCLogin(w http.ResponseWriter, r *http.Request) {
	if h.oidcClient == nil {
		respondJSONError(w, http.StatusServiceUnavailable, "Service Unavailable", "OIDC login is not configured")
		return
	}

	state := r.URL.Query().Get("state")
	respondJSON(w, http.StatusOK, LoginConfigResponse{
		AuthURL: h.oidcClient.AuthCodeURL(state),
		Issuer:  h.oidcClient.Issuer(),
	})
}

// GetMe returns current user information
func (h *AuthHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	respondJSON(w, http.StatusOK, user)
}
