package middleware

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/syntra-learn/syntra-api/internal/database"
	"github.com/syntra-learn/syntra-api/internal/request"
	"github.com/syntra-learn/syntra-api/internal/services/oidc"
)

// AuthConfig carries the OIDC settings the auth middleware verifies against.
type AuthConfig struct {
	Issuer  string
	JWKSURL string
	// AllowGuest maps unauthenticated requests to the shared guest account
	// instead of rejecting them.
	AllowGuest bool
}

// Auth creates authentication middleware that validates JWT bearer tokens and
// attaches the resolved user to the request context.
func Auth(users database.UserRepositoryInterface, jwksManager *oidc.JWKSManager, cfg AuthConfig) func(http.Handler) http.Handler {
	verifier := oidc.NewVerifier(jwksManager, cfg.Issuer)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				if !cfg.AllowGuest {
					respondError(w, http.StatusUnauthorized, "Missing Authorization header")
					return
				}
				guest, err := users.GetOrCreateGuest(ctx)
				if err != nil {
					respondError(w, http.StatusInternalServerError, "Failed to resolve guest user")
					return
				}
				next.ServeHTTP(w, r.WithContext(request.WithUser(ctx, guest)))
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				respondError(w, http.StatusUnauthorized, "Invalid Authorization header format")
				return
			}

			if cfg.JWKSURL == "" {
				respondError(w, http.StatusInternalServerError, "JWKS URL not configured")
				return
			}

			claims, err := verifier.Verify(ctx, parts[1], cfg.JWKSURL)
			if err != nil {
				log.Printf("Token verification failed: %v (issuer: %s)", err, cfg.Issuer)
				respondError(w, http.StatusUnauthorized, "Invalid or expired token")
				return
			}

			sub := claims.Sub
			var name *string
			if claims.Name != "" {
				name = &claims.Name
			}
			user, _, err := users.GetOrCreate(ctx, claims.Email, &sub, name)
			if err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					respondError(w, http.StatusUnauthorized, "Unknown user")
					return
				}
				log.Printf("Database error while resolving user: %v", err)
				respondError(w, http.StatusInternalServerError, "Database error")
				return
			}

			next.ServeHTTP(w, r.WithContext(request.WithUser(ctx, user)))
		})
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := map[string]any{
		"success": false,
		"error":   message,
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Printf("Failed to encode error response: %v", err)
	}
}
