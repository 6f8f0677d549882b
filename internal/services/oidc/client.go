package oidc

import (
	"context"

	"golang.org/x/oauth2"

	"github.com/syntra-learn/syntra-api/internal/config"
)

// Client wraps OAuth2 client functionality for the configured OIDC provider.
type Client struct {
	config *oauth2.Config
	issuer string
}

// NewClient creates a new OAuth2 client from application config.
func NewClient(cfg *config.Config) *Client {
	oc := &oauth2.Config{
		ClientID:     cfg.OIDCClientID,
		ClientSecret: cfg.OIDCClientSecret,
		RedirectURL:  cfg.OIDCRedirectURI,
		Scopes:       []string{"openid", "email", "profile"},
		Endpoint: oauth2.Endpoint{
			AuthURL:  cfg.OIDCIssuer + "/oauth2/authorize",
			TokenURL: cfg.OIDCIssuer + "/oauth2/token",
		},
	}
	return &Client{config: oc, issuer: cfg.OIDCIssuer}
}

// Issuer returns the configured token issuer.
func (c *Client) Issuer() string {
	return c.issuer
}

// ExchangeCode exchanges an authorization code for tokens
func (c *Client) ExchangeCode(ctx context.Context, code string) (*oauth2.Token, error) {
	return c.config.Exchange(ctx, code)
}

// AuthCodeURL returns the authorization URL
func (c *Client) AuthCodeURL(state string) string {
	return c.config.AuthCodeURL(state)
}
