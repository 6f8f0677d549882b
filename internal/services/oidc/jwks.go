package oidc

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwk"
)

const jwksRefreshInterval = time.Hour

// JWKSManager hands out the provider's key set, backed by the jwx
// auto-refreshing cache. URLs are registered lazily on first use.
type JWKSManager struct {
	cache      *jwk.Cache
	mu         sync.Mutex
	registered map[string]bool
}

// NewJWKSManager builds a manager whose background refresh is bound to ctx.
func NewJWKSManager(ctx context.Context) *JWKSManager {
	return &JWKSManager{
		cache:      jwk.NewCache(ctx),
		registered: make(map[string]bool),
	}
}

// GetJWKS returns the key set served at jwksURL, fetching it on first use
// and refreshing it hourly after that.
func (m *JWKSManager) GetJWKS(ctx context.Context, jwksURL string) (jwk.Set, error) {
	if err := m.register(jwksURL); err != nil {
		return nil, err
	}

	keys, err := m.cache.Get(ctx, jwksURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch JWKS: %w", err)
	}
	return keys, nil
}

func (m *JWKSManager) register(jwksURL string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.registered[jwksURL] {
		return nil
	}
	if err := m.cache.Register(jwksURL, jwk.WithMinRefreshInterval(jwksRefreshInterval)); err != nil {
		return fmt.Errorf("failed to register JWKS URL: %w", err)
	}
	m.registered[jwksURL] = true
	return nil
}
