package auth

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

// refreshBuffer refreshes tokens slightly before they expire
const refreshBuffer = 60 * time.Second

// TokenStore persists refreshed tokens
type TokenStore interface {
	UpdateTokens(accessToken, refreshToken string, expiresAt time.Time) error
}

// TokenSource wraps oauth2 refresh with persistence: every new token is
// written to the store before it is handed out
type TokenSource struct {
	config *oauth2.Config
	token  *oauth2.Token
	store  TokenStore
	mu     sync.Mutex
}

// NewTokenSource creates a TokenSource that refreshes as needed and saves
// new tokens to store (which may be nil)
func NewTokenSource(cfg *oauth2.Config, token *oauth2.Token, store TokenStore) *TokenSource {
	return &TokenSource{
		config: cfg,
		token:  token,
		store:  store,
	}
}

// Token returns a valid token, refreshing if necessary
func (ts *TokenSource) Token() (*oauth2.Token, error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if time.Until(ts.token.Expiry) > refreshBuffer {
		return ts.token, nil
	}

	// Force a refresh even if the oauth2 package thinks the token is still valid
	expired := *ts.token
	expired.Expiry = time.Now().Add(-time.Second)

	newToken, err := ts.config.TokenSource(context.Background(), &expired).Token()
	if err != nil {
		return nil, err
	}

	if ts.store != nil {
		if err := ts.store.UpdateTokens(newToken.AccessToken, newToken.RefreshToken, newToken.Expiry); err != nil {
			return nil, err
		}
	}
	log.Info().Time("expires_at", newToken.Expiry).Msg("refreshed strava token")

	ts.token = newToken
	return newToken, nil
}

// IsExpired checks if the current token is expired or will expire within the buffer
func (ts *TokenSource) IsExpired() bool {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return time.Until(ts.token.Expiry) <= refreshBuffer
}
