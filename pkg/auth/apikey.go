package auth

import (
	"context"
	"crypto/subtle"
	"fmt"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// APIKey is one configured key. Exactly one of Key (plain text) or KeyHash
// (bcrypt) should be set.
type APIKey struct {
	Key     string
	KeyHash string
	Name    string
}

// APIKeyConfig holds API key configuration.
type APIKeyConfig struct {
	Keys []APIKey
}

// APIKeyAuthenticator authenticates using API keys.
type APIKeyAuthenticator struct {
	mu   sync.RWMutex
	keys []APIKey
}

// NewAPIKeyAuthenticator creates a new API key authenticator.
func NewAPIKeyAuthenticator(cfg APIKeyConfig) *APIKeyAuthenticator {
	keys := make([]APIKey, len(cfg.Keys))
	copy(keys, cfg.Keys)
	return &APIKeyAuthenticator{keys: keys}
}

// HashKey returns the bcrypt hash to store in place of a plain key.
func HashKey(key string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing api key: %w", err)
	}
	return string(hash), nil
}

// Authenticate validates the API key and returns user info.
func (a *APIKeyAuthenticator) Authenticate(ctx context.Context) (*UserInfo, error) {
	token := GetToken(ctx)
	if token == "" {
		return nil, ErrNoCredentials
	}

	a.mu.RLock()
	defer a.mu.RUnlock()

	for _, k := range a.keys {
		if k.matches(token) {
			return &UserInfo{
				UserID:   "apikey:" + k.Name,
				Name:     k.Name,
				AuthType: AuthTypeAPIKey,
			}, nil
		}
	}
	return nil, fmt.Errorf("invalid API key")
}

func (k APIKey) matches(token string) bool {
	if k.KeyHash != "" {
		return bcrypt.CompareHashAndPassword([]byte(k.KeyHash), []byte(token)) == nil
	}
	return k.Key != "" && subtle.ConstantTimeCompare([]byte(k.Key), []byte(token)) == 1
}

// AddKey adds an API key at runtime.
func (a *APIKeyAuthenticator) AddKey(key APIKey) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.keys = append(a.keys, key)
}

// Verify interface compliance.
var _ Authenticator = (*APIKeyAuthenticator)(nil)
