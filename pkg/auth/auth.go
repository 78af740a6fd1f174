// Package auth authenticates API callers with static API keys or HMAC-signed
// JWTs and carries the resulting identity through the request context.
package auth

import (
	"context"
	"errors"
)

// Auth types reported in UserInfo.AuthType.
const (
	AuthTypeAPIKey    = "apikey"
	AuthTypeJWT       = "jwt"
	AuthTypeAnonymous = "anonymous"

	// AnonymousUserID identifies callers admitted without credentials.
	AnonymousUserID = "anonymous"
)

// ErrNoCredentials is returned when a request carries no token.
var ErrNoCredentials = errors.New("no credentials in context")

// UserInfo is the authenticated identity of a caller.
type UserInfo struct {
	UserID   string `json:"user_id"`
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
	AuthType string `json:"auth_type"`
}

// Anonymous reports whether the caller was admitted without credentials.
func (u *UserInfo) Anonymous() bool {
	return u == nil || u.AuthType == AuthTypeAnonymous
}

// Authenticator resolves the caller identity from the token in ctx.
type Authenticator interface {
	Authenticate(ctx context.Context) (*UserInfo, error)
}

// contextKey is a private type for context keys.
type contextKey int

const (
	tokenContextKey contextKey = iota
	userContextKey
)

// WithToken adds a raw credential to the context.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenContextKey, token)
}

// GetToken retrieves the raw credential from the context.
func GetToken(ctx context.Context) string {
	if token, ok := ctx.Value(tokenContextKey).(string); ok {
		return token
	}
	return ""
}

// WithUser adds the authenticated identity to the context.
func WithUser(ctx context.Context, u *UserInfo) context.Context {
	return context.WithValue(ctx, userContextKey, u)
}

// GetUser retrieves the authenticated identity from the context.
func GetUser(ctx context.Context) *UserInfo {
	if u, ok := ctx.Value(userContextKey).(*UserInfo); ok {
		return u
	}
	return nil
}
