package auth

import (
	"context"
	"fmt"
)

// ChainedAuthenticator tries multiple authenticators in order.
type ChainedAuthenticator struct {
	authenticators []Authenticator
	allowAnonymous bool
}

// ChainedAuthConfig configures the chained authenticator.
type ChainedAuthConfig struct {
	AllowAnonymous bool
}

// NewChainedAuthenticator creates a new chained authenticator.
func NewChainedAuthenticator(cfg ChainedAuthConfig, authenticators ...Authenticator) *ChainedAuthenticator {
	return &ChainedAuthenticator{
		authenticators: authenticators,
		allowAnonymous: cfg.AllowAnonymous,
	}
}

// Authenticate tries each authenticator in order. When all fail and
// anonymous access is allowed, the caller is admitted as anonymous.
func (c *ChainedAuthenticator) Authenticate(ctx context.Context) (*UserInfo, error) {
	var lastErr error

	for _, a := range c.authenticators {
		userInfo, err := a.Authenticate(ctx)
		if err == nil && userInfo != nil {
			return userInfo, nil
		}
		if err != nil {
			lastErr = err
		}
	}

	if c.allowAnonymous {
		return &UserInfo{
			UserID:   AnonymousUserID,
			AuthType: AuthTypeAnonymous,
		}, nil
	}

	if lastErr != nil {
		return nil, lastErr
	}
	return nil, fmt.Errorf("authentication failed")
}

// Verify interface compliance.
var _ Authenticator = (*ChainedAuthenticator)(nil)
