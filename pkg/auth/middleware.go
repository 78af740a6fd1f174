package auth

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
)

const (
	headerAuthorization = "Authorization"
	headerAPIKey        = "X-API-Key"
	bearerPrefix        = "Bearer "
)

// unauthorizedBody is the response body for rejected requests.
var unauthorizedBody = map[string]string{"message": "Authentication required"}

// Middleware extracts the Bearer token or X-API-Key header, authenticates
// it and stores the identity in the request context. Requests that fail
// authentication get a 401 JSON response.
func Middleware(authenticator Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if token := TokenFromHeader(r.Header); token != "" {
				ctx = WithToken(ctx, token)
			}

			user, err := authenticator.Authenticate(ctx)
			if err != nil || user == nil {
				slog.Debug("request rejected", "path", r.URL.Path, "error", err)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_ = json.NewEncoder(w).Encode(unauthorizedBody)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(ctx, user)))
		})
	}
}

// TokenFromHeader returns the Bearer token or X-API-Key value carried by h,
// or "" when neither is present.
func TokenFromHeader(h http.Header) string {
	if after, ok := strings.CutPrefix(h.Get(headerAuthorization), bearerPrefix); ok {
		return strings.TrimSpace(after)
	}
	return strings.TrimSpace(h.Get(headerAPIKey))
}
