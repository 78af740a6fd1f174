// Package api exposes the interview engine over HTTP: the interview turn
// endpoint, the caller's history and transcript review.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/txn2/interview-platform/pkg/auth"
	"github.com/txn2/interview-platform/pkg/interview"
	"github.com/txn2/interview-platform/pkg/speech"
)

// Error kinds reported to clients in errorResponse.Kind.
const (
	kindBadRequest      = "bad_request"
	kindUnknownStage    = "unknown_stage"
	kindInvalidSession  = "invalid_session"
	kindMissingAnswer   = "missing_answer"
	kindMissingSettings = "missing_settings"
	kindEmptyHistory    = "empty_history"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// Config holds API defaults.
type Config struct {
	// DefaultMaxQuestions is used when an init request carries no settings.
	DefaultMaxQuestions int

	// DefaultTimeLimitMinutes is used when an init request carries no settings.
	DefaultTimeLimitMinutes int
}

// Handler serves the interview API.
type Handler struct {
	mux         *http.ServeMux
	routes      http.Handler
	service     *interview.Service
	synthesizer speech.Synthesizer
	authMiddle  func(http.Handler) http.Handler
	reqMiddle   func(http.Handler) http.Handler
	cfg         Config
	logger      *slog.Logger
}

// Option configures a Handler.
type Option func(*Handler)

// WithSynthesizer enables audio replies for clients that accept audio/wav.
func WithSynthesizer(s speech.Synthesizer) Option {
	return func(h *Handler) { h.synthesizer = s }
}

// WithAuthMiddleware wraps every route with the given middleware.
func WithAuthMiddleware(m func(http.Handler) http.Handler) Option {
	return func(h *Handler) { h.authMiddle = m }
}

// WithRequestMiddleware wraps the routes inside authentication, where the
// matched route pattern is visible. Used for request metrics.
func WithRequestMiddleware(m func(http.Handler) http.Handler) Option {
	return func(h *Handler) { h.reqMiddle = m }
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(h *Handler) { h.logger = l }
}

// NewHandler creates the API handler.
func NewHandler(svc *interview.Service, cfg Config, opts ...Option) *Handler {
	h := &Handler{
		mux:     http.NewServeMux(),
		service: svc,
		cfg:     cfg,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.registerRoutes()
	h.routes = h.mux
	if h.reqMiddle != nil {
		h.routes = h.reqMiddle(h.mux)
	}
	if h.authMiddle != nil {
		h.routes = h.authMiddle(h.routes)
	}
	return h
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.routes.ServeHTTP(w, r)
}

// registerRoutes registers all API routes.
func (h *Handler) registerRoutes() {
	h.mux.HandleFunc("POST /api/interview", h.handleInterview)
	h.mux.HandleFunc("GET /api/history", h.handleListHistory)
	h.mux.HandleFunc("GET /api/history/{sessionId}", h.handleGetHistory)
	h.mux.HandleFunc("POST /api/review", h.handleReview)
}

// errorResponse is the JSON body of client errors.
type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, kind, msg string) {
	writeJSON(w, status, errorResponse{Error: msg, Kind: kind})
}

// decodeBody decodes a bounded JSON request body into v.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, kindBadRequest, "invalid request body")
		return false
	}
	return true
}

// writeServiceError maps controller errors to responses. Client errors carry
// their message; everything else is logged and reported opaquely.
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, interview.ErrInvalidSession):
		writeError(w, http.StatusBadRequest, kindInvalidSession, err.Error())
	case errors.Is(err, interview.ErrMissingAnswer):
		writeError(w, http.StatusBadRequest, kindMissingAnswer, err.Error())
	case errors.Is(err, interview.ErrMissingSettings):
		writeError(w, http.StatusBadRequest, kindMissingSettings, err.Error())
	case errors.Is(err, interview.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, "", "session not found")
	default:
		h.logger.Error("request failed", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "", "internal server error")
	}
}

// userID returns the owner id to link sessions to, or "" for anonymous
// callers.
func userID(r *http.Request) string {
	u := auth.GetUser(r.Context())
	if u.Anonymous() {
		return ""
	}
	return u.UserID
}
