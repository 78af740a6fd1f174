package platform

import (
	"database/sql"
	"log/slog"

	"github.com/txn2/interview-platform/pkg/auth"
	"github.com/txn2/interview-platform/pkg/interview"
	"github.com/txn2/interview-platform/pkg/session"
	"github.com/txn2/interview-platform/pkg/speech"
)

// Options configures the platform. Every collaborator is optional and is
// created from Config when not provided.
type Options struct {
	// Config is the platform configuration.
	Config *Config

	// Version is reported to MCP clients.
	Version string

	// Logger defaults to slog.Default().
	Logger *slog.Logger

	// DB is used by the postgres store instead of opening database.dsn.
	// The caller keeps ownership and closes it.
	DB *sql.DB

	SessionStore  session.Store
	Synthesizer   speech.Synthesizer
	Reviewer      interview.Reviewer
	Authenticator auth.Authenticator

	// ServiceOptions are appended to the options the platform passes to
	// interview.NewService.
	ServiceOptions []interview.Option
}

// Option is a functional option for configuring the platform.
type Option func(*Options)

// WithConfig sets the configuration.
func WithConfig(cfg *Config) Option {
	return func(o *Options) { o.Config = cfg }
}

// WithVersion sets the version reported to MCP clients.
func WithVersion(v string) Option {
	return func(o *Options) { o.Version = v }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *Options) { o.Logger = l }
}

// WithDB sets a caller-owned database connection.
func WithDB(db *sql.DB) Option {
	return func(o *Options) { o.DB = db }
}

// WithSessionStore sets the session store.
func WithSessionStore(s session.Store) Option {
	return func(o *Options) { o.SessionStore = s }
}

// WithSynthesizer sets the speech synthesizer.
func WithSynthesizer(s speech.Synthesizer) Option {
	return func(o *Options) { o.Synthesizer = s }
}

// WithReviewer sets the transcript reviewer.
func WithReviewer(r interview.Reviewer) Option {
	return func(o *Options) { o.Reviewer = r }
}

// WithAuthenticator sets the API authenticator.
func WithAuthenticator(a auth.Authenticator) Option {
	return func(o *Options) { o.Authenticator = a }
}

// WithServiceOptions adds options for the interview service.
func WithServiceOptions(opts ...interview.Option) Option {
	return func(o *Options) { o.ServiceOptions = append(o.ServiceOptions, opts...) }
}
