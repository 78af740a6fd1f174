// Package platform assembles the interview service from configuration: it
// chooses the session store, wires speech, review, authentication, metrics
// and MCP, and serves everything from one HTTP handler.
package platform

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/txn2/interview-platform/pkg/api"
	"github.com/txn2/interview-platform/pkg/auth"
	"github.com/txn2/interview-platform/pkg/database/migrate"
	"github.com/txn2/interview-platform/pkg/health"
	"github.com/txn2/interview-platform/pkg/interview"
	"github.com/txn2/interview-platform/pkg/metrics"
	"github.com/txn2/interview-platform/pkg/middleware"
	"github.com/txn2/interview-platform/pkg/review"
	"github.com/txn2/interview-platform/pkg/session"
	pgstore "github.com/txn2/interview-platform/pkg/session/postgres"
	redisstore "github.com/txn2/interview-platform/pkg/session/redis"
	"github.com/txn2/interview-platform/pkg/speech"
	interviewkit "github.com/txn2/interview-platform/pkg/toolkits/interview"
)

// Platform is the assembled interview service.
type Platform struct {
	config    *Config
	logger    *slog.Logger
	lifecycle *Lifecycle
	health    *health.Checker

	store         session.Store
	synthesizer   speech.Synthesizer
	reviewer      interview.Reviewer
	authenticator auth.Authenticator
	service       *interview.Service

	mcpServer *mcp.Server
	handler   http.Handler
}

// New creates a new platform instance.
func New(opts ...Option) (*Platform, error) {
	options := &Options{}
	for _, opt := range opts {
		opt(options)
	}

	if options.Config == nil {
		return nil, errors.New("config is required")
	}
	if err := options.Config.Validate(); err != nil {
		return nil, err
	}

	p := &Platform{
		config:    options.Config,
		logger:    options.Logger,
		lifecycle: NewLifecycle(),
		health:    health.NewChecker(),
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}

	if err := p.initializeComponents(options); err != nil {
		_ = p.lifecycle.Shutdown(context.Background())
		return nil, fmt.Errorf("initializing components: %w", err)
	}
	return p, nil
}

// initializeComponents initializes all platform components.
func (p *Platform) initializeComponents(opts *Options) error {
	if err := p.initStore(opts); err != nil {
		return err
	}
	if err := p.initCollaborators(opts); err != nil {
		return err
	}
	if err := p.initAuth(opts); err != nil {
		return err
	}
	p.initService(opts)
	if err := p.initMCP(opts); err != nil {
		return err
	}
	p.handler = p.buildHandler()
	return nil
}

// initStore creates the configured session store and registers its
// cleanup routine and readiness check.
func (p *Platform) initStore(opts *Options) error {
	defer func() {
		if p.store != nil {
			p.health.AddCheck("session_store", p.store.Ping)
		}
	}()

	if opts.SessionStore != nil {
		p.store = opts.SessionStore
		return nil
	}

	cfg := p.config.Store
	switch cfg.Provider {
	case StoreRedis:
		rs, err := redisstore.New(redisstore.Config{
			Addr:      p.config.Redis.Addr,
			Password:  p.config.Redis.Password,
			DB:        p.config.Redis.DB,
			KeyPrefix: cfg.KeyPrefix,
			TTL:       cfg.TTL,
		})
		if err != nil {
			return fmt.Errorf("creating redis session store: %w", err)
		}
		p.lifecycle.RegisterCloser("redis session store", rs)
		p.store = rs

	case StorePostgres:
		db, err := p.openDB(opts)
		if err != nil {
			return err
		}
		pg := pgstore.New(db, pgstore.Config{TTL: cfg.TTL})
		p.lifecycle.OnStart("postgres session cleanup", func(context.Context) error {
			pg.StartCleanupRoutine(cfg.CleanupInterval)
			return nil
		})
		p.lifecycle.RegisterCloser("postgres session store", pg)
		p.store = pg

	default:
		mem := session.NewMemoryStore(cfg.TTL)
		p.lifecycle.OnStart("memory session cleanup", func(context.Context) error {
			mem.StartCleanupRoutine(cfg.CleanupInterval)
			return nil
		})
		p.lifecycle.RegisterCloser("memory session store", mem)
		p.store = mem
	}

	p.logger.Info("session store ready", "provider", cfg.Provider, "ttl", cfg.TTL)
	return nil
}

// openDB returns the caller's database or opens database.dsn, applying
// migrations when configured.
func (p *Platform) openDB(opts *Options) (*sql.DB, error) {
	db := opts.DB
	if db == nil {
		var err error
		db, err = sql.Open("postgres", p.config.Database.DSN)
		if err != nil {
			return nil, fmt.Errorf("opening database: %w", err)
		}
		db.SetMaxOpenConns(p.config.Database.MaxOpenConns)
		p.lifecycle.RegisterCloser("database", db)
	}

	if p.config.Database.Migrate {
		if err := migrate.Run(db); err != nil {
			return nil, fmt.Errorf("migrating database: %w", err)
		}
	}
	return db, nil
}

// initCollaborators creates the speech synthesizer and transcript reviewer.
func (p *Platform) initCollaborators(opts *Options) error {
	p.synthesizer = opts.Synthesizer
	if p.synthesizer == nil && p.config.Speech.Enabled {
		client, err := speech.NewVoicevoxClient(speech.Config{
			URL:     p.config.Speech.URL,
			Speaker: p.config.Speech.Speaker,
			Timeout: p.config.Speech.Timeout,
		})
		if err != nil {
			return fmt.Errorf("creating speech client: %w", err)
		}
		p.synthesizer = client
	}

	p.reviewer = opts.Reviewer
	if p.reviewer == nil && p.config.Review.Enabled {
		r, err := review.NewGeminiReviewer(context.Background(), review.Config{
			APIKey: p.config.Review.APIKey,
			Model:  p.config.Review.Model,
		})
		if err != nil {
			return fmt.Errorf("creating reviewer: %w", err)
		}
		p.reviewer = r
	}
	return nil
}

// initAuth builds the authenticator chain from configuration.
func (p *Platform) initAuth(opts *Options) error {
	if opts.Authenticator != nil {
		p.authenticator = opts.Authenticator
		return nil
	}

	var chain []auth.Authenticator
	if keys := p.config.Auth.APIKeys; len(keys) > 0 {
		cfg := auth.APIKeyConfig{Keys: make([]auth.APIKey, 0, len(keys))}
		for _, k := range keys {
			cfg.Keys = append(cfg.Keys, auth.APIKey{Key: k.Key, KeyHash: k.KeyHash, Name: k.Name})
		}
		chain = append(chain, auth.NewAPIKeyAuthenticator(cfg))
	}
	if jwtCfg := p.config.Auth.JWT; jwtCfg.Enabled {
		j, err := auth.NewJWTAuthenticator(auth.JWTConfig{
			Issuer:     jwtCfg.Issuer,
			SigningKey: []byte(jwtCfg.SigningKey),
		})
		if err != nil {
			return fmt.Errorf("creating jwt authenticator: %w", err)
		}
		chain = append(chain, j)
	}

	p.authenticator = auth.NewChainedAuthenticator(
		auth.ChainedAuthConfig{AllowAnonymous: !p.config.Auth.Required}, chain...)
	return nil
}

func (p *Platform) initService(opts *Options) {
	svcOpts := []interview.Option{interview.WithLogger(p.logger)}
	if p.reviewer != nil {
		svcOpts = append(svcOpts, interview.WithReviewer(p.reviewer))
	}
	if p.config.Metrics.Enabled {
		svcOpts = append(svcOpts, interview.WithRecorder(metrics.NewRecorder()))
	}
	svcOpts = append(svcOpts, opts.ServiceOptions...)
	p.service = interview.NewService(p.store, svcOpts...)
}

// initMCP creates the MCP server with the interview toolkit.
func (p *Platform) initMCP(opts *Options) error {
	if !p.config.MCP.Enabled {
		return nil
	}

	version := opts.Version
	if version == "" {
		version = "dev"
	}
	p.mcpServer = mcp.NewServer(&mcp.Implementation{Name: p.config.Server.Name, Version: version}, nil)

	var observe middleware.ToolCallObserver
	if p.config.Metrics.Enabled {
		observe = metrics.ObserveToolCall
	}
	p.mcpServer.AddReceivingMiddleware(middleware.MCPToolCallMiddleware(p.logger, observe))

	tk, err := interviewkit.New(p.config.Server.Name, p.service, interviewkit.Config{
		DefaultMaxQuestions:     p.config.Interview.DefaultMaxQuestions,
		DefaultTimeLimitMinutes: p.config.Interview.DefaultTimeLimitMinutes,
		Authenticator:           p.authenticator,
	})
	if err != nil {
		return fmt.Errorf("creating interview toolkit: %w", err)
	}
	tk.RegisterTools(p.mcpServer)
	p.lifecycle.RegisterCloser("interview toolkit", tk)
	return nil
}

// buildHandler mounts the API, probes, metrics and MCP endpoints.
func (p *Platform) buildHandler() http.Handler {
	authMiddle := auth.Middleware(p.authenticator)

	apiOpts := []api.Option{
		api.WithAuthMiddleware(authMiddle),
		api.WithLogger(p.logger),
	}
	if p.synthesizer != nil {
		apiOpts = append(apiOpts, api.WithSynthesizer(p.synthesizer))
	}
	if p.config.Metrics.Enabled {
		apiOpts = append(apiOpts, api.WithRequestMiddleware(metrics.Middleware))
	}

	mux := http.NewServeMux()
	mux.Handle("/api/", api.NewHandler(p.service, api.Config{
		DefaultMaxQuestions:     p.config.Interview.DefaultMaxQuestions,
		DefaultTimeLimitMinutes: p.config.Interview.DefaultTimeLimitMinutes,
	}, apiOpts...))
	mux.Handle("GET /healthz", p.health.LivenessHandler())
	mux.Handle("GET /readyz", p.health.ReadinessHandler())
	if p.config.Metrics.Enabled {
		mux.Handle("GET /metrics", metrics.Handler())
	}
	if p.mcpServer != nil {
		mcpHandler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server { return p.mcpServer }, nil)
		mux.Handle("/mcp", authMiddle(mcpHandler))
	}
	return mux
}

// Start starts background components and marks the platform ready.
func (p *Platform) Start(ctx context.Context) error {
	if err := p.lifecycle.Start(ctx); err != nil {
		return fmt.Errorf("starting platform: %w", err)
	}
	p.health.SetReady()
	p.logger.Info("platform started", "name", p.config.Server.Name)
	return nil
}

// Stop marks the platform draining and stops components in reverse order.
func (p *Platform) Stop(ctx context.Context) error {
	p.health.SetDraining()
	if err := p.lifecycle.Stop(ctx); err != nil {
		return fmt.Errorf("stopping platform: %w", err)
	}
	p.logger.Info("platform stopped")
	return nil
}

// Close releases every resource whether or not Start was called.
func (p *Platform) Close() error {
	if p.lifecycle.IsStarted() {
		return p.Stop(context.Background())
	}
	p.health.SetDraining()
	return p.lifecycle.Shutdown(context.Background())
}

// Config returns the platform configuration.
func (p *Platform) Config() *Config {
	return p.config
}

// Handler returns the HTTP handler serving every endpoint.
func (p *Platform) Handler() http.Handler {
	return p.handler
}

// Service returns the interview lifecycle controller.
func (p *Platform) Service() *interview.Service {
	return p.service
}

// MCPServer returns the MCP server, or nil when MCP is disabled.
func (p *Platform) MCPServer() *mcp.Server {
	return p.mcpServer
}

// Health returns the readiness checker.
func (p *Platform) Health() *health.Checker {
	return p.health
}
