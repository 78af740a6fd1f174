// Package server builds the HTTP server for the interview platform and runs
// it until its context is cancelled.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/txn2/interview-platform/pkg/platform"
)

// Version is set at build time.
var Version = "dev"

// NewWithConfig loads the configuration at path and assembles a platform.
// An empty path uses the defaults.
func NewWithConfig(path string, opts ...platform.Option) (*platform.Platform, error) {
	cfg := platform.DefaultConfig()
	if path != "" {
		var err error
		cfg, err = platform.LoadConfig(path)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
	}
	return New(cfg, opts...)
}

// New assembles a platform from cfg, stamping the build version.
func New(cfg *platform.Config, opts ...platform.Option) (*platform.Platform, error) {
	base := []platform.Option{platform.WithConfig(cfg), platform.WithVersion(Version)}
	p, err := platform.New(append(base, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("creating platform: %w", err)
	}
	return p, nil
}

// NewHTTPServer returns an http.Server for p using the configured address
// and timeouts.
func NewHTTPServer(p *platform.Platform) *http.Server {
	cfg := p.Config().Server
	return &http.Server{
		Addr:              cfg.Address,
		Handler:           p.Handler(),
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
	}
}

// Run starts p, serves on ln until ctx is done, then drains in-flight
// requests and stops p within the configured shutdown timeout.
func Run(ctx context.Context, p *platform.Platform, ln net.Listener, logger *slog.Logger) error {
	if err := p.Start(ctx); err != nil {
		return err
	}

	srv := NewHTTPServer(p)
	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "address", ln.Addr().String(), "version", Version)
		errCh <- srv.Serve(ln)
	}()

	var serveErr error
	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case serveErr = <-errCh:
		if errors.Is(serveErr, http.ErrServerClosed) {
			serveErr = nil
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.Config().Server.ShutdownTimeout)
	defer cancel()

	var errs []error
	if serveErr != nil {
		errs = append(errs, fmt.Errorf("serving http: %w", serveErr))
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("shutting down http server: %w", err))
	}
	if err := p.Stop(shutdownCtx); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// ListenAndRun listens on the configured address and calls Run.
func ListenAndRun(ctx context.Context, p *platform.Platform, logger *slog.Logger) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", p.Config().Server.Address)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", p.Config().Server.Address, err)
	}
	return Run(ctx, p, ln, logger)
}
