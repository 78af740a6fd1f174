package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/txn2/interview-platform/internal/server"
	"github.com/txn2/interview-platform/pkg/platform"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if addr, _ := cmd.Flags().GetString("address"); addr != "" {
				cfg.Server.Address = addr
			}

			logger := platform.NewLogger(cfg.Log, os.Stderr)
			slog.SetDefault(logger)

			p, err := server.New(cfg, platform.WithLogger(logger))
			if err != nil {
				return err
			}
			defer func() { _ = p.Close() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return server.ListenAndRun(ctx, p, logger)
		},
	}
	cmd.Flags().String("address", "", "Listen address (overrides server.address)")
	return cmd
}
