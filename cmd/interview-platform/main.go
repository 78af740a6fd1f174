// Package main provides the entry point for the interview-platform server.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/txn2/interview-platform/pkg/platform"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "interview-platform",
		Short:         "Japanese mock technical interview server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("config", "", "Path to configuration file")

	serve := newServeCmd()
	root.AddCommand(serve, newMigrateCmd(), newPlayCmd(), newVersionCmd())
	root.RunE = serve.RunE
	root.Flags().AddFlagSet(serve.Flags())
	return root
}

// loadConfig reads --config, falling back to the defaults when unset.
func loadConfig(cmd *cobra.Command) (*platform.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		return platform.DefaultConfig(), nil
	}
	cfg, err := platform.LoadConfig(path)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}
