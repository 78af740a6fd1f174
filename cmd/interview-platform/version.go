package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/txn2/interview-platform/internal/server"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the current version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "interview-platform version", server.Version)
		},
	}
}
