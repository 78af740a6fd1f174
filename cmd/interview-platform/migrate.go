package main

import (
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/spf13/cobra"

	"github.com/txn2/interview-platform/pkg/database/migrate"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the PostgreSQL session schema",
	}
	cmd.PersistentFlags().String("dsn", "", "PostgreSQL DSN (overrides database.dsn)")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			RunE: withDB(func(cmd *cobra.Command, db *sql.DB) error {
				if err := migrate.Run(db); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
				return nil
			}),
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back all migrations",
			RunE: withDB(func(cmd *cobra.Command, db *sql.DB) error {
				if err := migrate.Down(db); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "migrations rolled back")
				return nil
			}),
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the current schema version",
			RunE: withDB(func(cmd *cobra.Command, db *sql.DB) error {
				v, dirty, err := migrate.Version(db)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "version %d (dirty: %t)\n", v, dirty)
				return nil
			}),
		},
	)
	return cmd
}

// withDB opens the database named by --dsn or database.dsn for fn.
func withDB(fn func(*cobra.Command, *sql.DB) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		dsn, _ := cmd.Flags().GetString("dsn")
		if dsn == "" {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			dsn = cfg.Database.DSN
		}
		if dsn == "" {
			return errors.New("a database DSN is required: pass --dsn or set database.dsn")
		}

		db, err := sql.Open("postgres", dsn)
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer func() { _ = db.Close() }()
		return fn(cmd, db)
	}
}
