package main

import (
	"log/slog"

	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	var down bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long: `Bring the configured database schema to the latest version, or with
--down revert every migration.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			slog.Info("Starting database migration", "driver", cfg.Database.Driver, "down", down)
			if err := migrateStore(cfg.Database, down); err != nil {
				return err
			}
			slog.Info("Database migration complete")
			return nil
		},
	}

	cmd.Flags().BoolVar(&down, "down", false, "revert all migrations")
	return cmd
}
