package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/alanyang/promptshelf/internal/wire"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := wire.Migrate(cmd.Context(), cfg); err != nil {
			return err
		}
		slog.Info("migrations applied")
		return nil
	},
}
