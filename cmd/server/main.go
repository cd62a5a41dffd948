package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/alanyang/promptshelf/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "promptshelf",
	Short: "Prompt and rule library server",
	Long: `promptshelf serves a personal library of prompts and rules over HTTP and MCP.

Running without a subcommand starts the server.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg = config.Load()
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: cfg.SlogLevel(),
		})))
	},
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(tokenCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}
