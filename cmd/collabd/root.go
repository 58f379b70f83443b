package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lupamo/realtime-collab/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "collabd",
	Short: "Collaboration platform API server",
	Long: `collabd is the backend for the real-time collaboration platform.
It serves the authentication, team, project, and task HTTP APIs and
broadcasts task activity for real-time consumers.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		return nil
	},
}

func init() {
	// Global flags; the matching environment variables take effect in
	// config.Load.
	rootCmd.PersistentFlags().String("db-url", "", "Database connection URL (env: DATABASE_URL)")
	rootCmd.PersistentFlags().String("server-addr", "", "Server bind address (env: SERVER_ADDR)")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging (env: DEBUG)")
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
