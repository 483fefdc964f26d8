package main

import (
	"github.com/spf13/cobra"

	"github.com/aussiebroadwan/tally/internal/tally/app"
)

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long: `Connect to the database, apply pending migrations and serve the API
until SIGINT or SIGTERM.`,
		RunE: runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	application, err := app.NewWithLogger(cmd.Context(), cfg, newLogger(cfg))
	if err != nil {
		return err
	}
	return application.Run(cmd.Context())
}
