package main

import (
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/aussiebroadwan/tally/internal/tally/app"
	"github.com/aussiebroadwan/tally/pkg/slogx"
)

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the tally CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tally",
		Short: "tally - a shared todo list behind bearer tokens",
		Long: `tally serves a JSON todo list API. Accounts register and log in for
HS256 bearer tokens which every /todoitems route requires.`,
		SilenceUsage: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			// A missing .env is normal outside development.
			_ = godotenv.Load()
		},
	}

	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (YAML)")
	app.RegisterFlags(cmd.PersistentFlags())

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())

	return cmd
}

// loadConfig resolves and validates the configuration for cmd.
func loadConfig(cmd *cobra.Command) (app.Config, error) {
	cfg, err := app.LoadConfig(app.LoadOptions{
		ConfigFile: configFile,
		Flags:      cmd.Flags(),
	})
	if err != nil {
		return app.Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return app.Config{}, err
	}
	return cfg, nil
}

func newLogger(cfg app.Config) *slog.Logger {
	return slogx.New(slogx.Config{
		Service: "tally",
		Version: app.BuildVersion,
		Env:     cfg.Env,
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
	})
}
