package main

import (
	"log/slog"
	"os"

	"github.com/Bunny099/reservation-api/internal/config"
	"github.com/Bunny099/reservation-api/internal/logging"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	var envFile string

	rootCmd := &cobra.Command{
		Use:          "reservation-api",
		Short:        "Room lease reservation service",
		Long:         "reservation-api admits, confirms and cancels capacity-bounded room leases over HTTP.",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "path to a .env file (default: search cwd and parents)")

	serveCmd := newServeCmd(&envFile)
	rootCmd.RunE = serveCmd.RunE
	rootCmd.AddCommand(serveCmd, newMigrateCmd(&envFile))

	return rootCmd
}

// bootstrap loads config and installs the process logger.
func bootstrap(envFile string) (config.Config, *slog.Logger, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return config.Config{}, nil, err
	}
	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stderr)
	if err != nil {
		return config.Config{}, nil, err
	}
	slog.SetDefault(logger)
	if cfg.EnvFile != "" {
		logger.Info("loaded env file", "path", cfg.EnvFile)
	}
	return cfg, logger, nil
}
