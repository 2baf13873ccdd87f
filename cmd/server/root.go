package main

import (
	"fmt"
	"log/slog"

	"github.com/phrazzld/vaultflow/internal/config"
	"github.com/phrazzld/vaultflow/internal/platform/logger"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "vaultflow",
		Short:         "Vaultflow flow host",
		Long:          "Hosts password-manager user flows and carries their pending task across screens.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newServeCmd(),
		newMigrateCmd(),
	)
	return root
}

// loadConfig loads the configuration and sets up the default logger.
// A non-empty logLevel flag overrides the configured level.
func loadConfig(logLevel string) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if logLevel != "" {
		cfg.Server.LogLevel = logLevel
		if err := config.Validate(cfg); err != nil {
			return nil, nil, err
		}
	}

	log, err := logger.Setup(cfg.Server)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to set up logger: %w", err)
	}
	return cfg, log, nil
}
