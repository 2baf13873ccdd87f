package main

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/vaultflow/internal/config"
	"github.com/phrazzld/vaultflow/internal/platform/postgres"
	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	var logLevel string
	cmd := &cobra.Command{
		Use:       "migrate {up|down|status|version}",
		Short:     "Manage the saved-state database schema",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{postgres.MigrateUp, postgres.MigrateDown, postgres.MigrateStatus, postgres.MigrateVersion},
		RunE: func(cmd *cobra.Command, args []string) error {
			command := args[0]

			cfg, log, err := loadConfig(logLevel)
			if err != nil {
				return err
			}
			if cfg.Database.URL == "" {
				return fmt.Errorf("database.url is required to run migrations (set %s_DATABASE_URL)", config.EnvPrefix)
			}

			log = log.With("correlation_id", uuid.NewString())
			start := time.Now()

			db, err := postgres.Open(cmd.Context(), cfg.Database.URL, log)
			if err != nil {
				return err
			}
			defer func() {
				if err := db.Close(); err != nil {
					log.Error("error closing database connection", "error", err)
				}
			}()

			if err := postgres.Migrate(cmd.Context(), db, command, log); err != nil {
				return err
			}
			log.Info("migration operation completed",
				"command", command,
				"duration_ms", time.Since(start).Milliseconds())
			return nil
		},
	}
	cmd.Flags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn or error")
	return cmd
}
