package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spec-kit/grievance-service/internal/config"
)

func migrateCmd() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "apply SQL migrations (postgres) or ensure indexes (mongo)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.Store.Driver == config.StoreDriverMemory {
				return fmt.Errorf("nothing to migrate for the %s store", cfg.Store.Driver)
			}
			cfg.Postgres.RunMigrations = true
			if dir != "" {
				cfg.Postgres.MigrationsDir = dir
			}
			backend, err := openBackend(cmd)
			if err != nil {
				return err
			}
			defer backend.Close()
			logger.Info("store schema is up to date", zap.String("driver", backend.Driver))
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "directory holding *.sql migrations")
	return cmd
}
