package main

import (
	"log"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spec-kit/grievance-service/internal/config"
	"github.com/spec-kit/grievance-service/internal/observability"
	"github.com/spec-kit/grievance-service/internal/persistence"
)

var rootCmd = &cobra.Command{
	Use:   "grievancectl",
	Short: "grievancectl manages the grievance service store",
	Long:  "grievancectl prepares the configured store and bootstraps staff and admin accounts.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadConfig()
	},
	SilenceUsage: true,
}

var (
	storeDriver string
	cfg         *config.Config
	logger      *zap.Logger
)

func loadConfig() error {
	var err error
	cfg, err = config.Load()
	if err != nil {
		return err
	}
	if storeDriver != "" {
		cfg.Store.Driver = storeDriver
	}
	logger, err = observability.NewLogger(cfg.Logger)
	return err
}

func openBackend(cmd *cobra.Command) (*persistence.Backend, error) {
	return persistence.OpenBackend(cmd.Context(), *cfg, logger)
}

func main() {
	rootCmd.PersistentFlags().StringVar(&storeDriver, "store", "", "override STORE_DRIVER (postgres, mongo)")
	rootCmd.AddCommand(migrateCmd(), createUserCmd())
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
