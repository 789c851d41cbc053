// Package commands implements the dungji command line.
package commands

import (
	"fmt"
	"os"

	"dungji/internal/config"
	"dungji/internal/database"
	"dungji/internal/logging"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// newRootCmd builds the command tree.
func newRootCmd() *cobra.Command {
	var envFile string

	rootCmd := &cobra.Command{
		Use:   "dungji",
		Short: "Dungji Market - group buying marketplace backend",
		Long: `Dungji Market serves the group buying API: a category tree, products,
accounts with JWT authentication, group buys and their participants.

Configuration is read from the environment and an optional .env file.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Path of the .env file to load")

	rootCmd.AddCommand(
		newServeCmd(&envFile),
		newMigrateCmd(&envFile),
		newSeedCmd(&envFile),
	)
	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// bootstrap loads the configuration and the logger it names.
func bootstrap(envFile string) (*config.Config, *logrus.Logger, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logging.New(cfg.LogLevel), nil
}

// openDatabase connects to the configured database and migrates it.
func openDatabase(cfg *config.Config, log *logrus.Logger) (*gorm.DB, error) {
	db, err := database.Open(cfg.DBDriver, cfg.DatabaseDSN, log)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		closeDB(db, log)
		return nil, err
	}
	log.WithField("driver", cfg.DBDriver).Info("Database ready")
	return db, nil
}

func closeDB(db *gorm.DB, log *logrus.Logger) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		log.Warnf("Error closing database: %v", err)
	}
}
