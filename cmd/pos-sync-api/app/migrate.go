package app

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/spf13/cobra"

	"github.com/canopyhq/pos-sync-server/database"
	"github.com/canopyhq/pos-sync-server/internal/config"
	"github.com/canopyhq/pos-sync-server/internal/logger"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage database migrations",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply pending database migrations",
	RunE:  runMigrateUp,
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back the most recent migration",
	RunE:  runMigrateDown,
}

var migrateVersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the current migration version",
	RunE:  runMigrateVersion,
}

func init() {
	migrateCmd.PersistentFlags().String("config", "", "Path to configuration file (YAML format, required)")
	if err := migrateCmd.MarkPersistentFlagRequired("config"); err != nil {
		panic(err)
	}
	migrateDownCmd.Flags().Bool("yes", false, "Skip the confirmation prompt")

	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateDownCmd)
	migrateCmd.AddCommand(migrateVersionCmd)
}

func newMigrator(cmd *cobra.Command) (database.Migrator, error) {
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("failed to get config flag: %w", err)
	}
	cfg, err := config.Load(config.WithConfigPath(configPath))
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if cfg.Database == nil {
		return nil, fmt.Errorf("database configuration is required")
	}
	connURL, err := cfg.Database.URL()
	if err != nil {
		return nil, fmt.Errorf("failed to build database URL: %w", err)
	}
	return database.NewFromConnectionString(connURL)
}

func runMigrateUp(cmd *cobra.Command, _ []string) error {
	m, err := newMigrator(cmd)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Info("Database schema is up to date")
			return nil
		}
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	logger.Info("Migrations applied")
	return nil
}

func runMigrateDown(cmd *cobra.Command, _ []string) error {
	yes, err := cmd.Flags().GetBool("yes")
	if err != nil {
		return fmt.Errorf("failed to get yes flag: %w", err)
	}
	if !yes {
		return fmt.Errorf("rolling back drops data; re-run with --yes to confirm")
	}

	m, err := newMigrator(cmd)
	if err != nil {
		return err
	}
	if err := m.Steps(-1); err != nil {
		return fmt.Errorf("failed to roll back migration: %w", err)
	}
	logger.Info("Rolled back one migration")
	return nil
}

func runMigrateVersion(cmd *cobra.Command, _ []string) error {
	m, err := newMigrator(cmd)
	if err != nil {
		return err
	}
	version, dirty, err := m.Version()
	if err != nil {
		if errors.Is(err, migrate.ErrNilVersion) {
			logger.Info("No migrations applied yet")
			return nil
		}
		return fmt.Errorf("failed to read migration version: %w", err)
	}
	logger.Infof("Migration version: %d (dirty: %t)", version, dirty)
	return nil
}
