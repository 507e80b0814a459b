package app

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/canopyhq/pos-sync-server/internal/config"
	"github.com/canopyhq/pos-sync-server/internal/db"
	"github.com/canopyhq/pos-sync-server/internal/onboard"
	"github.com/canopyhq/pos-sync-server/internal/pos"
	"github.com/canopyhq/pos-sync-server/internal/sync"
	"github.com/canopyhq/pos-sync-server/internal/sync/state"
	"github.com/canopyhq/pos-sync-server/internal/sync/writer"
)

// cliInitiator identifies one-shot command line runs in the run audit trail.
const cliInitiator = "cli"

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run a one-shot sync cycle",
}

var syncInventoryCmd = &cobra.Command{
	Use:   "inventory",
	Short: "Sync inventory for every configured location and exit",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runOneShot(cmd, func(ctx context.Context, m *sync.Manager) (*sync.Summary, error) {
			return m.SyncInventory(ctx, cliInitiator)
		})
	},
}

var syncCustomersCmd = &cobra.Command{
	Use:   "customers",
	Short: "Sync customers for every configured organization and exit",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runOneShot(cmd, func(ctx context.Context, m *sync.Manager) (*sync.Summary, error) {
			return m.SyncCustomers(ctx, cliInitiator)
		})
	},
}

func init() {
	syncCmd.PersistentFlags().String("config", "", "Path to configuration file (YAML format, required)")
	if err := syncCmd.MarkPersistentFlagRequired("config"); err != nil {
		panic(err)
	}
	syncCmd.AddCommand(syncInventoryCmd)
	syncCmd.AddCommand(syncCustomersCmd)
}

func runOneShot(cmd *cobra.Command, cycle func(context.Context, *sync.Manager) (*sync.Summary, error)) error {
	ctx := cmd.Context()

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return fmt.Errorf("failed to get config flag: %w", err)
	}
	cfg, err := config.Load(config.WithConfigPath(configPath))
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	pool, err := db.NewPool(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	runs := state.NewService(state.NewRunRegistry(), state.NewDBRunStore(pool))
	onboarder := onboard.NewService(onboard.NewDBStore(pool))
	manager := sync.NewManager(cfg, pos.NewClientFactory(), writer.NewDBSyncWriter(pool), runs, nil, onboarder)

	summary, err := cycle(ctx, manager)
	if err != nil {
		return err
	}
	fmt.Printf("%s: %d records written", summary.Status, summary.Count)
	if summary.Message != "" {
		fmt.Printf(" (%s)", summary.Message)
	}
	fmt.Println()
	return nil
}
