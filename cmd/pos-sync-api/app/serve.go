package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	v1 "github.com/canopyhq/pos-sync-server/internal/api/v1"
	"github.com/canopyhq/pos-sync-server/internal/config"
	"github.com/canopyhq/pos-sync-server/internal/db"
	"github.com/canopyhq/pos-sync-server/internal/logger"
	"github.com/canopyhq/pos-sync-server/internal/onboard"
	"github.com/canopyhq/pos-sync-server/internal/pos"
	"github.com/canopyhq/pos-sync-server/internal/sync"
	"github.com/canopyhq/pos-sync-server/internal/sync/coordinator"
	"github.com/canopyhq/pos-sync-server/internal/sync/state"
	"github.com/canopyhq/pos-sync-server/internal/sync/writer"
	"github.com/canopyhq/pos-sync-server/internal/telemetry"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the POS sync API server",
	Long: `Start the POS sync API server.

The server requires a configuration file (--config) that specifies the
organizations to synchronize, their POS credentials, and the database
connection. Scheduled syncing is enabled by setting sync.inventoryInterval
and sync.customerInterval.`,
	RunE: runServe,
}

const (
	defaultGracefulTimeout = 30 * time.Second
	serverReadTimeout      = 10 * time.Second
	// the watch endpoint parks requests for up to 60s, so the write timeout
	// and the request timeout must both exceed that
	serverRequestTimeout = 75 * time.Second
	serverWriteTimeout   = 90 * time.Second
	serverIdleTimeout    = 120 * time.Second

	// runHistoryLimit caps how many past runs are loaded into the registry
	// at startup
	runHistoryLimit = 100
)

func init() {
	serveCmd.Flags().String("address", ":8080", "Address to listen on")
	serveCmd.Flags().String("config", "", "Path to configuration file (YAML format, required)")

	if err := viper.BindPFlag("address", serveCmd.Flags().Lookup("address")); err != nil {
		logger.Fatalf("Failed to bind address flag: %v", err)
	}
	if err := viper.BindPFlag("config", serveCmd.Flags().Lookup("config")); err != nil {
		logger.Fatalf("Failed to bind config flag: %v", err)
	}
	if err := serveCmd.MarkFlagRequired("config"); err != nil {
		logger.Fatalf("Failed to mark config flag as required: %v", err)
	}
}

func runServe(_ *cobra.Command, _ []string) error {
	ctx := context.Background()
	address := viper.GetString("address")

	logger.Infof("Starting POS sync API server on %s", address)

	configPath := viper.GetString("config")
	cfg, err := config.Load(config.WithConfigPath(configPath))
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger.Infof("Loaded configuration from %s (%d organizations)",
		configPath, len(cfg.Organizations))

	pool, err := db.NewPool(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	// Telemetry is optional; a nil metrics value is a no-op recorder.
	var metrics *telemetry.SyncMetrics
	metricsEnabled := cfg.Telemetry != nil && cfg.Telemetry.Metrics
	if metricsEnabled {
		provider, err := telemetry.NewMeterProvider()
		if err != nil {
			return fmt.Errorf("failed to create meter provider: %w", err)
		}
		defer func() {
			if err := provider.Shutdown(ctx); err != nil {
				logger.Errorf("Failed to shut down meter provider: %v", err)
			}
		}()
		metrics, err = telemetry.NewSyncMetrics(provider)
		if err != nil {
			return fmt.Errorf("failed to create sync metrics: %w", err)
		}
	}

	registry := state.NewRunRegistry()
	// Warm the registry from the audit table so /v1/runs has history across
	// restarts. A failure here is not fatal; the registry just starts empty.
	if history, err := state.LoadRecentRuns(ctx, pool, runHistoryLimit); err != nil {
		logger.Errorf("Failed to load run history: %v", err)
	} else {
		for _, run := range history {
			registry.Record(run)
		}
	}
	runs := state.NewService(registry, state.NewDBRunStore(pool))
	syncWriter := writer.NewDBSyncWriter(pool)
	onboarder := onboard.NewService(onboard.NewDBStore(pool))

	manager := sync.NewManager(cfg, pos.NewClientFactory(), syncWriter, runs, metrics, onboarder)

	// Background scheduling is on only when intervals are configured.
	syncCoordinator, err := coordinator.NewFromConfig(&cfg.Sync, manager)
	if err != nil {
		return fmt.Errorf("failed to create sync coordinator: %w", err)
	}
	if syncCoordinator != nil {
		syncCoordinator.Start(ctx)
		defer syncCoordinator.Stop()
		logger.Info("Sync coordinator started")
	}

	router := v1.NewServer(manager, registry,
		v1.WithMiddlewares(
			middleware.RequestID,
			middleware.RealIP,
			middleware.Recoverer,
			middleware.Timeout(serverRequestTimeout),
			v1.LoggingMiddleware,
		),
	)
	if metricsEnabled {
		router.Handle("/metrics", promhttp.Handler())
	}

	server := &http.Server{
		Addr:         address,
		Handler:      router,
		ReadTimeout:  serverReadTimeout,
		WriteTimeout: serverWriteTimeout,
		IdleTimeout:  serverIdleTimeout,
	}

	go func() {
		logger.Infof("Server listening on %s", address)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), defaultGracefulTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
		return err
	}

	logger.Info("Server shutdown complete")
	return nil
}
