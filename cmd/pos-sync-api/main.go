// Package main is the entry point for the POS sync API server.
package main

import (
	"os"

	"github.com/spf13/viper"

	"github.com/canopyhq/pos-sync-server/cmd/pos-sync-api/app"
	"github.com/canopyhq/pos-sync-server/internal/logger"
)

func main() {
	viper.SetEnvPrefix("POS_SYNC")
	viper.AutomaticEnv()

	logger.Initialize(viper.GetBool("debug") || os.Getenv("POS_SYNC_DEBUG") != "")
	defer func() { _ = logger.Sync() }()

	if err := app.NewRootCmd().Execute(); err != nil {
		logger.Errorf("Command failed: %v", err)
		os.Exit(1)
	}
}
