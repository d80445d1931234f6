package main

import (
	"fmt"
	"os"

	"github.com/kurihiro0119/github-repo-sync/internal/api"
	"github.com/kurihiro0119/github-repo-sync/internal/config"
	"github.com/kurihiro0119/github-repo-sync/internal/log"
	"github.com/kurihiro0119/github-repo-sync/internal/storage"
	"github.com/kurihiro0119/github-repo-sync/internal/storage/postgres"
	"github.com/kurihiro0119/github-repo-sync/internal/storage/sqlite"
)

func main() {
	logger := log.New(os.Getenv("DEBUG") != "")

	// Load configuration
	cfg, err := config.Load(os.Getenv("REPO_SYNC_CONFIG"))
	if err != nil {
		logger.Error("Failed to load configuration: %v", err)
		os.Exit(1)
	}
	if err := cfg.ValidateStorage(); err != nil {
		logger.Error("Invalid configuration: %v", err)
		os.Exit(1)
	}

	// Initialize storage
	var store storage.Storage
	switch cfg.StorageType {
	case "postgres":
		store, err = postgres.NewPostgresStorage(cfg.PostgresURL)
		if err != nil {
			logger.Error("Failed to initialize PostgreSQL storage: %v", err)
			os.Exit(1)
		}
	default:
		store, err = sqlite.NewSQLiteStorage(cfg.SQLitePath)
		if err != nil {
			logger.Error("Failed to initialize SQLite storage: %v", err)
			os.Exit(1)
		}
	}
	defer store.Close()

	router := api.SetupRoutes(api.NewHandler(store), logger)

	// Start server
	addr := fmt.Sprintf("%s:%s", cfg.APIHost, cfg.APIPort)
	logger.Info("Starting API server on %s", addr)
	logger.Info("Storage type: %s", cfg.StorageType)

	if err := router.Run(addr); err != nil {
		logger.Error("Failed to start server: %v", err)
		os.Exit(1)
	}
}
