package cmd

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"wagerbot/config"
	"wagerbot/database"
	"wagerbot/repository"
	"wagerbot/repository/memory"
	"wagerbot/repository/sqlite"
	"wagerbot/service"
)

// openStore builds the AccountStore named by STORAGE_DRIVER.
// The returned func releases whatever the store holds open.
func openStore(ctx context.Context, cfg *config.Config) (service.AccountStore, func(), error) {
	switch cfg.StorageDriver {
	case config.StorageDriverPostgres:
		databaseURL := cfg.GetDatabaseURL()
		if cfg.AutoMigrate {
			log.Info("Running database migrations...")
			if err := database.RunMigrationsWithURL(databaseURL); err != nil {
				return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
			}
		}

		log.Info("Connecting to database...")
		db, err := database.NewConnection(ctx, databaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		log.Info("Database connection established successfully")
		return repository.NewStore(db), db.Close, nil

	case config.StorageDriverSQLite:
		store, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open sqlite store: %w", err)
		}
		log.WithField("path", cfg.SQLitePath).Info("SQLite store opened")
		return store, func() {
			if err := store.Close(); err != nil {
				log.Errorf("Error closing sqlite store: %v", err)
			}
		}, nil

	case config.StorageDriverMemory:
		log.Warn("Using in-memory storage; balances are lost on restart")
		return memory.NewStore(), func() {}, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage driver: %s", cfg.StorageDriver)
	}
}
