package cmd

import (
	"context"
	"path/filepath"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wagerbot/config"
	"wagerbot/events"
	"wagerbot/repository/memory"
	"wagerbot/repository/sqlite"
)

func TestConfigureLogging(t *testing.T) {
	defer log.SetLevel(log.InfoLevel)
	defer log.SetFormatter(&log.TextFormatter{})

	cfg := config.NewTestConfig()
	cfg.LogLevel = "debug"
	cfg.LogFormat = "json"
	require.NoError(t, configureLogging(cfg))
	assert.Equal(t, log.DebugLevel, log.GetLevel())
	assert.IsType(t, &log.JSONFormatter{}, log.StandardLogger().Formatter)

	cfg.LogLevel = "chatty"
	assert.Error(t, configureLogging(cfg))
}

func TestOpenStore(t *testing.T) {
	ctx := context.Background()

	t.Run("memory", func(t *testing.T) {
		cfg := config.NewTestConfig()
		cfg.StorageDriver = config.StorageDriverMemory

		store, closeStore, err := openStore(ctx, cfg)
		require.NoError(t, err)
		defer closeStore()
		assert.IsType(t, &memory.Store{}, store)
	})

	t.Run("sqlite", func(t *testing.T) {
		cfg := config.NewTestConfig()
		cfg.StorageDriver = config.StorageDriverSQLite
		cfg.SQLitePath = filepath.Join(t.TempDir(), "wagerbot.db")

		store, closeStore, err := openStore(ctx, cfg)
		require.NoError(t, err)
		defer closeStore()
		assert.IsType(t, &sqlite.Store{}, store)

		balance, created, err := store.Increment(ctx, 1, 0, 10)
		require.NoError(t, err)
		assert.True(t, created)
		assert.Equal(t, int64(10), balance)
	})

	t.Run("unknown driver", func(t *testing.T) {
		cfg := config.NewTestConfig()
		cfg.StorageDriver = "etcd"

		_, _, err := openStore(ctx, cfg)
		assert.ErrorContains(t, err, "unknown storage driver")
	})
}

func TestStartEventBridgeWithoutNATS(t *testing.T) {
	cfg := config.NewTestConfig()
	cfg.NATSServers = ""

	stop, err := startEventBridge(context.Background(), cfg, events.NewBus(), nil)
	require.NoError(t, err)
	stop()
}
