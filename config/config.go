package config

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/caarlos0/env/v11"

	"wagerbot/database"
)

// Storage drivers
const (
	StorageDriverPostgres = "postgres"
	StorageDriverSQLite   = "sqlite"
	StorageDriverMemory   = "memory"
)

// Config holds all application configuration
type Config struct {
	// Discord configuration
	DiscordToken   string `env:"DISCORD_TOKEN"`
	DiscordGuildID string `env:"GUILD_ID"`

	// Storage configuration
	StorageDriver string `env:"STORAGE_DRIVER" envDefault:"postgres"`
	DatabaseURL   string `env:"DATABASE_URL"`
	DatabaseName  string `env:"DATABASE_NAME"`
	SQLitePath    string `env:"SQLITE_PATH" envDefault:"wagerbot.db"`
	AutoMigrate   bool   `env:"AUTO_MIGRATE" envDefault:"true"`

	// Game configuration
	StartingBalance          int64         `env:"STARTING_BALANCE" envDefault:"10"`
	SessionIdleTimeout       time.Duration `env:"SESSION_IDLE_TIMEOUT" envDefault:"10m"`
	SessionExpiryPolicy      string        `env:"SESSION_EXPIRY_POLICY" envDefault:"cancel"`
	SessionSweepInterval     time.Duration `env:"SESSION_SWEEP_INTERVAL" envDefault:"30s"`
	ResolvedSessionRetention time.Duration `env:"RESOLVED_SESSION_RETENTION" envDefault:"1h"`

	// Messaging; empty disables the NATS bridge
	NATSServers string `env:"NATS_SERVERS"`

	// Observability
	OTelEnabled        bool          `env:"OTEL_ENABLED" envDefault:"false"`
	OTelServiceName    string        `env:"OTEL_SERVICE_NAME" envDefault:"wagerbot"`
	OTelExporterType   string        `env:"OTEL_EXPORTER_TYPE" envDefault:"console"`
	OTelOTLPEndpoint   string        `env:"OTEL_OTLP_ENDPOINT" envDefault:"localhost:4317"`
	OTelExportInterval time.Duration `env:"OTEL_EXPORT_INTERVAL" envDefault:"30s"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`

	// Environment
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
}

var (
	instance *Config
	once     sync.Once
	mu       sync.Mutex
)

// Get returns the global configuration instance
func Get() *Config {
	mu.Lock()
	defer mu.Unlock()

	if instance != nil {
		return instance
	}

	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			if os.Getenv("ENVIRONMENT") == "test" {
				instance = NewTestConfig()
			} else {
				panic(fmt.Sprintf("failed to load config: %v", err))
			}
		}
	})
	return instance
}

// Load parses the environment without touching the global instance
func Load() (*Config, error) {
	return load()
}

func load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks required settings. Outside the test environment a Discord
// token is required, and the postgres driver needs a database URL.
func (c *Config) Validate() error {
	switch c.StorageDriver {
	case StorageDriverPostgres, StorageDriverSQLite, StorageDriverMemory:
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver)
	}

	switch c.SessionExpiryPolicy {
	case "cancel", "stand":
	default:
		return fmt.Errorf("SESSION_EXPIRY_POLICY must be cancel or stand, got %q", c.SessionExpiryPolicy)
	}

	if c.StartingBalance < 0 {
		return fmt.Errorf("STARTING_BALANCE must not be negative")
	}
	if c.SessionIdleTimeout <= 0 || c.SessionSweepInterval <= 0 {
		return fmt.Errorf("session timeout and sweep interval must be positive")
	}

	if c.Environment == "test" {
		return nil
	}
	if c.DiscordToken == "" {
		return fmt.Errorf("DISCORD_TOKEN is required")
	}
	if c.StorageDriver == StorageDriverPostgres && c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required for the postgres storage driver")
	}
	return nil
}

// GetDatabaseURL combines the base URL and database name
func (c *Config) GetDatabaseURL() string {
	return database.ConstructDatabaseURL(c.DatabaseURL, c.DatabaseName)
}

// Test helpers - only use in tests

// SetTestConfig overrides the global config instance
func SetTestConfig(testConfig *Config) {
	mu.Lock()
	defer mu.Unlock()
	instance = testConfig
}

// ResetConfig clears the global instance so the next Get reloads it
func ResetConfig() {
	mu.Lock()
	defer mu.Unlock()
	instance = nil
	once = sync.Once{}
}

// NewTestConfig creates a minimal config suitable for unit tests
func NewTestConfig() *Config {
	return &Config{
		StorageDriver:            StorageDriverMemory,
		StartingBalance:          10,
		SessionIdleTimeout:       10 * time.Minute,
		SessionExpiryPolicy:      "cancel",
		SessionSweepInterval:     30 * time.Second,
		ResolvedSessionRetention: time.Hour,
		OTelServiceName:          "wagerbot",
		OTelExporterType:         "none",
		LogLevel:                 "info",
		LogFormat:                "text",
		Environment:              "test",
	}
}
