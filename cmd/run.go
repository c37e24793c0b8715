package cmd

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"wagerbot/bot"
	"wagerbot/config"
	"wagerbot/events"
	"wagerbot/infrastructure"
	"wagerbot/infrastructure/observability"
	"wagerbot/service"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	cfg := config.Get()
	if err := configureLogging(cfg); err != nil {
		return err
	}
	log.Info("Starting wagerbot...")

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	eventBus := events.NewBus()

	metricsProvider := observability.NewMetricsProvider(cfg)
	if err := metricsProvider.Initialize(ctx); err != nil {
		return fmt.Errorf("failed to initialize metrics: %w", err)
	}
	var metrics service.Metrics = service.NoopMetrics{}
	if cfg.OTelEnabled {
		metrics = metricsProvider
	}

	stopBridge, err := startEventBridge(ctx, cfg, eventBus, metricsProvider)
	if err != nil {
		return err
	}

	policy, err := service.ParseExpiryPolicy(cfg.SessionExpiryPolicy)
	if err != nil {
		return err
	}

	ledger := service.NewLedger(store, cfg.StartingBalance, eventBus, metrics)
	engine := service.NewEngine(ledger,
		service.WithMetrics(metrics),
		service.WithEventBus(eventBus),
	)
	stopExpiry := engine.StartExpiryWorker(ctx, service.ExpiryWorkerConfig{
		Policy:            policy,
		IdleTimeout:       cfg.SessionIdleTimeout,
		SweepInterval:     cfg.SessionSweepInterval,
		ResolvedRetention: cfg.ResolvedSessionRetention,
	})

	log.Info("Initializing Discord bot...")
	discordBot, err := bot.New(bot.Config{
		Token:   cfg.DiscordToken,
		GuildID: cfg.DiscordGuildID,
	}, engine)
	if err != nil {
		stopExpiry()
		stopBridge()
		return fmt.Errorf("failed to initialize Discord bot: %w", err)
	}

	log.WithFields(log.Fields{
		"environment":    cfg.Environment,
		"storage":        cfg.StorageDriver,
		"expiry_policy":  policy,
		"idle_timeout":   cfg.SessionIdleTimeout,
		"starting_funds": cfg.StartingBalance,
	}).Info("Bot is running")
	<-ctx.Done()

	log.Info("Shutting down bot...")
	if err := discordBot.Close(); err != nil {
		log.Errorf("Error closing Discord bot: %v", err)
	}
	stopExpiry()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if active := engine.Sessions().Count(); active > 0 {
		log.WithField("sessions", active).Warn("Abandoning open game sessions on shutdown")
	}

	stopBridge()
	if err := metricsProvider.Shutdown(shutdownCtx); err != nil {
		log.Errorf("Error shutting down metrics: %v", err)
	}

	log.Info("Shutdown completed")
	return nil
}

// startEventBridge forwards bus events to NATS JetStream when NATS_SERVERS is set
func startEventBridge(ctx context.Context, cfg *config.Config, bus *events.Bus, observer infrastructure.PublishObserver) (func(), error) {
	if cfg.NATSServers == "" {
		infrastructure.BridgeBus(bus, infrastructure.NewNoopEventPublisher())
		log.Info("NATS_SERVERS not set; domain events stay in-process")
		return func() {}, nil
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client := infrastructure.NewNATSClient(cfg.NATSServers)
	if err := client.Connect(connectCtx); err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	publisher := infrastructure.NewNATSEventPublisher(client, infrastructure.NewEventSubjectMapper(), observer)
	if err := publisher.EnsureDomainEventStream(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ensure event stream: %w", err)
	}
	infrastructure.BridgeBus(bus, publisher)

	return func() {
		if err := client.Close(); err != nil {
			log.Errorf("Error closing NATS connection: %v", err)
		}
	}, nil
}
