package observability

import (
	"context"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"

	"wagerbot/config"
	"wagerbot/models"
	"wagerbot/service"
)

// MetricsProvider records engine metrics through OpenTelemetry. Until it is
// initialized with an exporter every Record call is a no-op.
type MetricsProvider struct {
	config        *config.Config
	meterProvider *sdkmetric.MeterProvider
	meter         metric.Meter
	initialized   bool
	mu            sync.RWMutex

	gamesStartedCounter          metric.Int64Counter
	gamesResolvedCounter         metric.Int64Counter
	sessionsActiveGauge          metric.Int64UpDownCounter
	sessionsExpiredCounter       metric.Int64Counter
	balanceTransactionsCounter   metric.Int64Counter
	natsMessagesPublishedCounter metric.Int64Counter
}

var _ service.Metrics = (*MetricsProvider)(nil)

func NewMetricsProvider(cfg *config.Config) *MetricsProvider {
	return &MetricsProvider{config: cfg}
}

// Initialize sets up the exporter selected by OTEL_EXPORTER_TYPE
func (mp *MetricsProvider) Initialize(ctx context.Context) error {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if mp.initialized {
		return nil
	}

	if !mp.config.OTelEnabled {
		log.Info("OpenTelemetry metrics disabled")
		mp.initialized = true
		return nil
	}

	var exporter sdkmetric.Exporter
	var err error
	switch mp.config.OTelExporterType {
	case "console":
		exporter, err = stdoutmetric.New()
		if err != nil {
			return fmt.Errorf("failed to create console exporter: %w", err)
		}
		log.Info("Using console metric exporter")

	case "otlp":
		dialCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		exporter, err = otlpmetricgrpc.New(dialCtx,
			otlpmetricgrpc.WithEndpoint(mp.config.OTelOTLPEndpoint),
			otlpmetricgrpc.WithInsecure(),
		)
		if err != nil {
			return fmt.Errorf("failed to create OTLP exporter: %w", err)
		}
		log.WithField("endpoint", mp.config.OTelOTLPEndpoint).Info("Using OTLP metric exporter")

	case "none":
		log.Info("Metrics export disabled (exporter_type='none')")
		mp.initialized = true
		return nil

	default:
		return fmt.Errorf("unknown exporter type: %s", mp.config.OTelExporterType)
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(mp.config.OTelExportInterval))
	if err := mp.setup(reader); err != nil {
		return err
	}

	otel.SetMeterProvider(mp.meterProvider)
	log.Info("Metrics provider initialized")
	return nil
}

// setup builds the meter provider around reader. The caller holds mp.mu.
func (mp *MetricsProvider) setup(reader sdkmetric.Reader) error {
	res, err := resource.Merge(
		resource.Default(),
		resource.NewSchemaless(
			semconv.ServiceName(mp.config.OTelServiceName),
			attribute.String("environment", mp.config.Environment),
		),
	)
	if err != nil {
		return fmt.Errorf("failed to create resource: %w", err)
	}

	mp.meterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(reader),
	)
	mp.meter = mp.meterProvider.Meter("wagerbot")

	if err := mp.createInstruments(); err != nil {
		return fmt.Errorf("failed to create instruments: %w", err)
	}

	mp.initialized = true
	return nil
}

func (mp *MetricsProvider) createInstruments() error {
	var err error

	mp.gamesStartedCounter, err = mp.meter.Int64Counter(
		GamesStartedTotal,
		metric.WithDescription("Total number of accepted wagers"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create games started counter: %w", err)
	}

	mp.gamesResolvedCounter, err = mp.meter.Int64Counter(
		GamesResolvedTotal,
		metric.WithDescription("Total number of settled games"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create games resolved counter: %w", err)
	}

	mp.sessionsActiveGauge, err = mp.meter.Int64UpDownCounter(
		SessionsActive,
		metric.WithDescription("Current number of open interactive sessions"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create sessions active gauge: %w", err)
	}

	mp.sessionsExpiredCounter, err = mp.meter.Int64Counter(
		SessionsExpiredTotal,
		metric.WithDescription("Total number of sessions reclaimed after idling"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create sessions expired counter: %w", err)
	}

	mp.balanceTransactionsCounter, err = mp.meter.Int64Counter(
		BalanceTransactionsTotal,
		metric.WithDescription("Total number of balance transactions"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create balance transactions counter: %w", err)
	}

	mp.natsMessagesPublishedCounter, err = mp.meter.Int64Counter(
		NATSMessagesPublishedTotal,
		metric.WithDescription("Total number of NATS messages published"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create NATS messages published counter: %w", err)
	}

	return nil
}

// Shutdown flushes and stops the meter provider
func (mp *MetricsProvider) Shutdown(ctx context.Context) error {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if mp.meterProvider == nil {
		return nil
	}
	if err := mp.meterProvider.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown meter provider: %w", err)
	}
	mp.meterProvider = nil
	return nil
}

func (mp *MetricsProvider) GameStarted(ctx context.Context, game models.GameType) {
	if !mp.isEnabled() {
		return
	}
	mp.gamesStartedCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String(LabelGame, string(game)),
	))
}

func (mp *MetricsProvider) GameResolved(ctx context.Context, game models.GameType, outcome models.Outcome) {
	if !mp.isEnabled() {
		return
	}
	mp.gamesResolvedCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String(LabelGame, string(game)),
		attribute.String(LabelOutcome, string(outcome)),
	))
}

func (mp *MetricsProvider) SessionOpened(ctx context.Context, game models.GameType) {
	if !mp.isEnabled() {
		return
	}
	mp.sessionsActiveGauge.Add(ctx, 1, metric.WithAttributes(
		attribute.String(LabelGame, string(game)),
	))
}

func (mp *MetricsProvider) SessionClosed(ctx context.Context, game models.GameType) {
	if !mp.isEnabled() {
		return
	}
	mp.sessionsActiveGauge.Add(ctx, -1, metric.WithAttributes(
		attribute.String(LabelGame, string(game)),
	))
}

func (mp *MetricsProvider) SessionExpired(ctx context.Context, game models.GameType, policy service.ExpiryPolicy) {
	if !mp.isEnabled() {
		return
	}
	mp.sessionsExpiredCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String(LabelGame, string(game)),
		attribute.String(LabelPolicy, string(policy)),
	))
}

func (mp *MetricsProvider) BalanceTransaction(ctx context.Context, txType models.TransactionType) {
	if !mp.isEnabled() {
		return
	}
	mp.balanceTransactionsCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String(LabelType, txType.String()),
	))
}

// RecordNATSMessagePublished records an event leaving the process
func (mp *MetricsProvider) RecordNATSMessagePublished(eventType string) {
	if !mp.isEnabled() {
		return
	}
	mp.natsMessagesPublishedCounter.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String(LabelEventType, eventType),
	))
}

// isEnabled reports whether instruments exist to record into
func (mp *MetricsProvider) isEnabled() bool {
	mp.mu.RLock()
	defer mp.mu.RUnlock()
	return mp.initialized && mp.meterProvider != nil
}
