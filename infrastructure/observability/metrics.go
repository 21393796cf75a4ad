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

	"kudos/config"
	"kudos/events"
)

// MetricsProvider manages OpenTelemetry metrics for the kudos service
type MetricsProvider struct {
	config        *config.Config
	meterProvider *sdkmetric.MeterProvider
	meter         metric.Meter
	reader        sdkmetric.Reader
	initialized   bool
	mu            sync.RWMutex

	// Metric instruments
	interactionsCounter          metric.Int64Counter
	transfersCounter             metric.Int64Counter
	kudosTransferredCounter      metric.Int64Counter
	seasonChangesCounter         metric.Int64Counter
	usersRegisteredCounter       metric.Int64Counter
	votesCounter                 metric.Int64Counter
	sessionOutcomesCounter       metric.Int64Counter
	natsMessagesPublishedCounter metric.Int64Counter
	databaseQueriesCounter       metric.Int64Counter
	databaseQueryDurationHist    metric.Float64Histogram
}

// NewMetricsProvider creates a new metrics provider
func NewMetricsProvider(cfg *config.Config) *MetricsProvider {
	return &MetricsProvider{
		config: cfg,
	}
}

// NewMetricsProviderWithReader creates a provider that exports through the
// given reader instead of the configured exporter
func NewMetricsProviderWithReader(cfg *config.Config, reader sdkmetric.Reader) *MetricsProvider {
	return &MetricsProvider{
		config: cfg,
		reader: reader,
	}
}

// Initialize sets up the OpenTelemetry metrics provider
func (mp *MetricsProvider) Initialize(ctx context.Context) error {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if mp.initialized {
		log.Debug("Metrics provider already initialized")
		return nil
	}

	if !mp.config.OTelEnabled {
		log.Info("OpenTelemetry metrics disabled")
		mp.initialized = true
		return nil
	}

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

	reader := mp.reader
	if reader == nil {
		var exporter sdkmetric.Exporter
		switch mp.config.OTelExporterType {
		case "console":
			exporter, err = stdoutmetric.New()
			if err != nil {
				return fmt.Errorf("failed to create console exporter: %w", err)
			}
			log.Info("Using console metric exporter")

		case "otlp":
			ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()

			exporter, err = otlpmetricgrpc.New(ctx,
				otlpmetricgrpc.WithEndpoint(mp.config.OTelEndpoint),
				otlpmetricgrpc.WithInsecure(),
			)
			if err != nil {
				return fmt.Errorf("failed to create OTLP exporter: %w", err)
			}
			log.WithField("endpoint", mp.config.OTelEndpoint).Info("Using OTLP metric exporter")

		case "none":
			log.Info("Metrics export disabled (exporter_type='none')")
			mp.initialized = true
			return nil

		default:
			return fmt.Errorf("unknown exporter type: %s", mp.config.OTelExporterType)
		}

		interval := mp.config.OTelExportInterval
		if interval <= 0 {
			interval = 30 * time.Second
		}
		reader = sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(interval))
	}

	mp.meterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(reader),
	)
	otel.SetMeterProvider(mp.meterProvider)
	mp.meter = mp.meterProvider.Meter("kudos")

	if err := mp.createInstruments(); err != nil {
		return fmt.Errorf("failed to create instruments: %w", err)
	}

	mp.initialized = true
	log.Info("Metrics provider initialized successfully")
	return nil
}

func (mp *MetricsProvider) counter(target *metric.Int64Counter, name, description string) error {
	c, err := mp.meter.Int64Counter(name, metric.WithDescription(description), metric.WithUnit("1"))
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", name, err)
	}
	*target = c
	return nil
}

// createInstruments creates all metric instruments
func (mp *MetricsProvider) createInstruments() error {
	counters := []struct {
		target      *metric.Int64Counter
		name        string
		description string
	}{
		{&mp.interactionsCounter, InteractionsTotal, "Total number of Discord interactions handled"},
		{&mp.transfersCounter, TransfersTotal, "Total number of committed transfers"},
		{&mp.kudosTransferredCounter, KudosTransferredTotal, "Total kudos moved by committed transfers"},
		{&mp.seasonChangesCounter, SeasonChangesTotal, "Total number of season activations and deactivations"},
		{&mp.usersRegisteredCounter, UsersRegisteredTotal, "Total number of members registered"},
		{&mp.votesCounter, VotesTotal, "Total number of votes recorded"},
		{&mp.sessionOutcomesCounter, SessionOutcomesTotal, "Total number of finished guided sessions"},
		{&mp.natsMessagesPublishedCounter, NATSMessagesPublishedTotal, "Total number of NATS messages published"},
		{&mp.databaseQueriesCounter, DatabaseQueriesTotal, "Total number of database transactions"},
	}
	for _, c := range counters {
		if err := mp.counter(c.target, c.name, c.description); err != nil {
			return err
		}
	}

	var err error
	mp.databaseQueryDurationHist, err = mp.meter.Float64Histogram(
		DatabaseQueryDuration,
		metric.WithDescription("Duration of database transactions in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0),
	)
	if err != nil {
		return fmt.Errorf("failed to create database query duration histogram: %w", err)
	}

	return nil
}

// Shutdown flushes and shuts down the metrics provider
func (mp *MetricsProvider) Shutdown(ctx context.Context) error {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if mp.meterProvider != nil {
		return mp.meterProvider.Shutdown(ctx)
	}
	return nil
}

// Register subscribes the ledger counters to the event bus
func (mp *MetricsProvider) Register(bus *events.Bus) {
	bus.Subscribe(events.EventTypeTransferCommitted, func(ctx context.Context, e events.Event) {
		if ev, ok := e.(events.TransferCommittedEvent); ok {
			mp.RecordTransfer(ctx, ev.Amount)
		}
	})
	bus.Subscribe(events.EventTypeVoteRecorded, func(ctx context.Context, e events.Event) {
		if ev, ok := e.(events.VoteRecordedEvent); ok {
			mp.RecordVote(ctx, ev.Changed)
		}
	})
	bus.Subscribe(events.EventTypeSeasonActivated, func(ctx context.Context, _ events.Event) {
		mp.RecordSeasonChange(ctx, SeasonChangeActivated)
	})
	bus.Subscribe(events.EventTypeSeasonDeactivated, func(ctx context.Context, _ events.Event) {
		mp.RecordSeasonChange(ctx, SeasonChangeDeactivated)
	})
	bus.Subscribe(events.EventTypeUserRegistered, func(ctx context.Context, _ events.Event) {
		mp.RecordUserRegistered(ctx)
	})
}

// RecordInteraction records a Discord interaction being handled
func (mp *MetricsProvider) RecordInteraction(interactionType string) {
	if !mp.isEnabled() {
		return
	}
	mp.interactionsCounter.Add(context.Background(), 1,
		metric.WithAttributes(attribute.String(LabelType, interactionType)),
	)
}

// RecordTransfer records a committed transfer and its amount
func (mp *MetricsProvider) RecordTransfer(ctx context.Context, amount int64) {
	if !mp.isEnabled() {
		return
	}
	mp.transfersCounter.Add(ctx, 1)
	mp.kudosTransferredCounter.Add(ctx, amount)
}

// RecordVote records a vote; changed marks an overwritten answer
func (mp *MetricsProvider) RecordVote(ctx context.Context, changed bool) {
	if !mp.isEnabled() {
		return
	}
	mp.votesCounter.Add(ctx, 1, metric.WithAttributes(attribute.Bool(LabelChanged, changed)))
}

// RecordSeasonChange records a season activation or deactivation
func (mp *MetricsProvider) RecordSeasonChange(ctx context.Context, change string) {
	if !mp.isEnabled() {
		return
	}
	mp.seasonChangesCounter.Add(ctx, 1, metric.WithAttributes(attribute.String(LabelType, change)))
}

// RecordUserRegistered records a first-seen member
func (mp *MetricsProvider) RecordUserRegistered(ctx context.Context) {
	if !mp.isEnabled() {
		return
	}
	mp.usersRegisteredCounter.Add(ctx, 1)
}

// RecordSessionOutcome records how a guided session ended
func (mp *MetricsProvider) RecordSessionOutcome(ctx context.Context, flow, outcome string) {
	if !mp.isEnabled() {
		return
	}
	mp.sessionOutcomesCounter.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String(LabelFlow, flow),
			attribute.String(LabelOutcome, outcome),
		),
	)
}

// RecordNATSMessagePublished records a NATS message being published
func (mp *MetricsProvider) RecordNATSMessagePublished(eventType string) {
	if !mp.isEnabled() {
		return
	}
	mp.natsMessagesPublishedCounter.Add(context.Background(), 1,
		metric.WithAttributes(attribute.String(LabelEventType, eventType)),
	)
}

// RecordDatabaseQuery records a database transaction with duration
func (mp *MetricsProvider) RecordDatabaseQuery(repository, method string, duration time.Duration) {
	if !mp.isEnabled() {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String(LabelRepository, repository),
		attribute.String(LabelMethod, method),
	)
	mp.databaseQueriesCounter.Add(context.Background(), 1, attrs)
	mp.databaseQueryDurationHist.Record(context.Background(), duration.Seconds(), attrs)
}

// isEnabled checks if metrics are enabled and instruments exist
func (mp *MetricsProvider) isEnabled() bool {
	mp.mu.RLock()
	defer mp.mu.RUnlock()
	return mp.initialized && mp.config.OTelEnabled && mp.meter != nil
}
