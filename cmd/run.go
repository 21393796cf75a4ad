package cmd

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"kudos/bot"
	"kudos/config"
	"kudos/database"
	"kudos/events"
	"kudos/infrastructure"
	"kudos/infrastructure/observability"
	"kudos/repository"
	"kudos/service"
	"kudos/session"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	// Load configuration
	cfg := config.Get()
	ConfigureLogging(cfg)

	log.Info("Starting kudos bot...")

	// Initialize database connection
	log.Info("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.GetDatabaseURL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := database.RunMigrationsWithURL(cfg.GetDatabaseURL()); err != nil {
		return err
	}
	log.Info("Database connection established successfully")

	eventBus := events.NewBus()

	// Metrics subscribe to the bus before anything can publish
	metrics := observability.NewMetricsProvider(cfg)
	if err := metrics.Initialize(ctx); err != nil {
		return fmt.Errorf("failed to initialize metrics: %w", err)
	}
	metrics.Register(eventBus)

	natsClient, err := startEventForwarding(ctx, cfg, eventBus, metrics)
	if err != nil {
		return err
	}

	uowFactory := repository.NewUnitOfWorkFactory(db, eventBus,
		repository.WithQueryObserver(metrics.RecordDatabaseQuery))

	// Initialize services
	ledgerService := service.NewLedgerService(uowFactory, service.LedgerOptions{
		StartingBalance: cfg.StartingBalance,
		AutoApprove:     cfg.AutoApprove,
	})
	seasonService := service.NewSeasonService(uowFactory)
	voteService := service.NewVoteService(uowFactory)

	// The notifier needs the Discord session before the flows can be built
	dg, err := bot.NewSession(cfg.DiscordToken)
	if err != nil {
		return err
	}
	notifier := bot.NewDiscordNotifier(dg, cfg.AnnounceChannelID)

	var improver session.ReasonImprover = session.NoopImprover{}
	if cfg.ImproveReasons {
		improver = session.TidyImprover{}
	}

	transferFlow := session.NewTransferFlow(session.TransferDeps{
		Ledger:    ledgerService,
		Seasons:   seasonService,
		Announcer: notifier,
		Notifier:  notifier,
		Improver:  improver,
		Recorder:  metrics,
	}, cfg.SessionTTL)
	voteFlow := session.NewVoteFlow(session.VoteDeps{
		Votes:    voteService,
		Ledger:   ledgerService,
		Seasons:  seasonService,
		Recorder: metrics,
	}, cfg.SessionTTL)

	janitorCtx, stopJanitors := context.WithCancel(ctx)
	defer stopJanitors()
	go transferFlow.Registry().RunJanitor(janitorCtx, cfg.SessionSweepInterval)
	go voteFlow.Registry().RunJanitor(janitorCtx, cfg.SessionSweepInterval)

	// Initialize Discord bot
	log.Info("Initializing Discord bot...")
	discordBot, err := bot.New(bot.Config{
		Token:             cfg.DiscordToken,
		GuildID:           cfg.GuildID,
		AnnounceChannelID: cfg.AnnounceChannelID,
		AdminIDs:          cfg.AdminDiscordIDs,
		ScoreboardSize:    cfg.ScoreboardSize,
		HistoryPageSize:   cfg.HistoryPageSize,
		ImproveReasons:    cfg.ImproveReasons,
	}, dg, bot.Deps{
		Ledger:   ledgerService,
		Seasons:  seasonService,
		Votes:    voteService,
		Transfer: transferFlow,
		Vote:     voteFlow,
		Metrics:  metrics,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize Discord bot: %w", err)
	}

	// Wait for context cancellation
	log.Infof("Bot is running in %s mode...", cfg.Environment)
	<-ctx.Done()

	// Cleanup resources
	log.Info("Shutting down bot...")
	stopJanitors()

	if err := discordBot.Close(); err != nil {
		log.Errorf("Error closing Discord bot: %v", err)
	}

	// Let in-flight event handlers finish before their sinks go away
	eventBus.Wait()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := metrics.Shutdown(shutdownCtx); err != nil {
		log.Errorf("Error shutting down metrics: %v", err)
	}
	if natsClient != nil {
		if err := natsClient.Close(); err != nil {
			log.Errorf("Error closing NATS connection: %v", err)
		}
	}

	log.Info("Shutdown completed")
	return nil
}

// startEventForwarding connects to NATS and forwards every domain event.
// Returns a nil client when no servers are configured.
func startEventForwarding(ctx context.Context, cfg *config.Config, bus *events.Bus, metrics *observability.MetricsProvider) (*infrastructure.NATSClient, error) {
	if cfg.NATSServers == "" {
		log.Info("NATS_SERVERS not set, event forwarding disabled")
		return nil, nil
	}

	client := infrastructure.NewNATSClient(cfg.NATSServers)
	if err := client.Connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	forwarder := infrastructure.NewNATSEventForwarder(client, cfg.NATSSubjectPrefix)
	if err := client.EnsureStream(infrastructure.EventsStreamName, forwarder.Subjects()); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ensure events stream: %w", err)
	}
	forwarder.OnPublished(metrics.RecordNATSMessagePublished)
	forwarder.Register(bus)

	log.WithFields(log.Fields{
		"servers": cfg.NATSServers,
		"prefix":  cfg.NATSSubjectPrefix,
	}).Info("Forwarding domain events to NATS")
	return client, nil
}

// ConfigureLogging applies the configured level and formatter to the
// standard logrus logger
func ConfigureLogging(cfg *config.Config) {
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Warnf("Unknown LOG_LEVEL %q, using info", cfg.LogLevel)
		level = log.InfoLevel
	}
	log.SetLevel(level)

	if cfg.LogFormat == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}
