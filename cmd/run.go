package cmd

import (
	"context"
	"fmt"
	"time"

	"guildkeeper/bot"
	"guildkeeper/bot/features/welcome"
	"guildkeeper/config"
	"guildkeeper/database"
	"guildkeeper/events"
	"guildkeeper/infrastructure"
	"guildkeeper/logging"
	"guildkeeper/observability"
	"guildkeeper/repository"
	"guildkeeper/service"
	"guildkeeper/webpanel"

	log "github.com/sirupsen/logrus"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	// Load configuration
	cfg := config.Get()

	closeLogs, err := logging.Setup(cfg)
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	defer closeLogs()

	log.WithFields(log.Fields{
		"environment": cfg.Environment,
		"storage":     cfg.StorageBackend,
	}).Info("Starting guildkeeper...")

	// Open storage and load the three documents
	store, err := OpenStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	settingsRepo, err := repository.NewGuildSettingsRepository(ctx, store)
	if err != nil {
		return err
	}
	reactionRoleRepo, err := repository.NewReactionRoleRepository(ctx, store)
	if err != nil {
		return err
	}
	snapshotRepo, err := repository.NewInviteSnapshotRepository(ctx, store)
	if err != nil {
		return err
	}
	log.Info("Stored documents loaded")

	// Initialize event bus and its subscribers
	eventBus := events.NewBus()

	metrics := observability.NewMetricsProvider(cfg)
	if err := metrics.Initialize(ctx); err != nil {
		return fmt.Errorf("failed to initialize metrics: %w", err)
	}
	metrics.Attach(eventBus)

	forwarder, closeForwarder := newEventForwarder(ctx, cfg)
	forwarder.Attach(eventBus)

	suppression := service.NewSuppressionSet(cfg.SuppressionWindow)
	go suppression.Run(ctx)

	// Initialize Discord bot and the services running on its gateway
	discordBot, err := bot.New(bot.Config{
		Token:  cfg.DiscordToken,
		Prefix: cfg.CommandPrefix,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize Discord bot: %w", err)
	}
	gateway := discordBot.Gateway()

	var cards service.CardRenderer
	if cfg.WelcomeCardEnabled {
		cards = welcome.NewCardRenderer()
	}

	services := bot.Services{
		ReactionRoles: service.NewReactionRoleService(gateway, reactionRoleRepo, suppression, eventBus),
		Invites:       service.NewInviteService(gateway, settingsRepo, snapshotRepo, eventBus, cards),
		Settings:      service.NewGuildSettingsService(settingsRepo),
	}
	if err := discordBot.Start(services); err != nil {
		return fmt.Errorf("failed to start Discord bot: %w", err)
	}

	// Log panel
	panelDone := make(chan struct{})
	if cfg.PanelEnabled() {
		panel := webpanel.NewServer(webpanel.Config{
			Port:       cfg.WebPort,
			LogDir:     cfg.LogDir,
			FilePrefix: logging.DatedFilePrefix,
			TailLines:  cfg.PanelTailLines,
		})
		go func() {
			defer close(panelDone)
			if err := panel.Run(ctx); err != nil {
				log.WithError(err).Error("Log panel stopped")
			}
		}()
	} else {
		close(panelDone)
	}

	// Wait for context cancellation
	log.Infof("Bot is running in %s mode...", cfg.Environment)
	<-ctx.Done()

	log.Info("Shutting down...")

	if err := discordBot.Close(); err != nil {
		log.WithError(err).Warn("Error closing Discord bot")
	}

	// Let in-flight event handlers finish before their sinks go away
	eventBus.Wait()
	closeForwarder()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := metrics.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("Error shutting down metrics")
	}

	select {
	case <-panelDone:
	case <-shutdownCtx.Done():
		log.Warn("Shutdown timeout exceeded")
	}

	log.Info("Shutdown completed")
	return nil
}

// OpenStore opens the configured document backend. The postgres backend
// applies pending migrations first.
func OpenStore(ctx context.Context, cfg *config.Config) (repository.DocumentStore, error) {
	switch cfg.StorageBackend {
	case config.StorageBackendPostgres:
		databaseURL := cfg.GetDatabaseURL()
		if err := database.RunMigrationsWithURL(databaseURL); err != nil {
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		db, err := database.NewConnection(ctx, databaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		log.Info("Database connection established successfully")
		return repository.NewPostgresStore(db), nil

	default:
		store, err := repository.NewFileStore(cfg.DataDir)
		if err != nil {
			return nil, err
		}
		log.WithField("dir", cfg.DataDir).Info("Using file storage")
		return store, nil
	}
}

// newEventForwarder connects to NATS when servers are configured. A failed
// connection leaves forwarding off rather than stopping the bot.
func newEventForwarder(ctx context.Context, cfg *config.Config) (infrastructure.EventForwarder, func()) {
	if !cfg.NATSEnabled() {
		return infrastructure.NewNoopEventForwarder(), func() {}
	}

	client := infrastructure.NewNATSClient(cfg.NATSServers)
	if err := client.Connect(ctx); err != nil {
		log.WithError(err).Warn("NATS unavailable, event forwarding disabled")
		return infrastructure.NewNoopEventForwarder(), func() {}
	}
	if err := client.EnsureStream(infrastructure.EventStreamName, infrastructure.EventSubjects()); err != nil {
		log.WithError(err).Warn("Failed to ensure event stream, publishing without persistence")
	}

	log.WithField("servers", cfg.NATSServers).Info("Forwarding events to NATS")
	return infrastructure.NewNATSEventForwarder(client), func() {
		if err := client.Close(); err != nil {
			log.WithError(err).Warn("Error closing NATS connection")
		}
	}
}
