package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/glebk/relay-bot/internal/bot"
	"github.com/glebk/relay-bot/internal/config"
	"github.com/glebk/relay-bot/internal/domain"
	"github.com/glebk/relay-bot/internal/logging"
	"github.com/glebk/relay-bot/internal/repository/postgres"
	"github.com/glebk/relay-bot/internal/repository/sqlite"
	"github.com/glebk/relay-bot/internal/service"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.WithError(err).Fatal("Bot stopped with error")
	}
}

// stores bundles the repositories of whichever database driver is configured
type stores struct {
	recipients  domain.RecipientRepository
	retractions domain.RetractionRepository
	closer      io.Closer
}

func openStores(cfg *config.Config) (*stores, error) {
	switch cfg.Database.Driver {
	case config.DriverPostgres:
		db, err := postgres.New(cfg.Database.URL)
		if err != nil {
			return nil, err
		}
		return &stores{
			recipients:  postgres.NewRecipientRepository(db),
			retractions: postgres.NewRetractionRepository(db),
			closer:      db,
		}, nil
	case config.DriverSQLite:
		db, err := sqlite.New(cfg.Database.Path)
		if err != nil {
			return nil, err
		}
		return &stores{
			recipients:  sqlite.NewRecipientRepository(db),
			retractions: sqlite.NewRetractionRepository(db),
			closer:      db,
		}, nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *logrus.Logger) error {
	// Initialize database
	st, err := openStores(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer st.closer.Close()

	logger.WithField("driver", cfg.Database.Driver).Info("Database initialized")

	api, err := bot.Connect(cfg.TelegramToken, logger)
	if err != nil {
		return err
	}
	messenger := bot.NewTelegramMessenger(api)

	var opts []service.SchedulerOption
	if cfg.Retraction.Persist {
		opts = append(opts, service.WithJobLog(st.retractions))
	}
	scheduler := service.NewRetractionScheduler(messenger, cfg.Retraction.Delay, logger, opts...)
	defer scheduler.Stop()

	if _, err := scheduler.Restore(ctx); err != nil {
		logger.WithError(err).Error("Failed to restore pending retractions")
	}

	relay := service.NewRelayService(
		service.NewAccessPolicy(cfg.AdminIDs),
		service.NewRegistry(st.recipients, logger),
		messenger,
		scheduler,
		logger,
	)

	telegramBot := bot.New(api, relay, messenger, logger)

	logger.WithFields(logrus.Fields{
		"admins":           len(cfg.AdminIDs),
		"retraction_delay": cfg.Retraction.Delay.String(),
		"persist_jobs":     cfg.Retraction.Persist,
	}).Info("Bot started. Press Ctrl+C to stop.")

	err = telegramBot.Start(ctx)
	logger.Info("Shutting down gracefully...")
	return err
}
