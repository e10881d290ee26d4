package main

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/vedya-health/vedya-platform/internal/appointments"
	appconfig "github.com/vedya-health/vedya-platform/internal/config"
	"github.com/vedya-health/vedya-platform/internal/notify"
	"github.com/vedya-health/vedya-platform/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting vedya-platform reminder service",
		"env", cfg.Env,
		"poll_interval", cfg.ReminderPollInterval.String(),
	)

	if cfg.DatabaseURL == "" {
		logger.Error("DATABASE_URL is required")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()
	if err := db.PingContext(ctx); err != nil {
		logger.Error("failed to ping database", "error", err)
		os.Exit(1)
	}
	store := appointments.NewPostgresStore(db)

	sender, err := notify.NewTwilioWhatsAppSender(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioWhatsAppFrom, logger)
	if err != nil {
		logger.Error("failed to build WhatsApp sender", "error", err)
		os.Exit(1)
	}

	scheduler := notify.NewScheduler(store, sender, logger,
		notify.WithPollInterval(cfg.ReminderPollInterval),
		notify.WithReminderOffsets(cfg.ReminderDayBefore, cfg.ReminderHourBefore),
	)

	if err := scheduler.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("scheduler stopped with error", "error", err)
		os.Exit(1)
	}

	logger.Info("reminder service stopped")
}
