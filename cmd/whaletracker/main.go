package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"whaletracker/internal/alerts"
	"whaletracker/internal/backtest"
	"whaletracker/internal/config"
	"whaletracker/internal/insider"
	"whaletracker/internal/kalshi"
	"whaletracker/internal/polymarket"
	"whaletracker/internal/processor"
	"whaletracker/internal/scheduler"
	"whaletracker/internal/server"
	"whaletracker/internal/settlement"
	"whaletracker/internal/storage"
)

func main() {
	// Initialize logger
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(os.Stdout)
	log.SetLevel(logrus.InfoLevel)

	log.Info("Starting whaletracker service...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("Failed to load configuration")
	}

	log.WithFields(logrus.Fields{
		"environment":          cfg.Environment,
		"kalshi_threshold":     cfg.KalshiThresholdUSD,
		"polymarket_threshold": cfg.PolymarketThresholdUSD,
		"fetch_interval":       cfg.FetchInterval.String(),
		"settlement_interval":  cfg.SettlementInterval.String(),
		"alert_mode":           cfg.AlertMode,
	}).Info("Configuration loaded")

	// Initialize database
	db, err := storage.New(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	// Run auto-migration
	if err := db.AutoMigrate(); err != nil {
		log.WithError(err).Fatal("Failed to run database migrations")
	}

	log.Info("Database migrations complete")

	// Initialize venue API clients
	kalshiClient := kalshi.NewClient(cfg)
	polyClient := polymarket.NewClient(cfg)

	// Initialize alert sender
	alertSender := createAlertSender(cfg, log)

	log.WithField("alert_mode", cfg.AlertMode).Info("Alert sender initialized")

	// Wire the pipeline
	scorer := insider.NewScorer(db)
	proc := processor.New(cfg, db, kalshiClient, polyClient, scorer, alertSender, log)
	tracker := settlement.New(db, kalshiClient, polyClient, cfg.SettlementBatchLimit, log)
	backtester := backtest.New(db)

	// Register background jobs
	sched := scheduler.New(log)
	sched.Add("fetch", cfg.FetchInterval, proc.RunFetchCycle)
	sched.Add("settlement", cfg.SettlementInterval, func(ctx context.Context) error {
		_, _, err := tracker.CheckSettlements(ctx)
		return err
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sched.Start(ctx)

	// Start HTTP server (read API + health + metrics)
	srv := server.New(cfg, db, backtester, sched, log)
	go func() {
		if err := srv.Start(); err != nil {
			log.WithError(err).Error("HTTP server failed")
			cancel()
		}
	}()

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		log.WithField("signal", sig).Info("Received shutdown signal")
	case <-ctx.Done():
		log.Info("Context cancelled, shutting down")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("HTTP server shutdown failed")
	}

	cancel()
	sched.Stop()
	log.Info("Graceful shutdown complete")
}

func createAlertSender(cfg *config.Config, log *logrus.Logger) alerts.Sender {
	modes := strings.Split(cfg.AlertMode, ",")
	for i, mode := range modes {
		modes[i] = strings.TrimSpace(mode)
	}

	var senders []alerts.Sender
	for _, mode := range modes {
		switch mode {
		case "log":
			senders = append(senders, alerts.NewLogSender(log))
		case "discord":
			if cfg.DiscordWebhookURL != "" {
				senders = append(senders, alerts.NewDiscordSender(cfg.DiscordWebhookURL))
			} else {
				log.Warn("Discord mode specified but DISCORD_WEBHOOK_URL not set")
			}
		case "smtp":
			if cfg.SMTPHost != "" {
				senders = append(senders, alerts.NewSMTPSender(
					cfg.SMTPHost,
					cfg.SMTPPort,
					cfg.SMTPUser,
					cfg.SMTPPassword,
					cfg.SMTPFrom,
					cfg.SMTPTo,
				))
			} else {
				log.Warn("SMTP mode specified but SMTP_HOST not set")
			}
		default:
			log.WithField("mode", mode).Warn("Unknown alert mode, skipping")
		}
	}

	if len(senders) == 0 {
		log.Warn("No valid alert senders configured, using log")
		return alerts.NewLogSender(log)
	}
	if len(senders) == 1 {
		return senders[0]
	}
	return alerts.NewMultiSender(senders...)
}
