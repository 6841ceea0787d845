package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/tradequest/newsintel/internal/archive"
	"github.com/tradequest/newsintel/internal/config"
	"github.com/tradequest/newsintel/internal/logger"
)

func main() {
	_ = godotenv.Load()

	log := logger.New("retention")
	cfg, err := config.LoadRetention()
	if err != nil {
		log.Error("load config", slog.Any("err", err))
		os.Exit(1)
	}

	if !cfg.Enabled() {
		log.Info("alert archive disabled, nothing to clean up")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	client := connectWithRetry(ctx, log, cfg)
	if client == nil {
		log.Error("failed to connect to elasticsearch after retries")
		os.Exit(1)
	}

	log.Info("connected to elasticsearch")

	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()

	log.Info("retention job running",
		slog.Duration("interval", cfg.Interval),
		slog.Duration("max_age", cfg.MaxAge),
	)

	runOnce(ctx, log, client, cfg)

	for {
		select {
		case <-ctx.Done():
			log.Info("shutdown signal received")
			return
		case <-ticker.C:
			runOnce(ctx, log, client, cfg)
		}
	}
}

func connectWithRetry(ctx context.Context, log *slog.Logger, cfg *config.Retention) *archive.Client {
	retryDelay := 2 * time.Second

	for attempt := 1; attempt <= 10; attempt++ {
		client, err := archive.New(cfg.ElasticsearchAddr, cfg.ElasticsearchIndex, log)
		if err == nil {
			pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			pingErr := client.Ping(pingCtx)
			cancel()
			if pingErr == nil {
				return client
			}
			err = pingErr
		}

		log.Warn("elasticsearch not reachable, retrying",
			slog.Any("err", err),
			slog.Int("attempt", attempt),
			slog.Duration("retry_in", retryDelay),
		)

		select {
		case <-time.After(retryDelay):
		case <-ctx.Done():
			log.Info("shutdown signal received during startup")
			os.Exit(0)
		}

		retryDelay *= 2
		if retryDelay > 30*time.Second {
			retryDelay = 30 * time.Second
		}
	}

	return nil
}

func runOnce(ctx context.Context, log *slog.Logger, client *archive.Client, cfg *config.Retention) {
	subCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	deleted, err := client.DeleteOlderThan(subCtx, cfg.MaxAge, cfg.BatchSize)
	if err != nil {
		log.Warn("retention run failed (will retry on next interval)", slog.Any("err", err))
		return
	}

	if deleted > 0 {
		log.Info("retention run completed", slog.Int64("deleted", deleted))
	} else {
		log.Debug("retention run completed, no old alerts found")
	}
}
