package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/sivpack/scheduler-api/internal/config"
	"github.com/sivpack/scheduler-api/internal/repository/postgres"
	"github.com/sivpack/scheduler-api/internal/worker"
	"github.com/sivpack/scheduler-api/pkg/logger"
	redisbroker "github.com/sivpack/scheduler-api/pkg/messaging/redis"
	"github.com/sivpack/scheduler-api/pkg/metrics"
)

// The worker process runs the notification pipeline: the outbox publisher
// moves pending events to Redis, the webhook dispatcher consumes them and
// delivers HTTP notifications.
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.NewLogger(nil)

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	broker, err := redisbroker.NewRedisBroker(redisbroker.Config{
		URL:          cfg.Redis.URL,
		MaxRetries:   cfg.Redis.MaxRetries,
		RetryBackoff: cfg.Redis.RetryBackoff,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
	}, appLogger.Zerolog())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to Redis")
	}
	defer broker.Close()

	m := metrics.NewMetrics(cfg.API.MetricsPrefix, "worker")

	outboxRepo := postgres.NewOutboxRepository(db)
	webhookRepo := postgres.NewWebhookRepository(db)

	publisher := worker.NewOutboxPublisher(outboxRepo, broker, worker.OutboxPublisherConfig{
		BatchSize:     cfg.Outbox.BatchSize,
		PollInterval:  cfg.Outbox.PollInterval,
		RetryAttempts: cfg.Outbox.RetryAttempts,
		RetryDelay:    cfg.Outbox.RetryDelay,
	}, appLogger, m)

	dispatcher := worker.NewWebhookDispatcher(webhookRepo, broker, worker.WebhookDispatcherConfig{
		SigningSecret:    cfg.Webhook.SigningSecret,
		RequestTimeout:   cfg.Webhook.RequestTimeout,
		SubscriptionsTTL: cfg.Webhook.SubscriptionsTTL,
	}, appLogger, m)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go publisher.Start(ctx)
	go func() {
		if err := dispatcher.Start(ctx); err != nil {
			log.Fatal().Err(err).Msg("webhook dispatcher failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down worker...")
	cancel()
}
