package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/sivpack/scheduler-api/internal/model"
	"github.com/sivpack/scheduler-api/internal/repository"
	"github.com/sivpack/scheduler-api/pkg/logger"
	"github.com/sivpack/scheduler-api/pkg/messaging"
	"github.com/sivpack/scheduler-api/pkg/metrics"
)

// Channel carrying appointment lifecycle events from the API process to the
// webhook dispatcher.
const AppointmentEventsChannel = "appointment-events"

type OutboxPublisherConfig struct {
	BatchSize     int
	PollInterval  time.Duration
	RetryAttempts int
	RetryDelay    time.Duration
}

// OutboxPublisher drains pending outbox events and publishes them to the
// broker. Events that cannot be published after retries are marked failed
// and left for inspection.
type OutboxPublisher struct {
	repo    repository.OutboxRepository
	broker  messaging.Broker
	config  OutboxPublisherConfig
	logger  *logger.Logger
	metrics *metrics.Metrics
}

func NewOutboxPublisher(
	repo repository.OutboxRepository,
	broker messaging.Broker,
	config OutboxPublisherConfig,
	logger *logger.Logger,
	metrics *metrics.Metrics,
) *OutboxPublisher {
	if config.BatchSize <= 0 {
		config.BatchSize = 50
	}
	if config.PollInterval <= 0 {
		config.PollInterval = 5 * time.Second
	}
	if config.RetryAttempts <= 0 {
		config.RetryAttempts = 3
	}
	if config.RetryDelay <= 0 {
		config.RetryDelay = time.Second
	}

	return &OutboxPublisher{
		repo:    repo,
		broker:  broker,
		config:  config,
		logger:  logger,
		metrics: metrics,
	}
}

func (p *OutboxPublisher) Start(ctx context.Context) {
	ticker := time.NewTicker(p.config.PollInterval)
	defer ticker.Stop()

	p.logger.Info("starting outbox publisher")

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("shutting down outbox publisher")
			return
		case <-ticker.C:
			if err := p.publishPending(ctx); err != nil {
				p.logger.Error(err, "failed to publish pending events")
			}
		}
	}
}

func (p *OutboxPublisher) publishPending(ctx context.Context) error {
	timer := prometheus.NewTimer(p.metrics.OutboxProcessingLatency)
	defer timer.ObserveDuration()

	events, err := p.repo.GetPendingEvents(ctx, p.config.BatchSize)
	if err != nil {
		p.metrics.DatabaseOperations.WithLabelValues("get_pending_events", "error").Inc()
		return fmt.Errorf("failed to get pending events: %w", err)
	}
	p.metrics.DatabaseOperations.WithLabelValues("get_pending_events", "success").Inc()

	for _, event := range events {
		if err := p.publishEvent(ctx, event); err != nil {
			p.logger.Error(err, "failed to publish event",
				"event_id", event.ID.String(),
				"event_type", event.EventType)
		}
	}

	return nil
}

func (p *OutboxPublisher) publishEvent(ctx context.Context, event *model.OutboxEvent) error {
	msg := messaging.Message{
		Type:    event.EventType,
		Payload: event.Payload,
	}

	err := retry(p.config.RetryAttempts, p.config.RetryDelay, func() error {
		return p.broker.Publish(ctx, AppointmentEventsChannel, msg)
	})

	if err != nil {
		p.metrics.OutboxEventsFailed.Inc()
		if markErr := p.repo.MarkFailed(ctx, event.ID, err.Error()); markErr != nil {
			p.logger.Error(markErr, "failed to mark event failed", "event_id", event.ID.String())
		}
		return err
	}

	p.metrics.OutboxEventsProcessed.Inc()
	if err := p.repo.MarkProcessed(ctx, event.ID); err != nil {
		p.logger.Error(err, "failed to mark event processed", "event_id", event.ID.String())
		return err
	}

	return nil
}

// Helper retry function
func retry(attempts int, delay time.Duration, fn func() error) error {
	var err error
	for i := 0; i < attempts; i++ {
		if err = fn(); err == nil {
			return nil
		}
		if i < attempts-1 {
			time.Sleep(delay)
		}
	}
	return err
}
