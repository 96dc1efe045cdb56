package worker

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/sivpack/scheduler-api/internal/model"
	"github.com/sivpack/scheduler-api/internal/repository"
	"github.com/sivpack/scheduler-api/pkg/circuitbreaker"
	"github.com/sivpack/scheduler-api/pkg/logger"
	"github.com/sivpack/scheduler-api/pkg/messaging"
	"github.com/sivpack/scheduler-api/pkg/metrics"
)

const subscriptionsCacheKey = "active-webhooks"

type WebhookDispatcherConfig struct {
	SigningSecret    string
	RequestTimeout   time.Duration
	SubscriptionsTTL time.Duration
}

// WebhookDispatcher consumes appointment events from the broker and POSTs a
// notification to every active subscription. The subscription list is cached
// so each delivery burst does not hit the database.
type WebhookDispatcher struct {
	webhooks repository.WebhookRepository
	broker   messaging.Broker
	client   *http.Client
	config   WebhookDispatcherConfig
	cache    *cache.Cache
	breakers map[string]*circuitbreaker.CircuitBreaker
	logger   *logger.Logger
	metrics  *metrics.Metrics
}

func NewWebhookDispatcher(
	webhooks repository.WebhookRepository,
	broker messaging.Broker,
	config WebhookDispatcherConfig,
	logger *logger.Logger,
	metrics *metrics.Metrics,
) *WebhookDispatcher {
	if config.RequestTimeout <= 0 {
		config.RequestTimeout = 10 * time.Second
	}
	if config.SubscriptionsTTL <= 0 {
		config.SubscriptionsTTL = 30 * time.Second
	}

	return &WebhookDispatcher{
		webhooks: webhooks,
		broker:   broker,
		client:   &http.Client{Timeout: config.RequestTimeout},
		config:   config,
		cache:    cache.New(config.SubscriptionsTTL, time.Minute),
		breakers: make(map[string]*circuitbreaker.CircuitBreaker),
		logger:   logger,
		metrics:  metrics,
	}
}

func (d *WebhookDispatcher) Start(ctx context.Context) error {
	msgChan, err := d.broker.Subscribe(ctx, AppointmentEventsChannel)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", AppointmentEventsChannel, err)
	}

	d.logger.Info("starting webhook dispatcher")

	for {
		select {
		case <-ctx.Done():
			d.logger.Info("shutting down webhook dispatcher")
			return nil
		case raw, ok := <-msgChan:
			if !ok {
				return nil
			}
			if err := d.dispatch(ctx, raw); err != nil {
				d.logger.Error(err, "failed to dispatch event")
			}
		}
	}
}

func (d *WebhookDispatcher) dispatch(ctx context.Context, raw []byte) error {
	var msg struct {
		Type    string          `json:"type"`
		Payload json.RawMessage `json:"payload"`
	}
	if err := json.Unmarshal(raw, &msg); err != nil {
		return fmt.Errorf("failed to decode event: %w", err)
	}

	subscriptions, err := d.activeSubscriptions(ctx)
	if err != nil {
		return err
	}

	notification := &model.WebhookNotification{
		Data:          msg.Payload,
		Type:          msg.Type,
		Timestamp:     time.Now().UTC(),
		Authorization: d.sign(msg.Payload),
	}

	body, err := json.Marshal(notification)
	if err != nil {
		return fmt.Errorf("failed to encode notification: %w", err)
	}

	for _, webhook := range subscriptions {
		if err := d.deliver(ctx, webhook, body); err != nil {
			d.logger.Error(err, "webhook delivery failed",
				"webhook_id", webhook.ID.String(),
				"endpoint", webhook.EndpointURL)
		}
	}

	return nil
}

func (d *WebhookDispatcher) activeSubscriptions(ctx context.Context) ([]*model.Webhook, error) {
	if cached, ok := d.cache.Get(subscriptionsCacheKey); ok {
		return cached.([]*model.Webhook), nil
	}

	subscriptions, err := d.webhooks.ListActive(ctx)
	if err != nil {
		d.metrics.DatabaseOperations.WithLabelValues("list_active_webhooks", "error").Inc()
		return nil, fmt.Errorf("failed to list active webhooks: %w", err)
	}
	d.metrics.DatabaseOperations.WithLabelValues("list_active_webhooks", "success").Inc()

	d.cache.Set(subscriptionsCacheKey, subscriptions, cache.DefaultExpiration)
	return subscriptions, nil
}

func (d *WebhookDispatcher) deliver(ctx context.Context, webhook *model.Webhook, body []byte) error {
	timer := prometheus.NewTimer(d.metrics.WebhookDeliveryLatency)
	defer timer.ObserveDuration()

	err := d.breaker(webhook.EndpointURL).Execute(func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhook.EndpointURL, bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := d.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 300 {
			return fmt.Errorf("endpoint returned %d", resp.StatusCode)
		}

		d.logger.Info("webhook delivered",
			"webhook_id", webhook.ID.String(),
			"status", resp.StatusCode)
		return nil
	})

	if err != nil {
		d.metrics.WebhookDeliveries.WithLabelValues("error").Inc()
		return err
	}
	d.metrics.WebhookDeliveries.WithLabelValues("success").Inc()
	return nil
}

// breaker returns the per-endpoint circuit breaker, creating it on first
// use. Start runs in a single goroutine, so no locking here.
func (d *WebhookDispatcher) breaker(endpoint string) *circuitbreaker.CircuitBreaker {
	if cb, ok := d.breakers[endpoint]; ok {
		return cb
	}
	cb := circuitbreaker.NewCircuitBreaker(circuitbreaker.Settings{
		Name:        endpoint,
		MaxFailures: 5,
		Timeout:     time.Minute,
	})
	d.breakers[endpoint] = cb
	return cb
}

// sign produces the sender verification hash carried in the notification.
func (d *WebhookDispatcher) sign(payload []byte) string {
	mac := hmac.New(sha256.New, []byte(d.config.SigningSecret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}
