package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/sivpack/scheduler-api/internal/model"
	"github.com/sivpack/scheduler-api/internal/repository"
)

type webhookRepository struct {
	db *sqlx.DB
}

func NewWebhookRepository(db *sqlx.DB) repository.WebhookRepository {
	return &webhookRepository{db: db}
}

func (r *webhookRepository) Create(ctx context.Context, webhook *model.Webhook) error {
	query := `
		INSERT INTO webhooks (id, name, endpoint_url, active, created, updated)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	webhook.ID = uuid.New()
	webhook.Created = time.Now().UTC()
	webhook.Updated = webhook.Created

	_, err := r.db.ExecContext(ctx, query,
		webhook.ID,
		webhook.Name,
		webhook.EndpointURL,
		webhook.Active,
		webhook.Created,
		webhook.Updated,
	)
	if err != nil {
		return fmt.Errorf("failed to create webhook: %w", err)
	}
	return nil
}

func (r *webhookRepository) Get(ctx context.Context, id uuid.UUID) (*model.Webhook, error) {
	query := `SELECT * FROM webhooks WHERE id = $1`
	var webhook model.Webhook
	err := r.db.GetContext(ctx, &webhook, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get webhook: %w", err)
	}
	return &webhook, nil
}

func (r *webhookRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM webhooks WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete webhook: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *webhookRepository) List(ctx context.Context) ([]*model.Webhook, error) {
	query := `SELECT * FROM webhooks ORDER BY created ASC`
	var webhooks []*model.Webhook
	if err := r.db.SelectContext(ctx, &webhooks, query); err != nil {
		return nil, fmt.Errorf("failed to list webhooks: %w", err)
	}
	return webhooks, nil
}

func (r *webhookRepository) ListActive(ctx context.Context) ([]*model.Webhook, error) {
	query := `SELECT * FROM webhooks WHERE active = true ORDER BY created ASC`
	var webhooks []*model.Webhook
	if err := r.db.SelectContext(ctx, &webhooks, query); err != nil {
		return nil, fmt.Errorf("failed to list active webhooks: %w", err)
	}
	return webhooks, nil
}
