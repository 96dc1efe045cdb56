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

type providerRepository struct {
	db *sqlx.DB
}

func NewProviderRepository(db *sqlx.DB) repository.ProviderRepository {
	return &providerRepository{db: db}
}

func (r *providerRepository) Create(ctx context.Context, provider *model.Provider) error {
	query := `
		INSERT INTO providers (id, first_name, last_name, created, updated)
		VALUES ($1, $2, $3, $4, $5)
	`
	provider.ID = uuid.New()
	provider.Created = time.Now().UTC()
	provider.Updated = provider.Created

	_, err := r.db.ExecContext(ctx, query,
		provider.ID,
		provider.FirstName,
		provider.LastName,
		provider.Created,
		provider.Updated,
	)
	if err != nil {
		return fmt.Errorf("failed to create provider: %w", err)
	}
	return nil
}

func (r *providerRepository) Get(ctx context.Context, id uuid.UUID) (*model.Provider, error) {
	query := `SELECT * FROM providers WHERE id = $1`
	var provider model.Provider
	err := r.db.GetContext(ctx, &provider, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get provider: %w", err)
	}
	return &provider, nil
}

func (r *providerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM providers WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete provider: %w", err)
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

func (r *providerRepository) List(ctx context.Context) ([]*model.Provider, error) {
	query := `SELECT * FROM providers ORDER BY created ASC`
	var providers []*model.Provider
	if err := r.db.SelectContext(ctx, &providers, query); err != nil {
		return nil, fmt.Errorf("failed to list providers: %w", err)
	}
	return providers, nil
}
