package webhook

import (
	"context"
	stderrors "errors"

	"github.com/google/uuid"

	"github.com/sivpack/scheduler-api/internal/model"
	"github.com/sivpack/scheduler-api/internal/repository"
	"github.com/sivpack/scheduler-api/pkg/errors"
)

// Service manages webhook subscriptions. Delivery itself happens in the
// worker process.
type Service struct {
	repo repository.WebhookRepository
}

func NewService(repo repository.WebhookRepository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, req *model.CreateWebhookRequest) (*model.Webhook, error) {
	webhook := &model.Webhook{
		Name:        req.Name,
		EndpointURL: req.EndpointURL,
		Active:      req.Active,
	}
	if err := s.repo.Create(ctx, webhook); err != nil {
		return nil, errors.Internal(err)
	}
	return webhook, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Webhook, error) {
	webhook, err := s.repo.Get(ctx, id)
	if err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return nil, errors.NotFound("Webhook not found")
		}
		return nil, errors.Internal(err)
	}
	return webhook, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return errors.NotFound("Webhook not found")
		}
		return errors.Internal(err)
	}
	return nil
}

func (s *Service) List(ctx context.Context) ([]*model.Webhook, error) {
	webhooks, err := s.repo.List(ctx)
	if err != nil {
		return nil, errors.Internal(err)
	}
	return webhooks, nil
}
