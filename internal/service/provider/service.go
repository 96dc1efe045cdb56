package provider

import (
	"context"
	stderrors "errors"

	"github.com/google/uuid"

	"github.com/sivpack/scheduler-api/internal/model"
	"github.com/sivpack/scheduler-api/internal/repository"
	"github.com/sivpack/scheduler-api/pkg/errors"
)

type Service struct {
	repo repository.ProviderRepository
}

func NewService(repo repository.ProviderRepository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, req *model.CreateProviderRequest) (*model.Provider, error) {
	provider := &model.Provider{
		FirstName: req.FirstName,
		LastName:  req.LastName,
	}
	if err := s.repo.Create(ctx, provider); err != nil {
		return nil, errors.Internal(err)
	}
	return provider, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Provider, error) {
	provider, err := s.repo.Get(ctx, id)
	if err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return nil, errors.NotFound("Provider not found")
		}
		return nil, errors.Internal(err)
	}
	return provider, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return errors.NotFound("Provider not found")
		}
		return errors.Internal(err)
	}
	return nil
}

func (s *Service) List(ctx context.Context) ([]*model.Provider, error) {
	providers, err := s.repo.List(ctx)
	if err != nil {
		return nil, errors.Internal(err)
	}
	return providers, nil
}
