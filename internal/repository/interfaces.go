package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/sivpack/scheduler-api/internal/model"
)

// ErrNotFound is returned by repositories when no row matches.
var ErrNotFound = NotFoundError{}

type NotFoundError struct{}

func (NotFoundError) Error() string { return "record not found" }

// All repository interfaces in one file
type (
	PatientRepository interface {
		Create(ctx context.Context, patient *model.Patient) error
		Get(ctx context.Context, id uuid.UUID) (*model.Patient, error)
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context) ([]*model.Patient, error)
	}

	ProviderRepository interface {
		Create(ctx context.Context, provider *model.Provider) error
		Get(ctx context.Context, id uuid.UUID) (*model.Provider, error)
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context) ([]*model.Provider, error)
	}

	AppointmentRepository interface {
		Create(ctx context.Context, appointment *model.Appointment) error
		Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
		Update(ctx context.Context, appointment *model.Appointment) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context) ([]*model.Appointment, error)
		ListByProvider(ctx context.Context, providerID uuid.UUID) ([]*model.Appointment, error)
		// FindConflictsAtStart returns appointments of the provider whose
		// booked interval contains the instant at (start inclusive, end
		// exclusive), skipping excludeID when non-nil.
		FindConflictsAtStart(ctx context.Context, providerID uuid.UUID, at time.Time, excludeID *uuid.UUID) ([]*model.Appointment, error)
		// FindConflictsAtEnd returns appointments of the provider whose
		// booked interval contains the instant at (start exclusive, end
		// inclusive), skipping excludeID when non-nil.
		FindConflictsAtEnd(ctx context.Context, providerID uuid.UUID, at time.Time, excludeID *uuid.UUID) ([]*model.Appointment, error)
	}

	WebhookRepository interface {
		Create(ctx context.Context, webhook *model.Webhook) error
		Get(ctx context.Context, id uuid.UUID) (*model.Webhook, error)
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context) ([]*model.Webhook, error)
		ListActive(ctx context.Context) ([]*model.Webhook, error)
	}

	OutboxRepository interface {
		Create(ctx context.Context, event *model.OutboxEvent) error
		GetPendingEvents(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
		MarkProcessed(ctx context.Context, id uuid.UUID) error
		MarkFailed(ctx context.Context, id uuid.UUID, errMsg string) error
	}
)
