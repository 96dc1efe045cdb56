package appointment

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"time"

	"github.com/google/uuid"

	"github.com/sivpack/scheduler-api/internal/model"
	"github.com/sivpack/scheduler-api/internal/repository"
	"github.com/sivpack/scheduler-api/internal/service/scheduling"
	"github.com/sivpack/scheduler-api/pkg/errors"
	"github.com/sivpack/scheduler-api/pkg/logger"
)

const MsgAppointmentNotFound = "Appointment not found"

// Service is the appointment lifecycle manager. It applies accepted
// validation decisions to storage and queues lifecycle notifications. The
// conflict check and the write must run under serializable isolation; the
// repository is expected to provide it.
type Service struct {
	repo      repository.AppointmentRepository
	outbox    repository.OutboxRepository
	validator *scheduling.Validator
	logger    *logger.Logger
	now       func() time.Time
}

func NewService(
	repo repository.AppointmentRepository,
	outbox repository.OutboxRepository,
	validator *scheduling.Validator,
	logger *logger.Logger,
) *Service {
	return &Service{
		repo:      repo,
		outbox:    outbox,
		validator: validator,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// WithClock replaces the time source. For tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Create runs the create validation flow and persists the appointment on
// acceptance. Rejections are returned verbatim.
func (s *Service) Create(ctx context.Context, req *model.CreateAppointmentRequest) (*model.Appointment, error) {
	decision, err := s.validator.ValidateCreate(ctx, req, s.now())
	if err != nil {
		return nil, err
	}

	apt := &model.Appointment{
		Start:      decision.Interval.Start,
		End:        decision.Interval.End,
		Department: decision.Department,
		PatientID:  decision.PatientID,
		ProviderID: decision.ProviderID,
	}

	if err := s.repo.Create(ctx, apt); err != nil {
		return nil, errors.Internal(err)
	}

	s.enqueueEvent(ctx, model.EventAppointmentCreated, apt)
	return apt, nil
}

// Modify loads the appointment, runs the modify validation flow and persists
// the mutated fields. Patient and provider are immutable; to change them,
// delete and create new.
func (s *Service) Modify(ctx context.Context, id uuid.UUID, patch *model.UpdateAppointmentRequest) (*model.Appointment, error) {
	apt, err := s.repo.Get(ctx, id)
	if err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return nil, errors.NotFound(MsgAppointmentNotFound)
		}
		return nil, errors.Internal(err)
	}

	decision, err := s.validator.ValidateModify(ctx, apt, patch, s.now())
	if err != nil {
		return nil, err
	}

	apt.Start = decision.Interval.Start
	apt.End = decision.Interval.End
	apt.Department = decision.Department

	if err := s.repo.Update(ctx, apt); err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return nil, errors.NotFound(MsgAppointmentNotFound)
		}
		return nil, errors.Internal(err)
	}

	s.enqueueEvent(ctx, model.EventAppointmentUpdated, apt)
	return apt, nil
}

// Delete removes the appointment unconditionally. Freeing a slot is always
// legal, so no conflict checks run here.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	apt, err := s.repo.Get(ctx, id)
	if err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return errors.NotFound(MsgAppointmentNotFound)
		}
		return errors.Internal(err)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return errors.NotFound(MsgAppointmentNotFound)
		}
		return errors.Internal(err)
	}

	s.enqueueEvent(ctx, model.EventAppointmentDeleted, apt)
	return nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	apt, err := s.repo.Get(ctx, id)
	if err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return nil, errors.NotFound(MsgAppointmentNotFound)
		}
		return nil, errors.Internal(err)
	}
	return apt, nil
}

func (s *Service) List(ctx context.Context) ([]*model.Appointment, error) {
	appointments, err := s.repo.List(ctx)
	if err != nil {
		return nil, errors.Internal(err)
	}
	return appointments, nil
}

func (s *Service) ListByProvider(ctx context.Context, providerID uuid.UUID) ([]*model.Appointment, error) {
	appointments, err := s.repo.ListByProvider(ctx, providerID)
	if err != nil {
		return nil, errors.Internal(err)
	}
	return appointments, nil
}

// enqueueEvent writes a pending outbox event. Delivery is asynchronous, so a
// failure here must not fail the request it describes.
func (s *Service) enqueueEvent(ctx context.Context, eventType string, apt *model.Appointment) {
	payload, err := json.Marshal(apt)
	if err != nil {
		s.logger.Error(err, "failed to marshal appointment event", "appointment_id", apt.ID.String())
		return
	}

	event := &model.OutboxEvent{
		EventType: eventType,
		Payload:   payload,
	}
	if err := s.outbox.Create(ctx, event); err != nil {
		s.logger.Error(err, "failed to enqueue appointment event",
			"event_type", eventType,
			"appointment_id", apt.ID.String())
	}
}
