package scheduling

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/google/uuid"

	"github.com/sivpack/scheduler-api/internal/model"
	"github.com/sivpack/scheduler-api/internal/repository"
	"github.com/sivpack/scheduler-api/pkg/errors"
)

// Validator runs the full decision pipeline for create and modify requests.
// Checks run in a fixed order and stop at the first failure: existence,
// booking window, duration, overlap, office hours.
type Validator struct {
	patients  repository.PatientRepository
	providers repository.ProviderRepository
	overlap   *OverlapDetector
	office    OfficeHoursPolicy
	policy    BookingPolicy
}

func NewValidator(
	patients repository.PatientRepository,
	providers repository.ProviderRepository,
	appointments repository.AppointmentRepository,
	office OfficeHoursPolicy,
	policy BookingPolicy,
) *Validator {
	return &Validator{
		patients:  patients,
		providers: providers,
		overlap:   NewOverlapDetector(appointments),
		office:    office,
		policy:    policy,
	}
}

// Decision is the accepted outcome of a validation pass, carrying everything
// the lifecycle manager needs to persist.
type Decision struct {
	Interval   model.Interval
	PatientID  uuid.UUID
	ProviderID uuid.UUID
	Department string
}

// ValidateCreate decides a create request. now is supplied by the caller.
func (v *Validator) ValidateCreate(ctx context.Context, req *model.CreateAppointmentRequest, now time.Time) (*Decision, error) {
	start := NaiveUTC(req.Start)

	if _, err := v.patients.Get(ctx, req.PatientID); err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return nil, errors.NotFound(MsgPatientNotFound)
		}
		return nil, errors.Internal(err)
	}

	if _, err := v.providers.Get(ctx, req.ProviderID); err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return nil, errors.NotFound(MsgProviderNotFound)
		}
		return nil, errors.Internal(err)
	}

	interval, err := v.checkWindow(ctx, req.ProviderID, start, req.Duration, now, nil)
	if err != nil {
		return nil, err
	}

	ok, err := v.office.IsWithinOfficeHours(ctx, req.ProviderID, *interval)
	if err != nil {
		return nil, errors.Internal(err)
	}
	if !ok {
		return nil, errors.Conflict(MsgOfficeClosed)
	}

	return &Decision{
		Interval:   *interval,
		PatientID:  req.PatientID,
		ProviderID: req.ProviderID,
		Department: req.Department,
	}, nil
}

// ValidateModify decides a partial update of an existing appointment. Fields
// omitted from the patch keep their persisted values; duration defaults to
// the existing interval's length so changing only the start preserves it.
// The appointment's own booking is excluded from conflict detection.
func (v *Validator) ValidateModify(ctx context.Context, existing *model.Appointment, patch *model.UpdateAppointmentRequest, now time.Time) (*Decision, error) {
	// An appointment that has already begun may never be modified,
	// regardless of which fields are changing.
	if existing.Start.Before(now) {
		return nil, errors.InvalidState(MsgModifyPast)
	}

	start := existing.Start
	if patch.Start != nil {
		start = NaiveUTC(*patch.Start)
	}

	duration := int(existing.End.Sub(existing.Start) / time.Minute)
	if patch.Duration != nil {
		duration = *patch.Duration
	}

	department := existing.Department
	if patch.Department != nil {
		department = *patch.Department
	}

	excludeID := existing.ID
	interval, err := v.checkWindow(ctx, existing.ProviderID, start, duration, now, &excludeID)
	if err != nil {
		return nil, err
	}

	return &Decision{
		Interval:   *interval,
		PatientID:  existing.PatientID,
		ProviderID: existing.ProviderID,
		Department: department,
	}, nil
}

// checkWindow runs the lead-time, duration and overlap checks common to both
// flows and resolves the effective interval.
func (v *Validator) checkWindow(ctx context.Context, providerID uuid.UUID, start time.Time, durationMinutes int, now time.Time, excludeID *uuid.UUID) (*model.Interval, error) {
	if err := CheckLeadTime(start, now, v.policy.MinLeadHours); err != nil {
		return nil, err
	}

	if err := CheckDuration(durationMinutes, v.policy.MaxDurationMinutes); err != nil {
		return nil, err
	}

	interval := model.Interval{
		Start: start,
		End:   start.Add(time.Duration(durationMinutes) * time.Minute),
	}

	if err := v.overlap.Check(ctx, providerID, interval, excludeID); err != nil {
		return nil, err
	}

	return &interval, nil
}
