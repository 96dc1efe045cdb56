package scheduling

import (
	"context"

	"github.com/google/uuid"

	"github.com/sivpack/scheduler-api/internal/model"
	"github.com/sivpack/scheduler-api/internal/repository"
	"github.com/sivpack/scheduler-api/pkg/errors"
)

// OverlapDetector decides whether a candidate interval conflicts with any
// appointment already booked for a provider. Two half-open intervals
// [S, E) and [Bs, Be) conflict when S < Be and E > Bs.
type OverlapDetector struct {
	repo repository.AppointmentRepository
}

func NewOverlapDetector(repo repository.AppointmentRepository) *OverlapDetector {
	return &OverlapDetector{repo: repo}
}

// Check reports the first conflict found for the candidate interval. The
// start conflict (candidate start inside a booked interval) is checked
// before the end conflict, so only one is ever reported. excludeID, when
// non-nil, names an appointment whose own booking is ignored so that an
// in-place modification does not conflict with itself.
func (d *OverlapDetector) Check(ctx context.Context, providerID uuid.UUID, interval model.Interval, excludeID *uuid.UUID) error {
	startConflicts, err := d.repo.FindConflictsAtStart(ctx, providerID, interval.Start, excludeID)
	if err != nil {
		return errors.Internal(err)
	}
	if len(startConflicts) > 0 {
		return errors.Conflict(MsgStartConflict)
	}

	endConflicts, err := d.repo.FindConflictsAtEnd(ctx, providerID, interval.End, excludeID)
	if err != nil {
		return errors.Internal(err)
	}
	if len(endConflicts) > 0 {
		return errors.Conflict(MsgEndConflict)
	}

	return nil
}
