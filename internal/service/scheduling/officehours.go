package scheduling

import (
	"context"

	"github.com/google/uuid"

	"github.com/sivpack/scheduler-api/internal/model"
)

// OfficeHoursPolicy decides whether an interval falls within a provider's
// office hours. A real implementation would consult the provider's schedule.
type OfficeHoursPolicy interface {
	IsWithinOfficeHours(ctx context.Context, providerID uuid.UUID, interval model.Interval) (bool, error)
}

// AlwaysOpen treats every provider as available around the clock.
type AlwaysOpen struct{}

func (AlwaysOpen) IsWithinOfficeHours(ctx context.Context, providerID uuid.UUID, interval model.Interval) (bool, error) {
	return true, nil
}
