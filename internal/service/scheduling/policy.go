package scheduling

import (
	"time"

	"github.com/sivpack/scheduler-api/pkg/errors"
)

// BookingPolicy is the immutable pair of configured limits governing
// acceptance. Loaded once at startup and handed to the validator.
type BookingPolicy struct {
	MinLeadHours       int
	MaxDurationMinutes int
}

// CheckLeadTime verifies that start respects the minimum booking lead time.
// The boundary is inclusive: a start exactly minLeadHours from now passes.
// now is supplied by the caller, never read from the wall clock here.
func CheckLeadTime(start, now time.Time, minLeadHours int) error {
	bookingStart := now.Add(time.Duration(minLeadHours) * time.Hour)
	if start.Before(bookingStart) {
		return errors.InvalidWindow(MsgBookingWindow)
	}
	return nil
}

// CheckDuration verifies that durationMinutes does not exceed the configured
// maximum. The limit is inclusive.
func CheckDuration(durationMinutes, maxDurationMinutes int) error {
	if durationMinutes > maxDurationMinutes {
		return errors.InvalidDuration(MsgMaxDuration)
	}
	return nil
}

// NaiveUTC discards the offset of t and keeps the written wall-clock value
// as UTC. Appointment times are compared as naive values, so an offset sent
// by the client must not shift the clock reading.
func NaiveUTC(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}
