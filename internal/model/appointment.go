package model

import (
	"time"

	"github.com/google/uuid"
)

// Interval is a half-open time range [Start, End). End is always after Start.
type Interval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Appointment timestamps are naive: any offset supplied by the client is
// discarded on ingestion and the wall-clock value is kept as UTC.
type Appointment struct {
	Base
	Start      time.Time `db:"start_time" json:"start"`
	End        time.Time `db:"end_time" json:"end"`
	Department string    `db:"department" json:"department"`
	PatientID  uuid.UUID `db:"patient_id" json:"patient_id"`
	ProviderID uuid.UUID `db:"provider_id" json:"provider_id"`
}

// Interval returns the appointment's booked slot.
func (a *Appointment) Interval() Interval {
	return Interval{Start: a.Start, End: a.End}
}

type CreateAppointmentRequest struct {
	Start      time.Time `json:"start" binding:"required"`
	Duration   int       `json:"duration" binding:"required,min=1"` // minutes
	PatientID  uuid.UUID `json:"patient_id" binding:"required"`
	ProviderID uuid.UUID `json:"provider_id" binding:"required"`
	Department string    `json:"department" binding:"required,notblank,max=50"`
}

// UpdateAppointmentRequest carries a partial update. Omitted fields keep
// their persisted values; patient and provider are immutable (delete and
// create new to change them).
type UpdateAppointmentRequest struct {
	Start      *time.Time `json:"start"`
	Duration   *int       `json:"duration" binding:"omitempty,min=1"` // minutes
	Department *string    `json:"department" binding:"omitempty,notblank,max=50"`
}
