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

type appointmentRepository struct {
	db *sqlx.DB
}

func NewAppointmentRepository(db *sqlx.DB) repository.AppointmentRepository {
	return &appointmentRepository{db: db}
}

func (r *appointmentRepository) Create(ctx context.Context, appointment *model.Appointment) error {
	query := `
		INSERT INTO appointments (
			id, start_time, end_time, department,
			patient_id, provider_id, created, updated
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	appointment.ID = uuid.New()
	appointment.Created = time.Now().UTC()
	appointment.Updated = appointment.Created

	_, err := r.db.ExecContext(ctx, query,
		appointment.ID,
		appointment.Start,
		appointment.End,
		appointment.Department,
		appointment.PatientID,
		appointment.ProviderID,
		appointment.Created,
		appointment.Updated,
	)
	if err != nil {
		return fmt.Errorf("failed to create appointment: %w", err)
	}
	return nil
}

func (r *appointmentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	query := `SELECT * FROM appointments WHERE id = $1`
	var appointment model.Appointment
	err := r.db.GetContext(ctx, &appointment, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return &appointment, nil
}

func (r *appointmentRepository) Update(ctx context.Context, appointment *model.Appointment) error {
	query := `
		UPDATE appointments
		SET start_time = $1, end_time = $2, department = $3, updated = $4
		WHERE id = $5
	`
	appointment.Updated = time.Now().UTC()

	result, err := r.db.ExecContext(ctx, query,
		appointment.Start,
		appointment.End,
		appointment.Department,
		appointment.Updated,
		appointment.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update appointment: %w", err)
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

func (r *appointmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM appointments WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete appointment: %w", err)
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

func (r *appointmentRepository) List(ctx context.Context) ([]*model.Appointment, error) {
	query := `SELECT * FROM appointments ORDER BY start_time ASC`
	var appointments []*model.Appointment
	if err := r.db.SelectContext(ctx, &appointments, query); err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

func (r *appointmentRepository) ListByProvider(ctx context.Context, providerID uuid.UUID) ([]*model.Appointment, error) {
	query := `SELECT * FROM appointments WHERE provider_id = $1 ORDER BY start_time ASC`
	var appointments []*model.Appointment
	if err := r.db.SelectContext(ctx, &appointments, query, providerID); err != nil {
		return nil, fmt.Errorf("failed to list provider appointments: %w", err)
	}
	return appointments, nil
}

// Booked intervals are half-open [start_time, end_time).

func (r *appointmentRepository) FindConflictsAtStart(ctx context.Context, providerID uuid.UUID, at time.Time, excludeID *uuid.UUID) ([]*model.Appointment, error) {
	query := `
		SELECT * FROM appointments
		WHERE provider_id = $1
		AND start_time <= $2 AND end_time > $2
	`
	return r.findConflicts(ctx, query, providerID, at, excludeID)
}

func (r *appointmentRepository) FindConflictsAtEnd(ctx context.Context, providerID uuid.UUID, at time.Time, excludeID *uuid.UUID) ([]*model.Appointment, error) {
	query := `
		SELECT * FROM appointments
		WHERE provider_id = $1
		AND start_time < $2 AND end_time >= $2
	`
	return r.findConflicts(ctx, query, providerID, at, excludeID)
}

func (r *appointmentRepository) findConflicts(ctx context.Context, query string, providerID uuid.UUID, at time.Time, excludeID *uuid.UUID) ([]*model.Appointment, error) {
	args := []interface{}{providerID, at}
	if excludeID != nil {
		query += " AND id != $3"
		args = append(args, *excludeID)
	}

	var conflicts []*model.Appointment
	if err := r.db.SelectContext(ctx, &conflicts, query, args...); err != nil {
		return nil, fmt.Errorf("failed to find conflicting appointments: %w", err)
	}
	return conflicts, nil
}
