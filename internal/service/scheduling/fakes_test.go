package scheduling

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/sivpack/scheduler-api/internal/model"
	"github.com/sivpack/scheduler-api/internal/repository"
)

// In-memory repositories backing the validator tests.

type fakePatientRepo struct {
	patients map[uuid.UUID]*model.Patient
}

func newFakePatientRepo(patients ...*model.Patient) *fakePatientRepo {
	r := &fakePatientRepo{patients: make(map[uuid.UUID]*model.Patient)}
	for _, p := range patients {
		r.patients[p.ID] = p
	}
	return r
}

func (r *fakePatientRepo) Create(ctx context.Context, patient *model.Patient) error {
	patient.ID = uuid.New()
	r.patients[patient.ID] = patient
	return nil
}

func (r *fakePatientRepo) Get(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	p, ok := r.patients[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return p, nil
}

func (r *fakePatientRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := r.patients[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.patients, id)
	return nil
}

func (r *fakePatientRepo) List(ctx context.Context) ([]*model.Patient, error) {
	var out []*model.Patient
	for _, p := range r.patients {
		out = append(out, p)
	}
	return out, nil
}

type fakeProviderRepo struct {
	providers map[uuid.UUID]*model.Provider
}

func newFakeProviderRepo(providers ...*model.Provider) *fakeProviderRepo {
	r := &fakeProviderRepo{providers: make(map[uuid.UUID]*model.Provider)}
	for _, p := range providers {
		r.providers[p.ID] = p
	}
	return r
}

func (r *fakeProviderRepo) Create(ctx context.Context, provider *model.Provider) error {
	provider.ID = uuid.New()
	r.providers[provider.ID] = provider
	return nil
}

func (r *fakeProviderRepo) Get(ctx context.Context, id uuid.UUID) (*model.Provider, error) {
	p, ok := r.providers[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return p, nil
}

func (r *fakeProviderRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := r.providers[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.providers, id)
	return nil
}

func (r *fakeProviderRepo) List(ctx context.Context) ([]*model.Provider, error) {
	var out []*model.Provider
	for _, p := range r.providers {
		out = append(out, p)
	}
	return out, nil
}

type fakeAppointmentRepo struct {
	appointments map[uuid.UUID]*model.Appointment
}

func newFakeAppointmentRepo(appointments ...*model.Appointment) *fakeAppointmentRepo {
	r := &fakeAppointmentRepo{appointments: make(map[uuid.UUID]*model.Appointment)}
	for _, a := range appointments {
		r.appointments[a.ID] = a
	}
	return r
}

func (r *fakeAppointmentRepo) Create(ctx context.Context, apt *model.Appointment) error {
	apt.ID = uuid.New()
	apt.Created = time.Now().UTC()
	apt.Updated = apt.Created
	r.appointments[apt.ID] = apt
	return nil
}

func (r *fakeAppointmentRepo) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	a, ok := r.appointments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return a, nil
}

func (r *fakeAppointmentRepo) Update(ctx context.Context, apt *model.Appointment) error {
	if _, ok := r.appointments[apt.ID]; !ok {
		return repository.ErrNotFound
	}
	apt.Updated = time.Now().UTC()
	r.appointments[apt.ID] = apt
	return nil
}

func (r *fakeAppointmentRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := r.appointments[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.appointments, id)
	return nil
}

func (r *fakeAppointmentRepo) List(ctx context.Context) ([]*model.Appointment, error) {
	var out []*model.Appointment
	for _, a := range r.appointments {
		out = append(out, a)
	}
	return out, nil
}

func (r *fakeAppointmentRepo) ListByProvider(ctx context.Context, providerID uuid.UUID) ([]*model.Appointment, error) {
	var out []*model.Appointment
	for _, a := range r.appointments {
		if a.ProviderID == providerID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *fakeAppointmentRepo) FindConflictsAtStart(ctx context.Context, providerID uuid.UUID, at time.Time, excludeID *uuid.UUID) ([]*model.Appointment, error) {
	var out []*model.Appointment
	for _, a := range r.appointments {
		if a.ProviderID != providerID {
			continue
		}
		if excludeID != nil && a.ID == *excludeID {
			continue
		}
		if !a.Start.After(at) && a.End.After(at) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *fakeAppointmentRepo) FindConflictsAtEnd(ctx context.Context, providerID uuid.UUID, at time.Time, excludeID *uuid.UUID) ([]*model.Appointment, error) {
	var out []*model.Appointment
	for _, a := range r.appointments {
		if a.ProviderID != providerID {
			continue
		}
		if excludeID != nil && a.ID == *excludeID {
			continue
		}
		if a.Start.Before(at) && !a.End.Before(at) {
			out = append(out, a)
		}
	}
	return out, nil
}
