package appointment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sivpack/scheduler-api/internal/middleware"
	"github.com/sivpack/scheduler-api/internal/model"
	"github.com/sivpack/scheduler-api/internal/repository"
	appointmentsvc "github.com/sivpack/scheduler-api/internal/service/appointment"
	"github.com/sivpack/scheduler-api/internal/service/scheduling"
	"github.com/sivpack/scheduler-api/pkg/logger"
)

const testBaseURL = "http://localhost:8080/api/v1"

var frozenNow = time.Date(2018, 4, 4, 10, 0, 0, 0, time.UTC)

// envelope mirrors the response wrapper for decoding in assertions.
type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *string         `json:"error"`
}

type apiFixture struct {
	router   *gin.Engine
	patient  *model.Patient
	provider *model.Provider
	repo     *memAppointmentRepo
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	middleware.RegisterValidators()

	patient := &model.Patient{Base: model.Base{ID: uuid.New()}, FirstName: "Ada", LastName: "Lovelace"}
	provider := &model.Provider{Base: model.Base{ID: uuid.New()}, FirstName: "Grace", LastName: "Hopper"}
	repo := newMemAppointmentRepo()

	validator := scheduling.NewValidator(
		&memPatientRepo{patient: patient},
		&memProviderRepo{provider: provider},
		repo,
		scheduling.AlwaysOpen{},
		scheduling.BookingPolicy{MinLeadHours: 24, MaxDurationMinutes: 240},
	)
	log := logger.NewLogger(&logger.Config{Level: logger.ErrorLevel, TimeFormat: time.RFC3339, Output: io.Discard})
	svc := appointmentsvc.NewService(repo, &memOutboxRepo{}, validator, log).
		WithClock(func() time.Time { return frozenNow })

	router := gin.New()
	NewHandler(svc, testBaseURL).RegisterRoutes(router.Group("/api/v1"))

	return &apiFixture{router: router, patient: patient, provider: provider, repo: repo}
}

func (f *apiFixture) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func (f *apiFixture) createBody(start time.Time, minutes int) gin.H {
	return gin.H{
		"start":       start.Format(time.RFC3339),
		"duration":    minutes,
		"patient_id":  f.patient.ID,
		"provider_id": f.provider.ID,
		"department":  "cardiology",
	}
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func TestCreateAppointment(t *testing.T) {
	f := newAPIFixture(t)
	start := time.Date(2018, 4, 5, 10, 0, 0, 0, time.UTC)

	rec := f.do(t, http.MethodPost, "/api/v1/appointments", f.createBody(start, 60))
	require.Equal(t, http.StatusCreated, rec.Code)

	env := decodeEnvelope(t, rec)
	assert.Nil(t, env.Error)

	var apt model.Appointment
	require.NoError(t, json.Unmarshal(env.Data, &apt))
	assert.Equal(t, start, apt.Start)
	assert.Equal(t, fmt.Sprintf("%s/appointments/%s", testBaseURL, apt.ID), rec.Header().Get("Location"))
}

func TestCreateAppointment_Conflict(t *testing.T) {
	f := newAPIFixture(t)
	start := time.Date(2018, 4, 5, 10, 0, 0, 0, time.UTC)

	rec := f.do(t, http.MethodPost, "/api/v1/appointments", f.createBody(start, 60))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/v1/appointments", f.createBody(start.Add(30*time.Minute), 60))
	require.Equal(t, http.StatusConflict, rec.Code)

	env := decodeEnvelope(t, rec)
	require.NotNil(t, env.Error)
	assert.Equal(t, scheduling.MsgStartConflict, *env.Error)
}

func TestCreateAppointment_InsideWindow(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodPost, "/api/v1/appointments", f.createBody(frozenNow.Add(time.Hour), 60))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	env := decodeEnvelope(t, rec)
	require.NotNil(t, env.Error)
	assert.Equal(t, scheduling.MsgBookingWindow, *env.Error)
}

func TestCreateAppointment_UnknownPatient(t *testing.T) {
	f := newAPIFixture(t)
	body := f.createBody(time.Date(2018, 4, 5, 10, 0, 0, 0, time.UTC), 60)
	body["patient_id"] = uuid.New()

	rec := f.do(t, http.MethodPost, "/api/v1/appointments", body)
	require.Equal(t, http.StatusNotFound, rec.Code)

	env := decodeEnvelope(t, rec)
	require.NotNil(t, env.Error)
	assert.Equal(t, scheduling.MsgPatientNotFound, *env.Error)
}

func TestCreateAppointment_BlankDepartment(t *testing.T) {
	f := newAPIFixture(t)
	body := f.createBody(time.Date(2018, 4, 5, 10, 0, 0, 0, time.UTC), 60)
	body["department"] = "   "

	rec := f.do(t, http.MethodPost, "/api/v1/appointments", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateAppointment(t *testing.T) {
	f := newAPIFixture(t)
	start := time.Date(2018, 4, 5, 10, 0, 0, 0, time.UTC)

	rec := f.do(t, http.MethodPost, "/api/v1/appointments", f.createBody(start, 45))
	require.Equal(t, http.StatusCreated, rec.Code)
	var created model.Appointment
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &created))

	newStart := time.Date(2018, 4, 6, 14, 0, 0, 0, time.UTC)
	rec = f.do(t, http.MethodPut, "/api/v1/appointments/"+created.ID.String(), gin.H{
		"start": newStart.Format(time.RFC3339),
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var updated model.Appointment
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &updated))
	assert.Equal(t, newStart, updated.Start)
	assert.Equal(t, newStart.Add(45*time.Minute), updated.End)
}

func TestUpdateAppointment_NotFound(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodPut, "/api/v1/appointments/"+uuid.NewString(), gin.H{"department": "oncology"})
	require.Equal(t, http.StatusNotFound, rec.Code)

	env := decodeEnvelope(t, rec)
	require.NotNil(t, env.Error)
	assert.Equal(t, appointmentsvc.MsgAppointmentNotFound, *env.Error)
}

func TestUpdateAppointment_Past(t *testing.T) {
	f := newAPIFixture(t)
	apt := &model.Appointment{
		Base:       model.Base{ID: uuid.New()},
		Start:      frozenNow.Add(-2 * time.Hour),
		End:        frozenNow.Add(-time.Hour),
		PatientID:  f.patient.ID,
		ProviderID: f.provider.ID,
	}
	f.repo.appointments[apt.ID] = apt

	rec := f.do(t, http.MethodPut, "/api/v1/appointments/"+apt.ID.String(), gin.H{"department": "oncology"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	env := decodeEnvelope(t, rec)
	require.NotNil(t, env.Error)
	assert.Equal(t, scheduling.MsgModifyPast, *env.Error)
}

func TestDeleteAppointment(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodPost, "/api/v1/appointments", f.createBody(time.Date(2018, 4, 5, 10, 0, 0, 0, time.UTC), 60))
	require.Equal(t, http.StatusCreated, rec.Code)
	var created model.Appointment
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &created))

	rec = f.do(t, http.MethodDelete, "/api/v1/appointments/"+created.ID.String(), nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.Bytes())

	rec = f.do(t, http.MethodDelete, "/api/v1/appointments/"+created.ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListAppointments_ByProvider(t *testing.T) {
	f := newAPIFixture(t)
	rec := f.do(t, http.MethodPost, "/api/v1/appointments", f.createBody(time.Date(2018, 4, 5, 10, 0, 0, 0, time.UTC), 60))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/v1/appointments?provider_id="+f.provider.ID.String(), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var mine []*model.Appointment
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &mine))
	assert.Len(t, mine, 1)

	rec = f.do(t, http.MethodGet, "/api/v1/appointments?provider_id=not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// In-memory repositories for the handler tests.

type memAppointmentRepo struct {
	appointments map[uuid.UUID]*model.Appointment
}

func newMemAppointmentRepo() *memAppointmentRepo {
	return &memAppointmentRepo{appointments: make(map[uuid.UUID]*model.Appointment)}
}

func (r *memAppointmentRepo) Create(ctx context.Context, apt *model.Appointment) error {
	apt.ID = uuid.New()
	apt.Created = frozenNow
	apt.Updated = frozenNow
	r.appointments[apt.ID] = apt
	return nil
}

func (r *memAppointmentRepo) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	a, ok := r.appointments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return a, nil
}

func (r *memAppointmentRepo) Update(ctx context.Context, apt *model.Appointment) error {
	if _, ok := r.appointments[apt.ID]; !ok {
		return repository.ErrNotFound
	}
	r.appointments[apt.ID] = apt
	return nil
}

func (r *memAppointmentRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := r.appointments[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.appointments, id)
	return nil
}

func (r *memAppointmentRepo) List(ctx context.Context) ([]*model.Appointment, error) {
	var out []*model.Appointment
	for _, a := range r.appointments {
		out = append(out, a)
	}
	return out, nil
}

func (r *memAppointmentRepo) ListByProvider(ctx context.Context, providerID uuid.UUID) ([]*model.Appointment, error) {
	var out []*model.Appointment
	for _, a := range r.appointments {
		if a.ProviderID == providerID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *memAppointmentRepo) FindConflictsAtStart(ctx context.Context, providerID uuid.UUID, at time.Time, excludeID *uuid.UUID) ([]*model.Appointment, error) {
	var out []*model.Appointment
	for _, a := range r.appointments {
		if a.ProviderID != providerID || (excludeID != nil && a.ID == *excludeID) {
			continue
		}
		if !a.Start.After(at) && a.End.After(at) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *memAppointmentRepo) FindConflictsAtEnd(ctx context.Context, providerID uuid.UUID, at time.Time, excludeID *uuid.UUID) ([]*model.Appointment, error) {
	var out []*model.Appointment
	for _, a := range r.appointments {
		if a.ProviderID != providerID || (excludeID != nil && a.ID == *excludeID) {
			continue
		}
		if a.Start.Before(at) && !a.End.Before(at) {
			out = append(out, a)
		}
	}
	return out, nil
}

type memPatientRepo struct{ patient *model.Patient }

func (r *memPatientRepo) Create(ctx context.Context, p *model.Patient) error { return nil }
func (r *memPatientRepo) Get(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	if r.patient != nil && r.patient.ID == id {
		return r.patient, nil
	}
	return nil, repository.ErrNotFound
}
func (r *memPatientRepo) Delete(ctx context.Context, id uuid.UUID) error { return nil }
func (r *memPatientRepo) List(ctx context.Context) ([]*model.Patient, error) {
	return []*model.Patient{r.patient}, nil
}

type memProviderRepo struct{ provider *model.Provider }

func (r *memProviderRepo) Create(ctx context.Context, p *model.Provider) error { return nil }
func (r *memProviderRepo) Get(ctx context.Context, id uuid.UUID) (*model.Provider, error) {
	if r.provider != nil && r.provider.ID == id {
		return r.provider, nil
	}
	return nil, repository.ErrNotFound
}
func (r *memProviderRepo) Delete(ctx context.Context, id uuid.UUID) error { return nil }
func (r *memProviderRepo) List(ctx context.Context) ([]*model.Provider, error) {
	return []*model.Provider{r.provider}, nil
}

type memOutboxRepo struct{ events []*model.OutboxEvent }

func (r *memOutboxRepo) Create(ctx context.Context, event *model.OutboxEvent) error {
	event.ID = uuid.New()
	r.events = append(r.events, event)
	return nil
}
func (r *memOutboxRepo) GetPendingEvents(ctx context.Context, limit int) ([]*model.OutboxEvent, error) {
	return r.events, nil
}
func (r *memOutboxRepo) MarkProcessed(ctx context.Context, id uuid.UUID) error { return nil }
func (r *memOutboxRepo) MarkFailed(ctx context.Context, id uuid.UUID, errMsg string) error {
	return nil
}
