package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"hms/config"
	"hms/internal/domain"
	"hms/internal/service"
)

type stubAuth struct{}

func (stubAuth) ParseToken(_ context.Context, token string) (int64, domain.UserRole, error) {
	if token != "good" {
		return 0, "", domain.ErrInvalidToken
	}
	return 7, domain.UserRoleReceptionist, nil
}

type stubAppointments struct {
	err error

	createdBy int64
	createDTO domain.CreateAppointmentDTO
	updateID  int64
	dryRun    domain.ValidateAppointmentDTO
	filter    domain.AppointmentFilter
	items     []domain.Appointment
	total     int
}

func (s *stubAppointments) Validate(context.Context, *domain.Appointment, bool) error {
	return s.err
}

func (s *stubAppointments) DryRun(_ context.Context, createdBy int64, dto domain.ValidateAppointmentDTO) error {
	s.createdBy, s.dryRun = createdBy, dto
	return s.err
}

func (s *stubAppointments) Create(_ context.Context, createdBy int64, dto domain.CreateAppointmentDTO) (int64, error) {
	s.createdBy, s.createDTO = createdBy, dto
	if s.err != nil {
		return 0, s.err
	}
	return 31, nil
}

func (s *stubAppointments) GetByID(_ context.Context, id int64) (*domain.Appointment, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &domain.Appointment{ID: id, StaffID: 5, RoomID: 2}, nil
}

func (s *stubAppointments) Update(_ context.Context, id int64, _ domain.UpdateAppointmentDTO) error {
	s.updateID = id
	return s.err
}

func (s *stubAppointments) Delete(context.Context, int64) error {
	return s.err
}

func (s *stubAppointments) List(_ context.Context, filter domain.AppointmentFilter) ([]domain.Appointment, int, error) {
	s.filter = filter
	return s.items, s.total, s.err
}

func (s *stubAppointments) Options() domain.AppointmentOptions {
	return domain.AppointmentOptions{MinDuration: domain.MinDuration, MaxDuration: domain.MaxDuration}
}

type stubLookups struct{}

func (stubLookups) Patients(context.Context) ([]domain.Option, error) {
	return []domain.Option{{ID: 10, Display: "P-0010 - Mia Chen"}}, nil
}

func (stubLookups) Staff(context.Context) ([]domain.Option, error) {
	return []domain.Option{{ID: 5, Display: "Ana Ruiz"}}, nil
}

func (stubLookups) Rooms(context.Context) ([]domain.Option, error) {
	return nil, errors.New("db down")
}

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

func newTestRouter(appointments *stubAppointments, db Pinger) *gin.Engine {
	gin.SetMode(gin.TestMode)

	services := &service.Services{
		Appointment: appointments,
		Lookup:      stubLookups{},
		Auth:        stubAuth{},
	}
	handler := NewHandler(services, zap.NewNop(), &config.Config{Version: "test"}, nil, db)

	router := gin.New()
	handler.InitRoutes(router)
	return router
}

func doRequest(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer good")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

const createBody = `{
	"patient_id": 10, "staff_id": 5, "room_id": 2,
	"appointment_date": "2026-03-11T10:00:00Z", "duration": 30,
	"type": "Consultation", "status": "Scheduled", "reason": "Follow-up on lab results"
}`

func TestAuthMiddleware(t *testing.T) {
	router := newTestRouter(&stubAppointments{}, nil)

	tests := []struct {
		name   string
		header string
	}{
		{name: "missing", header: ""},
		{name: "not bearer", header: "Basic abc"},
		{name: "bad token", header: "Bearer nope"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/appointments/options", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestCreateAppointment_Created(t *testing.T) {
	appointments := &stubAppointments{}
	router := newTestRouter(appointments, nil)

	w := doRequest(router, http.MethodPost, "/api/v1/appointments", createBody)

	require.Equal(t, http.StatusCreated, w.Code)
	body := decode(t, w)
	assert.Equal(t, float64(31), body["data"].(map[string]interface{})["id"])
	assert.Equal(t, int64(7), appointments.createdBy)
	assert.Equal(t, domain.Minutes(30), appointments.createDTO.Duration)
	assert.Equal(t, time.Date(2026, 3, 11, 10, 0, 0, 0, time.UTC), appointments.createDTO.AppointmentDate.UTC())
}

func TestCreateAppointment_UnparseableDurationReachesValidator(t *testing.T) {
	appointments := &stubAppointments{}
	router := newTestRouter(appointments, nil)

	body := strings.Replace(createBody, `"duration": 30`, `"duration": "half an hour"`, 1)
	w := doRequest(router, http.MethodPost, "/api/v1/appointments", body)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, domain.Minutes(0), appointments.createDTO.Duration)
}

func TestCreateAppointment_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		check      func(t *testing.T, body map[string]interface{})
	}{
		{
			name:       "violations",
			err:        &domain.ValidationError{Violations: []string{"Select a Patient.", "Select a valid Type."}},
			wantStatus: http.StatusUnprocessableEntity,
			check: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, []interface{}{"Select a Patient.", "Select a valid Type."}, body["violations"])
			},
		},
		{
			name:       "staff conflict",
			err:        &domain.ConflictError{Reason: domain.ConflictStaffDoubleBooked},
			wantStatus: http.StatusConflict,
			check: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, "staff_double_booked", body["reason"])
				assert.Equal(t, domain.ConflictStaffDoubleBooked.Message(), body["message"])
			},
		},
		{
			name:       "room conflict",
			err:        &domain.ConflictError{Reason: domain.ConflictRoomDoubleBooked},
			wantStatus: http.StatusConflict,
			check: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, "room_double_booked", body["reason"])
			},
		},
		{
			name:       "check unavailable",
			err:        fmt.Errorf("%w: staff 5: %w", domain.ErrConflictCheckUnavailable, context.DeadlineExceeded),
			wantStatus: http.StatusServiceUnavailable,
		},
		{
			name:       "unexpected",
			err:        errors.New("disk full"),
			wantStatus: http.StatusInternalServerError,
			check: func(t *testing.T, body map[string]interface{}) {
				assert.NotContains(t, body["message"], "disk full")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(&stubAppointments{err: tt.err}, nil)

			w := doRequest(router, http.MethodPost, "/api/v1/appointments", createBody)

			require.Equal(t, tt.wantStatus, w.Code)
			body := decode(t, w)
			assert.Equal(t, "error", body["status"])
			if tt.check != nil {
				tt.check(t, body)
			}
		})
	}
}

func TestCreateAppointment_MalformedBody(t *testing.T) {
	router := newTestRouter(&stubAppointments{}, nil)

	w := doRequest(router, http.MethodPost, "/api/v1/appointments", `{"appointment_date": "tomorrow"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetAppointment(t *testing.T) {
	router := newTestRouter(&stubAppointments{}, nil)

	w := doRequest(router, http.MethodGet, "/api/v1/appointments/42", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(42), decode(t, w)["data"].(map[string]interface{})["id"])

	w = doRequest(router, http.MethodGet, "/api/v1/appointments/abc", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	router = newTestRouter(&stubAppointments{err: fmt.Errorf("appointment with ID 42: %w", domain.ErrNotFound)}, nil)
	w = doRequest(router, http.MethodGet, "/api/v1/appointments/42", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateAndDeleteAppointment(t *testing.T) {
	appointments := &stubAppointments{}
	router := newTestRouter(appointments, nil)

	w := doRequest(router, http.MethodPut, "/api/v1/appointments/42", createBody)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(42), appointments.updateID)

	w = doRequest(router, http.MethodDelete, "/api/v1/appointments/42", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestListAppointments_Filters(t *testing.T) {
	appointments := &stubAppointments{items: []domain.Appointment{{ID: 1}}, total: 45}
	router := newTestRouter(appointments, nil)

	w := doRequest(router, http.MethodGet,
		"/api/v1/appointments?staff_id=5&status=Scheduled&from=2026-03-01&to=2026-03-31&page=3&page_size=20", "")

	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, float64(45), body["total_count"])
	assert.Equal(t, float64(3), body["total_pages"])

	f := appointments.filter
	require.NotNil(t, f.StaffID)
	assert.Equal(t, int64(5), *f.StaffID)
	assert.Nil(t, f.RoomID)
	require.NotNil(t, f.Status)
	assert.Equal(t, domain.AppointmentStatusScheduled, *f.Status)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), *f.StartDate)
	assert.Equal(t, time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), *f.EndDate)
	assert.Equal(t, 20, f.Limit)
	assert.Equal(t, 40, f.Offset)
}

func TestListAppointments_InvalidFilters(t *testing.T) {
	router := newTestRouter(&stubAppointments{}, nil)

	for _, query := range []string{"staff_id=x", "status=Lost", "from=yesterday", "room_id=-1",
		"page=9223372036854775807", "page=30000000&page_size=100",
	} {
		w := doRequest(router, http.MethodGet, "/api/v1/appointments?"+query, "")
		assert.Equal(t, http.StatusBadRequest, w.Code, query)
	}
}

func TestValidateAppointment(t *testing.T) {
	appointments := &stubAppointments{}
	router := newTestRouter(appointments, nil)

	body := strings.Replace(createBody, "{", `{"appointment_id": 42,`, 1)
	w := doRequest(router, http.MethodPost, "/api/v1/appointments/validate", body)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(42), appointments.dryRun.AppointmentID)
	assert.Equal(t, int64(5), appointments.dryRun.StaffID)
	assert.Equal(t, int64(7), appointments.createdBy)

	router = newTestRouter(&stubAppointments{err: &domain.ConflictError{Reason: domain.ConflictRoomDoubleBooked}}, nil)
	w = doRequest(router, http.MethodPost, "/api/v1/appointments/validate", createBody)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestAppointmentOptions(t *testing.T) {
	router := newTestRouter(&stubAppointments{}, nil)

	w := doRequest(router, http.MethodGet, "/api/v1/appointments/options", "")

	require.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w)["data"].(map[string]interface{})
	assert.Equal(t, float64(5), data["min_duration"])
	assert.Equal(t, float64(480), data["max_duration"])
}

func TestLookups(t *testing.T) {
	router := newTestRouter(&stubAppointments{}, nil)

	w := doRequest(router, http.MethodGet, "/api/v1/lookups/staff", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["data"], 1)

	w = doRequest(router, http.MethodGet, "/api/v1/lookups/rooms", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestHealth(t *testing.T) {
	router := newTestRouter(&stubAppointments{}, stubPinger{})
	w := doRequest(router, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)

	router = newTestRouter(&stubAppointments{}, stubPinger{err: errors.New("connection refused")})
	w = doRequest(router, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "down", decode(t, w)["database"])
}

func TestRequestID(t *testing.T) {
	router := newTestRouter(&stubAppointments{}, nil)

	w := doRequest(router, http.MethodGet, "/health", "")
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))
}
