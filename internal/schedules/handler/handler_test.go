package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "salonbook/pkg/errors"
	"salonbook/pkg/logger"
	"salonbook/pkg/model"
)

type mockWorkingHoursService struct {
	created  *model.WorkingHours
	createFn func(wh *model.WorkingHours) error
}

func (m *mockWorkingHoursService) Create(_ context.Context, wh *model.WorkingHours) error {
	m.created = wh
	if m.createFn != nil {
		return m.createFn(wh)
	}
	wh.ID = "wh-1"
	return nil
}

func (m *mockWorkingHoursService) GetByID(_ context.Context, id string) (*model.WorkingHours, error) {
	return nil, apperrors.NotFoundWithID("Working hours", id)
}

func (m *mockWorkingHoursService) GetAll(context.Context, int, int64) ([]*model.WorkingHours, int64, error) {
	return []*model.WorkingHours{}, 0, nil
}

func (m *mockWorkingHoursService) GetByTechnician(_ context.Context, technicianID string) ([]*model.WorkingHours, error) {
	return []*model.WorkingHours{{ID: "wh-1", TechnicianID: technicianID}}, nil
}

func (m *mockWorkingHoursService) Update(_ context.Context, id string, u *model.WorkingHoursUpdate) (*model.WorkingHours, error) {
	return &model.WorkingHours{ID: id, StartTime: u.StartTime}, nil
}

func (m *mockWorkingHoursService) Delete(context.Context, string) error { return nil }

type mockBlackoutService struct {
	from, to *time.Time
}

func (m *mockBlackoutService) Create(_ context.Context, p *model.BlackoutPeriod) error {
	p.ID = "bo-1"
	return nil
}

func (m *mockBlackoutService) GetByID(_ context.Context, id string) (*model.BlackoutPeriod, error) {
	return &model.BlackoutPeriod{ID: id}, nil
}

func (m *mockBlackoutService) GetAll(context.Context, int, int64) ([]*model.BlackoutPeriod, int64, error) {
	return []*model.BlackoutPeriod{}, 0, nil
}

func (m *mockBlackoutService) GetByTechnician(_ context.Context, _ string, from, to *time.Time) ([]*model.BlackoutPeriod, error) {
	m.from, m.to = from, to
	return []*model.BlackoutPeriod{}, nil
}

func (m *mockBlackoutService) Update(_ context.Context, id string, _ *model.BlackoutPeriodUpdate) (*model.BlackoutPeriod, error) {
	return &model.BlackoutPeriod{ID: id}, nil
}

func (m *mockBlackoutService) Delete(context.Context, string) error {
	return apperrors.NotFoundWithID("Blackout period", "x")
}

type mockSettingsService struct {
	update *model.BusinessSettingsUpdate
}

func (m *mockSettingsService) Get(context.Context) (*model.BusinessSettings, error) {
	s := model.DefaultBusinessSettings(30, 30)
	return &s, nil
}

func (m *mockSettingsService) Update(_ context.Context, u *model.BusinessSettingsUpdate) (*model.BusinessSettings, error) {
	m.update = u
	if u.SlotDuration != nil && *u.SlotDuration < 5 {
		return nil, apperrors.Validation("Invalid update input", nil)
	}
	s := model.DefaultBusinessSettings(*u.SlotDuration, 30)
	return &s, nil
}

type fixture struct {
	router   *httprouter.Router
	hours    *mockWorkingHoursService
	blackout *mockBlackoutService
	settings *mockSettingsService
}

func newFixture() *fixture {
	log := logger.New(logger.Config{Level: "error", Output: io.Discard})
	f := &fixture{
		router:   httprouter.New(),
		hours:    &mockWorkingHoursService{},
		blackout: &mockBlackoutService{},
		settings: &mockSettingsService{},
	}
	NewWorkingHoursHandler(f.hours, log).RegisterRoutes(f.router)
	NewBlackoutHandler(f.blackout, log).RegisterRoutes(f.router)
	NewSettingsHandler(f.settings, log).RegisterRoutes(f.router)
	return f
}

func (f *fixture) serve(method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func TestWorkingHoursHandler_CreateDefaultsActive(t *testing.T) {
	f := newFixture()

	rec := f.serve(http.MethodPost, "/api/v1/working-hours",
		`{"technician_id":"tech-1","day_of_week":1,"start_time":"09:00","end_time":"17:00"}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, f.hours.created)
	assert.True(t, f.hours.created.IsActive)

	rec = f.serve(http.MethodPost, "/api/v1/working-hours",
		`{"technician_id":"tech-1","day_of_week":1,"start_time":"09:00","end_time":"17:00","is_active":false}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.False(t, f.hours.created.IsActive)
}

func TestWorkingHoursHandler_CreateConflict(t *testing.T) {
	f := newFixture()
	f.hours.createFn = func(*model.WorkingHours) error {
		return apperrors.Conflict("technician already has active working hours for this weekday")
	}

	rec := f.serve(http.MethodPost, "/api/v1/working-hours", `{"technician_id":"tech-1"}`)

	assert.Equal(t, http.StatusConflict, rec.Code)
	var body apperrors.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, apperrors.CodeConflict, body.Code)
}

func TestWorkingHoursHandler_Routes(t *testing.T) {
	f := newFixture()

	assert.Equal(t, http.StatusNotFound, f.serve(http.MethodGet, "/api/v1/working-hours/id/abc", "").Code)
	assert.Equal(t, http.StatusOK, f.serve(http.MethodGet, "/api/v1/working-hours?limit=5", "").Code)
	assert.Equal(t, http.StatusOK, f.serve(http.MethodGet, "/api/v1/working-hours/search?technician_id=tech-1", "").Code)
	assert.Equal(t, http.StatusBadRequest, f.serve(http.MethodGet, "/api/v1/working-hours/search", "").Code)
	assert.Equal(t, http.StatusOK, f.serve(http.MethodPatch, "/api/v1/working-hours/id/abc", `{"start_time":"10:00"}`).Code)
	assert.Equal(t, http.StatusBadRequest, f.serve(http.MethodPatch, "/api/v1/working-hours/id/abc", `[`).Code)
	assert.Equal(t, http.StatusNoContent, f.serve(http.MethodDelete, "/api/v1/working-hours/id/abc", "").Code)
}

func TestBlackoutHandler_Search(t *testing.T) {
	f := newFixture()

	rec := f.serve(http.MethodGet, "/api/v1/blackouts/search?technician_id=tech-1&from=2024-06-03T00:00:00Z", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, f.blackout.from)
	assert.Nil(t, f.blackout.to)
	assert.True(t, f.blackout.from.Equal(time.Date(2024, time.June, 3, 0, 0, 0, 0, time.UTC)))

	rec = f.serve(http.MethodGet, "/api/v1/blackouts/search?technician_id=tech-1&to=tomorrow", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBlackoutHandler_CreateAndDelete(t *testing.T) {
	f := newFixture()

	rec := f.serve(http.MethodPost, "/api/v1/blackouts",
		`{"technician_id":"tech-1","start_datetime":"2024-06-03T09:00:00Z","end_datetime":"2024-06-03T12:00:00Z","title":"Training"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"id":"bo-1"`)

	rec = f.serve(http.MethodDelete, "/api/v1/blackouts/id/x", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSettingsHandler(t *testing.T) {
	f := newFixture()

	rec := f.serve(http.MethodGet, "/api/v1/settings", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"slot_duration":30`)

	rec = f.serve(http.MethodPut, "/api/v1/settings", `{"slot_duration":15}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, f.settings.update.SlotDuration)
	assert.Equal(t, 15, *f.settings.update.SlotDuration)
	assert.Nil(t, f.settings.update.IsAcceptingBookings)

	rec = f.serve(http.MethodPut, "/api/v1/settings", `{"slot_duration":1}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}
