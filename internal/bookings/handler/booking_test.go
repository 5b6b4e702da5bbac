package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "salonbook/pkg/errors"
	httputil "salonbook/pkg/http"
	"salonbook/pkg/logger"
	"salonbook/pkg/model"
)

type mockBookingService struct {
	createFunc       func(ctx context.Context, b *model.Booking) error
	updateStatusFunc func(ctx context.Context, id string, u *model.BookingStatusUpdate) (*model.Booking, error)
	deleteErr        error
	searchArgs       []string
}

func (m *mockBookingService) Create(ctx context.Context, b *model.Booking) error {
	return m.createFunc(ctx, b)
}

func (m *mockBookingService) GetByID(_ context.Context, id string) (*model.Booking, error) {
	if id != "b1" {
		return nil, apperrors.NotFoundWithID("Booking", id)
	}
	return &model.Booking{ID: "b1", TechnicianID: "tech-1", Status: model.StatusPending}, nil
}

func (m *mockBookingService) GetAll(_ context.Context, limit int, offset int64) ([]*model.Booking, int64, error) {
	return []*model.Booking{{ID: "b1"}}, 7, nil
}

func (m *mockBookingService) SearchByTechnicianAndDate(_ context.Context, technicianID, date string, _ int, _ int64) ([]*model.Booking, int64, error) {
	m.searchArgs = []string{technicianID, date}
	return []*model.Booking{}, 0, nil
}

func (m *mockBookingService) UpdateStatus(ctx context.Context, id string, u *model.BookingStatusUpdate) (*model.Booking, error) {
	return m.updateStatusFunc(ctx, id, u)
}

func (m *mockBookingService) Delete(context.Context, string) error {
	return m.deleteErr
}

func newTestRouter(svc *mockBookingService) *httprouter.Router {
	router := httprouter.New()
	NewBookingHandler(svc, logger.New(logger.Config{Level: "error", Output: io.Discard})).RegisterRoutes(router)
	return router
}

func serve(router http.Handler, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestBookingHandler_Create(t *testing.T) {
	svc := &mockBookingService{createFunc: func(_ context.Context, b *model.Booking) error {
		b.ID = "b1"
		b.AppointmentNumber = "APT-20240603-ABC123"
		b.EndTime = "11:00"
		return nil
	}}

	rec := serve(newTestRouter(svc), http.MethodPost, "/api/v1/bookings",
		`{"technician_id":"tech-1","appointment_date":"2024-06-03","start_time":"10:00","service_duration_minutes":60,"client_name":"Dana","client_phone":"+14155550123"}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	var body struct {
		Data model.Booking `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "b1", body.Data.ID)
	assert.Equal(t, "APT-20240603-ABC123", body.Data.AppointmentNumber)
	assert.Equal(t, "11:00", body.Data.EndTime)
}

func TestBookingHandler_CreateErrors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"malformed body", `{`, nil, http.StatusBadRequest, apperrors.CodeInvalidInput},
		{"slot taken", `{}`, apperrors.Conflict("requested start time is no longer available"), http.StatusConflict, apperrors.CodeConflict},
		{"validation", `{}`, apperrors.Validation("Booking validation failed", nil), http.StatusUnprocessableEntity, apperrors.CodeValidation},
		{"availability down", `{}`, apperrors.Unavailable("Availability service unreachable", nil), http.StatusServiceUnavailable, apperrors.CodeUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockBookingService{createFunc: func(context.Context, *model.Booking) error { return tt.err }}

			rec := serve(newTestRouter(svc), http.MethodPost, "/api/v1/bookings", tt.body)

			assert.Equal(t, tt.wantStatus, rec.Code)
			var body apperrors.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantCode, body.Code)
		})
	}
}

func TestBookingHandler_GetByID(t *testing.T) {
	router := newTestRouter(&mockBookingService{})

	rec := serve(router, http.MethodGet, "/api/v1/bookings/id/b1", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(router, http.MethodGet, "/api/v1/bookings/id/missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBookingHandler_GetAll(t *testing.T) {
	rec := serve(newTestRouter(&mockBookingService{}), http.MethodGet, "/api/v1/bookings?limit=5&offset=2", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var body httputil.PaginatedResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.EqualValues(t, 7, body.TotalCount)
	assert.Equal(t, 5, body.Limit)
	assert.EqualValues(t, 2, body.Offset)

	rec = serve(newTestRouter(&mockBookingService{}), http.MethodGet, "/api/v1/bookings?limit=ten", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBookingHandler_Search(t *testing.T) {
	svc := &mockBookingService{}
	router := newTestRouter(svc)

	rec := serve(router, http.MethodGet, "/api/v1/bookings/search?technician_id=tech-1&date=2024-06-03", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"tech-1", "2024-06-03"}, svc.searchArgs)
	assert.Contains(t, rec.Body.String(), `"data":[]`)

	rec = serve(router, http.MethodGet, "/api/v1/bookings/search?date=2024-06-03", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(router, http.MethodGet, "/api/v1/bookings/search?technician_id=tech-1&date=June", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBookingHandler_UpdateStatus(t *testing.T) {
	var gotID string
	var gotStatus model.BookingStatus
	svc := &mockBookingService{updateStatusFunc: func(_ context.Context, id string, u *model.BookingStatusUpdate) (*model.Booking, error) {
		gotID, gotStatus = id, u.Status
		if u.Status == model.StatusCompleted {
			return nil, apperrors.Conflict("booking status transition not allowed")
		}
		return &model.Booking{ID: id, Status: u.Status}, nil
	}}
	router := newTestRouter(svc)

	rec := serve(router, http.MethodPatch, "/api/v1/bookings/id/b1/status", `{"status":"confirmed"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "b1", gotID)
	assert.Equal(t, model.StatusConfirmed, gotStatus)

	rec = serve(router, http.MethodPatch, "/api/v1/bookings/id/b1/status", `{"status":"completed"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = serve(router, http.MethodPatch, "/api/v1/bookings/id/b1/status", `status=confirmed`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBookingHandler_Delete(t *testing.T) {
	rec := serve(newTestRouter(&mockBookingService{}), http.MethodDelete, "/api/v1/bookings/id/b1", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = serve(newTestRouter(&mockBookingService{deleteErr: apperrors.NotFoundWithID("Booking", "b1")}),
		http.MethodDelete, "/api/v1/bookings/id/b1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
