package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salonbook/internal/availability/service"
	"salonbook/internal/availability/slots"
	apperrors "salonbook/pkg/errors"
	"salonbook/pkg/logger"
)

type mockAvailabilityService struct {
	evaluateFunc func(ctx context.Context, req service.Request, now time.Time) (*service.Result, error)
	lastRequest  service.Request
}

func (m *mockAvailabilityService) ComputeAvailableSlots(ctx context.Context, technicianID, date string, durationMinutes int, now time.Time) ([]slots.TimeOfDay, error) {
	res, err := m.Evaluate(ctx, service.Request{TechnicianID: technicianID, Date: date, DurationMinutes: durationMinutes}, now)
	if err != nil {
		return nil, err
	}
	return res.Slots(), nil
}

func (m *mockAvailabilityService) Evaluate(ctx context.Context, req service.Request, now time.Time) (*service.Result, error) {
	m.lastRequest = req
	return m.evaluateFunc(ctx, req, now)
}

func newTestRouter(svc service.AvailabilityService) *httprouter.Router {
	h := NewAvailabilityHandler(svc, logger.New(logger.Config{Level: "error", Output: io.Discard}))
	h.now = func() time.Time { return time.Date(2024, time.June, 1, 8, 0, 0, 0, time.UTC) }
	router := httprouter.New()
	h.RegisterRoutes(router)
	return router
}

func sampleResult(req service.Request) *service.Result {
	return &service.Result{
		TechnicianID:    req.TechnicianID,
		Date:            req.Date,
		DurationMinutes: req.DurationMinutes,
		Interval:        30,
		Evaluations: []slots.Evaluation{
			{Time: slots.MustParseTimeOfDay("09:00"), Available: true},
			{Time: slots.MustParseTimeOfDay("09:30"), Reason: slots.ReasonBooked},
			{Time: slots.MustParseTimeOfDay("10:00"), Available: true},
		},
	}
}

func TestSlots(t *testing.T) {
	svc := &mockAvailabilityService{evaluateFunc: func(_ context.Context, req service.Request, _ time.Time) (*service.Result, error) {
		return sampleResult(req), nil
	}}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/availability/slots?technician_id=tech-1&date=2024-06-03&duration=60", nil)
	req.Header.Set(SessionHeader, "session-42")
	rec := httptest.NewRecorder()
	newTestRouter(svc).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body struct {
		Data SlotsResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "tech-1", body.Data.TechnicianID)
	assert.Equal(t, 30, body.Data.Interval)
	assert.Equal(t, []slots.TimeOfDay{slots.MustParseTimeOfDay("09:00"), slots.MustParseTimeOfDay("10:00")}, body.Data.Slots)
	assert.Contains(t, rec.Body.String(), `"09:00"`)

	assert.Equal(t, service.Request{
		TechnicianID:    "tech-1",
		Date:            "2024-06-03",
		DurationMinutes: 60,
		Session:         "session-42",
	}, svc.lastRequest)
}

func TestSlots_EmptyDayIsAnEmptyList(t *testing.T) {
	svc := &mockAvailabilityService{evaluateFunc: func(_ context.Context, req service.Request, _ time.Time) (*service.Result, error) {
		return &service.Result{TechnicianID: req.TechnicianID, Date: req.Date, Evaluations: []slots.Evaluation{}}, nil
	}}

	rec := httptest.NewRecorder()
	newTestRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/availability/slots?technician_id=tech-1&date=2024-06-03&duration=60", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"slots":[]`)
}

func TestEvaluation(t *testing.T) {
	svc := &mockAvailabilityService{evaluateFunc: func(_ context.Context, req service.Request, _ time.Time) (*service.Result, error) {
		return sampleResult(req), nil
	}}

	rec := httptest.NewRecorder()
	newTestRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/availability/evaluation?technician_id=tech-1&date=2024-06-03&duration=60&interval=30", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Data service.Result `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Data.Evaluations, 3)
	assert.Equal(t, slots.ReasonBooked, body.Data.Evaluations[1].Reason)
	assert.Equal(t, 30, svc.lastRequest.Interval)
}

func TestSlots_Errors(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		err        error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "non-numeric duration",
			query:      "technician_id=tech-1&date=2024-06-03&duration=long",
			wantStatus: http.StatusBadRequest,
			wantCode:   apperrors.CodeInvalidInput,
		},
		{
			name:       "non-numeric interval",
			query:      "technician_id=tech-1&date=2024-06-03&duration=60&interval=x",
			wantStatus: http.StatusBadRequest,
			wantCode:   apperrors.CodeInvalidInput,
		},
		{
			name:       "service rejects input",
			query:      "technician_id=tech-1&date=bad&duration=60",
			err:        apperrors.InvalidInput("date must be formatted as YYYY-MM-DD"),
			wantStatus: http.StatusBadRequest,
			wantCode:   apperrors.CodeInvalidInput,
		},
		{
			name:       "source unavailable",
			query:      "technician_id=tech-1&date=2024-06-03&duration=60",
			err:        apperrors.Unavailable("unable to load availability, retry", context.DeadlineExceeded),
			wantStatus: http.StatusServiceUnavailable,
			wantCode:   apperrors.CodeUnavailable,
		},
		{
			name:       "superseded",
			query:      "technician_id=tech-1&date=2024-06-03&duration=60",
			err:        apperrors.Superseded("a newer availability request replaced this one"),
			wantStatus: http.StatusConflict,
			wantCode:   apperrors.CodeSuperseded,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			svc := &mockAvailabilityService{evaluateFunc: func(_ context.Context, req service.Request, _ time.Time) (*service.Result, error) {
				called = true
				if tt.err != nil {
					return nil, tt.err
				}
				return sampleResult(req), nil
			}}

			rec := httptest.NewRecorder()
			newTestRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/availability/slots?"+tt.query, nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			var body apperrors.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantCode, body.Code)
			assert.Equal(t, tt.err != nil, called)
		})
	}
}
