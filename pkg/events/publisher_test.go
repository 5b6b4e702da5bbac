package events

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"salonbook/pkg/kafka"
	"salonbook/pkg/logger"
	"salonbook/pkg/middleware"
	"salonbook/pkg/model"
)

type recordingPublisher struct {
	msgs []kafka.Message
	err  error
}

func (p *recordingPublisher) Publish(_ context.Context, msg kafka.Message) error {
	p.msgs = append(p.msgs, msg)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Output: io.Discard})
}

func TestAvailabilityPublisher_Publish(t *testing.T) {
	rec := &recordingPublisher{}
	p := NewAvailabilityPublisher(rec, "bookings", testLogger())

	var ctx context.Context
	h := middleware.RequestLogging(testLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx = r.Context()
	}))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", nil)
	req.Header.Set(middleware.RequestIDHeader, "6f1f7d5e-8a4b-4c7e-9d3a-2b1c0e9f8a7d")
	h.ServeHTTP(httptest.NewRecorder(), req)

	p.Publish(ctx, model.EventBookingCreated, model.AvailabilityEvent{
		TechnicianID: "tech-1",
		Date:         "2024-06-03",
		BookingID:    "b1",
		Status:       model.StatusPending,
	})

	if len(rec.msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(rec.msgs))
	}
	msg := rec.msgs[0]
	if msg.Key != "tech-1" {
		t.Errorf("key = %q, want tech-1", msg.Key)
	}
	if msg.GetEventType() != model.EventBookingCreated {
		t.Errorf("event type = %q", msg.GetEventType())
	}
	if msg.Headers[kafka.HeaderSource] != "bookings" {
		t.Errorf("source = %q", msg.Headers[kafka.HeaderSource])
	}
	if msg.GetCorrelationID() != "6f1f7d5e-8a4b-4c7e-9d3a-2b1c0e9f8a7d" {
		t.Errorf("correlation id = %q", msg.GetCorrelationID())
	}

	var evt model.AvailabilityEvent
	if err := msg.DecodeValue(&evt); err != nil {
		t.Fatalf("DecodeValue: %v", err)
	}
	if evt.Date != "2024-06-03" || evt.BookingID != "b1" {
		t.Errorf("unexpected payload %+v", evt)
	}
}

func TestAvailabilityPublisher_FailureIsSwallowed(t *testing.T) {
	rec := &recordingPublisher{err: errors.New("broker down")}
	p := NewAvailabilityPublisher(rec, "schedules", testLogger())

	p.Publish(context.Background(), model.EventWorkingHoursChanged, model.AvailabilityEvent{TechnicianID: "tech-1"})

	if len(rec.msgs) != 1 {
		t.Fatalf("expected publish attempt, got %d", len(rec.msgs))
	}
	if _, ok := rec.msgs[0].Headers[kafka.HeaderCorrelationID]; ok {
		t.Error("no correlation id expected without a request id")
	}
}

func TestAvailabilityPublisher_KeyFallsBackToEventType(t *testing.T) {
	rec := &recordingPublisher{}
	p := NewAvailabilityPublisher(rec, "schedules", testLogger())

	p.Publish(context.Background(), model.EventSettingsChanged, model.AvailabilityEvent{})

	if len(rec.msgs) != 1 || rec.msgs[0].Key != model.EventSettingsChanged {
		t.Fatalf("expected key %q, got %+v", model.EventSettingsChanged, rec.msgs)
	}
}
