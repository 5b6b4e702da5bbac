// Package events publishes availability change notifications for the slot
// cache.
package events

import (
	"context"
	"salonbook/pkg/kafka"
	"salonbook/pkg/logger"
	"salonbook/pkg/middleware"
	"salonbook/pkg/model"
)

type AvailabilityPublisher interface {
	Publish(ctx context.Context, eventType string, evt model.AvailabilityEvent)
}

type kafkaAvailabilityPublisher struct {
	publisher kafka.Publisher
	source    string
	log       *logger.Logger
}

// NewAvailabilityPublisher emits events keyed by technician so every change
// for one technician lands on the same partition in order. Events with no
// technician are keyed by their type.
func NewAvailabilityPublisher(publisher kafka.Publisher, source string, log *logger.Logger) AvailabilityPublisher {
	return &kafkaAvailabilityPublisher{
		publisher: publisher,
		source:    source,
		log:       log,
	}
}

// Publish never fails the caller: the write it reports has already been
// committed, and a missed event only leaves a cache entry until its TTL.
func (p *kafkaAvailabilityPublisher) Publish(ctx context.Context, eventType string, evt model.AvailabilityEvent) {
	key := evt.TechnicianID
	if key == "" {
		key = eventType
	}

	msg, err := kafka.NewMessage().
		WithKey(key).
		WithValue(evt).
		WithEventType(eventType).
		WithSource(p.source).
		WithCorrelationID(middleware.RequestIDFrom(ctx)).
		Build()
	if err != nil {
		p.log.Error("Failed to build availability event", "event_type", eventType, "error", err)
		return
	}

	if err := p.publisher.Publish(context.WithoutCancel(ctx), msg); err != nil {
		p.log.Error("Failed to publish availability event",
			"event_type", eventType,
			"technician_id", evt.TechnicianID,
			"error", err,
		)
		return
	}

	p.log.Debug("Availability event published", "event_type", eventType, "technician_id", evt.TechnicianID)
}

// Discard drops every event.
type Discard struct{}

func (Discard) Publish(context.Context, string, model.AvailabilityEvent) {}
