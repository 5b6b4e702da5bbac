package kafka_middleware

import (
	"context"
	"time"

	"salonbook/pkg/kafka"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts published and consumed messages per topic and event type.
type Metrics struct {
	published *prometheus.CounterVec
	consumed  *prometheus.CounterVec
	duration  *prometheus.HistogramVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		published: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "salonbook",
			Subsystem: "kafka",
			Name:      "messages_published_total",
			Help:      "Messages published by topic, event type and result",
		}, []string{"topic", "event_type", "result"}),
		consumed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "salonbook",
			Subsystem: "kafka",
			Name:      "messages_consumed_total",
			Help:      "Messages handled by topic, event type and result",
		}, []string{"topic", "event_type", "result"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "salonbook",
			Subsystem: "kafka",
			Name:      "operation_seconds",
			Help:      "Time spent publishing or handling a message",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
	}
	reg.MustRegister(m.published, m.consumed, m.duration)
	return m
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (m *Metrics) ProducerMiddleware() kafka.ProducerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next kafka.MessageHandler) error {
		start := time.Now()
		err := next(ctx, msg)
		m.duration.WithLabelValues("publish").Observe(time.Since(start).Seconds())
		m.published.WithLabelValues(msg.Topic, msg.GetEventType(), result(err)).Inc()
		return err
	}
}

func (m *Metrics) ConsumerMiddleware() kafka.ConsumerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next kafka.MessageHandler) error {
		start := time.Now()
		err := next(ctx, msg)
		m.duration.WithLabelValues("consume").Observe(time.Since(start).Seconds())
		m.consumed.WithLabelValues(msg.Topic, msg.GetEventType(), result(err)).Inc()
		return err
	}
}
