package kafka

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"salonbook/pkg/logger"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	mu      sync.Mutex
	err     error
	written []kafka.Message
	closed  bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.written = append(w.written, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func header(m kafka.Message, key string) string {
	for _, h := range m.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func discardLogger() *logger.Logger {
	return logger.New(logger.Config{Output: io.Discard})
}

func TestMessageBuilder(t *testing.T) {
	msg, err := NewMessage().
		WithKey("tech-1").
		WithEventType("booking.created").
		WithCorrelationID("req-1").
		WithValue(map[string]string{"date": "2024-06-03"}).
		Build()
	require.NoError(t, err)

	assert.Equal(t, "tech-1", msg.Key)
	assert.JSONEq(t, `{"date":"2024-06-03"}`, string(msg.Value))
	assert.NotEmpty(t, msg.GetEventID())
	assert.Equal(t, "booking.created", msg.GetEventType())
	assert.Equal(t, "req-1", msg.GetCorrelationID())
	assert.Equal(t, SchemaVersion, msg.Headers[HeaderSchemaVersion])
	assert.NotEmpty(t, msg.Headers[HeaderTimestamp])
}

func TestMessageBuilder_UnencodableValue(t *testing.T) {
	_, err := NewMessage().WithKey("k").WithValue(make(chan int)).Build()
	assert.ErrorIs(t, err, ErrInvalidMessage)
}

func TestRetryCount(t *testing.T) {
	msg := Message{Headers: map[string]string{}}
	for i := 0; i < 12; i++ {
		msg.IncrementRetryCount()
	}
	assert.Equal(t, 12, msg.GetRetryCount())

	msg.Headers[HeaderRetryCount] = "garbage"
	assert.Equal(t, 0, msg.GetRetryCount())
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorType
	}{
		{"nil", nil, ErrorTypeUnknown},
		{"tagged transient", NewTransientError("redis", errors.New("x")), ErrorTypeTransient},
		{"wrapped tagged permanent", errors.Join(errors.New("ctx"), NewPermanentError("bad", nil)), ErrorTypePermanent},
		{"deadline", context.DeadlineExceeded, ErrorTypeTransient},
		{"connection refused", errors.New("dial tcp: Connection Refused"), ErrorTypeTransient},
		{"unknown", errors.New("weird"), ErrorTypePermanent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyError(tt.err))
		})
	}

	assert.False(t, ShouldRetry(NewTransientError("x", nil), 3, 3))
	assert.True(t, ShouldRetry(NewTransientError("x", nil), 2, 3))
}

func TestProducer_Publish(t *testing.T) {
	w := &fakeWriter{}
	p := &Producer{writer: w, topic: "events", log: discardLogger()}

	var seenTopic string
	p.Use(func(ctx context.Context, msg Message, next MessageHandler) error {
		seenTopic = msg.Topic
		return next(ctx, msg)
	})

	msg, err := NewMessage().WithKey("tech-1").WithValue(map[string]int{"n": 1}).Build()
	require.NoError(t, err)
	require.NoError(t, p.Publish(context.Background(), msg))

	require.Len(t, w.written, 1)
	assert.Equal(t, "tech-1", string(w.written[0].Key))
	assert.Equal(t, msg.GetEventID(), header(w.written[0], HeaderEventID))
	assert.Equal(t, "events", seenTopic)
}

func TestProducer_RejectsInvalidAndClosed(t *testing.T) {
	p := &Producer{writer: &fakeWriter{}, topic: "events", log: discardLogger()}

	assert.ErrorIs(t, p.Publish(context.Background(), Message{Value: []byte("{}")}), ErrEmptyKey)
	assert.ErrorIs(t, p.Publish(context.Background(), Message{Key: "k"}), ErrEmptyValue)

	require.NoError(t, p.Close())
	assert.ErrorIs(t, p.Publish(context.Background(), Message{Key: "k", Value: []byte("{}")}), ErrProducerClosed)
}

func TestProducer_FailedWriteGoesToDLQ(t *testing.T) {
	writeErr := errors.New("leader not available")
	dlq := &fakeWriter{}
	p := &Producer{writer: &fakeWriter{err: writeErr}, dlqWriter: dlq, topic: "events", dlqTopic: "events.dlq", log: discardLogger()}

	msg, err := NewMessage().WithKey("tech-1").WithValue("x").Build()
	require.NoError(t, err)

	err = p.Publish(context.Background(), msg)
	assert.ErrorIs(t, err, writeErr)
	require.Len(t, dlq.written, 1)
	assert.Equal(t, "events", header(dlq.written[0], HeaderOriginalTopic))
	assert.Equal(t, writeErr.Error(), header(dlq.written[0], HeaderDLQError))
	assert.Empty(t, msg.Headers[HeaderOriginalTopic], "caller's headers must not be mutated")
}

func newTestConsumer(handler MessageHandler, dlq messageWriter) *Consumer {
	return &Consumer{
		dlqWriter:  dlq,
		topic:      "events",
		groupID:    "group",
		maxRetries: 3,
		handler:    handler,
		log:        discardLogger(),
	}
}

func TestConsumer_RetriesTransientFailures(t *testing.T) {
	calls := 0
	c := newTestConsumer(func(context.Context, Message) error {
		calls++
		if calls < 3 {
			return NewTransientError("redis down", nil)
		}
		return nil
	}, nil)

	err := c.processMessage(context.Background(), Message{Headers: map[string]string{}})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestConsumer_PermanentFailureGoesToDLQ(t *testing.T) {
	dlq := &fakeWriter{}
	calls := 0
	c := newTestConsumer(func(context.Context, Message) error {
		calls++
		return NewPermanentError("bad payload", nil)
	}, dlq)

	err := c.processMessage(context.Background(), Message{Key: "tech-1", Headers: map[string]string{HeaderEventID: "evt-1"}})
	require.NoError(t, err, "a parked message is safe to commit")
	assert.Equal(t, 1, calls)
	require.Len(t, dlq.written, 1)
	assert.Equal(t, "group", header(dlq.written[0], HeaderDLQGroup))
}

func TestConsumer_ExhaustedRetriesGoToDLQ(t *testing.T) {
	dlq := &fakeWriter{}
	calls := 0
	c := newTestConsumer(func(context.Context, Message) error {
		calls++
		return NewTransientError("still down", nil)
	}, dlq)

	require.NoError(t, c.processMessage(context.Background(), Message{Headers: map[string]string{}}))
	assert.Equal(t, 4, calls)
	require.Len(t, dlq.written, 1)
	assert.Equal(t, "3", header(dlq.written[0], HeaderRetryCount))
}

func TestConsumer_DLQFailureKeepsOffset(t *testing.T) {
	c := newTestConsumer(func(context.Context, Message) error {
		return NewPermanentError("bad payload", nil)
	}, &fakeWriter{err: errors.New("dlq down")})

	assert.Error(t, c.processMessage(context.Background(), Message{Headers: map[string]string{}}))
}

func TestConsumer_MiddlewareOrder(t *testing.T) {
	var order []string
	c := newTestConsumer(func(context.Context, Message) error {
		order = append(order, "handler")
		return nil
	}, nil)
	c.Use(func(ctx context.Context, m Message, next MessageHandler) error {
		order = append(order, "outer")
		return next(ctx, m)
	})
	c.Use(func(ctx context.Context, m Message, next MessageHandler) error {
		order = append(order, "inner")
		return next(ctx, m)
	})

	require.NoError(t, c.processMessage(context.Background(), Message{Headers: map[string]string{}}))
	assert.Equal(t, []string{"outer", "inner", "handler"}, order)
}
