package source

import (
	"context"
	"errors"
	"fmt"
	"salonbook/pkg/logger"
	"salonbook/pkg/model"
	"time"

	"github.com/sony/gobreaker/v2"
)

type BreakerConfig struct {
	Name             string
	FailureThreshold int
	Interval         time.Duration
	OpenTimeout      time.Duration
	// OnStateChange is optional and receives the new state name.
	OnStateChange func(name, state string)
}

const (
	FetchWorkingHours = "working_hours"
	FetchBookings     = "bookings"
	FetchBlackouts    = "blackouts"
	FetchSettings     = "settings"
)

// BreakerSource fails fast with ErrSourceUnavailable while a fetch of the
// wrapped source keeps failing. Each fetch trips on its own, so one broken
// collection does not short-circuit the others. A caller cancelling its own
// request does not count as a source failure.
type BreakerSource struct {
	next     Source
	breakers map[string]*gobreaker.CircuitBreaker[any]
}

func NewBreakerSource(next Source, cfg BreakerConfig, log *logger.Logger) *BreakerSource {
	s := &BreakerSource{
		next:     next,
		breakers: make(map[string]*gobreaker.CircuitBreaker[any]),
	}
	for _, fetch := range []string{FetchWorkingHours, FetchBookings, FetchBlackouts, FetchSettings} {
		s.breakers[fetch] = gobreaker.NewCircuitBreaker[any](breakerSettings(cfg.Name+"."+fetch, cfg, log))
	}
	return s
}

func breakerSettings(name string, cfg BreakerConfig, log *logger.Logger) gobreaker.Settings {
	return gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    cfg.Interval,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= uint32(cfg.FailureThreshold)
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("Data source circuit breaker state changed",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
			if cfg.OnStateChange != nil {
				cfg.OnStateChange(name, to.String())
			}
		},
	}
}

func (s *BreakerSource) WorkingHours(ctx context.Context, technicianID string, weekday time.Weekday) ([]model.WorkingHours, error) {
	res, err := s.execute(FetchWorkingHours, func() (any, error) {
		return s.next.WorkingHours(ctx, technicianID, weekday)
	})
	if err != nil {
		return nil, err
	}
	return res.([]model.WorkingHours), nil
}

func (s *BreakerSource) BlockingBookings(ctx context.Context, technicianID, date string) ([]model.Booking, error) {
	res, err := s.execute(FetchBookings, func() (any, error) {
		return s.next.BlockingBookings(ctx, technicianID, date)
	})
	if err != nil {
		return nil, err
	}
	return res.([]model.Booking), nil
}

func (s *BreakerSource) BlackoutPeriods(ctx context.Context, technicianID string, from, to time.Time) ([]model.BlackoutPeriod, error) {
	res, err := s.execute(FetchBlackouts, func() (any, error) {
		return s.next.BlackoutPeriods(ctx, technicianID, from, to)
	})
	if err != nil {
		return nil, err
	}
	return res.([]model.BlackoutPeriod), nil
}

func (s *BreakerSource) Settings(ctx context.Context) (*model.BusinessSettings, error) {
	res, err := s.execute(FetchSettings, func() (any, error) {
		return s.next.Settings(ctx)
	})
	if err != nil {
		return nil, err
	}
	return res.(*model.BusinessSettings), nil
}

// Ping bypasses the breaker so readiness reflects the real dependency.
func (s *BreakerSource) Ping(ctx context.Context) error {
	return s.next.Ping(ctx)
}

// State reports the breaker state of one fetch, e.g. FetchBookings.
func (s *BreakerSource) State(fetch string) string {
	cb, ok := s.breakers[fetch]
	if !ok {
		return ""
	}
	return cb.State().String()
}

func (s *BreakerSource) execute(fetch string, fn func() (any, error)) (any, error) {
	res, err := s.breakers[fetch].Execute(fn)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	return res, err
}
