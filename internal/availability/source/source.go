package source

import (
	"context"
	"errors"
	"salonbook/pkg/model"
	"time"
)

var ErrSourceUnavailable = errors.New("availability data source unavailable")

// Source is the read side the slot computation depends on. Every method is a
// single bounded read; retries are not performed here.
type Source interface {
	// WorkingHours returns the active rows for the technician and weekday.
	WorkingHours(ctx context.Context, technicianID string, weekday time.Weekday) ([]model.WorkingHours, error)
	// BlockingBookings returns bookings on date (YYYY-MM-DD) whose status
	// reserves time.
	BlockingBookings(ctx context.Context, technicianID, date string) ([]model.Booking, error)
	// BlackoutPeriods returns periods with start < to and end > from.
	BlackoutPeriods(ctx context.Context, technicianID string, from, to time.Time) ([]model.BlackoutPeriod, error)
	// Settings returns nil when no settings have been saved yet.
	Settings(ctx context.Context) (*model.BusinessSettings, error)
	Ping(ctx context.Context) error
}

func blockingStatusStrings() []string {
	out := make([]string, len(model.BlockingStatuses))
	for i, s := range model.BlockingStatuses {
		out[i] = string(s)
	}
	return out
}
