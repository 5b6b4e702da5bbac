package service

import (
	"context"
	"errors"
	"fmt"
	"salonbook/internal/availability/slots"
	"salonbook/pkg/model"
	"sync"
	"time"
)

var (
	ErrAmbiguousWorkingHours = errors.New("more than one active working-hours row for weekday")
	ErrInvalidWorkingHours   = errors.New("working-hours row has an invalid window")
	ErrInvalidBooking        = errors.New("booking has neither a usable end time nor a duration")
)

// dayInputs is everything fetched from the source for one technician and day.
type dayInputs struct {
	hours     slots.Window
	closed    bool
	bookings  []slots.Interval
	blackouts []slots.Interval
}

// fetchError names which read failed so it can be counted.
type fetchError struct {
	input string
	err   error
}

func (e *fetchError) Error() string { return fmt.Sprintf("fetch %s: %v", e.input, e.err) }
func (e *fetchError) Unwrap() error { return e.err }

// resolveWorkingHours picks the single active row for day's weekday. No row
// means closed; several rows are refused rather than guessed between.
func resolveWorkingHours(rows []model.WorkingHours) (slots.Window, bool, error) {
	var active []model.WorkingHours
	for _, r := range rows {
		if r.IsActive {
			active = append(active, r)
		}
	}

	switch len(active) {
	case 0:
		return slots.Window{}, true, nil
	case 1:
	default:
		return slots.Window{}, false, fmt.Errorf("%w: %d rows", ErrAmbiguousWorkingHours, len(active))
	}

	open, err := slots.ParseTimeOfDay(active[0].StartTime)
	if err != nil {
		return slots.Window{}, false, fmt.Errorf("%w: %v", ErrInvalidWorkingHours, err)
	}
	closing, err := slots.ParseClosingTime(active[0].EndTime)
	if err != nil {
		return slots.Window{}, false, fmt.Errorf("%w: %v", ErrInvalidWorkingHours, err)
	}
	w := slots.Window{Open: open, Close: closing}
	if !w.Valid() {
		return slots.Window{}, false, fmt.Errorf("%w: %s-%s", ErrInvalidWorkingHours, open, closing)
	}
	return w, false, nil
}

// bookingInterval anchors a booking on day. The end time wins when it is
// after the start; otherwise the duration is used.
func bookingInterval(day time.Time, b model.Booking) (slots.Interval, error) {
	start, err := slots.ParseTimeOfDay(b.StartTime)
	if err != nil {
		return slots.Interval{}, fmt.Errorf("booking %s: %w", b.ID, err)
	}
	if b.EndTime != "" {
		end, err := slots.ParseTimeOfDay(b.EndTime)
		if err == nil && end > start {
			return slots.IntervalOn(day, start, int(end-start)), nil
		}
	}
	if b.DurationMinutes > 0 {
		return slots.IntervalOn(day, start, b.DurationMinutes), nil
	}
	return slots.Interval{}, fmt.Errorf("%w: %s", ErrInvalidBooking, b.ID)
}

// collect runs the three reads concurrently under one timeout and returns
// only when all of them have finished. Any failure fails the whole day.
func (s *availabilityService) collect(ctx context.Context, technicianID string, day time.Time) (*dayInputs, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.ReadTimeout)
	defer cancel()

	var (
		wg           sync.WaitGroup
		hoursRows    []model.WorkingHours
		bookingRows  []model.Booking
		blackoutRows []model.BlackoutPeriod
		hoursErr     error
		bookingsErr  error
		blackoutsErr error
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		hoursRows, hoursErr = s.source.WorkingHours(ctx, technicianID, day.Weekday())
	}()
	go func() {
		defer wg.Done()
		bookingRows, bookingsErr = s.source.BlockingBookings(ctx, technicianID, day.Format(dateLayout))
	}()
	go func() {
		defer wg.Done()
		blackoutRows, blackoutsErr = s.source.BlackoutPeriods(ctx, technicianID, slots.StartOfDay(day), slots.EndOfDay(day))
	}()
	wg.Wait()

	if hoursErr != nil {
		return nil, &fetchError{input: "working_hours", err: hoursErr}
	}
	if bookingsErr != nil {
		return nil, &fetchError{input: "bookings", err: bookingsErr}
	}
	if blackoutsErr != nil {
		return nil, &fetchError{input: "blackouts", err: blackoutsErr}
	}

	in := &dayInputs{}
	var err error
	in.hours, in.closed, err = resolveWorkingHours(hoursRows)
	if err != nil {
		return nil, err
	}

	for _, b := range bookingRows {
		if !b.Status.IsBlocking() {
			continue
		}
		iv, err := bookingInterval(day, b)
		if err != nil {
			return nil, err
		}
		in.bookings = append(in.bookings, iv)
	}
	for _, p := range blackoutRows {
		in.blackouts = append(in.blackouts, slots.Interval{Start: p.Start, End: p.End})
	}
	return in, nil
}
