package service

import (
	"context"
	"errors"
	"salonbook/internal/availability/cache"
	"salonbook/internal/availability/metrics"
	"salonbook/internal/availability/slots"
	"salonbook/internal/availability/source"
	"salonbook/pkg/config"
	apperrors "salonbook/pkg/errors"
	"salonbook/pkg/model"
	"time"

	"golang.org/x/sync/singleflight"
)

const (
	dateLayout        = "2006-01-02"
	unavailableReason = "unable to load availability, retry"
)

type Request struct {
	TechnicianID    string
	Date            string
	DurationMinutes int
	// Interval overrides the settings grid when positive.
	Interval int
	// Session opts into the superseded-request guard.
	Session string
}

type Result struct {
	TechnicianID    string             `json:"technician_id"`
	Date            string             `json:"date"`
	DurationMinutes int                `json:"duration_minutes"`
	Interval        int                `json:"interval_minutes"`
	Evaluations     []slots.Evaluation `json:"evaluations"`
}

func (r *Result) Slots() []slots.TimeOfDay {
	return slots.AvailableTimes(r.Evaluations)
}

type AvailabilityService interface {
	// ComputeAvailableSlots returns the bookable start times for a service of
	// durationMinutes on date. Besides the same-day past cutoff, the result
	// is empty when date is before today, further out than the settings'
	// advance_booking_days (30 when no settings are stored), or while the
	// salon is not accepting bookings. None of these cases is an error.
	ComputeAvailableSlots(ctx context.Context, technicianID, date string, durationMinutes int, now time.Time) ([]slots.TimeOfDay, error)
	Evaluate(ctx context.Context, req Request, now time.Time) (*Result, error)
}

type availabilityService struct {
	source  source.Source
	cache   cache.SlotCache
	metrics *metrics.AvailabilityMetrics
	guard   *Guard
	flights singleflight.Group
	cfg     *config.Config
}

func NewAvailabilityService(src source.Source, slotCache cache.SlotCache, m *metrics.AvailabilityMetrics, cfg *config.Config) AvailabilityService {
	if slotCache == nil {
		slotCache = cache.Noop{}
	}
	return &availabilityService{
		source:  src,
		cache:   slotCache,
		metrics: m,
		guard:   NewGuard(),
		cfg:     cfg,
	}
}

func (s *availabilityService) ComputeAvailableSlots(ctx context.Context, technicianID, date string, durationMinutes int, now time.Time) ([]slots.TimeOfDay, error) {
	res, err := s.Evaluate(ctx, Request{TechnicianID: technicianID, Date: date, DurationMinutes: durationMinutes}, now)
	if err != nil {
		return nil, err
	}
	return res.Slots(), nil
}

func (s *availabilityService) Evaluate(ctx context.Context, req Request, now time.Time) (*Result, error) {
	start := time.Now()

	day, err := s.validate(req)
	if err != nil {
		s.metrics.ObserveComputation(outcomeOf(err), false, time.Since(start).Seconds())
		s.cfg.Log.Warn("Rejected availability request",
			"technician_id", req.TechnicianID,
			"date", req.Date,
			"duration", req.DurationMinutes,
			"error", err,
		)
		return nil, err
	}

	var ticket *Ticket
	if req.Session != "" {
		t := s.guard.Begin(req.Session, guardKey(req))
		ticket = &t
		defer s.guard.Finish(t)
	}

	res, cached, err := s.evaluate(ctx, req, day, now)
	if err != nil {
		s.metrics.ObserveComputation(outcomeOf(err), false, time.Since(start).Seconds())
		return nil, err
	}

	if ticket != nil && !s.guard.IsCurrent(*ticket) {
		s.metrics.ObserveSuperseded()
		s.cfg.Log.Info("Discarding superseded availability result",
			"session", req.Session,
			"technician_id", res.TechnicianID,
			"date", res.Date,
		)
		return nil, apperrors.Superseded("a newer availability request replaced this one")
	}

	s.metrics.ObserveComputation("ok", cached, time.Since(start).Seconds())
	return res, nil
}

func (s *availabilityService) validate(req Request) (time.Time, error) {
	if req.DurationMinutes <= 0 {
		return time.Time{}, apperrors.InvalidInput("duration must be a positive number of minutes")
	}
	if req.DurationMinutes > s.cfg.MaxServiceDurationMin {
		return time.Time{}, apperrors.InvalidInput("duration exceeds the longest bookable service")
	}
	if req.Interval < 0 || req.Interval > 24*60 {
		return time.Time{}, apperrors.InvalidInput("interval must be between 1 and 1440 minutes")
	}
	day, err := time.ParseInLocation(dateLayout, req.Date, s.cfg.Location)
	if err != nil {
		return time.Time{}, apperrors.InvalidInput("date must be formatted as YYYY-MM-DD")
	}
	return day, nil
}

func (s *availabilityService) evaluate(ctx context.Context, req Request, day, now time.Time) (*Result, bool, error) {
	settings, err := s.settings(ctx)
	if err != nil {
		s.metrics.ObserveSourceError("settings")
		s.cfg.Log.Error("Failed to load business settings", "error", err)
		return nil, false, apperrors.Unavailable(unavailableReason, err)
	}

	res := &Result{
		TechnicianID:    req.TechnicianID,
		Date:            req.Date,
		DurationMinutes: req.DurationMinutes,
		Interval:        req.Interval,
		Evaluations:     []slots.Evaluation{},
	}
	if res.TechnicianID == "" {
		res.TechnicianID = settings.TechnicianID
	}
	if res.Interval == 0 {
		res.Interval = settings.SlotDuration
	}
	if res.Interval <= 0 {
		res.Interval = s.cfg.SlotIntervalMin
	}

	if res.TechnicianID == "" {
		s.cfg.Log.Info("No technician configured, returning empty availability", "date", req.Date)
		return res, false, nil
	}
	if !settings.IsAcceptingBookings || !withinBookingWindow(day, now, settings.AdvanceBookingDays) {
		return res, false, nil
	}

	key := cache.Key{
		TechnicianID:    res.TechnicianID,
		Date:            req.Date,
		DurationMinutes: req.DurationMinutes,
		Interval:        res.Interval,
	}

	v, err, _ := s.flights.Do(key.String(), func() (any, error) {
		return s.conflictGrid(context.WithoutCancel(ctx), key, day)
	})
	if err != nil {
		return nil, false, s.mapComputeError(err, key)
	}

	grid := v.(*gridResult)
	res.Evaluations = slots.ApplyPastCutoff(day, grid.evals, now)
	return res, grid.cached, nil
}

type gridResult struct {
	evals  []slots.Evaluation
	cached bool
}

// conflictGrid returns the clock-independent evaluation for key, from cache
// when possible.
func (s *availabilityService) conflictGrid(ctx context.Context, key cache.Key, day time.Time) (*gridResult, error) {
	evals, ok, err := s.cache.Get(ctx, key)
	switch {
	case err != nil:
		s.metrics.ObserveCacheLookup("error")
		s.cfg.Log.Warn("Slot cache read failed, computing uncached", "key", key.String(), "error", err)
	case ok:
		s.metrics.ObserveCacheLookup("hit")
		return &gridResult{evals: evals, cached: true}, nil
	default:
		s.metrics.ObserveCacheLookup("miss")
	}

	// Read before the inputs so an invalidation that lands mid-computation
	// makes the write below a no-op.
	gen, genErr := s.cache.Generation(ctx, key)
	if genErr != nil {
		s.cfg.Log.Warn("Slot cache generation read failed, result will not be cached", "key", key.String(), "error", genErr)
	}

	in, err := s.collect(ctx, key.TechnicianID, day)
	if err != nil {
		return nil, err
	}

	evals = []slots.Evaluation{}
	if !in.closed {
		evals = slots.EvaluateConflicts(slots.Input{
			Day:             day,
			Hours:           in.hours,
			Interval:        key.Interval,
			DurationMinutes: key.DurationMinutes,
			Bookings:        in.bookings,
			Blackouts:       in.blackouts,
		})
	}

	if genErr != nil {
		return &gridResult{evals: evals}, nil
	}
	switch err := s.cache.Set(ctx, key, gen, evals); {
	case errors.Is(err, cache.ErrGenerationChanged):
		s.cfg.Log.Debug("Skipped caching grid invalidated during computation", "key", key.String())
	case err != nil:
		s.cfg.Log.Warn("Slot cache write failed", "key", key.String(), "error", err)
	}
	return &gridResult{evals: evals}, nil
}

func (s *availabilityService) settings(ctx context.Context) (model.BusinessSettings, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.ReadTimeout)
	defer cancel()

	stored, err := s.source.Settings(ctx)
	if err != nil {
		return model.BusinessSettings{}, err
	}
	if stored == nil {
		return model.DefaultBusinessSettings(s.cfg.SlotIntervalMin, s.cfg.AdvanceBookingDays), nil
	}
	return *stored, nil
}

func (s *availabilityService) mapComputeError(err error, key cache.Key) error {
	var fe *fetchError
	switch {
	case errors.As(err, &fe):
		s.metrics.ObserveSourceError(fe.input)
		s.cfg.Log.Error("Failed to load availability inputs",
			"key", key.String(),
			"input", fe.input,
			"error", fe.err,
		)
		return apperrors.Unavailable(unavailableReason, err)
	case errors.Is(err, ErrAmbiguousWorkingHours), errors.Is(err, ErrInvalidWorkingHours):
		s.cfg.Log.Error("Working hours are misconfigured", "key", key.String(), "error", err)
		return apperrors.Internal("working hours are misconfigured for this day", err)
	case errors.Is(err, ErrInvalidBooking):
		s.cfg.Log.Error("Stored booking cannot be placed on the calendar", "key", key.String(), "error", err)
		return apperrors.Internal("a stored booking is malformed", err)
	default:
		s.cfg.Log.Error("Availability computation failed", "key", key.String(), "error", err)
		return apperrors.Unavailable(unavailableReason, err)
	}
}

// withinBookingWindow rejects days before today and days further out than
// advanceDays, both in day's location.
func withinBookingWindow(day, now time.Time, advanceDays int) bool {
	today := slots.StartOfDay(now.In(day.Location()))
	if day.Before(today) {
		return false
	}
	return !day.After(today.AddDate(0, 0, advanceDays))
}

func guardKey(req Request) string {
	return cache.Key{
		TechnicianID:    req.TechnicianID,
		Date:            req.Date,
		DurationMinutes: req.DurationMinutes,
		Interval:        req.Interval,
	}.String()
}

func outcomeOf(err error) string {
	switch apperrors.AsAppError(err).Code {
	case apperrors.CodeUnavailable:
		return "source_error"
	case apperrors.CodeInvalidInput:
		return "invalid_input"
	default:
		return "error"
	}
}
