package events

import (
	"context"
	"fmt"
	"time"

	"salonbook/internal/availability/cache"
	"salonbook/internal/availability/metrics"
	"salonbook/internal/availability/slots"
	"salonbook/pkg/kafka"
	"salonbook/pkg/logger"
	"salonbook/pkg/model"
)

// maxBlackoutDays bounds per-date invalidation; longer blackouts drop the
// technician's whole cache instead.
const maxBlackoutDays = 62

// Invalidator drops cached slot grids when bookings, blackouts, working hours
// or settings change.
type Invalidator struct {
	cache   cache.SlotCache
	metrics *metrics.AvailabilityMetrics
	loc     *time.Location
	log     *logger.Logger
}

func NewInvalidator(slotCache cache.SlotCache, m *metrics.AvailabilityMetrics, loc *time.Location, log *logger.Logger) *Invalidator {
	return &Invalidator{
		cache:   slotCache,
		metrics: m,
		loc:     loc,
		log:     log,
	}
}

// Handle is a kafka.MessageHandler.
func (inv *Invalidator) Handle(ctx context.Context, msg kafka.Message) error {
	eventType := msg.GetEventType()

	var ev model.AvailabilityEvent
	if err := msg.DecodeValue(&ev); err != nil {
		return err
	}

	var (
		removed int
		err     error
	)
	switch eventType {
	case model.EventBookingCreated, model.EventBookingStatusChanged, model.EventBookingDeleted:
		if ev.TechnicianID == "" {
			return kafka.NewPermanentError("booking event without technician_id", nil)
		}
		if ev.Date == "" {
			removed, err = inv.cache.InvalidateTechnician(ctx, ev.TechnicianID)
		} else {
			removed, err = inv.cache.InvalidateDate(ctx, ev.TechnicianID, ev.Date)
		}
	case model.EventBlackoutChanged:
		if ev.TechnicianID == "" {
			return kafka.NewPermanentError("blackout event without technician_id", nil)
		}
		removed, err = inv.invalidateRange(ctx, ev)
	case model.EventWorkingHoursChanged:
		if ev.TechnicianID == "" {
			return kafka.NewPermanentError("working hours event without technician_id", nil)
		}
		removed, err = inv.cache.InvalidateTechnician(ctx, ev.TechnicianID)
	case model.EventSettingsChanged:
		removed, err = inv.cache.InvalidateAll(ctx)
	default:
		inv.log.Debug("Ignoring event type", "event_type", eventType, "event_id", msg.GetEventID())
		return nil
	}

	if err != nil {
		return kafka.NewTransientError("invalidate slot cache", err)
	}

	inv.metrics.ObserveInvalidation(eventType)
	inv.log.Info("Invalidated cached slots",
		"event_type", eventType,
		"event_id", msg.GetEventID(),
		"technician_id", ev.TechnicianID,
		"date", ev.Date,
		"removed", removed,
	)
	return nil
}

// invalidateRange drops every local date the blackout touches.
func (inv *Invalidator) invalidateRange(ctx context.Context, ev model.AvailabilityEvent) (int, error) {
	if ev.Start == nil || ev.End == nil || !ev.End.After(*ev.Start) {
		return inv.cache.InvalidateTechnician(ctx, ev.TechnicianID)
	}

	dates := blackoutDates(*ev.Start, *ev.End, inv.loc)
	if len(dates) > maxBlackoutDays {
		return inv.cache.InvalidateTechnician(ctx, ev.TechnicianID)
	}

	total := 0
	for _, d := range dates {
		n, err := inv.cache.InvalidateDate(ctx, ev.TechnicianID, d)
		if err != nil {
			return total, fmt.Errorf("date %s: %w", d, err)
		}
		total += n
	}
	return total, nil
}

// blackoutDates lists the local calendar dates overlapped by [start, end).
func blackoutDates(start, end time.Time, loc *time.Location) []string {
	var dates []string
	for day := slots.StartOfDay(start.In(loc)); day.Before(end); day = day.AddDate(0, 0, 1) {
		dates = append(dates, day.Format("2006-01-02"))
		if len(dates) > maxBlackoutDays {
			break
		}
	}
	return dates
}
