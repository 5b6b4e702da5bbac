package model

import "time"

const (
	EventBookingCreated       = "booking.created"
	EventBookingStatusChanged = "booking.status_changed"
	EventBookingDeleted       = "booking.deleted"
	EventBlackoutChanged      = "blackout.changed"
	EventWorkingHoursChanged  = "working_hours.changed"
	EventSettingsChanged      = "settings.changed"
)

// AvailabilityEvent is published whenever data feeding the slot computation
// changes. Date is set for booking events; Start and End for blackouts.
type AvailabilityEvent struct {
	TechnicianID string        `json:"technician_id"`
	Date         string        `json:"date,omitempty"`
	BookingID    string        `json:"booking_id,omitempty"`
	Status       BookingStatus `json:"status,omitempty"`
	Start        *time.Time    `json:"start,omitempty"`
	End          *time.Time    `json:"end,omitempty"`
}
