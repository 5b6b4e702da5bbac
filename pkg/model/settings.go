package model

import "time"

const SettingsID = "default"

type BusinessSettings struct {
	ID                  string    `json:"-" bson:"_id"`
	TechnicianID        string    `json:"technician_id" bson:"technician_id" validate:"omitempty,max=64"`
	SlotDuration        int       `json:"slot_duration" bson:"slot_duration" validate:"min=5,max=240"`
	IsAcceptingBookings bool      `json:"is_accepting_bookings" bson:"is_accepting_bookings"`
	AdvanceBookingDays  int       `json:"advance_booking_days" bson:"advance_booking_days" validate:"min=0,max=365"`
	UpdatedAt           time.Time `json:"updated_at" bson:"updated_at"`
}

type BusinessSettingsUpdate struct {
	TechnicianID        *string `json:"technician_id,omitempty" validate:"omitempty,max=64"`
	SlotDuration        *int    `json:"slot_duration,omitempty" validate:"omitempty,min=5,max=240"`
	IsAcceptingBookings *bool   `json:"is_accepting_bookings,omitempty"`
	AdvanceBookingDays  *int    `json:"advance_booking_days,omitempty" validate:"omitempty,min=0,max=365"`
}

// DefaultBusinessSettings is used when no settings document exists yet.
func DefaultBusinessSettings(slotDuration, advanceBookingDays int) BusinessSettings {
	return BusinessSettings{
		ID:                  SettingsID,
		SlotDuration:        slotDuration,
		IsAcceptingBookings: true,
		AdvanceBookingDays:  advanceBookingDays,
	}
}
