package mongo

const (
	BookingsCollection         = "Bookings"
	SlotLocksCollection        = "Slot_locks"
	WorkingHoursCollection     = "Working_hours"
	BlackoutPeriodsCollection  = "Blackout_periods"
	BusinessSettingsCollection = "Business_settings"
)
