package errors

import "errors"

var (
	ErrWorkingHoursNotFound = errors.New("working hours not found")

	ErrBlackoutNotFound = errors.New("blackout period not found")

	ErrInvalidID = errors.New("invalid ID format")

	ErrDuplicateActiveHours = errors.New("technician already has active working hours for this weekday")
)
