package errors

import "errors"

var (
	ErrNotFound = errors.New("booking not found")

	ErrInvalidID = errors.New("invalid booking ID format")

	ErrSlotTaken = errors.New("requested start time is no longer available")

	ErrInvalidTransition = errors.New("booking status transition not allowed")

	ErrPastMidnight = errors.New("appointment would end after midnight")
)
