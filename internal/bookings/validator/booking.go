package validator

import (
	"fmt"
	"salonbook/pkg/logger"
	"salonbook/pkg/model"
	"salonbook/pkg/validation"

	"github.com/go-playground/validator/v10"
)

type BookingValidator struct {
	validate           *validator.Validate
	maxDurationMinutes int
	logger             *logger.Logger
}

func NewBookingValidator(log *logger.Logger, maxDurationMinutes int) *BookingValidator {
	v, err := validation.New()
	if err != nil {
		log.Fatal("Failed to build booking validator", "error", err)
	}

	return &BookingValidator{
		validate:           v,
		maxDurationMinutes: maxDurationMinutes,
		logger:             log,
	}
}

// Validate checks a booking after defaults and end time have been applied.
func (v *BookingValidator) Validate(booking *model.Booking) error {
	if err := validation.Struct(v.validate, booking); err != nil {
		return err
	}

	if total := booking.TotalDuration(); v.maxDurationMinutes > 0 && total > v.maxDurationMinutes {
		return validation.Field("DurationMinutes",
			fmt.Sprintf("total duration (%d) exceeds the maximum of %d minutes", total, v.maxDurationMinutes))
	}

	if booking.EndTime != "" && booking.EndTime <= booking.StartTime {
		return validation.Field("EndTime", "end_time must be after start_time")
	}

	return nil
}

func (v *BookingValidator) ValidateStatusUpdate(update *model.BookingStatusUpdate) error {
	return validation.Struct(v.validate, update)
}
