// Package validation builds the validator used by every service, with the
// salon-specific tags registered.
package validation

import (
	"errors"
	"fmt"
	"regexp"
	"salonbook/pkg/model"
	"strings"

	"github.com/go-playground/validator/v10"
)

// timeOfDayRegex matches HH:MM, optionally with a zero seconds part.
var timeOfDayRegex = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d(:00)?$`)

// closingTimeRegex also admits 24:00 for the exclusive end of a day.
var closingTimeRegex = regexp.MustCompile(`^(([01]\d|2[0-3]):[0-5]\d|24:00)(:00)?$`)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

type Errors []FieldError

func (e Errors) Error() string {
	if len(e) == 0 {
		return ""
	}
	messages := make([]string, 0, len(e))
	for _, err := range e {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(e), strings.Join(messages, "; "))
}

// Details renders the errors for an AppError details map.
func (e Errors) Details() map[string]any {
	fields := make(map[string]any, len(e))
	for _, err := range e {
		fields[err.Field] = err.Message
	}
	return map[string]any{"fields": fields}
}

func Field(field, message string) Errors {
	return Errors{{Field: field, Message: message}}
}

// New returns a validator with valid_time, valid_closing_time and
// booking_status registered.
func New() (*validator.Validate, error) {
	v := validator.New()
	if err := v.RegisterValidation("valid_time", validateTimeOfDay); err != nil {
		return nil, fmt.Errorf("register valid_time: %w", err)
	}
	if err := v.RegisterValidation("valid_closing_time", validateClosingTime); err != nil {
		return nil, fmt.Errorf("register valid_closing_time: %w", err)
	}
	if err := v.RegisterValidation("booking_status", validateBookingStatus); err != nil {
		return nil, fmt.Errorf("register booking_status: %w", err)
	}
	return v, nil
}

func IsTimeOfDay(s string) bool {
	return timeOfDayRegex.MatchString(s)
}

func validateTimeOfDay(fl validator.FieldLevel) bool {
	return IsTimeOfDay(fl.Field().String())
}

func IsClosingTime(s string) bool {
	return closingTimeRegex.MatchString(s)
}

func validateClosingTime(fl validator.FieldLevel) bool {
	return IsClosingTime(fl.Field().String())
}

func validateBookingStatus(fl validator.FieldLevel) bool {
	switch model.BookingStatus(fl.Field().String()) {
	case model.StatusPending, model.StatusConfirmed, model.StatusInProgress,
		model.StatusCompleted, model.StatusCancelled, model.StatusNoShow:
		return true
	}
	return false
}

// Struct validates s and translates validator errors into Errors.
func Struct(v *validator.Validate, s any) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		return Translate(validationErrs)
	}
	return err
}

func Translate(errs validator.ValidationErrors) Errors {
	out := make(Errors, 0, len(errs))
	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
		case "mongodb":
			message = fmt.Sprintf("%s must be a valid MongoDB ObjectID", err.Field())
		case "e164":
			message = fmt.Sprintf("%s must be in E.164 format (e.g., +14155550123)", err.Field())
		case "email":
			message = fmt.Sprintf("%s must be a valid email address", err.Field())
		case "datetime":
			message = fmt.Sprintf("%s must be a date in %s format", err.Field(), err.Param())
		case "valid_time":
			message = fmt.Sprintf("%s must be a time of day in HH:MM format", err.Field())
		case "valid_closing_time":
			message = fmt.Sprintf("%s must be a time of day in HH:MM format, or 24:00", err.Field())
		case "booking_status":
			message = fmt.Sprintf("%s is not a known booking status", err.Field())
		case "gtfield":
			message = fmt.Sprintf("%s must be after %s", err.Field(), err.Param())
		}

		out = append(out, FieldError{Field: err.Field(), Message: message})
	}
	return out
}
