package validator

import (
	"salonbook/internal/availability/slots"
	"salonbook/pkg/logger"
	"salonbook/pkg/model"
	"salonbook/pkg/validation"

	"github.com/go-playground/validator/v10"
)

type ScheduleValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewScheduleValidator(log *logger.Logger) *ScheduleValidator {
	v, err := validation.New()
	if err != nil {
		log.Fatal("Failed to build schedule validator", "error", err)
	}

	return &ScheduleValidator{
		validate: v,
		logger:   log,
	}
}

// ValidateWorkingHours checks a complete row: weekday 0-6, HH:MM times and
// a window that closes after it opens.
func (v *ScheduleValidator) ValidateWorkingHours(wh *model.WorkingHours) error {
	if err := validation.Struct(v.validate, wh); err != nil {
		return err
	}

	open, err := slots.ParseTimeOfDay(wh.StartTime)
	if err != nil {
		return validation.Field("StartTime", err.Error())
	}
	closing, err := slots.ParseClosingTime(wh.EndTime)
	if err != nil {
		return validation.Field("EndTime", err.Error())
	}
	if closing <= open {
		return validation.Field("EndTime", "end_time must be after start_time")
	}
	return nil
}

func (v *ScheduleValidator) ValidateWorkingHoursUpdate(update *model.WorkingHoursUpdate) error {
	return validation.Struct(v.validate, update)
}

func (v *ScheduleValidator) ValidateBlackout(p *model.BlackoutPeriod) error {
	return validation.Struct(v.validate, p)
}

func (v *ScheduleValidator) ValidateBlackoutUpdate(update *model.BlackoutPeriodUpdate) error {
	return validation.Struct(v.validate, update)
}

func (v *ScheduleValidator) ValidateSettings(settings *model.BusinessSettings) error {
	return validation.Struct(v.validate, settings)
}

func (v *ScheduleValidator) ValidateSettingsUpdate(update *model.BusinessSettingsUpdate) error {
	return validation.Struct(v.validate, update)
}
