package service

import (
	"context"
	"salonbook/internal/schedules/repository"
	"salonbook/internal/schedules/validator"
	"salonbook/pkg/config"
	apperrors "salonbook/pkg/errors"
	"salonbook/pkg/events"
	"salonbook/pkg/model"
	"strings"
)

type SettingsService interface {
	Get(ctx context.Context) (*model.BusinessSettings, error)
	Update(ctx context.Context, updates *model.BusinessSettingsUpdate) (*model.BusinessSettings, error)
}

type settingsService struct {
	repo      repository.SettingsRepository
	validator *validator.ScheduleValidator
	events    events.AvailabilityPublisher
	cfg       *config.Config
}

func NewSettingsService(
	repo repository.SettingsRepository,
	validator *validator.ScheduleValidator,
	publisher events.AvailabilityPublisher,
	cfg *config.Config,
) SettingsService {
	return &settingsService{
		repo:      repo,
		validator: validator,
		events:    publisher,
		cfg:       cfg,
	}
}

// Get returns the stored settings, or the configured defaults when none have
// been saved yet.
func (s *settingsService) Get(ctx context.Context) (*model.BusinessSettings, error) {
	settings, err := s.repo.Get(ctx)
	if err != nil {
		s.cfg.Log.Error("Failed to load business settings", "error", err)
		return nil, apperrors.Internal("Failed to load business settings", err)
	}
	if settings == nil {
		defaults := model.DefaultBusinessSettings(s.cfg.SlotIntervalMin, s.cfg.AdvanceBookingDays)
		return &defaults, nil
	}
	return settings, nil
}

// Update applies a partial change. Every cached slot grid may depend on
// these values, so the change is broadcast to all technicians.
func (s *settingsService) Update(ctx context.Context, updates *model.BusinessSettingsUpdate) (*model.BusinessSettings, error) {
	if err := s.validator.ValidateSettingsUpdate(updates); err != nil {
		s.cfg.Log.Warn("Business settings update validation failed", "error", err)
		return nil, validationError("Invalid update input", err)
	}

	settings, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}

	if updates.TechnicianID != nil {
		settings.TechnicianID = strings.TrimSpace(*updates.TechnicianID)
	}
	if updates.SlotDuration != nil {
		settings.SlotDuration = *updates.SlotDuration
	}
	if updates.IsAcceptingBookings != nil {
		settings.IsAcceptingBookings = *updates.IsAcceptingBookings
	}
	if updates.AdvanceBookingDays != nil {
		settings.AdvanceBookingDays = *updates.AdvanceBookingDays
	}

	if err := s.validator.ValidateSettings(settings); err != nil {
		s.cfg.Log.Warn("Business settings validation failed", "error", err)
		return nil, validationError("Business settings validation failed", err)
	}

	if err := s.repo.Save(ctx, settings); err != nil {
		s.cfg.Log.Error("Failed to save business settings", "error", err)
		return nil, apperrors.Internal("Failed to save business settings", err)
	}

	s.events.Publish(ctx, model.EventSettingsChanged, model.AvailabilityEvent{TechnicianID: settings.TechnicianID})
	s.cfg.Log.Info("Business settings updated",
		"technician_id", settings.TechnicianID,
		"slot_duration", settings.SlotDuration,
		"is_accepting_bookings", settings.IsAcceptingBookings,
		"advance_booking_days", settings.AdvanceBookingDays,
	)
	return settings, nil
}
