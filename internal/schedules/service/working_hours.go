package service

import (
	"context"
	"errors"
	"salonbook/internal/availability/slots"
	scheduleerrors "salonbook/internal/schedules/errors"
	"salonbook/internal/schedules/repository"
	"salonbook/internal/schedules/validator"
	"salonbook/pkg/config"
	apperrors "salonbook/pkg/errors"
	"salonbook/pkg/events"
	"salonbook/pkg/model"
	"strings"
	"sync"

	"go.mongodb.org/mongo-driver/mongo"
)

type WorkingHoursService interface {
	Create(ctx context.Context, wh *model.WorkingHours) error
	GetByID(ctx context.Context, id string) (*model.WorkingHours, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.WorkingHours, int64, error)
	GetByTechnician(ctx context.Context, technicianID string) ([]*model.WorkingHours, error)
	Update(ctx context.Context, id string, updates *model.WorkingHoursUpdate) (*model.WorkingHours, error)
	Delete(ctx context.Context, id string) error
}

type workingHoursService struct {
	repo      repository.WorkingHoursRepository
	validator *validator.ScheduleValidator
	events    events.AvailabilityPublisher
	cfg       *config.Config
}

func NewWorkingHoursService(
	repo repository.WorkingHoursRepository,
	validator *validator.ScheduleValidator,
	publisher events.AvailabilityPublisher,
	cfg *config.Config,
) WorkingHoursService {
	return &workingHoursService{
		repo:      repo,
		validator: validator,
		events:    publisher,
		cfg:       cfg,
	}
}

// Create stores a weekly row. A technician may have at most one active row
// per weekday; the availability computation refuses to guess between two.
func (s *workingHoursService) Create(ctx context.Context, wh *model.WorkingHours) error {
	wh.ID = ""
	wh.TechnicianID = strings.TrimSpace(wh.TechnicianID)
	if err := s.validate(wh); err != nil {
		return err
	}
	normalizeWindow(wh)

	err := s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.ensureSingleActive(sessCtx, wh); err != nil {
			return err
		}
		return s.repo.Create(sessCtx, wh)
	})
	if err != nil {
		s.cfg.Log.Error("Failed to create working hours",
			"technician_id", wh.TechnicianID,
			"day_of_week", wh.DayOfWeek,
			"error", err,
		)
		return mapRepoError(err, "Working hours", "", "Failed to create working hours")
	}

	s.publish(ctx, wh.TechnicianID)
	s.cfg.Log.Info("Working hours created successfully",
		"id", wh.ID,
		"technician_id", wh.TechnicianID,
		"day_of_week", wh.DayOfWeek,
		"start_time", wh.StartTime,
		"end_time", wh.EndTime,
	)
	return nil
}

func (s *workingHoursService) GetByID(ctx context.Context, id string) (*model.WorkingHours, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Working hours ID cannot be empty")
	}

	wh, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, "Working hours", id, "Failed to retrieve working hours")
	}
	return wh, nil
}

func (s *workingHoursService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.WorkingHours, int64, error) {
	var (
		count             int64
		rows              []*model.WorkingHours
		errCount, errFind error
		wg                sync.WaitGroup
	)
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx)
	}()
	go func() {
		defer wg.Done()
		rows, errFind = s.repo.FindAll(ctx, limit, offset)
	}()
	wg.Wait()

	if err := errors.Join(errCount, errFind); err != nil {
		s.cfg.Log.Error("Failed to list working hours", "error", err)
		return nil, 0, apperrors.Internal("Failed to retrieve working hours", err)
	}
	if rows == nil {
		rows = []*model.WorkingHours{}
	}
	return rows, count, nil
}

func (s *workingHoursService) GetByTechnician(ctx context.Context, technicianID string) ([]*model.WorkingHours, error) {
	if technicianID == "" {
		return nil, apperrors.InvalidInput("technician_id is required")
	}

	rows, err := s.repo.FindByTechnician(ctx, technicianID)
	if err != nil {
		s.cfg.Log.Error("Failed to search working hours", "technician_id", technicianID, "error", err)
		return nil, apperrors.Internal("Failed to search working hours", err)
	}
	if rows == nil {
		rows = []*model.WorkingHours{}
	}
	return rows, nil
}

func (s *workingHoursService) Update(ctx context.Context, id string, updates *model.WorkingHoursUpdate) (*model.WorkingHours, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Working hours ID cannot be empty")
	}
	if err := s.validator.ValidateWorkingHoursUpdate(updates); err != nil {
		s.cfg.Log.Warn("Working hours update validation failed", "id", id, "error", err)
		return nil, validationError("Invalid update input", err)
	}

	var merged *model.WorkingHours
	err := s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		existing, err := s.repo.FindByID(sessCtx, id)
		if err != nil {
			return mapRepoError(err, "Working hours", id, "Failed to check working hours existence")
		}

		merged = mergeWorkingHours(existing, updates)
		if err := s.validate(merged); err != nil {
			return err
		}
		normalizeWindow(merged)

		if err := s.ensureSingleActive(sessCtx, merged); err != nil {
			return err
		}
		if err := s.repo.Update(sessCtx, id, merged); err != nil {
			return mapRepoError(err, "Working hours", id, "Failed to update working hours")
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to update working hours", "id", id, "error", err)
		return nil, mapRepoError(err, "Working hours", id, "Failed to update working hours")
	}

	s.publish(ctx, merged.TechnicianID)
	s.cfg.Log.Info("Working hours updated successfully", "id", id)
	return merged, nil
}

func (s *workingHoursService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Working hours ID cannot be empty")
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return mapRepoError(err, "Working hours", id, "Failed to check working hours existence")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return mapRepoError(err, "Working hours", id, "Failed to delete working hours")
	}

	s.publish(ctx, existing.TechnicianID)
	s.cfg.Log.Info("Working hours deleted successfully", "id", id)
	return nil
}

// --- Helpers ---

func (s *workingHoursService) validate(wh *model.WorkingHours) error {
	if err := s.validator.ValidateWorkingHours(wh); err != nil {
		s.cfg.Log.Warn("Working hours validation failed",
			"technician_id", wh.TechnicianID,
			"day_of_week", wh.DayOfWeek,
			"error", err,
		)
		return validationError("Working hours validation failed", err)
	}
	return nil
}

func (s *workingHoursService) ensureSingleActive(ctx context.Context, wh *model.WorkingHours) error {
	if !wh.IsActive {
		return nil
	}
	active, err := s.repo.FindActive(ctx, wh.TechnicianID, wh.DayOfWeek)
	if err != nil {
		return apperrors.Internal("Failed to check existing working hours", err)
	}
	for _, other := range active {
		if other.ID != wh.ID {
			return apperrors.Conflict(scheduleerrors.ErrDuplicateActiveHours.Error())
		}
	}
	return nil
}

func (s *workingHoursService) publish(ctx context.Context, technicianID string) {
	s.events.Publish(ctx, model.EventWorkingHoursChanged, model.AvailabilityEvent{TechnicianID: technicianID})
}

func mergeWorkingHours(existing *model.WorkingHours, updates *model.WorkingHoursUpdate) *model.WorkingHours {
	merged := *existing
	if updates.StartTime != "" {
		merged.StartTime = updates.StartTime
	}
	if updates.EndTime != "" {
		merged.EndTime = updates.EndTime
	}
	if updates.IsActive != nil {
		merged.IsActive = *updates.IsActive
	}
	return &merged
}

// normalizeWindow stores times as HH:MM. Call only after validation.
func normalizeWindow(wh *model.WorkingHours) {
	wh.StartTime = slots.MustParseTimeOfDay(wh.StartTime).String()
	wh.EndTime = slots.MustParseClosingTime(wh.EndTime).String()
}
