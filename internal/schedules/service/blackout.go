package service

import (
	"context"
	"errors"
	"salonbook/internal/schedules/repository"
	"salonbook/internal/schedules/validator"
	"salonbook/pkg/config"
	apperrors "salonbook/pkg/errors"
	"salonbook/pkg/events"
	"salonbook/pkg/model"
	"salonbook/pkg/sanitizer"
	"strings"
	"sync"
	"time"
)

type BlackoutService interface {
	Create(ctx context.Context, p *model.BlackoutPeriod) error
	GetByID(ctx context.Context, id string) (*model.BlackoutPeriod, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.BlackoutPeriod, int64, error)
	GetByTechnician(ctx context.Context, technicianID string, from, to *time.Time) ([]*model.BlackoutPeriod, error)
	Update(ctx context.Context, id string, updates *model.BlackoutPeriodUpdate) (*model.BlackoutPeriod, error)
	Delete(ctx context.Context, id string) error
}

type blackoutService struct {
	repo      repository.BlackoutRepository
	validator *validator.ScheduleValidator
	events    events.AvailabilityPublisher
	cfg       *config.Config
}

func NewBlackoutService(
	repo repository.BlackoutRepository,
	validator *validator.ScheduleValidator,
	publisher events.AvailabilityPublisher,
	cfg *config.Config,
) BlackoutService {
	return &blackoutService{
		repo:      repo,
		validator: validator,
		events:    publisher,
		cfg:       cfg,
	}
}

func (s *blackoutService) Create(ctx context.Context, p *model.BlackoutPeriod) error {
	p.ID = ""
	s.sanitize(p)
	if err := s.validate(p); err != nil {
		return err
	}

	if err := s.repo.Create(ctx, p); err != nil {
		s.cfg.Log.Error("Failed to create blackout period", "technician_id", p.TechnicianID, "error", err)
		return apperrors.Internal("Failed to create blackout period", err)
	}

	s.publish(ctx, p.TechnicianID, p.Start, p.End)
	s.cfg.Log.Info("Blackout period created successfully",
		"id", p.ID,
		"technician_id", p.TechnicianID,
		"start", p.Start,
		"end", p.End,
	)
	return nil
}

func (s *blackoutService) GetByID(ctx context.Context, id string) (*model.BlackoutPeriod, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Blackout period ID cannot be empty")
	}

	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, "Blackout period", id, "Failed to retrieve blackout period")
	}
	return p, nil
}

func (s *blackoutService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.BlackoutPeriod, int64, error) {
	var (
		count             int64
		periods           []*model.BlackoutPeriod
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
		periods, errFind = s.repo.FindAll(ctx, limit, offset)
	}()
	wg.Wait()

	if err := errors.Join(errCount, errFind); err != nil {
		s.cfg.Log.Error("Failed to list blackout periods", "error", err)
		return nil, 0, apperrors.Internal("Failed to retrieve blackout periods", err)
	}
	if periods == nil {
		periods = []*model.BlackoutPeriod{}
	}
	return periods, count, nil
}

func (s *blackoutService) GetByTechnician(ctx context.Context, technicianID string, from, to *time.Time) ([]*model.BlackoutPeriod, error) {
	if technicianID == "" {
		return nil, apperrors.InvalidInput("technician_id is required")
	}
	if from != nil && to != nil && !to.After(*from) {
		return nil, apperrors.InvalidInput("to must be after from")
	}

	periods, err := s.repo.FindByTechnician(ctx, technicianID, from, to)
	if err != nil {
		s.cfg.Log.Error("Failed to search blackout periods", "technician_id", technicianID, "error", err)
		return nil, apperrors.Internal("Failed to search blackout periods", err)
	}
	if periods == nil {
		periods = []*model.BlackoutPeriod{}
	}
	return periods, nil
}

// Update publishes the union of the old and new ranges so dates the period
// no longer covers are invalidated too.
func (s *blackoutService) Update(ctx context.Context, id string, updates *model.BlackoutPeriodUpdate) (*model.BlackoutPeriod, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Blackout period ID cannot be empty")
	}
	if err := s.validator.ValidateBlackoutUpdate(updates); err != nil {
		s.cfg.Log.Warn("Blackout update validation failed", "id", id, "error", err)
		return nil, validationError("Invalid update input", err)
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, "Blackout period", id, "Failed to check blackout period existence")
	}

	merged := mergeBlackout(existing, updates)
	s.sanitize(merged)
	if err := s.validate(merged); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, id, merged); err != nil {
		s.cfg.Log.Error("Failed to update blackout period", "id", id, "error", err)
		return nil, mapRepoError(err, "Blackout period", id, "Failed to update blackout period")
	}

	start, end := existing.Start, existing.End
	if merged.Start.Before(start) {
		start = merged.Start
	}
	if merged.End.After(end) {
		end = merged.End
	}
	s.publish(ctx, merged.TechnicianID, start, end)

	s.cfg.Log.Info("Blackout period updated successfully", "id", id)
	return merged, nil
}

func (s *blackoutService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Blackout period ID cannot be empty")
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return mapRepoError(err, "Blackout period", id, "Failed to check blackout period existence")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return mapRepoError(err, "Blackout period", id, "Failed to delete blackout period")
	}

	s.publish(ctx, existing.TechnicianID, existing.Start, existing.End)
	s.cfg.Log.Info("Blackout period deleted successfully", "id", id)
	return nil
}

// --- Helpers ---

func (s *blackoutService) sanitize(p *model.BlackoutPeriod) {
	p.TechnicianID = strings.TrimSpace(p.TechnicianID)
	p.Title = sanitizer.TrimAndNormalize(p.Title)
	p.Description = sanitizer.NormalizeNotes(p.Description)
	p.PeriodType = strings.ToLower(sanitizer.TrimAndNormalize(p.PeriodType))
}

func (s *blackoutService) validate(p *model.BlackoutPeriod) error {
	if err := s.validator.ValidateBlackout(p); err != nil {
		s.cfg.Log.Warn("Blackout period validation failed", "technician_id", p.TechnicianID, "error", err)
		return validationError("Blackout period validation failed", err)
	}
	return nil
}

func (s *blackoutService) publish(ctx context.Context, technicianID string, start, end time.Time) {
	s.events.Publish(ctx, model.EventBlackoutChanged, model.AvailabilityEvent{
		TechnicianID: technicianID,
		Start:        &start,
		End:          &end,
	})
}

func mergeBlackout(existing *model.BlackoutPeriod, updates *model.BlackoutPeriodUpdate) *model.BlackoutPeriod {
	merged := *existing
	if updates.Start != nil {
		merged.Start = *updates.Start
	}
	if updates.End != nil {
		merged.End = *updates.End
	}
	if updates.Title != "" {
		merged.Title = updates.Title
	}
	if updates.Description != nil {
		merged.Description = *updates.Description
	}
	if updates.PeriodType != nil {
		merged.PeriodType = *updates.PeriodType
	}
	return &merged
}
