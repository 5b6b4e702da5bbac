package service

import (
	"context"
	"errors"
	"fmt"
	"salonbook/internal/availability/slots"
	bookingserrors "salonbook/internal/bookings/errors"
	"salonbook/internal/bookings/repository"
	"salonbook/internal/bookings/validator"
	"salonbook/pkg/config"
	apperrors "salonbook/pkg/errors"
	"salonbook/pkg/events"
	"salonbook/pkg/model"
	"salonbook/pkg/sanitizer"
	"salonbook/pkg/validation"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
)

const minutesPerDay = 24 * 60

type BookingService interface {
	Create(ctx context.Context, booking *model.Booking) error
	GetByID(ctx context.Context, id string) (*model.Booking, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.Booking, int64, error)
	SearchByTechnicianAndDate(ctx context.Context, technicianID, date string, limit int, offset int64) ([]*model.Booking, int64, error)
	UpdateStatus(ctx context.Context, id string, update *model.BookingStatusUpdate) (*model.Booking, error)
	Delete(ctx context.Context, id string) error
}

type bookingService struct {
	repo      repository.BookingRepository
	lockRepo  repository.SlotLockRepository
	validator *validator.BookingValidator
	checker   SlotChecker
	events    events.AvailabilityPublisher
	cfg       *config.Config
}

func NewBookingService(
	repo repository.BookingRepository,
	lockRepo repository.SlotLockRepository,
	validator *validator.BookingValidator,
	checker SlotChecker,
	publisher events.AvailabilityPublisher,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		repo:      repo,
		lockRepo:  lockRepo,
		validator: validator,
		checker:   checker,
		events:    publisher,
		cfg:       cfg,
	}
}

// Create books an appointment only if its start time is still offered by the
// availability service and no blocking booking overlaps it. Creation for one
// technician and day is serialized by an advisory lock.
func (s *bookingService) Create(ctx context.Context, booking *model.Booking) error {
	s.applyDefaults(booking)
	s.sanitize(booking)
	if err := s.validate(booking); err != nil {
		return err
	}
	if err := s.schedule(booking); err != nil {
		return err
	}

	lockID, err := s.acquireSlotLock(ctx, booking.TechnicianID, booking.AppointmentDate)
	if err != nil {
		return err
	}
	defer func() {
		if releaseErr := s.lockRepo.Delete(context.WithoutCancel(ctx), lockID); releaseErr != nil {
			s.cfg.Log.Warn("Failed to release slot lock", "lock_id", lockID, "error", releaseErr)
		}
	}()

	starts, err := s.checker.AvailableStarts(ctx, booking.TechnicianID, booking.AppointmentDate, booking.DurationMinutes)
	if err != nil {
		s.cfg.Log.Error("Availability check failed", "technician_id", booking.TechnicianID, "error", err)
		return err
	}
	if !slices.Contains(starts, booking.StartTime) {
		s.cfg.Log.Info("Requested start time not available",
			"technician_id", booking.TechnicianID,
			"date", booking.AppointmentDate,
			"start_time", booking.StartTime,
		)
		return apperrors.Conflict(bookingserrors.ErrSlotTaken.Error())
	}

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.verifyNoOverlap(sessCtx, booking); err != nil {
			return err
		}
		if err := s.repo.Create(sessCtx, booking); err != nil {
			return apperrors.Internal("Failed to create booking", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to create booking", "error", err)
		return err
	}

	s.events.Publish(ctx, model.EventBookingCreated, bookingEvent(booking))

	s.cfg.Log.Info("Booking created successfully",
		"id", booking.ID,
		"appointment_number", booking.AppointmentNumber,
		"technician_id", booking.TechnicianID,
		"date", booking.AppointmentDate,
		"start_time", booking.StartTime,
	)
	return nil
}

func (s *bookingService) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, id, "Failed to retrieve booking")
	}
	return booking, nil
}

func (s *bookingService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Booking, int64, error) {
	return s.list(ctx, "list bookings",
		func() (int64, error) { return s.repo.Count(ctx) },
		func() ([]*model.Booking, error) { return s.repo.FindAll(ctx, limit, offset) },
	)
}

func (s *bookingService) SearchByTechnicianAndDate(ctx context.Context, technicianID, date string, limit int, offset int64) ([]*model.Booking, int64, error) {
	if technicianID == "" || date == "" {
		return nil, 0, apperrors.InvalidInput("technician_id and date are required")
	}

	bookings, count, err := s.list(ctx, "search bookings",
		func() (int64, error) { return s.repo.CountByTechnicianAndDate(ctx, technicianID, date) },
		func() ([]*model.Booking, error) {
			return s.repo.FindByTechnicianAndDate(ctx, technicianID, date, limit, offset)
		},
	)
	if err != nil {
		return nil, 0, err
	}

	s.cfg.Log.Debug("Booking search completed",
		"technician_id", technicianID,
		"date", date,
		"count", len(bookings),
		"total_count", count,
	)
	return bookings, count, nil
}

// UpdateStatus moves a booking along its lifecycle. Setting the current
// status again is a no-op.
func (s *bookingService) UpdateStatus(ctx context.Context, id string, update *model.BookingStatusUpdate) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}
	if err := s.validator.ValidateStatusUpdate(update); err != nil {
		s.cfg.Log.Warn("Booking status update validation failed", "id", id, "error", err)
		return nil, validationError("Invalid status update", err)
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, id, "Failed to check booking existence")
	}
	if existing.Status == update.Status {
		return existing, nil
	}
	if !existing.Status.CanTransitionTo(update.Status) {
		return nil, apperrors.Conflict(fmt.Sprintf("%s: %s -> %s",
			bookingserrors.ErrInvalidTransition, existing.Status, update.Status))
	}

	if err := s.repo.UpdateStatus(ctx, id, update.Status); err != nil {
		s.cfg.Log.Error("Failed to update booking status", "id", id, "error", err)
		return nil, mapRepoError(err, id, "Failed to update booking status")
	}
	existing.Status = update.Status
	existing.UpdatedAt = time.Now().UTC()

	s.events.Publish(ctx, model.EventBookingStatusChanged, bookingEvent(existing))

	s.cfg.Log.Info("Booking status updated", "id", id, "status", update.Status)
	return existing, nil
}

func (s *bookingService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Booking ID cannot be empty")
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return mapRepoError(err, id, "Failed to check booking existence")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return mapRepoError(err, id, "Failed to delete booking")
	}

	s.events.Publish(ctx, model.EventBookingDeleted, bookingEvent(existing))

	s.cfg.Log.Info("Booking deleted successfully", "id", id)
	return nil
}

// --- Helpers ---

func (s *bookingService) list(
	ctx context.Context,
	operation string,
	count func() (int64, error),
	find func() ([]*model.Booking, error),
) ([]*model.Booking, int64, error) {
	var (
		total             int64
		bookings          []*model.Booking
		errCount, errFind error
		wg                sync.WaitGroup
	)
	wg.Add(2)

	go func() {
		defer wg.Done()
		total, errCount = count()
	}()
	go func() {
		defer wg.Done()
		bookings, errFind = find()
	}()
	wg.Wait()

	if err := errors.Join(errCount, errFind); err != nil {
		s.cfg.Log.Error("Failed to "+operation, "error", err)
		return nil, 0, apperrors.Internal("Failed to "+operation, err)
	}
	if bookings == nil {
		bookings = []*model.Booking{}
	}
	return bookings, total, nil
}

// applyDefaults resets the fields a client may not choose.
func (s *bookingService) applyDefaults(b *model.Booking) {
	b.ID = ""
	b.AppointmentNumber = ""
	b.Status = model.StatusPending
	b.EndTime = ""
	b.DurationMinutes = 0
}

func (s *bookingService) sanitize(b *model.Booking) {
	b.TechnicianID = strings.TrimSpace(b.TechnicianID)
	b.ClientName = sanitizer.NormalizeName(b.ClientName)
	b.ClientEmail = sanitizer.NormalizeEmail(b.ClientEmail)
	b.SpecialRequests = sanitizer.NormalizeNotes(b.SpecialRequests)
	b.ClientPhone = s.normalizePhone(b.ClientPhone)
	b.ClientWhatsApp = s.normalizePhone(b.ClientWhatsApp)
}

// normalizePhone keeps unparseable input as-is so validation can report it.
func (s *bookingService) normalizePhone(phone string) string {
	if normalized := sanitizer.NormalizePhone(phone, s.cfg.PhoneRegion); normalized != "" {
		return normalized
	}
	return strings.TrimSpace(phone)
}

func (s *bookingService) validate(b *model.Booking) error {
	if err := s.validator.Validate(b); err != nil {
		s.cfg.Log.Warn("Booking validation failed", "error", err)
		return validationError("Booking validation failed", err)
	}
	return nil
}

// schedule fills in the occupied duration, the end time and the appointment
// number. The appointment must finish on the day it starts.
func (s *bookingService) schedule(b *model.Booking) error {
	start, err := slots.ParseTimeOfDay(b.StartTime)
	if err != nil {
		return validationError("Booking validation failed", validation.Field("StartTime", err.Error()))
	}

	b.DurationMinutes = b.TotalDuration()
	end := int(start) + b.DurationMinutes
	if end >= minutesPerDay {
		return validationError("Booking validation failed",
			validation.Field("DurationMinutes", bookingserrors.ErrPastMidnight.Error()))
	}

	b.StartTime = start.String()
	b.EndTime = slots.TimeOfDay(end).String()
	b.AppointmentNumber = newAppointmentNumber(b.AppointmentDate)
	return nil
}

func newAppointmentNumber(date string) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return fmt.Sprintf("APT-%s-%s", strings.ReplaceAll(date, "-", ""), suffix)
}

// verifyNoOverlap re-reads the technician's blocking bookings inside the
// transaction so a stale availability answer cannot double-book.
func (s *bookingService) verifyNoOverlap(ctx context.Context, booking *model.Booking) error {
	existing, err := s.repo.FindBlocking(ctx, booking.TechnicianID, booking.AppointmentDate)
	if err != nil {
		return apperrors.Internal("Failed to check existing bookings", err)
	}

	start, end, _ := span(booking)
	for _, b := range existing {
		if b.ID == booking.ID {
			continue
		}
		bStart, bEnd, ok := span(b)
		if !ok {
			return apperrors.Internal(fmt.Sprintf("Booking %s has an unreadable time range", b.ID), nil)
		}
		if bStart < end && start < bEnd {
			return apperrors.Conflict(fmt.Sprintf(
				"Booking time overlaps with existing booking (%s - %s)", bStart, bEnd))
		}
	}
	return nil
}

// span returns the half-open minute range a booking occupies. The end time is
// preferred; the duration covers rows written without one.
func span(b *model.Booking) (slots.TimeOfDay, slots.TimeOfDay, bool) {
	start, err := slots.ParseTimeOfDay(b.StartTime)
	if err != nil {
		return 0, 0, false
	}
	if end, err := slots.ParseTimeOfDay(b.EndTime); err == nil && end > start {
		return start, end, true
	}
	if b.DurationMinutes > 0 {
		return start, start + slots.TimeOfDay(b.DurationMinutes), true
	}
	return 0, 0, false
}

func (s *bookingService) acquireSlotLock(ctx context.Context, technicianID, date string) (string, error) {
	lockID := fmt.Sprintf("slot_lock_%s_%s", technicianID, date)

	err := s.lockRepo.Create(ctx, &model.SlotLock{
		ID:        lockID,
		ExpiresAt: time.Now().UTC().Add(s.cfg.SlotLockTTL),
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", apperrors.Conflict("This technician's schedule is being booked by another request. Please try again.")
		}
		return "", apperrors.Internal("Failed to acquire slot lock", err)
	}
	return lockID, nil
}

func bookingEvent(b *model.Booking) model.AvailabilityEvent {
	return model.AvailabilityEvent{
		TechnicianID: b.TechnicianID,
		Date:         b.AppointmentDate,
		BookingID:    b.ID,
		Status:       b.Status,
	}
}

func mapRepoError(err error, id, message string) error {
	switch {
	case errors.Is(err, bookingserrors.ErrNotFound):
		return apperrors.NotFoundWithID("Booking", id)
	case errors.Is(err, bookingserrors.ErrInvalidID):
		return apperrors.InvalidInput("Invalid booking ID format")
	default:
		return apperrors.Internal(message, err)
	}
}

func validationError(message string, err error) error {
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		return apperrors.Validation(message, verrs.Details())
	}
	return apperrors.Validation(message, map[string]any{"error": err.Error()})
}
