package source

import (
	"context"
	"errors"
	"fmt"
	"salonbook/pkg/model"
	"time"

	"github.com/jackc/pgx/v5"
)

// PgxQuerier is the subset of *pgxpool.Pool the Postgres source uses.
type PgxQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
}

const (
	queryWorkingHours = `SELECT id::text, technician_id::text, day_of_week, start_time::text, end_time::text, is_active
FROM availability_schedules
WHERE technician_id = $1 AND day_of_week = $2 AND is_active = true
ORDER BY id`

	queryBlockingBookings = `SELECT id::text, technician_id::text, appointment_date::text, start_time::text,
	COALESCE(end_time::text, ''), COALESCE(duration_minutes, 0), status
FROM appointments
WHERE technician_id = $1 AND appointment_date = $2 AND status = ANY($3)`

	queryBlackoutPeriods = `SELECT id::text, technician_id::text, start_datetime, end_datetime,
	COALESCE(title, ''), COALESCE(description, ''), COALESCE(period_type, '')
FROM unavailable_periods
WHERE technician_id = $1 AND start_datetime < $2 AND end_datetime > $3`

	querySettings = `SELECT COALESCE(technician_id::text, ''), COALESCE(slot_duration, 30),
	COALESCE(is_accepting_bookings, true), COALESCE(advance_booking_days, 30)
FROM business_settings
LIMIT 1`
)

// PostgresSource reads the original relational schema.
type PostgresSource struct {
	db PgxQuerier
}

func NewPostgresSource(db PgxQuerier) *PostgresSource {
	return &PostgresSource{db: db}
}

func (s *PostgresSource) WorkingHours(ctx context.Context, technicianID string, weekday time.Weekday) ([]model.WorkingHours, error) {
	rows, err := s.db.Query(ctx, queryWorkingHours, technicianID, int(weekday))
	if err != nil {
		return nil, fmt.Errorf("query working hours: %w", err)
	}
	defer rows.Close()

	var out []model.WorkingHours
	for rows.Next() {
		var wh model.WorkingHours
		if err := rows.Scan(&wh.ID, &wh.TechnicianID, &wh.DayOfWeek, &wh.StartTime, &wh.EndTime, &wh.IsActive); err != nil {
			return nil, fmt.Errorf("scan working hours: %w", err)
		}
		out = append(out, wh)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate working hours: %w", err)
	}
	return out, nil
}

func (s *PostgresSource) BlockingBookings(ctx context.Context, technicianID, date string) ([]model.Booking, error) {
	rows, err := s.db.Query(ctx, queryBlockingBookings, technicianID, date, blockingStatusStrings())
	if err != nil {
		return nil, fmt.Errorf("query blocking bookings: %w", err)
	}
	defer rows.Close()

	var out []model.Booking
	for rows.Next() {
		var b model.Booking
		var status string
		if err := rows.Scan(&b.ID, &b.TechnicianID, &b.AppointmentDate, &b.StartTime, &b.EndTime, &b.DurationMinutes, &status); err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		b.Status = model.BookingStatus(status)
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bookings: %w", err)
	}
	return out, nil
}

func (s *PostgresSource) BlackoutPeriods(ctx context.Context, technicianID string, from, to time.Time) ([]model.BlackoutPeriod, error) {
	rows, err := s.db.Query(ctx, queryBlackoutPeriods, technicianID, to, from)
	if err != nil {
		return nil, fmt.Errorf("query blackout periods: %w", err)
	}
	defer rows.Close()

	var out []model.BlackoutPeriod
	for rows.Next() {
		var p model.BlackoutPeriod
		if err := rows.Scan(&p.ID, &p.TechnicianID, &p.Start, &p.End, &p.Title, &p.Description, &p.PeriodType); err != nil {
			return nil, fmt.Errorf("scan blackout period: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate blackout periods: %w", err)
	}
	return out, nil
}

func (s *PostgresSource) Settings(ctx context.Context) (*model.BusinessSettings, error) {
	settings := model.BusinessSettings{ID: model.SettingsID}
	err := s.db.QueryRow(ctx, querySettings).Scan(
		&settings.TechnicianID,
		&settings.SlotDuration,
		&settings.IsAcceptingBookings,
		&settings.AdvanceBookingDays,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query business settings: %w", err)
	}
	return &settings, nil
}

func (s *PostgresSource) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}
