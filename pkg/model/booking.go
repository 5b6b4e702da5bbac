package model

import (
	"time"
)

type BookingStatus string

const (
	StatusPending    BookingStatus = "pending"
	StatusConfirmed  BookingStatus = "confirmed"
	StatusInProgress BookingStatus = "in_progress"
	StatusCompleted  BookingStatus = "completed"
	StatusCancelled  BookingStatus = "cancelled"
	StatusNoShow     BookingStatus = "no_show"
)

// BlockingStatuses are the statuses whose bookings occupy the technician's time.
var BlockingStatuses = []BookingStatus{StatusPending, StatusConfirmed, StatusInProgress}

func (s BookingStatus) IsBlocking() bool {
	for _, b := range BlockingStatuses {
		if s == b {
			return true
		}
	}
	return false
}

var statusTransitions = map[BookingStatus][]BookingStatus{
	StatusPending:    {StatusConfirmed, StatusCancelled, StatusNoShow},
	StatusConfirmed:  {StatusInProgress, StatusCancelled, StatusNoShow},
	StatusInProgress: {StatusCompleted, StatusCancelled},
}

func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	for _, allowed := range statusTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type Booking struct {
	ID                     string        `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	AppointmentNumber      string        `json:"appointment_number,omitempty" bson:"appointment_number" validate:"omitempty"`
	TechnicianID           string        `json:"technician_id" bson:"technician_id" validate:"required,min=1,max=64"`
	AppointmentDate        string        `json:"appointment_date" bson:"appointment_date" validate:"required,datetime=2006-01-02"`
	StartTime              string        `json:"start_time" bson:"start_time" validate:"required,valid_time"`
	EndTime                string        `json:"end_time,omitempty" bson:"end_time,omitempty" validate:"omitempty,valid_time"`
	ServiceDurationMinutes int           `json:"service_duration_minutes" bson:"service_duration_minutes" validate:"required,min=1,max=1440"`
	AddOnMinutes           []int         `json:"add_on_minutes,omitempty" bson:"add_on_minutes,omitempty" validate:"omitempty,max=20,dive,min=0,max=480"`
	DurationMinutes        int           `json:"duration_minutes" bson:"duration_minutes" validate:"omitempty,min=1,max=1440"`
	Status                 BookingStatus `json:"status" bson:"status" validate:"required,booking_status"`
	ClientName             string        `json:"client_name" bson:"client_name" validate:"required,min=2,max=100"`
	ClientPhone            string        `json:"client_phone" bson:"client_phone" validate:"required,e164"`
	ClientWhatsApp         string        `json:"client_whatsapp,omitempty" bson:"client_whatsapp,omitempty" validate:"omitempty,e164"`
	ClientEmail            string        `json:"client_email,omitempty" bson:"client_email,omitempty" validate:"omitempty,email,max=254"`
	ServiceID              string        `json:"service_id,omitempty" bson:"service_id,omitempty" validate:"omitempty,max=64"`
	QuotedPrice            float64       `json:"quoted_price,omitempty" bson:"quoted_price,omitempty" validate:"omitempty,min=0"`
	SpecialRequests        string        `json:"special_requests,omitempty" bson:"special_requests,omitempty" validate:"omitempty,max=1000"`
	CreatedAt              time.Time     `json:"created_at" bson:"created_at"`
	UpdatedAt              time.Time     `json:"updated_at" bson:"updated_at"`
}

// TotalDuration is the time the appointment occupies: the service itself plus
// every add-on.
func (b *Booking) TotalDuration() int {
	total := b.ServiceDurationMinutes
	for _, m := range b.AddOnMinutes {
		total += m
	}
	return total
}

type BookingStatusUpdate struct {
	Status BookingStatus `json:"status" validate:"required,booking_status"`
}
