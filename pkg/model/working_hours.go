package model

import "time"

// WorkingHours is one weekly row of a technician's schedule. DayOfWeek uses
// 0 for Sunday through 6 for Saturday.
type WorkingHours struct {
	ID           string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	TechnicianID string    `json:"technician_id" bson:"technician_id" validate:"required,min=1,max=64"`
	DayOfWeek    int       `json:"day_of_week" bson:"day_of_week" validate:"min=0,max=6"`
	StartTime    string    `json:"start_time" bson:"start_time" validate:"required,valid_time"`
	EndTime      string    `json:"end_time" bson:"end_time" validate:"required,valid_closing_time"`
	IsActive     bool      `json:"is_active" bson:"is_active"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
}

type WorkingHoursUpdate struct {
	StartTime string `json:"start_time,omitempty" validate:"omitempty,valid_time"`
	EndTime   string `json:"end_time,omitempty" validate:"omitempty,valid_closing_time"`
	IsActive  *bool  `json:"is_active,omitempty"`
}
