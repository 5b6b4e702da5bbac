package model

import "time"

type BlackoutPeriod struct {
	ID           string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	TechnicianID string    `json:"technician_id" bson:"technician_id" validate:"required,min=1,max=64"`
	Start        time.Time `json:"start_datetime" bson:"start_datetime" validate:"required"`
	End          time.Time `json:"end_datetime" bson:"end_datetime" validate:"required,gtfield=Start"`
	Title        string    `json:"title" bson:"title" validate:"required,min=1,max=200"`
	Description  string    `json:"description,omitempty" bson:"description,omitempty" validate:"omitempty,max=1000"`
	PeriodType   string    `json:"period_type,omitempty" bson:"period_type,omitempty" validate:"omitempty,max=50"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
}

type BlackoutPeriodUpdate struct {
	Start       *time.Time `json:"start_datetime,omitempty"`
	End         *time.Time `json:"end_datetime,omitempty"`
	Title       string     `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Description *string    `json:"description,omitempty" validate:"omitempty,max=1000"`
	PeriodType  *string    `json:"period_type,omitempty" validate:"omitempty,max=50"`
}
