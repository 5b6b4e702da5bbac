package model

import "time"

// SlotLock is an advisory lock held while a booking for one technician and
// date is checked against availability and inserted.
type SlotLock struct {
	ID        string    `bson:"_id" json:"id"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
