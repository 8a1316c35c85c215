package models

import "time"

// Notification is a human-facing summary of a change, retained up to a
// fixed cap and pruned oldest-first by the notify package.
type Notification struct {
	ID               int64     `gorm:"primaryKey" json:"id"`
	Message          string    `gorm:"type:text;not null" json:"message"`
	Type             string    `gorm:"type:text;not null" json:"type"`
	ItemSerialNumber *string   `gorm:"type:text" json:"itemSerialNumber"`
	CreatedAt        time.Time `gorm:"index" json:"timestamp"`
}

func (Notification) TableName() string { return "notifications" }
