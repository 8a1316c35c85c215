package models

import "time"

// ChangeRecord is one immutable audit-trail entry for a single field
// mutation. Records are keyed by the item's serial number so the trail
// survives item code reprints; a serial rename re-keys the trail instead.
type ChangeRecord struct {
	ID               int64     `gorm:"primaryKey" json:"id"`
	ItemSerialNumber string    `gorm:"type:text;not null;index" json:"itemSerialNumber"`
	FieldName        string    `gorm:"type:text;not null" json:"fieldName"`
	OldValue         *string   `gorm:"type:text" json:"oldValue"`
	NewValue         *string   `gorm:"type:text" json:"newValue"`
	ChangedAt        time.Time `gorm:"index" json:"changedAt"`
}

func (ChangeRecord) TableName() string { return "item_history" }
