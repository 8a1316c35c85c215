package models

import (
	"time"

	"gorm.io/datatypes"
)

// CustomField is a registered attribute definition for item custom data.
// FieldKey is derived from Name and is the key used inside Item.CustomData.
type CustomField struct {
	ID           int64          `gorm:"primaryKey" json:"id"`
	Name         string         `gorm:"type:text;uniqueIndex;not null" json:"name"`
	FieldKey     string         `gorm:"type:text;uniqueIndex;not null" json:"fieldKey"`
	FieldType    string         `gorm:"type:text;not null;default:text" json:"fieldType"`
	Options      datatypes.JSON `gorm:"type:jsonb" json:"options"`
	Required     bool           `gorm:"not null;default:false" json:"required"`
	DisplayOrder int            `gorm:"not null;default:0" json:"displayOrder"`
	CreatedAt    time.Time      `json:"createdAt"`
}

func (CustomField) TableName() string { return "custom_fields" }
