package models

import (
	"time"

	"gorm.io/datatypes"
)

// Item is a tracked inventory unit. SerialNumber is the external business
// identity; ItemID is the allocator-assigned base-36 code printed on labels.
type Item struct {
	ID              int64             `gorm:"primaryKey" json:"id"`
	ItemID          string            `gorm:"column:item_id;type:text;uniqueIndex;not null" json:"itemId"`
	Name            string            `gorm:"type:text;not null" json:"name"`
	SerialNumber    string            `gorm:"type:text;uniqueIndex;not null" json:"serialNumber"`
	Quantity        int               `gorm:"not null;default:1" json:"quantity"`
	Category        string            `gorm:"type:text" json:"category"`
	CategoryDetails string            `gorm:"type:text" json:"categoryDetails"`
	Image           string            `gorm:"type:text" json:"image"`
	ScannedCode     string            `gorm:"type:text" json:"scannedCode"`
	Status          string            `gorm:"type:text;default:en_stock" json:"status"`
	ItemType        string            `gorm:"type:text" json:"itemType"`
	Brand           string            `gorm:"type:text" json:"brand"`
	Model           string            `gorm:"type:text" json:"model"`
	CustomData      datatypes.JSONMap `gorm:"type:jsonb" json:"customData"`
	CreatedAt       time.Time         `json:"createdAt"`
	LastUpdated     time.Time         `gorm:"column:last_updated;index" json:"lastUpdated"`
}

func (Item) TableName() string { return "items" }
