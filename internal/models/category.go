package models

import "time"

// Category is a user-created item category, on top of the built-in defaults.
type Category struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"type:text;uniqueIndex;not null" json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

func (Category) TableName() string { return "custom_categories" }

// DeletedCategory tombstones a category name so built-in defaults can be
// hidden; creating the same name again reactivates it.
type DeletedCategory struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"type:text;uniqueIndex;not null" json:"name"`
	DeletedAt time.Time `json:"deletedAt"`
}

func (DeletedCategory) TableName() string { return "deleted_categories" }
