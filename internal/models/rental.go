package models

import (
	"time"

	"gorm.io/datatypes"
)

// Rental records a loan of one or more items to a renter. ItemsData carries
// the rented line items as submitted by the client.
type Rental struct {
	ID             int64          `gorm:"primaryKey" json:"id"`
	RenterName     string         `gorm:"type:text;not null" json:"renterName"`
	RenterEmail    string         `gorm:"type:text;not null" json:"renterEmail"`
	RenterPhone    string         `gorm:"type:text;not null" json:"renterPhone"`
	RenterAddress  string         `gorm:"type:text" json:"renterAddress"`
	RentalPrice    float64        `gorm:"not null" json:"rentalPrice"`
	RentalDeposit  float64        `gorm:"not null" json:"rentalDeposit"`
	RentalDuration int            `gorm:"not null" json:"rentalDuration"`
	StartDate      string         `gorm:"type:text;not null;index" json:"startDate"`
	EndDate        string         `gorm:"type:text;not null;index" json:"endDate"`
	Status         string         `gorm:"type:text;not null;default:en_cours;index" json:"status"`
	ItemsData      datatypes.JSON `gorm:"type:jsonb;not null" json:"itemsData"`
	Attachments    datatypes.JSON `gorm:"type:jsonb" json:"attachments"`
	Notes          string         `gorm:"type:text" json:"notes"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
}

func (Rental) TableName() string { return "rentals" }

// RentalStatus is a user-manageable rental state label with a display color.
type RentalStatus struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"type:text;uniqueIndex;not null" json:"name"`
	Color     string    `gorm:"type:text;default:#666" json:"color"`
	CreatedAt time.Time `json:"createdAt"`
}

func (RentalStatus) TableName() string { return "rental_statuses" }
