package inventory

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"stockd/internal/hub"
	"stockd/internal/models"
)

// RentalInput is a create or full-update request for a rental.
type RentalInput struct {
	RenterName     string          `json:"renterName"`
	RenterEmail    string          `json:"renterEmail"`
	RenterPhone    string          `json:"renterPhone"`
	RenterAddress  string          `json:"renterAddress"`
	RentalPrice    float64         `json:"rentalPrice"`
	RentalDeposit  float64         `json:"rentalDeposit"`
	RentalDuration int             `json:"rentalDuration"`
	StartDate      string          `json:"startDate"`
	EndDate        string          `json:"endDate"`
	Status         string          `json:"status"`
	ItemsData      json.RawMessage `json:"itemsData"`
	Attachments    json.RawMessage `json:"attachments"`
	Notes          string          `json:"notes"`
}

func (in *RentalInput) validate() error {
	switch {
	case strings.TrimSpace(in.RenterName) == "":
		return validationf("renterName is required")
	case strings.TrimSpace(in.RenterEmail) == "":
		return validationf("renterEmail is required")
	case strings.TrimSpace(in.RenterPhone) == "":
		return validationf("renterPhone is required")
	case in.StartDate == "" || in.EndDate == "":
		return validationf("startDate and endDate are required")
	case in.RentalDuration <= 0:
		return validationf("rentalDuration must be positive")
	case len(in.ItemsData) == 0:
		return validationf("itemsData is required")
	}
	return nil
}

func (in *RentalInput) apply(r *models.Rental) {
	r.RenterName = in.RenterName
	r.RenterEmail = in.RenterEmail
	r.RenterPhone = in.RenterPhone
	r.RenterAddress = in.RenterAddress
	r.RentalPrice = in.RentalPrice
	r.RentalDeposit = in.RentalDeposit
	r.RentalDuration = in.RentalDuration
	r.StartDate = in.StartDate
	r.EndDate = in.EndDate
	r.Notes = in.Notes
	r.ItemsData = datatypes.JSON(in.ItemsData)
	if in.Attachments != nil {
		r.Attachments = datatypes.JSON(in.Attachments)
	}
	if in.Status != "" {
		r.Status = in.Status
	}
}

// ListRentals returns rentals newest-start first, optionally filtered by
// status.
func (s *Service) ListRentals(ctx context.Context, status string) ([]models.Rental, error) {
	db := s.orm.WithContext(ctx)
	if status != "" {
		db = db.Where("status = ?", status)
	}
	var out []models.Rental
	err := db.Order("start_date DESC").Find(&out).Error
	return out, err
}

// CreateRental records a new rental.
func (s *Service) CreateRental(ctx context.Context, in RentalInput) (*models.Rental, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	rental := models.Rental{Status: "en_cours"}
	in.apply(&rental)

	if err := s.orm.WithContext(ctx).Create(&rental).Error; err != nil {
		return nil, translate(err)
	}

	s.publish(ctx, hub.EventRentalsChanged, map[string]any{
		"action": ActionCreated,
		"id":     rental.ID,
	})
	return &rental, nil
}

// UpdateRental replaces a rental's fields.
func (s *Service) UpdateRental(ctx context.Context, id int64, in RentalInput) error {
	if err := in.validate(); err != nil {
		return err
	}

	err := s.orm.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rental models.Rental
		if err := tx.First(&rental, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFoundf("rental %d", id)
			}
			return err
		}
		in.apply(&rental)
		rental.UpdatedAt = time.Now().UTC()
		return tx.Save(&rental).Error
	})
	if err != nil {
		return translate(err)
	}

	s.publish(ctx, hub.EventRentalsChanged, map[string]any{
		"action": ActionUpdated,
		"id":     id,
	})
	return nil
}

// DeleteRental removes a rental.
func (s *Service) DeleteRental(ctx context.Context, id int64) error {
	res := s.orm.WithContext(ctx).Delete(&models.Rental{}, id)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return notFoundf("rental %d", id)
	}

	s.publish(ctx, hub.EventRentalsChanged, map[string]any{
		"action": ActionDeleted,
		"id":     id,
	})
	return nil
}

// ListRentalStatuses returns the rental status labels by name.
func (s *Service) ListRentalStatuses(ctx context.Context) ([]models.RentalStatus, error) {
	var out []models.RentalStatus
	err := s.orm.WithContext(ctx).Order("name").Find(&out).Error
	return out, err
}

// CreateRentalStatus adds a new status label.
func (s *Service) CreateRentalStatus(ctx context.Context, name, color string) (*models.RentalStatus, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, validationf("status name is required")
	}
	if color == "" {
		color = "#666"
	}

	status := models.RentalStatus{Name: name, Color: color, CreatedAt: time.Now().UTC()}
	if err := s.orm.WithContext(ctx).Create(&status).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, conflictf("status %q already exists", name)
		}
		return nil, err
	}
	return &status, nil
}
