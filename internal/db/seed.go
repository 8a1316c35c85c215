package db

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"stockd/internal/models"
)

// Seed inserts baseline rental statuses. Existing rows are left untouched,
// so Seed is safe to run on every start.
func Seed(ctx context.Context, orm *gorm.DB) error {
	seeds, err := models.LoadSeeds()
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	for _, s := range seeds.RentalStatuses {
		status := models.RentalStatus{Name: s.Name, Color: s.Color, CreatedAt: now}
		err := orm.WithContext(ctx).
			Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}).
			Create(&status).Error
		if err != nil {
			return err
		}
	}
	return nil
}
