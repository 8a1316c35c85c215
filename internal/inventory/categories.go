package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"stockd/internal/hub"
	"stockd/internal/models"
	"stockd/internal/notify"
)

// FallbackCategory receives items whose category gets deleted.
const FallbackCategory = "autre"

// CategoryList is the merged view of available category names.
type CategoryList struct {
	Categories []string `json:"categories"`
	Custom     []string `json:"customCategories"`
	Deleted    []string `json:"deletedCategories"`
}

// ListCategories merges the built-in defaults with user-created categories,
// hiding tombstoned names.
func (s *Service) ListCategories(ctx context.Context) (CategoryList, error) {
	db := s.orm.WithContext(ctx)

	var custom []models.Category
	if err := db.Order("name").Find(&custom).Error; err != nil {
		return CategoryList{}, err
	}
	var deleted []models.DeletedCategory
	if err := db.Find(&deleted).Error; err != nil {
		return CategoryList{}, err
	}

	tombstoned := make(map[string]struct{}, len(deleted))
	deletedNames := make([]string, 0, len(deleted))
	for _, d := range deleted {
		tombstoned[d.Name] = struct{}{}
		deletedNames = append(deletedNames, d.Name)
	}

	customNames := make([]string, 0, len(custom))
	for _, c := range custom {
		customNames = append(customNames, c.Name)
	}

	var available []string
	for _, name := range models.DefaultCategories() {
		if _, gone := tombstoned[name]; !gone {
			available = append(available, name)
		}
	}
	for _, name := range customNames {
		if _, gone := tombstoned[name]; !gone {
			available = append(available, name)
		}
	}

	return CategoryList{Categories: available, Custom: customNames, Deleted: deletedNames}, nil
}

// CreateCategory adds a new category. Creating a previously deleted name
// removes its tombstone instead. The reactivated return distinguishes the
// two outcomes.
func (s *Service) CreateCategory(ctx context.Context, name string) (reactivated bool, err error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return false, validationf("category name is required")
	}

	err = s.orm.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("name = ?", name).Delete(&models.DeletedCategory{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			reactivated = true
			return nil
		}

		now := time.Now().UTC()
		if err := tx.Create(&models.Category{Name: name, CreatedAt: now}).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return conflictf("category %q already exists", name)
			}
			return err
		}

		msg := fmt.Sprintf("Category %q added", name)
		_, err := notify.Record(tx, msg, notify.TypeSuccess, nil, now)
		return err
	})
	if err != nil {
		return false, translate(err)
	}

	action := ActionCreated
	if reactivated {
		action = "reactivated"
	}
	s.publish(ctx, hub.EventCategoriesChanged, map[string]any{
		"action":   action,
		"category": name,
	})
	if !reactivated {
		s.publish(ctx, hub.EventNotificationsChanged, nil)
	}
	return reactivated, nil
}

// DeleteCategory tombstones a category and reassigns its items to the
// fallback category, reporting how many items moved.
func (s *Service) DeleteCategory(ctx context.Context, name string) (updated int64, err error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return 0, validationf("category name is required")
	}

	err = s.orm.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()

		var existing int64
		if err := tx.Model(&models.DeletedCategory{}).Where("name = ?", name).Count(&existing).Error; err != nil {
			return err
		}
		if existing == 0 {
			if err := tx.Create(&models.DeletedCategory{Name: name, DeletedAt: now}).Error; err != nil {
				return err
			}
		}

		if err := tx.Where("name = ?", name).Delete(&models.Category{}).Error; err != nil {
			return err
		}

		res := tx.Model(&models.Item{}).
			Where("category = ?", name).
			Updates(map[string]any{"category": FallbackCategory, "last_updated": now})
		if res.Error != nil {
			return res.Error
		}
		updated = res.RowsAffected

		msg := fmt.Sprintf("Category %q deleted, %d item(s) reassigned", name, updated)
		_, err := notify.Record(tx, msg, notify.TypeSuccess, nil, now)
		return err
	})
	if err != nil {
		return 0, translate(err)
	}

	s.publish(ctx, hub.EventItemsChanged, map[string]any{
		"action":       "category_deleted",
		"category":     name,
		"updatedCount": updated,
	})
	s.publish(ctx, hub.EventCategoriesChanged, map[string]any{
		"action":   ActionDeleted,
		"category": name,
	})
	s.publish(ctx, hub.EventNotificationsChanged, nil)
	return updated, nil
}
