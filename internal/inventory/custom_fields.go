package inventory

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"stockd/internal/hub"
	"stockd/internal/models"
)

// ValidFieldTypes is the whitelist for custom field definitions.
var ValidFieldTypes = []string{"text", "number", "date", "select", "checkbox", "textarea", "url", "email"}

var fieldKeyStrip = regexp.MustCompile(`[^a-z0-9]+`)

// FieldKey derives the custom-data map key from a field's display name.
func FieldKey(name string) string {
	key := fieldKeyStrip.ReplaceAllString(strings.ToLower(name), "_")
	return strings.Trim(key, "_")
}

func validFieldType(t string) bool {
	for _, v := range ValidFieldTypes {
		if t == v {
			return true
		}
	}
	return false
}

// CustomFieldInput is a create or update request for a field definition.
// Nil pointers leave the corresponding column untouched on update.
type CustomFieldInput struct {
	Name         *string `json:"name"`
	FieldType    *string `json:"fieldType"`
	Options      []any   `json:"options"`
	Required     *bool   `json:"required"`
	DisplayOrder *int    `json:"displayOrder"`
}

// ListCustomFields returns all field definitions in display order.
func (s *Service) ListCustomFields(ctx context.Context) ([]models.CustomField, error) {
	var out []models.CustomField
	err := s.orm.WithContext(ctx).Order("display_order ASC, name ASC").Find(&out).Error
	return out, err
}

// CreateCustomField registers a new field definition. The field key is
// derived from the name; the display order appends after existing fields.
func (s *Service) CreateCustomField(ctx context.Context, in CustomFieldInput) (*models.CustomField, error) {
	if in.Name == nil || strings.TrimSpace(*in.Name) == "" {
		return nil, validationf("field name is required")
	}
	name := strings.TrimSpace(*in.Name)

	fieldType := "text"
	if in.FieldType != nil {
		fieldType = *in.FieldType
	}
	if !validFieldType(fieldType) {
		return nil, validationf("invalid field type %q, valid types: %s", fieldType, strings.Join(ValidFieldTypes, ", "))
	}

	key := FieldKey(name)
	if key == "" {
		return nil, validationf("field name %q yields an empty key", name)
	}

	field := models.CustomField{
		Name:      name,
		FieldKey:  key,
		FieldType: fieldType,
		CreatedAt: time.Now().UTC(),
	}
	if in.Required != nil {
		field.Required = *in.Required
	}
	if in.Options != nil {
		raw, err := json.Marshal(in.Options)
		if err != nil {
			return nil, validationf("options: %v", err)
		}
		field.Options = datatypes.JSON(raw)
	}

	err := s.orm.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var maxOrder int
		if err := tx.Model(&models.CustomField{}).
			Select("COALESCE(MAX(display_order), 0)").Scan(&maxOrder).Error; err != nil {
			return err
		}
		field.DisplayOrder = maxOrder + 1

		if err := tx.Create(&field).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return conflictf("a field named %q already exists", name)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, translate(err)
	}

	s.publish(ctx, hub.EventCustomFieldsChanged, map[string]any{
		"action":  ActionCreated,
		"fieldId": field.ID,
		"name":    field.Name,
	})
	return &field, nil
}

// UpdateCustomField applies a partial update. Renaming also regenerates the
// field key.
func (s *Service) UpdateCustomField(ctx context.Context, id int64, in CustomFieldInput) error {
	updates := map[string]any{}

	if in.Name != nil && strings.TrimSpace(*in.Name) != "" {
		name := strings.TrimSpace(*in.Name)
		updates["name"] = name
		updates["field_key"] = FieldKey(name)
	}
	if in.FieldType != nil {
		if !validFieldType(*in.FieldType) {
			return validationf("invalid field type %q", *in.FieldType)
		}
		updates["field_type"] = *in.FieldType
	}
	if in.Options != nil {
		raw, err := json.Marshal(in.Options)
		if err != nil {
			return validationf("options: %v", err)
		}
		updates["options"] = datatypes.JSON(raw)
	}
	if in.Required != nil {
		updates["required"] = *in.Required
	}
	if in.DisplayOrder != nil {
		updates["display_order"] = *in.DisplayOrder
	}

	if len(updates) == 0 {
		return validationf("nothing to update")
	}

	res := s.orm.WithContext(ctx).Model(&models.CustomField{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return notFoundf("custom field %d", id)
	}

	s.publish(ctx, hub.EventCustomFieldsChanged, map[string]any{
		"action":  ActionUpdated,
		"fieldId": id,
	})
	return nil
}

// DeleteCustomField removes a field definition. Existing item custom data
// under the key is kept.
func (s *Service) DeleteCustomField(ctx context.Context, id int64) error {
	var field models.CustomField
	err := s.orm.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&field, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFoundf("custom field %d", id)
			}
			return err
		}
		return tx.Delete(&field).Error
	})
	if err != nil {
		return translate(err)
	}

	s.publish(ctx, hub.EventCustomFieldsChanged, map[string]any{
		"action":   ActionDeleted,
		"fieldId":  id,
		"fieldKey": field.FieldKey,
	})
	return nil
}
