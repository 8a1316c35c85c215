package inventory

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"stockd/internal/hub"
	"stockd/internal/journal"
	"stockd/internal/models"
	"stockd/internal/notify"
)

// DefaultStatus is assigned to newly created items.
const DefaultStatus = "en_stock"

// Mutation action tags carried in items_changed event payloads.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// ItemInput is a create-or-merge request. A repeated serial number merges
// into the existing item by adding to its quantity instead of creating a
// duplicate.
type ItemInput struct {
	Name            string         `json:"name"`
	SerialNumber    string         `json:"serialNumber"`
	Quantity        *int           `json:"quantity"`
	Category        *string        `json:"category"`
	CategoryDetails *string        `json:"categoryDetails"`
	Image           *string        `json:"image"`
	ScannedCode     *string        `json:"scannedCode"`
	ItemType        *string        `json:"itemType"`
	Brand           *string        `json:"brand"`
	Model           *string        `json:"model"`
	CustomData      map[string]any `json:"customData"`
}

// UpdateRequest carries the fields present in an item update. Fields holds
// built-in values by API field name; absent keys stay untouched. A nil
// Custom leaves custom data as is, a non-nil one replaces it.
type UpdateRequest struct {
	Fields map[string]any
	Custom map[string]any
}

// MutationResult describes the outcome of an accepted item mutation.
type MutationResult struct {
	ItemID       int64  `json:"id"`
	Code         string `json:"itemId"`
	SerialNumber string `json:"serialNumber"`
	Action       string `json:"action"`
	ChangeCount  int    `json:"changeCount"`
}

// CreateOrMerge creates a new item for an unseen serial number, allocating
// its code inside the same transaction, or merges a repeated serial number
// into the existing item's quantity. On a duplicate-code conflict from a
// concurrent replica the allocation is retried once.
func (s *Service) CreateOrMerge(ctx context.Context, in ItemInput) (MutationResult, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.SerialNumber = strings.TrimSpace(in.SerialNumber)
	if in.Name == "" || in.SerialNumber == "" {
		return MutationResult{}, validationf("name and serialNumber are required")
	}
	qty := 1
	if in.Quantity != nil {
		qty = *in.Quantity
	}
	if qty < 1 {
		return MutationResult{}, validationf("quantity must be positive, got %d", qty)
	}

	s.allocMu.Lock()
	defer s.allocMu.Unlock()

	res, err := s.createOrMergeTx(ctx, in, qty)
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// Another replica won the code; re-read the sequence and retry once.
		res, err = s.createOrMergeTx(ctx, in, qty)
	}
	if err != nil {
		return MutationResult{}, translate(err)
	}

	s.publish(ctx, hub.EventItemsChanged, map[string]any{
		"action":       res.Action,
		"id":           res.ItemID,
		"serialNumber": res.SerialNumber,
	})
	s.publish(ctx, hub.EventNotificationsChanged, nil)

	return res, nil
}

func (s *Service) createOrMergeTx(ctx context.Context, in ItemInput, qty int) (MutationResult, error) {
	var res MutationResult
	now := time.Now().UTC()

	err := s.orm.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Item
		err := tx.Where("serial_number = ?", in.SerialNumber).First(&existing).Error
		switch {
		case err == nil:
			return s.mergeExisting(tx, &existing, in, qty, now, &res)
		case errors.Is(err, gorm.ErrRecordNotFound):
			return s.createNew(tx, in, qty, now, &res)
		default:
			return err
		}
	})
	return res, err
}

func (s *Service) createNew(tx *gorm.DB, in ItemInput, qty int, now time.Time, res *MutationResult) error {
	last, err := s.lastCode(tx)
	if err != nil {
		return err
	}
	code := s.alloc.Next(last)

	item := models.Item{
		ItemID:       code,
		Name:         in.Name,
		SerialNumber: in.SerialNumber,
		Quantity:     qty,
		Status:       DefaultStatus,
		ScannedCode:  in.SerialNumber,
		CreatedAt:    now,
		LastUpdated:  now,
	}
	applyOptional(&item, in)
	if in.CustomData != nil {
		item.CustomData = datatypes.JSONMap(in.CustomData)
	}

	if err := tx.Create(&item).Error; err != nil {
		return err
	}

	created := journal.Created()
	record := models.ChangeRecord{
		ItemSerialNumber: item.SerialNumber,
		FieldName:        created.Field,
		OldValue:         created.Old,
		NewValue:         created.New,
		ChangedAt:        now,
	}
	if err := tx.Create(&record).Error; err != nil {
		return err
	}

	msg := notify.ComposeChange(item.Name, created, nil)
	if _, err := notify.Record(tx, msg, notify.TypeSuccess, &item.SerialNumber, now); err != nil {
		return err
	}

	*res = MutationResult{
		ItemID:       item.ID,
		Code:         item.ItemID,
		SerialNumber: item.SerialNumber,
		Action:       ActionCreated,
		ChangeCount:  1,
	}
	return nil
}

func (s *Service) mergeExisting(tx *gorm.DB, item *models.Item, in ItemInput, addQty int, now time.Time, res *MutationResult) error {
	oldQty := item.Quantity
	newQty := oldQty + addQty

	oldStr := strconv.Itoa(oldQty)
	newStr := strconv.Itoa(newQty)
	record := models.ChangeRecord{
		ItemSerialNumber: item.SerialNumber,
		FieldName:        "quantity",
		OldValue:         &oldStr,
		NewValue:         &newStr,
		ChangedAt:        now,
	}
	if err := tx.Create(&record).Error; err != nil {
		return err
	}

	item.Name = in.Name
	item.Quantity = newQty
	applyOptional(item, in)
	if in.CustomData != nil {
		item.CustomData = datatypes.JSONMap(in.CustomData)
	}
	item.LastUpdated = now

	if err := tx.Save(item).Error; err != nil {
		return err
	}

	msg := notify.ComposeMerge(item.Name, oldQty, newQty)
	if _, err := notify.Record(tx, msg, notify.TypeSuccess, &item.SerialNumber, now); err != nil {
		return err
	}

	*res = MutationResult{
		ItemID:       item.ID,
		Code:         item.ItemID,
		SerialNumber: item.SerialNumber,
		Action:       ActionUpdated,
		ChangeCount:  1,
	}
	return nil
}

func applyOptional(item *models.Item, in ItemInput) {
	if in.Category != nil {
		item.Category = *in.Category
	}
	if in.CategoryDetails != nil {
		item.CategoryDetails = *in.CategoryDetails
	}
	if in.Image != nil {
		item.Image = *in.Image
	}
	if in.ScannedCode != nil {
		item.ScannedCode = *in.ScannedCode
	}
	if in.ItemType != nil {
		item.ItemType = *in.ItemType
	}
	if in.Brand != nil {
		item.Brand = *in.Brand
	}
	if in.Model != nil {
		item.Model = *in.Model
	}
}

// UpdateItem applies a partial update to the item identified by serial. It
// returns the number of persisted change records; a request whose values
// all match current state is a no-op that writes and publishes nothing.
func (s *Service) UpdateItem(ctx context.Context, serial string, req UpdateRequest) (int, error) {
	if err := validateUpdate(req); err != nil {
		return 0, err
	}

	finalSerial := serial
	changeCount := 0

	err := s.orm.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var item models.Item
		if err := tx.Where("serial_number = ?", serial).First(&item).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFoundf("item %q", serial)
			}
			return err
		}

		snap := snapshotOf(&item)
		changes := journal.Diff(&snap, journal.FieldSet{Fields: req.Fields, Custom: req.Custom})
		if len(changes) == 0 {
			return nil
		}

		now := time.Now().UTC()

		// A serial rename re-keys the whole audit trail before any new
		// records are appended under the new key.
		if raw, ok := req.Fields["serialNumber"]; ok {
			newSerial, _ := journal.Stringify(raw)
			if newSerial != "" && newSerial != serial {
				var clash int64
				if err := tx.Model(&models.Item{}).
					Where("serial_number = ?", newSerial).Count(&clash).Error; err != nil {
					return err
				}
				if clash > 0 {
					return conflictf("serial number %q already in use", newSerial)
				}
				if err := tx.Model(&models.ChangeRecord{}).
					Where("item_serial_number = ?", serial).
					Update("item_serial_number", newSerial).Error; err != nil {
					return err
				}
				finalSerial = newSerial
			}
		}

		labels, err := customLabels(tx, customKeys(changes))
		if err != nil {
			return err
		}

		itemName := item.Name
		for _, c := range changes {
			record := models.ChangeRecord{
				ItemSerialNumber: finalSerial,
				FieldName:        c.Field,
				OldValue:         c.Old,
				NewValue:         c.New,
				ChangedAt:        now,
			}
			if err := tx.Create(&record).Error; err != nil {
				return err
			}
			msg := notify.ComposeChange(itemName, c, labels)
			if _, err := notify.Record(tx, msg, notify.TypeSuccess, &finalSerial, now); err != nil {
				return err
			}
		}

		applyChanges(&item, changes, req.Custom)
		item.SerialNumber = finalSerial
		item.LastUpdated = now
		if err := tx.Save(&item).Error; err != nil {
			return err
		}

		changeCount = len(changes)
		return nil
	})
	if err != nil {
		return 0, translate(err)
	}

	if changeCount > 0 {
		s.publish(ctx, hub.EventItemsChanged, map[string]any{
			"action":       ActionUpdated,
			"serialNumber": finalSerial,
		})
		s.publish(ctx, hub.EventNotificationsChanged, nil)
	}
	return changeCount, nil
}

func validateUpdate(req UpdateRequest) error {
	if raw, ok := req.Fields["quantity"]; ok {
		str, set := journal.Stringify(raw)
		if !set {
			return validationf("quantity cannot be null")
		}
		qty, err := strconv.Atoi(str)
		if err != nil {
			return validationf("quantity must be an integer, got %q", str)
		}
		if qty < 0 {
			return validationf("quantity must be non-negative, got %d", qty)
		}
	}
	if raw, ok := req.Fields["serialNumber"]; ok {
		str, _ := journal.Stringify(raw)
		if str == "" {
			return validationf("serialNumber cannot be empty")
		}
	}
	if raw, ok := req.Fields["name"]; ok {
		str, _ := journal.Stringify(raw)
		if str == "" {
			return validationf("name cannot be empty")
		}
	}
	return nil
}

// DeleteItem hard-deletes the item with the given serial number. The audit
// trail is retained under the item's serial.
func (s *Service) DeleteItem(ctx context.Context, serial string) error {
	var name string

	err := s.orm.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var item models.Item
		if err := tx.Where("serial_number = ?", serial).First(&item).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFoundf("item %q", serial)
			}
			return err
		}
		name = item.Name

		if err := tx.Delete(&item).Error; err != nil {
			return err
		}

		now := time.Now().UTC()
		msg := notify.ComposeChange(name, journal.Change{Field: journal.DeletedField}, nil)
		_, err := notify.Record(tx, msg, notify.TypeSuccess, &serial, now)
		return err
	})
	if err != nil {
		return translate(err)
	}

	s.publish(ctx, hub.EventItemsChanged, map[string]any{
		"action":       ActionDeleted,
		"serialNumber": serial,
	})
	s.publish(ctx, hub.EventNotificationsChanged, nil)
	return nil
}

// ItemHistory returns the newest change records for a serial number.
func (s *Service) ItemHistory(ctx context.Context, serial string, limit int) ([]models.ChangeRecord, error) {
	if limit <= 0 {
		limit = 10
	}
	var out []models.ChangeRecord
	err := s.orm.WithContext(ctx).
		Where("item_serial_number = ?", serial).
		Order("changed_at DESC, id DESC").
		Limit(limit).
		Find(&out).Error
	return out, err
}

// snapshotOf stringifies an item's current state for diffing. Optional text
// fields that are empty count as unset so notifications can phrase them as
// newly set.
func snapshotOf(item *models.Item) journal.Snapshot {
	fields := map[string]string{
		"name":         item.Name,
		"quantity":     strconv.Itoa(item.Quantity),
		"serialNumber": item.SerialNumber,
		"status":       item.Status,
	}
	optional := map[string]string{
		"category":        item.Category,
		"categoryDetails": item.CategoryDetails,
		"image":           item.Image,
		"scannedCode":     item.ScannedCode,
		"itemType":        item.ItemType,
		"brand":           item.Brand,
		"model":           item.Model,
	}
	for k, v := range optional {
		if v != "" {
			fields[k] = v
		}
	}
	return journal.Snapshot{Fields: fields, Custom: item.CustomData}
}

func applyChanges(item *models.Item, changes []journal.Change, custom map[string]any) {
	for _, c := range changes {
		val := ""
		if c.New != nil {
			val = *c.New
		}
		switch c.Field {
		case "name":
			item.Name = val
		case "quantity":
			if qty, err := strconv.Atoi(val); err == nil {
				item.Quantity = qty
			}
		case "category":
			item.Category = val
		case "categoryDetails":
			item.CategoryDetails = val
		case "image":
			item.Image = val
		case "scannedCode":
			item.ScannedCode = val
		case "status":
			item.Status = val
		case "itemType":
			item.ItemType = val
		case "brand":
			item.Brand = val
		case "model":
			item.Model = val
		}
	}
	if custom != nil {
		item.CustomData = datatypes.JSONMap(custom)
	}
}

func customKeys(changes []journal.Change) []string {
	var keys []string
	for _, c := range changes {
		if key, ok := strings.CutPrefix(c.Field, journal.CustomPrefix); ok {
			keys = append(keys, key)
		}
	}
	return keys
}
