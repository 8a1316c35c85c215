// Package notify turns change records into bounded, human-readable
// notification rows. Insertion and retention pruning run on the caller's
// transaction so a rolled-back mutation leaves no notification behind.
package notify

import (
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"gorm.io/gorm"

	"stockd/internal/journal"
	"stockd/internal/models"
)

// RetentionCap is the maximum number of notification rows kept; insertion
// beyond the cap evicts the oldest rows in the same transaction.
const RetentionCap = 100

// DefaultListLimit bounds a list request that does not name its own limit.
const DefaultListLimit = 50

// Notification category tags.
const (
	TypeSuccess = "success"
	TypeInfo    = "info"
)

var prunedTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "stockd_notifications_pruned_total",
	Help: "Notification rows evicted by the retention cap.",
})

var builtinLabels = map[string]string{
	"name":            "name",
	"quantity":        "quantity",
	"category":        "category",
	"categoryDetails": "category details",
	"image":           "image",
	"scannedCode":     "scanned code",
	"serialNumber":    "serial number",
	"status":          "status",
	"itemType":        "item type",
	"brand":           "brand",
	"model":           "model",
}

// FieldLabel resolves the human label for a change-record field name.
// customLabels maps registered custom field keys to their display names.
func FieldLabel(field string, customLabels map[string]string) string {
	if key, ok := strings.CutPrefix(field, journal.CustomPrefix); ok {
		if label, ok := customLabels[key]; ok {
			return label
		}
		return key
	}
	if label, ok := builtinLabels[field]; ok {
		return label
	}
	return field
}

// ComposeChange builds the notification text for one change of the named
// item. The exact wording is presentation detail; it always references the
// item and the changed values.
func ComposeChange(itemName string, c journal.Change, customLabels map[string]string) string {
	switch c.Field {
	case journal.CreatedField:
		return fmt.Sprintf("Item %q created", itemName)
	case journal.DeletedField:
		return fmt.Sprintf("Item %q deleted", itemName)
	case "quantity":
		return fmt.Sprintf("Item %q: quantity changed from %s to %s",
			itemName, orNone(c.Old), orNone(c.New))
	case "name":
		oldName := itemName
		if c.Old != nil {
			oldName = *c.Old
		}
		return fmt.Sprintf("Item %q renamed to %q", oldName, deref(c.New))
	case "category":
		return fmt.Sprintf("Item %q: category changed from %q to %q",
			itemName, orNoneBare(c.Old), deref(c.New))
	default:
		return fmt.Sprintf("Item %q: %s changed from %q to %q",
			itemName, FieldLabel(c.Field, customLabels), orNoneBare(c.Old), deref(c.New))
	}
}

// ComposeMerge is the wording used when a repeated serial number merges into
// an existing item's quantity.
func ComposeMerge(itemName string, oldQty, newQty int) string {
	return fmt.Sprintf("Item %q: quantity changed from %d to %d", itemName, oldQty, newQty)
}

// Record inserts a notification and prunes past the retention cap, both on
// tx. Message text is coerced to storable form rather than failing.
func Record(tx *gorm.DB, message, typ string, serial *string, at time.Time) (*models.Notification, error) {
	n := &models.Notification{
		Message:          Sanitize(message),
		Type:             typ,
		ItemSerialNumber: serial,
		CreatedAt:        at,
	}
	if err := tx.Create(n).Error; err != nil {
		return nil, err
	}

	res := tx.Exec(`
DELETE FROM notifications
WHERE id NOT IN (
    SELECT id FROM notifications
    ORDER BY created_at DESC, id DESC
    LIMIT ?
)`, RetentionCap)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected > 0 {
		prunedTotal.Add(float64(res.RowsAffected))
	}

	return n, nil
}

// List returns up to limit notifications, newest first.
func List(db *gorm.DB, limit int) ([]models.Notification, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > RetentionCap {
		limit = RetentionCap
	}
	var out []models.Notification
	err := db.Order("created_at DESC, id DESC").Limit(limit).Find(&out).Error
	return out, err
}

// Delete removes one notification. Returns gorm.ErrRecordNotFound when the
// id does not exist.
func Delete(db *gorm.DB, id int64) error {
	res := db.Delete(&models.Notification{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Clear removes all notifications and reports how many were deleted.
func Clear(db *gorm.DB) (int64, error) {
	res := db.Where("1 = 1").Delete(&models.Notification{})
	return res.RowsAffected, res.Error
}

// Sanitize makes message text safe to store: invalid UTF-8 sequences are
// substituted and NUL bytes stripped (postgres text columns reject them).
func Sanitize(s string) string {
	s = strings.ToValidUTF8(s, "�")
	return strings.ReplaceAll(s, "\x00", "")
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func orNone(s *string) string {
	if s == nil || *s == "" {
		return "0"
	}
	return *s
}

func orNoneBare(s *string) string {
	if s == nil || *s == "" {
		return "none"
	}
	return *s
}
