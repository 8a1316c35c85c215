// Package journal computes field-level differences between an item's prior
// and requested state. The diff is pure; persisting the resulting change
// records stays with the owning transaction in the inventory engine.
package journal

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

const (
	// CreatedField is the synthetic field name recorded when an item first
	// appears.
	CreatedField = "created"
	// DeletedField is the synthetic field name recorded on hard delete.
	DeletedField = "deleted"
	// CreatedMarker is the fixed new-value of the creation record.
	CreatedMarker = "item created"
	// CustomPrefix namespaces custom-data keys so they cannot collide with
	// built-in field names in the audit trail.
	CustomPrefix = "custom."
)

// BuiltinFields is the stable emission order for built-in item fields.
// Custom-data keys follow, sorted lexicographically.
var BuiltinFields = []string{
	"name",
	"quantity",
	"category",
	"categoryDetails",
	"image",
	"scannedCode",
	"serialNumber",
	"status",
	"itemType",
	"brand",
	"model",
}

// Change is one detected field difference. Old is nil when the field had no
// prior value; New is nil when the field was cleared.
type Change struct {
	Field string
	Old   *string
	New   *string
}

// Snapshot is the stringified prior state of an item. Fields holds built-in
// values by API field name; absent keys mean the field was unset. Custom
// holds the raw custom-data map.
type Snapshot struct {
	Fields map[string]string
	Custom map[string]any
}

// FieldSet is the requested new state. Only fields present in the request
// appear in Fields; a nil Custom leaves custom data untouched, a non-nil one
// (possibly empty) replaces it.
type FieldSet struct {
	Fields map[string]any
	Custom map[string]any
}

// Created returns the synthetic change emitted for a brand-new item.
func Created() Change {
	marker := CreatedMarker
	return Change{Field: CreatedField, New: &marker}
}

// Diff returns the changes needed to go from old to next, in stable field
// order. A nil old snapshot yields exactly the synthetic creation change.
// A request whose values all match the snapshot yields no changes.
func Diff(old *Snapshot, next FieldSet) []Change {
	if old == nil {
		return []Change{Created()}
	}

	var changes []Change

	for _, field := range BuiltinFields {
		raw, requested := next.Fields[field]
		if !requested {
			continue
		}
		newVal, newSet := Stringify(raw)
		oldVal, oldSet := old.Fields[field]
		if oldSet == newSet && oldVal == newVal {
			continue
		}
		changes = append(changes, change(field, oldVal, oldSet, newVal, newSet))
	}

	if next.Custom != nil {
		changes = append(changes, diffCustom(old.Custom, next.Custom)...)
	}

	return changes
}

func diffCustom(old, next map[string]any) []Change {
	keys := make(map[string]struct{}, len(old)+len(next))
	for k := range old {
		keys[k] = struct{}{}
	}
	for k := range next {
		keys[k] = struct{}{}
	}

	ordered := make([]string, 0, len(keys))
	for k := range keys {
		ordered = append(ordered, k)
	}
	sort.Strings(ordered)

	var changes []Change
	for _, key := range ordered {
		oldVal, oldSet := Stringify(old[key])
		newVal, newSet := Stringify(next[key])
		if oldSet == newSet && oldVal == newVal {
			continue
		}
		changes = append(changes, change(CustomPrefix+key, oldVal, oldSet, newVal, newSet))
	}
	return changes
}

func change(field, oldVal string, oldSet bool, newVal string, newSet bool) Change {
	c := Change{Field: field}
	if oldSet {
		v := oldVal
		c.Old = &v
	}
	if newSet {
		v := newVal
		c.New = &v
	}
	return c
}

// Stringify normalizes a value to its audit-trail string form. The second
// return is false for nil values, which count as "unset". Numbers decoded
// from JSON arrive as float64 and are rendered without a trailing ".0" when
// integral, so 3 and 3.0 compare equal.
func Stringify(v any) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", false
	case string:
		return strings.TrimSpace(t), true
	case bool:
		return strconv.FormatBool(t), true
	case int:
		return strconv.Itoa(t), true
	case int64:
		return strconv.FormatInt(t, 10), true
	case float64:
		if t == float64(int64(t)) {
			return strconv.FormatInt(int64(t), 10), true
		}
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case float32:
		return Stringify(float64(t))
	default:
		return strings.TrimSpace(fmt.Sprint(t)), true
	}
}
