package journal

import (
	"reflect"
	"testing"
)

func snap(fields map[string]string, custom map[string]any) *Snapshot {
	if fields == nil {
		fields = map[string]string{}
	}
	return &Snapshot{Fields: fields, Custom: custom}
}

func TestDiffNewItem(t *testing.T) {
	changes := Diff(nil, FieldSet{Fields: map[string]any{"name": "Drone X", "quantity": 1}})

	if len(changes) != 1 {
		t.Fatalf("got %d changes, want 1", len(changes))
	}
	c := changes[0]
	if c.Field != CreatedField {
		t.Fatalf("field = %q, want %q", c.Field, CreatedField)
	}
	if c.Old != nil {
		t.Fatalf("old = %v, want nil", *c.Old)
	}
	if c.New == nil || *c.New != CreatedMarker {
		t.Fatalf("new = %v, want %q", c.New, CreatedMarker)
	}
}

func TestDiffBuiltinFields(t *testing.T) {
	old := snap(map[string]string{
		"name":     "Drone X",
		"quantity": "1",
		"category": "drone",
	}, nil)

	tests := []struct {
		name       string
		next       FieldSet
		wantFields []string
	}{
		{
			name:       "no-op update",
			next:       FieldSet{Fields: map[string]any{"name": "Drone X", "quantity": 1}},
			wantFields: nil,
		},
		{
			name:       "whitespace and numeric type normalized",
			next:       FieldSet{Fields: map[string]any{"name": "  Drone X  ", "quantity": float64(1)}},
			wantFields: nil,
		},
		{
			name:       "single change",
			next:       FieldSet{Fields: map[string]any{"quantity": 3}},
			wantFields: []string{"quantity"},
		},
		{
			name: "multiple changes in stable order",
			next: FieldSet{Fields: map[string]any{
				"category": "video",
				"name":     "Drone Y",
				"quantity": 2,
			}},
			wantFields: []string{"name", "quantity", "category"},
		},
		{
			name:       "absent field becomes present",
			next:       FieldSet{Fields: map[string]any{"brand": "DJI"}},
			wantFields: []string{"brand"},
		},
		{
			name:       "untouched fields ignored",
			next:       FieldSet{Fields: map[string]any{}},
			wantFields: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			changes := Diff(old, tt.next)
			var fields []string
			for _, c := range changes {
				fields = append(fields, c.Field)
			}
			if !reflect.DeepEqual(fields, tt.wantFields) {
				t.Fatalf("changed fields = %v, want %v", fields, tt.wantFields)
			}
		})
	}
}

func TestDiffChangeValues(t *testing.T) {
	old := snap(map[string]string{"quantity": "1"}, nil)
	changes := Diff(old, FieldSet{Fields: map[string]any{"quantity": 3}})

	if len(changes) != 1 {
		t.Fatalf("got %d changes, want 1", len(changes))
	}
	c := changes[0]
	if c.Old == nil || *c.Old != "1" {
		t.Fatalf("old = %v, want \"1\"", c.Old)
	}
	if c.New == nil || *c.New != "3" {
		t.Fatalf("new = %v, want \"3\"", c.New)
	}
}

func TestDiffCustomData(t *testing.T) {
	old := snap(nil, map[string]any{"couleur": "rouge", "poids": 2})

	changes := Diff(old, FieldSet{Custom: map[string]any{
		"poids":  2,
		"taille": "XL",
	}})

	var fields []string
	for _, c := range changes {
		fields = append(fields, c.Field)
	}
	// Union of keys, sorted, namespaced; unchanged key omitted.
	want := []string{CustomPrefix + "couleur", CustomPrefix + "taille"}
	if !reflect.DeepEqual(fields, want) {
		t.Fatalf("changed fields = %v, want %v", fields, want)
	}

	// couleur was removed.
	if changes[0].Old == nil || *changes[0].Old != "rouge" || changes[0].New != nil {
		t.Fatalf("removed key diff = %+v", changes[0])
	}
	// taille was added.
	if changes[1].Old != nil || changes[1].New == nil || *changes[1].New != "XL" {
		t.Fatalf("added key diff = %+v", changes[1])
	}
}

func TestDiffNilCustomLeavesDataUntouched(t *testing.T) {
	old := snap(nil, map[string]any{"couleur": "rouge"})
	changes := Diff(old, FieldSet{Fields: map[string]any{}})
	if len(changes) != 0 {
		t.Fatalf("got %d changes, want 0", len(changes))
	}
}

func TestStringify(t *testing.T) {
	tests := []struct {
		in      any
		want    string
		wantSet bool
	}{
		{nil, "", false},
		{"  padded  ", "padded", true},
		{"", "", true},
		{42, "42", true},
		{float64(42), "42", true},
		{float64(4.25), "4.25", true},
		{true, "true", true},
	}

	for _, tt := range tests {
		got, set := Stringify(tt.in)
		if got != tt.want || set != tt.wantSet {
			t.Fatalf("Stringify(%#v) = (%q, %v), want (%q, %v)", tt.in, got, set, tt.want, tt.wantSet)
		}
	}
}
