package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

var (
	// ErrNoOpDiff is returned when a diff would record identical old and new values.
	ErrNoOpDiff = errors.New("diff does not change the value")
	// ErrFrozenDiffs is returned when a frozen DiffMap is modified.
	ErrFrozenDiffs = errors.New("diffs are frozen")
)

const (
	diffSeparator  = ","
	valueSeparator = "|"
	keySeparator   = "="
)

// Value is one slot of a Diff. The zero Value is null.
type Value struct {
	value   string
	present bool
}

// Of returns a present value.
func Of(s string) Value {
	return Value{value: s, present: true}
}

// Null returns the null value.
func Null() Value {
	return Value{}
}

// IsPresent reports whether the slot holds a value.
func (v Value) IsPresent() bool { return v.present }

// String returns the raw value, or "" when null.
func (v Value) String() string { return v.value }

// MarshalJSON encodes null slots as JSON null.
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.present {
		return []byte("null"), nil
	}
	return json.Marshal(v.value)
}

// UnmarshalJSON decodes JSON null into a null slot.
func (v *Value) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*v = Null()
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*v = Of(s)
	return nil
}

// Diff is the (old, new) transition of one field.
type Diff struct {
	Old Value `json:"old"`
	New Value `json:"new"`
}

// Changed builds a diff from old to new.
func Changed(oldValue, newValue string) Diff { return Diff{Old: Of(oldValue), New: Of(newValue)} }

// Set builds a diff with no previous value.
func Set(newValue string) Diff { return Diff{New: Of(newValue)} }

// Removed builds a diff whose new value is null.
func Removed(oldValue string) Diff { return Diff{Old: Of(oldValue)} }

// IsNoOp reports whether old and new are identical (including both null).
func (d Diff) IsNoOp() bool {
	return d.Old == d.New
}

// Normalized maps empty values to null. The field diff storage form cannot tell them apart, so
// issue diffs are normalized before their no-op check.
func (d Diff) Normalized() Diff {
	return Diff{Old: emptyToNull(d.Old.String()), New: emptyToNull(d.New.String())}
}

// DiffMap is an insertion-ordered set of field diffs. A name missing from the map means the field
// was not touched; a name mapped to a null slot means the field was explicitly null.
type DiffMap struct {
	entries *orderedmap.OrderedMap[string, Diff]
	frozen  bool
}

// NewDiffMap returns an empty, mutable DiffMap.
func NewDiffMap() *DiffMap {
	return &DiffMap{entries: orderedmap.New[string, Diff]()}
}

// Set records diff under name. Re-setting a name keeps its original position.
func (m *DiffMap) Set(name string, diff Diff) error {
	if m.frozen {
		return ErrFrozenDiffs
	}
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("diff name is required")
	}
	if diff.IsNoOp() {
		return fmt.Errorf("%s: %w", name, ErrNoOpDiff)
	}
	m.entries.Set(name, diff)
	return nil
}

// Get returns the diff recorded for name.
func (m *DiffMap) Get(name string) (Diff, bool) {
	if m == nil {
		return Diff{}, false
	}
	return m.entries.Get(name)
}

// Len returns the number of recorded diffs. A nil map is empty.
func (m *DiffMap) Len() int {
	if m == nil {
		return 0
	}
	return m.entries.Len()
}

// Names returns the recorded names in insertion order.
func (m *DiffMap) Names() []string {
	names := make([]string, 0, m.Len())
	m.Each(func(name string, _ Diff) {
		names = append(names, name)
	})
	return names
}

// Each visits the diffs in insertion order.
func (m *DiffMap) Each(fn func(name string, diff Diff)) {
	if m == nil {
		return
	}
	for pair := m.entries.Oldest(); pair != nil; pair = pair.Next() {
		fn(pair.Key, pair.Value)
	}
}

// Freeze makes the map read-only.
func (m *DiffMap) Freeze() {
	if m != nil {
		m.frozen = true
	}
}

// Frozen reports whether Freeze was called.
func (m *DiffMap) Frozen() bool {
	return m != nil && m.frozen
}

// Encode serialises the map to the storage form "field=old|new,other=new". A missing old value
// is written without the separator; a missing new value leaves the part after "|" empty. Present
// empty values are rejected since they would read back as null.
func (m *DiffMap) Encode() (string, error) {
	parts := make([]string, 0, m.Len())
	var err error
	m.Each(func(name string, diff Diff) {
		if err != nil {
			return
		}
		if diff != diff.Normalized() {
			err = fmt.Errorf("diff %q holds an empty value", name)
			return
		}
		for _, s := range []string{name, diff.Old.String(), diff.New.String()} {
			if strings.ContainsAny(s, diffSeparator+valueSeparator+keySeparator) {
				err = fmt.Errorf("diff %q contains a reserved character", name)
				return
			}
		}
		var b strings.Builder
		b.WriteString(name)
		b.WriteString(keySeparator)
		if diff.Old.IsPresent() {
			b.WriteString(diff.Old.String())
			b.WriteString(valueSeparator)
		}
		b.WriteString(diff.New.String())
		parts = append(parts, b.String())
	})
	if err != nil {
		return "", err
	}
	return strings.Join(parts, diffSeparator), nil
}

// ParseFieldDiffs reads the storage form written by Encode. Empty values are read as null and
// entries that turn out to be no-ops are skipped.
func ParseFieldDiffs(data string) (*DiffMap, error) {
	m := NewDiffMap()
	if strings.TrimSpace(data) == "" {
		return m, nil
	}
	for _, part := range strings.Split(data, diffSeparator) {
		name, values, ok := strings.Cut(part, keySeparator)
		if !ok || name == "" {
			return nil, fmt.Errorf("malformed field diff %q", part)
		}
		var diff Diff
		if oldValue, newValue, hasOld := strings.Cut(values, valueSeparator); hasOld {
			diff = Diff{Old: emptyToNull(oldValue), New: emptyToNull(newValue)}
		} else {
			diff = Diff{New: emptyToNull(values)}
		}
		if diff.IsNoOp() {
			continue
		}
		if err := m.Set(name, diff); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func emptyToNull(s string) Value {
	if s == "" {
		return Null()
	}
	return Of(s)
}
