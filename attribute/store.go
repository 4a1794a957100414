/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package attribute

import (
	"reflect"
	"sort"

	"github.com/suparena/entitymodel/registry"
)

// Change is one entry of a change set: the value at the last save and the
// current value, both canonical.
type Change struct {
	Old any
	New any
}

// Store holds the canonical attribute values of one record and tracks which of
// them differ from the last saved baseline. It is not safe for concurrent use.
type Store struct {
	schema   *registry.Schema
	values   map[string]any
	baseline map[string]any
	changes  map[string]Change
}

// NewStore creates an empty store whose baseline is empty, so every write is a change.
func NewStore(schema *registry.Schema) *Store {
	return &Store{
		schema:   schema,
		values:   make(map[string]any),
		baseline: make(map[string]any),
		changes:  make(map[string]Change),
	}
}

// Schema returns the schema the store coerces against.
func (s *Store) Schema() *registry.Schema {
	return s.schema
}

// Write coerces value and stores its canonical form. When recordChange is set the
// write is checked strictly and tracked against the baseline; otherwise it is
// treated as trusted data being loaded. A failed write leaves the store unchanged.
func (s *Store) Write(field string, value any, recordChange bool) error {
	canonical := value
	if spec, ok := s.schema.Lookup(field); ok && value != nil {
		var err error
		canonical, err = Setter(spec, value, recordChange)
		if err != nil {
			return err
		}
	}

	s.values[field] = canonical
	if recordChange {
		s.track(field, canonical)
	}
	return nil
}

// Remove unsets field. It is tracked like a write of nil.
func (s *Store) Remove(field string, recordChange bool) {
	s.values[field] = nil
	if recordChange {
		s.track(field, nil)
	}
}

func (s *Store) track(field string, current any) {
	original := s.baseline[field]
	if equalValues(original, current) {
		delete(s.changes, field)
		return
	}
	s.changes[field] = Change{Old: original, New: current}
}

// Read returns the application form of field: the getter coercion of the stored
// value, the declared default when unset, or the raw value for untyped fields.
func (s *Store) Read(field string) (any, error) {
	v := s.values[field]
	spec, ok := s.schema.Lookup(field)
	if !ok {
		return v, nil
	}
	if v == nil {
		return DefaultFor(spec)
	}
	return Getter(spec, v)
}

// DefaultFor returns the application form of spec's default. Collections without an
// explicit default read as empty.
func DefaultFor(spec registry.FieldSpec) (any, error) {
	if spec.Default == nil {
		switch spec.Format {
		case registry.Array:
			return []any{}, nil
		case registry.Set:
			return Set{}, nil
		}
		return nil, nil
	}
	canonical, err := Setter(spec, spec.Default, false)
	if err != nil {
		return nil, err
	}
	return Getter(spec, canonical)
}

// Raw returns the canonical stored value of field.
func (s *Store) Raw(field string) (any, bool) {
	v, ok := s.values[field]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

// Attributes returns a copy of every set canonical value.
func (s *Store) Attributes() map[string]any {
	out := make(map[string]any, len(s.values))
	for k, v := range s.values {
		if v == nil {
			continue
		}
		out[k] = cloneValue(v)
	}
	return out
}

// Changes returns the current change set.
func (s *Store) Changes() map[string]Change {
	out := make(map[string]Change, len(s.changes))
	for k, c := range s.changes {
		out[k] = Change{Old: cloneValue(c.Old), New: cloneValue(c.New)}
	}
	return out
}

// Changed returns the names of changed fields, sorted.
func (s *Store) Changed() []string {
	out := make([]string, 0, len(s.changes))
	for k := range s.changes {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// HasChanges reports whether any field differs from the baseline.
func (s *Store) HasChanges() bool {
	return len(s.changes) > 0
}

// IsChanged reports whether field differs from the baseline.
func (s *Store) IsChanged(field string) bool {
	_, ok := s.changes[field]
	return ok
}

// Was returns the canonical value field had at the last save.
func (s *Store) Was(field string) any {
	return cloneValue(s.baseline[field])
}

// ClearChanges makes the current values the new baseline.
func (s *Store) ClearChanges() {
	s.baseline = make(map[string]any, len(s.values))
	for k, v := range s.values {
		if v == nil {
			continue
		}
		s.baseline[k] = v
	}
	s.changes = make(map[string]Change)
}

// ClearChange drops the change entry of a single field and folds its current value
// into the baseline.
func (s *Store) ClearChange(field string) {
	if v := s.values[field]; v != nil {
		s.baseline[field] = v
	} else {
		delete(s.baseline, field)
	}
	delete(s.changes, field)
}

func equalValues(a, b any) bool {
	if sa, ok := a.(Set); ok {
		if sb, ok := b.(Set); ok {
			return sa.Equal(sb)
		}
		return false
	}
	return reflect.DeepEqual(a, b)
}

func cloneValue(v any) any {
	switch tv := v.(type) {
	case Set:
		return tv.clone()
	case []any:
		out := make([]any, len(tv))
		copy(out, tv)
		return out
	}
	return v
}
