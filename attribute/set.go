/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package attribute

import (
	"fmt"
	"reflect"
	"sort"
)

// Set is the canonical form of set fields: an unordered collection without
// duplicates. Elements must be comparable scalars.
type Set map[any]struct{}

// NewSet builds a Set from values. It panics if a value is not comparable,
// exactly like a map insert would.
func NewSet(values ...any) Set {
	s := make(Set, len(values))
	for _, v := range values {
		s.Add(v)
	}
	return s
}

func setFrom(values []any) (Set, error) {
	s := make(Set, len(values))
	for _, v := range values {
		if v != nil && !reflect.TypeOf(v).Comparable() {
			return nil, fmt.Errorf("set elements must be scalars, got %T", v)
		}
		s[v] = struct{}{}
	}
	return s, nil
}

// Add inserts v.
func (s Set) Add(v any) {
	s[v] = struct{}{}
}

// Has reports whether v is in the set.
func (s Set) Has(v any) bool {
	_, ok := s[v]
	return ok
}

// Len returns the number of elements.
func (s Set) Len() int {
	return len(s)
}

// Equal reports whether both sets hold the same elements.
func (s Set) Equal(other Set) bool {
	if len(s) != len(other) {
		return false
	}
	for v := range s {
		if !other.Has(v) {
			return false
		}
	}
	return true
}

// Values returns the elements in a deterministic order: grouped by type, numbers
// ascending, everything else by its printed form.
func (s Set) Values() []any {
	out := make([]any, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool {
		return lessValue(out[i], out[j])
	})
	return out
}

func (s Set) clone() Set {
	out := make(Set, len(s))
	for v := range s {
		out[v] = struct{}{}
	}
	return out
}

func lessValue(a, b any) bool {
	ta, tb := fmt.Sprintf("%T", a), fmt.Sprintf("%T", b)
	if ta != tb {
		return ta < tb
	}
	if fa, ok := asFloat(a); ok {
		fb, _ := asFloat(b)
		return fa < fb
	}
	return fmt.Sprint(a) < fmt.Sprint(b)
}

func asFloat(v any) (float64, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}
