/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package attribute

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/go-openapi/strfmt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suparena/entitymodel/errors"
	"github.com/suparena/entitymodel/registry"
)

func mustDeclare(t *testing.T, name string, format registry.Format, opts ...registry.FieldOption) registry.FieldSpec {
	t.Helper()
	spec, err := registry.Declare(name, format, opts...)
	require.NoError(t, err)
	return spec
}

func roundTrip(t *testing.T, spec registry.FieldSpec, v any) any {
	t.Helper()
	canonical, err := Setter(spec, v, true)
	require.NoError(t, err)
	out, err := Getter(spec, canonical)
	require.NoError(t, err)
	return out
}

func TestSetterCanonicalForms(t *testing.T) {
	when := time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)

	tests := []struct {
		name   string
		spec   registry.FieldSpec
		input  any
		expect any
	}{
		{"integer from int", mustDeclare(t, "n", registry.Integer), 7, int64(7)},
		{"integer truncates float", mustDeclare(t, "n", registry.Integer), 7.9, int64(7)},
		{"integer parses string", mustDeclare(t, "n", registry.Integer), "42", int64(42)},
		{"integer parses float string", mustDeclare(t, "n", registry.Integer), "42.7", int64(42)},
		{"integer from json number", mustDeclare(t, "n", registry.Integer), json.Number("12"), int64(12)},
		{"float from int", mustDeclare(t, "f", registry.Float), 3, float64(3)},
		{"float parses string", mustDeclare(t, "f", registry.Float), "9.99", 9.99},
		{"string from int", mustDeclare(t, "s", registry.String), 12, "12"},
		{"string from symbol", mustDeclare(t, "s", registry.String), Symbol("abc"), "abc"},
		{"symbol stored as string", mustDeclare(t, "y", registry.Symbol), Symbol("draft"), "draft"},
		{"boolean identity", mustDeclare(t, "b", registry.Boolean), true, true},
		{"time from time.Time", mustDeclare(t, "t", registry.Time), when, float64(when.Unix())},
		{"time from strfmt.DateTime", mustDeclare(t, "t", registry.Time), strfmt.DateTime(when), float64(when.Unix())},
		{"time from RFC3339", mustDeclare(t, "t", registry.Time), "2024-03-15T10:30:00Z", float64(when.Unix())},
		{"time from epoch", mustDeclare(t, "t", registry.Time), 1700000000, float64(1700000000)},
		{"date drops time of day", mustDeclare(t, "d", registry.Date), when, float64(time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC).Unix())},
		{"date from full-date string", mustDeclare(t, "d", registry.Date), "2024-03-15", float64(time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC).Unix())},
		{"array from strings", mustDeclare(t, "a", registry.Array), []string{"a", "b"}, []any{"a", "b"}},
		{"array with element format", mustDeclare(t, "a", registry.Array, registry.Of(registry.Integer)), []string{"1", "2"}, []any{int64(1), int64(2)}},
		{"set deduplicates", mustDeclare(t, "s", registry.Set), []string{"a", "a", "b"}, NewSet("a", "b")},
		{"set with element format", mustDeclare(t, "s", registry.Set, registry.Of(registry.Float)), []int{1, 1, 2}, NewSet(1.0, 2.0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Setter(tt.spec, tt.input, true)
			require.NoError(t, err)
			assert.Equal(t, tt.expect, got)
		})
	}
}

func TestRoundTrips(t *testing.T) {
	t.Run("Scalars", func(t *testing.T) {
		assert.Equal(t, int64(5), roundTrip(t, mustDeclare(t, "n", registry.Integer), 5))
		assert.Equal(t, 2.5, roundTrip(t, mustDeclare(t, "f", registry.Float), 2.5))
		assert.Equal(t, "x", roundTrip(t, mustDeclare(t, "s", registry.String), "x"))
		assert.Equal(t, Symbol("open"), roundTrip(t, mustDeclare(t, "y", registry.Symbol), "open"))
		assert.Equal(t, false, roundTrip(t, mustDeclare(t, "b", registry.Boolean), false))
	})

	t.Run("Time", func(t *testing.T) {
		now := time.Date(2025, 6, 1, 12, 0, 0, 123456000, time.FixedZone("CEST", 2*3600))
		got := roundTrip(t, mustDeclare(t, "t", registry.Time), now)
		gotTime, ok := got.(time.Time)
		require.True(t, ok, "expected time.Time, got %T", got)
		assert.WithinDuration(t, now, gotTime, time.Millisecond)
		assert.Equal(t, time.UTC, gotTime.Location())
	})

	t.Run("Date", func(t *testing.T) {
		late := time.Date(2025, 6, 1, 23, 59, 59, 0, time.FixedZone("EST", -5*3600))
		got := roundTrip(t, mustDeclare(t, "d", registry.Date), late)
		d, ok := got.(strfmt.Date)
		require.True(t, ok, "expected strfmt.Date, got %T", got)
		assert.Equal(t, "2025-06-01", d.String(), "calendar date in the value's own zone is kept")

		got = roundTrip(t, mustDeclare(t, "d", registry.Date), strfmt.Date(time.Date(2020, 2, 29, 0, 0, 0, 0, time.UTC)))
		assert.Equal(t, "2020-02-29", got.(strfmt.Date).String())
	})

	t.Run("Collections", func(t *testing.T) {
		arr := roundTrip(t, mustDeclare(t, "a", registry.Array, registry.Of(registry.Symbol)), []string{"a", "b"})
		assert.Equal(t, []any{Symbol("a"), Symbol("b")}, arr)

		set := roundTrip(t, mustDeclare(t, "s", registry.Set, registry.Of(registry.Integer)), []any{1, "1", 2.0})
		assert.Equal(t, NewSet(int64(1), int64(2)), set)
	})
}

func TestSetterRejectsNonEnumerable(t *testing.T) {
	for _, format := range []registry.Format{registry.Array, registry.Set} {
		spec := mustDeclare(t, "tags", format)
		_, err := Setter(spec, "scalar", true)
		require.Error(t, err)
		assert.True(t, errors.IsTypeError(err), "expected TypeError, got %v", err)
		assert.Contains(t, err.Error(), nonEnumerableMessage)
	}
}

func TestGetterWrapsScalars(t *testing.T) {
	got, err := Getter(mustDeclare(t, "a", registry.Array), "only")
	require.NoError(t, err)
	assert.Equal(t, []any{"only"}, got)

	got, err = Getter(mustDeclare(t, "s", registry.Set), "only")
	require.NoError(t, err)
	assert.Equal(t, NewSet("only"), got)

	got, err = Setter(mustDeclare(t, "a", registry.Array), "loaded", false)
	require.NoError(t, err)
	assert.Equal(t, []any{"loaded"}, got, "non-strict setter wraps trusted data")
}

func TestSetterRejectsUnparseableScalars(t *testing.T) {
	tests := []struct {
		spec  registry.FieldSpec
		input any
	}{
		{mustDeclare(t, "n", registry.Integer), "abc"},
		{mustDeclare(t, "n", registry.Integer), true},
		{mustDeclare(t, "n", registry.Integer), 9223372036854775808.0},
		{mustDeclare(t, "n", registry.Integer), "9223372036854775808"},
		{mustDeclare(t, "n", registry.Integer), -9223372036854777856.0},
		{mustDeclare(t, "f", registry.Float), map[string]int{}},
		{mustDeclare(t, "t", registry.Time), "yesterday"},
		{mustDeclare(t, "t", registry.Time), ""},
		{mustDeclare(t, "a", registry.Array, registry.Of(registry.Integer)), []string{"1", "x"}},
		{mustDeclare(t, "s", registry.Set), [][]int{{1}}},
	}

	for _, tt := range tests {
		t.Run(tt.spec.Name, func(t *testing.T) {
			_, err := Setter(tt.spec, tt.input, true)
			require.Error(t, err)
			assert.True(t, errors.IsTypeError(err), "expected TypeError, got %v", err)
		})
	}
}

func TestNilPassesThrough(t *testing.T) {
	got, err := Setter(mustDeclare(t, "n", registry.Integer), nil, true)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestElements(t *testing.T) {
	_, ok := Elements("string")
	assert.False(t, ok, "strings are scalars")
	_, ok = Elements([]byte("raw"))
	assert.False(t, ok, "byte slices are scalars")
	_, ok = Elements(map[string]int{"a": 1})
	assert.False(t, ok, "maps are not enumerable")

	got, ok := Elements([2]int{1, 2})
	require.True(t, ok)
	assert.Equal(t, []any{1, 2}, got)

	got, ok = Elements(NewSet(2, 1))
	require.True(t, ok)
	assert.Equal(t, []any{1, 2}, got)
}
