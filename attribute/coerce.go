/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package attribute

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-openapi/strfmt"

	"github.com/suparena/entitymodel/errors"
	"github.com/suparena/entitymodel/registry"
)

// Symbol is the application form of symbol fields. Its canonical form is a string.
type Symbol string

func (s Symbol) String() string {
	return string(s)
}

const nonEnumerableMessage = "cannot write non-enumerable value to an enumerable field"

type convertFunc func(v any) (any, error)

// setters map application values to their canonical stored form.
var setters = map[registry.Format]convertFunc{
	registry.Integer: func(v any) (any, error) { return toInt64(v) },
	registry.Float:   func(v any) (any, error) { return toFloat64(v) },
	registry.String:  func(v any) (any, error) { return toString(v), nil },
	registry.Symbol:  func(v any) (any, error) { return toString(v), nil },
	registry.Boolean: func(v any) (any, error) { return v, nil },
	registry.Time:    func(v any) (any, error) { return timeToEpoch(v) },
	registry.Date:    func(v any) (any, error) { return dateToEpoch(v) },
}

// getters map canonical stored values to the form application code reads.
var getters = map[registry.Format]convertFunc{
	registry.Integer: func(v any) (any, error) { return toInt64(v) },
	registry.Float:   func(v any) (any, error) { return toFloat64(v) },
	registry.String:  func(v any) (any, error) { return toString(v), nil },
	registry.Symbol:  func(v any) (any, error) { return Symbol(toString(v)), nil },
	registry.Boolean: func(v any) (any, error) { return v, nil },
	registry.Time:    func(v any) (any, error) { return epochToTime(v) },
	registry.Date:    func(v any) (any, error) { return epochToDate(v) },
}

// Setter converts v to the canonical form of spec's format. With strict set, a
// non-enumerable value for an array or set field is a TypeError; otherwise the
// value is wrapped as a one-element collection. nil is returned unchanged.
func Setter(spec registry.FieldSpec, v any, strict bool) (any, error) {
	return convert(spec, v, setters, strict)
}

// Getter converts a canonical stored value to its application form. Stored data is
// trusted: scalars in collection fields are wrapped, never rejected.
func Getter(spec registry.FieldSpec, v any) (any, error) {
	return convert(spec, v, getters, false)
}

func convert(spec registry.FieldSpec, v any, table map[registry.Format]convertFunc, strict bool) (any, error) {
	if v == nil {
		return nil, nil
	}

	if !spec.Format.IsCollection() {
		fn, ok := table[spec.Format]
		if !ok {
			return nil, errors.NewConfigurationError(spec.Name, fmt.Sprintf("unsupported data type %s", spec.Format))
		}
		out, err := fn(v)
		if err != nil {
			return nil, errors.NewTypeError(spec.Name, spec.Format.String(), err.Error())
		}
		return out, nil
	}

	elems, ok := Elements(v)
	if !ok {
		if strict {
			return nil, errors.NewTypeError(spec.Name, spec.Format.String(), nonEnumerableMessage)
		}
		elems = []any{v}
	}

	if spec.Of != registry.Untyped {
		fn, ok := table[spec.Of]
		if !ok {
			return nil, errors.NewConfigurationError(spec.Name, fmt.Sprintf("unsupported element data type %s", spec.Of))
		}
		converted := make([]any, len(elems))
		for i, e := range elems {
			if e == nil {
				continue
			}
			out, err := fn(e)
			if err != nil {
				return nil, errors.NewTypeError(spec.Name, spec.Format.String(), fmt.Sprintf("element %d: %v", i, err))
			}
			converted[i] = out
		}
		elems = converted
	}

	if spec.Format == registry.Set {
		s, err := setFrom(elems)
		if err != nil {
			return nil, errors.NewTypeError(spec.Name, spec.Format.String(), err.Error())
		}
		return s, nil
	}
	return elems, nil
}

// Elements returns the members of an enumerable value. Slices, arrays and Sets are
// enumerable; strings, byte slices and maps are not.
func Elements(v any) ([]any, bool) {
	switch tv := v.(type) {
	case nil:
		return nil, false
	case Set:
		return tv.Values(), true
	case []any:
		out := make([]any, len(tv))
		copy(out, tv)
		return out, true
	case []byte:
		return nil, false
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = rv.Index(i).Interface()
		}
		return out, true
	}
	return nil, false
}

func toInt64(v any) (int64, error) {
	switch tv := v.(type) {
	case string:
		return parseInt(tv)
	case json.Number:
		return parseInt(tv.String())
	case time.Time:
		return tv.Unix(), nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return 0, fmt.Errorf("%d overflows int64", u)
		}
		return int64(u), nil
	case reflect.Float32, reflect.Float64:
		return truncate(rv.Float())
	case reflect.String:
		return parseInt(rv.String())
	}
	return 0, fmt.Errorf("cannot convert %T to integer", v)
}

func parseInt(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("cannot parse %q as integer", s)
	}
	return truncate(f)
}

func truncate(f float64) (int64, error) {
	// float64(math.MaxInt64) rounds up to 2^63, which int64 cannot hold.
	if math.IsNaN(f) || math.IsInf(f, 0) || f >= 9223372036854775808.0 || f < -9223372036854775808.0 {
		return 0, fmt.Errorf("%v is out of integer range", f)
	}
	return int64(math.Trunc(f)), nil
}

func toFloat64(v any) (float64, error) {
	switch tv := v.(type) {
	case string:
		return parseFloat(tv)
	case json.Number:
		return parseFloat(tv.String())
	case time.Time:
		return epochSeconds(tv), nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), nil
	case reflect.Float32, reflect.Float64:
		return rv.Float(), nil
	case reflect.String:
		return parseFloat(rv.String())
	}
	return 0, fmt.Errorf("cannot convert %T to float", v)
}

func parseFloat(s string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("cannot parse %q as float", s)
	}
	return f, nil
}

func toString(v any) string {
	switch tv := v.(type) {
	case string:
		return tv
	case []byte:
		return string(tv)
	case fmt.Stringer:
		return tv.String()
	}
	return fmt.Sprint(v)
}

// toTime accepts the point-in-time representations application code uses.
func toTime(v any) (time.Time, error) {
	switch tv := v.(type) {
	case time.Time:
		return tv, nil
	case *time.Time:
		if tv != nil {
			return *tv, nil
		}
	case strfmt.DateTime:
		return time.Time(tv), nil
	case *strfmt.DateTime:
		if tv != nil {
			return time.Time(*tv), nil
		}
	case strfmt.Date:
		return time.Time(tv), nil
	case *strfmt.Date:
		if tv != nil {
			return time.Time(*tv), nil
		}
	case string:
		return parseTime(tv)
	default:
		f, err := toFloat64(v)
		if err != nil {
			return time.Time{}, fmt.Errorf("cannot convert %T to time", v)
		}
		return epochTime(f), nil
	}
	return time.Time{}, fmt.Errorf("cannot convert nil %T to time", v)
}

func parseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("cannot parse empty string as time")
	}
	if dt, err := strfmt.ParseDateTime(s); err == nil {
		return time.Time(dt), nil
	}
	if d, err := time.Parse(strfmt.RFC3339FullDate, s); err == nil {
		return d, nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return epochTime(f), nil
	}
	return time.Time{}, fmt.Errorf("cannot parse %q as time", s)
}

func epochSeconds(t time.Time) float64 {
	return float64(t.Unix()) + float64(t.Nanosecond())/1e9
}

// epochTime rounds to microseconds; float64 seconds cannot hold more precision
// for present-day timestamps.
func epochTime(f float64) time.Time {
	sec := math.Floor(f)
	usec := math.Round((f - sec) * 1e6)
	return time.Unix(int64(sec), int64(usec)*int64(time.Microsecond)).UTC()
}

func midnightUTC(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func timeToEpoch(v any) (any, error) {
	t, err := toTime(v)
	if err != nil {
		return nil, err
	}
	return epochSeconds(t), nil
}

// dateToEpoch keeps the calendar date of v in its own location and stores the
// UTC midnight of that date.
func dateToEpoch(v any) (any, error) {
	t, err := toTime(v)
	if err != nil {
		return nil, err
	}
	return float64(midnightUTC(t).Unix()), nil
}

func epochToTime(v any) (any, error) {
	return toTime(v)
}

func epochToDate(v any) (any, error) {
	if d, ok := v.(strfmt.Date); ok {
		return d, nil
	}
	t, err := toTime(v)
	if err != nil {
		return nil, err
	}
	return strfmt.Date(midnightUTC(t.UTC())), nil
}
