/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package storagemodels

import (
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// Key identifies a single item: the hash key attribute and, for composite tables,
// the range key attribute. Values are canonical attribute values.
type Key map[string]any

// String renders the key deterministically, e.g. "id=7,sku=a".
func (k Key) String() string {
	names := make([]string, 0, len(k))
	for name := range k {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s=%v", name, k[name]))
	}
	return strings.Join(parts, ",")
}

// ID returns an unambiguous identity for the key, suitable as a map key. Names and
// string values are quoted, and numbers compare by value regardless of Go type, so
// int(7) and int64(7) share an ID while "7" does not.
func (k Key) ID() string {
	names := make([]string, 0, len(k))
	for name := range k {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for i, name := range names {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Quote(name))
		b.WriteByte('=')
		b.WriteString(ValueID(k[name]))
	}
	return b.String()
}

// ValueID encodes a single key value the way Key.ID does.
func ValueID(v any) string {
	switch tv := v.(type) {
	case nil:
		return "nil"
	case string:
		return "s:" + strconv.Quote(tv)
	case []byte:
		return "b:" + strconv.Quote(string(tv))
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return "n:" + strconv.FormatInt(rv.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "n:" + strconv.FormatUint(rv.Uint(), 10)
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if f == math.Trunc(f) && f >= math.MinInt64 && f < 9223372036854775808.0 {
			return "n:" + strconv.FormatInt(int64(f), 10)
		}
		return "n:" + strconv.FormatFloat(f, 'g', -1, 64)
	case reflect.String:
		return "s:" + strconv.Quote(rv.String())
	}
	return fmt.Sprintf("%T:%#v", v, v)
}

// Item is a stored attribute map in canonical form.
type Item map[string]any

// KeyOf extracts the key attributes named by hashKey and rangeKey from the item.
// An empty rangeKey means the table has no range key.
func (i Item) KeyOf(hashKey, rangeKey string) Key {
	key := Key{hashKey: i[hashKey]}
	if rangeKey != "" {
		key[rangeKey] = i[rangeKey]
	}
	return key
}

// RangeOperator is the comparison applied to the range key in a query.
type RangeOperator string

const (
	RangeEq      RangeOperator = "="
	RangeGTE     RangeOperator = ">="
	RangeLTE     RangeOperator = "<="
	RangeBetween RangeOperator = "BETWEEN"
)

// RangeCondition restricts the range key of a query. Between takes two values,
// every other operator takes one.
type RangeCondition struct {
	Operator RangeOperator
	Values   []any
}

// QueryParams defines a key-condition query against a table or one of its
// secondary indexes.
type QueryParams struct {
	// TableName is the table to query.
	TableName string
	// IndexName is optional if you wish to query a secondary index.
	IndexName string
	// HashKey names the partition attribute of the table or index.
	HashKey string
	// HashValue is the canonical partition value to match.
	HashValue any
	// RangeKey names the sort attribute; required when Range is set.
	RangeKey string
	// Range is an optional sort key condition.
	Range *RangeCondition
	// Limit caps the number of items returned; zero means no limit.
	Limit int32
	// Descending reverses the sort key order.
	Descending bool
}
