/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package mock provides an in-memory implementation of datastore.Client for testing
package mock

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/suparena/entitymodel/attribute"
	"github.com/suparena/entitymodel/datastore"
	"github.com/suparena/entitymodel/errors"
	"github.com/suparena/entitymodel/storagemodels"
)

// Operation names recorded in Call.Op.
const (
	OpGetItem         = "GetItem"
	OpPutItem         = "PutItem"
	OpDeleteItem      = "DeleteItem"
	OpBatchGetItems   = "BatchGetItems"
	OpBatchWriteItems = "BatchWriteItems"
	OpIncrementItem   = "IncrementItem"
	OpQuery           = "Query"
)

// DefaultHashKey is the hash key name of tables that were never defined.
const DefaultHashKey = "id"

// Call is one recorded client invocation. Only the fields relevant to Op are set.
type Call struct {
	Op     string
	Table  string
	Key    storagemodels.Key
	Keys   []storagemodels.Key
	Attrs  map[string]any
	Items  []storagemodels.Item
	Deltas map[string]float64
	Params *storagemodels.QueryParams
}

type table struct {
	hashKey  string
	rangeKey string
	items    map[string]storagemodels.Item
}

func (t *table) keyOf(item storagemodels.Item) string {
	return item.KeyOf(t.hashKey, t.rangeKey).ID()
}

// Client is a mock implementation of datastore.Client, datastore.Incrementer and
// datastore.Querier backed by per-table maps. It is safe for concurrent use.
type Client struct {
	mu     sync.RWMutex
	tables map[string]*table
	calls  []Call

	getError        error
	putError        error
	deleteError     error
	batchGetError   error
	batchWriteError error
	batchWriteAt    int
	incrementError  error
	queryFunc       func(ctx context.Context, params *storagemodels.QueryParams) ([]storagemodels.Item, error)
}

var (
	_ datastore.Client      = (*Client)(nil)
	_ datastore.Incrementer = (*Client)(nil)
	_ datastore.Querier     = (*Client)(nil)
)

// New creates a new, empty mock Client
func New() *Client {
	return &Client{
		tables: make(map[string]*table),
	}
}

// WithTable declares the key schema of a table. Undeclared tables are keyed by
// DefaultHashKey alone.
func (m *Client) WithTable(name, hashKey, rangeKey string) *Client {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tables[name] = &table{hashKey: hashKey, rangeKey: rangeKey, items: make(map[string]storagemodels.Item)}
	return m
}

// WithGetError makes GetItem operations return an error
func (m *Client) WithGetError(err error) *Client {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getError = err
	return m
}

// WithPutError makes PutItem operations return an error
func (m *Client) WithPutError(err error) *Client {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.putError = err
	return m
}

// WithDeleteError makes DeleteItem operations return an error
func (m *Client) WithDeleteError(err error) *Client {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleteError = err
	return m
}

// WithBatchGetError makes BatchGetItems operations return an error
func (m *Client) WithBatchGetError(err error) *Client {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.batchGetError = err
	return m
}

// WithBatchWriteError makes BatchWriteItems operations return an error. With
// call > 0 only that BatchWriteItems call (1-based) fails.
func (m *Client) WithBatchWriteError(err error, call int) *Client {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.batchWriteError = err
	m.batchWriteAt = call
	return m
}

// WithIncrementError makes IncrementItem operations return an error
func (m *Client) WithIncrementError(err error) *Client {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.incrementError = err
	return m
}

// WithQueryFunc sets a custom query function for testing
func (m *Client) WithQueryFunc(f func(ctx context.Context, params *storagemodels.QueryParams) ([]storagemodels.Item, error)) *Client {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queryFunc = f
	return m
}

// GetItem returns a copy of the stored item, or nil when absent.
func (m *Client) GetItem(ctx context.Context, tableName string, key storagemodels.Key) (storagemodels.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.record(Call{Op: OpGetItem, Table: tableName, Key: cloneKey(key)})
	if m.getError != nil {
		return nil, m.getError
	}

	item, ok := m.table(tableName).items[key.ID()]
	if !ok {
		return nil, nil
	}
	return cloneItem(item), nil
}

// PutItem merges attrs into the item under key, creating it when absent. A nil
// value removes the attribute.
func (m *Client) PutItem(ctx context.Context, tableName string, key storagemodels.Key, attrs map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.record(Call{Op: OpPutItem, Table: tableName, Key: cloneKey(key), Attrs: cloneAttrs(attrs)})
	if m.putError != nil {
		return m.putError
	}

	item := m.itemFor(tableName, key)
	for name, v := range attrs {
		if _, isKey := key[name]; isKey {
			continue
		}
		if v == nil {
			delete(item, name)
			continue
		}
		item[name] = cloneValue(v)
	}
	return nil
}

// DeleteItem removes the item under key. Missing items are ignored.
func (m *Client) DeleteItem(ctx context.Context, tableName string, key storagemodels.Key) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.record(Call{Op: OpDeleteItem, Table: tableName, Key: cloneKey(key)})
	if m.deleteError != nil {
		return m.deleteError
	}

	delete(m.table(tableName).items, key.ID())
	return nil
}

// BatchGetItems returns copies of the stored items for keys in reverse request
// order, skipping missing ones.
func (m *Client) BatchGetItems(ctx context.Context, tableName string, keys []storagemodels.Key) ([]storagemodels.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	recorded := make([]storagemodels.Key, len(keys))
	for i, k := range keys {
		recorded[i] = cloneKey(k)
	}
	m.record(Call{Op: OpBatchGetItems, Table: tableName, Keys: recorded})
	if m.batchGetError != nil {
		return nil, m.batchGetError
	}
	if len(keys) > datastore.MaxBatchGet {
		return nil, errors.NewValidationError("keys", fmt.Sprintf("batch get accepts at most %d keys", datastore.MaxBatchGet))
	}

	t := m.table(tableName)
	results := make([]storagemodels.Item, 0, len(keys))
	for i := len(keys) - 1; i >= 0; i-- {
		if item, ok := t.items[keys[i].ID()]; ok {
			results = append(results, cloneItem(item))
		}
	}
	return results, nil
}

// BatchWriteItems replaces the stored items with copies of items.
func (m *Client) BatchWriteItems(ctx context.Context, tableName string, items []storagemodels.Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	recorded := make([]storagemodels.Item, len(items))
	for i, item := range items {
		recorded[i] = cloneItem(item)
	}
	m.record(Call{Op: OpBatchWriteItems, Table: tableName, Items: recorded})

	if m.batchWriteError != nil && (m.batchWriteAt == 0 || m.batchWriteAt == m.count(OpBatchWriteItems)) {
		return m.batchWriteError
	}
	if len(items) > datastore.MaxBatchWrite {
		return errors.NewValidationError("items", fmt.Sprintf("batch write accepts at most %d items", datastore.MaxBatchWrite))
	}

	t := m.table(tableName)
	for _, item := range items {
		t.items[t.keyOf(item)] = cloneItem(item)
	}
	return nil
}

// IncrementItem adds deltas to numeric attributes, treating missing ones as zero.
func (m *Client) IncrementItem(ctx context.Context, tableName string, key storagemodels.Key, deltas map[string]float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	recordedDeltas := make(map[string]float64, len(deltas))
	for k, v := range deltas {
		recordedDeltas[k] = v
	}
	m.record(Call{Op: OpIncrementItem, Table: tableName, Key: cloneKey(key), Deltas: recordedDeltas})
	if m.incrementError != nil {
		return m.incrementError
	}

	item := m.itemFor(tableName, key)
	for name, delta := range deltas {
		current, ok := number(item[name])
		if item[name] != nil && !ok {
			return errors.NewValidationError(name, "cannot increment a non-numeric attribute")
		}
		item[name] = current + delta
	}
	return nil
}

// Query returns the items whose hash key matches, filtered by the range condition
// and ordered by the range key.
func (m *Client) Query(ctx context.Context, params *storagemodels.QueryParams) ([]storagemodels.Item, error) {
	m.mu.Lock()
	m.record(Call{Op: OpQuery, Table: params.TableName, Params: params})
	queryFunc := m.queryFunc
	m.mu.Unlock()

	if queryFunc != nil {
		return queryFunc(ctx, params)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	t, ok := m.tables[params.TableName]
	if !ok {
		return nil, nil
	}

	var results []storagemodels.Item
	for _, item := range t.items {
		if !equalValues(item[params.HashKey], params.HashValue) {
			continue
		}
		if params.Range != nil && !matchRange(item[params.RangeKey], params.Range) {
			continue
		}
		results = append(results, cloneItem(item))
	}

	if params.RangeKey != "" {
		sort.SliceStable(results, func(i, j int) bool {
			c := compareValues(results[i][params.RangeKey], results[j][params.RangeKey])
			if params.Descending {
				return c > 0
			}
			return c < 0
		})
	}
	if params.Limit > 0 && len(results) > int(params.Limit) {
		results = results[:params.Limit]
	}
	return results, nil
}

// Helper methods for testing

// Seed stores copies of items directly, bypassing call recording.
func (m *Client) Seed(tableName string, items ...storagemodels.Item) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := m.table(tableName)
	for _, item := range items {
		t.items[t.keyOf(item)] = cloneItem(item)
	}
}

// Item returns a copy of the stored item under key.
func (m *Client) Item(tableName string, key storagemodels.Key) (storagemodels.Item, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.tables[tableName]
	if !ok {
		return nil, false
	}
	item, ok := t.items[key.ID()]
	if !ok {
		return nil, false
	}
	return cloneItem(item), true
}

// Count returns the number of items stored in a table
func (m *Client) Count(tableName string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if t, ok := m.tables[tableName]; ok {
		return len(t.items)
	}
	return 0
}

// Calls returns every recorded invocation in order.
func (m *Client) Calls() []Call {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Call, len(m.calls))
	copy(out, m.calls)
	return out
}

// CallsTo returns the recorded invocations of a single operation.
func (m *Client) CallsTo(op string) []Call {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Call
	for _, c := range m.calls {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

// ResetCalls forgets the recorded invocations but keeps the data.
func (m *Client) ResetCalls() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
}

// Clear removes all data and recorded calls
func (m *Client) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.tables {
		t.items = make(map[string]storagemodels.Item)
	}
	m.calls = nil
}

func (m *Client) record(c Call) {
	m.calls = append(m.calls, c)
}

func (m *Client) count(op string) int {
	n := 0
	for _, c := range m.calls {
		if c.Op == op {
			n++
		}
	}
	return n
}

// table returns the named table, creating it keyed by DefaultHashKey. Callers hold
// the write lock.
func (m *Client) table(name string) *table {
	t, ok := m.tables[name]
	if !ok {
		t = &table{hashKey: DefaultHashKey, items: make(map[string]storagemodels.Item)}
		m.tables[name] = t
	}
	return t
}

func (m *Client) itemFor(tableName string, key storagemodels.Key) storagemodels.Item {
	t := m.table(tableName)
	id := key.ID()
	item, ok := t.items[id]
	if !ok {
		item = make(storagemodels.Item, len(key))
		t.items[id] = item
	}
	for name, v := range key {
		item[name] = v
	}
	return item
}

func cloneKey(k storagemodels.Key) storagemodels.Key {
	out := make(storagemodels.Key, len(k))
	for name, v := range k {
		out[name] = v
	}
	return out
}

func cloneItem(item storagemodels.Item) storagemodels.Item {
	return storagemodels.Item(cloneAttrs(item))
}

func cloneAttrs(attrs map[string]any) map[string]any {
	if attrs == nil {
		return nil
	}
	out := make(map[string]any, len(attrs))
	for name, v := range attrs {
		out[name] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch tv := v.(type) {
	case []any:
		out := make([]any, len(tv))
		copy(out, tv)
		return out
	case attribute.Set:
		return attribute.NewSet(tv.Values()...)
	}
	return v
}

func number(v any) (float64, bool) {
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

func equalValues(a, b any) bool {
	if fa, ok := number(a); ok {
		fb, ok := number(b)
		return ok && fa == fb
	}
	return reflect.DeepEqual(a, b)
}

// compareValues orders numbers numerically and everything else by its printed form.
func compareValues(a, b any) int {
	fa, aok := number(a)
	fb, bok := number(b)
	if aok && bok {
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		}
		return 0
	}
	sa, sb := fmt.Sprint(a), fmt.Sprint(b)
	switch {
	case sa < sb:
		return -1
	case sa > sb:
		return 1
	}
	return 0
}

func matchRange(v any, cond *storagemodels.RangeCondition) bool {
	if v == nil || len(cond.Values) == 0 {
		return false
	}
	switch cond.Operator {
	case storagemodels.RangeEq:
		return compareValues(v, cond.Values[0]) == 0
	case storagemodels.RangeGTE:
		return compareValues(v, cond.Values[0]) >= 0
	case storagemodels.RangeLTE:
		return compareValues(v, cond.Values[0]) <= 0
	case storagemodels.RangeBetween:
		if len(cond.Values) != 2 {
			return false
		}
		return compareValues(v, cond.Values[0]) >= 0 && compareValues(v, cond.Values[1]) <= 0
	}
	return false
}
