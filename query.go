/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package entitymodel

import (
	"context"
	"fmt"

	"github.com/suparena/entitymodel/datastore"
	"github.com/suparena/entitymodel/errors"
	"github.com/suparena/entitymodel/storagemodels"
)

type queryOptions struct {
	index      string
	rng        *storagemodels.RangeCondition
	limit      int32
	descending bool
}

// QueryOption refines Type.Query.
type QueryOption func(*queryOptions)

// RangeEquals matches items whose range key equals v.
func RangeEquals(v any) QueryOption {
	return rangeCondition(storagemodels.RangeEq, v)
}

// RangeGTE matches items whose range key is at least v.
func RangeGTE(v any) QueryOption {
	return rangeCondition(storagemodels.RangeGTE, v)
}

// RangeLTE matches items whose range key is at most v.
func RangeLTE(v any) QueryOption {
	return rangeCondition(storagemodels.RangeLTE, v)
}

// RangeBetween matches items whose range key lies in [from, to].
func RangeBetween(from, to any) QueryOption {
	return rangeCondition(storagemodels.RangeBetween, from, to)
}

func rangeCondition(op storagemodels.RangeOperator, values ...any) QueryOption {
	return func(o *queryOptions) {
		o.rng = &storagemodels.RangeCondition{Operator: op, Values: values}
	}
}

// UsingIndex queries a configured secondary index instead of the table.
func UsingIndex(name string) QueryOption {
	return func(o *queryOptions) { o.index = name }
}

// Limit caps the number of records returned.
func Limit(n int32) QueryOption {
	return func(o *queryOptions) { o.limit = n }
}

// Descending returns records in descending range key order.
func Descending() QueryOption {
	return func(o *queryOptions) { o.descending = true }
}

// Query returns the records sharing a hash key value, on the table or on an index.
// The client must implement datastore.Querier.
func (t *Type) Query(ctx context.Context, hash any, opts ...QueryOption) ([]*Record, error) {
	querier, ok := t.client.(datastore.Querier)
	if !ok {
		return nil, errors.NewConfigurationError("", fmt.Sprintf("store client %T does not support queries", t.client))
	}

	var o queryOptions
	for _, opt := range opts {
		opt(&o)
	}

	hashKey, rangeKey := t.hashKey, t.rangeKey
	if o.index != "" {
		idx, ok := t.indexes[o.index]
		if !ok {
			return nil, errors.NewConfigurationError(o.index, fmt.Sprintf("%s has no such index", t.name))
		}
		hashKey, rangeKey = idx.HashKey, idx.RangeKey
	}

	hv, err := t.canonical(hashKey, hash)
	if err != nil {
		return nil, err
	}
	params := &storagemodels.QueryParams{
		TableName:  t.table,
		IndexName:  o.index,
		HashKey:    hashKey,
		HashValue:  hv,
		RangeKey:   rangeKey,
		Limit:      o.limit,
		Descending: o.descending,
	}

	if o.rng != nil {
		if rangeKey == "" {
			return nil, errors.NewValidationError("", "range condition given but no range key is configured")
		}
		values := make([]any, len(o.rng.Values))
		for i, v := range o.rng.Values {
			if values[i], err = t.canonical(rangeKey, v); err != nil {
				return nil, err
			}
		}
		params.Range = &storagemodels.RangeCondition{Operator: o.rng.Operator, Values: values}
	}

	items, err := querier.Query(ctx, params)
	if err != nil {
		return nil, err
	}

	records := make([]*Record, 0, len(items))
	for _, item := range items {
		r, err := t.Load(item)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, nil
}
