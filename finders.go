/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package entitymodel

import (
	"context"

	"github.com/suparena/entitymodel/errors"
)

// Create builds a record from attrs and saves it.
func (t *Type) Create(ctx context.Context, attrs map[string]any, opts ...SaveOption) (*Record, error) {
	r, err := t.New(attrs)
	if err != nil {
		return nil, err
	}
	if err := r.SaveOrError(ctx, opts...); err != nil {
		return r, err
	}
	return r, nil
}

// Find loads the record under hash (and range). A missing item is an
// *errors.NotFoundError.
func (t *Type) Find(ctx context.Context, hash any, rangeValue ...any) (*Record, error) {
	r, err := t.find(ctx, hash, rangeValue...)
	if err != nil {
		return nil, err
	}
	if r == nil {
		key, _ := t.KeyFor(hash, rangeValue...)
		return nil, errors.NewNotFoundError(t.name, key.String())
	}
	return r, nil
}

// FindOrNew loads the record under hash (and range), or returns a new record with
// just the key set.
func (t *Type) FindOrNew(ctx context.Context, hash any, rangeValue ...any) (*Record, error) {
	r, err := t.find(ctx, hash, rangeValue...)
	if err != nil || r != nil {
		return r, err
	}
	key, _ := t.KeyFor(hash, rangeValue...)
	return t.New(key)
}

// Exists reports whether an item is stored under hash (and range).
func (t *Type) Exists(ctx context.Context, hash any, rangeValue ...any) (bool, error) {
	r, err := t.find(ctx, hash, rangeValue...)
	if err != nil {
		return false, err
	}
	return r != nil, nil
}

func (t *Type) find(ctx context.Context, hash any, rangeValue ...any) (*Record, error) {
	key, err := t.KeyFor(hash, rangeValue...)
	if err != nil {
		return nil, err
	}
	item, err := t.client.GetItem(ctx, t.table, key)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, nil
	}
	return t.Load(item)
}
