/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package datastore

import (
	"context"

	"github.com/suparena/entitymodel/storagemodels"
)

const (
	// MaxBatchGet is the largest number of keys a single BatchGetItems call accepts.
	MaxBatchGet = 100
	// MaxBatchWrite is the largest number of items a single BatchWriteItems call accepts.
	MaxBatchWrite = 25
)

// Client is the store collaborator every entity type persists through.
type Client interface {
	// GetItem returns the item stored under key, or nil, nil when there is none.
	GetItem(ctx context.Context, table string, key storagemodels.Key) (storagemodels.Item, error)

	// PutItem upserts the given attributes of the item under key. Attributes not
	// named are left as stored; a nil value removes the attribute.
	PutItem(ctx context.Context, table string, key storagemodels.Key, attrs map[string]any) error

	// DeleteItem removes the item under key. Deleting a missing item is not an error.
	DeleteItem(ctx context.Context, table string, key storagemodels.Key) error

	// BatchGetItems fetches up to MaxBatchGet items. Missing keys are omitted and
	// the result order is unspecified.
	BatchGetItems(ctx context.Context, table string, keys []storagemodels.Key) ([]storagemodels.Item, error)

	// BatchWriteItems writes up to MaxBatchWrite complete items, replacing what is stored.
	BatchWriteItems(ctx context.Context, table string, items []storagemodels.Item) error
}

// Incrementer is implemented by clients that can add to numeric attributes atomically.
type Incrementer interface {
	IncrementItem(ctx context.Context, table string, key storagemodels.Key, deltas map[string]float64) error
}

// Querier is implemented by clients that support key-condition queries.
type Querier interface {
	Query(ctx context.Context, params *storagemodels.QueryParams) ([]storagemodels.Item, error)
}
