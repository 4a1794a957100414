/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package entitymodel

import (
	"context"
	"fmt"

	"github.com/suparena/entitymodel/errors"
	"github.com/suparena/entitymodel/storagemodels"
)

// Import writes records with sequential BatchWriteItems calls of at most
// Config.BatchWriteSize items each. Every record is stamped first (created_at only
// when new) and written with its full attribute set; validation does not run.
// Records of a chunk that was written become clean and persisted. When a chunk
// fails Import stops and returns an *errors.BatchError; earlier chunks stay written.
func (t *Type) Import(ctx context.Context, records []*Record, opts ...SaveOption) error {
	o := buildSaveOptions(opts)

	for i, r := range records {
		switch {
		case r == nil:
			return errors.NewValidationError("records", fmt.Sprintf("record %d is nil", i))
		case r.typ != t:
			return errors.NewValidationError("records", fmt.Sprintf("record %d is a %s, not a %s", i, r.typ.name, t.name))
		case r.deleted:
			return errors.NewStateError("import", "deleted")
		}
		if _, err := r.persistedKey(); err != nil {
			return err
		}
	}

	if !o.skipTimestamps {
		for _, r := range records {
			if err := r.stamp(); err != nil {
				return err
			}
		}
	}

	written := 0
	for chunk, start := 0, 0; start < len(records); chunk, start = chunk+1, start+t.batchWriteSize {
		end := start + t.batchWriteSize
		if end > len(records) {
			end = len(records)
		}
		batch := records[start:end]

		items := make([]storagemodels.Item, len(batch))
		for i, r := range batch {
			items[i] = storagemodels.Item(r.store.Attributes())
		}

		if err := t.client.BatchWriteItems(ctx, t.table, items); err != nil {
			t.logger.Warn("import chunk failed", "chunk", chunk, "items", len(items), "written", written, "error", err)
			return &errors.BatchError{Chunk: chunk, Written: written, Err: err}
		}

		for _, r := range batch {
			r.store.ClearChanges()
			r.isNew = false
		}
		written += len(batch)
		t.logger.Info("import chunk written", "chunk", chunk, "items", len(items), "written", written)
	}
	return nil
}

// BatchFind loads the records for keys with a single BatchGetItems call and returns
// them in request order. Missing items are omitted and duplicate keys are fetched
// once. No keys means no call; more than Config.BatchGetLimit keys is a
// ValidationError before any call.
func (t *Type) BatchFind(ctx context.Context, keys []storagemodels.Key) ([]*Record, error) {
	if len(keys) == 0 {
		return []*Record{}, nil
	}
	if len(keys) > t.batchGetLimit {
		return nil, errors.NewValidationError("keys", fmt.Sprintf("batch find accepts at most %d keys, got %d", t.batchGetLimit, len(keys)))
	}

	requested := make([]storagemodels.Key, 0, len(keys))
	seen := make(map[string]bool, len(keys))
	for _, k := range keys {
		key, err := t.keyFromMap(k)
		if err != nil {
			return nil, err
		}
		id := key.ID()
		if seen[id] {
			continue
		}
		seen[id] = true
		requested = append(requested, key)
	}

	items, err := t.client.BatchGetItems(ctx, t.table, requested)
	if err != nil {
		return nil, err
	}

	byKey := make(map[string]*Record, len(items))
	for _, item := range items {
		r, err := t.Load(item)
		if err != nil {
			return nil, err
		}
		byKey[r.Key().ID()] = r
	}

	records := make([]*Record, 0, len(byKey))
	for _, key := range requested {
		if r, ok := byKey[key.ID()]; ok {
			records = append(records, r)
		}
	}
	return records, nil
}

// BatchFindByHash is BatchFind for tables without a range key.
func (t *Type) BatchFindByHash(ctx context.Context, hashes ...any) ([]*Record, error) {
	keys := make([]storagemodels.Key, len(hashes))
	for i, h := range hashes {
		keys[i] = storagemodels.Key{t.hashKey: h}
	}
	return t.BatchFind(ctx, keys)
}
