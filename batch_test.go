/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package entitymodel_test

import (
	"context"
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suparena/entitymodel"
	"github.com/suparena/entitymodel/datastore/mock"
	"github.com/suparena/entitymodel/errors"
	"github.com/suparena/entitymodel/storagemodels"
)

func newRecords(t *testing.T, typ *entitymodel.Type, n int) []*entitymodel.Record {
	t.Helper()
	records := make([]*entitymodel.Record, n)
	for i := range records {
		r, err := typ.New(map[string]any{"id": fmt.Sprintf("w-%02d", i), "price": i})
		require.NoError(t, err)
		records[i] = r
	}
	return records
}

func TestImport(t *testing.T) {
	ctx := context.Background()

	t.Run("ChunksOf25", func(t *testing.T) {
		client := mock.New()
		widgets := newWidgets(t, client)
		records := newRecords(t, widgets, 30)

		require.NoError(t, widgets.Import(ctx, records))

		writes := client.CallsTo(mock.OpBatchWriteItems)
		require.Len(t, writes, 2)
		assert.Len(t, writes[0].Items, 25)
		assert.Len(t, writes[1].Items, 5)

		for _, call := range writes {
			for _, item := range call.Items {
				assert.Equal(t, fixedEpoch(), item["created_at"])
				assert.Equal(t, fixedEpoch(), item["updated_at"])
			}
		}
		assert.Equal(t, "w-00", writes[0].Items[0]["id"])
		assert.Equal(t, float64(29), writes[1].Items[4]["price"])

		for _, r := range records {
			assert.False(t, r.IsNew())
			assert.Empty(t, r.Changed())
		}
		assert.Equal(t, 30, client.Count("widgets"))
	})

	t.Run("PersistedRecordsKeepCreatedAt", func(t *testing.T) {
		client := mock.New()
		widgets := newWidgets(t, client)
		r, err := widgets.Load(storagemodels.Item{"id": "w-1", "created_at": 5.0})
		require.NoError(t, err)

		require.NoError(t, widgets.Import(ctx, []*entitymodel.Record{r}))

		item := client.CallsTo(mock.OpBatchWriteItems)[0].Items[0]
		assert.Equal(t, 5.0, item["created_at"])
		assert.Equal(t, fixedEpoch(), item["updated_at"])
	})

	t.Run("ConfiguredChunkSize", func(t *testing.T) {
		client := mock.New()
		widgets := newWidgets(t, client, func(cfg *entitymodel.Config) { cfg.BatchWriteSize = 10 })

		require.NoError(t, widgets.Import(ctx, newRecords(t, widgets, 21)))

		writes := client.CallsTo(mock.OpBatchWriteItems)
		require.Len(t, writes, 3)
		assert.Len(t, writes[2].Items, 1)
	})

	t.Run("ChunkFailure", func(t *testing.T) {
		cause := stderrors.New("throttled")
		client := mock.New().WithBatchWriteError(cause, 2)
		widgets := newWidgets(t, client)
		records := newRecords(t, widgets, 30)

		err := widgets.Import(ctx, records)
		var batchErr *errors.BatchError
		require.True(t, stderrors.As(err, &batchErr))
		assert.Equal(t, 1, batchErr.Chunk)
		assert.Equal(t, 25, batchErr.Written)
		assert.ErrorIs(t, err, cause)

		assert.False(t, records[24].IsNew(), "first chunk was written")
		assert.True(t, records[25].IsNew(), "failed chunk stays new")
		assert.Equal(t, 25, client.Count("widgets"))
	})

	t.Run("MissingHashKey", func(t *testing.T) {
		client := mock.New()
		widgets := newWidgets(t, client)
		records := newRecords(t, widgets, 3)
		anonymous, _ := widgets.New(map[string]any{"name": "anonymous"})
		records = append(records, anonymous)

		err := widgets.Import(ctx, records)
		assert.True(t, errors.IsValidationError(err))
		assert.Empty(t, client.Calls())
	})

	t.Run("ForeignRecord", func(t *testing.T) {
		client := mock.New()
		widgets := newWidgets(t, client)
		gadgets, err := entitymodel.NewType(client, widgetSchema(t), testConfig("gadgets"))
		require.NoError(t, err)
		g, _ := gadgets.New(map[string]any{"id": "g"})

		err = widgets.Import(ctx, []*entitymodel.Record{g})
		assert.True(t, errors.IsValidationError(err))
	})

	t.Run("Empty", func(t *testing.T) {
		client := mock.New()
		require.NoError(t, newWidgets(t, client).Import(ctx, nil))
		assert.Empty(t, client.Calls())
	})
}

func TestBatchFind(t *testing.T) {
	ctx := context.Background()

	t.Run("NoKeys", func(t *testing.T) {
		client := mock.New()
		records, err := newWidgets(t, client).BatchFind(ctx, nil)
		require.NoError(t, err)
		assert.NotNil(t, records)
		assert.Empty(t, records)
		assert.Empty(t, client.Calls())
	})

	t.Run("TooManyKeys", func(t *testing.T) {
		client := mock.New()
		hashes := make([]any, 101)
		for i := range hashes {
			hashes[i] = fmt.Sprintf("w-%d", i)
		}

		_, err := newWidgets(t, client).BatchFindByHash(ctx, hashes...)
		assert.True(t, errors.IsValidationError(err))
		assert.Empty(t, client.Calls())
	})

	t.Run("RequestOrder", func(t *testing.T) {
		client := mock.New()
		client.Seed("widgets",
			storagemodels.Item{"id": "a", "name": "A"},
			storagemodels.Item{"id": "b", "name": "B"},
			storagemodels.Item{"id": "c", "name": "C"},
		)
		widgets := newWidgets(t, client)

		records, err := widgets.BatchFindByHash(ctx, "c", "missing", "a", "c")
		require.NoError(t, err)
		require.Len(t, records, 2)

		first, _ := records[0].Get("name")
		second, _ := records[1].Get("name")
		assert.Equal(t, "C", first)
		assert.Equal(t, "A", second)
		assert.False(t, records[0].IsNew())

		gets := client.CallsTo(mock.OpBatchGetItems)
		require.Len(t, gets, 1)
		assert.Len(t, gets[0].Keys, 3, "duplicate keys are fetched once")
	})

	t.Run("SeparatorsInKeyValues", func(t *testing.T) {
		client := mock.New().WithTable("pairs", "h", "r")
		client.Seed("pairs",
			storagemodels.Item{"h": "a", "r": "b,r=c", "v": "first"},
			storagemodels.Item{"h": "a,r=b", "r": "c", "v": "second"},
		)
		require.Equal(t, 2, client.Count("pairs"))

		cfg := testConfig("pairs")
		cfg.HashKey = "h"
		cfg.RangeKey = "r"
		pairs, err := entitymodel.NewType(client, widgetSchema(t), cfg)
		require.NoError(t, err)

		records, err := pairs.BatchFind(ctx, []storagemodels.Key{
			{"h": "a", "r": "b,r=c"},
			{"h": "a,r=b", "r": "c"},
		})
		require.NoError(t, err)
		require.Len(t, records, 2)
		first, _ := records[0].Get("v")
		second, _ := records[1].Get("v")
		assert.Equal(t, "first", first)
		assert.Equal(t, "second", second)
	})

	t.Run("UntypedKeysKeepTheirType", func(t *testing.T) {
		client := mock.New()
		client.Seed("widgets",
			storagemodels.Item{"id": "7", "name": "text"},
			storagemodels.Item{"id": int64(7), "name": "number"},
		)
		widgets := newWidgets(t, client)

		records, err := widgets.BatchFindByHash(ctx, 7, "7")
		require.NoError(t, err)
		require.Len(t, records, 2)
		first, _ := records[0].Get("name")
		second, _ := records[1].Get("name")
		assert.Equal(t, "number", first)
		assert.Equal(t, "text", second)
	})

	t.Run("CompositeKeys", func(t *testing.T) {
		client := mock.New().WithTable("scores", "player", "game")
		client.Seed("scores",
			storagemodels.Item{"player": "p1", "game": int64(1), "points": int64(10)},
			storagemodels.Item{"player": "p1", "game": int64(2), "points": int64(20)},
		)
		scores := newScores(t, client)

		records, err := scores.BatchFind(ctx, []storagemodels.Key{
			{"player": "p1", "game": "2"},
			{"player": "p1", "game": 1},
		})
		require.NoError(t, err)
		require.Len(t, records, 2)
		points, _ := records[0].Get("points")
		assert.Equal(t, int64(20), points)
	})

	t.Run("StoreError", func(t *testing.T) {
		cause := stderrors.New("boom")
		client := mock.New().WithBatchGetError(cause)
		_, err := newWidgets(t, client).BatchFindByHash(ctx, "a")
		assert.ErrorIs(t, err, cause)
	})
}
