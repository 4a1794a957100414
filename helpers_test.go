/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package entitymodel_test

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/suparena/entitymodel"
	"github.com/suparena/entitymodel/datastore"
	"github.com/suparena/entitymodel/registry"
)

var fixedNow = time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

func fixedEpoch() float64 {
	return float64(fixedNow.Unix())
}

func spec(t *testing.T, name string, format registry.Format, opts ...registry.FieldOption) registry.FieldSpec {
	t.Helper()
	s, err := registry.Declare(name, format, opts...)
	require.NoError(t, err)
	return s
}

func widgetSchema(t *testing.T) *registry.Schema {
	t.Helper()
	schema, err := registry.NewSchema(
		spec(t, "name", registry.String),
		spec(t, "price", registry.Float),
		spec(t, "stock", registry.Integer, registry.Default(0)),
		spec(t, "tags", registry.Array),
		spec(t, "labels", registry.Set, registry.Of(registry.String)),
	)
	require.NoError(t, err)
	return schema
}

func testConfig(name string) entitymodel.Config {
	cfg := entitymodel.DefaultConfig(name)
	cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg.Now = func() time.Time { return fixedNow }
	return cfg
}

func newWidgets(t *testing.T, client datastore.Client, mutate ...func(*entitymodel.Config)) *entitymodel.Type {
	t.Helper()
	cfg := testConfig("widgets")
	for _, m := range mutate {
		m(&cfg)
	}
	typ, err := entitymodel.NewType(client, widgetSchema(t), cfg)
	require.NoError(t, err)
	return typ
}

// plainClient hides the optional Incrementer and Querier methods of the wrapped client.
type plainClient struct {
	datastore.Client
}

// newScores builds a composite-key type: player (hash) and game (range), with an
// index keyed by game and points.
func newScores(t *testing.T, client datastore.Client) *entitymodel.Type {
	t.Helper()
	schema, err := registry.NewSchema(
		spec(t, "player", registry.String),
		spec(t, "game", registry.Integer),
		spec(t, "points", registry.Integer),
	)
	require.NoError(t, err)

	cfg := testConfig("scores")
	cfg.HashKey = "player"
	cfg.RangeKey = "game"
	cfg.Indexes = []entitymodel.Index{{Name: "by_game", HashKey: "game", RangeKey: "points"}}
	typ, err := entitymodel.NewType(client, schema, cfg)
	require.NoError(t, err)
	return typ
}
