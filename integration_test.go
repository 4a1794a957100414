//go:build integration
// +build integration

/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package entitymodel_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/suparena/entitymodel"
	"github.com/suparena/entitymodel/datastore/ddb"
	"github.com/suparena/entitymodel/errors"
	"github.com/suparena/entitymodel/registry"
)

// The tests expect DDB_TEST_TABLE_NAME to name a table keyed by a string "id" and,
// for the query test, DDB_TEST_SCORES_TABLE to name a table keyed by a string
// "player" and a numeric "game".
func setupClient(t *testing.T) *ddb.Client {
	t.Helper()
	cfg, err := ddb.ConfigFromEnv()
	if err != nil {
		t.Skipf("DynamoDB not configured: %v", err)
	}
	client, err := ddb.NewClient(context.Background(), cfg, ddb.WithConsistentRead())
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}
	return client
}

func setupUsers(t *testing.T) *entitymodel.Type {
	t.Helper()
	tableName := os.Getenv("DDB_TEST_TABLE_NAME")
	if tableName == "" {
		t.Skip("DDB_TEST_TABLE_NAME not set, skipping integration test")
	}

	schema, err := registry.NewSchema(
		spec(t, "email", registry.String),
		spec(t, "logins", registry.Integer, registry.Default(0)),
		spec(t, "roles", registry.Set, registry.Of(registry.Symbol)),
		spec(t, "history", registry.Array),
		spec(t, "birthday", registry.Date),
	)
	if err != nil {
		t.Fatalf("Failed to build schema: %v", err)
	}

	cfg := entitymodel.DefaultConfig("users")
	cfg.Table = tableName
	users, err := entitymodel.NewType(setupClient(t), schema, cfg)
	if err != nil {
		t.Fatalf("Failed to create type: %v", err)
	}
	return users
}

func TestIntegrationRecordLifecycle(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()
	users := setupUsers(t)
	id := fmt.Sprintf("test-%d", time.Now().UnixNano())

	user, err := users.Create(ctx, map[string]any{
		"id":       id,
		"email":    "test@example.com",
		"roles":    []string{"admin", "ops"},
		"history":  []any{"signup", 1},
		"birthday": "1990-05-17",
	})
	if err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}
	defer user.Delete(ctx)

	found, err := users.Find(ctx, id)
	if err != nil {
		t.Fatalf("Failed to find user: %v", err)
	}
	if email, _ := found.Get("email"); email != "test@example.com" {
		t.Errorf("Expected email test@example.com, got %v", email)
	}
	if created, _ := found.Get(entitymodel.CreatedAtField); created == nil {
		t.Error("Expected created_at to be stored")
	}

	if err := found.UpdateAttributes(ctx, map[string]any{"email": "new@example.com", "roles": nil}); err != nil {
		t.Fatalf("Failed to update user: %v", err)
	}
	if err := found.Increment(ctx, map[string]float64{"logins": 2}); err != nil {
		t.Fatalf("Failed to increment: %v", err)
	}

	reloaded, err := users.Find(ctx, id)
	if err != nil {
		t.Fatalf("Failed to reload user: %v", err)
	}
	if logins, _ := reloaded.Get("logins"); logins != int64(2) {
		t.Errorf("Expected 2 logins, got %v", logins)
	}
	if _, ok := reloaded.Attributes()["roles"]; ok {
		t.Error("Expected roles to be removed")
	}

	if err := reloaded.Delete(ctx); err != nil {
		t.Fatalf("Failed to delete user: %v", err)
	}
	if _, err := users.Find(ctx, id); !errors.IsNotFound(err) {
		t.Errorf("Expected not found error, got: %v", err)
	}
}

func TestIntegrationImportAndBatchFind(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()
	users := setupUsers(t)
	base := time.Now().UnixNano()

	records := make([]*entitymodel.Record, 30)
	ids := make([]any, len(records))
	for i := range records {
		ids[i] = fmt.Sprintf("import-%d-%d", base, i)
		r, err := users.New(map[string]any{"id": ids[i], "email": fmt.Sprintf("user%d@example.com", i)})
		if err != nil {
			t.Fatalf("Failed to build record: %v", err)
		}
		records[i] = r
	}

	if err := users.Import(ctx, records); err != nil {
		t.Fatalf("Failed to import: %v", err)
	}
	defer func() {
		for _, r := range records {
			r.Delete(ctx)
		}
	}()

	found, err := users.BatchFindByHash(ctx, ids...)
	if err != nil {
		t.Fatalf("Failed to batch find: %v", err)
	}
	if len(found) != len(records) {
		t.Fatalf("Expected %d records, got %d", len(records), len(found))
	}
	for i, r := range found {
		if !r.Equal(records[i]) {
			t.Errorf("Record %d out of order: %v", i, r.Key())
		}
	}
}

func TestIntegrationQuery(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	tableName := os.Getenv("DDB_TEST_SCORES_TABLE")
	if tableName == "" {
		t.Skip("DDB_TEST_SCORES_TABLE not set, skipping integration test")
	}

	ctx := context.Background()
	schema, err := registry.NewSchema(
		spec(t, "player", registry.String),
		spec(t, "game", registry.Integer),
		spec(t, "points", registry.Integer),
	)
	if err != nil {
		t.Fatalf("Failed to build schema: %v", err)
	}
	cfg := entitymodel.DefaultConfig("scores")
	cfg.Table = tableName
	cfg.HashKey = "player"
	cfg.RangeKey = "game"
	scores, err := entitymodel.NewType(setupClient(t), schema, cfg)
	if err != nil {
		t.Fatalf("Failed to create type: %v", err)
	}

	player := fmt.Sprintf("player-%d", time.Now().UnixNano())
	var created []*entitymodel.Record
	for game := 1; game <= 5; game++ {
		r, err := scores.Create(ctx, map[string]any{"player": player, "game": game, "points": game * 10})
		if err != nil {
			t.Fatalf("Failed to create score: %v", err)
		}
		created = append(created, r)
	}
	defer func() {
		for _, r := range created {
			r.Delete(ctx)
		}
	}()

	results, err := scores.Query(ctx, player, entitymodel.RangeBetween(2, 4), entitymodel.Descending())
	if err != nil {
		t.Fatalf("Failed to query scores: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("Expected 3 scores, got %d", len(results))
	}
	if game, _ := results[0].Get("game"); game != int64(4) {
		t.Errorf("Expected game 4 first, got %v", game)
	}
}
