/*
Package entitymodel maps application records onto a key/range-indexed store such as
DynamoDB, with typed attributes, change tracking and batched reads and writes.

An entity type binds a schema to a table and a store client:

	schema, _ := registry.NewSchema(
	    must(registry.Declare("name", registry.String)),
	    must(registry.Declare("price", registry.Float)),
	    must(registry.Declare("tags", registry.Set, registry.Of(registry.String))),
	)
	widgets, err := entitymodel.NewType(client, schema, entitymodel.DefaultConfig("widgets"))

Records coerce values on write and track what changed since the last save:

	w, _ := widgets.New(map[string]any{"id": "w-1", "price": "9.99"})
	w.Changed()                 // [id price]
	ok, err := w.Save(ctx)      // PutItem with the changed fields, then clean
	w.Set("price", 12)          // stored as 12.0, recorded as a change
	w.Touch(ctx)                // refresh updated_at only

Batch operations respect the store limits:

	err := widgets.Import(ctx, records)                  // chunks of 25
	found, err := widgets.BatchFindByHash(ctx, "a", "b") // up to 100 keys, request order

Key Features:
  - Nine field formats with two-way coercion (see package attribute)
  - Partial upserts of changed fields only
  - Finders: Create, Find, FindOrNew, Exists and Query over tables and indexes
  - Entity types loaded from YAML definitions (see package registry)
  - Semantic error types (see package errors)
  - An in-memory client for tests (see package datastore/mock)
*/
package entitymodel
