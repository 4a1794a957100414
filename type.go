/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package entitymodel

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/suparena/entitymodel/attribute"
	"github.com/suparena/entitymodel/datastore"
	"github.com/suparena/entitymodel/errors"
	"github.com/suparena/entitymodel/registry"
	"github.com/suparena/entitymodel/storagemodels"
)

// Type binds an immutable schema to a table and a store client. All records of an
// entity type share one Type. A Type is safe for concurrent use; its records are not.
type Type struct {
	name      string
	table     string
	hashKey   string
	rangeKey  string
	indexes   map[string]Index
	schema    *registry.Schema
	client    datastore.Client
	validator Validator
	logger    *slog.Logger
	now       func() time.Time

	batchWriteSize int
	batchGetLimit  int
}

// NewType creates an entity type. The created_at and updated_at time fields are
// added to schema unless it already declares them.
func NewType(client datastore.Client, schema *registry.Schema, cfg Config) (*Type, error) {
	if client == nil {
		return nil, errors.NewConfigurationError("", "a store client is required")
	}
	if cfg.Name == "" {
		return nil, errors.NewConfigurationError("", "entity type needs a name")
	}
	cfg.validate()

	createdAt, err := registry.Declare(CreatedAtField, registry.Time)
	if err != nil {
		return nil, err
	}
	updatedAt, err := registry.Declare(UpdatedAtField, registry.Time)
	if err != nil {
		return nil, err
	}
	full, err := schema.With(createdAt, updatedAt)
	if err != nil {
		return nil, err
	}

	indexes := make(map[string]Index, len(cfg.Indexes))
	for _, idx := range cfg.Indexes {
		if idx.Name == "" || idx.HashKey == "" {
			return nil, errors.NewConfigurationError(idx.Name, "index needs a name and a hash key")
		}
		if _, dup := indexes[idx.Name]; dup {
			return nil, errors.NewConfigurationError(idx.Name, "index declared twice")
		}
		indexes[idx.Name] = idx
	}

	return &Type{
		name:           cfg.Name,
		table:          cfg.Table,
		hashKey:        cfg.HashKey,
		rangeKey:       cfg.RangeKey,
		indexes:        indexes,
		schema:         full,
		client:         client,
		validator:      cfg.Validator,
		logger:         cfg.Logger.With("type", cfg.Name, "table", cfg.Table),
		now:            cfg.Now,
		batchWriteSize: cfg.BatchWriteSize,
		batchGetLimit:  cfg.BatchGetLimit,
	}, nil
}

// FromDefinition creates an entity type from a YAML definition. Name, table, keys and
// indexes come from def; the remaining settings from cfg.
func FromDefinition(client datastore.Client, def *registry.Definition, cfg Config) (*Type, error) {
	schema, err := def.Schema()
	if err != nil {
		return nil, err
	}

	cfg.Name = def.Name
	if cfg.Name == "" {
		cfg.Name = def.Table
	}
	cfg.Table = def.Table
	cfg.HashKey = def.HashKey
	cfg.RangeKey = def.RangeKey
	cfg.Indexes = make([]Index, 0, len(def.Indexes))
	for _, idx := range def.Indexes {
		cfg.Indexes = append(cfg.Indexes, Index{Name: idx.Name, HashKey: idx.HashKey, RangeKey: idx.RangeKey})
	}
	return NewType(client, schema, cfg)
}

// Name returns the entity type name.
func (t *Type) Name() string { return t.name }

// Table returns the store table.
func (t *Type) Table() string { return t.table }

// HashKey returns the partition key attribute name.
func (t *Type) HashKey() string { return t.hashKey }

// RangeKey returns the sort key attribute name, or "" when the table has none.
func (t *Type) RangeKey() string { return t.rangeKey }

// Schema returns the type's schema, including the managed timestamp fields.
func (t *Type) Schema() *registry.Schema { return t.schema }

// Client returns the store client.
func (t *Type) Client() datastore.Client { return t.client }

// New builds an unsaved record. Every attribute is written as a change, so a
// value the field cannot hold fails with a TypeError.
func (t *Type) New(attrs map[string]any) (*Record, error) {
	r := t.newRecord(true)
	for name, v := range attrs {
		if err := r.store.Write(name, v, true); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Load rehydrates a stored item into a clean record.
func (t *Type) Load(item storagemodels.Item) (*Record, error) {
	r := t.newRecord(false)
	for name, v := range item {
		if err := r.store.Write(name, v, false); err != nil {
			return nil, err
		}
	}
	r.store.ClearChanges()
	return r, nil
}

func (t *Type) newRecord(isNew bool) *Record {
	return &Record{
		typ:   t,
		store: attribute.NewStore(t.schema),
		isNew: isNew,
	}
}

// KeyFor builds the canonical key for a hash value and, on composite tables, a
// range value. Values are coerced like attribute writes, so "7" and 7 address the
// same item of an integer-keyed table.
func (t *Type) KeyFor(hash any, rangeValue ...any) (storagemodels.Key, error) {
	if len(rangeValue) > 1 {
		return nil, errors.NewValidationError(t.rangeKey, "at most one range value may be given")
	}

	hv, err := t.canonical(t.hashKey, hash)
	if err != nil {
		return nil, err
	}
	key := storagemodels.Key{t.hashKey: hv}

	switch {
	case t.rangeKey == "" && len(rangeValue) > 0:
		return nil, errors.NewValidationError("", fmt.Sprintf("%s has no range key", t.name))
	case t.rangeKey != "":
		if len(rangeValue) == 0 {
			return nil, errors.NewValidationError(t.rangeKey, "range key is required")
		}
		rv, err := t.canonical(t.rangeKey, rangeValue[0])
		if err != nil {
			return nil, err
		}
		key[t.rangeKey] = rv
	}
	return key, nil
}

// keyFromMap canonicalizes a key given as attribute map.
func (t *Type) keyFromMap(k storagemodels.Key) (storagemodels.Key, error) {
	if t.rangeKey == "" {
		return t.KeyFor(k[t.hashKey])
	}
	return t.KeyFor(k[t.hashKey], k[t.rangeKey])
}

// canonical coerces a key value through the field's setter. Key values may not be nil.
func (t *Type) canonical(field string, v any) (any, error) {
	if v == nil {
		return nil, errors.NewValidationError(field, "key value is required")
	}
	spec, ok := t.schema.Lookup(field)
	if !ok {
		return v, nil
	}
	return attribute.Setter(spec, v, true)
}
