/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package entitymodel

import (
	"log/slog"
	"time"

	"github.com/suparena/entitymodel/datastore"
	"github.com/suparena/entitymodel/errors"
)

// Field names maintained by Save, Touch, Import and Increment.
const (
	CreatedAtField = "created_at"
	UpdatedAtField = "updated_at"
)

// Index describes a secondary index that Query can target.
type Index struct {
	Name     string
	HashKey  string
	RangeKey string
}

// Validator checks a record before it is saved. An empty result means valid.
type Validator func(r *Record) []errors.Violation

// Config holds configuration for a Type.
type Config struct {
	// Name identifies the entity type in errors, logs and the Catalog.
	Name string

	// Table is the store table. Default: Name
	Table string

	// HashKey is the partition key attribute.
	// Default: "id"
	HashKey string

	// RangeKey is the optional sort key attribute.
	RangeKey string

	// Indexes lists the secondary indexes available to Query.
	Indexes []Index

	// BatchWriteSize is the number of records Import sends per BatchWriteItems call.
	// Default: 25
	// Max: 25
	BatchWriteSize int

	// BatchGetLimit is the largest number of keys BatchFind accepts.
	// Default: 100
	// Max: 100
	BatchGetLimit int

	// Validator runs before Save and Touch. Default: none
	Validator Validator

	// Logger receives persistence events. Default: slog.Default()
	Logger *slog.Logger

	// Now supplies timestamps. Default: time.Now
	Now func() time.Time
}

// DefaultConfig returns the defaults for a type named name.
func DefaultConfig(name string) Config {
	return Config{
		Name:           name,
		Table:          name,
		HashKey:        "id",
		BatchWriteSize: datastore.MaxBatchWrite,
		BatchGetLimit:  datastore.MaxBatchGet,
		Logger:         slog.Default(),
		Now:            time.Now,
	}
}

// validate ensures config values are within acceptable bounds.
func (c *Config) validate() {
	if c.Table == "" {
		c.Table = c.Name
	}
	if c.HashKey == "" {
		c.HashKey = "id"
	}
	if c.BatchWriteSize < 1 || c.BatchWriteSize > datastore.MaxBatchWrite {
		c.BatchWriteSize = datastore.MaxBatchWrite
	}
	if c.BatchGetLimit < 1 || c.BatchGetLimit > datastore.MaxBatchGet {
		c.BatchGetLimit = datastore.MaxBatchGet
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	if c.Now == nil {
		c.Now = time.Now
	}
}
