/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package entitymodel

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/suparena/entitymodel/datastore"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name      string
		cfg       Config
		table     string
		hashKey   string
		writeSize int
		getLimit  int
	}{
		{
			name:      "zero value",
			cfg:       Config{Name: "widgets"},
			table:     "widgets",
			hashKey:   "id",
			writeSize: datastore.MaxBatchWrite,
			getLimit:  datastore.MaxBatchGet,
		},
		{
			name:      "within bounds",
			cfg:       Config{Name: "widgets", Table: "w", HashKey: "sku", BatchWriteSize: 10, BatchGetLimit: 50},
			table:     "w",
			hashKey:   "sku",
			writeSize: 10,
			getLimit:  50,
		},
		{
			name:      "above store limits",
			cfg:       Config{Name: "widgets", BatchWriteSize: 100, BatchGetLimit: 1000},
			table:     "widgets",
			hashKey:   "id",
			writeSize: datastore.MaxBatchWrite,
			getLimit:  datastore.MaxBatchGet,
		},
		{
			name:      "negative",
			cfg:       Config{Name: "widgets", BatchWriteSize: -1, BatchGetLimit: -5},
			table:     "widgets",
			hashKey:   "id",
			writeSize: datastore.MaxBatchWrite,
			getLimit:  datastore.MaxBatchGet,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg
			cfg.validate()
			assert.Equal(t, tt.table, cfg.Table)
			assert.Equal(t, tt.hashKey, cfg.HashKey)
			assert.Equal(t, tt.writeSize, cfg.BatchWriteSize)
			assert.Equal(t, tt.getLimit, cfg.BatchGetLimit)
			assert.NotNil(t, cfg.Logger)
			assert.NotNil(t, cfg.Now)
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig("widgets")
	assert.Equal(t, "widgets", cfg.Table)
	assert.Equal(t, "id", cfg.HashKey)
	assert.Equal(t, datastore.MaxBatchWrite, cfg.BatchWriteSize)
	assert.Equal(t, datastore.MaxBatchGet, cfg.BatchGetLimit)
}
