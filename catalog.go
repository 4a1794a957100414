/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package entitymodel

import (
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/suparena/entitymodel/datastore"
	"github.com/suparena/entitymodel/registry"
)

// Catalog is a thread-safe collection of entity types keyed by name.
type Catalog struct {
	mu    sync.RWMutex
	types map[string]*Type
}

// NewCatalog creates an empty Catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		types: make(map[string]*Type),
	}
}

// Register adds t under its name.
func (c *Catalog) Register(t *Type) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.types[t.name]; exists {
		return fmt.Errorf("entity type %q already registered", t.name)
	}
	c.types[t.name] = t
	return nil
}

// Load reads a YAML definition, builds its type on client and registers it.
func (c *Catalog) Load(r io.Reader, client datastore.Client, cfg Config) (*Type, error) {
	def, err := registry.LoadDefinition(r)
	if err != nil {
		return nil, err
	}
	t, err := FromDefinition(client, def, cfg)
	if err != nil {
		return nil, err
	}
	if err := c.Register(t); err != nil {
		return nil, err
	}
	return t, nil
}

// Get retrieves the type registered under name.
func (c *Catalog) Get(name string) (*Type, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	t, exists := c.types[name]
	if !exists {
		return nil, fmt.Errorf("entity type %q not found", name)
	}
	return t, nil
}

// Remove deletes the type registered under name.
func (c *Catalog) Remove(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.types[name]; !exists {
		return fmt.Errorf("entity type %q not found", name)
	}
	delete(c.types, name)
	return nil
}

// List returns the registered type names, sorted.
func (c *Catalog) List() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.types))
	for name := range c.types {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
