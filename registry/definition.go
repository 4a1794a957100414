/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package registry

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/suparena/entitymodel/errors"
)

// Definition is the declarative form of an entity type, usually loaded from YAML:
//
//	name: Widget
//	table: widgets
//	hashKey: id
//	fields:
//	  - name: price
//	    format: float
//	  - name: tags
//	    format: set
//	    of: string
type Definition struct {
	Name     string            `yaml:"name"`
	Table    string            `yaml:"table"`
	HashKey  string            `yaml:"hashKey"`
	RangeKey string            `yaml:"rangeKey"`
	Fields   []FieldDefinition `yaml:"fields"`
	Indexes  []IndexDefinition `yaml:"indexes"`
}

// FieldDefinition is one entry of Definition.Fields.
type FieldDefinition struct {
	Name    string `yaml:"name"`
	Format  string `yaml:"format"`
	Of      string `yaml:"of"`
	Default any    `yaml:"default"`
}

// IndexDefinition names a secondary index and its key attributes.
type IndexDefinition struct {
	Name     string `yaml:"name"`
	HashKey  string `yaml:"hashKey"`
	RangeKey string `yaml:"rangeKey"`
}

// LoadDefinition decodes a YAML entity definition and validates its fields.
func LoadDefinition(r io.Reader) (*Definition, error) {
	buf, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read definition: %w", err)
	}

	def := &Definition{}
	if err := yaml.Unmarshal(buf, def); err != nil {
		return nil, errors.NewConfigurationError("", fmt.Sprintf("malformed definition: %v", err))
	}
	if def.Table == "" {
		def.Table = def.Name
	}
	if def.Table == "" {
		return nil, errors.NewConfigurationError("", "definition needs a name or table")
	}

	if _, err := def.Schema(); err != nil {
		return nil, err
	}
	return def, nil
}

// Schema converts the field definitions into a validated Schema.
func (d *Definition) Schema() (*Schema, error) {
	specs := make([]FieldSpec, 0, len(d.Fields))
	for _, fd := range d.Fields {
		format, err := ParseFormat(fd.Format)
		if err != nil {
			return nil, errors.NewConfigurationError(fd.Name, fmt.Sprintf("unsupported data type %q", fd.Format))
		}
		opts := []FieldOption{}
		if fd.Of != "" {
			of, err := ParseFormat(fd.Of)
			if err != nil {
				return nil, errors.NewConfigurationError(fd.Name, fmt.Sprintf("unsupported element data type %q", fd.Of))
			}
			opts = append(opts, Of(of))
		}
		if fd.Default != nil {
			opts = append(opts, Default(fd.Default))
		}
		spec, err := Declare(fd.Name, format, opts...)
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}
	return NewSchema(specs...)
}
