/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package registry

import (
	"fmt"

	"github.com/suparena/entitymodel/errors"
)

// FieldSpec describes one typed field of an entity.
type FieldSpec struct {
	Name    string
	Format  Format
	Of      Format // element format for array and set fields
	Default any
}

// FieldOption customizes a FieldSpec at declaration time.
type FieldOption func(*FieldSpec)

// Default seeds the field's value when it is absent.
func Default(v any) FieldOption {
	return func(s *FieldSpec) {
		s.Default = v
	}
}

// Of declares the element format of an array or set field.
func Of(f Format) FieldOption {
	return func(s *FieldSpec) {
		s.Of = f
	}
}

// Declare builds and validates a FieldSpec. Invalid combinations are rejected here,
// never at first use.
func Declare(name string, format Format, opts ...FieldOption) (FieldSpec, error) {
	spec := FieldSpec{Name: name, Format: format}
	for _, opt := range opts {
		opt(&spec)
	}
	if err := spec.validate(); err != nil {
		return FieldSpec{}, err
	}
	return spec, nil
}

func (s FieldSpec) validate() error {
	if s.Name == "" {
		return errors.NewConfigurationError("", "field name is required")
	}
	if !s.Format.Valid() {
		return errors.NewConfigurationError(s.Name, fmt.Sprintf("unsupported data type %s", s.Format))
	}
	if s.Of == Untyped {
		return nil
	}
	if !s.Format.IsCollection() {
		return errors.NewConfigurationError(s.Name, fmt.Sprintf("element format given for non-collection format %s", s.Format))
	}
	if !s.Of.Valid() {
		return errors.NewConfigurationError(s.Name, fmt.Sprintf("unsupported element data type %s", s.Of))
	}
	if s.Of.IsCollection() {
		return errors.NewConfigurationError(s.Name, fmt.Sprintf("cannot store non-primitive datatypes within a %s", s.Format))
	}
	return nil
}

// Schema is the immutable field table of one entity type. It is built once and
// shared by every record of that type.
type Schema struct {
	fields map[string]FieldSpec
	order  []string
}

// NewSchema validates specs and builds a Schema. Duplicate names are rejected.
func NewSchema(specs ...FieldSpec) (*Schema, error) {
	s := &Schema{fields: make(map[string]FieldSpec, len(specs))}
	for _, spec := range specs {
		if err := s.add(spec); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Schema) add(spec FieldSpec) error {
	if err := spec.validate(); err != nil {
		return err
	}
	if _, exists := s.fields[spec.Name]; exists {
		return errors.NewConfigurationError(spec.Name, "field declared twice")
	}
	s.fields[spec.Name] = spec
	s.order = append(s.order, spec.Name)
	return nil
}

// With returns a new Schema holding the receiver's fields plus specs. Specs whose
// name is already declared are skipped. The receiver is not modified.
func (s *Schema) With(specs ...FieldSpec) (*Schema, error) {
	out := &Schema{fields: make(map[string]FieldSpec, s.Len()+len(specs))}
	if s != nil {
		for _, name := range s.order {
			out.fields[name] = s.fields[name]
			out.order = append(out.order, name)
		}
	}
	for _, spec := range specs {
		if _, exists := out.fields[spec.Name]; exists {
			continue
		}
		if err := out.add(spec); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Lookup returns the spec for name. A missing spec means the field is untyped.
func (s *Schema) Lookup(name string) (FieldSpec, bool) {
	if s == nil {
		return FieldSpec{}, false
	}
	spec, ok := s.fields[name]
	return spec, ok
}

// Fields returns the declared specs in declaration order.
func (s *Schema) Fields() []FieldSpec {
	if s == nil {
		return nil
	}
	out := make([]FieldSpec, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.fields[name])
	}
	return out
}

// Len returns the number of declared fields.
func (s *Schema) Len() int {
	if s == nil {
		return 0
	}
	return len(s.order)
}
