/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package entitymodel

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/suparena/entitymodel/attribute"
	"github.com/suparena/entitymodel/datastore"
	"github.com/suparena/entitymodel/errors"
	"github.com/suparena/entitymodel/registry"
	"github.com/suparena/entitymodel/storagemodels"
)

// Record is one entity instance: its attributes, their changes since the last
// save and its lifecycle state. A Record is not safe for concurrent use.
type Record struct {
	typ     *Type
	store   *attribute.Store
	isNew   bool
	deleted bool
	errs    []errors.Violation
}

type saveOptions struct {
	skipTimestamps bool
	skipValidation bool
}

// SaveOption tunes Save, SaveOrError, Touch, Increment and Import.
type SaveOption func(*saveOptions)

// WithoutTimestamps leaves created_at and updated_at untouched.
func WithoutTimestamps() SaveOption {
	return func(o *saveOptions) { o.skipTimestamps = true }
}

// WithoutValidation skips the type's validator.
func WithoutValidation() SaveOption {
	return func(o *saveOptions) { o.skipValidation = true }
}

func buildSaveOptions(opts []SaveOption) saveOptions {
	var o saveOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Type returns the record's entity type.
func (r *Record) Type() *Type { return r.typ }

// IsNew reports whether the record has never been persisted.
func (r *Record) IsNew() bool { return r.isNew }

// IsDeleted reports whether Delete succeeded on this record.
func (r *Record) IsDeleted() bool { return r.deleted }

// Get returns the application form of a field.
func (r *Record) Get(field string) (any, error) {
	return r.store.Read(field)
}

// Set writes a field and records the change.
func (r *Record) Set(field string, v any) error {
	return r.store.Write(field, v, true)
}

// Attributes returns a copy of the canonical attribute values.
func (r *Record) Attributes() map[string]any {
	return r.store.Attributes()
}

// Values returns the application form of every set attribute.
func (r *Record) Values() (map[string]any, error) {
	attrs := r.store.Attributes()
	out := make(map[string]any, len(attrs))
	for name := range attrs {
		v, err := r.store.Read(name)
		if err != nil {
			return nil, err
		}
		out[name] = v
	}
	return out, nil
}

// Changes returns the change set since the last save.
func (r *Record) Changes() map[string]attribute.Change { return r.store.Changes() }

// Changed returns the names of changed fields, sorted.
func (r *Record) Changed() []string { return r.store.Changed() }

// IsChanged reports whether field changed since the last save.
func (r *Record) IsChanged(field string) bool { return r.store.IsChanged(field) }

// Was returns the application form of field as of the last save.
func (r *Record) Was(field string) (any, error) {
	v := r.store.Was(field)
	spec, ok := r.typ.schema.Lookup(field)
	if !ok || v == nil {
		return v, nil
	}
	return attribute.Getter(spec, v)
}

// Errors returns the violations found by the last validation.
func (r *Record) Errors() []errors.Violation {
	out := make([]errors.Violation, len(r.errs))
	copy(out, r.errs)
	return out
}

// Valid runs the type's validator and keeps its violations for Errors.
func (r *Record) Valid() bool {
	r.errs = nil
	if r.typ.validator != nil {
		r.errs = r.typ.validator(r)
	}
	return len(r.errs) == 0
}

// Key returns the record's key as currently set.
func (r *Record) Key() storagemodels.Key {
	hv, _ := r.store.Raw(r.typ.hashKey)
	key := storagemodels.Key{r.typ.hashKey: hv}
	if r.typ.rangeKey != "" {
		rv, _ := r.store.Raw(r.typ.rangeKey)
		key[r.typ.rangeKey] = rv
	}
	return key
}

// Equal reports whether other is a record of the same type with the same hash key.
// Numeric hash values compare by value, so an untyped key written as 7 equals
// the int64(7) loaded from the store.
func (r *Record) Equal(other *Record) bool {
	if r == other {
		return true
	}
	if r == nil || other == nil || r.typ != other.typ {
		return false
	}
	a, _ := r.store.Raw(r.typ.hashKey)
	b, _ := other.store.Raw(other.typ.hashKey)
	return storagemodels.ValueID(a) == storagemodels.ValueID(b)
}

// Save persists the changed fields. It returns true without I/O when a persisted
// record has no changes, and false with a nil error when validation fails; the
// violations are then available from Errors.
func (r *Record) Save(ctx context.Context, opts ...SaveOption) (bool, error) {
	err := r.save(ctx, buildSaveOptions(opts))
	var invalid *errors.ValidationError
	if stderrors.As(err, &invalid) && len(invalid.Violations) > 0 {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// SaveOrError is Save with validation failures returned as *errors.ValidationError.
func (r *Record) SaveOrError(ctx context.Context, opts ...SaveOption) error {
	return r.save(ctx, buildSaveOptions(opts))
}

func (r *Record) save(ctx context.Context, o saveOptions) error {
	if r.deleted {
		return errors.NewStateError("save", "deleted")
	}
	if !r.isNew && !r.store.HasChanges() {
		return nil
	}
	if !o.skipValidation && !r.Valid() {
		return errors.NewViolationsError(r.Errors())
	}

	key, err := r.persistedKey()
	if err != nil {
		return err
	}
	if !o.skipTimestamps {
		if err := r.stamp(); err != nil {
			return err
		}
	}

	attrs := make(map[string]any)
	for name, change := range r.store.Changes() {
		if _, isKey := key[name]; isKey {
			continue
		}
		attrs[name] = change.New
	}

	if err := r.typ.client.PutItem(ctx, r.typ.table, key, attrs); err != nil {
		r.typ.logger.Debug("save failed", "key", key.String(), "error", err)
		return err
	}

	r.store.ClearChanges()
	r.isNew = false
	r.typ.logger.Debug("record saved", "key", key.String(), "fields", len(attrs))
	return nil
}

// Touch refreshes updated_at on a persisted record and writes only that field.
func (r *Record) Touch(ctx context.Context, opts ...SaveOption) error {
	o := buildSaveOptions(opts)
	if r.deleted {
		return errors.NewStateError("touch", "deleted")
	}
	if r.isNew {
		return errors.NewStateError("touch", "new")
	}
	if !o.skipValidation && !r.Valid() {
		return errors.NewViolationsError(r.Errors())
	}

	key, err := r.persistedKey()
	if err != nil {
		return err
	}
	if err := r.store.Write(UpdatedAtField, r.typ.now(), true); err != nil {
		return err
	}
	updatedAt, _ := r.store.Raw(UpdatedAtField)

	if err := r.typ.client.PutItem(ctx, r.typ.table, key, map[string]any{UpdatedAtField: updatedAt}); err != nil {
		return err
	}
	r.store.ClearChange(UpdatedAtField)
	return nil
}

// Delete removes the record from the store.
func (r *Record) Delete(ctx context.Context) error {
	if r.deleted {
		return errors.NewStateError("delete", "deleted")
	}
	key, err := r.persistedKey()
	if err != nil {
		return err
	}
	if err := r.typ.client.DeleteItem(ctx, r.typ.table, key); err != nil {
		return err
	}
	r.deleted = true
	r.typ.logger.Debug("record deleted", "key", key.String())
	return nil
}

// AssignAttributes writes several fields at once. If any value is rejected no
// field is written.
func (r *Record) AssignAttributes(attrs map[string]any) error {
	for name, v := range attrs {
		spec, ok := r.typ.schema.Lookup(name)
		if !ok || v == nil {
			continue
		}
		if _, err := attribute.Setter(spec, v, true); err != nil {
			return err
		}
	}
	for name, v := range attrs {
		if err := r.store.Write(name, v, true); err != nil {
			return err
		}
	}
	return nil
}

// UpdateAttribute sets one field and saves the record.
func (r *Record) UpdateAttribute(ctx context.Context, field string, v any, opts ...SaveOption) error {
	return r.UpdateAttributes(ctx, map[string]any{field: v}, opts...)
}

// UpdateAttributes assigns attrs and saves the record.
func (r *Record) UpdateAttributes(ctx context.Context, attrs map[string]any, opts ...SaveOption) error {
	if r.deleted {
		return errors.NewStateError("update", "deleted")
	}
	if err := r.AssignAttributes(attrs); err != nil {
		return err
	}
	return r.SaveOrError(ctx, opts...)
}

// DeleteAttribute unsets a field. The next save removes it from the store.
func (r *Record) DeleteAttribute(field string) error {
	if field == r.typ.hashKey || field == r.typ.rangeKey {
		return errors.NewValidationError(field, "key attributes cannot be removed")
	}
	r.store.Remove(field, true)
	return nil
}

// Increment atomically adds deltas to numeric fields of a persisted record and
// refreshes updated_at. The client must implement datastore.Incrementer.
func (r *Record) Increment(ctx context.Context, deltas map[string]float64, opts ...SaveOption) error {
	o := buildSaveOptions(opts)
	if r.deleted {
		return errors.NewStateError("increment", "deleted")
	}
	if r.isNew {
		return errors.NewStateError("increment", "new")
	}
	incrementer, ok := r.typ.client.(datastore.Incrementer)
	if !ok {
		return errors.NewConfigurationError("", fmt.Sprintf("store client %T does not support increments", r.typ.client))
	}

	key, err := r.persistedKey()
	if err != nil {
		return err
	}

	next := make(map[string]any, len(deltas))
	for name, delta := range deltas {
		if _, isKey := key[name]; isKey {
			return errors.NewValidationError(name, "key attributes cannot be incremented")
		}
		current, err := r.numeric(name)
		if err != nil {
			return err
		}
		next[name] = current + delta
	}

	if err := incrementer.IncrementItem(ctx, r.typ.table, key, deltas); err != nil {
		return err
	}
	for name, v := range next {
		if err := r.store.Write(name, v, false); err != nil {
			return err
		}
		r.store.ClearChange(name)
	}

	if o.skipTimestamps {
		return nil
	}
	if err := r.store.Write(UpdatedAtField, r.typ.now(), true); err != nil {
		return err
	}
	updatedAt, _ := r.store.Raw(UpdatedAtField)
	if err := r.typ.client.PutItem(ctx, r.typ.table, key, map[string]any{UpdatedAtField: updatedAt}); err != nil {
		return err
	}
	r.store.ClearChange(UpdatedAtField)
	return nil
}

// numeric returns the current value of an incrementable field; unset counts as zero.
func (r *Record) numeric(field string) (float64, error) {
	if spec, ok := r.typ.schema.Lookup(field); ok && spec.Format != registry.Integer && spec.Format != registry.Float {
		return 0, errors.NewTypeError(field, spec.Format.String(), "cannot increment a non-numeric field")
	}
	raw, ok := r.store.Raw(field)
	if !ok {
		return 0, nil
	}
	switch v := raw.(type) {
	case int64:
		return float64(v), nil
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	}
	return 0, errors.NewTypeError(field, "number", fmt.Sprintf("cannot increment a %T value", raw))
}

// persistedKey returns the key for store calls; the hash key (and range key on
// composite tables) must be set.
func (r *Record) persistedKey() (storagemodels.Key, error) {
	key := r.Key()
	for name, v := range key {
		if v == nil {
			return nil, errors.NewValidationError(name, "key attribute is required")
		}
	}
	return key, nil
}

// stamp sets updated_at, and created_at on new records.
func (r *Record) stamp() error {
	now := r.typ.now()
	if err := r.store.Write(UpdatedAtField, now, true); err != nil {
		return err
	}
	if r.isNew {
		return r.store.Write(CreatedAtField, now, true)
	}
	return nil
}
