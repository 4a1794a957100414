/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Common sentinel errors
var (
	// ErrNotFound is returned when an entity is not found
	ErrNotFound = errors.New("entity not found")

	// ErrInvalidInput is returned when validation fails or a request exceeds a store limit
	ErrInvalidInput = errors.New("invalid input")

	// ErrConfiguration is returned for invalid type or field declarations
	ErrConfiguration = errors.New("invalid configuration")

	// ErrType is returned when a value cannot be written to a typed field
	ErrType = errors.New("type mismatch")

	// ErrState is returned when an operation is invalid for the entity's lifecycle state
	ErrState = errors.New("invalid state")

	// ErrStore is returned for failures surfaced by the store client
	ErrStore = errors.New("store failure")
)

// NotFoundError represents an error when an entity is not found
type NotFoundError struct {
	Type string
	Key  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with key %q not found", e.Type, e.Key)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// Violation is a single failed validation rule.
type Violation struct {
	Field   string
	Message string
}

func (v Violation) String() string {
	if v.Field != "" {
		return fmt.Sprintf("%s %s", v.Field, v.Message)
	}
	return v.Message
}

// ValidationError represents an input validation error. It carries either a single
// field/message pair or the full list of violations reported by a validator.
type ValidationError struct {
	Field      string
	Message    string
	Violations []Violation
}

func (e *ValidationError) Error() string {
	if len(e.Violations) > 0 {
		msgs := make([]string, 0, len(e.Violations))
		for _, v := range e.Violations {
			msgs = append(msgs, v.String())
		}
		return fmt.Sprintf("validation failed: %s", strings.Join(msgs, "; "))
	}
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %q: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// ConfigurationError is raised when a field or type declaration is invalid.
type ConfigurationError struct {
	Field   string
	Message string
}

func (e *ConfigurationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid declaration for field %q: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("invalid declaration: %s", e.Message)
}

func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

// TypeError is raised when a value cannot be coerced into a field's format.
type TypeError struct {
	Field   string
	Format  string
	Message string
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("cannot write field %q as %s: %s", e.Field, e.Format, e.Message)
}

func (e *TypeError) Is(target error) bool {
	return target == ErrType
}

// StateError is raised when an entity is in the wrong lifecycle state for an operation.
type StateError struct {
	Operation string
	State     string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("cannot %s a %s record", e.Operation, e.State)
}

func (e *StateError) Is(target error) bool {
	return target == ErrState
}

// StoreError wraps a failure reported by the underlying store.
type StoreError struct {
	Operation string
	Table     string
	Err       error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s on table %q failed: %v", e.Operation, e.Table, e.Err)
}

func (e *StoreError) Is(target error) bool {
	return target == ErrStore
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// BatchError reports which chunk of a batch write failed. Chunks before it were
// written and are not rolled back.
type BatchError struct {
	Chunk   int
	Written int
	Err     error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("batch chunk %d failed after %d items written: %v", e.Chunk, e.Written, e.Err)
}

func (e *BatchError) Unwrap() error {
	return e.Err
}

// Helper functions for creating errors

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(entityType, key string) error {
	return &NotFoundError{Type: entityType, Key: key}
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// NewViolationsError creates a ValidationError from a validator's violations
func NewViolationsError(violations []Violation) error {
	return &ValidationError{Violations: violations}
}

// NewConfigurationError creates a new ConfigurationError
func NewConfigurationError(field, message string) error {
	return &ConfigurationError{Field: field, Message: message}
}

// NewTypeError creates a new TypeError
func NewTypeError(field, format, message string) error {
	return &TypeError{Field: field, Format: format, Message: message}
}

// NewStateError creates a new StateError
func NewStateError(operation, state string) error {
	return &StateError{Operation: operation, State: state}
}

// NewStoreError wraps err as a StoreError. A nil err yields nil.
func NewStoreError(operation, table string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Operation: operation, Table: table, Err: err}
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsConfigurationError checks if an error is a configuration error
func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrConfiguration)
}

// IsTypeError checks if an error is a type error
func IsTypeError(err error) bool {
	return errors.Is(err, ErrType)
}

// IsStateError checks if an error is a state error
func IsStateError(err error) bool {
	return errors.Is(err, ErrState)
}

// IsStoreError checks if an error is a store error
func IsStoreError(err error) bool {
	return errors.Is(err, ErrStore)
}
