/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package registry

import (
	"fmt"
	"strings"

	"github.com/suparena/entitymodel/errors"
)

// Format is the declared storage kind of a field.
type Format int

const (
	// Untyped is the zero Format. Untyped values pass through unchanged.
	Untyped Format = iota
	Integer
	Float
	String
	Symbol
	Boolean
	Time
	Date
	Array
	Set
)

var formatNames = map[Format]string{
	Integer: "integer",
	Float:   "float",
	String:  "string",
	Symbol:  "symbol",
	Boolean: "boolean",
	Time:    "time",
	Date:    "date",
	Array:   "array",
	Set:     "set",
}

func (f Format) String() string {
	if name, ok := formatNames[f]; ok {
		return name
	}
	if f == Untyped {
		return "untyped"
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// Valid reports whether f is one of the known formats.
func (f Format) Valid() bool {
	_, ok := formatNames[f]
	return ok
}

// IsCollection reports whether f is array or set.
func (f Format) IsCollection() bool {
	return f == Array || f == Set
}

// ParseFormat maps a format name ("integer", "set", ...) to its Format.
func ParseFormat(name string) (Format, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for f, fname := range formatNames {
		if fname == n {
			return f, nil
		}
	}
	return Untyped, errors.NewConfigurationError("", fmt.Sprintf("unsupported data type %q", name))
}

// MarshalText implements encoding.TextMarshaler.
func (f Format) MarshalText() ([]byte, error) {
	if !f.Valid() {
		return nil, fmt.Errorf("cannot marshal %s", f)
	}
	return []byte(f.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *Format) UnmarshalText(text []byte) error {
	parsed, err := ParseFormat(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}
