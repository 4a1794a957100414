/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/suparena/entitymodel"
	"github.com/suparena/entitymodel/attribute"
)

// recordJSON returns the application form of r's attributes, with sets as sorted arrays.
func recordJSON(r *entitymodel.Record) (map[string]any, error) {
	values, err := r.Values()
	if err != nil {
		return nil, err
	}
	for name, v := range values {
		values[name] = jsonValue(v)
	}
	return values, nil
}

func jsonValue(v any) any {
	switch tv := v.(type) {
	case attribute.Set:
		return tv.Values()
	case []any:
		out := make([]any, len(tv))
		for i, e := range tv {
			out[i] = jsonValue(e)
		}
		return out
	}
	return v
}

func printJSON(w io.Writer, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

func printRecords(w io.Writer, records []*entitymodel.Record) error {
	out := make([]map[string]any, 0, len(records))
	for _, r := range records {
		values, err := recordJSON(r)
		if err != nil {
			return err
		}
		out = append(out, values)
	}
	return printJSON(w, out)
}

// decodeAttributes parses a JSON object. Numbers become int64 when integral and
// float64 otherwise, so untyped fields keep a numeric form.
func decodeAttributes(data []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var attrs map[string]any
	if err := dec.Decode(&attrs); err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}
	if attrs == nil {
		return nil, fmt.Errorf("parse json: expected an object")
	}
	for name, v := range attrs {
		attrs[name] = normalizeNumbers(v)
	}
	return attrs, nil
}

func normalizeNumbers(v any) any {
	switch tv := v.(type) {
	case json.Number:
		if i, err := strconv.ParseInt(tv.String(), 10, 64); err == nil {
			return i
		}
		if f, err := tv.Float64(); err == nil {
			return f
		}
		return tv.String()
	case []any:
		for i, e := range tv {
			tv[i] = normalizeNumbers(e)
		}
		return tv
	case map[string]any:
		for k, e := range tv {
			tv[k] = normalizeNumbers(e)
		}
		return tv
	}
	return v
}
