/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/suparena/entitymodel/attribute"
	"github.com/suparena/entitymodel/storagemodels"
)

// marshalValue converts a canonical value to its DynamoDB form. Nil and empty sets
// have no stored form and yield nil, which callers treat as "remove".
func marshalValue(v any) (types.AttributeValue, error) {
	switch tv := v.(type) {
	case nil:
		return nil, nil
	case attribute.Set:
		return marshalSet(tv)
	case []any:
		list := make([]types.AttributeValue, 0, len(tv))
		for i, e := range tv {
			av, err := marshalValue(e)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
			if av == nil {
				av = &types.AttributeValueMemberNULL{Value: true}
			}
			list = append(list, av)
		}
		return &types.AttributeValueMemberL{Value: list}, nil
	case float64:
		return &types.AttributeValueMemberN{Value: formatNumber(tv)}, nil
	}
	return attributevalue.Marshal(v)
}

// marshalSet stores all-string sets as SS and all-number sets as NS. DynamoDB has
// no mixed or empty set type.
func marshalSet(s attribute.Set) (types.AttributeValue, error) {
	if s.Len() == 0 {
		return nil, nil
	}

	values := s.Values()
	strs := make([]string, 0, len(values))
	nums := make([]string, 0, len(values))
	for _, v := range values {
		switch tv := v.(type) {
		case string:
			strs = append(strs, tv)
		case attribute.Symbol:
			strs = append(strs, string(tv))
		case float64:
			nums = append(nums, formatNumber(tv))
		case float32:
			nums = append(nums, formatNumber(float64(tv)))
		case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
			nums = append(nums, fmt.Sprint(tv))
		default:
			return nil, fmt.Errorf("unsupported set element type %T", v)
		}
	}

	switch {
	case len(nums) == 0:
		return &types.AttributeValueMemberSS{Value: strs}, nil
	case len(strs) == 0:
		return &types.AttributeValueMemberNS{Value: nums}, nil
	}
	return nil, fmt.Errorf("set mixes strings and numbers")
}

// marshalItem converts a full item, dropping attributes without a stored form.
func marshalItem(item storagemodels.Item) (map[string]types.AttributeValue, error) {
	out := make(map[string]types.AttributeValue, len(item))
	for name, v := range item {
		av, err := marshalValue(v)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal attribute %q: %w", name, err)
		}
		if av != nil {
			out[name] = av
		}
	}
	return out, nil
}

func marshalKey(key storagemodels.Key) (map[string]types.AttributeValue, error) {
	out := make(map[string]types.AttributeValue, len(key))
	for name, v := range key {
		if v == nil {
			return nil, fmt.Errorf("key attribute %q is nil", name)
		}
		av, err := marshalValue(v)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal key attribute %q: %w", name, err)
		}
		out[name] = av
	}
	return out, nil
}

// unmarshalValue converts a DynamoDB attribute to canonical form. Integral numbers
// become int64, all other numbers float64; typed fields re-coerce on load.
func unmarshalValue(av types.AttributeValue) (any, error) {
	switch tv := av.(type) {
	case *types.AttributeValueMemberS:
		return tv.Value, nil
	case *types.AttributeValueMemberN:
		return parseNumber(tv.Value)
	case *types.AttributeValueMemberBOOL:
		return tv.Value, nil
	case *types.AttributeValueMemberNULL:
		return nil, nil
	case *types.AttributeValueMemberB:
		return tv.Value, nil
	case *types.AttributeValueMemberSS:
		s := attribute.NewSet()
		for _, v := range tv.Value {
			s.Add(v)
		}
		return s, nil
	case *types.AttributeValueMemberNS:
		s := attribute.NewSet()
		for _, v := range tv.Value {
			n, err := parseNumber(v)
			if err != nil {
				return nil, err
			}
			s.Add(n)
		}
		return s, nil
	case *types.AttributeValueMemberBS:
		out := make([]any, len(tv.Value))
		for i, b := range tv.Value {
			out[i] = b
		}
		return out, nil
	case *types.AttributeValueMemberL:
		out := make([]any, len(tv.Value))
		for i, e := range tv.Value {
			v, err := unmarshalValue(e)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	case *types.AttributeValueMemberM:
		out := make(map[string]any, len(tv.Value))
		for k, e := range tv.Value {
			v, err := unmarshalValue(e)
			if err != nil {
				return nil, err
			}
			out[k] = v
		}
		return out, nil
	}
	return nil, fmt.Errorf("unsupported attribute value type %T", av)
}

func unmarshalItem(raw map[string]types.AttributeValue) (storagemodels.Item, error) {
	item := make(storagemodels.Item, len(raw))
	for name, av := range raw {
		v, err := unmarshalValue(av)
		if err != nil {
			return nil, fmt.Errorf("failed to unmarshal attribute %q: %w", name, err)
		}
		if v != nil {
			item[name] = v
		}
	}
	return item, nil
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func parseNumber(s string) (any, error) {
	if !strings.ContainsAny(s, ".eE") {
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return i, nil
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid number %q: %w", s, err)
	}
	return f, nil
}
