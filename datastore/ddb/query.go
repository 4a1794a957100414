/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/suparena/entitymodel/errors"
	"github.com/suparena/entitymodel/storagemodels"
)

// Query runs a key-condition query against the table or one of its secondary
// indexes, following pages until Limit items are collected or the results end.
func (c *Client) Query(ctx context.Context, params *storagemodels.QueryParams) ([]storagemodels.Item, error) {
	input, err := buildQueryInput(params)
	if err != nil {
		return nil, errors.NewStoreError("Query", params.TableName, err)
	}

	var items []storagemodels.Item
	paginator := sdk.NewQueryPaginator(c.api, input)
	for paginator.HasMorePages() {
		page, err := withRetry(ctx, c, "Query", func() (*sdk.QueryOutput, error) {
			return paginator.NextPage(ctx)
		})
		if err != nil {
			return nil, errors.NewStoreError("Query", params.TableName, err)
		}
		for _, raw := range page.Items {
			item, err := unmarshalItem(raw)
			if err != nil {
				return nil, errors.NewStoreError("Query", params.TableName, err)
			}
			items = append(items, item)
			if params.Limit > 0 && len(items) >= int(params.Limit) {
				return items, nil
			}
		}
	}

	return items, nil
}

func buildQueryInput(params *storagemodels.QueryParams) (*sdk.QueryInput, error) {
	if params.HashKey == "" || params.HashValue == nil {
		return nil, fmt.Errorf("query requires a hash key and value")
	}

	hashValue, err := marshalValue(params.HashValue)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal hash value: %w", err)
	}

	keyCond := "#hk = :hk"
	exprNames := map[string]string{"#hk": params.HashKey}
	exprValues := map[string]types.AttributeValue{":hk": hashValue}

	if r := params.Range; r != nil {
		if params.RangeKey == "" {
			return nil, fmt.Errorf("range condition requires a range key")
		}
		want := 1
		if r.Operator == storagemodels.RangeBetween {
			want = 2
		}
		if len(r.Values) != want {
			return nil, fmt.Errorf("range operator %s takes %d values, got %d", r.Operator, want, len(r.Values))
		}

		placeholders := make([]string, len(r.Values))
		for i, v := range r.Values {
			av, err := marshalValue(v)
			if err != nil || av == nil {
				return nil, fmt.Errorf("invalid range value %v", v)
			}
			placeholders[i] = fmt.Sprintf(":rk%d", i)
			exprValues[placeholders[i]] = av
		}
		exprNames["#rk"] = params.RangeKey

		switch r.Operator {
		case storagemodels.RangeEq, storagemodels.RangeGTE, storagemodels.RangeLTE:
			keyCond += fmt.Sprintf(" AND #rk %s %s", r.Operator, placeholders[0])
		case storagemodels.RangeBetween:
			keyCond += fmt.Sprintf(" AND #rk BETWEEN %s AND %s", placeholders[0], placeholders[1])
		default:
			return nil, fmt.Errorf("unsupported range operator %q", r.Operator)
		}
	}

	input := &sdk.QueryInput{
		TableName:                 aws.String(params.TableName),
		KeyConditionExpression:    aws.String(keyCond),
		ExpressionAttributeNames:  exprNames,
		ExpressionAttributeValues: exprValues,
		ScanIndexForward:          aws.Bool(!params.Descending),
	}
	if params.IndexName != "" {
		input.IndexName = aws.String(params.IndexName)
	}
	if params.Limit > 0 {
		input.Limit = aws.Int32(params.Limit)
	}
	return input, nil
}
