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

	"github.com/suparena/entitymodel/datastore"
	"github.com/suparena/entitymodel/errors"
	"github.com/suparena/entitymodel/storagemodels"
)

// BatchGetItems fetches up to datastore.MaxBatchGet items in one BatchGetItem
// request, re-requesting unprocessed keys with backoff.
func (c *Client) BatchGetItems(ctx context.Context, table string, keys []storagemodels.Key) ([]storagemodels.Item, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	if len(keys) > datastore.MaxBatchGet {
		return nil, errors.NewValidationError("keys", fmt.Sprintf("batch get accepts at most %d keys, got %d", datastore.MaxBatchGet, len(keys)))
	}

	pending := make([]map[string]types.AttributeValue, 0, len(keys))
	for _, key := range keys {
		keyMap, err := marshalKey(key)
		if err != nil {
			return nil, errors.NewStoreError("BatchGetItems", table, err)
		}
		pending = append(pending, keyMap)
	}

	var items []storagemodels.Item
	for attempt := 0; len(pending) > 0; attempt++ {
		if attempt > c.maxRetries {
			return nil, errors.NewStoreError("BatchGetItems", table,
				fmt.Errorf("%d keys unprocessed after %d retries", len(pending), c.maxRetries))
		}
		if attempt > 0 {
			c.logger.Warn("retrying unprocessed keys", "table", table, "keys", len(pending), "attempt", attempt)
			if err := c.sleep(ctx, attempt-1); err != nil {
				return nil, errors.NewStoreError("BatchGetItems", table, err)
			}
		}

		keysAndAttrs := types.KeysAndAttributes{Keys: pending}
		if c.consistentRead {
			keysAndAttrs.ConsistentRead = aws.Bool(true)
		}
		out, err := withRetry(ctx, c, "BatchGetItems", func() (*sdk.BatchGetItemOutput, error) {
			return c.api.BatchGetItem(ctx, &sdk.BatchGetItemInput{
				RequestItems: map[string]types.KeysAndAttributes{table: keysAndAttrs},
			})
		})
		if err != nil {
			return nil, errors.NewStoreError("BatchGetItems", table, err)
		}

		for _, raw := range out.Responses[table] {
			item, err := unmarshalItem(raw)
			if err != nil {
				return nil, errors.NewStoreError("BatchGetItems", table, err)
			}
			items = append(items, item)
		}

		pending = nil
		if unprocessed, ok := out.UnprocessedKeys[table]; ok {
			pending = unprocessed.Keys
		}
	}

	return items, nil
}

// BatchWriteItems writes up to datastore.MaxBatchWrite complete items in one
// BatchWriteItem request, resubmitting unprocessed items with backoff.
func (c *Client) BatchWriteItems(ctx context.Context, table string, items []storagemodels.Item) error {
	if len(items) == 0 {
		return nil
	}
	if len(items) > datastore.MaxBatchWrite {
		return errors.NewValidationError("items", fmt.Sprintf("batch write accepts at most %d items, got %d", datastore.MaxBatchWrite, len(items)))
	}

	pending := make([]types.WriteRequest, 0, len(items))
	for _, item := range items {
		av, err := marshalItem(item)
		if err != nil {
			return errors.NewStoreError("BatchWriteItems", table, err)
		}
		pending = append(pending, types.WriteRequest{PutRequest: &types.PutRequest{Item: av}})
	}

	for attempt := 0; len(pending) > 0; attempt++ {
		if attempt > c.maxRetries {
			return errors.NewStoreError("BatchWriteItems", table,
				fmt.Errorf("%d items unprocessed after %d retries", len(pending), c.maxRetries))
		}
		if attempt > 0 {
			c.logger.Warn("retrying unprocessed items", "table", table, "items", len(pending), "attempt", attempt)
			if err := c.sleep(ctx, attempt-1); err != nil {
				return errors.NewStoreError("BatchWriteItems", table, err)
			}
		}

		requests := pending
		out, err := withRetry(ctx, c, "BatchWriteItems", func() (*sdk.BatchWriteItemOutput, error) {
			return c.api.BatchWriteItem(ctx, &sdk.BatchWriteItemInput{
				RequestItems: map[string][]types.WriteRequest{table: requests},
			})
		})
		if err != nil {
			return errors.NewStoreError("BatchWriteItems", table, err)
		}
		pending = out.UnprocessedItems[table]
	}

	c.logger.Debug("batch written", "table", table, "items", len(items))
	return nil
}
