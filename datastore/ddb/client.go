/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/joho/godotenv"

	"github.com/suparena/entitymodel/datastore"
	"github.com/suparena/entitymodel/errors"
	"github.com/suparena/entitymodel/storagemodels"
)

// API is the subset of *dynamodb.Client the adapter calls. Tests substitute a fake.
type API interface {
	GetItem(ctx context.Context, params *sdk.GetItemInput, optFns ...func(*sdk.Options)) (*sdk.GetItemOutput, error)
	UpdateItem(ctx context.Context, params *sdk.UpdateItemInput, optFns ...func(*sdk.Options)) (*sdk.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, params *sdk.DeleteItemInput, optFns ...func(*sdk.Options)) (*sdk.DeleteItemOutput, error)
	BatchGetItem(ctx context.Context, params *sdk.BatchGetItemInput, optFns ...func(*sdk.Options)) (*sdk.BatchGetItemOutput, error)
	BatchWriteItem(ctx context.Context, params *sdk.BatchWriteItemInput, optFns ...func(*sdk.Options)) (*sdk.BatchWriteItemOutput, error)
	Query(ctx context.Context, params *sdk.QueryInput, optFns ...func(*sdk.Options)) (*sdk.QueryOutput, error)
}

// Config holds the connection settings for DynamoDB.
type Config struct {
	Region    string
	AccessKey string
	SecretKey string
	// Endpoint overrides the service endpoint, e.g. for DynamoDB Local.
	Endpoint string
}

// ConfigFromEnv loads the given .env files (or ./.env when present) and reads
// AWS_REGION, AWS_ACCESS_KEY, AWS_SECRET_KEY and AWS_DDB_ENDPOINT.
func ConfigFromEnv(files ...string) (Config, error) {
	if len(files) > 0 {
		if err := godotenv.Load(files...); err != nil {
			return Config{}, fmt.Errorf("failed to load env file: %w", err)
		}
	} else if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := Config{
		Region:    os.Getenv("AWS_REGION"),
		AccessKey: os.Getenv("AWS_ACCESS_KEY"),
		SecretKey: os.Getenv("AWS_SECRET_KEY"),
		Endpoint:  os.Getenv("AWS_DDB_ENDPOINT"),
	}
	if cfg.Region == "" {
		return Config{}, errors.NewConfigurationError("AWS_REGION", "region is required")
	}
	return cfg, nil
}

// Client implements datastore.Client, datastore.Incrementer and datastore.Querier
// on top of DynamoDB.
type Client struct {
	api            API
	logger         *slog.Logger
	maxRetries     int
	retryBackoff   time.Duration
	consistentRead bool
}

var (
	_ datastore.Client      = (*Client)(nil)
	_ datastore.Incrementer = (*Client)(nil)
	_ datastore.Querier     = (*Client)(nil)
)

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger used for retries and debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMaxRetries sets how often unprocessed batch items and throttled calls are retried.
func WithMaxRetries(n int) Option {
	return func(c *Client) {
		if n >= 0 {
			c.maxRetries = n
		}
	}
}

// WithRetryBackoff sets the base backoff; attempt n waits n times this duration.
func WithRetryBackoff(d time.Duration) Option {
	return func(c *Client) {
		if d >= 0 {
			c.retryBackoff = d
		}
	}
}

// WithConsistentRead makes GetItem and BatchGetItems use strongly consistent reads.
func WithConsistentRead() Option {
	return func(c *Client) {
		c.consistentRead = true
	}
}

// New wraps an existing DynamoDB API.
func New(api API, opts ...Option) *Client {
	c := &Client{
		api:          api,
		logger:       slog.Default(),
		maxRetries:   3,
		retryBackoff: 100 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewClient initializes a DynamoDB client from cfg. Static credentials are used when
// both keys are set; otherwise the default AWS credential chain applies.
func NewClient(ctx context.Context, cfg Config, opts ...Option) (*Client, error) {
	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	api := sdk.NewFromConfig(awsCfg, func(o *sdk.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	c := New(api, opts...)
	c.logger.Debug("dynamodb client initialized", "region", cfg.Region, "endpoint", cfg.Endpoint)
	return c, nil
}

// GetItem retrieves a single item. It returns nil, nil when no item is stored.
func (c *Client) GetItem(ctx context.Context, table string, key storagemodels.Key) (storagemodels.Item, error) {
	keyMap, err := marshalKey(key)
	if err != nil {
		return nil, errors.NewStoreError("GetItem", table, err)
	}

	input := &sdk.GetItemInput{
		TableName: aws.String(table),
		Key:       keyMap,
	}
	if c.consistentRead {
		input.ConsistentRead = aws.Bool(true)
	}

	out, err := withRetry(ctx, c, "GetItem", func() (*sdk.GetItemOutput, error) {
		return c.api.GetItem(ctx, input)
	})
	if err != nil {
		return nil, errors.NewStoreError("GetItem", table, err)
	}
	if out.Item == nil {
		return nil, nil
	}

	item, err := unmarshalItem(out.Item)
	if err != nil {
		return nil, errors.NewStoreError("GetItem", table, err)
	}
	return item, nil
}

// PutItem upserts attrs into the item under key with a single UpdateItem call.
// Nil values and empty sets are removed.
func (c *Client) PutItem(ctx context.Context, table string, key storagemodels.Key, attrs map[string]any) error {
	keyMap, err := marshalKey(key)
	if err != nil {
		return errors.NewStoreError("PutItem", table, err)
	}

	fields := make(map[string]any, len(attrs))
	for name, v := range attrs {
		if _, isKey := key[name]; isKey {
			continue
		}
		fields[name] = v
	}

	input := &sdk.UpdateItemInput{
		TableName: aws.String(table),
		Key:       keyMap,
	}
	if len(fields) > 0 {
		expr, names, values, err := buildUpdateExpression(fields)
		if err != nil {
			return errors.NewStoreError("PutItem", table, err)
		}
		input.UpdateExpression = aws.String(expr)
		input.ExpressionAttributeNames = names
		if len(values) > 0 {
			input.ExpressionAttributeValues = values
		}
	}

	_, err = withRetry(ctx, c, "PutItem", func() (*sdk.UpdateItemOutput, error) {
		return c.api.UpdateItem(ctx, input)
	})
	if err != nil {
		return errors.NewStoreError("PutItem", table, err)
	}
	c.logger.Debug("item upserted", "table", table, "key", key.String(), "fields", len(fields))
	return nil
}

// DeleteItem removes an item. Deleting a missing item succeeds.
func (c *Client) DeleteItem(ctx context.Context, table string, key storagemodels.Key) error {
	keyMap, err := marshalKey(key)
	if err != nil {
		return errors.NewStoreError("DeleteItem", table, err)
	}

	_, err = withRetry(ctx, c, "DeleteItem", func() (*sdk.DeleteItemOutput, error) {
		return c.api.DeleteItem(ctx, &sdk.DeleteItemInput{
			TableName: aws.String(table),
			Key:       keyMap,
		})
	})
	if err != nil {
		return errors.NewStoreError("DeleteItem", table, err)
	}
	return nil
}

// IncrementItem atomically adds deltas to numeric attributes with an ADD expression.
func (c *Client) IncrementItem(ctx context.Context, table string, key storagemodels.Key, deltas map[string]float64) error {
	if len(deltas) == 0 {
		return nil
	}
	keyMap, err := marshalKey(key)
	if err != nil {
		return errors.NewStoreError("IncrementItem", table, err)
	}

	expr, names, values := buildAddExpression(deltas)
	_, err = withRetry(ctx, c, "IncrementItem", func() (*sdk.UpdateItemOutput, error) {
		return c.api.UpdateItem(ctx, &sdk.UpdateItemInput{
			TableName:                 aws.String(table),
			Key:                       keyMap,
			UpdateExpression:          aws.String(expr),
			ExpressionAttributeNames:  names,
			ExpressionAttributeValues: values,
		})
	})
	if err != nil {
		return errors.NewStoreError("IncrementItem", table, err)
	}
	return nil
}

// buildUpdateExpression transforms a map of field->value into:
//   - an "update expression" (e.g., "SET #f0 = :v0 REMOVE #f1")
//   - a corresponding map of expression attribute names
//   - a corresponding map of expression attribute values
//
// Fields are emitted in name order so the expression is stable.
func buildUpdateExpression(updates map[string]any) (string, map[string]string, map[string]types.AttributeValue, error) {
	if len(updates) == 0 {
		return "", nil, nil, fmt.Errorf("no updates provided")
	}

	names := make([]string, 0, len(updates))
	for field := range updates {
		names = append(names, field)
	}
	sort.Strings(names)

	var setClauses, removeClauses []string
	exprAttrNames := make(map[string]string, len(updates))
	exprAttrValues := make(map[string]types.AttributeValue)

	for i, field := range names {
		placeholderName := fmt.Sprintf("#f%d", i)
		exprAttrNames[placeholderName] = field

		av, err := marshalValue(updates[field])
		if err != nil {
			return "", nil, nil, fmt.Errorf("failed to marshal field %q: %w", field, err)
		}
		if av == nil {
			removeClauses = append(removeClauses, placeholderName)
			continue
		}

		placeholderValue := fmt.Sprintf(":v%d", i)
		exprAttrValues[placeholderValue] = av
		setClauses = append(setClauses, fmt.Sprintf("%s = %s", placeholderName, placeholderValue))
	}

	var parts []string
	if len(setClauses) > 0 {
		parts = append(parts, "SET "+strings.Join(setClauses, ", "))
	}
	if len(removeClauses) > 0 {
		parts = append(parts, "REMOVE "+strings.Join(removeClauses, ", "))
	}
	return strings.Join(parts, " "), exprAttrNames, exprAttrValues, nil
}

func buildAddExpression(deltas map[string]float64) (string, map[string]string, map[string]types.AttributeValue) {
	names := make([]string, 0, len(deltas))
	for field := range deltas {
		names = append(names, field)
	}
	sort.Strings(names)

	clauses := make([]string, 0, len(names))
	exprAttrNames := make(map[string]string, len(names))
	exprAttrValues := make(map[string]types.AttributeValue, len(names))
	for i, field := range names {
		placeholderName := fmt.Sprintf("#f%d", i)
		placeholderValue := fmt.Sprintf(":d%d", i)
		exprAttrNames[placeholderName] = field
		exprAttrValues[placeholderValue] = &types.AttributeValueMemberN{Value: formatNumber(deltas[field])}
		clauses = append(clauses, fmt.Sprintf("%s %s", placeholderName, placeholderValue))
	}
	return "ADD " + strings.Join(clauses, ", "), exprAttrNames, exprAttrValues
}
