/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// withRetry runs call until it succeeds, fails with a non-retryable error, or the
// client's retry budget is spent.
func withRetry[T any](ctx context.Context, c *Client, op string, call func() (T, error)) (T, error) {
	var zero T
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		// Check context before retry
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		out, err := call()
		if err == nil {
			return out, nil
		}
		lastErr = err

		if !isRetryableError(err) {
			return zero, err
		}

		// Don't sleep after last attempt
		if attempt < c.maxRetries {
			c.logger.Warn("retrying dynamodb call", "operation", op, "attempt", attempt+1, "error", err)
			if err := c.sleep(ctx, attempt); err != nil {
				return zero, err
			}
		}
	}

	return zero, fmt.Errorf("%s failed after %d retries: %w", op, c.maxRetries, lastErr)
}

// sleep waits (attempt+1) * retryBackoff or until ctx is done.
func (c *Client) sleep(ctx context.Context, attempt int) error {
	backoff := time.Duration(attempt+1) * c.retryBackoff
	if backoff <= 0 {
		return nil
	}
	timer := time.NewTimer(backoff)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// isRetryableError determines if a DynamoDB error is retryable
func isRetryableError(err error) bool {
	var throughput *types.ProvisionedThroughputExceededException
	var requestLimit *types.RequestLimitExceeded
	var internal *types.InternalServerError
	if stderrors.As(err, &throughput) || stderrors.As(err, &requestLimit) || stderrors.As(err, &internal) {
		return true
	}

	// Check for AWS SDK retryable errors
	var retryable interface{ IsRetryable() bool }
	if stderrors.As(err, &retryable) {
		return retryable.IsRetryable()
	}

	return false
}
