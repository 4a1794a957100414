/*
Package datastore defines the store contract EntityModel persists through.

The main interface is Client, a table-addressed key/value API:

	type Client interface {
	    GetItem(ctx context.Context, table string, key storagemodels.Key) (storagemodels.Item, error)
	    PutItem(ctx context.Context, table string, key storagemodels.Key, attrs map[string]any) error
	    DeleteItem(ctx context.Context, table string, key storagemodels.Key) error
	    BatchGetItems(ctx context.Context, table string, keys []storagemodels.Key) ([]storagemodels.Item, error)
	    BatchWriteItems(ctx context.Context, table string, items []storagemodels.Item) error
	}

Clients may also implement Incrementer for atomic counters and Querier for
key-condition queries; entity types detect both with a type assertion.

Implementations:
  - ddb: DynamoDB implementation
  - mock: In-memory implementation for testing
*/
package datastore
