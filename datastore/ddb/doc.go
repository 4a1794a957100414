/*
Package ddb provides a DynamoDB implementation of datastore.Client.

The Client maps the EntityModel store contract onto DynamoDB calls:

	GetItem          GetItem
	PutItem          UpdateItem with SET / REMOVE (partial upsert)
	DeleteItem       DeleteItem
	BatchGetItems    BatchGetItem, unprocessed keys retried
	BatchWriteItems  BatchWriteItem, unprocessed items retried
	IncrementItem    UpdateItem with ADD
	Query            Query paginator, optionally on a secondary index

Canonical values convert as follows: strings to S, numbers to N, booleans to BOOL,
lists to L, string sets to SS and number sets to NS. Empty sets and nil values have
no stored form and remove the attribute.

Connection settings are read from the environment:

	cfg, err := ddb.ConfigFromEnv()
	client, err := ddb.NewClient(ctx, cfg, ddb.WithLogger(logger))

Throttling errors and unprocessed batch items are retried with linear backoff
(WithMaxRetries, WithRetryBackoff). Every failure is returned as an
*errors.StoreError wrapping the SDK error.
*/
package ddb
