/*
Package storagemodels defines the data shapes exchanged between EntityModel and a
store client.

Key and Item are plain attribute maps holding canonical values (int64, float64,
string, bool, []any and attribute sets):

	key := storagemodels.Key{"id": "w-1"}
	item := storagemodels.Item{"id": "w-1", "price": 9.5}

QueryParams describes a key-condition query:

	params := &storagemodels.QueryParams{
	    TableName: "widgets",
	    HashKey:   "owner",
	    HashValue: "u-1",
	    RangeKey:  "created_at",
	    Range: &storagemodels.RangeCondition{
	        Operator: storagemodels.RangeGTE,
	        Values:   []any{1700000000.0},
	    },
	    Limit: 50,
	}

These types are shared by every datastore implementation.
*/
package storagemodels
