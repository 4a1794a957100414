/*
Package attribute implements value coercion and dirty tracking for EntityModel.

Every typed field has two conversions. The setter direction turns whatever
application code hands in into the single canonical form that is persisted;
the getter direction turns the canonical form back into the value application
code reads:

	integer  int64                    int64
	float    float64                  float64
	string   string                   string
	symbol   string                   Symbol
	boolean  as given                 as given
	time     float64 epoch seconds    time.Time (UTC)
	date     float64 epoch seconds    strfmt.Date
	array    []any                    []any
	set      Set                      Set

A Store keeps the canonical values of one record together with the baseline
recorded at the last save, and derives the change set from the two.
*/
package attribute
