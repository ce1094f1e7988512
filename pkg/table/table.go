package table

import "fmt"

// Table is a schema plus rows of values. A nil cell is null; non-nil cells
// hold bool, int64, float64 or string according to the column type.
type Table struct {
	Schema Schema
	Rows   [][]any
}

// New creates an empty table with the given schema
func New(schema Schema) *Table {
	return &Table{Schema: schema}
}

// NumRows returns the number of rows
func (t *Table) NumRows() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// NumColumns returns the number of columns
func (t *Table) NumColumns() int {
	if t == nil {
		return 0
	}
	return len(t.Schema)
}

// Append adds the rows of other; both schemas must be equal
func (t *Table) Append(other *Table) error {
	if !t.Schema.Equal(other.Schema) {
		return fmt.Errorf("schema mismatch: %s", t.Schema.Diff(other.Schema))
	}
	t.Rows = append(t.Rows, other.Rows...)
	return nil
}

// Column returns the values of column i
func (t *Table) Column(i int) []any {
	out := make([]any, len(t.Rows))
	for r, row := range t.Rows {
		out[r] = row[i]
	}
	return out
}

// Validate checks every row width and value type against the schema
func (t *Table) Validate() error {
	for r, row := range t.Rows {
		if len(row) != len(t.Schema) {
			return fmt.Errorf("row %d has %d values, schema has %d columns", r, len(row), len(t.Schema))
		}
		for c, v := range row {
			if v == nil {
				continue
			}
			if !matches(t.Schema[c].Type, v) {
				return fmt.Errorf("row %d column %q: %T is not %s", r, t.Schema[c].Name, v, t.Schema[c].Type)
			}
		}
	}
	return nil
}

func matches(typ Type, v any) bool {
	switch v.(type) {
	case bool:
		return typ == Bool
	case int64:
		return typ == Int64
	case float64:
		return typ == Float64
	case string:
		return typ == String
	default:
		return false
	}
}
