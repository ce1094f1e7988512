package table

import (
	"fmt"
	"strconv"
	"strings"
)

// DefaultNullValues are the cell contents read as null
var DefaultNullValues = []string{"", "null", "NaN"}

// NullSet recognizes null tokens. Matching ignores surrounding whitespace.
type NullSet map[string]struct{}

// NewNullSet builds a NullSet from tokens
func NewNullSet(tokens []string) NullSet {
	set := make(NullSet, len(tokens))
	for _, tok := range tokens {
		set[strings.TrimSpace(tok)] = struct{}{}
	}
	return set
}

// IsNull reports whether s is a null token
func (n NullSet) IsNull(s string) bool {
	_, ok := n[strings.TrimSpace(s)]
	return ok
}

// InferType picks the narrowest type every non-null cell parses as:
// int64, then float64, then string. An all-null column is string.
func InferType(cells []string, nulls NullSet) Type {
	isInt, isFloat, seen := true, true, false
	for _, cell := range cells {
		if nulls.IsNull(cell) {
			continue
		}
		seen = true
		v := strings.TrimSpace(cell)
		if isInt {
			if _, err := strconv.ParseInt(v, 10, 64); err != nil {
				isInt = false
			}
		}
		if !isInt && isFloat {
			if _, err := strconv.ParseFloat(v, 64); err != nil {
				isFloat = false
			}
		}
		if !isInt && !isFloat {
			return String
		}
	}
	switch {
	case !seen:
		return String
	case isInt:
		return Int64
	default:
		return Float64
	}
}

// ParseValue converts a cell to the Go value for typ, nil for null tokens
func ParseValue(cell string, typ Type, nulls NullSet) (any, error) {
	if nulls.IsNull(cell) {
		return nil, nil
	}
	v := strings.TrimSpace(cell)
	switch typ {
	case Int64:
		return strconv.ParseInt(v, 10, 64)
	case Float64:
		return strconv.ParseFloat(v, 64)
	case Bool:
		return strconv.ParseBool(v)
	case String:
		return cell, nil
	default:
		return nil, fmt.Errorf("unsupported column type %q", typ)
	}
}

// FromStrings builds a table from a header and string rows, inferring
// column types from the values.
func FromStrings(header []string, rows [][]string, nulls NullSet) (*Table, error) {
	if err := checkWidths(len(header), rows); err != nil {
		return nil, err
	}
	schema := make(Schema, len(header))
	cells := make([]string, len(rows))
	for c, name := range header {
		for r, row := range rows {
			cells[r] = row[c]
		}
		schema[c] = Column{Name: name, Type: InferType(cells, nulls)}
	}
	return FromStringsWithSchema(schema, rows, nulls)
}

// FromStringsWithSchema converts string rows using a known schema
func FromStringsWithSchema(schema Schema, rows [][]string, nulls NullSet) (*Table, error) {
	if err := checkWidths(len(schema), rows); err != nil {
		return nil, err
	}
	t := &Table{Schema: schema, Rows: make([][]any, len(rows))}
	for r, row := range rows {
		values := make([]any, len(row))
		for c, cell := range row {
			v, err := ParseValue(cell, schema[c].Type, nulls)
			if err != nil {
				return nil, fmt.Errorf("row %d column %q: %w", r+1, schema[c].Name, err)
			}
			values[c] = v
		}
		t.Rows[r] = values
	}
	return t, nil
}

func checkWidths(width int, rows [][]string) error {
	for r, row := range rows {
		if len(row) != width {
			return fmt.Errorf("row %d has %d fields, header has %d", r+1, len(row), width)
		}
	}
	return nil
}
