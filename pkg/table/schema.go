package table

import (
	"fmt"
	"strings"
)

// Type is the logical type of a column
type Type string

const (
	Bool    Type = "bool"
	Int64   Type = "int64"
	Float64 Type = "float64"
	String  Type = "string"
)

// Column is one named, typed field of a Schema
type Column struct {
	Name string `json:"name"`
	Type Type   `json:"type"`
}

// Schema is an ordered list of columns
type Schema []Column

// Equal reports whether both schemas have the same length and the same
// name and type at every position.
func (s Schema) Equal(other Schema) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// Names returns the column names in order
func (s Schema) Names() []string {
	names := make([]string, len(s))
	for i, c := range s {
		names[i] = c.Name
	}
	return names
}

// Diff describes the first difference between two schemas, or "" if equal
func (s Schema) Diff(other Schema) string {
	if len(s) != len(other) {
		return fmt.Sprintf("column count %d != %d", len(s), len(other))
	}
	for i := range s {
		if s[i] != other[i] {
			return fmt.Sprintf("column %d: %s != %s", i, s[i], other[i])
		}
	}
	return ""
}

func (c Column) String() string {
	return c.Name + ":" + string(c.Type)
}

func (s Schema) String() string {
	parts := make([]string, len(s))
	for i, c := range s {
		parts[i] = c.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
