package columnar

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xitongsys/parquet-go/parquet"
	"skycache/pkg/table"
)

// ColumnNames maps table column names to names safe for a Parquet schema
// tag: only [A-Za-z0-9_], non-empty, and unique after the library's own
// head-uppercasing of field names.
func ColumnNames(schema table.Schema) []string {
	names := make([]string, len(schema))
	seen := make(map[string]bool, len(schema))
	for i, c := range schema {
		base := sanitize(c.Name)
		name := base
		for n := 2; seen[internalName(name)]; n++ {
			name = fmt.Sprintf("%s_%d", base, n)
		}
		seen[internalName(name)] = true
		names[i] = name
	}
	return names
}

func sanitize(name string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "col"
	}
	return b.String()
}

// internalName mirrors how parquet-go derives its Go-side field name
func internalName(name string) string {
	c := name[0]
	if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') {
		return strings.ToUpper(name[:1]) + name[1:]
	}
	return "PARGO_PREFIX_" + name
}

func physicalTag(t table.Type) string {
	switch t {
	case table.Bool:
		return "type=BOOLEAN"
	case table.Int64:
		return "type=INT64"
	case table.Float64:
		return "type=DOUBLE"
	default:
		return "type=BYTE_ARRAY, convertedtype=UTF8"
	}
}

// jsonSchema builds the JSON schema definition the parquet-go JSON writer
// expects. Every column is OPTIONAL so nulls survive.
func jsonSchema(schema table.Schema, names []string) string {
	fields := make([]map[string]string, 0, len(schema))
	for i, c := range schema {
		fields = append(fields, map[string]string{
			"Tag": fmt.Sprintf("name=%s, %s, repetitiontype=OPTIONAL", names[i], physicalTag(c.Type)),
		})
	}
	out := map[string]any{
		"Tag":    "name=parquet_go_root, repetitiontype=REQUIRED",
		"Fields": fields,
	}
	b, _ := json.Marshal(out)
	return string(b)
}

func logicalType(t parquet.Type) (table.Type, error) {
	switch t {
	case parquet.Type_BOOLEAN:
		return table.Bool, nil
	case parquet.Type_INT32, parquet.Type_INT64:
		return table.Int64, nil
	case parquet.Type_FLOAT, parquet.Type_DOUBLE:
		return table.Float64, nil
	case parquet.Type_BYTE_ARRAY, parquet.Type_FIXED_LEN_BYTE_ARRAY:
		return table.String, nil
	default:
		return "", fmt.Errorf("unsupported parquet type %s", t)
	}
}
