package columnar

import (
	"fmt"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/reader"
	"skycache/pkg/table"
)

// ReadFile loads a flat Parquet file into a table
func ReadFile(path string) (*table.Table, error) {
	fr, err := local.NewLocalFileReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer fr.Close()

	pr, err := reader.NewParquetColumnReader(fr, 4)
	if err != nil {
		return nil, fmt.Errorf("failed to read parquet footer of %s: %w", path, err)
	}
	defer pr.ReadStop()

	schema, err := schemaOf(pr)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	n := pr.GetNumRows()
	t := &table.Table{Schema: schema, Rows: make([][]any, n)}
	for r := range t.Rows {
		t.Rows[r] = make([]any, len(schema))
	}
	if n == 0 {
		return t, nil
	}

	for c := range schema {
		values, _, _, err := pr.ReadColumnByIndex(int64(c), n)
		if err != nil {
			return nil, fmt.Errorf("failed to read column %q of %s: %w", schema[c].Name, path, err)
		}
		if int64(len(values)) != n {
			return nil, fmt.Errorf("column %q of %s has %d values, expected %d", schema[c].Name, path, len(values), n)
		}
		for r, v := range values {
			t.Rows[r][c] = widen(v)
		}
	}
	return t, nil
}

// ReadSchema returns only the schema of a Parquet file
func ReadSchema(path string) (table.Schema, error) {
	fr, err := local.NewLocalFileReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer fr.Close()

	pr, err := reader.NewParquetColumnReader(fr, 1)
	if err != nil {
		return nil, fmt.Errorf("failed to read parquet footer of %s: %w", path, err)
	}
	defer pr.ReadStop()

	return schemaOf(pr)
}

// schemaOf reads the leaf columns of a flat schema. Element 0 is the root.
func schemaOf(pr *reader.ParquetReader) (table.Schema, error) {
	elems := pr.SchemaHandler.SchemaElements
	infos := pr.SchemaHandler.Infos
	schema := make(table.Schema, 0, len(elems))
	for i := 1; i < len(elems); i++ {
		el := elems[i]
		if el.GetNumChildren() > 0 {
			return nil, fmt.Errorf("nested column %q is not supported", el.GetName())
		}
		typ, err := logicalType(el.GetType())
		if err != nil {
			return nil, err
		}
		name := el.GetName()
		if i < len(infos) && infos[i].ExName != "" {
			name = infos[i].ExName
		}
		schema = append(schema, table.Column{Name: name, Type: typ})
	}
	return schema, nil
}

func widen(v any) any {
	switch x := v.(type) {
	case int32:
		return int64(x)
	case float32:
		return float64(x)
	case []byte:
		return string(x)
	default:
		return v
	}
}
