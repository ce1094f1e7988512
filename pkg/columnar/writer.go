package columnar

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/source"
	"github.com/xitongsys/parquet-go/writer"
	"skycache/pkg/table"
)

// Extension is the file suffix of every Parquet file this package writes
const Extension = ".parquet"

// Writer appends tables with one fixed schema to a Snappy-compressed
// Parquet file. Each Write call becomes one row group.
type Writer struct {
	path   string
	schema table.Schema
	names  []string
	fw     source.ParquetFile
	pw     *writer.JSONWriter
	rows   int64
	closed bool
}

// Create opens path for writing with the given schema
func Create(path string, schema table.Schema) (*Writer, error) {
	if len(schema) == 0 {
		return nil, errors.New("cannot write a table with no columns")
	}

	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", path, err)
	}

	names := ColumnNames(schema)
	pw, err := writer.NewJSONWriter(jsonSchema(schema, names), fw, 4)
	if err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("failed to create parquet writer: %w", err)
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	return &Writer{path: path, schema: schema, names: names, fw: fw, pw: pw}, nil
}

// Schema returns the schema the writer was opened with
func (w *Writer) Schema() table.Schema { return w.schema }

// Rows returns the number of rows written so far
func (w *Writer) Rows() int64 { return w.rows }

// Write appends all rows of t and flushes them as a row group
func (w *Writer) Write(t *table.Table) error {
	if w.closed {
		return errors.New("writer is closed")
	}
	if !w.schema.Equal(t.Schema) {
		return fmt.Errorf("schema mismatch: %s", w.schema.Diff(t.Schema))
	}

	rec := make(map[string]any, len(w.names))
	for r, row := range t.Rows {
		for c, v := range row {
			rec[w.names[c]] = jsonValue(v)
		}
		line, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("row %d: %w", r, err)
		}
		if err := w.pw.Write(string(line)); err != nil {
			return fmt.Errorf("row %d: %w", r, err)
		}
	}
	if err := w.pw.Flush(true); err != nil {
		return fmt.Errorf("failed to flush row group: %w", err)
	}
	w.rows += int64(len(t.Rows))
	return nil
}

// Close writes the footer and closes the file
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	if err := w.pw.WriteStop(); err != nil {
		_ = w.fw.Close()
		return fmt.Errorf("failed to finalize %s: %w", w.path, err)
	}
	return w.fw.Close()
}

// Abort closes the file without a valid footer and removes it
func (w *Writer) Abort() {
	if !w.closed {
		w.closed = true
		_ = w.pw.WriteStop()
		_ = w.fw.Close()
	}
	_ = os.Remove(w.path)
}

// jsonValue maps a cell to something encoding/json accepts. Non-finite
// floats have no JSON form and are stored as null.
func jsonValue(v any) any {
	if f, ok := v.(float64); ok && (math.IsNaN(f) || math.IsInf(f, 0)) {
		return nil
	}
	return v
}

// WriteFile writes t to path atomically through a temp file in the same
// directory.
func WriteFile(path string, t *table.Table) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp := path + ".tmp"
	w, err := Create(tmp, t.Schema)
	if err != nil {
		return err
	}
	if err := w.Write(t); err != nil {
		w.Abort()
		return err
	}
	if err := w.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to move %s into place: %w", path, err)
	}
	return nil
}
