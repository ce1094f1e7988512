package merger

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"skycache/pkg/columnar"
	errs "skycache/pkg/errors"
	"skycache/pkg/logger"
	"skycache/pkg/memstat"
	"skycache/pkg/report"
	"skycache/pkg/table"
)

func writeGzip(t *testing.T, path, content string) {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	_, err := gz.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))
}

// schemaA has an int64 and a float64 column
func fileA(first, n int) string {
	var b strings.Builder
	b.WriteString("# raw export\nsource_id,mag\n")
	for i := first; i < first+n; i++ {
		fmt.Fprintf(&b, "%d,%d.5\n", i, i%20)
	}
	return b.String()
}

func TestMergeSchemaLock(t *testing.T) {
	src := t.TempDir()
	writeGzip(t, filepath.Join(src, "01.csv.gz"), fileA(0, 3))
	writeGzip(t, filepath.Join(src, "02.csv.gz"), fileA(3, 2))
	writeGzip(t, filepath.Join(src, "03.csv.gz"), "source_id,name\n1,alpha\n2,beta\n")
	writeGzip(t, filepath.Join(src, "04.csv.gz"), fileA(5, 1))

	out := filepath.Join(t.TempDir(), "merged", "gaia.parquet")
	tl := logger.NewTestLogger()
	path, rep, err := New(Options{}, tl).Merge(context.Background(), src, out)
	require.NoError(t, err)
	assert.Equal(t, out, path)

	assert.Equal(t, 3, rep.Counts.Success)
	require.Len(t, rep.ByStatus(report.StatusSkipped), 1)
	skipped := rep.ByStatus(report.StatusSkipped)[0]
	assert.Equal(t, "03.csv.gz", skipped.Item)
	assert.Equal(t, report.ReasonSchemaMismatch, skipped.Reason)
	assert.True(t, tl.HasMessage("Schema mismatch, skipping file"))

	merged, err := columnar.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, table.Schema{
		{Name: "source_id", Type: table.Int64},
		{Name: "mag", Type: table.Float64},
	}, merged.Schema)
	require.Equal(t, 6, merged.NumRows())
	for i, row := range merged.Rows {
		assert.Equal(t, int64(i), row[0])
	}
	assert.NoFileExists(t, out+tempSuffix)
}

func TestMergeCountsAllRows(t *testing.T) {
	src := t.TempDir()
	for i := 0; i < 3; i++ {
		writeGzip(t, filepath.Join(src, fmt.Sprintf("part-%d.csv.gz", i)), fileA(i*100, 100))
	}
	out := filepath.Join(t.TempDir(), "out.parquet")

	_, rep, err := New(Options{}, nil).Merge(context.Background(), src, out)
	require.NoError(t, err)
	assert.Equal(t, int64(300), rep.TotalRows())

	merged, err := columnar.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, 300, merged.NumRows())
}

func TestMergeSkipsExistingOutput(t *testing.T) {
	src := t.TempDir()
	writeGzip(t, filepath.Join(src, "a.csv.gz"), fileA(0, 1))
	out := filepath.Join(t.TempDir(), "out.parquet")
	require.NoError(t, os.WriteFile(out, []byte("existing"), 0644))

	tl := logger.NewTestLogger()
	path, rep, err := New(Options{}, tl).Merge(context.Background(), src, out)
	require.NoError(t, err)
	assert.Equal(t, out, path)
	assert.Empty(t, rep.Outcomes)
	assert.True(t, tl.HasMessage("Merged output already exists, skipping"))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "existing", string(data))
}

func TestMergePreconditions(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out.parquet")
	m := New(Options{}, nil)

	_, _, err := m.Merge(context.Background(), filepath.Join(t.TempDir(), "missing"), out)
	assert.True(t, errs.IsPrecondition(err))

	empty := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(empty, "notes.txt"), []byte("x"), 0644))
	_, _, err = m.Merge(context.Background(), empty, out)
	assert.True(t, errs.IsPrecondition(err))

	file := filepath.Join(empty, "notes.txt")
	_, _, err = m.Merge(context.Background(), file, out)
	assert.True(t, errs.IsPrecondition(err))

	assert.NoFileExists(t, out)
}

func TestMergeRecordsUnreadableFiles(t *testing.T) {
	src := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(src, "00.csv.gz"), []byte("not gzip"), 0644))
	writeGzip(t, filepath.Join(src, "01.csv.gz"), fileA(0, 4))
	out := filepath.Join(t.TempDir(), "out.parquet")

	_, rep, err := New(Options{}, nil).Merge(context.Background(), src, out)
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Counts.Failed)
	assert.Equal(t, 1, rep.Counts.Success)

	merged, err := columnar.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, 4, merged.NumRows())
}

func TestMergeNoReadableFiles(t *testing.T) {
	src := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(src, "00.csv.gz"), []byte("not gzip"), 0644))
	out := filepath.Join(t.TempDir(), "out.parquet")

	_, rep, err := New(Options{}, nil).Merge(context.Background(), src, out)
	assert.True(t, errors.Is(err, ErrNoReadableFiles))
	assert.Equal(t, 1, rep.Counts.Failed)
	assert.NoFileExists(t, out)
	assert.NoFileExists(t, out+tempSuffix)
}

func TestMergeCancelledRemovesPartialOutput(t *testing.T) {
	src := t.TempDir()
	writeGzip(t, filepath.Join(src, "01.csv.gz"), fileA(0, 2))
	out := filepath.Join(t.TempDir(), "out.parquet")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := New(Options{}, nil).Merge(ctx, src, out)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NoFileExists(t, out)
	assert.NoFileExists(t, out+tempSuffix)
}

func TestMergeCancelledAfterSchemaLock(t *testing.T) {
	src := t.TempDir()
	for i := 0; i < 4; i++ {
		writeGzip(t, filepath.Join(src, fmt.Sprintf("%02d.csv.gz", i)), fileA(i*10, 10))
	}
	out := filepath.Join(t.TempDir(), "out.parquet")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var tmpWhileOpen bool
	m := New(Options{ProgressEvery: 1}, nil)
	m.memory = func() int64 {
		_, err := os.Stat(out + tempSuffix)
		tmpWhileOpen = err == nil
		cancel()
		return memstat.Unknown
	}

	_, rep, err := m.Merge(ctx, src, out)
	assert.ErrorIs(t, err, context.Canceled)
	assert.True(t, tmpWhileOpen, "partial output should exist once the schema is locked")
	assert.Equal(t, 1, rep.Counts.Success)
	assert.NoFileExists(t, out)
	assert.NoFileExists(t, out+tempSuffix)
}

func TestMergeHeaderOnlyFileDoesNotLockSchema(t *testing.T) {
	src := t.TempDir()
	writeGzip(t, filepath.Join(src, "00.csv.gz"), "source_id,mag\n")
	writeGzip(t, filepath.Join(src, "01.csv.gz"), fileA(0, 3))
	writeGzip(t, filepath.Join(src, "02.csv.gz"), fileA(3, 3))
	writeGzip(t, filepath.Join(src, "03.csv.gz"), "source_id,mag\n")
	out := filepath.Join(t.TempDir(), "out.parquet")

	_, rep, err := New(Options{}, nil).Merge(context.Background(), src, out)
	require.NoError(t, err)
	assert.Equal(t, report.Counts{Success: 2, Skipped: 2}, rep.Counts)
	for _, o := range rep.ByStatus(report.StatusSkipped) {
		assert.Equal(t, report.ReasonNoData, o.Reason)
	}

	merged, err := columnar.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, table.Schema{
		{Name: "source_id", Type: table.Int64},
		{Name: "mag", Type: table.Float64},
	}, merged.Schema)
	assert.Equal(t, 6, merged.NumRows())
}

func TestMergeOnlyHeaderOnlyFiles(t *testing.T) {
	src := t.TempDir()
	writeGzip(t, filepath.Join(src, "00.csv.gz"), "source_id,mag\n")
	writeGzip(t, filepath.Join(src, "01.csv.gz"), "source_id,mag\n")
	out := filepath.Join(t.TempDir(), "out.parquet")

	path, rep, err := New(Options{}, nil).Merge(context.Background(), src, out)
	require.NoError(t, err)
	assert.Equal(t, out, path)
	assert.Equal(t, 2, rep.Counts.Skipped)
	assert.FileExists(t, out)
	assert.NoFileExists(t, out+tempSuffix)
}

func TestMergeLogsProgressWithUnknownMemory(t *testing.T) {
	src := t.TempDir()
	for i := 0; i < 5; i++ {
		writeGzip(t, filepath.Join(src, fmt.Sprintf("%02d.csv.gz", i)), fileA(i, 1))
	}
	tl := logger.NewTestLogger()
	m := New(Options{ProgressEvery: 2}, tl)
	m.memory = func() int64 { return memstat.Unknown }

	_, _, err := m.Merge(context.Background(), src, filepath.Join(t.TempDir(), "out.parquet"))
	require.NoError(t, err)

	var progress []logger.LogMessage
	for _, msg := range tl.GetMessages() {
		if msg.Message == "Merge progress" {
			progress = append(progress, msg)
		}
	}
	require.Len(t, progress, 3)
	assert.Equal(t, "2/5", progress[0].Fields["files"])
	assert.Equal(t, "5/5", progress[2].Fields["files"])
	assert.Equal(t, "unknown", progress[2].Fields["memory"])
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "init", StateInit.String())
	assert.Equal(t, "locked", StateLocked.String())
	assert.Equal(t, "closed", StateClosed.String())
}

func TestSessionRejectsRelock(t *testing.T) {
	s := newSession(filepath.Join(t.TempDir(), "x.parquet"))
	schema := table.Schema{{Name: "a", Type: table.Int64}}
	require.NoError(t, s.lock(schema))
	assert.Error(t, s.lock(schema))
	require.NoError(t, s.close())
	assert.Equal(t, StateClosed, s.state)
	assert.Error(t, s.append(table.New(schema)))
}
