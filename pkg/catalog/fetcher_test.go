package catalog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"skycache/pkg/columnar"
	errs "skycache/pkg/errors"
	"skycache/pkg/logger"
	"skycache/pkg/report"
	"skycache/pkg/table"
)

type fakeQuerier struct {
	calls  []string
	fail   map[string]error
	empty  map[string]bool
	cancel context.CancelFunc
}

func (q *fakeQuerier) Query(ctx context.Context, source string) ([]*table.Table, error) {
	q.calls = append(q.calls, source)
	if q.cancel != nil {
		q.cancel()
	}
	if err := q.fail[source]; err != nil {
		return nil, err
	}
	if q.empty[source] {
		return []*table.Table{table.New(table.Schema{{Name: "x", Type: table.Int64}})}, nil
	}
	t := table.New(table.Schema{
		{Name: "name", Type: table.String},
		{Name: "mag", Type: table.Float64},
	})
	t.Rows = [][]any{{source, 1.5}, {source, nil}}
	return []*table.Table{t}, nil
}

func TestCacheFileName(t *testing.T) {
	assert.Equal(t, "B_vsx_vsx.parquet", CacheFileName("B/vsx/vsx"))
	assert.Equal(t, "A_1.parquet", CacheFileName("A/1"))
	assert.Equal(t, "J_A_B.parquet", CacheFileName(`J\A/B`))
}

func TestSpecs(t *testing.T) {
	assert.Equal(t, []Spec{"A/1", "B/2"}, Specs([]string{" A/1", "", "B/2 "}))
}

func TestFetchWritesCacheFilesInOrder(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "catalogs")
	q := &fakeQuerier{}
	f := NewFetcher(q, logger.NewTestLogger())

	rep, err := f.Fetch(context.Background(), []Spec{"A/1", "B/2"}, dir, false)
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(dir, "A_1.parquet"),
		filepath.Join(dir, "B_2.parquet"),
	}, rep.Paths())
	assert.Equal(t, 2, rep.Counts.Success)
	assert.Equal(t, int64(4), rep.TotalRows())

	cached, err := columnar.ReadFile(filepath.Join(dir, "A_1.parquet"))
	require.NoError(t, err)
	assert.Equal(t, 2, cached.NumRows())
	assert.Equal(t, "A/1", cached.Rows[0][0])
	assert.Nil(t, cached.Rows[1][1])
}

func TestFetchIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	ids := []Spec{"A/1", "B/2"}

	first, err := NewFetcher(&fakeQuerier{}, nil).Fetch(context.Background(), ids, dir, false)
	require.NoError(t, err)

	q := &fakeQuerier{}
	tl := logger.NewTestLogger()
	second, err := NewFetcher(q, tl).Fetch(context.Background(), ids, dir, false)
	require.NoError(t, err)

	assert.Empty(t, q.calls)
	assert.Equal(t, first.Paths(), second.Paths())
	assert.Equal(t, 2, second.Counts.Skipped)
	for _, o := range second.Outcomes {
		assert.Equal(t, report.ReasonAlreadyCached, o.Reason)
	}
	assert.True(t, tl.HasMessage("Catalog already cached, skipping"))
}

func TestFetchForceRefetches(t *testing.T) {
	dir := t.TempDir()
	ids := []Spec{"A/1"}
	_, err := NewFetcher(&fakeQuerier{}, nil).Fetch(context.Background(), ids, dir, false)
	require.NoError(t, err)

	q := &fakeQuerier{}
	rep, err := NewFetcher(q, nil).Fetch(context.Background(), ids, dir, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"A/1"}, q.calls)
	assert.Equal(t, 1, rep.Counts.Success)
}

func TestFetchIsolatesFailures(t *testing.T) {
	dir := t.TempDir()
	q := &fakeQuerier{fail: map[string]error{"B/2": errs.New(errs.ErrorTypeServerError, "server error")}}
	tl := logger.NewTestLogger()

	rep, err := NewFetcher(q, tl).Fetch(context.Background(), []Spec{"A/1", "B/2", "C/3"}, dir, false)
	require.NoError(t, err)

	assert.Equal(t, []string{"A/1", "B/2", "C/3"}, q.calls)
	assert.Equal(t, []string{
		filepath.Join(dir, "A_1.parquet"),
		filepath.Join(dir, "C_3.parquet"),
	}, rep.Paths())
	assert.Equal(t, 1, rep.Counts.Failed)
	assert.NoFileExists(t, filepath.Join(dir, "B_2.parquet"))
	assert.True(t, tl.HasError())
}

func TestFetchSkipsEmptyResults(t *testing.T) {
	dir := t.TempDir()
	q := &fakeQuerier{empty: map[string]bool{"E/1": true}}

	rep, err := NewFetcher(q, nil).Fetch(context.Background(), []Spec{"E/1"}, dir, false)
	require.NoError(t, err)

	assert.Empty(t, rep.Paths())
	require.Len(t, rep.Outcomes, 1)
	assert.Equal(t, report.StatusSkipped, rep.Outcomes[0].Status)
	assert.Equal(t, report.ReasonNoData, rep.Outcomes[0].Reason)
	assert.NoFileExists(t, filepath.Join(dir, "E_1.parquet"))
}

func TestFetchUnusableCacheDir(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))

	q := &fakeQuerier{}
	_, err := NewFetcher(q, nil).Fetch(context.Background(), []Spec{"A/1"}, filepath.Join(file, "sub"), false)
	require.Error(t, err)
	assert.True(t, errs.IsPrecondition(err))
	assert.Empty(t, q.calls)
}

func TestFetchStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	q := &fakeQuerier{cancel: cancel}

	_, err := NewFetcher(q, nil).Fetch(ctx, []Spec{"A/1", "B/2"}, t.TempDir(), false)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, []string{"A/1"}, q.calls)
}
