package publish

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocloud.dev/blob"
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/memblob"
	errs "skycache/pkg/errors"
	"skycache/pkg/logger"
	"skycache/pkg/report"
)

func localFiles(t *testing.T, names ...string) []string {
	t.Helper()
	dir := t.TempDir()
	var paths []string
	for _, name := range names {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte("data:"+name), 0644))
		paths = append(paths, p)
	}
	return paths
}

func TestKey(t *testing.T) {
	assert.Equal(t, "catalogs/B_vsx_vsx.parquet", Key("catalogs", "/data/catalogs/B_vsx_vsx.parquet"))
	assert.Equal(t, "out.parquet", Key("", "out.parquet"))
}

func TestPublishToUploadsAndSkips(t *testing.T) {
	ctx := context.Background()
	bucket, err := blob.OpenBucket(ctx, "mem://")
	require.NoError(t, err)
	defer bucket.Close()

	paths := localFiles(t, "a.parquet", "b.parquet")
	tl := logger.NewTestLogger()
	p := New(Options{}, tl)

	rep, err := p.PublishTo(ctx, bucket, "skycache", paths)
	require.NoError(t, err)
	assert.Equal(t, 2, rep.Counts.Success)
	assert.Equal(t, []string{"skycache/a.parquet", "skycache/b.parquet"}, rep.Paths())

	data, err := bucket.ReadAll(ctx, "skycache/a.parquet")
	require.NoError(t, err)
	assert.Equal(t, "data:a.parquet", string(data))

	attrs, err := bucket.Attributes(ctx, "skycache/b.parquet")
	require.NoError(t, err)
	assert.Equal(t, ContentType, attrs.ContentType)

	again, err := p.PublishTo(ctx, bucket, "skycache", paths)
	require.NoError(t, err)
	assert.Equal(t, 2, again.Counts.Skipped)
	assert.True(t, tl.HasMessage("Object already exists, skipping"))
}

func TestPublishToOverwrite(t *testing.T) {
	ctx := context.Background()
	bucket, err := blob.OpenBucket(ctx, "mem://")
	require.NoError(t, err)
	defer bucket.Close()
	require.NoError(t, bucket.WriteAll(ctx, "a.parquet", []byte("old"), nil))

	paths := localFiles(t, "a.parquet")
	rep, err := New(Options{Overwrite: true}, nil).PublishTo(ctx, bucket, "", paths)
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Counts.Success)

	data, err := bucket.ReadAll(ctx, "a.parquet")
	require.NoError(t, err)
	assert.Equal(t, "data:a.parquet", string(data))
}

func TestPublishMissingFileIsRecorded(t *testing.T) {
	ctx := context.Background()
	bucket, err := blob.OpenBucket(ctx, "mem://")
	require.NoError(t, err)
	defer bucket.Close()

	paths := append([]string{filepath.Join(t.TempDir(), "gone.parquet")}, localFiles(t, "ok.parquet")...)
	rep, err := New(Options{}, nil).PublishTo(ctx, bucket, "p", paths)
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Counts.Failed)
	assert.Equal(t, 1, rep.Counts.Success)
	assert.Equal(t, report.StatusFailed, rep.Outcomes[0].Status)
}

func TestPublishToRejectsDuplicateKeys(t *testing.T) {
	ctx := context.Background()
	bucket, err := blob.OpenBucket(ctx, "mem://")
	require.NoError(t, err)
	defer bucket.Close()

	paths := append(localFiles(t, "out.parquet", "b.parquet"), localFiles(t, "out.parquet")...)
	rep, err := New(Options{}, nil).PublishTo(ctx, bucket, "p", paths)
	require.Error(t, err)
	assert.True(t, errs.IsPrecondition(err))
	assert.Empty(t, rep.Outcomes)

	exists, err := bucket.Exists(ctx, "p/b.parquet")
	require.NoError(t, err)
	assert.False(t, exists, "nothing is uploaded when keys collide")
}

func TestPublishFileBucket(t *testing.T) {
	dir := t.TempDir()
	paths := localFiles(t, "merged.parquet")

	rep, err := New(Options{}, nil).Publish(context.Background(), "file://"+filepath.ToSlash(dir), "gaia", paths)
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Counts.Success)
	assert.FileExists(t, filepath.Join(dir, "gaia", "merged.parquet"))
}

func TestPublishUnknownScheme(t *testing.T) {
	_, err := New(Options{}, nil).Publish(context.Background(), "nope://bucket", "", nil)
	assert.Error(t, err)
}
