package publish

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"

	"gocloud.dev/blob"
	errs "skycache/pkg/errors"
	"skycache/pkg/logger"
	"skycache/pkg/report"
)

// Stage is the report stage name of a publish run
const Stage = "publish"

// ContentType is set on every uploaded Parquet object
const ContentType = "application/vnd.apache.parquet"

// Options configures a Publisher
type Options struct {
	// Overwrite replaces objects that already exist in the bucket
	Overwrite bool
}

// Publisher copies local files into an object storage bucket
type Publisher struct {
	opts   Options
	logger logger.Logger
}

// New creates a Publisher
func New(opts Options, log logger.Logger) *Publisher {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Publisher{opts: opts, logger: log}
}

// Key returns the object key for a local file under prefix
func Key(prefix, localPath string) string {
	return path.Join(prefix, filepath.Base(localPath))
}

// Publish opens bucketURL and uploads every path to prefix/<basename>. The
// URL scheme must be registered by importing its gocloud driver.
func (p *Publisher) Publish(ctx context.Context, bucketURL, prefix string, paths []string) (*report.Report, error) {
	bucket, err := blob.OpenBucket(ctx, bucketURL)
	if err != nil {
		return report.New(Stage), fmt.Errorf("failed to open bucket %s: %w", bucketURL, err)
	}
	defer bucket.Close()

	return p.PublishTo(ctx, bucket, prefix, paths)
}

// PublishTo uploads paths into an already open bucket. Existing objects
// are skipped unless Overwrite is set. A failed file is recorded and the
// rest are still attempted. Two paths that map to the same key are
// rejected before anything is uploaded.
func (p *Publisher) PublishTo(ctx context.Context, bucket *blob.Bucket, prefix string, paths []string) (*report.Report, error) {
	rep := report.New(Stage)
	defer rep.Finish()

	if err := uniqueKeys(prefix, paths); err != nil {
		return rep, err
	}

	for _, local := range paths {
		if err := ctx.Err(); err != nil {
			return rep, err
		}

		key := Key(prefix, local)
		if !p.opts.Overwrite {
			exists, err := bucket.Exists(ctx, key)
			if err != nil {
				p.fail(rep, local, fmt.Errorf("failed to check %s: %w", key, err))
				continue
			}
			if exists {
				p.logger.InfoWithFields("Object already exists, skipping", map[string]interface{}{
					"key": key,
				})
				rep.Skipped(local, key, report.ReasonAlreadyExists)
				continue
			}
		}

		written, err := upload(ctx, bucket, key, local)
		if err != nil {
			p.fail(rep, local, err)
			continue
		}

		p.logger.InfoWithFields("File published", map[string]interface{}{
			"file":  local,
			"key":   key,
			"bytes": written,
		})
		rep.Add(report.Outcome{Item: local, Status: report.StatusSuccess, Path: key, Bytes: written})
	}
	return rep, nil
}

// upload streams one file into key; a failed copy cancels the write so no
// partial object is committed.
func upload(ctx context.Context, bucket *blob.Bucket, key, local string) (int64, error) {
	f, err := os.Open(local)
	if err != nil {
		return 0, fmt.Errorf("failed to open %s: %w", local, err)
	}
	defer f.Close()

	wctx, cancel := context.WithCancel(ctx)
	defer cancel()

	w, err := bucket.NewWriter(wctx, key, &blob.WriterOptions{ContentType: ContentType})
	if err != nil {
		return 0, fmt.Errorf("failed to create writer for %s: %w", key, err)
	}

	written, err := io.Copy(w, f)
	if err != nil {
		cancel()
		_ = w.Close()
		return written, fmt.Errorf("failed to upload %s: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return written, fmt.Errorf("failed to commit %s: %w", key, err)
	}
	return written, nil
}

// uniqueKeys fails when two local files would be published under one key
func uniqueKeys(prefix string, paths []string) error {
	seen := make(map[string]string, len(paths))
	for _, local := range paths {
		key := Key(prefix, local)
		if first, ok := seen[key]; ok {
			return errs.Precondition("%s and %s would both be published as %s", first, local, key)
		}
		seen[key] = local
	}
	return nil
}

func (p *Publisher) fail(rep *report.Report, local string, err error) {
	p.logger.WithError(err).ErrorWithFields("Failed to publish file", map[string]interface{}{
		"file": local,
	})
	rep.Failed(local, err)
}
