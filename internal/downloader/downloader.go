package downloader

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"skycache/pkg/httpclient"
	"skycache/pkg/logger"
	"skycache/pkg/report"
	"skycache/pkg/storage"
)

const (
	// Stage is the report stage name of a download run
	Stage = "download"

	// DefaultSuffix selects the gzip-compressed CSV files of a listing
	DefaultSuffix = ".csv.gz"
)

// Options configures a Downloader
type Options struct {
	Suffix     string
	BufferSize int
}

// Downloader mirrors the matching files of an HTTP directory listing into
// a local directory, one file at a time.
type Downloader struct {
	pages  *httpclient.Client
	files  *httpclient.Client
	opts   Options
	logger logger.Logger
}

// New creates a Downloader. pages fetches the listing page; files streams
// the downloads and should not carry a whole-request timeout.
func New(pages, files *httpclient.Client, opts Options, log logger.Logger) *Downloader {
	if opts.Suffix == "" {
		opts.Suffix = DefaultSuffix
	}
	if opts.BufferSize <= 0 {
		opts.BufferSize = storage.DefaultBufferSize
	}
	if files == nil {
		files = pages
	}
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Downloader{pages: pages, files: files, opts: opts, logger: log}
}

// Download fetches the listing at baseURL and saves every listed file that
// is not yet in destDir. A file that fails is recorded and the next one is
// attempted; only an unreachable listing or a cancelled context aborts the
// run. It returns destDir.
func (d *Downloader) Download(ctx context.Context, baseURL, destDir string) (string, *report.Report, error) {
	rep := report.New(Stage)
	defer rep.Finish()

	listing, err := d.List(ctx, baseURL)
	if err != nil {
		return destDir, rep, err
	}

	store, err := storage.NewManager(destDir, d.opts.BufferSize)
	if err != nil {
		return destDir, rep, err
	}

	logger.LogComponentStart(d.logger, "downloader", map[string]interface{}{
		"base_url": baseURL,
		"dest_dir": destDir,
		"files":    len(listing),
	})

	for i, u := range listing {
		if err := ctx.Err(); err != nil {
			logger.LogComponentStop(d.logger, "downloader", "cancelled")
			return destDir, rep, err
		}

		name := FileName(u)
		if store.Exists(name) {
			d.logger.InfoWithFields("File already exists, skipping", map[string]interface{}{
				"file": name,
			})
			rep.Skipped(name, store.Path(name), report.ReasonAlreadyExists)
			continue
		}

		d.logger.InfoWithFields("Downloading file", map[string]interface{}{
			"file":     name,
			"position": fmt.Sprintf("%d/%d", i+1, len(listing)),
		})
		d.fetch(ctx, rep, store, u, name)
	}

	logger.LogMetrics(d.logger, "download", map[string]interface{}{
		"success": rep.Counts.Success,
		"skipped": rep.Counts.Skipped,
		"failed":  rep.Counts.Failed,
		"bytes":   rep.TotalBytes(),
	})
	return destDir, rep, nil
}

// List fetches and parses the listing page at baseURL
func (d *Downloader) List(ctx context.Context, baseURL string) (Listing, error) {
	page, err := d.pages.GetBytes(ctx, baseURL)
	if err != nil {
		d.logger.WithError(err).ErrorWithFields("Failed to fetch listing", map[string]interface{}{
			"url": baseURL,
		})
		return nil, fmt.Errorf("failed to fetch listing %s: %w", baseURL, err)
	}

	listing, err := ParseListing(page, baseURL, d.opts.Suffix)
	if err != nil {
		return nil, err
	}
	d.logger.InfoWithFields("Listing parsed", map[string]interface{}{
		"url":    baseURL,
		"suffix": d.opts.Suffix,
		"files":  len(listing),
	})
	return listing, nil
}

func (d *Downloader) fetch(ctx context.Context, rep *report.Report, store *storage.Manager, u *url.URL, name string) {
	start := time.Now()

	resp, err := d.files.Open(ctx, u.String())
	if err != nil {
		d.fail(rep, name, err)
		return
	}
	defer resp.Body.Close()

	written, err := store.SaveStream(resp.Body, name)
	if err != nil {
		d.fail(rep, name, err)
		return
	}

	d.logger.InfoWithFields("File downloaded", map[string]interface{}{
		"file":     name,
		"bytes":    written,
		"duration": time.Since(start).String(),
	})
	rep.Add(report.Outcome{
		Item:   name,
		Status: report.StatusSuccess,
		Path:   store.Path(name),
		Bytes:  written,
	})
}

func (d *Downloader) fail(rep *report.Report, name string, err error) {
	d.logger.WithError(err).ErrorWithFields("Failed to download file", map[string]interface{}{
		"file": name,
	})
	rep.Failed(name, err)
}
