package catalog

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"skycache/pkg/columnar"
	errs "skycache/pkg/errors"
	"skycache/pkg/logger"
	"skycache/pkg/report"
	"skycache/pkg/table"
)

// Stage is the report stage name of a fetch run
const Stage = "fetch"

// Querier runs a full-catalog query. vizier.Client satisfies it.
type Querier interface {
	Query(ctx context.Context, source string) ([]*table.Table, error)
}

// Fetcher caches catalogs as Parquet files, one per identifier
type Fetcher struct {
	querier Querier
	logger  logger.Logger
}

// NewFetcher creates a Fetcher backed by q
func NewFetcher(q Querier, log logger.Logger) *Fetcher {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Fetcher{querier: q, logger: log}
}

// Fetch makes sure every identifier in ids has a cache file in cacheDir.
// Existing files are reused unless force is set. A failing identifier is
// recorded in the report and does not stop the batch; the returned error
// is reserved for an unusable cacheDir or a cancelled context.
func (f *Fetcher) Fetch(ctx context.Context, ids []Spec, cacheDir string, force bool) (*report.Report, error) {
	rep := report.New(Stage)
	defer rep.Finish()

	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return rep, errs.Wrap(errs.ErrorTypePrecondition, "cannot create cache directory "+cacheDir, err)
	}

	logger.LogComponentStart(f.logger, "catalog fetcher", map[string]interface{}{
		"catalogs":  len(ids),
		"cache_dir": cacheDir,
		"force":     force,
	})

	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			logger.LogComponentStop(f.logger, "catalog fetcher", "cancelled")
			return rep, err
		}
		f.fetchOne(ctx, rep, id, cacheDir, force)
	}

	logger.LogMetrics(f.logger, "catalog fetch", map[string]interface{}{
		"success": rep.Counts.Success,
		"skipped": rep.Counts.Skipped,
		"failed":  rep.Counts.Failed,
		"rows":    rep.TotalRows(),
	})
	return rep, nil
}

func (f *Fetcher) fetchOne(ctx context.Context, rep *report.Report, id Spec, cacheDir string, force bool) {
	item := string(id)
	path := filepath.Join(cacheDir, CacheFileName(id))

	if !force {
		if _, err := os.Stat(path); err == nil {
			f.logger.InfoWithFields("Catalog already cached, skipping", map[string]interface{}{
				"catalog": item,
				"path":    path,
			})
			rep.Skipped(item, path, report.ReasonAlreadyCached)
			return
		}
	}

	start := time.Now()
	f.logger.InfoWithFields("Fetching catalog", map[string]interface{}{"catalog": item})

	tables, err := f.querier.Query(ctx, item)
	if err != nil {
		f.fail(rep, item, fmt.Errorf("query failed: %w", err))
		return
	}
	if len(tables) == 0 || tables[0].NumRows() == 0 {
		f.logger.WarnWithFields("No data returned for catalog", map[string]interface{}{"catalog": item})
		rep.Skipped(item, "", report.ReasonNoData)
		return
	}

	t := tables[0]
	if err := columnar.WriteFile(path, t); err != nil {
		f.fail(rep, item, fmt.Errorf("failed to cache: %w", err))
		return
	}

	f.logger.InfoWithFields("Catalog cached", map[string]interface{}{
		"catalog":  item,
		"path":     path,
		"rows":     t.NumRows(),
		"columns":  t.NumColumns(),
		"duration": time.Since(start).String(),
	})
	rep.Success(item, path, int64(t.NumRows()))
}

func (f *Fetcher) fail(rep *report.Report, item string, err error) {
	f.logger.WithError(err).ErrorWithFields("Failed to fetch catalog", map[string]interface{}{
		"catalog": item,
	})
	rep.Failed(item, err)
}
