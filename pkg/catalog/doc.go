// Package catalog downloads whole VizieR catalogs and keeps each one as a
// Snappy-compressed Parquet file in a cache directory.
//
// Cache files are named after the catalog identifier with path separators
// replaced by underscores. Once written a cache file is never touched again
// unless a fetch is forced, so repeated runs make no network calls.
//
// Basic usage:
//
//	client := vizier.NewClient(hc, cfg.Vizier.BaseURL, log)
//	fetcher := catalog.NewFetcher(client, log)
//	rep, err := fetcher.Fetch(ctx, catalog.Specs(cfg.Vizier.Catalogs), cfg.CatalogDir(), false)
//	if err != nil {
//		return err
//	}
//	paths := rep.Paths()
package catalog
