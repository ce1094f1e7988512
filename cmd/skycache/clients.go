package main

import (
	"skycache/internal/downloader"
	"skycache/pkg/catalog"
	"skycache/pkg/httpclient"
	"skycache/pkg/merger"
	"skycache/pkg/ratelimit"
	"skycache/pkg/retry"
	"skycache/pkg/table"
	"skycache/pkg/vizier"
)

// newHTTPClient builds a paced, retrying client. Streaming clients have no
// whole-request timeout; use them for any body whose size is unbounded.
func newHTTPClient(limiter ratelimit.Limiter, streaming bool) *httpclient.Client {
	hc := httpclient.New(cfg.HTTP)
	if streaming {
		hc = httpclient.NewStreaming(cfg.HTTP)
	}
	return httpclient.NewClient(hc, httpclient.Options{
		UserAgent: cfg.HTTP.UserAgent,
		Limiter:   limiter,
		Retry:     retry.FromSettings(cfg.Retry, log),
		Logger:    log,
	})
}

func newFetcher() *catalog.Fetcher {
	// an unlimited ASU-TSV query can run for many minutes
	client := vizier.NewClient(newHTTPClient(ratelimit.FromSettings(cfg.RateLimit), true), cfg.Vizier.BaseURL, log)
	return catalog.NewFetcher(client, log)
}

func newDownloader() *downloader.Downloader {
	limiter := ratelimit.FromSettings(cfg.RateLimit)
	return downloader.New(newHTTPClient(limiter, false), newHTTPClient(limiter, true), downloader.Options{
		Suffix:     cfg.Gaia.Suffix,
		BufferSize: cfg.Gaia.BufferSize,
	}, log)
}

func newMerger() *merger.Merger {
	return merger.New(merger.Options{
		Suffix: cfg.Gaia.Suffix,
		Read: table.ReadOptions{
			Delimiter:     []rune(cfg.Merge.Delimiter)[0],
			CommentPrefix: cfg.Merge.CommentPrefix,
			NullValues:    cfg.Merge.NullValues,
		},
		ProgressEvery: cfg.Merge.ProgressEvery,
	}, log)
}
