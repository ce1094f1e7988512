// Package logger provides the structured logging interface used by every
// skycache stage.
//
// It wraps zerolog. Stages receive a Logger as a collaborator instead of
// reaching for a global, so tests can pass NewTestLogger and assert on what
// was reported:
//
//	log, err := logger.New(&cfg.Logging)
//	fetcher := catalog.NewFetcher(client, log)
//
//	tl := logger.NewTestLogger()
//	merger.New(opts, tl)
//	tl.HasMessage("Schema mismatch, skipping file")
//
// Output is a colored console stream on stderr by default, JSON lines when
// Format is "json", and is additionally appended to File when set.
package logger
