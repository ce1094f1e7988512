package merger

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	errs "skycache/pkg/errors"
	"skycache/pkg/logger"
	"skycache/pkg/memstat"
	"skycache/pkg/report"
	"skycache/pkg/storage"
	"skycache/pkg/table"
)

const (
	// Stage is the report stage name of a merge run
	Stage = "merge"

	// DefaultSuffix selects the raw files of a source directory
	DefaultSuffix = ".csv.gz"

	// DefaultProgressEvery is the number of files between progress lines
	DefaultProgressEvery = 10

	tempSuffix = ".tmp"
)

// ErrNoReadableFiles is returned when every source file failed to parse
var ErrNoReadableFiles = errors.New("no readable files to merge")

// Options configures a Merger
type Options struct {
	Suffix        string
	Read          table.ReadOptions
	ProgressEvery int
}

// Merger combines many raw delimited files into one Parquet file
type Merger struct {
	opts   Options
	logger logger.Logger
	memory func() int64
}

// New creates a Merger. Zero fields of opts take their defaults.
func New(opts Options, log logger.Logger) *Merger {
	if opts.Suffix == "" {
		opts.Suffix = DefaultSuffix
	}
	if opts.Read.Delimiter == 0 && opts.Read.CommentPrefix == "" && opts.Read.NullValues == nil {
		opts.Read = table.DefaultReadOptions()
	}
	if opts.Read.Delimiter == 0 {
		opts.Read.Delimiter = ','
	}
	if opts.ProgressEvery <= 0 {
		opts.ProgressEvery = DefaultProgressEvery
	}
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Merger{opts: opts, logger: log, memory: memstat.Current}
}

// Merge appends every raw file of sourceDir, in name order, to a single
// Parquet file at outputPath. The first readable file fixes the schema;
// later files with another schema are skipped. An existing outputPath is
// returned untouched. Files without rows never fix the schema unless no
// file has rows. The output only appears under outputPath once it is
// complete.
func (m *Merger) Merge(ctx context.Context, sourceDir, outputPath string) (string, *report.Report, error) {
	rep := report.New(Stage)
	defer rep.Finish()

	files, err := m.sources(sourceDir)
	if err != nil {
		return "", rep, err
	}

	if _, err := os.Stat(outputPath); err == nil {
		m.logger.InfoWithFields("Merged output already exists, skipping", map[string]interface{}{
			"path": outputPath,
		})
		return outputPath, rep, nil
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return "", rep, fmt.Errorf("failed to create output directory: %w", err)
	}

	logger.LogComponentStart(m.logger, "merger", map[string]interface{}{
		"source_dir": sourceDir,
		"output":     outputPath,
		"files":      len(files),
	})

	start := time.Now()
	out := newSession(outputPath + tempSuffix)
	for i, name := range files {
		if err := ctx.Err(); err != nil {
			return "", rep, m.abort(out, outputPath, err)
		}

		if err := m.mergeFile(out, rep, filepath.Join(sourceDir, name), name); err != nil {
			return "", rep, m.abort(out, outputPath, err)
		}

		if (i+1)%m.opts.ProgressEvery == 0 && i+1 < len(files) {
			m.progress(i+1, len(files), out.rows())
		}
	}
	m.progress(len(files), len(files), out.rows())

	if out.state == StateInit && out.empty != nil {
		if err := out.lock(out.empty); err != nil {
			return "", rep, m.abort(out, outputPath, fmt.Errorf("failed to open output: %w", err))
		}
		m.logger.InfoWithFields("Schema locked from a file without rows", map[string]interface{}{
			"columns": len(out.schema),
			"schema":  out.schema.String(),
		})
	}

	if out.state == StateInit {
		m.logger.ErrorWithFields("No readable files to merge", map[string]interface{}{
			"source_dir": sourceDir,
			"failed":     rep.Counts.Failed,
		})
		out.abort()
		return "", rep, ErrNoReadableFiles
	}

	if err := out.close(); err != nil {
		return "", rep, m.abort(out, outputPath, fmt.Errorf("failed to finalize output: %w", err))
	}
	if err := os.Rename(out.path, outputPath); err != nil {
		return "", rep, m.abort(out, outputPath, fmt.Errorf("failed to move output into place: %w", err))
	}

	logger.LogMetrics(m.logger, "merge", map[string]interface{}{
		"files_merged":  rep.Counts.Success,
		"files_skipped": rep.Counts.Skipped,
		"files_failed":  rep.Counts.Failed,
		"rows_written":  out.rows(),
		"duration":      time.Since(start).String(),
	})
	return outputPath, rep, nil
}

// sources lists the raw files of dir or fails with a precondition error
func (m *Merger) sources(dir string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, errs.Wrap(errs.ErrorTypePrecondition, "source directory not found: "+dir, err)
	}
	if !info.IsDir() {
		return nil, errs.Precondition("source path is not a directory: %s", dir)
	}

	files, err := storage.ListFiles(dir, m.opts.Suffix)
	if err != nil {
		return nil, errs.Wrap(errs.ErrorTypePrecondition, "cannot list source directory", err)
	}
	if len(files) == 0 {
		return nil, errs.Precondition("no %s files in %s", m.opts.Suffix, dir)
	}
	return files, nil
}

// mergeFile handles one raw file. Only output failures are returned; a
// file that cannot be read or does not match is recorded and skipped.
func (m *Merger) mergeFile(out *session, rep *report.Report, path, name string) error {
	t, err := table.ReadGzipFile(path, m.opts.Read)
	if err != nil {
		m.logger.WithError(err).ErrorWithFields("Failed to read file", map[string]interface{}{
			"file": name,
		})
		rep.Failed(name, err)
		return nil
	}

	// a header-only file has nothing to infer types from
	if t.NumRows() == 0 && (out.state == StateInit || !out.accepts(t)) {
		if out.empty == nil {
			out.empty = t.Schema
		}
		m.logger.InfoWithFields("File has no rows, skipping", map[string]interface{}{
			"file": name,
		})
		rep.Skipped(name, "", report.ReasonNoData)
		return nil
	}

	if out.state == StateInit {
		if err := out.lock(t.Schema); err != nil {
			return fmt.Errorf("failed to open output: %w", err)
		}
		m.logger.InfoWithFields("Schema locked", map[string]interface{}{
			"file":    name,
			"columns": len(t.Schema),
			"schema":  t.Schema.String(),
		})
	}

	if !out.accepts(t) {
		m.logger.WarnWithFields("Schema mismatch, skipping file", map[string]interface{}{
			"file": name,
			"diff": out.schema.Diff(t.Schema),
		})
		rep.Skipped(name, "", report.ReasonSchemaMismatch)
		return nil
	}

	if err := out.append(t); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	rep.Success(name, "", int64(t.NumRows()))
	return nil
}

func (m *Merger) progress(done, total int, rows int64) {
	m.logger.InfoWithFields("Merge progress", map[string]interface{}{
		"files":  fmt.Sprintf("%d/%d", done, total),
		"rows":   rows,
		"memory": memstat.Format(m.memory()),
	})
}

// abort removes the partial output and logs the fatal error
func (m *Merger) abort(out *session, outputPath string, err error) error {
	m.logger.WithError(err).ErrorWithFields("Merge failed, discarding partial output", map[string]interface{}{
		"output": outputPath,
		"state":  out.state.String(),
		"rows":   out.rows(),
	})
	out.abort()
	return err
}
