package merger

import (
	"context"
	"os"

	"skycache/pkg/columnar"
	"skycache/pkg/logger"
	"skycache/pkg/table"
)

// Load concatenates the Parquet files at paths, in order, into one table.
// Missing paths and files whose schema differs from the first loaded file
// are skipped with a notice; a mismatch is detected from the footer alone.
// It returns nil when no path exists.
func Load(ctx context.Context, paths []string, log logger.Logger) (*table.Table, error) {
	if log == nil {
		log = logger.NewNopLogger()
	}

	var combined *table.Table
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if _, err := os.Stat(path); err != nil {
			log.WarnWithFields("File not found, skipping", map[string]interface{}{
				"path": path,
			})
			continue
		}

		if combined != nil {
			schema, err := columnar.ReadSchema(path)
			if err != nil {
				log.WithError(err).ErrorWithFields("Failed to load file", map[string]interface{}{
					"path": path,
				})
				return nil, err
			}
			if !combined.Schema.Equal(schema) {
				log.WarnWithFields("Schema mismatch, skipping file", map[string]interface{}{
					"path": path,
					"diff": combined.Schema.Diff(schema),
				})
				continue
			}
		}

		t, err := columnar.ReadFile(path)
		if err != nil {
			log.WithError(err).ErrorWithFields("Failed to load file", map[string]interface{}{
				"path": path,
			})
			return nil, err
		}

		if combined == nil {
			combined = t
			log.DebugWithFields("Loaded file", map[string]interface{}{
				"path": path,
				"rows": t.NumRows(),
			})
			continue
		}
		if err := combined.Append(t); err != nil {
			return nil, err
		}
		log.DebugWithFields("Loaded file", map[string]interface{}{
			"path": path,
			"rows": t.NumRows(),
		})
	}

	if combined == nil {
		log.Warn("No files to load")
	}
	return combined, nil
}
