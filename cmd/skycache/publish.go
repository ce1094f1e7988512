package main

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/spf13/cobra"
	"skycache/pkg/columnar"
	"skycache/pkg/publish"
	"skycache/pkg/storage"
	"skycache/pkg/ui"

	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/gcsblob"
	_ "gocloud.dev/blob/memblob"
	_ "gocloud.dev/blob/s3blob"
)

var (
	publishBucket    string
	publishPrefix    string
	publishOverwrite bool
)

// publishCmd represents the publish command
var publishCmd = &cobra.Command{
	Use:   "publish [file...]",
	Short: "Upload cached and merged files to object storage",
	Long: `Upload files to a bucket given as a gocloud URL (file://, s3://, gs://).
Each file is stored under <prefix>/<file name>. Objects that already exist
are skipped unless --overwrite is given.

Without file arguments every cached catalog and every merged output under
the data directory is published.`,
	Example: `  skycache publish --bucket s3://my-bucket?region=eu-west-1 --prefix skycache
  skycache publish --bucket file:///srv/mirror data/merged/gaia_source.parquet`,
	RunE: runPublish,
}

func init() {
	rootCmd.AddCommand(publishCmd)
	publishCmd.Flags().StringVar(&publishBucket, "bucket", "", "bucket URL (default from config)")
	publishCmd.Flags().StringVar(&publishPrefix, "prefix", "", "key prefix (default from config)")
	publishCmd.Flags().BoolVar(&publishOverwrite, "overwrite", false, "replace objects that already exist")
}

func runPublish(cmd *cobra.Command, args []string) error {
	if cfg.Publish.BucketURL == "" {
		return fmt.Errorf("no bucket given: use --bucket or publish.bucket_url")
	}
	prefix := cfg.Publish.Prefix
	if cmd.Flags().Changed("prefix") {
		prefix = publishPrefix
	}

	paths := args
	if len(paths) == 0 {
		var err error
		if paths, err = localOutputs(); err != nil {
			return err
		}
	}
	if len(paths) == 0 {
		ui.PrintWarning("Nothing to publish")
		return nil
	}

	p := publish.New(publish.Options{Overwrite: publishOverwrite || cfg.Publish.Overwrite}, log)
	rep, err := p.Publish(cmd.Context(), cfg.Publish.BucketURL, prefix, paths)
	for _, o := range rep.Outcomes {
		ui.PrintOutcome(o)
	}
	if err != nil {
		return err
	}
	finish(rep)
	return nil
}

// localOutputs lists the Parquet files of the catalog and merged directories
func localOutputs() ([]string, error) {
	var paths []string
	for _, dir := range []string{cfg.CatalogDir(), filepath.Dir(cfg.MergedPath(cfg.Gaia.Dataset))} {
		names, err := storage.ListFiles(dir, columnar.Extension)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, err
		}
		for _, name := range names {
			paths = append(paths, filepath.Join(dir, name))
		}
	}
	return paths, nil
}
