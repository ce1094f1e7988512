// Package merger combines a directory of gzip-compressed delimited files
// into a single Parquet file, and loads Parquet files back into memory.
//
// The first file that can be read fixes the output schema. Files that fail
// to parse are recorded as failed, and files with a different schema are
// skipped, so the output always has exactly one schema. Each accepted file
// is written as its own row group and released before the next one is read,
// which keeps memory bounded by the largest single file.
//
// The output is built under a ".tmp" name and renamed when complete. If the
// run fails the temp file is removed. If the final output already exists
// the merge is skipped entirely.
package merger
