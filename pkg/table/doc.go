// Package table is the in-memory tabular model shared by the catalog
// fetcher, the merger and the loader, plus the reader for raw
// gzip-compressed delimited files.
package table
