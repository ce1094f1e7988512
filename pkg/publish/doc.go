// Package publish uploads cached catalogs and merged outputs to object
// storage through gocloud.dev/blob, so any registered bucket scheme works
// (file://, s3://, gs://, mem://).
package publish
