// Package vizier is a small client for the VizieR astronomical catalog
// service. It issues ASU-TSV queries through pkg/httpclient and parses the
// tab-separated response into pkg/table tables.
package vizier
