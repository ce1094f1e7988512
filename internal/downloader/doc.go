// Package downloader mirrors an HTTP directory listing, such as the Gaia
// bulk download pages, into a local directory.
//
// Only links whose path ends in the configured suffix are fetched. Files
// already present locally are left alone, and each download is streamed to
// a ".part" file that is renamed once complete.
package downloader
