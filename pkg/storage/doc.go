// Package storage manages the local files a stage writes into one
// directory.
//
// Writes stream through a fixed-size buffer into a ".part" file that is
// renamed into place only after the copy and close both succeed, so a
// finished name on disk always refers to a complete file. Existence checks
// and listings ignore part files.
package storage
