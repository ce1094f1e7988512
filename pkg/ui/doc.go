// Package ui prints styled status lines and run summaries for the CLI.
// Colors come from lipgloss and are dropped automatically when output is
// not a terminal.
package ui
