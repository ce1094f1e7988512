package ui

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// ASCIILogo is printed at the top of interactive runs
const ASCIILogo = `
  ╭───────────────────────────────────────╮
  │  ✦  s k y c a c h e                   │
  │     catalog fetch · download · merge  │
  ╰───────────────────────────────────────╯
`

var (
	mu     sync.Mutex
	out    io.Writer = os.Stdout
	color            = isTerminal(os.Stdout)
	quiet            = false
)

// SetOutput redirects all ui output. Color is kept only if w is a terminal.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	out = w
	color = isTerminal(w)
}

// SetColorEnabled forces colors on or off
func SetColorEnabled(enabled bool) {
	mu.Lock()
	defer mu.Unlock()
	color = enabled
}

// SetQuietMode suppresses everything except errors
func SetQuietMode(enabled bool) {
	mu.Lock()
	defer mu.Unlock()
	quiet = enabled
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func paint(style lipgloss.Style, text string) string {
	if !color {
		return text
	}
	return style.Render(text)
}

func emit(always bool, line string) {
	mu.Lock()
	defer mu.Unlock()
	if quiet && !always {
		return
	}
	fmt.Fprintln(out, line)
}

// PrintLogo prints the ASCII logo
func PrintLogo() {
	emit(false, paint(logoStyle, ASCIILogo))
}

// PrintError prints an error message, with an optional detail
func PrintError(msg string, args ...interface{}) {
	if len(args) > 0 {
		msg = msg + ": " + fmt.Sprintf("%v", args[0])
	}
	emit(true, paint(errorStyle, "✗ "+msg))
}

// PrintSuccess prints a success message
func PrintSuccess(msg string) {
	emit(false, paint(successStyle, "✓ "+msg))
}

// PrintInfo prints a label and its value
func PrintInfo(label string, value string) {
	emit(false, fmt.Sprintf("%s: %s", paint(labelStyle, label), paint(valueStyle, value)))
}

// PrintWarning prints a warning message, with an optional detail
func PrintWarning(msg string, args ...interface{}) {
	if len(args) > 0 {
		msg = msg + ": " + fmt.Sprintf("%v", args[0])
	}
	emit(false, paint(warningStyle, "! "+msg))
}

// PrintHighlight prints a highlighted message
func PrintHighlight(msg string) {
	emit(false, paint(highlightStyle, msg))
}
