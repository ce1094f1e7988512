package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"skycache/pkg/memstat"
	"skycache/pkg/report"
)

const (
	ProgressBar   = "━"
	ProgressEmpty = "─"
	barWidth      = 20
)

// Bar renders done out of total as a fixed-width progress bar
func Bar(done, total int) string {
	filled := 0
	if total > 0 {
		filled = done * barWidth / total
	}
	if filled > barWidth {
		filled = barWidth
	}
	return fmt.Sprintf("[%s%s] %d/%d",
		strings.Repeat(ProgressBar, filled),
		strings.Repeat(ProgressEmpty, barWidth-filled),
		done, total)
}

// PrintOutcome prints one status line for a processed item
func PrintOutcome(o report.Outcome) {
	switch o.Status {
	case report.StatusSuccess:
		detail := o.Item
		switch {
		case o.Rows > 0:
			detail += paint(dimStyle, fmt.Sprintf(" • %d rows", o.Rows))
		case o.Bytes > 0:
			detail += paint(dimStyle, " • "+memstat.Format(o.Bytes))
		}
		emit(false, paint(successStyle, "✓ ")+detail)
	case report.StatusSkipped:
		emit(false, paint(warningStyle, "↷ ")+o.Item+paint(dimStyle, " • "+o.Reason))
	case report.StatusFailed:
		emit(true, paint(errorStyle, "✗ ")+o.Item+paint(dimStyle, " • "+o.Error))
	}
}

// Summary renders the boxed summary of a finished stage
func Summary(rep *report.Report) string {
	lines := []string{
		paint(titleStyle, strings.ToUpper(rep.Stage)+" SUMMARY"),
		"",
		row("Succeeded", fmt.Sprintf("%d", rep.Counts.Success)),
		row("Skipped", fmt.Sprintf("%d", rep.Counts.Skipped)),
		row("Failed", fmt.Sprintf("%d", rep.Counts.Failed)),
	}
	if rows := rep.TotalRows(); rows > 0 {
		lines = append(lines, row("Rows", fmt.Sprintf("%d", rows)))
	}
	if b := rep.TotalBytes(); b > 0 {
		lines = append(lines, row("Transferred", memstat.Format(b)))
	}
	lines = append(lines, row("Duration", FormatDuration(rep.Duration())))
	lines = append(lines, paint(dimStyle, "run "+rep.RunID))

	body := lipgloss.JoinVertical(lipgloss.Left, lines...)
	if !color {
		return body
	}
	return boxStyle.Render(body)
}

// PrintSummary prints every failed item and then the boxed summary
func PrintSummary(rep *report.Report) {
	for _, o := range rep.ByStatus(report.StatusFailed) {
		PrintOutcome(o)
	}
	emit(rep.Counts.Failed > 0, Summary(rep))
}

func row(label, value string) string {
	return fmt.Sprintf("%s %s", paint(labelStyle, fmt.Sprintf("%-12s", label)), paint(valueStyle, value))
}

// FormatDuration formats a duration in a human-readable way
func FormatDuration(d time.Duration) string {
	switch {
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	default:
		return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
	}
}
