package ui

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"skycache/pkg/report"
)

func capture(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	SetQuietMode(false)
	t.Cleanup(func() {
		SetQuietMode(false)
	})
	return &buf
}

func TestPlainOutputWhenNotATerminal(t *testing.T) {
	buf := capture(t)

	PrintSuccess("done")
	PrintInfo("Dataset", "gaia_source")
	PrintError("Failed to merge", "boom")

	assert.Equal(t, "✓ done\nDataset: gaia_source\n✗ Failed to merge: boom\n", buf.String())
}

func TestQuietModeKeepsErrors(t *testing.T) {
	buf := capture(t)
	SetQuietMode(true)

	PrintSuccess("hidden")
	PrintWarning("hidden too")
	PrintError("shown")

	assert.Equal(t, "✗ shown\n", buf.String())
}

func TestPrintOutcome(t *testing.T) {
	buf := capture(t)

	PrintOutcome(report.Outcome{Item: "B/vsx/vsx", Status: report.StatusSuccess, Rows: 42})
	PrintOutcome(report.Outcome{Item: "a.csv.gz", Status: report.StatusSkipped, Reason: report.ReasonAlreadyExists})
	PrintOutcome(report.Outcome{Item: "b.csv.gz", Status: report.StatusFailed, Error: "timeout"})
	PrintOutcome(report.Outcome{Item: "c.csv.gz", Status: report.StatusSuccess, Bytes: 1536})

	out := buf.String()
	assert.Contains(t, out, "✓ B/vsx/vsx • 42 rows")
	assert.Contains(t, out, "↷ a.csv.gz • already exists")
	assert.Contains(t, out, "✗ b.csv.gz • timeout")
	assert.Contains(t, out, "✓ c.csv.gz • 1.5 KiB")
}

func TestSummary(t *testing.T) {
	capture(t)
	rep := report.New("merge")
	rep.Success("a", "", 100)
	rep.Skipped("b", "", report.ReasonSchemaMismatch)
	rep.Failed("c", errors.New("bad gzip"))
	rep.Finish()

	s := Summary(rep)
	assert.Contains(t, s, "MERGE SUMMARY")
	assert.Contains(t, s, "Succeeded    1")
	assert.Contains(t, s, "Rows         100")
	assert.Contains(t, s, rep.RunID)
	assert.NotContains(t, s, "Transferred")
}

func TestBar(t *testing.T) {
	assert.Equal(t, "[━━━━━━━━━━──────────] 5/10", Bar(5, 10))
	assert.Equal(t, "[────────────────────] 0/0", Bar(0, 0))
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "250ms", FormatDuration(250*time.Millisecond))
	assert.Equal(t, "2m5s", FormatDuration(125*time.Second))
}
