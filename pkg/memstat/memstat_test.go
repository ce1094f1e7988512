package memstat

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseVmRSS(t *testing.T) {
	status := "Name:\tskycache\nVmPeak:\t  20000 kB\nVmRSS:\t   1536 kB\nThreads:\t8\n"
	assert.Equal(t, int64(1536*1024), parseVmRSS(strings.NewReader(status)))

	assert.Equal(t, Unknown, parseVmRSS(strings.NewReader("Name:\tx\n")))
	assert.Equal(t, Unknown, parseVmRSS(strings.NewReader("VmRSS:\tlots kB\n")))
	assert.Equal(t, Unknown, parseVmRSS(strings.NewReader("VmRSS:\n")))
}

func TestFromProcMissingFile(t *testing.T) {
	assert.Equal(t, Unknown, fromProc(filepath.Join(t.TempDir(), "status")))
}

func TestCurrentIsPositive(t *testing.T) {
	assert.Greater(t, Current(), int64(0))
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "unknown", Format(Unknown))
	assert.Equal(t, "512 B", Format(512))
	assert.Equal(t, "1.5 KiB", Format(1536))
	assert.Equal(t, "2.0 MiB", Format(2<<20))
	assert.Equal(t, "1.0 GiB", Format(1<<30))
}
