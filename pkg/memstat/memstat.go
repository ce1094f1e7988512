// Package memstat reports process memory for progress logs. It never fails:
// Unknown is returned when no source is available.
package memstat

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"runtime"
	"strconv"
	"strings"
)

// Unknown is returned when memory usage cannot be determined
const Unknown int64 = -1

const procStatus = "/proc/self/status"

// Current returns the resident set size in bytes, falling back to the Go
// runtime's view of memory obtained from the OS.
func Current() int64 {
	if rss := fromProc(procStatus); rss >= 0 {
		return rss
	}
	return fromRuntime()
}

func fromProc(path string) int64 {
	f, err := os.Open(path)
	if err != nil {
		return Unknown
	}
	defer f.Close()
	return parseVmRSS(f)
}

// parseVmRSS finds the "VmRSS:   1234 kB" line
func parseVmRSS(r io.Reader) int64 {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "VmRSS:") {
			continue
		}
		fields := strings.Fields(strings.TrimPrefix(line, "VmRSS:"))
		if len(fields) == 0 {
			return Unknown
		}
		kb, err := strconv.ParseInt(fields[0], 10, 64)
		if err != nil || kb < 0 {
			return Unknown
		}
		return kb * 1024
	}
	return Unknown
}

func fromRuntime() int64 {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	if m.Sys == 0 {
		return Unknown
	}
	return int64(m.Sys)
}

// Format renders a byte count with a binary unit, or "unknown"
func Format(bytes int64) string {
	if bytes < 0 {
		return "unknown"
	}
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
