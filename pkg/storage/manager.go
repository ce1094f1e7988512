package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// PartSuffix marks a file that is still being written
const PartSuffix = ".part"

// DefaultBufferSize is the chunk size used when streaming to disk
const DefaultBufferSize = 1 << 20

// Manager handles files in one directory: existence checks, listing and
// atomic streaming writes.
type Manager struct {
	dir        string
	bufferSize int
}

// NewManager creates the directory if needed
func NewManager(dir string, bufferSize int) (*Manager, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}
	return &Manager{dir: dir, bufferSize: bufferSize}, nil
}

// Dir returns the managed directory
func (m *Manager) Dir() string { return m.dir }

// Path returns the full path for name inside the directory
func (m *Manager) Path(name string) string {
	return filepath.Join(m.dir, name)
}

// Exists reports whether a finished file called name is present
func (m *Manager) Exists(name string) bool {
	info, err := os.Stat(m.Path(name))
	return err == nil && !info.IsDir()
}

// SaveStream copies r to name through name.part and renames it into place.
// The part file is removed on any failure.
func (m *Manager) SaveStream(r io.Reader, name string) (int64, error) {
	final := m.Path(name)
	tempFile := final + PartSuffix

	out, err := os.Create(tempFile)
	if err != nil {
		return 0, fmt.Errorf("failed to create temporary file: %w", err)
	}

	written, err := io.CopyBuffer(out, r, make([]byte, m.bufferSize))
	closeErr := out.Close()

	if err != nil {
		os.Remove(tempFile)
		return written, fmt.Errorf("failed to write %s: %w", name, err)
	}
	if closeErr != nil {
		os.Remove(tempFile)
		return written, fmt.Errorf("failed to close %s: %w", name, closeErr)
	}

	if err := os.Rename(tempFile, final); err != nil {
		os.Remove(tempFile)
		return written, fmt.Errorf("failed to rename temporary file: %w", err)
	}
	return written, nil
}

// List returns the names of finished files ending in suffix, sorted
func (m *Manager) List(suffix string) ([]string, error) {
	return ListFiles(m.dir, suffix)
}

// ListFiles returns the sorted names of regular files in dir ending in
// suffix. Part files are never included.
func ListFiles(dir, suffix string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasSuffix(name, PartSuffix) {
			continue
		}
		if strings.HasSuffix(name, suffix) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}
