package merger

import (
	"errors"
	"fmt"
	"os"

	"skycache/pkg/columnar"
	"skycache/pkg/table"
)

// State is the lifecycle of a merge output. A session moves from Init to
// Locked when the first readable file fixes the schema, and from Locked to
// Closed when the output is finalized. It never goes back.
type State int

const (
	StateInit State = iota
	StateLocked
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateLocked:
		return "locked"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

var errNotLocked = errors.New("merge output is not open")

// session owns the output writer of one merge
type session struct {
	path   string
	state  State
	schema table.Schema
	writer *columnar.Writer

	// empty is the schema of the first file without rows. It only locks
	// the output when no file has rows at all.
	empty table.Schema
}

func newSession(path string) *session {
	return &session{path: path, state: StateInit}
}

// lock fixes the schema and opens the writer
func (s *session) lock(schema table.Schema) error {
	if s.state != StateInit {
		return fmt.Errorf("cannot lock schema in state %s", s.state)
	}
	w, err := columnar.Create(s.path, schema)
	if err != nil {
		return err
	}
	s.writer = w
	s.schema = schema
	s.state = StateLocked
	return nil
}

// accepts reports whether t can be appended to the output
func (s *session) accepts(t *table.Table) bool {
	return s.state == StateLocked && s.schema.Equal(t.Schema)
}

func (s *session) append(t *table.Table) error {
	if s.state != StateLocked {
		return errNotLocked
	}
	return s.writer.Write(t)
}

func (s *session) rows() int64 {
	if s.writer == nil {
		return 0
	}
	return s.writer.Rows()
}

func (s *session) close() error {
	if s.state != StateLocked {
		return errNotLocked
	}
	s.state = StateClosed
	return s.writer.Close()
}

// abort discards whatever was written
func (s *session) abort() {
	if s.writer != nil {
		s.writer.Abort()
	} else {
		_ = os.Remove(s.path)
	}
	s.state = StateClosed
}
