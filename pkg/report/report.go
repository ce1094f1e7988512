package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// Status is the result of processing one item
type Status string

const (
	StatusSuccess Status = "success"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
)

// Skip reasons used across stages
const (
	ReasonAlreadyCached  = "already cached"
	ReasonAlreadyExists  = "already exists"
	ReasonNoData         = "no data"
	ReasonSchemaMismatch = "schema mismatch"
)

// Outcome records what happened to one item of a batch
type Outcome struct {
	Item   string `json:"item"`
	Status Status `json:"status"`
	Path   string `json:"path,omitempty"`
	Rows   int64  `json:"rows,omitempty"`
	Bytes  int64  `json:"bytes,omitempty"`
	Reason string `json:"reason,omitempty"`
	Error  string `json:"error,omitempty"`
	Err    error  `json:"-"`
}

// Counts summarizes outcomes by status
type Counts struct {
	Success int `json:"success"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

// Total is the number of items processed
func (c Counts) Total() int { return c.Success + c.Skipped + c.Failed }

// Report accumulates the outcomes of one stage run
type Report struct {
	RunID      string    `json:"run_id"`
	Stage      string    `json:"stage"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Outcomes   []Outcome `json:"outcomes"`
	Counts     Counts    `json:"counts"`
}

// New starts a report for stage with a fresh run ID
func New(stage string) *Report {
	return &Report{
		RunID:     uuid.NewString(),
		Stage:     stage,
		StartedAt: time.Now().UTC(),
		Outcomes:  []Outcome{},
	}
}

// Add appends an outcome
func (r *Report) Add(o Outcome) {
	if o.Err != nil && o.Error == "" {
		o.Error = o.Err.Error()
	}
	r.Outcomes = append(r.Outcomes, o)
	switch o.Status {
	case StatusSuccess:
		r.Counts.Success++
	case StatusSkipped:
		r.Counts.Skipped++
	case StatusFailed:
		r.Counts.Failed++
	}
}

// Success records a completed item
func (r *Report) Success(item, path string, rows int64) {
	r.Add(Outcome{Item: item, Status: StatusSuccess, Path: path, Rows: rows})
}

// Skipped records an item that needed no work. path may be empty.
func (r *Report) Skipped(item, path, reason string) {
	r.Add(Outcome{Item: item, Status: StatusSkipped, Path: path, Reason: reason})
}

// Failed records an item that could not be processed
func (r *Report) Failed(item string, err error) {
	r.Add(Outcome{Item: item, Status: StatusFailed, Err: err})
}

// Paths returns the paths of successful and skipped items, in order
func (r *Report) Paths() []string {
	paths := []string{}
	for _, o := range r.Outcomes {
		if o.Path != "" && o.Status != StatusFailed {
			paths = append(paths, o.Path)
		}
	}
	return paths
}

// TotalRows sums the rows of successful items
func (r *Report) TotalRows() int64 {
	var n int64
	for _, o := range r.Outcomes {
		if o.Status == StatusSuccess {
			n += o.Rows
		}
	}
	return n
}

// TotalBytes sums the bytes transferred by successful items
func (r *Report) TotalBytes() int64 {
	var n int64
	for _, o := range r.Outcomes {
		if o.Status == StatusSuccess {
			n += o.Bytes
		}
	}
	return n
}

// ByStatus returns the outcomes with the given status
func (r *Report) ByStatus(s Status) []Outcome {
	var out []Outcome
	for _, o := range r.Outcomes {
		if o.Status == s {
			out = append(out, o)
		}
	}
	return out
}

// Finish stamps the end time
func (r *Report) Finish() {
	r.FinishedAt = time.Now().UTC()
}

// Duration is the wall time between start and finish
func (r *Report) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return time.Since(r.StartedAt)
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// FileName is the conventional report name, <stage>-<run_id>.json
func (r *Report) FileName() string {
	return fmt.Sprintf("%s-%s.json", r.Stage, r.RunID)
}

// Save writes the report as indented JSON, atomically replacing path
func (r *Report) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}

	tempPath := path + ".tmp"
	file, err := os.Create(tempPath)
	if err != nil {
		return fmt.Errorf("failed to create temporary report file: %w", err)
	}

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(r); err != nil {
		file.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to encode report: %w", err)
	}

	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to sync report file: %w", err)
	}

	if err := file.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to close report file: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to replace report file: %w", err)
	}
	return nil
}

// Load reads a report written by Save
func Load(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read report: %w", err)
	}
	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}
	return &r, nil
}
