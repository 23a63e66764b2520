package report

import (
	"time"

	"github.com/google/uuid"

	"github.com/mlgruby/nixmedic/health"
	"github.com/mlgruby/nixmedic/maintain"
)

// Mode is the invocation mode of one run.
type Mode string

const (
	ModeCheck    Mode = "check"
	ModeReport   Mode = "report"
	ModeMaintain Mode = "maintain"
	ModeAlert    Mode = "alert"
)

// RunRecord is the full snapshot of one invocation. It is created at the
// start of a run, filled in as the run progresses, and written exactly once;
// nothing mutates it after the writer persists it.
type RunRecord struct {
	// ID uniquely identifies the run.
	ID string

	// Timestamp is when the run started.
	Timestamp time.Time

	// Mode is the invocation mode.
	Mode Mode

	// Duration is the total run time, set just before writing.
	Duration time.Duration

	// Measurements is the full probe output, including unavailable entries.
	Measurements []health.Measurement

	// Issues is the threshold evaluation output.
	Issues []health.Issue

	// Status is the classified overall health.
	Status health.Status

	// TaskResults is the maintenance output, empty outside maintain mode.
	TaskResults []maintain.TaskResult
}

// NewRunRecord creates a record for a run starting now.
func NewRunRecord(mode Mode) *RunRecord {
	return &RunRecord{
		ID:        uuid.NewString(),
		Timestamp: time.Now(),
		Mode:      mode,
	}
}

// Unavailable counts measurements whose probes failed or timed out.
func (r *RunRecord) Unavailable() int {
	n := 0
	for _, m := range r.Measurements {
		if m.Unavailable {
			n++
		}
	}
	return n
}
