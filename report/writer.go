package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/mlgruby/nixmedic/health"
)

// Category names one of the append-only log files.
type Category string

const (
	CategoryHealthCheck Category = "health-check"
	CategoryMaintenance Category = "maintenance"
	CategoryPerformance Category = "performance"
	CategoryAlerts      Category = "alerts"
)

// WriterConfig configures the report writer.
type WriterConfig struct {
	// ReportsDir receives one report file per report-mode run.
	ReportsDir string

	// LogsDir receives the four category log files.
	LogsDir string

	// Now supplies timestamps for log lines. Default: time.Now.
	// Tests substitute a fixed clock.
	Now func() time.Time
}

// ReportHandle points at a persisted report file.
type ReportHandle struct {
	Path string
}

// Writer persists run records. Creating a writer creates both directories;
// failure to do so is an infrastructure error.
type Writer struct {
	config WriterConfig
	mu     sync.Mutex
}

// NewWriter creates a writer rooted at the configured directories.
func NewWriter(config WriterConfig) (*Writer, error) {
	if config.Now == nil {
		config.Now = time.Now
	}
	for _, dir := range []string{config.ReportsDir, config.LogsDir} {
		if dir == "" {
			return nil, fmt.Errorf("%w: directory not configured", ErrStoreUnavailable)
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
	}
	return &Writer{config: config}, nil
}

// Append writes one timestamped line to a category log. The line lands in a
// single write on an O_APPEND descriptor, so concurrent external readers
// never see a torn line.
func (w *Writer) Append(category Category, level, msg string) error {
	line := fmt.Sprintf("[%s] %s %s\n",
		w.config.Now().Format("2006-01-02 15:04:05"), level, msg)

	w.mu.Lock()
	defer w.mu.Unlock()

	path := filepath.Join(w.config.LogsDir, string(category)+".log")
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	defer f.Close()

	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// WriteReport renders the record into a new timestamped report file.
// Filenames embed the run timestamp at millisecond precision; on collision
// a numeric suffix disambiguates, so the file is always new and no report
// is ever overwritten.
func (w *Writer) WriteReport(rec *RunRecord) (ReportHandle, error) {
	stamp := rec.Timestamp.Format("20060102-150405.000")
	stamp = strings.ReplaceAll(stamp, ".", "-")

	for attempt := 0; ; attempt++ {
		name := fmt.Sprintf("health-%s.txt", stamp)
		if attempt > 0 {
			name = fmt.Sprintf("health-%s-%d.txt", stamp, attempt)
		}
		path := filepath.Join(w.config.ReportsDir, name)

		f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if os.IsExist(err) {
			continue
		}
		if err != nil {
			return ReportHandle{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}

		_, werr := f.WriteString(renderReport(rec))
		cerr := f.Close()
		if werr != nil {
			return ReportHandle{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, werr)
		}
		if cerr != nil {
			return ReportHandle{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, cerr)
		}
		return ReportHandle{Path: path}, nil
	}
}

// LogRun appends the standard per-run log lines: a health-check or
// maintenance summary, one line per issue, and a performance line.
func (w *Writer) LogRun(rec *RunRecord) error {
	if rec.Mode == ModeMaintain {
		for _, tr := range rec.TaskResults {
			level := "INFO"
			state := "ok"
			switch {
			case tr.Skipped:
				state = "skipped"
			case !tr.Succeeded:
				level = "ERROR"
				state = "failed"
			}
			msg := fmt.Sprintf("task=%s state=%s duration=%s", tr.Task, state, tr.Duration.Round(time.Millisecond))
			if tr.Detail != "" {
				msg += " detail=" + quoteDetail(tr.Detail)
			}
			if err := w.Append(CategoryMaintenance, level, msg); err != nil {
				return err
			}
		}
	} else {
		level := "INFO"
		if rec.Status == health.StatusPoor {
			level = "WARN"
		}
		msg := fmt.Sprintf("run=%s status=%s issues=%d measurements=%d unavailable=%d",
			rec.ID, rec.Status, len(rec.Issues), len(rec.Measurements), rec.Unavailable())
		if err := w.Append(CategoryHealthCheck, level, msg); err != nil {
			return err
		}

		for _, issue := range rec.Issues {
			level := "ERROR"
			if issue.Severity == health.SeverityCritical {
				level = "CRITICAL"
			}
			if err := w.Append(CategoryHealthCheck, level, issue.Message); err != nil {
				return err
			}
		}
	}

	perf := fmt.Sprintf("run=%s mode=%s duration=%s", rec.ID, rec.Mode, rec.Duration.Round(time.Millisecond))
	return w.Append(CategoryPerformance, "INFO", perf)
}

// quoteDetail quotes a detail string for a log line, collapsing newlines.
func quoteDetail(s string) string {
	s = strings.ReplaceAll(s, "\n", " / ")
	return fmt.Sprintf("%q", s)
}

func renderReport(rec *RunRecord) string {
	var b strings.Builder

	fmt.Fprintf(&b, "nixmedic health report\n")
	fmt.Fprintf(&b, "======================\n\n")
	fmt.Fprintf(&b, "run:     %s\n", rec.ID)
	fmt.Fprintf(&b, "time:    %s\n", rec.Timestamp.Format(time.RFC3339))
	fmt.Fprintf(&b, "mode:    %s\n", rec.Mode)
	if rec.Mode != ModeMaintain {
		fmt.Fprintf(&b, "status:  %s\n", rec.Status)
	}
	fmt.Fprintf(&b, "\n")

	if len(rec.Measurements) > 0 {
		fmt.Fprintf(&b, "measurements\n------------\n")
		for _, m := range rec.Measurements {
			if m.Unavailable {
				fmt.Fprintf(&b, "  %-16s unavailable (%v)\n", m.Probe, m.Err)
				continue
			}
			fmt.Fprintf(&b, "  %-16s %.1f %s\n", m.Probe, m.Value, m.Kind)
		}
		fmt.Fprintf(&b, "\n")
	}

	if len(rec.Issues) > 0 {
		fmt.Fprintf(&b, "issues\n------\n")
		for _, issue := range rec.Issues {
			fmt.Fprintf(&b, "  [%s] %s\n", issue.Severity, issue.Message)
		}
		fmt.Fprintf(&b, "\n")
	} else if rec.Mode != ModeMaintain {
		fmt.Fprintf(&b, "no issues detected\n\n")
	}

	if len(rec.TaskResults) > 0 {
		fmt.Fprintf(&b, "maintenance\n-----------\n")
		for _, tr := range rec.TaskResults {
			state := "ok"
			switch {
			case tr.Skipped:
				state = "skipped"
			case !tr.Succeeded:
				state = "FAILED"
			}
			fmt.Fprintf(&b, "  %-20s %-8s %s\n", tr.Task, state, tr.Detail)
		}
		fmt.Fprintf(&b, "\n")
	}

	return b.String()
}
