package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mlgruby/nixmedic/health"
	"github.com/mlgruby/nixmedic/maintain"
)

func newTestWriter(t *testing.T) (*Writer, string, string) {
	t.Helper()
	reports := filepath.Join(t.TempDir(), "reports")
	logs := filepath.Join(t.TempDir(), "logs")

	fixed := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	w, err := NewWriter(WriterConfig{
		ReportsDir: reports,
		LogsDir:    logs,
		Now:        func() time.Time { return fixed },
	})
	if err != nil {
		t.Fatalf("NewWriter() error = %v", err)
	}
	return w, reports, logs
}

func TestNewWriter_CreatesDirectories(t *testing.T) {
	w, reports, logs := newTestWriter(t)
	_ = w

	for _, dir := range []string{reports, logs} {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			t.Errorf("directory %s not created", dir)
		}
	}
}

func TestNewWriter_UnwritableRoot(t *testing.T) {
	_, err := NewWriter(WriterConfig{
		ReportsDir: "/proc/definitely/not/writable",
		LogsDir:    t.TempDir(),
	})
	if err == nil {
		t.Fatal("NewWriter() error = nil, want infrastructure error")
	}
}

func TestAppend_LineFormat(t *testing.T) {
	w, _, logs := newTestWriter(t)

	if err := w.Append(CategoryHealthCheck, "INFO", "all quiet"); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	data, err := os.ReadFile(filepath.Join(logs, "health-check.log"))
	if err != nil {
		t.Fatal(err)
	}
	got := string(data)
	want := "[2026-08-30 12:00:00] INFO all quiet\n"
	if got != want {
		t.Errorf("log line = %q, want %q", got, want)
	}
}

func TestAppend_NeverTruncates(t *testing.T) {
	w, _, logs := newTestWriter(t)

	w.Append(CategoryAlerts, "CRITICAL", "first")
	w.Append(CategoryAlerts, "CRITICAL", "second")

	data, _ := os.ReadFile(filepath.Join(logs, "alerts.log"))
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2 (append-only)", len(lines))
	}
	if !strings.HasSuffix(lines[0], "first") || !strings.HasSuffix(lines[1], "second") {
		t.Errorf("lines out of order: %v", lines)
	}
}

func TestWriteReport_DistinctFilesSameInstant(t *testing.T) {
	w, reports, _ := newTestWriter(t)

	rec := NewRunRecord(ModeReport)
	rec.Timestamp = time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	var paths []string
	for i := 0; i < 3; i++ {
		h, err := w.WriteReport(rec)
		if err != nil {
			t.Fatalf("WriteReport() #%d error = %v", i, err)
		}
		paths = append(paths, h.Path)
	}

	if got := filepath.Base(paths[0]); got != "health-20260830-120000-000.txt" {
		t.Errorf("report file name = %q, want health-20260830-120000-000.txt", got)
	}

	seen := map[string]bool{}
	for _, p := range paths {
		if seen[p] {
			t.Errorf("duplicate report path %s", p)
		}
		seen[p] = true
		if _, err := os.Stat(p); err != nil {
			t.Errorf("report %s missing: %v", p, err)
		}
	}

	entries, _ := os.ReadDir(reports)
	if len(entries) != 3 {
		t.Errorf("got %d report files, want 3", len(entries))
	}
}

func TestWriteReport_Content(t *testing.T) {
	w, _, _ := newTestWriter(t)

	rec := NewRunRecord(ModeReport)
	rec.Measurements = []health.Measurement{
		health.Sampled("memory", health.KindPercent, 90),
		health.Degraded("cpu", ErrStoreUnavailable),
	}
	rec.Issues = []health.Issue{
		{Probe: "memory", Severity: health.SeverityError, Message: "memory at 90.0% exceeds limit > 85.0"},
	}
	rec.Status = health.StatusGood

	h, err := w.WriteReport(rec)
	if err != nil {
		t.Fatalf("WriteReport() error = %v", err)
	}

	data, _ := os.ReadFile(h.Path)
	content := string(data)

	for _, want := range []string{
		"status:  good",
		"memory at 90.0%",
		"unavailable",
		rec.ID,
	} {
		if !strings.Contains(content, want) {
			t.Errorf("report missing %q:\n%s", want, content)
		}
	}
}

func TestLogRun_HealthMode(t *testing.T) {
	w, _, logs := newTestWriter(t)

	rec := NewRunRecord(ModeCheck)
	rec.Issues = []health.Issue{
		{Probe: "daemon", Severity: health.SeverityCritical, Message: "daemon is down"},
		{Probe: "memory", Severity: health.SeverityError, Message: "memory high"},
	}
	rec.Status = health.StatusPoor
	rec.Duration = 1500 * time.Millisecond

	if err := w.LogRun(rec); err != nil {
		t.Fatalf("LogRun() error = %v", err)
	}

	healthLog, _ := os.ReadFile(filepath.Join(logs, "health-check.log"))
	if !strings.Contains(string(healthLog), "status=poor issues=2") {
		t.Errorf("health log missing summary: %s", healthLog)
	}
	if !strings.Contains(string(healthLog), "CRITICAL daemon is down") {
		t.Errorf("health log missing critical line: %s", healthLog)
	}

	perfLog, _ := os.ReadFile(filepath.Join(logs, "performance.log"))
	if !strings.Contains(string(perfLog), "mode=check duration=1.5s") {
		t.Errorf("performance log missing run line: %s", perfLog)
	}
}

func TestLogRun_MaintainMode(t *testing.T) {
	w, _, logs := newTestWriter(t)

	rec := NewRunRecord(ModeMaintain)
	rec.TaskResults = []maintain.TaskResult{
		{Task: "garbage-collect", Succeeded: true, Duration: time.Second},
		{Task: "optimise-store", Detail: "exit status 1"},
		{Task: "tool-caches", Skipped: true},
	}

	if err := w.LogRun(rec); err != nil {
		t.Fatalf("LogRun() error = %v", err)
	}

	data, _ := os.ReadFile(filepath.Join(logs, "maintenance.log"))
	content := string(data)

	if !strings.Contains(content, "task=garbage-collect state=ok") {
		t.Errorf("maintenance log missing success line: %s", content)
	}
	if !strings.Contains(content, "ERROR task=optimise-store state=failed") {
		t.Errorf("maintenance log missing failure line: %s", content)
	}
	if !strings.Contains(content, "task=tool-caches state=skipped") {
		t.Errorf("maintenance log missing skip line: %s", content)
	}
}

func TestNewRunRecord(t *testing.T) {
	a := NewRunRecord(ModeCheck)
	b := NewRunRecord(ModeCheck)

	if a.ID == "" || a.ID == b.ID {
		t.Errorf("run IDs not unique: %q vs %q", a.ID, b.ID)
	}
	if a.Mode != ModeCheck {
		t.Errorf("Mode = %q, want check", a.Mode)
	}
	if a.Timestamp.IsZero() {
		t.Error("Timestamp is zero")
	}
}
