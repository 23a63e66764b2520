package alert

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mlgruby/nixmedic/health"
	"github.com/mlgruby/nixmedic/report"
)

func newTestWriter(t *testing.T) (*report.Writer, string) {
	t.Helper()
	logs := filepath.Join(t.TempDir(), "logs")
	w, err := report.NewWriter(report.WriterConfig{
		ReportsDir: filepath.Join(t.TempDir(), "reports"),
		LogsDir:    logs,
	})
	if err != nil {
		t.Fatal(err)
	}
	return w, logs
}

func criticalRecord() *report.RunRecord {
	rec := report.NewRunRecord(report.ModeAlert)
	rec.Issues = []health.Issue{
		{Probe: "daemon", Severity: health.SeverityCritical, Message: "daemon is down"},
		{Probe: "memory", Severity: health.SeverityError, Message: "memory high"},
	}
	rec.Status = health.StatusPoor
	return rec
}

func TestDispatch_NoCriticalNoAction(t *testing.T) {
	w, logs := newTestWriter(t)
	d := NewDispatcher(DispatcherConfig{}, w, nil)

	rec := report.NewRunRecord(report.ModeAlert)
	rec.Issues = []health.Issue{
		{Probe: "memory", Severity: health.SeverityError, Message: "memory high"},
	}

	outcome, err := d.Dispatch(context.Background(), rec)
	if err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	if outcome.Dispatched {
		t.Error("Dispatched = true without critical issues")
	}
	if _, err := os.Stat(filepath.Join(logs, "alerts.log")); !os.IsNotExist(err) {
		t.Error("alerts log written without critical issues")
	}
}

func TestDispatch_WritesAlertEntry(t *testing.T) {
	w, logs := newTestWriter(t)
	d := NewDispatcher(DispatcherConfig{}, w, nil)

	outcome, err := d.Dispatch(context.Background(), criticalRecord())
	if err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	if !outcome.Dispatched {
		t.Fatal("Dispatched = false with critical issue")
	}

	data, err := os.ReadFile(filepath.Join(logs, "alerts.log"))
	if err != nil {
		t.Fatal(err)
	}
	line := string(data)
	if !strings.Contains(line, "CRITICAL") {
		t.Errorf("alert entry not distinguished: %q", line)
	}
	if !strings.Contains(line, "daemon is down") {
		t.Errorf("alert entry missing critical message: %q", line)
	}
	if strings.Contains(line, "memory high") {
		t.Errorf("alert entry includes non-critical issue: %q", line)
	}
}

func TestDispatch_HookNotified(t *testing.T) {
	var got hookPayload
	srv := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		rw.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	w, _ := newTestWriter(t)
	d := NewDispatcher(DispatcherConfig{HookURL: srv.URL}, w, nil)

	outcome, err := d.Dispatch(context.Background(), criticalRecord())
	if err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	if !outcome.HookNotified {
		t.Errorf("HookNotified = false, hook error = %v", outcome.HookErr)
	}
	if got.Status != "poor" {
		t.Errorf("payload status = %q, want poor", got.Status)
	}
	if len(got.Issues) != 1 || got.Issues[0] != "daemon is down" {
		t.Errorf("payload issues = %v, want only the critical one", got.Issues)
	}
}

func TestDispatch_HookFailureIsBestEffort(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	w, logs := newTestWriter(t)
	d := NewDispatcher(DispatcherConfig{
		HookURL:     srv.URL,
		HookTimeout: 2 * time.Second,
		HookRetries: -1, // no retries, keep the test fast
	}, w, nil)

	outcome, err := d.Dispatch(context.Background(), criticalRecord())
	if err != nil {
		t.Fatalf("Dispatch() error = %v, hook failure must not error the run", err)
	}
	if outcome.HookNotified {
		t.Error("HookNotified = true for failing hook")
	}
	if outcome.HookErr == nil {
		t.Error("HookErr = nil for failing hook")
	}
	// The alerts log entry still lands.
	if _, err := os.Stat(filepath.Join(logs, "alerts.log")); err != nil {
		t.Error("alerts log missing despite hook failure")
	}
}
