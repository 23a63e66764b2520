package observe

import (
	"context"
	"testing"
	"time"
)

func TestNewMetrics_ValidExporters(t *testing.T) {
	tests := []string{"none", ""}

	for _, exporter := range tests {
		t.Run("exporter_"+exporter, func(t *testing.T) {
			ctx := context.Background()
			m, err := NewMetrics(ctx, exporter)
			if err != nil {
				t.Fatalf("NewMetrics(%q) error = %v", exporter, err)
			}

			m.RecordRun(ctx, "check", 2*time.Second, 3)
			m.RecordProbe(ctx, "cpu", 150*time.Millisecond, false)
			m.RecordProbe(ctx, "daemon", 5*time.Second, true)
			m.RecordTaskFailure(ctx, "garbage-collect")

			if err := m.Shutdown(ctx); err != nil {
				t.Errorf("Shutdown() error = %v", err)
			}
		})
	}
}

func TestNewMetrics_UnknownExporter(t *testing.T) {
	if _, err := NewMetrics(context.Background(), "prometheus"); err == nil {
		t.Error("NewMetrics(prometheus) error = nil, want error")
	}
}
