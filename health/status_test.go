package health

import (
	"testing"
)

func TestStatus_String(t *testing.T) {
	tests := []struct {
		status Status
		want   string
	}{
		{StatusExcellent, "excellent"},
		{StatusGood, "good"},
		{StatusFair, "fair"},
		{StatusPoor, "poor"},
		{Status(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.status.String(); got != tt.want {
				t.Errorf("Status.String() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClassify_Counts(t *testing.T) {
	tests := []struct {
		issues int
		want   Status
	}{
		{0, StatusExcellent},
		{1, StatusGood},
		{2, StatusGood},
		{3, StatusFair},
		{4, StatusFair},
		{5, StatusPoor},
		{12, StatusPoor},
	}

	for _, tt := range tests {
		t.Run(tt.want.String(), func(t *testing.T) {
			issues := make([]Issue, tt.issues)
			for i := range issues {
				issues[i] = Issue{Probe: "cpu", Severity: SeverityError}
			}
			if got := Classify(issues); got != tt.want {
				t.Errorf("Classify(%d issues) = %v, want %v", tt.issues, got, tt.want)
			}
		})
	}
}

func TestClassify_CriticalForcesPoor(t *testing.T) {
	issues := []Issue{
		{Probe: "daemon", Severity: SeverityCritical},
	}
	if got := Classify(issues); got != StatusPoor {
		t.Errorf("Classify(1 critical) = %v, want StatusPoor", got)
	}
}

func TestSeverity_String(t *testing.T) {
	tests := []struct {
		severity Severity
		want     string
	}{
		{SeverityWarning, "warning"},
		{SeverityError, "error"},
		{SeverityCritical, "critical"},
		{Severity(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.severity.String(); got != tt.want {
				t.Errorf("Severity.String() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCritical(t *testing.T) {
	if Critical(nil) {
		t.Error("Critical(nil) = true, want false")
	}
	if Critical([]Issue{{Severity: SeverityError}}) {
		t.Error("Critical(error only) = true, want false")
	}
	if !Critical([]Issue{{Severity: SeverityError}, {Severity: SeverityCritical}}) {
		t.Error("Critical(with critical) = false, want true")
	}
}
