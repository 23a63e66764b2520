package health

// Severity grades an issue.
type Severity int

const (
	// SeverityWarning indicates a condition worth noting but not acting on.
	SeverityWarning Severity = iota
	// SeverityError indicates a threshold breach.
	SeverityError
	// SeverityCritical indicates a condition that must page: daemon down or
	// total loss of network reachability.
	SeverityCritical
)

// String returns the string representation of the severity.
func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// Issue is one detected problem. Issues are immutable once created.
type Issue struct {
	// Probe is the full name of the probe whose measurement breached.
	Probe string

	// Severity grades the issue.
	Severity Severity

	// Value is the measured value that breached.
	Value float64

	// Limit is the configured limit it breached. Zero for boolean probes.
	Limit float64

	// Message is a human-readable description.
	Message string
}

// Critical reports whether any issue in the list is critical.
func Critical(issues []Issue) bool {
	for _, is := range issues {
		if is.Severity == SeverityCritical {
			return true
		}
	}
	return false
}
