package health

import (
	"fmt"
)

// Comparator selects how a measured value is compared against a limit.
type Comparator int

const (
	// CompareGreater breaches when value > limit.
	CompareGreater Comparator = iota
	// CompareGreaterOrEqual breaches when value >= limit.
	CompareGreaterOrEqual
)

// String returns the comparison operator as text.
func (c Comparator) String() string {
	if c == CompareGreaterOrEqual {
		return ">="
	}
	return ">"
}

// Threshold is the configured limit for one probe family.
//
// For KindBool probes the comparator and limit are ignored: the measurement
// breaches when it reports down, and Severity grades the resulting issue.
type Threshold struct {
	Comparator Comparator
	Limit      float64
	Severity   Severity
}

// Thresholds maps a probe family ("cpu", "disk", "daemon") to its threshold.
// Lookup for a measurement tries the full probe name first, then its family,
// so "disk:/data" can carry a mount-specific override while falling back to
// the "disk" default.
type Thresholds map[string]Threshold

// DefaultThresholds returns the baked-in limits: CPU 80%, memory 85%,
// disk 90%, 1-minute load 8.0. Daemon liveness and internet reachability
// breach as critical; DNS resolution breaches as a plain error.
func DefaultThresholds() Thresholds {
	return Thresholds{
		"cpu":     {Comparator: CompareGreater, Limit: 80, Severity: SeverityError},
		"memory":  {Comparator: CompareGreater, Limit: 85, Severity: SeverityError},
		"disk":    {Comparator: CompareGreater, Limit: 90, Severity: SeverityError},
		"load1":   {Comparator: CompareGreater, Limit: 8.0, Severity: SeverityError},
		"network": {Severity: SeverityCritical},
		"daemon":  {Severity: SeverityCritical},
		"dns":     {Severity: SeverityError},
	}
}

// lookup resolves the threshold for a measurement: exact probe name first,
// then the probe family.
func (t Thresholds) lookup(m Measurement) (Threshold, bool) {
	if th, ok := t[m.Probe]; ok {
		return th, true
	}
	th, ok := t[m.Family()]
	return th, ok
}

// Evaluate compares measurements against thresholds and returns one Issue
// per breach.
//
// Evaluate is pure: it carries no state, and identical inputs always yield
// identical issue lists, in measurement order. Unavailable measurements are
// skipped entirely; a probe that could not collect is not a breach.
// Measurements with no configured threshold are ignored. Each over-threshold
// filesystem produces its own issue; there is no deduplication.
func Evaluate(measurements []Measurement, thresholds Thresholds) []Issue {
	var issues []Issue

	for _, m := range measurements {
		if m.Unavailable {
			continue
		}

		th, ok := thresholds.lookup(m)
		if !ok {
			continue
		}

		if m.Kind == KindBool {
			if m.Up() {
				continue
			}
			issues = append(issues, Issue{
				Probe:    m.Probe,
				Severity: th.Severity,
				Value:    m.Value,
				Message:  fmt.Sprintf("%s is down", m.Probe),
			})
			continue
		}

		breached := m.Value > th.Limit
		if th.Comparator == CompareGreaterOrEqual {
			breached = m.Value >= th.Limit
		}
		if !breached {
			continue
		}

		severity := th.Severity
		if severity < SeverityError {
			severity = SeverityError
		}

		issues = append(issues, Issue{
			Probe:    m.Probe,
			Severity: severity,
			Value:    m.Value,
			Limit:    th.Limit,
			Message: fmt.Sprintf("%s at %.1f%s exceeds limit %s %.1f",
				m.Probe, m.Value, unitSuffix(m.Kind), th.Comparator, th.Limit),
		})
	}

	return issues
}

func unitSuffix(k Kind) string {
	if k == KindPercent {
		return "%"
	}
	return ""
}
