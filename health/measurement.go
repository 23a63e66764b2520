package health

import (
	"time"
)

// Kind describes the type of value a measurement carries.
type Kind int

const (
	// KindPercent is a 0-100 percentage (CPU, memory, disk usage).
	KindPercent Kind = iota
	// KindLoad is a load-average style gauge.
	KindLoad
	// KindBool is a reachability/liveness flag: 1 is up, 0 is down.
	KindBool
	// KindBytes is a raw byte count.
	KindBytes
	// KindDuration is a duration in milliseconds.
	KindDuration
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindPercent:
		return "percent"
	case KindLoad:
		return "load"
	case KindBool:
		return "bool"
	case KindBytes:
		return "bytes"
	case KindDuration:
		return "duration"
	default:
		return "unknown"
	}
}

// Measurement is the typed output of a single probe sample.
//
// Probe names are either plain ("cpu", "memory", "load1") or family-scoped
// ("disk:/", "disk:/data"): the part before the colon is the family used for
// threshold lookup, the full name keeps per-instance measurements distinct.
type Measurement struct {
	// Probe is the full probe name that produced this measurement.
	Probe string

	// Kind is the value type.
	Kind Kind

	// Value is the measured value. For KindBool, 1 means up and 0 means down.
	Value float64

	// Unavailable marks a probe that failed or timed out. Unavailable
	// measurements are recorded and logged but skipped by Evaluate.
	Unavailable bool

	// Err is the collection error for an unavailable measurement.
	Err error

	// Detail contains arbitrary metadata about the sample.
	Detail map[string]any

	// Duration is how long collection took.
	Duration time.Duration

	// Timestamp is when the sample was taken.
	Timestamp time.Time
}

// Sampled creates a measurement carrying a numeric value.
func Sampled(probe string, kind Kind, value float64) Measurement {
	return Measurement{
		Probe:     probe,
		Kind:      kind,
		Value:     value,
		Timestamp: time.Now(),
	}
}

// Boolean creates an up/down measurement.
func Boolean(probe string, up bool) Measurement {
	v := 0.0
	if up {
		v = 1.0
	}
	return Measurement{
		Probe:     probe,
		Kind:      KindBool,
		Value:     v,
		Timestamp: time.Now(),
	}
}

// Degraded creates an unavailable measurement for a probe that failed or
// timed out. It never contributes issues; it only shows up in the report.
func Degraded(probe string, err error) Measurement {
	return Measurement{
		Probe:       probe,
		Unavailable: true,
		Err:         err,
		Timestamp:   time.Now(),
	}
}

// WithDetail adds metadata to a measurement.
func (m Measurement) WithDetail(detail map[string]any) Measurement {
	m.Detail = detail
	return m
}

// WithDuration sets the collection duration on a measurement.
func (m Measurement) WithDuration(d time.Duration) Measurement {
	m.Duration = d
	return m
}

// Up reports whether a KindBool measurement is up.
func (m Measurement) Up() bool {
	return m.Kind == KindBool && m.Value != 0
}

// Family returns the probe family: the probe name up to the first colon.
// "disk:/data" has family "disk"; "cpu" is its own family.
func (m Measurement) Family() string {
	for i := 0; i < len(m.Probe); i++ {
		if m.Probe[i] == ':' {
			return m.Probe[:i]
		}
	}
	return m.Probe
}
