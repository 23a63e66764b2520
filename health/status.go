package health

// Status is the overall machine health for one run.
type Status int

const (
	// StatusExcellent indicates no issues were found.
	StatusExcellent Status = iota
	// StatusGood indicates one or two issues.
	StatusGood
	// StatusFair indicates three or four issues.
	StatusFair
	// StatusPoor indicates five or more issues, or any critical issue.
	StatusPoor
)

// String returns the string representation of the status.
func (s Status) String() string {
	switch s {
	case StatusExcellent:
		return "excellent"
	case StatusGood:
		return "good"
	case StatusFair:
		return "fair"
	case StatusPoor:
		return "poor"
	default:
		return "unknown"
	}
}

// Classify collapses an issue list into an overall status.
//
// The mapping is a pure function of the list: 0 issues is excellent, 1-2 is
// good, 3-4 is fair, 5 or more is poor. A single critical issue forces poor
// regardless of count. No state is carried between runs and no smoothing is
// applied; each invocation is classified independently.
func Classify(issues []Issue) Status {
	if Critical(issues) {
		return StatusPoor
	}

	switch n := len(issues); {
	case n == 0:
		return StatusExcellent
	case n <= 2:
		return StatusGood
	case n <= 4:
		return StatusFair
	default:
		return StatusPoor
	}
}
