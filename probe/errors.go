package probe

import "errors"

var (
	// ErrTimeout indicates a probe exceeded its collection timeout.
	ErrTimeout = errors.New("probe: collection timed out")

	// ErrToolMissing indicates an external tool the probe relies on is not
	// installed.
	ErrToolMissing = errors.New("probe: required tool not found")

	// ErrMalformedSource indicates a metric source could not be parsed.
	ErrMalformedSource = errors.New("probe: malformed metric source")
)
