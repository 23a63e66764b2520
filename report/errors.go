package report

import "errors"

var (
	// ErrStoreUnavailable indicates the reports or logs directory cannot be
	// created or written. This is an infrastructure failure: the agent
	// itself cannot function.
	ErrStoreUnavailable = errors.New("report: store unavailable")
)
