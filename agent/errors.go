package agent

import "errors"

var (
	// ErrAlreadyRunning indicates another live instance holds the run lock.
	ErrAlreadyRunning = errors.New("agent: another run is in progress")

	// ErrLockUnavailable indicates the lock file cannot be created or
	// inspected. This is an infrastructure failure.
	ErrLockUnavailable = errors.New("agent: run lock unavailable")
)
