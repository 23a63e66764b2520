package maintain

import "errors"

var (
	// ErrToolMissing indicates the binary a task shells out to is not
	// installed.
	ErrToolMissing = errors.New("maintain: required tool not found")
)
