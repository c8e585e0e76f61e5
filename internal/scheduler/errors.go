package scheduler

import "errors"

var (
	// ErrNotInitialized is returned by Get before Init has been called
	ErrNotInitialized = errors.New("scheduler not initialized")
)
