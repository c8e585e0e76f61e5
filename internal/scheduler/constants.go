package scheduler

import "time"

const (
	// DefaultTickInterval is how often the worker wakes to evaluate
	// schedules
	DefaultTickInterval = 60 * time.Second

	// stopWaitTimeout bounds how long Stop blocks waiting for the worker
	// to exit. A callback running past it is allowed to finish; Stop only
	// prevents new ticks from starting.
	stopWaitTimeout = 5 * time.Second
)
