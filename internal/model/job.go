package model

import (
	"context"
	"time"
)

// Callback is the unit of work a job executes. The scheduler drives it to
// completion before moving to the next job; its lifetime is owned by the
// caller that registered it.
type Callback interface {
	Invoke(ctx context.Context) error
}

// CallbackFunc adapts a plain function to the Callback interface
type CallbackFunc func(ctx context.Context) error

// Invoke implements Callback
func (f CallbackFunc) Invoke(ctx context.Context) error { return f(ctx) }

// Job represents one registered schedule and its execution history
type Job struct {
	Name       string
	Expression string
	Callback   Callback
	Enabled    bool
	LastRun    *time.Time
	NextRun    *time.Time
	RunCount   int64
	LastError  string
}

// Clone returns a copy safe to read outside the registry lock. The callback
// is shared by reference.
func (j *Job) Clone() *Job {
	c := *j
	return &c
}

// Summary returns the public view of the job
func (j *Job) Summary() JobSummary {
	return JobSummary{
		Name:       j.Name,
		Expression: j.Expression,
		Enabled:    j.Enabled,
		LastRun:    j.LastRun,
		NextRun:    j.NextRun,
		RunCount:   j.RunCount,
		LastError:  j.LastError,
	}
}

// JobSummary is the snapshot of a job's public fields returned by listing
type JobSummary struct {
	Name       string     `json:"name"`
	Expression string     `json:"expression"`
	Enabled    bool       `json:"enabled"`
	LastRun    *time.Time `json:"last_run,omitempty"`
	NextRun    *time.Time `json:"next_run,omitempty"`
	RunCount   int64      `json:"run_count"`
	LastError  string     `json:"last_error,omitempty"`
}
