package scheduler

import (
	"context"

	"github.com/t77yq/cronbeat/internal/model"
)

// Scheduler defines the interface for the embedded job scheduler
type Scheduler interface {
	// Start begins background execution. Idempotent.
	Start(ctx context.Context)

	// Stop halts the worker after its current tick. Idempotent.
	Stop()

	// AddJob registers or replaces a job under name
	AddJob(name, expression string, callback model.Callback, enabled bool) error

	// RemoveJob deletes a job and reports whether it existed
	RemoveJob(name string) bool

	// ListJobs returns a snapshot of all registered jobs
	ListJobs() []model.JobSummary
}
