// Package registry holds the in-memory mapping from job name to job record.
// It is the only shared mutable state between callers and the scheduler's
// worker; every access goes through the lock so listing never observes a
// record mid-mutation.
package registry

import (
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/t77yq/cronbeat/internal/cronexpr"
	"github.com/t77yq/cronbeat/internal/model"
)

// Registry is a concurrency-safe job registry
type Registry struct {
	logger *zap.Logger
	mu     sync.RWMutex
	jobs   map[string]*model.Job
}

// New creates an empty registry
func New(logger *zap.Logger) *Registry {
	return &Registry{
		logger: logger.Named("registry"),
		jobs:   make(map[string]*model.Job),
	}
}

// Add registers a job under name, replacing any existing record. Replacing
// resets the job's history. The expression is validated here so a malformed
// schedule never reaches the tick loop.
func (r *Registry) Add(name, expression string, callback model.Callback, enabled bool) error {
	if err := cronexpr.Validate(expression); err != nil {
		return err
	}

	job := &model.Job{
		Name:       name,
		Expression: expression,
		Callback:   callback,
		Enabled:    enabled,
		NextRun:    cronexpr.Next(expression, time.Now()),
	}

	r.mu.Lock()
	_, replaced := r.jobs[name]
	r.jobs[name] = job
	r.mu.Unlock()

	r.logger.Info("Registered job",
		zap.String("name", name),
		zap.String("expression", expression),
		zap.Bool("enabled", enabled),
		zap.Bool("replaced", replaced))

	return nil
}

// Remove deletes the named job and reports whether it existed
func (r *Registry) Remove(name string) bool {
	r.mu.Lock()
	_, ok := r.jobs[name]
	if ok {
		delete(r.jobs, name)
	}
	r.mu.Unlock()

	if ok {
		r.logger.Info("Removed job", zap.String("name", name))
	}
	return ok
}

// List returns a name-ordered snapshot of all jobs' public fields
func (r *Registry) List() []model.JobSummary {
	r.mu.RLock()
	summaries := make([]model.JobSummary, 0, len(r.jobs))
	for _, job := range r.jobs {
		summaries = append(summaries, job.Summary())
	}
	r.mu.RUnlock()

	sort.Slice(summaries, func(i, j int) bool { return summaries[i].Name < summaries[j].Name })
	return summaries
}

// Snapshot returns point-in-time copies of all records in name order.
// The tick loop iterates over the copies so concurrent Add/Remove calls
// cannot corrupt an in-progress tick.
func (r *Registry) Snapshot() []*model.Job {
	r.mu.RLock()
	jobs := make([]*model.Job, 0, len(r.jobs))
	for _, job := range r.jobs {
		jobs = append(jobs, job.Clone())
	}
	r.mu.RUnlock()

	sort.Slice(jobs, func(i, j int) bool { return jobs[i].Name < jobs[j].Name })
	return jobs
}

// RecordRun applies the outcome of an execution attempt to the live record.
// It returns the updated run count and whether the job was still registered;
// a job removed mid-tick is left untouched.
func (r *Registry) RecordRun(name string, ranAt time.Time, runErr error) (int64, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.jobs[name]
	if !ok {
		return 0, false
	}

	t := ranAt
	job.LastRun = &t
	job.RunCount++
	if runErr != nil {
		job.LastError = runErr.Error()
	} else {
		job.LastError = ""
	}
	job.NextRun = cronexpr.Next(job.Expression, ranAt)

	return job.RunCount, true
}
