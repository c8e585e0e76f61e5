package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/t77yq/cronbeat/internal/cronexpr"
	"github.com/t77yq/cronbeat/internal/execlog"
	"github.com/t77yq/cronbeat/internal/model"
	"github.com/t77yq/cronbeat/internal/registry"
)

// CronScheduler drives registered jobs from a single background worker.
// All callbacks for a given tick run sequentially on that worker; the
// registry is the only state shared with other goroutines.
type CronScheduler struct {
	logger   *zap.Logger
	registry *registry.Registry
	recorder execlog.Recorder
	interval time.Duration

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewCronScheduler creates a scheduler over the given registry and recorder.
// A non-positive interval falls back to DefaultTickInterval.
func NewCronScheduler(reg *registry.Registry, recorder execlog.Recorder, interval time.Duration, logger *zap.Logger) *CronScheduler {
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	return &CronScheduler{
		logger:   logger.Named("scheduler"),
		registry: reg,
		recorder: recorder,
		interval: interval,
	}
}

// AddJob registers or replaces a job under name
func (s *CronScheduler) AddJob(name, expression string, callback model.Callback, enabled bool) error {
	return s.registry.Add(name, expression, callback, enabled)
}

// RemoveJob deletes a job and reports whether it existed
func (s *CronScheduler) RemoveJob(name string) bool {
	return s.registry.Remove(name)
}

// ListJobs returns a snapshot of all registered jobs
func (s *CronScheduler) ListJobs() []model.JobSummary {
	return s.registry.List()
}

// Start launches the background worker. Starting a running scheduler is a
// logged no-op.
func (s *CronScheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		s.logger.Info("Scheduler already running")
		return
	}

	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	s.running = true

	go s.run(ctx, s.stopCh, s.doneCh)

	s.logger.Info("Scheduler started", zap.Duration("tick_interval", s.interval))
}

// Stop signals the worker to exit after its current tick and waits a bounded
// time for it. Stopping a stopped scheduler is a logged no-op.
func (s *CronScheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		s.logger.Info("Scheduler already stopped")
		return
	}
	stopCh, doneCh := s.stopCh, s.doneCh
	s.running = false
	s.mu.Unlock()

	close(stopCh)

	select {
	case <-doneCh:
		s.logger.Info("Scheduler stopped")
	case <-time.After(stopWaitTimeout):
		s.logger.Warn("Timed out waiting for scheduler worker to exit",
			zap.Duration("timeout", stopWaitTimeout))
	}
}

// run is the worker loop. Slow callbacks delay the next tick; there is no
// drift correction.
func (s *CronScheduler) run(ctx context.Context, stopCh, doneCh chan struct{}) {
	defer close(doneCh)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			s.Tick(ctx, time.Now())
		}
	}
}

// Tick runs a single scheduling iteration against now. Exposed so tests can
// drive the loop with controlled instants. Every job in the tick is
// evaluated against the same now.
func (s *CronScheduler) Tick(ctx context.Context, now time.Time) {
	for _, job := range s.registry.Snapshot() {
		if !job.Enabled {
			continue
		}

		matched, err := cronexpr.Matches(job.Expression, now)
		if err != nil {
			s.logger.Error("Failed to evaluate schedule expression",
				zap.String("job", job.Name),
				zap.String("expression", job.Expression),
				zap.Error(err))
			continue
		}
		if !matched {
			continue
		}

		if firedSameMinute(job.LastRun, now) {
			continue
		}

		s.runJob(ctx, job, now)
	}
}

// firedSameMinute implements the dedup rule: a job whose last run shares
// the minute, hour and day-of-month of now does not fire again, so two
// ticks landing in the same calendar minute execute a job at most once.
func firedSameMinute(lastRun *time.Time, now time.Time) bool {
	if lastRun == nil {
		return false
	}
	return lastRun.Minute() == now.Minute() &&
		lastRun.Hour() == now.Hour() &&
		lastRun.Day() == now.Day()
}

// runJob executes one job's callback, updates the live record and submits
// an execution record. Callback failures never leave this method.
func (s *CronScheduler) runJob(ctx context.Context, job *model.Job, now time.Time) {
	s.logger.Info("Executing job",
		zap.String("job", job.Name),
		zap.String("expression", job.Expression))

	err := invoke(ctx, job.Callback)

	runCount, ok := s.registry.RecordRun(job.Name, now, err)
	if !ok {
		// Removed mid-tick; the attempt still gets a record.
		runCount = job.RunCount + 1
	}

	exec := &model.Execution{
		ID:         uuid.New().String(),
		Job:        job.Name,
		Timestamp:  now,
		Expression: job.Expression,
		Status:     model.ExecutionStatusOK,
		RunCount:   runCount,
	}
	if err != nil {
		exec.Status = model.ExecutionStatusError
		exec.Error = err.Error()
		s.logger.Error("Job failed",
			zap.String("job", job.Name),
			zap.Int64("run_count", runCount),
			zap.Error(err))
	}

	s.recorder.Record(ctx, exec)
}

// invoke drives the callback to completion, converting panics into errors
// so a misbehaving job cannot kill the worker.
func invoke(ctx context.Context, cb model.Callback) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("callback panic: %v", r)
		}
	}()
	return cb.Invoke(ctx)
}
