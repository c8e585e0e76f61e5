package scheduler

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/t77yq/cronbeat/internal/execlog"
	"github.com/t77yq/cronbeat/internal/jobs"
	"github.com/t77yq/cronbeat/internal/notify"
	"github.com/t77yq/cronbeat/internal/registry"
)

// Exactly one scheduler exists per process by convention. The instance is
// built explicitly through Init with injected collaborators; Get never
// creates one.
var (
	instanceMu sync.Mutex
	instance   *CronScheduler
)

// Deps carries the collaborators Init wires into the scheduler and its
// built-in jobs
type Deps struct {
	Logger       *zap.Logger
	Recorder     execlog.Recorder
	Notifier     notify.Notifier
	Tasks        *jobs.APIClient
	TickInterval time.Duration
}

// Init creates the process-wide scheduler and registers the built-in jobs.
// Calling Init again returns the existing instance unchanged.
func Init(deps Deps) (*CronScheduler, error) {
	instanceMu.Lock()
	defer instanceMu.Unlock()

	if instance != nil {
		deps.Logger.Info("Scheduler already initialized")
		return instance, nil
	}

	reg := registry.New(deps.Logger)
	s := NewCronScheduler(reg, deps.Recorder, deps.TickInterval, deps.Logger)

	builtins := jobs.Builtin(jobs.Deps{
		Logger:   deps.Logger,
		Notifier: deps.Notifier,
		Tasks:    deps.Tasks,
	})
	for _, def := range builtins {
		if err := s.AddJob(def.Name, def.Expression, def.Callback, def.Enabled); err != nil {
			return nil, fmt.Errorf("failed to register built-in job %s: %w", def.Name, err)
		}
	}

	instance = s
	return instance, nil
}

// Get returns the process-wide scheduler, or ErrNotInitialized before Init
// has run. It never creates an instance.
func Get() (*CronScheduler, error) {
	instanceMu.Lock()
	defer instanceMu.Unlock()

	if instance == nil {
		return nil, ErrNotInitialized
	}
	return instance, nil
}

// resetInstance clears the process-wide scheduler. Test hook.
func resetInstance() {
	instanceMu.Lock()
	instance = nil
	instanceMu.Unlock()
}
