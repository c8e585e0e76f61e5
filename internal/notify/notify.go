// Package notify delivers scheduler events (briefings, reminders, health
// reports, failure alerts) to an external sink.
package notify

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/t77yq/cronbeat/internal/model"
)

// Severity represents the severity level of an event
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Event represents one notification
type Event struct {
	ID        string                 `json:"id"`
	Kind      string                 `json:"kind"`
	Severity  Severity               `json:"severity"`
	Message   string                 `json:"message"`
	Data      map[string]interface{} `json:"data,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}

// Notifier delivers events to a sink
type Notifier interface {
	Notify(ctx context.Context, event *Event) error
}

// LogNotifier writes events to the process log. It is the fallback sink
// when no NATS URL is configured.
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier creates a log-backed notifier
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger.Named("notify")}
}

// Notify implements Notifier
func (n *LogNotifier) Notify(ctx context.Context, event *Event) error {
	n.logger.Info("Notification",
		zap.String("kind", event.Kind),
		zap.String("severity", string(event.Severity)),
		zap.String("message", event.Message),
		zap.Any("data", event.Data))
	return nil
}

// FailureAlerter raises an alert event for every failed execution record.
// It implements the scheduler's recorder contract; delivery failures are
// demoted to warnings.
type FailureAlerter struct {
	logger   *zap.Logger
	notifier Notifier
}

// NewFailureAlerter creates a failure alerter publishing through notifier
func NewFailureAlerter(notifier Notifier, logger *zap.Logger) *FailureAlerter {
	return &FailureAlerter{
		logger:   logger.Named("failure-alerter"),
		notifier: notifier,
	}
}

// Record implements the recorder contract
func (a *FailureAlerter) Record(ctx context.Context, exec *model.Execution) {
	if exec.Status != model.ExecutionStatusError {
		return
	}

	event := &Event{
		Kind:     "job_failure",
		Severity: SeverityError,
		Message:  fmt.Sprintf("job %s failed: %s", exec.Job, exec.Error),
		Data: map[string]interface{}{
			"job":                 exec.Job,
			"schedule_expression": exec.Expression,
			"run_count":           exec.RunCount,
		},
	}

	if err := a.notifier.Notify(ctx, event); err != nil {
		a.logger.Warn("Failed to publish job failure alert",
			zap.String("job", exec.Job),
			zap.Error(err))
	}
}
