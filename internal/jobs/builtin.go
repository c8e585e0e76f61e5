// Package jobs provides the callbacks registered automatically at scheduler
// initialization. Each is an external collaborator from the scheduler's
// point of view: it talks to the task service HTTP boundary and the
// notification sink, and only has to be invocable with no arguments.
package jobs

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/t77yq/cronbeat/internal/model"
	"github.com/t77yq/cronbeat/internal/notify"
)

// Built-in schedule expressions. Names and expressions are part of the
// compatibility surface; do not change them.
const (
	MorningBriefingExpr = "0 7 * * *"
	StaleTaskSweepExpr  = "*/30 * * * *"
	WeeklyReviewExpr    = "0 17 * * 5"
	HealthCheckExpr     = "*/5 * * * *"
)

const (
	defaultCPUWarnPercent    = 90.0
	defaultMemoryWarnPercent = 90.0
)

// Definition describes one built-in job
type Definition struct {
	Name       string
	Expression string
	Callback   model.Callback
	Enabled    bool
}

// Deps carries the collaborators the built-in callbacks use
type Deps struct {
	Logger   *zap.Logger
	Notifier notify.Notifier
	Tasks    *APIClient

	// Warn thresholds for the health check, in percent. Zero means default.
	CPUWarnPercent    float64
	MemoryWarnPercent float64
}

// Builtin returns the jobs registered at scheduler initialization
func Builtin(deps Deps) []Definition {
	b := &builtin{
		logger:     deps.Logger.Named("jobs"),
		notifier:   deps.Notifier,
		tasks:      deps.Tasks,
		cpuWarn:    deps.CPUWarnPercent,
		memoryWarn: deps.MemoryWarnPercent,
	}
	if b.cpuWarn <= 0 {
		b.cpuWarn = defaultCPUWarnPercent
	}
	if b.memoryWarn <= 0 {
		b.memoryWarn = defaultMemoryWarnPercent
	}

	return []Definition{
		{Name: "morning_briefing", Expression: MorningBriefingExpr, Callback: model.CallbackFunc(b.morningBriefing), Enabled: true},
		{Name: "stale_task_sweep", Expression: StaleTaskSweepExpr, Callback: model.CallbackFunc(b.staleTaskSweep), Enabled: true},
		{Name: "weekly_review", Expression: WeeklyReviewExpr, Callback: model.CallbackFunc(b.weeklyReview), Enabled: true},
		{Name: "health_check", Expression: HealthCheckExpr, Callback: model.CallbackFunc(b.healthCheck), Enabled: true},
	}
}

type builtin struct {
	logger     *zap.Logger
	notifier   notify.Notifier
	tasks      *APIClient
	cpuWarn    float64
	memoryWarn float64
}

// morningBriefing posts a daily digest of pending work items
func (b *builtin) morningBriefing(ctx context.Context) error {
	tasks, err := b.tasks.PendingTasks(ctx)
	if err != nil {
		return fmt.Errorf("fetch pending tasks: %w", err)
	}

	message := fmt.Sprintf("Good morning! %d pending tasks today", len(tasks))
	data := map[string]interface{}{"pending": len(tasks)}
	if len(tasks) > 0 {
		titles := make([]string, 0, len(tasks))
		for _, task := range tasks {
			titles = append(titles, task.Title)
		}
		data["titles"] = titles
	}

	return b.notifier.Notify(ctx, &notify.Event{
		Kind:     "briefing",
		Severity: notify.SeverityInfo,
		Message:  message,
		Data:     data,
	})
}

// staleTaskSweep posts one reminder per work item without recent activity
func (b *builtin) staleTaskSweep(ctx context.Context) error {
	tasks, err := b.tasks.StaleTasks(ctx)
	if err != nil {
		return fmt.Errorf("fetch stale tasks: %w", err)
	}
	if len(tasks) == 0 {
		return nil
	}

	b.logger.Info("Found stale tasks", zap.Int("count", len(tasks)))

	for _, task := range tasks {
		event := &notify.Event{
			Kind:     "stale_task",
			Severity: notify.SeverityWarning,
			Message:  fmt.Sprintf("task %q has gone stale", task.Title),
			Data: map[string]interface{}{
				"task_id":  task.ID,
				"assignee": task.Assignee,
			},
		}
		if err := b.notifier.Notify(ctx, event); err != nil {
			return fmt.Errorf("notify stale task %s: %w", task.ID, err)
		}
	}
	return nil
}

// weeklyReview posts the weekly activity report
func (b *builtin) weeklyReview(ctx context.Context) error {
	report, err := b.tasks.Weekly(ctx)
	if err != nil {
		return fmt.Errorf("fetch weekly report: %w", err)
	}

	message := fmt.Sprintf("Weekly review: %d completed, %d created, %d overdue",
		report.Completed, report.Created, report.Overdue)

	return b.notifier.Notify(ctx, &notify.Event{
		Kind:     "review",
		Severity: notify.SeverityInfo,
		Message:  message,
		Data: map[string]interface{}{
			"completed": report.Completed,
			"created":   report.Created,
			"overdue":   report.Overdue,
			"summary":   report.Summary,
		},
	})
}

// healthCheck samples host resources and posts a health report; threshold
// breaches are escalated to warnings
func (b *builtin) healthCheck(ctx context.Context) error {
	report, err := collectHealth()
	if err != nil {
		return fmt.Errorf("collect health: %w", err)
	}

	severity := notify.SeverityInfo
	message := "health check ok"
	if report.CPUUsage > b.cpuWarn || report.MemoryUsage > b.memoryWarn {
		severity = notify.SeverityWarning
		message = fmt.Sprintf("resource usage high: cpu %.1f%%, memory %.1f%%",
			report.CPUUsage, report.MemoryUsage)
	}

	return b.notifier.Notify(ctx, &notify.Event{
		Kind:     "health",
		Severity: severity,
		Message:  message,
		Data: map[string]interface{}{
			"cpu_usage":    report.CPUUsage,
			"memory_usage": report.MemoryUsage,
			"collected_at": report.CollectedAt,
		},
	})
}
