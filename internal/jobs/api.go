package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// APIClient talks to the task service HTTP boundary the built-in jobs
// report on
type APIClient struct {
	logger     *zap.Logger
	baseURL    string
	httpClient *http.Client
}

// NewAPIClient creates a client for the task service at baseURL
func NewAPIClient(baseURL string, logger *zap.Logger) *APIClient {
	return &APIClient{
		logger:  logger.Named("api"),
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// TaskItem is one work item returned by the task service
type TaskItem struct {
	ID       string     `json:"id"`
	Title    string     `json:"title"`
	Assignee string     `json:"assignee,omitempty"`
	DueAt    *time.Time `json:"due_at,omitempty"`
}

// WeeklyReport summarizes a week of task activity
type WeeklyReport struct {
	Completed int    `json:"completed"`
	Created   int    `json:"created"`
	Overdue   int    `json:"overdue"`
	Summary   string `json:"summary"`
}

// PendingTasks returns open work items
func (c *APIClient) PendingTasks(ctx context.Context) ([]TaskItem, error) {
	return c.getTasks(ctx, "/v1/tasks/pending")
}

// StaleTasks returns work items without recent activity
func (c *APIClient) StaleTasks(ctx context.Context) ([]TaskItem, error) {
	return c.getTasks(ctx, "/v1/tasks/stale")
}

// Weekly returns the weekly activity report
func (c *APIClient) Weekly(ctx context.Context) (*WeeklyReport, error) {
	var report WeeklyReport
	if err := c.get(ctx, "/v1/reports/weekly", &report); err != nil {
		return nil, err
	}
	return &report, nil
}

func (c *APIClient) getTasks(ctx context.Context, path string) ([]TaskItem, error) {
	var tasks []TaskItem
	if err := c.get(ctx, path, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (c *APIClient) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("Executing API request", zap.String("path", path))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("request to %s failed with status %d", path, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
