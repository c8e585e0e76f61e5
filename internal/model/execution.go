package model

import "time"

// ExecutionStatus represents the outcome of one execution attempt
type ExecutionStatus string

const (
	ExecutionStatusOK    ExecutionStatus = "ok"
	ExecutionStatusError ExecutionStatus = "error"
)

// Execution is one self-contained record of an execution attempt,
// successful or not
type Execution struct {
	ID         string          `json:"id"`
	Job        string          `json:"job"`
	Timestamp  time.Time       `json:"timestamp"`
	Expression string          `json:"schedule_expression"`
	Status     ExecutionStatus `json:"status"`
	Error      string          `json:"error,omitempty"`
	RunCount   int64           `json:"run_count"`
}
