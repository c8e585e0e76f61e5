// Package execlog persists one structured record per execution attempt.
package execlog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/t77yq/cronbeat/internal/model"
)

// Recorder receives one record per execution attempt. Implementations must
// never propagate write failures; the tick loop does not inspect them.
type Recorder interface {
	Record(ctx context.Context, exec *model.Execution)
}

// FileRecorder appends records to a file, one JSON object per line.
// It is written to by the scheduler's single worker only, so no locking is
// needed beyond the worker's own sequencing.
type FileRecorder struct {
	logger *zap.Logger
	file   *os.File
	enc    *json.Encoder
}

// NewFileRecorder opens (or creates) the append-only execution log at path
func NewFileRecorder(path string, logger *zap.Logger) (*FileRecorder, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create execution log directory: %w", err)
		}
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open execution log: %w", err)
	}

	return &FileRecorder{
		logger: logger.Named("execlog"),
		file:   file,
		enc:    json.NewEncoder(file),
	}, nil
}

// Record appends one record. I/O failures are demoted to a warning.
func (r *FileRecorder) Record(ctx context.Context, exec *model.Execution) {
	if err := r.enc.Encode(exec); err != nil {
		r.logger.Warn("Failed to append execution record",
			zap.String("job", exec.Job),
			zap.Error(err))
	}
}

// Close closes the underlying log file
func (r *FileRecorder) Close() error {
	return r.file.Close()
}

// Tee fans each record out to every wrapped recorder in order
type Tee []Recorder

// Record implements Recorder
func (t Tee) Record(ctx context.Context, exec *model.Execution) {
	for _, r := range t {
		r.Record(ctx, exec)
	}
}
