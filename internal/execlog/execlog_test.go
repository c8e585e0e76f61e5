package execlog

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/t77yq/cronbeat/internal/model"
)

func TestFileRecorder_AppendsOneLinePerRecord(t *testing.T) {
	path := filepath.Join(t.TempDir(), "executions.log")

	recorder, err := NewFileRecorder(path, zap.NewNop())
	require.NoError(t, err)
	defer recorder.Close()

	ts := time.Date(2025, time.June, 6, 12, 0, 0, 0, time.UTC)
	recorder.Record(context.Background(), &model.Execution{
		ID:         "exec-1",
		Job:        "every_minute",
		Timestamp:  ts,
		Expression: "* * * * *",
		Status:     model.ExecutionStatusOK,
		RunCount:   1,
	})
	recorder.Record(context.Background(), &model.Execution{
		ID:         "exec-2",
		Job:        "every_minute",
		Timestamp:  ts.Add(time.Minute),
		Expression: "* * * * *",
		Status:     model.ExecutionStatusError,
		Error:      "boom",
		RunCount:   2,
	})

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	var records []model.Execution
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var exec model.Execution
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &exec))
		records = append(records, exec)
	}
	require.NoError(t, scanner.Err())

	require.Len(t, records, 2)
	assert.Equal(t, "every_minute", records[0].Job)
	assert.Equal(t, model.ExecutionStatusOK, records[0].Status)
	assert.Empty(t, records[0].Error)
	assert.Equal(t, int64(1), records[0].RunCount)
	assert.Equal(t, "* * * * *", records[0].Expression)
	assert.Equal(t, model.ExecutionStatusError, records[1].Status)
	assert.Equal(t, "boom", records[1].Error)
}

func TestFileRecorder_AppendsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "executions.log")

	first, err := NewFileRecorder(path, zap.NewNop())
	require.NoError(t, err)
	first.Record(context.Background(), &model.Execution{Job: "a", Status: model.ExecutionStatusOK, RunCount: 1})
	require.NoError(t, first.Close())

	second, err := NewFileRecorder(path, zap.NewNop())
	require.NoError(t, err)
	second.Record(context.Background(), &model.Execution{Job: "b", Status: model.ExecutionStatusOK, RunCount: 1})
	require.NoError(t, second.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var count int
	for _, line := range splitLines(data) {
		if len(line) > 0 {
			count++
		}
	}
	assert.Equal(t, 2, count)
}

func splitLines(data []byte) [][]byte {
	var lines [][]byte
	start := 0
	for i, b := range data {
		if b == '\n' {
			lines = append(lines, data[start:i])
			start = i + 1
		}
	}
	if start < len(data) {
		lines = append(lines, data[start:])
	}
	return lines
}

func TestFileRecorder_WriteFailureDoesNotPanic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "executions.log")

	recorder, err := NewFileRecorder(path, zap.NewNop())
	require.NoError(t, err)

	// Closing the file underneath the recorder makes every write fail;
	// Record must swallow the failure.
	require.NoError(t, recorder.Close())

	assert.NotPanics(t, func() {
		recorder.Record(context.Background(), &model.Execution{Job: "job", Status: model.ExecutionStatusOK})
	})
}

func TestTee_FansOut(t *testing.T) {
	var a, b countingRecorder
	tee := Tee{&a, &b}

	tee.Record(context.Background(), &model.Execution{Job: "job"})
	tee.Record(context.Background(), &model.Execution{Job: "job"})

	assert.Equal(t, 2, a.calls)
	assert.Equal(t, 2, b.calls)
}

type countingRecorder struct{ calls int }

func (r *countingRecorder) Record(ctx context.Context, exec *model.Execution) { r.calls++ }
