package fs

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/trebuchet-org/catapult/internal/domain"
	"github.com/trebuchet-org/catapult/internal/domain/config"
	"github.com/trebuchet-org/catapult/internal/usecase"
)

// TraceWriterAdapter writes run traces as JSON lines under <data dir>/runs
type TraceWriterAdapter struct {
	runsDir string
}

// NewTraceWriterAdapter creates a new TraceWriterAdapter
func NewTraceWriterAdapter(cfg *config.RuntimeConfig) *TraceWriterAdapter {
	return &TraceWriterAdapter{runsDir: filepath.Join(cfg.DataDir, "runs")}
}

// traceSummary is the last line of every trace file
type traceSummary struct {
	Type          string `json:"type"`
	RunID         string `json:"runId"`
	Scenario      string `json:"scenario"`
	Success       bool   `json:"success"`
	State         string `json:"state"`
	StepsExecuted int    `json:"stepsExecuted"`
	TotalSteps    int    `json:"totalSteps"`
	GasUsed       uint64 `json:"gasUsed"`
	Error         string `json:"error,omitempty"`
}

// WriteTrace writes one line per trace event followed by a summary line
func (w *TraceWriterAdapter) WriteTrace(ctx context.Context, result *domain.ExecutionResult) (string, error) {
	if err := os.MkdirAll(w.runsDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create runs directory: %w", err)
	}
	path := filepath.Join(w.runsDir, result.RunID+".jsonl")

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create trace file: %w", err)
	}
	defer f.Close()

	buf := bufio.NewWriter(f)
	enc := json.NewEncoder(buf)
	for _, ev := range result.Trace {
		if err := enc.Encode(ev); err != nil {
			return "", fmt.Errorf("failed to encode trace event: %w", err)
		}
	}
	if err := enc.Encode(traceSummary{
		Type:          "summary",
		RunID:         result.RunID,
		Scenario:      result.ScenarioName,
		Success:       result.Success,
		State:         string(result.State),
		StepsExecuted: result.StepsExecuted,
		TotalSteps:    result.TotalSteps,
		GasUsed:       result.GasUsed,
		Error:         result.Error,
	}); err != nil {
		return "", fmt.Errorf("failed to encode trace summary: %w", err)
	}
	if err := buf.Flush(); err != nil {
		return "", fmt.Errorf("failed to write trace file: %w", err)
	}
	return path, nil
}

// Ensure the adapter implements the interface
var _ usecase.TraceWriter = (*TraceWriterAdapter)(nil)
