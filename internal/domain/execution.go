package domain

import (
	"time"
)

// RunState is the executor state machine
type RunState string

const (
	StateNotStarted   RunState = "not_started"
	StatePreparing    RunState = "preparing"
	StateRunningSteps RunState = "running_steps"
	StateCompleted    RunState = "completed"
	StateFailed       RunState = "failed"
)

// TraceEventType classifies trace events
type TraceEventType string

const (
	TraceRunStart     TraceEventType = "run_start"
	TraceRunComplete  TraceEventType = "run_complete"
	TraceRunFail      TraceEventType = "run_fail"
	TraceStepStart    TraceEventType = "step_start"
	TraceStepComplete TraceEventType = "step_complete"
	TraceStepFail     TraceEventType = "step_fail"
	TraceWarning      TraceEventType = "warning"
)

// TraceEvent is one entry of the execution trace
type TraceEvent struct {
	ID            string         `json:"id"`
	RunID         string         `json:"runId"`
	Type          TraceEventType `json:"type"`
	Timestamp     time.Time      `json:"timestamp"`
	Step          int            `json:"step,omitempty"`
	Kind          StepKind       `json:"kind,omitempty"`
	Message       string         `json:"message,omitempty"`
	Data          map[string]any `json:"data,omitempty"`
	Duration      time.Duration  `json:"duration,omitempty"`
	Error         string         `json:"error,omitempty"`
	LowConfidence bool           `json:"lowConfidence,omitempty"`
}

// DiagnosticLevel is the severity of a parse diagnostic
type DiagnosticLevel string

const (
	DiagnosticInfo    DiagnosticLevel = "info"
	DiagnosticWarning DiagnosticLevel = "warning"
)

// Diagnostic reports a best-effort decision made while parsing
type Diagnostic struct {
	Step    int             `json:"step"`
	Level   DiagnosticLevel `json:"level"`
	Message string          `json:"message"`
}

// ExecutionArtifacts snapshots the symbol tables at the end of a run
type ExecutionArtifacts struct {
	ScenarioName string            `json:"scenarioName"`
	Roles        map[string]string `json:"roles"`
	Contracts    map[string]string `json:"contracts"`
	Snapshots    []string          `json:"snapshots"`
	Vars         map[string]string `json:"vars,omitempty"`
}

// ExecutionResult is the outcome of running a scenario
type ExecutionResult struct {
	RunID         string             `json:"runId"`
	Success       bool               `json:"success"`
	ScenarioName  string             `json:"scenarioName"`
	State         RunState           `json:"state"`
	ExecutionTime time.Duration      `json:"executionTime"`
	StepsExecuted int                `json:"stepsExecuted"`
	TotalSteps    int                `json:"totalSteps"`
	FailedStep    int                `json:"failedStep,omitempty"`
	FailedKind    StepKind           `json:"failedKind,omitempty"`
	Error         string             `json:"error,omitempty"`
	GasUsed       uint64             `json:"gasUsed"`
	Artifacts     ExecutionArtifacts `json:"artifacts"`
	Trace         []TraceEvent       `json:"trace"`
	Diagnostics   []Diagnostic       `json:"diagnostics,omitempty"`
	Warnings      []string           `json:"warnings,omitempty"`
}

// ExecutionContext is the mutable state of a single run. The definition it
// references is read only.
type ExecutionContext struct {
	RunID      string
	Definition *ScenarioDefinition
	Symbols    *SymbolTable
	State      RunState
	Trace      []TraceEvent
	Warnings   []string
	GasUsed    uint64
	StartedAt  time.Time
}

// DeployAddressPolicy controls what happens when a deployment address can't
// be determined.
type DeployAddressPolicy string

const (
	// DeployAddressPlaceholder binds the zero address and continues
	DeployAddressPlaceholder DeployAddressPolicy = "placeholder"
	// DeployAddressStrict fails the step
	DeployAddressStrict DeployAddressPolicy = "strict"
)

// IsValid reports whether p is a known policy
func (p DeployAddressPolicy) IsValid() bool {
	return p == DeployAddressPlaceholder || p == DeployAddressStrict
}
