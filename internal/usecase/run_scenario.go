package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/trebuchet-org/catapult/internal/domain"
	"github.com/trebuchet-org/catapult/internal/domain/config"
)

// RunScenario parses a scenario and executes it against a development node
type RunScenario struct {
	config    *config.RuntimeConfig
	parser    ScenarioParser
	store     ScenarioStore
	dialer    ChainDialer
	codec     CallCodec
	artifacts ArtifactRepository
	nodes     NodeManager
	traces    TraceWriter
	progress  ProgressSink
	log       *slog.Logger
}

// NewRunScenario creates a new RunScenario use case
func NewRunScenario(
	cfg *config.RuntimeConfig,
	parser ScenarioParser,
	store ScenarioStore,
	dialer ChainDialer,
	codec CallCodec,
	artifacts ArtifactRepository,
	nodes NodeManager,
	traces TraceWriter,
	progress ProgressSink,
	log *slog.Logger,
) *RunScenario {
	return &RunScenario{
		config:    cfg,
		parser:    parser,
		store:     store,
		dialer:    dialer,
		codec:     codec,
		artifacts: artifacts,
		nodes:     nodes,
		traces:    traces,
		progress:  progress,
		log:       log.With("component", "RunScenario"),
	}
}

// RunScenarioParams selects the scenario source and per-run overrides.
// Exactly one of Path, YAML or Definition is used, in that order.
type RunScenarioParams struct {
	Path       string
	YAML       string
	Definition *domain.ScenarioDefinition

	RPCURL              string
	DeployAddressPolicy domain.DeployAddressPolicy
	WriteTrace          bool
}

// RunScenarioResult contains the execution result
type RunScenarioResult struct {
	Result    *domain.ExecutionResult
	Parsed    *domain.ParsedScenario
	RPCURL    string
	TracePath string
}

// Execute parses the scenario and runs it. Parse errors are returned as
// errors; execution failures are reported in the result.
func (uc *RunScenario) Execute(ctx context.Context, params RunScenarioParams) (*RunScenarioResult, error) {
	parsed, err := uc.load(ctx, params)
	if err != nil {
		return nil, err
	}
	logDiagnostics(uc.log, parsed.Diagnostics)

	rpcURL := params.RPCURL
	if rpcURL == "" {
		rpcURL = uc.config.RPCURL
	}
	policy := params.DeployAddressPolicy
	if policy == "" {
		policy = uc.config.DeployAddressPolicy
	}
	if !policy.IsValid() {
		return nil, fmt.Errorf("invalid deploy address policy %q", policy)
	}

	timeout := time.Duration(parsed.Definition.Timeout) * time.Second
	if uc.config.Timeout > 0 {
		timeout = uc.config.Timeout
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	exec := &executor{
		dialer:     uc.dialer,
		codec:      uc.codec,
		artifacts:  uc.artifacts,
		nodes:      uc.nodes,
		progress:   uc.progress,
		log:        uc.log,
		policy:     policy,
		rpcTimeout: uc.config.RPCTimeout,
		autoStart:  uc.config.Node.AutoStart,
	}
	result := exec.run(ctx, parsed.Definition, rpcURL)
	uc.progress.OnProgress(ctx, ProgressEvent{Stage: "done", Message: string(result.State)})
	result.Diagnostics = parsed.Diagnostics

	out := &RunScenarioResult{Result: result, Parsed: parsed, RPCURL: rpcURL}

	if (params.WriteTrace || uc.config.WriteTrace) && uc.traces != nil {
		path, err := uc.traces.WriteTrace(ctx, result)
		if err != nil {
			uc.log.Warn("failed to write trace", "run", result.RunID, "error", err)
		} else {
			out.TracePath = path
		}
	}

	return out, nil
}

func (uc *RunScenario) load(ctx context.Context, params RunScenarioParams) (*domain.ParsedScenario, error) {
	switch {
	case params.Path != "":
		text, err := uc.store.Read(ctx, params.Path)
		if err != nil {
			return nil, err
		}
		return uc.parser.Parse(text)
	case strings.TrimSpace(params.YAML) != "":
		return uc.parser.Parse(params.YAML)
	case params.Definition != nil:
		return &domain.ParsedScenario{Definition: params.Definition}, nil
	}
	return nil, &domain.ParseError{Msg: "no scenario given"}
}

func logDiagnostics(log *slog.Logger, diagnostics []domain.Diagnostic) {
	for _, d := range diagnostics {
		switch d.Level {
		case domain.DiagnosticWarning:
			log.Warn(d.Message, "step", d.Step)
		default:
			log.Info(d.Message, "step", d.Step)
		}
	}
}
