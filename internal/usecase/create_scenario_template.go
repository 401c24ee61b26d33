package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/samber/lo"
	"github.com/trebuchet-org/catapult/internal/domain"
)

// DefaultScenarioType names templates created without an explicit type
const DefaultScenarioType = "custom"

// CreateScenarioTemplate builds a starter scenario from a contract ABI
type CreateScenarioTemplate struct {
	artifacts ArtifactRepository
	analyzer  ABIAnalyzer
	encoder   ScenarioEncoder
	store     ScenarioStore
	log       *slog.Logger
}

// NewCreateScenarioTemplate creates a new CreateScenarioTemplate use case
func NewCreateScenarioTemplate(
	artifacts ArtifactRepository,
	analyzer ABIAnalyzer,
	encoder ScenarioEncoder,
	store ScenarioStore,
	log *slog.Logger,
) *CreateScenarioTemplate {
	return &CreateScenarioTemplate{
		artifacts: artifacts,
		analyzer:  analyzer,
		encoder:   encoder,
		store:     store,
		log:       log.With("component", "CreateScenarioTemplate"),
	}
}

// CreateScenarioTemplateParams selects the contract. ABI skips the artifact
// lookup when set.
type CreateScenarioTemplateParams struct {
	Contract     string
	ABI          json.RawMessage
	ScenarioType string
	Save         bool
	Overwrite    bool
}

// CreateScenarioTemplateResult contains the generated template
type CreateScenarioTemplateResult struct {
	Definition *domain.ScenarioDefinition
	YAML       string
	Analysis   *domain.ContractAnalysis
	Path       string
}

// Execute analyzes the ABI and emits a scenario that deploys the contract,
// sends its first state-changing function and calls its first view.
func (uc *CreateScenarioTemplate) Execute(ctx context.Context, params CreateScenarioTemplateParams) (*CreateScenarioTemplateResult, error) {
	if params.Contract == "" {
		return nil, fmt.Errorf("contract name is required")
	}
	scenarioType := params.ScenarioType
	if scenarioType == "" {
		scenarioType = DefaultScenarioType
	}

	contractABI := params.ABI
	if len(contractABI) == 0 {
		artifact, err := uc.artifacts.FindArtifact(ctx, params.Contract)
		if err != nil {
			return nil, err
		}
		contractABI = artifact.ABI
	}

	analysis, err := uc.analyzer.Analyze(params.Contract, contractABI)
	if err != nil {
		return nil, err
	}

	def, err := buildTemplate(scenarioType, analysis)
	if err != nil {
		return nil, err
	}

	content, err := uc.encoder.Encode(def)
	if err != nil {
		return nil, err
	}

	result := &CreateScenarioTemplateResult{
		Definition: def,
		YAML:       string(content),
		Analysis:   analysis,
	}

	if params.Save {
		path, err := uc.store.Save(ctx, def.Name, content, params.Overwrite)
		if err != nil {
			return nil, err
		}
		uc.log.Info("saved scenario template", "path", path)
		result.Path = path
	}
	return result, nil
}

func buildTemplate(scenarioType string, analysis *domain.ContractAnalysis) (*domain.ScenarioDefinition, error) {
	contract := analysis.Contract
	def := &domain.ScenarioDefinition{
		Name:        fmt.Sprintf("%s-%s", scenarioType, contract),
		Description: fmt.Sprintf("%s scenario for %s", scenarioType, contract),
		Roles:       append([]domain.Role(nil), domain.DefaultTemplateRoles...),
		Contracts:   map[string]string{},
		Timeout:     domain.DefaultScenarioTimeout,
		GasLimit:    domain.DefaultGasLimit,
	}

	add := func(kind domain.StepKind, description string, fields domain.Fields) error {
		payload, err := domain.DecodePayload(kind, fields)
		if err != nil {
			return err
		}
		def.Steps = append(def.Steps, domain.Step{
			Index:       len(def.Steps) + 1,
			Kind:        kind,
			Token:       string(kind),
			Fields:      fields,
			Description: description,
			Payload:     payload,
		})
		return nil
	}

	deploy := domain.Fields{
		{Key: "contract", Value: contract},
		{Key: "from", Value: "$deployer"},
	}
	if args := domain.ExampleArgs(analysis.ConstructorInputs); len(args) > 0 {
		deploy = append(deploy, domain.Field{Key: "args", Value: argValues(args)})
	}
	if err := add(domain.StepDeploy, "Deploy "+contract, deploy); err != nil {
		return nil, err
	}

	if fn, ok := lo.Find(analysis.Functions, func(f domain.ABIFunction) bool { return !f.ReadOnly() }); ok {
		fields := domain.Fields{
			{Key: "from", Value: "$user"},
			{Key: "to", Value: "$" + contract},
			{Key: "fn", Value: fn.Signature},
		}
		if len(fn.ExampleArgs) > 0 {
			fields = append(fields, domain.Field{Key: "args", Value: argValues(fn.ExampleArgs)})
		}
		if fn.StateMutability == "payable" {
			fields = append(fields, domain.Field{Key: "value", Value: "0"})
		}
		if err := add(domain.StepSend, "Call "+fn.Name, fields); err != nil {
			return nil, err
		}
	}

	if fn, ok := lo.Find(analysis.Functions, func(f domain.ABIFunction) bool { return f.ReadOnly() }); ok {
		fields := domain.Fields{
			{Key: "to", Value: "$" + contract},
			{Key: "fn", Value: fn.CallSignature()},
		}
		if len(fn.ExampleArgs) > 0 {
			fields = append(fields, domain.Field{Key: "args", Value: argValues(fn.ExampleArgs)})
		}
		if err := add(domain.StepCall, "Read "+fn.Name, fields); err != nil {
			return nil, err
		}
	}

	return def, nil
}

func argValues(args []string) []any {
	return lo.Map(args, func(a string, _ int) any { return a })
}
