package usecase

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/trebuchet-org/catapult/internal/domain/config"
)

// ExampleScenarioName is the file written by InitProject
const ExampleScenarioName = "example"

// exampleScenario needs no compiled contracts, so it runs on any fresh node
const exampleScenario = `name: example
description: Dev node walkthrough with roles, snapshots and time travel
roles:
  alice: $acc0
  bob:
    address: $acc1
    balance: 5 ether
steps:
  - label: start
  - snapshot: clean
  - set_balance:
      address: bob
      balance: 100 ether
  - mine:
      blocks: 3
  - time_travel:
      seconds: 3600
  - send:
      from: alice
      to: bob
      fn: ping()
      value: 1 ether
  - revert: clean
  - assert:
      value: $bob
      expect: exists
`

const envExample = `# catapult configuration
CATAPULT_RPC_URL=http://127.0.0.1:8545
# placeholder or strict
CATAPULT_DEPLOY_ADDRESS_POLICY=placeholder
CATAPULT_AUTO_START_NODE=true
# CATAPULT_LOG_LEVEL=debug
# CATAPULT_LOG_FORMAT=json
`

// InitProject sets up the scenario directory and data directory
type InitProject struct {
	config     *config.RuntimeConfig
	fileWriter FileWriter
	parser     ScenarioParser
	progress   ProgressSink
}

// NewInitProject creates a new init project use case
func NewInitProject(cfg *config.RuntimeConfig, fileWriter FileWriter, parser ScenarioParser, progress ProgressSink) *InitProject {
	return &InitProject{
		config:     cfg,
		fileWriter: fileWriter,
		parser:     parser,
		progress:   progress,
	}
}

// InitProjectResult contains the result of project initialization
type InitProjectResult struct {
	DataDirCreated     bool
	ScenariosCreated   bool
	ExampleCreated     bool
	EnvExampleCreated  bool
	AlreadyInitialized bool
	ExamplePath        string
	Steps              []InitStep
}

// InitStep represents a step in the initialization process
type InitStep struct {
	Name    string
	Success bool
	Message string
	Error   error
}

// Execute initializes catapult in the project root
func (i *InitProject) Execute(ctx context.Context) (*InitProjectResult, error) {
	result := &InitProjectResult{
		Steps: []InitStep{},
	}

	step := i.ensureDir(ctx, "Create Data Directory", i.config.DataDir)
	result.Steps = append(result.Steps, step)
	if !step.Success {
		return result, step.Error
	}
	result.DataDirCreated = true

	step = i.ensureDir(ctx, "Create Scenarios Directory", i.config.ScenariosDir)
	result.Steps = append(result.Steps, step)
	if !step.Success {
		return result, step.Error
	}
	result.ScenariosCreated = true

	result.ExamplePath = filepath.Join(i.config.ScenariosDir, ExampleScenarioName+".yaml")
	step = i.createExampleScenario(ctx, result.ExamplePath)
	result.Steps = append(result.Steps, step)
	if step.Success {
		result.ExampleCreated = true
		if step.Message == "Example scenario already exists" {
			result.AlreadyInitialized = true
		}
	}

	step = i.createEnvExample(ctx)
	result.Steps = append(result.Steps, step)
	if step.Success {
		result.EnvExampleCreated = true
	}

	return result, nil
}

func (i *InitProject) ensureDir(ctx context.Context, name, dir string) InitStep {
	if err := i.fileWriter.EnsureDirectory(ctx, dir); err != nil {
		return InitStep{
			Name:    name,
			Success: false,
			Error:   fmt.Errorf("failed to create %s: %w", dir, err),
		}
	}
	return InitStep{
		Name:    name,
		Success: true,
		Message: fmt.Sprintf("Directory ready: %s", i.relative(dir)),
	}
}

func (i *InitProject) createExampleScenario(ctx context.Context, path string) InitStep {
	const name = "Create Example Scenario"

	exists, err := i.fileWriter.FileExists(ctx, path)
	if err != nil {
		return InitStep{Name: name, Error: fmt.Errorf("failed to check %s: %w", path, err)}
	}
	if exists {
		return InitStep{Name: name, Success: true, Message: "Example scenario already exists"}
	}

	if _, err := i.parser.Parse(exampleScenario); err != nil {
		return InitStep{Name: name, Error: fmt.Errorf("example scenario is invalid: %w", err)}
	}

	if err := i.fileWriter.WriteFile(ctx, path, exampleScenario); err != nil {
		return InitStep{Name: name, Error: fmt.Errorf("failed to create %s: %w", path, err)}
	}
	i.progress.Info(fmt.Sprintf("wrote %s", i.relative(path)))

	return InitStep{
		Name:    name,
		Success: true,
		Message: fmt.Sprintf("Created %s", i.relative(path)),
	}
}

func (i *InitProject) createEnvExample(ctx context.Context) InitStep {
	const name = "Create Environment Example"
	path := filepath.Join(i.config.ProjectRoot, ".env.example")

	exists, err := i.fileWriter.FileExists(ctx, path)
	if err != nil {
		return InitStep{Name: name, Error: fmt.Errorf("failed to check .env.example: %w", err)}
	}
	if exists {
		return InitStep{Name: name, Success: true, Message: ".env.example already exists"}
	}

	if err := i.fileWriter.WriteFile(ctx, path, envExample); err != nil {
		return InitStep{Name: name, Error: fmt.Errorf("failed to create .env.example: %w", err)}
	}
	return InitStep{Name: name, Success: true, Message: "Created .env.example"}
}

func (i *InitProject) relative(path string) string {
	if rel, err := filepath.Rel(i.config.ProjectRoot, path); err == nil {
		return rel
	}
	return path
}
