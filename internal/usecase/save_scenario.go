package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/trebuchet-org/catapult/internal/domain"
)

// SaveScenario validates a scenario and writes it to the scenarios directory
type SaveScenario struct {
	parser  ScenarioParser
	encoder ScenarioEncoder
	store   ScenarioStore
}

// NewSaveScenario creates a new SaveScenario use case
func NewSaveScenario(parser ScenarioParser, encoder ScenarioEncoder, store ScenarioStore) *SaveScenario {
	return &SaveScenario{parser: parser, encoder: encoder, store: store}
}

// SaveScenarioParams holds either raw YAML or a definition to encode. Name
// defaults to the scenario name.
type SaveScenarioParams struct {
	Name       string
	YAML       string
	Definition *domain.ScenarioDefinition
	Overwrite  bool
}

// SaveScenarioResult contains where the scenario was written
type SaveScenarioResult struct {
	Path       string
	Definition *domain.ScenarioDefinition
}

// Execute parses the content and saves it. YAML is stored as written so
// comments survive.
func (uc *SaveScenario) Execute(ctx context.Context, params SaveScenarioParams) (*SaveScenarioResult, error) {
	content := []byte(params.YAML)
	if strings.TrimSpace(params.YAML) == "" {
		if params.Definition == nil {
			return nil, &domain.ParseError{Msg: "no scenario given"}
		}
		var err error
		if content, err = uc.encoder.Encode(params.Definition); err != nil {
			return nil, err
		}
	}

	parsed, err := uc.parser.Parse(string(content))
	if err != nil {
		return nil, fmt.Errorf("refusing to save invalid scenario: %w", err)
	}

	name := params.Name
	if name == "" {
		name = parsed.Definition.Name
	}
	path, err := uc.store.Save(ctx, name, content, params.Overwrite)
	if err != nil {
		return nil, err
	}
	return &SaveScenarioResult{Path: path, Definition: parsed.Definition}, nil
}
