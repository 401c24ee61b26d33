package usecase

import (
	"context"
	"strings"

	"github.com/trebuchet-org/catapult/internal/domain"
)

// ParseScenario parses a scenario without touching the node
type ParseScenario struct {
	parser ScenarioParser
	store  ScenarioStore
}

// NewParseScenario creates a new ParseScenario use case
func NewParseScenario(parser ScenarioParser, store ScenarioStore) *ParseScenario {
	return &ParseScenario{parser: parser, store: store}
}

// ParseScenarioParams selects the scenario source. Path wins over YAML.
type ParseScenarioParams struct {
	Path string
	YAML string
}

// ParseScenarioResult contains the canonical steps and diagnostics
type ParseScenarioResult struct {
	Parsed *domain.ParsedScenario
	Path   string
	Source string
}

// Execute reads and parses the scenario
func (uc *ParseScenario) Execute(ctx context.Context, params ParseScenarioParams) (*ParseScenarioResult, error) {
	text := params.YAML
	if params.Path != "" {
		var err error
		if text, err = uc.store.Read(ctx, params.Path); err != nil {
			return nil, err
		}
	}
	if strings.TrimSpace(text) == "" {
		return nil, &domain.ParseError{Msg: "no scenario given"}
	}

	parsed, err := uc.parser.Parse(text)
	if err != nil {
		return nil, err
	}
	return &ParseScenarioResult{Parsed: parsed, Path: params.Path, Source: text}, nil
}
