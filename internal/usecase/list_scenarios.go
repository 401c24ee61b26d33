package usecase

import (
	"context"
)

// ListScenarios lists the scenarios in the scenarios directory
type ListScenarios struct {
	store  ScenarioStore
	parser ScenarioParser
}

// NewListScenarios creates a new ListScenarios use case
func NewListScenarios(store ScenarioStore, parser ScenarioParser) *ListScenarios {
	return &ListScenarios{store: store, parser: parser}
}

// ScenarioSummary describes one stored scenario. Error is set when the file
// does not parse.
type ScenarioSummary struct {
	File        string `json:"file"`
	Path        string `json:"path"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	Steps       int    `json:"steps"`
	Error       string `json:"error,omitempty"`
}

// ListScenariosResult contains the stored scenarios
type ListScenariosResult struct {
	Scenarios []ScenarioSummary
}

// Execute reads every stored scenario and summarises it
func (uc *ListScenarios) Execute(ctx context.Context) (*ListScenariosResult, error) {
	files, err := uc.store.List(ctx)
	if err != nil {
		return nil, err
	}

	result := &ListScenariosResult{Scenarios: make([]ScenarioSummary, 0, len(files))}
	for _, f := range files {
		summary := ScenarioSummary{File: f.Name, Path: f.Path}

		text, err := uc.store.Read(ctx, f.Path)
		if err != nil {
			summary.Error = err.Error()
			result.Scenarios = append(result.Scenarios, summary)
			continue
		}
		parsed, err := uc.parser.Parse(text)
		if err != nil {
			summary.Error = err.Error()
			result.Scenarios = append(result.Scenarios, summary)
			continue
		}

		def := parsed.Definition
		summary.Name = def.Name
		summary.Description = def.Description
		summary.Steps = len(def.Steps)
		result.Scenarios = append(result.Scenarios, summary)
	}
	return result, nil
}
