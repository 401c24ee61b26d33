package usecase_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/catapult/internal/adapters/parser"
	"github.com/trebuchet-org/catapult/internal/domain"
	"github.com/trebuchet-org/catapult/internal/usecase"
)

func testParser() *parser.ScenarioParser {
	return parser.NewScenarioParser(slog.New(slog.DiscardHandler))
}

func TestParseScenario(t *testing.T) {
	ctx := context.Background()

	t.Run("inline yaml", func(t *testing.T) {
		uc := usecase.NewParseScenario(testParser(), &MockScenarioStore{})
		result, err := uc.Execute(ctx, usecase.ParseScenarioParams{YAML: "name: p\nsteps:\n  - transaction: {from: a, to: b, fn: c}\n"})
		require.NoError(t, err)
		assert.Equal(t, domain.StepSend, result.Parsed.Definition.Steps[0].Kind)
		require.Len(t, result.Parsed.Diagnostics, 1)
		assert.Equal(t, domain.DiagnosticInfo, result.Parsed.Diagnostics[0].Level)
	})

	t.Run("path wins over yaml", func(t *testing.T) {
		store := &MockScenarioStore{}
		store.On("Read", mock.Anything, "scenarios/a.yaml").Return("name: from-file\nsteps: []\n", nil)

		uc := usecase.NewParseScenario(testParser(), store)
		result, err := uc.Execute(ctx, usecase.ParseScenarioParams{Path: "scenarios/a.yaml", YAML: "name: inline\nsteps: []"})
		require.NoError(t, err)
		assert.Equal(t, "from-file", result.Parsed.Definition.Name)
		assert.Equal(t, "scenarios/a.yaml", result.Path)
		assert.Equal(t, "name: from-file\nsteps: []\n", result.Source)
	})

	t.Run("missing file", func(t *testing.T) {
		store := &MockScenarioStore{}
		store.On("Read", mock.Anything, "gone").Return("", domain.ErrScenarioNotFound)

		_, err := usecase.NewParseScenario(testParser(), store).Execute(ctx, usecase.ParseScenarioParams{Path: "gone"})
		assert.ErrorIs(t, err, domain.ErrScenarioNotFound)
	})

	t.Run("empty input", func(t *testing.T) {
		_, err := usecase.NewParseScenario(testParser(), &MockScenarioStore{}).Execute(ctx, usecase.ParseScenarioParams{YAML: "  "})
		var parseErr *domain.ParseError
		assert.ErrorAs(t, err, &parseErr)
	})
}

func TestSaveScenario(t *testing.T) {
	ctx := context.Background()
	yaml := "# keep me\nname: My Flow\nsteps:\n  - mine: 1\n"

	t.Run("raw yaml is stored as written", func(t *testing.T) {
		store := &MockScenarioStore{}
		store.On("Save", mock.Anything, "My Flow", []byte(yaml), false).Return("scenarios/my_flow.yaml", nil)

		uc := usecase.NewSaveScenario(testParser(), parser.NewScenarioEncoder(), store)
		result, err := uc.Execute(ctx, usecase.SaveScenarioParams{YAML: yaml})
		require.NoError(t, err)
		assert.Equal(t, "scenarios/my_flow.yaml", result.Path)
		assert.Equal(t, "My Flow", result.Definition.Name)
		store.AssertExpectations(t)
	})

	t.Run("definition is encoded", func(t *testing.T) {
		def := &domain.ScenarioDefinition{
			Name: "encoded",
			Steps: []domain.Step{{
				Index:  1,
				Kind:   domain.StepMine,
				Token:  "mine",
				Fields: domain.Fields{{Key: "blocks", Value: int64(2)}},
			}},
		}
		store := &MockScenarioStore{}
		store.On("Save", mock.Anything, "renamed", mock.AnythingOfType("[]uint8"), true).Return("scenarios/renamed.yaml", nil)

		uc := usecase.NewSaveScenario(testParser(), parser.NewScenarioEncoder(), store)
		result, err := uc.Execute(ctx, usecase.SaveScenarioParams{Name: "renamed", Definition: def, Overwrite: true})
		require.NoError(t, err)
		assert.Equal(t, domain.BlocksPayload{StepKind: domain.StepMine, Blocks: 2}, result.Definition.Steps[0].Payload)
		store.AssertExpectations(t)
	})

	t.Run("invalid scenario is not saved", func(t *testing.T) {
		store := &MockScenarioStore{}
		uc := usecase.NewSaveScenario(testParser(), parser.NewScenarioEncoder(), store)
		_, err := uc.Execute(ctx, usecase.SaveScenarioParams{YAML: "steps: []"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "refusing to save")
		store.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("existing file", func(t *testing.T) {
		store := &MockScenarioStore{}
		store.On("Save", mock.Anything, "My Flow", mock.Anything, false).Return("", errors.New("scenario my_flow already exists"))

		uc := usecase.NewSaveScenario(testParser(), parser.NewScenarioEncoder(), store)
		_, err := uc.Execute(ctx, usecase.SaveScenarioParams{YAML: yaml})
		assert.ErrorContains(t, err, "already exists")
	})
}

func TestListScenarios(t *testing.T) {
	store := &MockScenarioStore{}
	store.On("List", mock.Anything).Return([]usecase.ScenarioFile{
		{Name: "good.yaml", Path: "scenarios/good.yaml"},
		{Name: "bad.yaml", Path: "scenarios/bad.yaml"},
		{Name: "gone.yaml", Path: "scenarios/gone.yaml"},
	}, nil)
	store.On("Read", mock.Anything, "scenarios/good.yaml").
		Return("name: good\ndescription: works\nsteps:\n  - mine: 1\n  - label: x\n", nil)
	store.On("Read", mock.Anything, "scenarios/bad.yaml").Return("steps: []", nil)
	store.On("Read", mock.Anything, "scenarios/gone.yaml").Return("", domain.ErrScenarioNotFound)

	result, err := usecase.NewListScenarios(store, testParser()).Execute(context.Background())
	require.NoError(t, err)
	require.Len(t, result.Scenarios, 3)

	assert.Equal(t, usecase.ScenarioSummary{
		File:        "good.yaml",
		Path:        "scenarios/good.yaml",
		Name:        "good",
		Description: "works",
		Steps:       2,
	}, result.Scenarios[0])
	assert.Contains(t, result.Scenarios[1].Error, "must have a 'name'")
	assert.Contains(t, result.Scenarios[2].Error, "scenario not found")
}
