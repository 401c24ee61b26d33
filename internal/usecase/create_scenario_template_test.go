package usecase_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/catapult/internal/adapters/abi"
	"github.com/trebuchet-org/catapult/internal/adapters/parser"
	"github.com/trebuchet-org/catapult/internal/domain"
	"github.com/trebuchet-org/catapult/internal/usecase"
)

func newTemplateUseCase(store usecase.ScenarioStore) *usecase.CreateScenarioTemplate {
	return usecase.NewCreateScenarioTemplate(
		counterArtifacts(),
		abi.NewAnalyzer(),
		parser.NewScenarioEncoder(),
		store,
		slog.New(slog.DiscardHandler),
	)
}

func TestCreateScenarioTemplate(t *testing.T) {
	ctx := context.Background()

	t.Run("from artifact", func(t *testing.T) {
		result, err := newTemplateUseCase(&MockScenarioStore{}).Execute(ctx, usecase.CreateScenarioTemplateParams{
			Contract: "Counter",
		})
		require.NoError(t, err)

		def := result.Definition
		assert.Equal(t, "custom-Counter", def.Name)
		assert.Equal(t, domain.DefaultTemplateRoles, def.Roles)
		require.Len(t, def.Steps, 3)

		assert.Equal(t, domain.DeployPayload{Contract: "Counter", From: "$deployer"}, def.Steps[0].Payload)
		assert.Equal(t, domain.SendPayload{From: "$user", To: "$Counter", Fn: "increment()"}, def.Steps[1].Payload)
		assert.Equal(t, domain.CallPayload{To: "$Counter", Fn: "number()(uint256)"}, def.Steps[2].Payload)
		for i, step := range def.Steps {
			assert.Equal(t, i+1, step.Index)
		}

		assert.Equal(t, "Counter", result.Analysis.Contract)
		assert.Len(t, result.Analysis.Functions, 3)
		assert.Empty(t, result.Path)
	})

	t.Run("yaml parses back", func(t *testing.T) {
		result, err := newTemplateUseCase(&MockScenarioStore{}).Execute(ctx, usecase.CreateScenarioTemplateParams{
			Contract:     "Counter",
			ScenarioType: "stress",
		})
		require.NoError(t, err)
		assert.Contains(t, result.YAML, "name: stress-Counter")

		parsed, err := parser.NewScenarioParser(slog.New(slog.DiscardHandler)).Parse(result.YAML)
		require.NoError(t, err)
		assert.Empty(t, parsed.Diagnostics)
		require.Len(t, parsed.Definition.Steps, 3)
		for i, step := range parsed.Definition.Steps {
			assert.Equal(t, result.Definition.Steps[i].Payload, step.Payload)
		}
	})

	t.Run("template runs", func(t *testing.T) {
		tmpl, err := newTemplateUseCase(&MockScenarioStore{}).Execute(ctx, usecase.CreateScenarioTemplateParams{Contract: "Counter"})
		require.NoError(t, err)

		h := newRunHarness()
		result := h.run(t, tmpl.YAML)
		require.True(t, result.Success, result.Error)
		assert.Equal(t, 3, result.StepsExecuted)
	})

	t.Run("inline abi with constructor and save", func(t *testing.T) {
		tokenABI := json.RawMessage(`[
			{"type":"constructor","inputs":[{"name":"supply","type":"uint256"},{"name":"owner","type":"address"}]},
			{"type":"function","name":"transfer","inputs":[{"name":"to","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[{"name":"","type":"bool"}],"stateMutability":"nonpayable"},
			{"type":"event","name":"Transfer","inputs":[{"name":"from","type":"address","indexed":true},{"name":"to","type":"address","indexed":true},{"name":"value","type":"uint256","indexed":false}],"anonymous":false}
		]`)

		store := &MockScenarioStore{}
		store.On("Save", mock.Anything, "custom-Token", mock.AnythingOfType("[]uint8"), true).
			Return("scenarios/custom-token.yaml", nil)

		result, err := newTemplateUseCase(store).Execute(ctx, usecase.CreateScenarioTemplateParams{
			Contract:  "Token",
			ABI:       tokenABI,
			Save:      true,
			Overwrite: true,
		})
		require.NoError(t, err)

		assert.Equal(t, "scenarios/custom-token.yaml", result.Path)
		assert.Equal(t, []string{"1", "$acc1"}, result.Definition.Steps[0].Payload.(domain.DeployPayload).Args)
		send := result.Definition.Steps[1].Payload.(domain.SendPayload)
		assert.Equal(t, "transfer(address,uint256)", send.Fn)
		assert.Equal(t, []string{"$acc1", "1"}, send.Args)
		// no view functions, so no call step
		assert.Len(t, result.Definition.Steps, 2)
		assert.Contains(t, result.Analysis.Suggestions, "Verify Transfer events are emitted correctly")
		store.AssertExpectations(t)
	})

	t.Run("unknown contract", func(t *testing.T) {
		_, err := newTemplateUseCase(&MockScenarioStore{}).Execute(ctx, usecase.CreateScenarioTemplateParams{Contract: "Nope"})
		assert.ErrorIs(t, err, domain.ErrArtifactNotFound)
	})

	t.Run("contract required", func(t *testing.T) {
		_, err := newTemplateUseCase(&MockScenarioStore{}).Execute(ctx, usecase.CreateScenarioTemplateParams{})
		assert.Error(t, err)
	})
}
