package abi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/samber/lo"
	"github.com/trebuchet-org/catapult/internal/domain"
	"github.com/trebuchet-org/catapult/internal/usecase"
)

// Analyzer summarises contract ABIs for scenario templates
type Analyzer struct{}

// NewAnalyzer creates a new ABI analyzer
func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

var _ usecase.ABIAnalyzer = (*Analyzer)(nil)

// Analyze lists functions, events and constructor inputs of contractABI.
// Functions and events are sorted by signature.
func (a *Analyzer) Analyze(contract string, contractABI json.RawMessage) (*domain.ContractAnalysis, error) {
	parsed, err := abi.JSON(bytes.NewReader(contractABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse ABI of %s: %w", contract, err)
	}

	analysis := &domain.ContractAnalysis{
		Contract:          contract,
		ConstructorInputs: params(parsed.Constructor.Inputs),
	}

	for _, m := range parsed.Methods {
		inputs := params(m.Inputs)
		analysis.Functions = append(analysis.Functions, domain.ABIFunction{
			Name:            m.RawName,
			Signature:       m.Sig,
			Inputs:          inputs,
			Outputs:         params(m.Outputs),
			StateMutability: mutability(m),
			ExampleArgs:     domain.ExampleArgs(inputs),
		})
	}
	sort.Slice(analysis.Functions, func(i, j int) bool {
		return analysis.Functions[i].Signature < analysis.Functions[j].Signature
	})

	for _, e := range parsed.Events {
		analysis.Events = append(analysis.Events, domain.ABIEvent{
			Name:   e.RawName,
			Inputs: params(e.Inputs),
		})
	}
	sort.Slice(analysis.Events, func(i, j int) bool {
		return analysis.Events[i].Name < analysis.Events[j].Name
	})

	analysis.Suggestions = domain.SuggestScenarios(analysis.Functions, analysis.Events)
	return analysis, nil
}

func params(args abi.Arguments) []domain.ABIParam {
	return lo.Map(args, func(arg abi.Argument, _ int) domain.ABIParam {
		return domain.ABIParam{Name: arg.Name, Type: arg.Type.String()}
	})
}

func mutability(m abi.Method) string {
	if m.StateMutability != "" {
		return m.StateMutability
	}
	switch {
	case m.Constant:
		return "view"
	case m.Payable:
		return "payable"
	}
	return "nonpayable"
}
