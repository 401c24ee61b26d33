package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExampleArgs(t *testing.T) {
	inputs := []ABIParam{
		{Name: "to", Type: "address"},
		{Name: "amount", Type: "uint256"},
		{Name: "delta", Type: "int8"},
		{Name: "flag", Type: "bool"},
		{Name: "memo", Type: "string"},
		{Name: "data", Type: "bytes"},
		{Name: "id", Type: "bytes32"},
		{Name: "list", Type: "uint256[]"},
		{Name: "tuple", Type: "tuple"},
	}
	assert.Equal(t,
		[]string{"$acc1", "1", "1", "true", "test", "0x00", "0x00", "[]", "0"},
		ExampleArgs(inputs))
	assert.Empty(t, ExampleArgs(nil))
}

func TestABIFunction(t *testing.T) {
	fn := ABIFunction{
		Name:            "balanceOf",
		Signature:       "balanceOf(address)",
		Outputs:         []ABIParam{{Type: "uint256"}},
		StateMutability: "view",
	}
	assert.True(t, fn.ReadOnly())
	assert.Equal(t, "balanceOf(address)(uint256)", fn.CallSignature())

	fn = ABIFunction{Name: "ping", Signature: "ping()", StateMutability: "nonpayable"}
	assert.False(t, fn.ReadOnly())
	assert.Equal(t, "ping()", fn.CallSignature())

	analysis := &ContractAnalysis{Functions: []ABIFunction{fn}}
	got, ok := analysis.Function("ping")
	assert.True(t, ok)
	assert.Equal(t, fn, got)
	_, ok = analysis.Function("pong")
	assert.False(t, ok)
}

func TestSuggestScenarios(t *testing.T) {
	fns := func(names ...string) []ABIFunction {
		out := make([]ABIFunction, len(names))
		for i, n := range names {
			out[i] = ABIFunction{Name: n}
		}
		return out
	}

	assert.Empty(t, SuggestScenarios(fns("increment"), nil))

	got := SuggestScenarios(fns("approve", "transferFrom", "pause", "unpause"), []ABIEvent{{Name: "Approval"}})
	assert.Equal(t, []string{
		"Test approval and transferFrom workflow",
		"Test pause/unpause functionality and access control",
		"Verify Approval events for allowance changes",
	}, got)

	// pause alone is not enough
	assert.Empty(t, SuggestScenarios(fns("pause"), nil))
	assert.Len(t, SuggestScenarios(fns("stake", "unstake", "mint", "burn", "migrate"), nil), 5)
}
