package domain

import (
	"strings"

	"github.com/samber/lo"
)

// ABIParam is a named ABI input or output
type ABIParam struct {
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
	Type string `json:"type" yaml:"type"`
}

// ABIFunction describes a contract function for scenario authors
type ABIFunction struct {
	Name            string     `json:"name" yaml:"name"`
	Signature       string     `json:"signature" yaml:"signature"`
	Inputs          []ABIParam `json:"inputs" yaml:"inputs"`
	Outputs         []ABIParam `json:"outputs" yaml:"outputs"`
	StateMutability string     `json:"stateMutability" yaml:"state_mutability"`
	ExampleArgs     []string   `json:"exampleArgs,omitempty" yaml:"example_args,omitempty"`
}

// ReadOnly reports whether the function can be used in a call step
func (f ABIFunction) ReadOnly() bool {
	return f.StateMutability == "view" || f.StateMutability == "pure"
}

// CallSignature returns the signature with return types, for example
// "balanceOf(address)(uint256)"
func (f ABIFunction) CallSignature() string {
	if len(f.Outputs) == 0 {
		return f.Signature
	}
	types := lo.Map(f.Outputs, func(p ABIParam, _ int) string { return p.Type })
	return f.Signature + "(" + strings.Join(types, ",") + ")"
}

// ABIEvent describes a contract event
type ABIEvent struct {
	Name   string     `json:"name" yaml:"name"`
	Inputs []ABIParam `json:"inputs" yaml:"inputs"`
}

// ContractAnalysis summarises a contract ABI
type ContractAnalysis struct {
	Contract          string        `json:"contract" yaml:"contract"`
	Functions         []ABIFunction `json:"functions" yaml:"functions"`
	Events            []ABIEvent    `json:"events" yaml:"events"`
	ConstructorInputs []ABIParam    `json:"constructorInputs" yaml:"constructor_inputs"`
	Suggestions       []string      `json:"suggestions" yaml:"suggestions"`
}

// Function returns the first function with the given name
func (a *ContractAnalysis) Function(name string) (ABIFunction, bool) {
	return lo.Find(a.Functions, func(f ABIFunction) bool { return f.Name == name })
}

// DefaultTemplateRoles are bound by every generated template
var DefaultTemplateRoles = []Role{
	{Name: "deployer", Address: "$acc0"},
	{Name: "user", Address: "$acc1"},
	{Name: "attacker", Address: "$acc2"},
}

// ExampleArgs returns placeholder arguments for the given inputs
func ExampleArgs(inputs []ABIParam) []string {
	return lo.Map(inputs, func(in ABIParam, _ int) string {
		t := in.Type
		switch {
		case strings.HasSuffix(t, "]"):
			return "[]"
		case strings.Contains(t, "int"):
			return "1"
		case t == "bool":
			return "true"
		case t == "address":
			return "$acc1"
		case t == "string":
			return "test"
		case strings.HasPrefix(t, "bytes"):
			return "0x00"
		}
		return "0"
	})
}

// SuggestScenarios proposes things worth testing based on common function
// and event names
func SuggestScenarios(functions []ABIFunction, events []ABIEvent) []string {
	fn := lo.SliceToMap(functions, func(f ABIFunction) (string, bool) { return f.Name, true })
	ev := lo.SliceToMap(events, func(e ABIEvent) (string, bool) { return e.Name, true })

	var suggestions []string
	add := func(ok bool, s string) {
		if ok {
			suggestions = append(suggestions, s)
		}
	}
	add(fn["transfer"], "Consider testing token transfers between different users")
	add(fn["approve"] && fn["transferFrom"], "Test approval and transferFrom workflow")
	add(fn["mint"], "Test minting functionality and supply limits")
	add(fn["burn"], "Test burning tokens and supply reduction")
	add(fn["stake"] || fn["deposit"], "Test staking/deposit functionality with time-based rewards")
	add(fn["withdraw"] || fn["unstake"], "Test withdrawal/unstaking with potential penalties")
	add(fn["pause"] && fn["unpause"], "Test pause/unpause functionality and access control")
	add(fn["upgrade"] || fn["migrate"], "Test upgrade/migration functionality")
	add(ev["Transfer"], "Verify Transfer events are emitted correctly")
	add(ev["Approval"], "Verify Approval events for allowance changes")
	return suggestions
}
