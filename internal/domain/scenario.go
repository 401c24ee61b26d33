package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// StepKind is the canonical kind of a scenario step
type StepKind string

const (
	StepSend       StepKind = "send"
	StepCall       StepKind = "call"
	StepWait       StepKind = "wait"
	StepTimeTravel StepKind = "time_travel"
	StepSnapshot   StepKind = "snapshot"
	StepRevert     StepKind = "revert"
	StepAssert     StepKind = "assert"
	StepDeploy     StepKind = "deploy"
	StepMine       StepKind = "mine"
	StepSetBalance StepKind = "set_balance"
	StepSetStorage StepKind = "set_storage"
	StepLabel      StepKind = "label"
	StepAction     StepKind = "action"
)

// StepKinds lists every supported kind in canonical order.
var StepKinds = []StepKind{
	StepSend,
	StepCall,
	StepWait,
	StepTimeTravel,
	StepSnapshot,
	StepRevert,
	StepAssert,
	StepDeploy,
	StepMine,
	StepSetBalance,
	StepSetStorage,
	StepLabel,
	StepAction,
}

// IsValid reports whether k is one of the supported step kinds
func (k StepKind) IsValid() bool {
	for _, kind := range StepKinds {
		if kind == k {
			return true
		}
	}
	return false
}

func (k StepKind) String() string {
	return string(k)
}

const (
	DefaultScenarioTimeout = 300
	DefaultGasLimit        = 30_000_000
)

// ScenarioDefinition is a parsed scenario document. It is never mutated
// during execution; runtime state lives in ExecutionContext.
type ScenarioDefinition struct {
	Name        string            `json:"name" yaml:"name"`
	Description string            `json:"description,omitempty" yaml:"description,omitempty"`
	Roles       []Role            `json:"roles" yaml:"roles"`
	Contracts   map[string]string `json:"contracts,omitempty" yaml:"contracts,omitempty"`
	Steps       []Step            `json:"steps" yaml:"steps"`
	Timeout     int               `json:"timeout" yaml:"timeout"`
	GasLimit    uint64            `json:"gasLimit" yaml:"gas_limit"`
}

// ParsedScenario is the output of the schema parser
type ParsedScenario struct {
	Definition  *ScenarioDefinition `json:"definition"`
	Diagnostics []Diagnostic        `json:"diagnostics,omitempty"`
	Normalized  string              `json:"normalized,omitempty"`
}

// Role returns the role with the given name
func (d *ScenarioDefinition) Role(name string) (Role, bool) {
	for _, r := range d.Roles {
		if r.Name == name {
			return r, true
		}
	}
	return Role{}, false
}

// Role is a named account used by a scenario
type Role struct {
	Name       string `json:"name" yaml:"name"`
	Address    string `json:"address" yaml:"address"`
	PrivateKey string `json:"-" yaml:"private_key,omitempty"`
	Balance    string `json:"balance,omitempty" yaml:"balance,omitempty"`
}

// Field is one key of a step body. Bodies keep the author's key order.
type Field struct {
	Key   string `json:"key"`
	Value any    `json:"value"`
}

// Fields is an ordered step body
type Fields []Field

// Get returns the value stored under the first of the given keys present.
func (f Fields) Get(keys ...string) (any, bool) {
	for _, key := range keys {
		for _, field := range f {
			if field.Key == key {
				return field.Value, true
			}
		}
	}
	return nil, false
}

// String returns the value under the first present key formatted as a string.
func (f Fields) String(keys ...string) string {
	v, ok := f.Get(keys...)
	if !ok || v == nil {
		return ""
	}
	return FormatValue(v)
}

// Has reports whether any of the keys is present
func (f Fields) Has(keys ...string) bool {
	_, ok := f.Get(keys...)
	return ok
}

// Keys returns the keys in author order
func (f Fields) Keys() []string {
	keys := make([]string, len(f))
	for i, field := range f {
		keys[i] = field.Key
	}
	return keys
}

// Without returns a copy of the body with the given keys removed
func (f Fields) Without(keys ...string) Fields {
	out := make(Fields, 0, len(f))
	for _, field := range f {
		skip := false
		for _, key := range keys {
			if field.Key == key {
				skip = true
				break
			}
		}
		if !skip {
			out = append(out, field)
		}
	}
	return out
}

// Map converts the body into a plain map, used for rendering and JSON output.
func (f Fields) Map() map[string]any {
	m := make(map[string]any, len(f))
	for _, field := range f {
		m[field.Key] = field.Value
	}
	return m
}

// Step is a single canonicalized scenario step
type Step struct {
	Index       int         `json:"index"`
	Kind        StepKind    `json:"kind"`
	Token       string      `json:"token"`
	Fields      Fields      `json:"fields"`
	Description string      `json:"description,omitempty"`
	GasLimit    uint64      `json:"gasLimit,omitempty"`
	GasPrice    string      `json:"gasPrice,omitempty"`
	Payload     StepPayload `json:"payload"`
}

// Title returns a short human label for the step
func (s Step) Title() string {
	if s.Description != "" {
		return s.Description
	}
	if s.Payload == nil {
		return string(s.Kind)
	}
	return s.Payload.Summary()
}

// FormatValue renders a scalar scenario value the way it is passed to the node.
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		if val == math.Trunc(val) && math.Abs(val) < 1e21 {
			return strconv.FormatFloat(val, 'f', -1, 64)
		}
		return strconv.FormatFloat(val, 'g', -1, 64)
	case []any:
		parts := make([]string, len(val))
		for i, item := range val {
			parts[i] = FormatValue(item)
		}
		return "[" + strings.Join(parts, ",") + "]"
	default:
		return fmt.Sprint(val)
	}
}
