package parser

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"

	"github.com/trebuchet-org/catapult/internal/domain"
	"github.com/trebuchet-org/catapult/internal/usecase"
	"gopkg.in/yaml.v3"
)

// ScenarioEncoder writes definitions as scenario YAML that ScenarioParser
// reads back to the same definition
type ScenarioEncoder struct{}

// NewScenarioEncoder creates a new scenario encoder
func NewScenarioEncoder() *ScenarioEncoder {
	return &ScenarioEncoder{}
}

var _ usecase.ScenarioEncoder = (*ScenarioEncoder)(nil)

// Encode renders def. Default timeout and gas limit are omitted.
func (e *ScenarioEncoder) Encode(def *domain.ScenarioDefinition) ([]byte, error) {
	if def == nil || def.Name == "" {
		return nil, fmt.Errorf("scenario must have a name")
	}

	root := mappingNode()
	addScalar(root, "name", def.Name)
	if def.Description != "" {
		addScalar(root, "description", def.Description)
	}
	if def.Timeout > 0 && def.Timeout != domain.DefaultScenarioTimeout {
		addPair(root, "timeout", intNode(strconv.Itoa(def.Timeout)))
	}
	if def.GasLimit > 0 && def.GasLimit != domain.DefaultGasLimit {
		addPair(root, "gas_limit", intNode(strconv.FormatUint(def.GasLimit, 10)))
	}

	if len(def.Roles) > 0 {
		roles := mappingNode()
		for _, r := range def.Roles {
			if r.PrivateKey == "" && r.Balance == "" {
				addScalar(roles, r.Name, r.Address)
				continue
			}
			role := mappingNode()
			if r.Address != "" {
				addScalar(role, "address", r.Address)
			}
			if r.PrivateKey != "" {
				addScalar(role, "private_key", r.PrivateKey)
			}
			if r.Balance != "" {
				addScalar(role, "balance", r.Balance)
			}
			addPair(roles, r.Name, role)
		}
		addPair(root, "roles", roles)
	}

	if len(def.Contracts) > 0 {
		names := make([]string, 0, len(def.Contracts))
		for name := range def.Contracts {
			names = append(names, name)
		}
		sort.Strings(names)
		contracts := mappingNode()
		for _, name := range names {
			addScalar(contracts, name, def.Contracts[name])
		}
		addPair(root, "contracts", contracts)
	}

	steps := &yaml.Node{Kind: yaml.SequenceNode}
	for _, step := range def.Steps {
		node, err := encodeStep(step)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", step.Index, err)
		}
		steps.Content = append(steps.Content, node)
	}
	addPair(root, "steps", steps)

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{root}}); err != nil {
		return nil, fmt.Errorf("failed to encode scenario: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// encodeStep writes a step under its canonical kind. Action steps keep the
// author's token since "action" itself reads back as send.
func encodeStep(step domain.Step) (*yaml.Node, error) {
	key := string(step.Kind)
	if step.Kind == domain.StepAction {
		if bare, ok := bareValue(step); ok {
			return valueNode(bare)
		}
		key = step.Token
	}

	body := mappingNode()
	for _, f := range step.Fields {
		v, err := valueNode(f.Value)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", f.Key, err)
		}
		addPair(body, f.Key, v)
	}
	if step.Description != "" {
		addScalar(body, "description", step.Description)
	}
	if step.GasLimit > 0 {
		addPair(body, "gas_limit", intNode(strconv.FormatUint(step.GasLimit, 10)))
	}
	if step.GasPrice != "" {
		addScalar(body, "gas_price", step.GasPrice)
	}

	entry := mappingNode()
	addPair(entry, key, body)
	return entry, nil
}

// bareValue reports whether step was written as a plain list entry.
func bareValue(step domain.Step) (any, bool) {
	if len(step.Fields) != 1 || step.Fields[0].Key != "value" || step.Description != "" ||
		step.GasLimit > 0 || step.GasPrice != "" {
		return nil, false
	}
	v := step.Fields[0].Value
	if domain.FormatValue(v) != step.Token {
		return nil, false
	}
	return v, true
}

func valueNode(v any) (*yaml.Node, error) {
	var n yaml.Node
	if err := n.Encode(v); err != nil {
		return nil, err
	}
	return &n, nil
}

func mappingNode() *yaml.Node {
	return &yaml.Node{Kind: yaml.MappingNode}
}

func intNode(v string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: v}
}

func addPair(m *yaml.Node, key string, value *yaml.Node) {
	m.Content = append(m.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key}, value)
}

// addScalar adds a string value, quoted when it would otherwise read back
// as another type
func addScalar(m *yaml.Node, key, value string) {
	n, err := valueNode(value)
	if err != nil {
		n = &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value, Style: yaml.DoubleQuotedStyle}
	}
	addPair(m, key, n)
}
