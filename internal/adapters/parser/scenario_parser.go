package parser

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/trebuchet-org/catapult/internal/domain"
	"github.com/trebuchet-org/catapult/internal/usecase"
	"gopkg.in/yaml.v3"
)

// ScenarioParser turns scenario YAML into a ScenarioDefinition
type ScenarioParser struct {
	log *slog.Logger
}

// NewScenarioParser creates a new scenario parser
func NewScenarioParser(log *slog.Logger) *ScenarioParser {
	return &ScenarioParser{log: log.With("component", "ScenarioParser")}
}

var _ usecase.ScenarioParser = (*ScenarioParser)(nil)

// Parse normalizes and decodes a scenario document.
func (p *ScenarioParser) Parse(text string) (*domain.ParsedScenario, error) {
	normalized := Normalize(text)
	if normalized != text {
		p.log.Debug("normalized scenario text", "before", len(text), "after", len(normalized))
	}

	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(normalized), &doc); err != nil {
		return nil, &domain.ParseError{Msg: "invalid YAML", Err: err}
	}

	root, err := scenarioRoot(&doc)
	if err != nil {
		return nil, err
	}

	def := &domain.ScenarioDefinition{
		Timeout:   domain.DefaultScenarioTimeout,
		GasLimit:  domain.DefaultGasLimit,
		Contracts: map[string]string{},
	}

	keys := mappingPairs(root)
	nameNode, ok := lookup(keys, "name")
	if !ok || nameNode.Kind != yaml.ScalarNode || strings.TrimSpace(nameNode.Value) == "" {
		return nil, &domain.ParseError{Msg: "scenario must have a 'name'"}
	}
	def.Name = strings.TrimSpace(nameNode.Value)

	if len(keys) == 1 {
		return nil, &domain.ParseError{Msg: "scenario must define 'steps'"}
	}

	if n, ok := lookup(keys, "description"); ok {
		def.Description = domain.FormatValue(decodeNode(n))
	}
	if n, ok := lookup(keys, "timeout"); ok {
		v, err := domain.ParseUint(decodeNode(n))
		if err != nil {
			return nil, &domain.ParseError{Msg: "invalid 'timeout'", Err: err}
		}
		def.Timeout = int(v)
	}
	if n, ok := lookup(keys, "gas_limit"); ok {
		v, err := domain.ParseUint(decodeNode(n))
		if err != nil {
			return nil, &domain.ParseError{Msg: "invalid 'gas_limit'", Err: err}
		}
		def.GasLimit = v
	}

	if n, ok := lookup(keys, "roles"); ok && !isNull(n) {
		roles, err := parseRoles(n)
		if err != nil {
			return nil, err
		}
		def.Roles = roles
	}

	if n, ok := lookup(keys, "contracts"); ok && !isNull(n) {
		if n.Kind != yaml.MappingNode {
			return nil, &domain.ParseError{Msg: "'contracts' must be a mapping of name to address"}
		}
		for _, kv := range mappingPairs(n) {
			def.Contracts[kv.key] = domain.FormatValue(decodeNode(kv.value))
		}
	}

	var diagnostics []domain.Diagnostic
	if n, ok := lookup(keys, "steps"); ok && !isNull(n) {
		if n.Kind != yaml.SequenceNode {
			return nil, &domain.ParseError{Msg: "'steps' must be a list"}
		}
		for i, entry := range n.Content {
			step, diag, err := parseStep(i+1, entry)
			if err != nil {
				return nil, err
			}
			if diag != nil {
				diagnostics = append(diagnostics, *diag)
			}
			def.Steps = append(def.Steps, step)
		}
	}

	return &domain.ParsedScenario{
		Definition:  def,
		Diagnostics: diagnostics,
		Normalized:  normalized,
	}, nil
}

func scenarioRoot(doc *yaml.Node) (*yaml.Node, error) {
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return nil, &domain.ParseError{Msg: "scenario document is empty"}
	}
	root := resolveAlias(doc.Content[0])

	if root.Kind == yaml.SequenceNode {
		if len(root.Content) == 0 {
			return nil, &domain.ParseError{Msg: "scenario list is empty"}
		}
		root = resolveAlias(root.Content[0])
	}
	if isNull(root) {
		return nil, &domain.ParseError{Msg: "scenario document is empty"}
	}
	if root.Kind != yaml.MappingNode {
		return nil, &domain.ParseError{Msg: "scenario must be a mapping"}
	}
	return root, nil
}

func parseRoles(n *yaml.Node) ([]domain.Role, error) {
	if n.Kind != yaml.MappingNode {
		return nil, &domain.ParseError{Msg: "'roles' must be a mapping"}
	}

	var roles []domain.Role
	for _, kv := range mappingPairs(n) {
		role := domain.Role{Name: kv.key}
		v := resolveAlias(kv.value)
		switch v.Kind {
		case yaml.ScalarNode:
			role.Address = domain.FormatValue(decodeNode(v))
		case yaml.MappingNode:
			fields := mappingFields(v)
			role.Address = fields.String("address")
			role.PrivateKey = fields.String("private_key")
			role.Balance = fields.String("balance")
		default:
			return nil, &domain.ParseError{Msg: fmt.Sprintf("role %q must be an address or a mapping", kv.key)}
		}
		roles = append(roles, role)
	}
	return roles, nil
}

// parseStep converts one entry of the steps list. index is 1-based.
func parseStep(index int, entry *yaml.Node) (domain.Step, *domain.Diagnostic, error) {
	entry = resolveAlias(entry)
	step := domain.Step{Index: index}

	var (
		token string
		body  domain.Fields
		res   domain.Resolution
	)

	switch entry.Kind {
	case yaml.MappingNode:
		pairs := mappingPairs(entry)
		if len(pairs) == 0 {
			return step, nil, &domain.ParseError{Step: index, Msg: "step is empty"}
		}
		chosen := chooseKindKey(pairs)
		value := resolveAlias(pairs[chosen].value)
		siblings := make(domain.Fields, 0, len(pairs)-1)
		for i, kv := range pairs {
			if i != chosen {
				siblings = append(siblings, domain.Field{Key: kv.key, Value: decodeNode(kv.value)})
			}
		}

		token = pairs[chosen].key
		switch {
		case token == "type" && value.Kind == yaml.ScalarNode && !isNull(value):
			token = value.Value
			body = siblings
		case value.Kind == yaml.MappingNode:
			body = mergeFields(mappingFields(value), siblings)
		case isNull(value):
			body = siblings
		default:
			body = mergeFields(domain.Fields{{Key: "value", Value: decodeNode(value)}}, siblings)
		}
		res = domain.Canonicalize(token)
		if res.Method == domain.ResolvedFuzzy || res.Method == domain.ResolvedFallback {
			// - step: {type: mine, blocks: 2}
			if kind, ok := body.Get("type"); ok {
				if s, ok := kind.(string); ok && domain.IsStepKindToken(s) {
					token = s
					body = body.Without("type")
					res = domain.Canonicalize(token)
				}
			}
		}
	case yaml.ScalarNode, yaml.SequenceNode:
		v := decodeNode(entry)
		token = domain.FormatValue(v)
		body = domain.Fields{{Key: "value", Value: v}}
		res = domain.Resolution{Token: token, Kind: domain.StepAction, Method: domain.ResolvedFallback}
	default:
		return step, nil, &domain.ParseError{Step: index, Msg: "unsupported step shape"}
	}

	step.Token = token
	step.Kind = res.Kind
	step.Description = body.String("description")
	step.GasPrice = body.String("gas_price")
	if v, ok := body.Get("gas_limit"); ok && v != nil {
		gas, err := domain.ParseUint(v)
		if err != nil {
			return step, nil, &domain.ParseError{Step: index, Msg: "invalid gas_limit", Err: err}
		}
		step.GasLimit = gas
	}
	step.Fields = body.Without("description", "gas_limit", "gas_price")

	payload, err := domain.DecodePayload(step.Kind, step.Fields)
	if err != nil {
		return step, nil, &domain.ParseError{Step: index, Err: err}
	}
	step.Payload = payload

	var diag *domain.Diagnostic
	switch res.Method {
	case domain.ResolvedAlias:
		diag = &domain.Diagnostic{Step: index, Level: domain.DiagnosticInfo, Message: res.Message()}
	case domain.ResolvedFuzzy, domain.ResolvedFallback:
		msg := res.Message()
		if entry.Kind != yaml.MappingNode {
			msg = fmt.Sprintf("bare step value %q treated as %q", token, res.Kind)
		}
		diag = &domain.Diagnostic{Step: index, Level: domain.DiagnosticWarning, Message: msg}
	}
	return step, diag, nil
}

// chooseKindKey picks the key naming the step kind: the first known kind or
// alias, then a "type" key, then the first key.
func chooseKindKey(pairs []pair) int {
	for i, kv := range pairs {
		if domain.IsStepKindToken(kv.key) {
			return i
		}
	}
	for i, kv := range pairs {
		if kv.key == "type" {
			return i
		}
	}
	return 0
}

func mergeFields(body, siblings domain.Fields) domain.Fields {
	for _, s := range siblings {
		if !body.Has(s.Key) {
			body = append(body, s)
		}
	}
	return body
}

type pair struct {
	key   string
	value *yaml.Node
}

func mappingPairs(n *yaml.Node) []pair {
	n = resolveAlias(n)
	pairs := make([]pair, 0, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		pairs = append(pairs, pair{key: n.Content[i].Value, value: n.Content[i+1]})
	}
	return pairs
}

func mappingFields(n *yaml.Node) domain.Fields {
	pairs := mappingPairs(n)
	fields := make(domain.Fields, 0, len(pairs))
	for _, kv := range pairs {
		fields = append(fields, domain.Field{Key: kv.key, Value: decodeNode(kv.value)})
	}
	return fields
}

func lookup(pairs []pair, key string) (*yaml.Node, bool) {
	for _, kv := range pairs {
		if kv.key == key {
			return resolveAlias(kv.value), true
		}
	}
	return nil, false
}

func resolveAlias(n *yaml.Node) *yaml.Node {
	for n != nil && n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}

func isNull(n *yaml.Node) bool {
	return n == nil || (n.Kind == yaml.ScalarNode && n.ShortTag() == "!!null")
}

// decodeNode converts a YAML node into plain Go values. Nested mappings
// become map[string]any.
func decodeNode(n *yaml.Node) any {
	n = resolveAlias(n)
	if n == nil {
		return nil
	}
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil
		}
		return decodeNode(n.Content[0])
	case yaml.SequenceNode:
		list := make([]any, len(n.Content))
		for i, c := range n.Content {
			list[i] = decodeNode(c)
		}
		return list
	case yaml.MappingNode:
		m := make(map[string]any, len(n.Content)/2)
		for _, kv := range mappingPairs(n) {
			m[kv.key] = decodeNode(kv.value)
		}
		return m
	case yaml.ScalarNode:
		return decodeScalar(n)
	}
	return nil
}

// decodeScalar keeps the source text wherever a Go number would lose
// information: hex literals stay strings, as do integers beyond 64 bits.
func decodeScalar(n *yaml.Node) any {
	switch n.ShortTag() {
	case "!!null":
		return nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err == nil {
			return b
		}
	case "!!int":
		if hasHexPrefix(n.Value) {
			return n.Value
		}
		if i, err := strconv.ParseInt(strings.ReplaceAll(n.Value, "_", ""), 10, 64); err == nil {
			return i
		}
	case "!!float":
		if isDigits(n.Value) {
			return n.Value
		}
		var f float64
		if err := n.Decode(&f); err == nil {
			return f
		}
	}
	return n.Value
}

func hasHexPrefix(s string) bool {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "-"), "+")
	return strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X")
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
