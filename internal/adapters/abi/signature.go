package abi

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// Signature is a parsed "name(inputs)(outputs)" function signature
type Signature struct {
	Name    string
	Inputs  abi.Arguments
	Outputs abi.Arguments
	// Bare is set when only a method name was given
	Bare bool
}

// ParseSignature parses cast-style signatures such as
// "transfer(address,uint256)(bool)", "balanceOf(address owner) returns (uint256)"
// or a bare method name like "increment".
func ParseSignature(sig string) (*Signature, error) {
	sig = strings.TrimSpace(sig)
	open := strings.IndexByte(sig, '(')
	if open < 0 {
		if sig == "" || !isIdentifier(sig) {
			return nil, fmt.Errorf("invalid function %q", sig)
		}
		return &Signature{Name: sig, Bare: true}, nil
	}

	name := strings.TrimSpace(sig[:open])
	if !isIdentifier(name) {
		return nil, fmt.Errorf("invalid function name in %q", sig)
	}

	closing, err := matchingParen(sig, open)
	if err != nil {
		return nil, fmt.Errorf("invalid signature %q: %w", sig, err)
	}
	inputs, err := parseArguments(sig[open+1 : closing])
	if err != nil {
		return nil, fmt.Errorf("invalid signature %q: %w", sig, err)
	}

	result := &Signature{Name: name, Inputs: inputs}

	rest := strings.TrimSpace(sig[closing+1:])
	rest = strings.TrimSpace(strings.TrimPrefix(rest, "returns"))
	if rest == "" {
		return result, nil
	}
	if rest[0] != '(' {
		return nil, fmt.Errorf("invalid return types in %q", sig)
	}
	end, err := matchingParen(rest, 0)
	if err != nil || strings.TrimSpace(rest[end+1:]) != "" {
		return nil, fmt.Errorf("invalid return types in %q", sig)
	}
	if result.Outputs, err = parseArguments(rest[1:end]); err != nil {
		return nil, fmt.Errorf("invalid signature %q: %w", sig, err)
	}
	return result, nil
}

// Method builds the go-ethereum method for the signature
func (s *Signature) Method() abi.Method {
	return abi.NewMethod(s.Name, s.Name, abi.Function, "", false, false, s.Inputs, s.Outputs)
}

func parseArguments(list string) (abi.Arguments, error) {
	parts := splitTopLevel(list)
	args := make(abi.Arguments, 0, len(parts))
	for i, part := range parts {
		fields := strings.Fields(part)
		if len(fields) == 0 {
			return nil, fmt.Errorf("empty type at position %d", i)
		}
		typeName := canonicalType(fields[0])
		if strings.HasPrefix(typeName, "(") {
			return nil, fmt.Errorf("tuple types are not supported in signatures: %s", typeName)
		}
		typ, err := abi.NewType(typeName, "", nil)
		if err != nil {
			return nil, fmt.Errorf("unsupported type %q: %w", fields[0], err)
		}
		name := ""
		if len(fields) > 1 {
			name = fields[len(fields)-1]
		}
		args = append(args, abi.Argument{Name: name, Type: typ})
	}
	return args, nil
}

// canonicalType expands the uint/int shorthands the ABI type parser rejects.
func canonicalType(t string) string {
	for _, short := range []string{"uint", "int"} {
		if t == short || strings.HasPrefix(t, short+"[") {
			return short + "256" + t[len(short):]
		}
	}
	return t
}

// splitTopLevel splits on commas that are not nested in brackets.
func splitTopLevel(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	var (
		parts []string
		depth int
		start int
	)
	for i, c := range s {
		switch c {
		case '(', '[':
			depth++
		case ')', ']':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, strings.TrimSpace(s[start:i]))
				start = i + 1
			}
		}
	}
	return append(parts, strings.TrimSpace(s[start:]))
}

func matchingParen(s string, open int) (int, error) {
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i, nil
			}
		}
	}
	return 0, fmt.Errorf("unbalanced parentheses")
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, c := range s {
		switch {
		case c == '_' || c == '$':
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}
