package domain

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Operator is a comparison understood by CheckExpectation
type Operator string

const (
	OpEqual        Operator = "=="
	OpNotEqual     Operator = "!="
	OpGreaterEqual Operator = ">="
	OpLessEqual    Operator = "<="
	OpGreater      Operator = ">"
	OpLess         Operator = "<"
	OpContains     Operator = "contains"
	OpExists       Operator = "exists"
)

// Two-character operators come first so that ">=" is not read as ">".
var operatorPrefixes = []Operator{
	OpEqual, OpNotEqual, OpGreaterEqual, OpLessEqual, OpGreater, OpLess,
}

// Expectation is a parsed "<op><operand>" string
type Expectation struct {
	Op      Operator
	Operand string
}

// ParseExpectation splits an expectation string into operator and operand.
func ParseExpectation(s string) (Expectation, error) {
	trimmed := strings.TrimSpace(s)
	for _, op := range operatorPrefixes {
		if strings.HasPrefix(trimmed, string(op)) {
			return Expectation{Op: op, Operand: strings.TrimSpace(trimmed[len(op):])}, nil
		}
	}
	if trimmed == string(OpExists) {
		return Expectation{Op: OpExists}, nil
	}
	if rest, ok := strings.CutPrefix(trimmed, string(OpContains)+" "); ok {
		return Expectation{Op: OpContains, Operand: strings.TrimSpace(rest)}, nil
	}
	return Expectation{}, &ExpectationSyntaxError{Expectation: s}
}

func (e Expectation) String() string {
	switch e.Op {
	case OpExists:
		return string(e.Op)
	case OpContains:
		return fmt.Sprintf("%s %s", e.Op, e.Operand)
	}
	return string(e.Op) + e.Operand
}

// CheckExpectation compares an observed value with an expectation string
// such as "==1", ">=100" or "contains Ok". It returns an *AssertionError when
// the comparison does not hold and an *ExpectationSyntaxError when the
// operator is not recognized.
func CheckExpectation(actual, expectation string) error {
	exp, err := ParseExpectation(expectation)
	if err != nil {
		return err
	}
	actual = strings.TrimSpace(actual)

	fail := func() error {
		return &AssertionError{Actual: actual, Expectation: exp.String()}
	}

	switch exp.Op {
	case OpEqual:
		if actual != exp.Operand {
			return fail()
		}
	case OpNotEqual:
		if actual == exp.Operand {
			return fail()
		}
	case OpGreater, OpLess, OpGreaterEqual, OpLessEqual:
		a, err := ParseBigInt(actual)
		if err != nil {
			return &AssertionError{Actual: actual, Expectation: exp.String(),
				Msg: fmt.Sprintf("cannot compare %q numerically", actual)}
		}
		b, err := ParseBigInt(exp.Operand)
		if err != nil {
			return &AssertionError{Actual: actual, Expectation: exp.String(),
				Msg: fmt.Sprintf("cannot compare against %q numerically", exp.Operand)}
		}
		cmp := a.Cmp(b)
		ok := (exp.Op == OpGreater && cmp > 0) ||
			(exp.Op == OpLess && cmp < 0) ||
			(exp.Op == OpGreaterEqual && cmp >= 0) ||
			(exp.Op == OpLessEqual && cmp <= 0)
		if !ok {
			return fail()
		}
	case OpContains:
		if !strings.Contains(actual, exp.Operand) {
			return fail()
		}
	case OpExists:
		if actual == "" || actual == "0x" || actual == (common.Address{}).Hex() {
			return fail()
		}
	}
	return nil
}
