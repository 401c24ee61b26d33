package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for domain operations
var (
	// ErrNotFound is returned when a requested resource doesn't exist
	ErrNotFound = errors.New("not found")

	// ErrScenarioNotFound is returned when a scenario file can't be found
	ErrScenarioNotFound = errors.New("scenario not found")

	// ErrArtifactNotFound is returned when no compiled artifact matches a contract name
	ErrArtifactNotFound = errors.New("artifact not found")

	// ErrInsufficientStepData is returned when a step body lacks required fields
	ErrInsufficientStepData = errors.New("insufficient step data")

	// ErrNodeUnavailable is returned when the development node can't be reached
	ErrNodeUnavailable = errors.New("node unavailable")

	// ErrZeroDeployAddress is returned when a deployment address can't be determined
	ErrZeroDeployAddress = errors.New("could not determine deployed contract address")

	// ErrInvalidAddress is returned when an Ethereum address is invalid
	ErrInvalidAddress = errors.New("invalid address")
)

// ParseError reports a malformed scenario document. Step is 1-based; zero
// means the error concerns the document itself.
type ParseError struct {
	Step int
	Msg  string
	Err  error
}

func (e *ParseError) Error() string {
	msg := e.Msg
	if e.Err != nil {
		if msg != "" {
			msg += ": "
		}
		msg += e.Err.Error()
	}
	if e.Step > 0 {
		return fmt.Sprintf("error parsing step %d: %s", e.Step, msg)
	}
	return fmt.Sprintf("invalid scenario: %s", msg)
}

func (e *ParseError) Unwrap() error { return e.Err }

// UnresolvedSymbolError is returned when a role, contract, snapshot or
// variable name can't be resolved.
type UnresolvedSymbolError struct {
	Kind string
	Name string
}

func (e *UnresolvedSymbolError) Error() string {
	return fmt.Sprintf("unresolved %s %q", e.Kind, e.Name)
}

// RPCError wraps a failed node call. The node's message is kept verbatim.
type RPCError struct {
	Method string
	Err    error
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Method, e.Err)
}

func (e *RPCError) Unwrap() error { return e.Err }

// AssertionError is returned when an expectation does not hold
type AssertionError struct {
	Actual      string
	Expectation string
	Msg         string
}

func (e *AssertionError) Error() string {
	if e.Msg != "" {
		return fmt.Sprintf("assertion failed: %s", e.Msg)
	}
	return fmt.Sprintf("assertion failed: expected %s, got %s", e.Expectation, e.Actual)
}

// ExpectationSyntaxError is returned for expectations with an unknown operator
type ExpectationSyntaxError struct {
	Expectation string
}

func (e *ExpectationSyntaxError) Error() string {
	return fmt.Sprintf("unsupported expectation syntax %q", e.Expectation)
}

// UnsupportedStepError is returned when a step kind has no executor
type UnsupportedStepError struct {
	Kind string
}

func (e *UnsupportedStepError) Error() string {
	return fmt.Sprintf("unsupported step type %q", e.Kind)
}

// StepError attaches the failing step to an execution error
type StepError struct {
	Index int
	Kind  StepKind
	Err   error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (%s): %v", e.Index, e.Kind, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }
