package domain

import (
	"fmt"
	"math"
	"math/big"
	"strings"
)

// StepPayload is the kind-specific data of a step
type StepPayload interface {
	Kind() StepKind
	Summary() string
}

type SendPayload struct {
	From  string   `json:"from"`
	To    string   `json:"to"`
	Fn    string   `json:"fn"`
	Args  []string `json:"args,omitempty"`
	Value string   `json:"value,omitempty"`
}

func (p SendPayload) Kind() StepKind { return StepSend }
func (p SendPayload) Summary() string {
	return fmt.Sprintf("%s → %s.%s", p.From, p.To, p.Fn)
}

// Incomplete reports whether any of from/to/fn is missing
func (p SendPayload) Incomplete() bool {
	return p.From == "" || p.To == "" || p.Fn == ""
}

type CallPayload struct {
	From   string   `json:"from,omitempty"`
	To     string   `json:"to"`
	Fn     string   `json:"fn"`
	Args   []string `json:"args,omitempty"`
	Expect string   `json:"expect,omitempty"`
	SaveAs string   `json:"saveAs,omitempty"`
}

func (p CallPayload) Kind() StepKind { return StepCall }
func (p CallPayload) Summary() string {
	s := fmt.Sprintf("%s.%s", p.To, p.Fn)
	if p.Expect != "" {
		s += " expect " + p.Expect
	}
	return s
}

// BlocksPayload serves both wait and mine steps
type BlocksPayload struct {
	StepKind StepKind `json:"kind"`
	Blocks   uint64   `json:"blocks"`
}

func (p BlocksPayload) Kind() StepKind  { return p.StepKind }
func (p BlocksPayload) Summary() string { return fmt.Sprintf("%d block(s)", p.Blocks) }

type TimeTravelPayload struct {
	Seconds uint64 `json:"seconds"`
}

func (p TimeTravelPayload) Kind() StepKind  { return StepTimeTravel }
func (p TimeTravelPayload) Summary() string { return fmt.Sprintf("+%ds", p.Seconds) }

type SnapshotPayload struct {
	Name string `json:"name,omitempty"`
}

func (p SnapshotPayload) Kind() StepKind { return StepSnapshot }
func (p SnapshotPayload) Summary() string {
	if p.Name == "" {
		return "(auto)"
	}
	return p.Name
}

type RevertPayload struct {
	Name string `json:"name"`
}

func (p RevertPayload) Kind() StepKind  { return StepRevert }
func (p RevertPayload) Summary() string { return p.Name }

type AssertPayload struct {
	Value  string `json:"value"`
	Expect string `json:"expect"`
}

func (p AssertPayload) Kind() StepKind  { return StepAssert }
func (p AssertPayload) Summary() string { return fmt.Sprintf("%s %s", p.Value, p.Expect) }

type DeployPayload struct {
	Contract string   `json:"contract"`
	From     string   `json:"from,omitempty"`
	Bytecode string   `json:"bytecode,omitempty"`
	Args     []string `json:"args,omitempty"`
	Value    string   `json:"value,omitempty"`
}

func (p DeployPayload) Kind() StepKind { return StepDeploy }
func (p DeployPayload) Summary() string {
	if p.From != "" {
		return fmt.Sprintf("%s by %s", p.Contract, p.From)
	}
	return p.Contract
}

type SetBalancePayload struct {
	Address string `json:"address"`
	Balance string `json:"balance"`
}

func (p SetBalancePayload) Kind() StepKind  { return StepSetBalance }
func (p SetBalancePayload) Summary() string { return fmt.Sprintf("%s = %s", p.Address, p.Balance) }

type SetStoragePayload struct {
	Address string `json:"address"`
	Slot    string `json:"slot"`
	Value   string `json:"value"`
}

func (p SetStoragePayload) Kind() StepKind { return StepSetStorage }
func (p SetStoragePayload) Summary() string {
	return fmt.Sprintf("%s[%s] = %s", p.Address, p.Slot, p.Value)
}

type LabelPayload struct {
	Text string `json:"text"`
}

func (p LabelPayload) Kind() StepKind  { return StepLabel }
func (p LabelPayload) Summary() string { return p.Text }

// ActionPayload keeps the raw body; the executor picks the concrete kind.
type ActionPayload struct {
	Fields Fields `json:"fields"`
}

func (p ActionPayload) Kind() StepKind { return StepAction }
func (p ActionPayload) Summary() string {
	if t := p.Fields.String("type", "value"); t != "" {
		return t
	}
	return "action"
}

// DecodePayload builds the typed payload for kind from a step body.
func DecodePayload(kind StepKind, fields Fields) (StepPayload, error) {
	switch kind {
	case StepSend:
		return SendPayload{
			From:  fields.String("from"),
			To:    fields.String("to"),
			Fn:    fields.String("fn", "function", "method"),
			Args:  argList(fields),
			Value: fields.String("value", "amount"),
		}, nil
	case StepCall:
		return CallPayload{
			From:   fields.String("from"),
			To:     fields.String("to"),
			Fn:     fields.String("fn", "function", "method"),
			Args:   argList(fields),
			Expect: fields.String("expect"),
			SaveAs: fields.String("save_as", "as"),
		}, nil
	case StepWait, StepMine:
		blocks := uint64(1)
		if v, ok := fields.Get("blocks", "value"); ok && v != nil {
			n, err := ParseUint(v)
			if err != nil {
				return nil, fmt.Errorf("blocks: %w", err)
			}
			blocks = n
		}
		return BlocksPayload{StepKind: kind, Blocks: blocks}, nil
	case StepTimeTravel:
		v, ok := fields.Get("seconds", "time", "duration", "value")
		if !ok || v == nil {
			return nil, fmt.Errorf("time_travel requires 'seconds'")
		}
		n, err := ParseUint(v)
		if err != nil {
			return nil, fmt.Errorf("seconds: %w", err)
		}
		return TimeTravelPayload{Seconds: n}, nil
	case StepSnapshot:
		return SnapshotPayload{Name: fields.String("name", "value")}, nil
	case StepRevert:
		return RevertPayload{Name: fields.String("name", "snapshot", "value")}, nil
	case StepAssert:
		return AssertPayload{
			Value:  fields.String("value", "actual"),
			Expect: fields.String("expect", "expected"),
		}, nil
	case StepDeploy:
		return DeployPayload{
			Contract: fields.String("contract", "name"),
			From:     fields.String("from"),
			Bytecode: fields.String("bytecode"),
			Args:     argList(fields),
			Value:    fields.String("value"),
		}, nil
	case StepSetBalance:
		return SetBalancePayload{
			Address: fields.String("address", "account"),
			Balance: fields.String("balance", "value"),
		}, nil
	case StepSetStorage:
		return SetStoragePayload{
			Address: fields.String("address", "contract"),
			Slot:    fields.String("slot"),
			Value:   fields.String("value"),
		}, nil
	case StepLabel:
		return LabelPayload{Text: fields.String("text", "value", "message")}, nil
	case StepAction:
		return ActionPayload{Fields: fields}, nil
	}
	return nil, &UnsupportedStepError{Kind: string(kind)}
}

func argList(fields Fields) []string {
	v, ok := fields.Get("args", "arguments")
	if !ok || v == nil {
		return nil
	}
	if list, ok := v.([]any); ok {
		args := make([]string, len(list))
		for i, item := range list {
			args[i] = FormatValue(item)
		}
		return args
	}
	return []string{FormatValue(v)}
}

// ParseUint accepts YAML integers as well as decimal or 0x-prefixed strings.
func ParseUint(v any) (uint64, error) {
	switch n := v.(type) {
	case int:
		if n < 0 {
			return 0, fmt.Errorf("negative value %d", n)
		}
		return uint64(n), nil
	case int64:
		if n < 0 {
			return 0, fmt.Errorf("negative value %d", n)
		}
		return uint64(n), nil
	case uint64:
		return n, nil
	case float64:
		if n < 0 || n != math.Trunc(n) {
			return 0, fmt.Errorf("not a whole number: %v", n)
		}
		return uint64(n), nil
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return 0, fmt.Errorf("empty value")
		}
		b, err := ParseBigInt(s)
		if err != nil {
			return 0, err
		}
		if b.Sign() < 0 || !b.IsUint64() {
			return 0, fmt.Errorf("value %s out of range", s)
		}
		return b.Uint64(), nil
	}
	return 0, fmt.Errorf("unsupported value %v (%T)", v, v)
}

// ParseBigInt parses a decimal or 0x-prefixed integer of arbitrary size.
// Leading zeros are decimal; octal, binary and underscore forms are rejected.
func ParseBigInt(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	sign, digits := "", s
	if strings.HasPrefix(digits, "-") || strings.HasPrefix(digits, "+") {
		sign, digits = digits[:1], digits[1:]
	}
	base := 10
	if len(digits) > 2 && digits[0] == '0' && (digits[1] == 'x' || digits[1] == 'X') {
		digits, base = digits[2:], 16
	}
	if digits == "" || strings.ContainsAny(digits, "+-") {
		return nil, fmt.Errorf("not an integer: %q", s)
	}
	n, ok := new(big.Int).SetString(sign+digits, base)
	if !ok {
		return nil, fmt.Errorf("not an integer: %q", s)
	}
	return n, nil
}
