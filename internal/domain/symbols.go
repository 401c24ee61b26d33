package domain

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// RoleBinding is a role after preparation
type RoleBinding struct {
	Address    string
	PrivateKey string
}

// SymbolTable holds the names bound during one execution. It is owned by a
// single run and is not safe for concurrent use.
type SymbolTable struct {
	roles     map[string]RoleBinding
	contracts map[string]string
	snapshots map[string]string
	snapOrder []string
	vars      map[string]string
	pool      *AccountPool
}

// NewSymbolTable seeds a table with the definition's static contracts.
func NewSymbolTable(contracts map[string]string, pool *AccountPool) *SymbolTable {
	t := &SymbolTable{
		roles:     make(map[string]RoleBinding),
		contracts: make(map[string]string, len(contracts)),
		snapshots: make(map[string]string),
		vars:      make(map[string]string),
		pool:      pool,
	}
	for name, addr := range contracts {
		t.contracts[name] = addr
	}
	return t
}

func (t *SymbolTable) Pool() *AccountPool { return t.pool }

func (t *SymbolTable) BindRole(name string, binding RoleBinding) {
	t.roles[name] = binding
}

func (t *SymbolTable) Role(name string) (RoleBinding, bool) {
	r, ok := t.roles[name]
	return r, ok
}

func (t *SymbolTable) BindContract(name, address string) {
	t.contracts[name] = address
}

func (t *SymbolTable) Contract(name string) (string, bool) {
	a, ok := t.contracts[name]
	return a, ok
}

// BindSnapshot records a checkpoint id. Rebinding a name replaces its id.
func (t *SymbolTable) BindSnapshot(name, id string) {
	if _, exists := t.snapshots[name]; !exists {
		t.snapOrder = append(t.snapOrder, name)
	}
	t.snapshots[name] = id
}

func (t *SymbolTable) Snapshot(name string) (string, bool) {
	id, ok := t.snapshots[name]
	return id, ok
}

// SnapshotCount is the number of distinct snapshot names bound so far
func (t *SymbolTable) SnapshotCount() int {
	return len(t.snapOrder)
}

func (t *SymbolTable) BindVar(name, value string) {
	t.vars[name] = value
}

func (t *SymbolTable) Var(name string) (string, bool) {
	v, ok := t.vars[name]
	return v, ok
}

// ResolveSymbol resolves a "$name" reference through variables, contracts,
// roles and finally the account pool.
func (t *SymbolTable) ResolveSymbol(symbol string) (string, error) {
	name := strings.TrimPrefix(strings.TrimSpace(symbol), "$")
	if v, ok := t.vars[name]; ok {
		return v, nil
	}
	if a, ok := t.contracts[name]; ok {
		return a, nil
	}
	if r, ok := t.roles[name]; ok {
		if strings.HasPrefix(r.Address, "$") {
			return "", &UnresolvedSymbolError{Kind: "role", Name: name}
		}
		return r.Address, nil
	}
	if acc, ok := t.pool.Lookup(name); ok {
		return acc.Address.Hex(), nil
	}
	return "", &UnresolvedSymbolError{Kind: "symbol", Name: symbol}
}

// ResolveSender resolves a transaction sender: role name, "$" symbol or a
// literal address.
func (t *SymbolTable) ResolveSender(ref string) (common.Address, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return common.Address{}, &UnresolvedSymbolError{Kind: "sender", Name: ref}
	}
	if r, ok := t.roles[ref]; ok {
		if !IsHexAddress(r.Address) {
			return common.Address{}, &UnresolvedSymbolError{Kind: "role", Name: ref}
		}
		return common.HexToAddress(r.Address), nil
	}
	return t.resolveAddress("sender", ref)
}

// ResolveTarget resolves a call or transaction target: contract name, role
// name, "$" symbol or a literal address.
func (t *SymbolTable) ResolveTarget(ref string) (common.Address, error) {
	ref = strings.TrimSpace(ref)
	if a, ok := t.contracts[ref]; ok {
		if !IsHexAddress(a) {
			return common.Address{}, &UnresolvedSymbolError{Kind: "contract", Name: ref}
		}
		return common.HexToAddress(a), nil
	}
	if r, ok := t.roles[ref]; ok && IsHexAddress(r.Address) {
		return common.HexToAddress(r.Address), nil
	}
	return t.resolveAddress("contract", ref)
}

func (t *SymbolTable) resolveAddress(kind, ref string) (common.Address, error) {
	if strings.HasPrefix(ref, "$") {
		v, err := t.ResolveSymbol(ref)
		if err != nil {
			return common.Address{}, err
		}
		if !IsHexAddress(v) {
			return common.Address{}, fmt.Errorf("%w: %s resolved to %q", ErrInvalidAddress, ref, v)
		}
		return common.HexToAddress(v), nil
	}
	if IsHexAddress(ref) {
		return common.HexToAddress(ref), nil
	}
	return common.Address{}, &UnresolvedSymbolError{Kind: kind, Name: ref}
}

// ResolveArgs replaces "$" references in call arguments. Other values pass
// through unchanged.
func (t *SymbolTable) ResolveArgs(args []string) ([]string, error) {
	out := make([]string, len(args))
	for i, arg := range args {
		if strings.HasPrefix(strings.TrimSpace(arg), "$") && !strings.HasPrefix(arg, "$artifacts:") {
			v, err := t.ResolveSymbol(arg)
			if err != nil {
				return nil, err
			}
			out[i] = v
			continue
		}
		out[i] = arg
	}
	return out, nil
}

// Artifacts snapshots the current tables for an ExecutionResult
func (t *SymbolTable) Artifacts(scenario string) ExecutionArtifacts {
	a := ExecutionArtifacts{
		ScenarioName: scenario,
		Roles:        make(map[string]string, len(t.roles)),
		Contracts:    make(map[string]string, len(t.contracts)),
		Snapshots:    make([]string, len(t.snapOrder)),
		Vars:         make(map[string]string, len(t.vars)),
	}
	for name, r := range t.roles {
		a.Roles[name] = r.Address
	}
	for name, addr := range t.contracts {
		a.Contracts[name] = addr
	}
	copy(a.Snapshots, t.snapOrder)
	for name, v := range t.vars {
		a.Vars[name] = v
	}
	return a
}

// RoleNames returns the bound role names sorted
func (t *SymbolTable) RoleNames() []string {
	names := make([]string, 0, len(t.roles))
	for name := range t.roles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
