package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const wethAddress = "0x00000000000000000000000000000000000000bb"

func newTestSymbols() *SymbolTable {
	t := NewSymbolTable(map[string]string{"weth": wethAddress}, FallbackAccountPool())
	t.BindRole("user", RoleBinding{Address: WellKnownAccounts[1].Address.Hex()})
	return t
}

func TestSymbolTable_ResolveSymbol(t *testing.T) {
	symbols := newTestSymbols()

	tests := []struct {
		symbol string
		want   string
	}{
		{"$acc2", WellKnownAccounts[2].Address.Hex()},
		{"acc0", WellKnownAccounts[0].Address.Hex()},
		{"$user", WellKnownAccounts[1].Address.Hex()},
		{"$weth", wethAddress},
	}
	for _, tt := range tests {
		t.Run(tt.symbol, func(t *testing.T) {
			got, err := symbols.ResolveSymbol(tt.symbol)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := symbols.ResolveSymbol("$nobody")
	var unresolved *UnresolvedSymbolError
	assert.True(t, errors.As(err, &unresolved))

	_, err = symbols.ResolveSymbol("$acc10")
	assert.Error(t, err)
}

func TestSymbolTable_VariablesShadowContracts(t *testing.T) {
	symbols := newTestSymbols()
	symbols.BindVar("weth", "42")

	got, err := symbols.ResolveSymbol("$weth")
	require.NoError(t, err)
	assert.Equal(t, "42", got)

	// targets still prefer the contract table
	addr, err := symbols.ResolveTarget("weth")
	require.NoError(t, err)
	assert.Equal(t, wethAddress, addr.Hex())
}

func TestSymbolTable_ResolveSenderAndTarget(t *testing.T) {
	symbols := newTestSymbols()

	addr, err := symbols.ResolveSender("user")
	require.NoError(t, err)
	assert.Equal(t, WellKnownAccounts[1].Address, addr)

	addr, err = symbols.ResolveSender("$acc3")
	require.NoError(t, err)
	assert.Equal(t, WellKnownAccounts[3].Address, addr)

	addr, err = symbols.ResolveSender(wethAddress)
	require.NoError(t, err)
	assert.Equal(t, wethAddress, addr.Hex())

	_, err = symbols.ResolveSender("weth")
	var unresolved *UnresolvedSymbolError
	require.True(t, errors.As(err, &unresolved))
	assert.Equal(t, "sender", unresolved.Kind)

	_, err = symbols.ResolveSender("")
	assert.Error(t, err)

	addr, err = symbols.ResolveTarget("user")
	require.NoError(t, err)
	assert.Equal(t, WellKnownAccounts[1].Address, addr)

	symbols.BindVar("notAnAddress", "7")
	_, err = symbols.ResolveTarget("$notAnAddress")
	assert.ErrorIs(t, err, ErrInvalidAddress)
}

func TestSymbolTable_UnboundRole(t *testing.T) {
	symbols := newTestSymbols()
	symbols.BindRole("ghost", RoleBinding{Address: "$acc99"})

	_, err := symbols.ResolveSymbol("$ghost")
	var unresolved *UnresolvedSymbolError
	require.True(t, errors.As(err, &unresolved))
	assert.Equal(t, "role", unresolved.Kind)

	_, err = symbols.ResolveSender("ghost")
	assert.True(t, errors.As(err, &unresolved))
}

func TestSymbolTable_ResolveArgs(t *testing.T) {
	symbols := newTestSymbols()
	args, err := symbols.ResolveArgs([]string{"$user", "5", "$artifacts:Token.address", "plain"})
	require.NoError(t, err)
	assert.Equal(t, []string{WellKnownAccounts[1].Address.Hex(), "5", "$artifacts:Token.address", "plain"}, args)

	_, err = symbols.ResolveArgs([]string{"$missing"})
	assert.Error(t, err)
}

func TestSymbolTable_Snapshots(t *testing.T) {
	symbols := newTestSymbols()
	symbols.BindSnapshot("a", "0x1")
	symbols.BindSnapshot("b", "0x2")
	symbols.BindSnapshot("a", "0x3")

	id, ok := symbols.Snapshot("a")
	assert.True(t, ok)
	assert.Equal(t, "0x3", id)
	assert.Equal(t, 2, symbols.SnapshotCount())

	artifacts := symbols.Artifacts("snap")
	assert.Equal(t, []string{"a", "b"}, artifacts.Snapshots)
	assert.Equal(t, wethAddress, artifacts.Contracts["weth"])
	assert.Equal(t, "snap", artifacts.ScenarioName)
	assert.Equal(t, []string{"user"}, symbols.RoleNames())
}

func TestAccountPool(t *testing.T) {
	pool := FallbackAccountPool()
	assert.Equal(t, AccountsFromFallback, pool.Source)
	assert.Len(t, pool.Keys(), len(WellKnownAccounts))

	for _, acc := range WellKnownAccounts[:3] {
		addr, err := AddressFromPrivateKey(acc.PrivateKey)
		require.NoError(t, err)
		assert.Equal(t, acc.Address, addr)
	}

	_, ok := pool.Lookup("$accX")
	assert.False(t, ok)
	_, ok = (*AccountPool)(nil).Lookup("$acc0")
	assert.False(t, ok)

	assert.True(t, IsHexAddress(wethAddress))
	assert.False(t, IsHexAddress("00000000000000000000000000000000000000bb"))
	assert.False(t, IsHexAddress("0x1234"))
}
