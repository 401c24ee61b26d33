package domain

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Account is a development account available to scenarios
type Account struct {
	Address    common.Address `json:"address"`
	PrivateKey string         `json:"-"`
}

// AccountSource tells where the pool came from
type AccountSource string

const (
	AccountsFromNode     AccountSource = "node"
	AccountsFromFallback AccountSource = "fallback"
)

// AccountPool is the indexed list of accounts behind $acc0, $acc1, ...
type AccountPool struct {
	Source   AccountSource
	Accounts []Account
}

// Lookup resolves "$accN" or "accN" to the N-th account.
func (p *AccountPool) Lookup(symbol string) (Account, bool) {
	if p == nil {
		return Account{}, false
	}
	name := strings.TrimPrefix(strings.TrimSpace(symbol), "$")
	digits, ok := strings.CutPrefix(name, "acc")
	if !ok || digits == "" {
		return Account{}, false
	}
	idx, err := strconv.Atoi(digits)
	if err != nil || idx < 0 || idx >= len(p.Accounts) {
		return Account{}, false
	}
	return p.Accounts[idx], true
}

// Keys returns the known private keys by address
func (p *AccountPool) Keys() map[common.Address]string {
	keys := make(map[common.Address]string)
	if p == nil {
		return keys
	}
	for _, a := range p.Accounts {
		if a.PrivateKey != "" {
			keys[a.Address] = a.PrivateKey
		}
	}
	return keys
}

// WellKnownAccounts are the deterministic accounts of a default anvil node.
var WellKnownAccounts = []Account{
	{common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"), "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"},
	{common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8"), "0x59c6995e998f97a5a0044966f0945389dc9e86dae88c7a8412f4603b6b78690d"},
	{common.HexToAddress("0x3C44CdDdB6a900fa2b585dd299e03d12FA4293BC"), "0x5de4111afa1a4b94908f83103eb1f1706367c2e68ca870fc3fb9a804cdab365a"},
	{common.HexToAddress("0x90F79bf6EB2c4f870365E785982E1f101E93b906"), "0x7c852118294e51e653712a81e05800f419141751be58f605c371e15141b007a6"},
	{common.HexToAddress("0x15d34AAf54267DB7D7c367839AAf71A00a2C6A65"), "0x47e179ec197488593b187f80a00eb0da91f1b9d0b13f8733639f19c30a34926a"},
	{common.HexToAddress("0x9965507D1a55bcC2695C58ba16FB37d819B0A4dc"), "0x8b3a350cf5c34c9194ca85829a2df0ec3153be0318b5e2d3348e872092edffba"},
	{common.HexToAddress("0x976EA74026E726554dB657fA54763abd0C3a0aa9"), "0x92db14e403b83dfe3df233f83dfa3a0d7096f21ca9b0d6d6b8d88b2b4ec1564e"},
	{common.HexToAddress("0x14dC79964da2C08b23698B3D3cc7Ca32193d9955"), "0x4bbbf85ce3377467afe5d46f804f221813b2bb87f24d81f60f1fcdbf7cbf4356"},
	{common.HexToAddress("0x23618e81E3f5cdF7f54C3d65f7FBc0aBf5B21E8f"), "0xdbda1821b80551c9d65939329250298aa3472ba22feea921c0cf5d620ea67b97"},
	{common.HexToAddress("0xa0Ee7A142d267C1f36714E4a8F75612F20a79720"), "0x2a871d0798f97d79848a013d4936a73bf4cc922c825d33c1cf7073dff6d409c6"},
}

// FallbackAccountPool returns the well-known accounts as a pool
func FallbackAccountPool() *AccountPool {
	accounts := make([]Account, len(WellKnownAccounts))
	copy(accounts, WellKnownAccounts)
	return &AccountPool{Source: AccountsFromFallback, Accounts: accounts}
}

// IsHexAddress reports whether s is a 20-byte hex address
func IsHexAddress(s string) bool {
	return common.IsHexAddress(strings.TrimSpace(s)) && strings.HasPrefix(strings.TrimSpace(s), "0x")
}

// AddressFromPrivateKey derives the account address of a hex private key
func AddressFromPrivateKey(key string) (common.Address, error) {
	pk, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(key), "0x"))
	if err != nil {
		return common.Address{}, fmt.Errorf("invalid private key: %w", err)
	}
	return crypto.PubkeyToAddress(pk.PublicKey), nil
}
