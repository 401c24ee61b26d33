package blockchain

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/trebuchet-org/catapult/internal/domain"
	"github.com/trebuchet-org/catapult/internal/usecase"
)

// Dialer opens JSON-RPC clients to development nodes
type Dialer struct {
	log *slog.Logger
}

// NewDialer creates a new dialer
func NewDialer(log *slog.Logger) *Dialer {
	return &Dialer{log: log.With("component", "ChainClient")}
}

// Dial connects to rpcURL. HTTP endpoints are not contacted until the first call.
func (d *Dialer) Dial(ctx context.Context, rpcURL string) (usecase.ChainClient, error) {
	rc, err := rpc.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RPC: %w", err)
	}
	return &Client{
		rpc: rc,
		eth: ethclient.NewClient(rc),
		log: d.log.With("rpcUrl", rpcURL),
	}, nil
}

// Client implements usecase.ChainClient on top of go-ethereum's rpc and
// ethclient packages
type Client struct {
	rpc *rpc.Client
	eth *ethclient.Client
	log *slog.Logger
}

var (
	_ usecase.ChainDialer = (*Dialer)(nil)
	_ usecase.ChainClient = (*Client)(nil)
)

func rpcError(method string, err error) error {
	return &domain.RPCError{Method: method, Err: err}
}

// BlockNumber returns the latest block number
func (c *Client) BlockNumber(ctx context.Context) (uint64, error) {
	n, err := c.eth.BlockNumber(ctx)
	if err != nil {
		return 0, rpcError("eth_blockNumber", err)
	}
	return n, nil
}

// Accounts returns the node's unlocked accounts
func (c *Client) Accounts(ctx context.Context) ([]common.Address, error) {
	var accounts []common.Address
	if err := c.rpc.CallContext(ctx, &accounts, "eth_accounts"); err != nil {
		return nil, rpcError("eth_accounts", err)
	}
	return accounts, nil
}

// Balance returns the latest balance of address
func (c *Client) Balance(ctx context.Context, address common.Address) (*big.Int, error) {
	balance, err := c.eth.BalanceAt(ctx, address, nil)
	if err != nil {
		return nil, rpcError("eth_getBalance", err)
	}
	return balance, nil
}

// SendTransaction submits tx and fetches its receipt once. Requests carrying a
// private key are signed locally, others go through eth_sendTransaction.
func (c *Client) SendTransaction(ctx context.Context, tx domain.TxRequest) (*domain.TxReceipt, error) {
	var (
		hash common.Hash
		err  error
	)
	if tx.PrivateKey != "" {
		hash, err = c.sendSigned(ctx, tx)
	} else {
		hash, err = c.sendUnlocked(ctx, tx)
	}
	if err != nil {
		return nil, err
	}
	c.log.Debug("transaction sent", "tx", hash, "from", tx.From, "create", tx.IsCreate())
	return c.TransactionReceipt(ctx, hash)
}

func (c *Client) sendUnlocked(ctx context.Context, tx domain.TxRequest) (common.Hash, error) {
	arg := map[string]any{
		"from": tx.From,
		"data": hexutil.Bytes(tx.Data),
	}
	if tx.To != nil {
		arg["to"] = tx.To
	}
	if tx.Value != nil {
		arg["value"] = (*hexutil.Big)(tx.Value)
	}
	if tx.Gas > 0 {
		arg["gas"] = hexutil.Uint64(tx.Gas)
	}
	if tx.GasPrice != nil {
		arg["gasPrice"] = (*hexutil.Big)(tx.GasPrice)
	}

	var hash common.Hash
	if err := c.rpc.CallContext(ctx, &hash, "eth_sendTransaction", arg); err != nil {
		return common.Hash{}, rpcError("eth_sendTransaction", err)
	}
	return hash, nil
}

func (c *Client) sendSigned(ctx context.Context, tx domain.TxRequest) (common.Hash, error) {
	key, err := parseKey(tx.PrivateKey)
	if err != nil {
		return common.Hash{}, err
	}
	if signer := crypto.PubkeyToAddress(key.PublicKey); signer != tx.From {
		return common.Hash{}, fmt.Errorf("private key belongs to %s, not sender %s", signer.Hex(), tx.From.Hex())
	}

	chainID, err := c.eth.ChainID(ctx)
	if err != nil {
		return common.Hash{}, rpcError("eth_chainId", err)
	}
	nonce, err := c.eth.PendingNonceAt(ctx, tx.From)
	if err != nil {
		return common.Hash{}, rpcError("eth_getTransactionCount", err)
	}
	gasPrice := tx.GasPrice
	if gasPrice == nil {
		if gasPrice, err = c.eth.SuggestGasPrice(ctx); err != nil {
			return common.Hash{}, rpcError("eth_gasPrice", err)
		}
	}
	value := tx.Value
	if value == nil {
		value = new(big.Int)
	}
	gas := tx.Gas
	if gas == 0 {
		gas, err = c.eth.EstimateGas(ctx, ethereum.CallMsg{From: tx.From, To: tx.To, Data: tx.Data, Value: value})
		if err != nil {
			return common.Hash{}, rpcError("eth_estimateGas", err)
		}
	}

	signed, err := types.SignTx(types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		GasPrice: gasPrice,
		Gas:      gas,
		To:       tx.To,
		Value:    value,
		Data:     tx.Data,
	}), types.LatestSignerForChainID(chainID), key)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to sign transaction: %w", err)
	}
	if err := c.eth.SendTransaction(ctx, signed); err != nil {
		return common.Hash{}, rpcError("eth_sendRawTransaction", err)
	}
	return signed.Hash(), nil
}

func parseKey(hexKey string) (*ecdsa.PrivateKey, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(hexKey), "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}
	return key, nil
}

// rpcReceipt holds the receipt fields the executor needs. It is decoded
// directly so that nodes returning partial receipts still work.
type rpcReceipt struct {
	TxHash          common.Hash     `json:"transactionHash"`
	Status          hexutil.Uint64  `json:"status"`
	GasUsed         hexutil.Uint64  `json:"gasUsed"`
	BlockNumber     *hexutil.Big    `json:"blockNumber"`
	ContractAddress *common.Address `json:"contractAddress"`
}

// TransactionReceipt looks up a receipt. A missing receipt is not an error;
// the returned receipt has Mined set to false.
func (c *Client) TransactionReceipt(ctx context.Context, hash common.Hash) (*domain.TxReceipt, error) {
	var raw *rpcReceipt
	err := c.rpc.CallContext(ctx, &raw, "eth_getTransactionReceipt", hash)
	if err != nil && !errors.Is(err, ethereum.NotFound) {
		return nil, rpcError("eth_getTransactionReceipt", err)
	}
	if raw == nil {
		return &domain.TxReceipt{TxHash: hash}, nil
	}

	receipt := &domain.TxReceipt{
		TxHash:  hash,
		Mined:   true,
		Status:  uint64(raw.Status),
		GasUsed: uint64(raw.GasUsed),
	}
	if raw.BlockNumber != nil {
		receipt.BlockNumber = raw.BlockNumber.ToInt().Uint64()
	}
	if raw.ContractAddress != nil && *raw.ContractAddress != (common.Address{}) {
		addr := *raw.ContractAddress
		receipt.ContractAddress = &addr
	}
	return receipt, nil
}

// Call runs a read-only eth_call against the latest block
func (c *Client) Call(ctx context.Context, call domain.CallRequest) ([]byte, error) {
	to := call.To
	out, err := c.eth.CallContract(ctx, ethereum.CallMsg{From: call.From, To: &to, Data: call.Data}, nil)
	if err != nil {
		return nil, rpcError("eth_call", err)
	}
	return out, nil
}

// Snapshot takes an evm_snapshot and returns its id
func (c *Client) Snapshot(ctx context.Context) (string, error) {
	var id string
	if err := c.rpc.CallContext(ctx, &id, "evm_snapshot"); err != nil {
		return "", rpcError("evm_snapshot", err)
	}
	return id, nil
}

// Revert restores the chain to snapshot id
func (c *Client) Revert(ctx context.Context, id string) error {
	var ok bool
	if err := c.rpc.CallContext(ctx, &ok, "evm_revert", id); err != nil {
		return rpcError("evm_revert", err)
	}
	if !ok {
		return rpcError("evm_revert", fmt.Errorf("evm_revert returned false for snapshot %s", id))
	}
	return nil
}

// IncreaseTime moves the next block timestamp forward
func (c *Client) IncreaseTime(ctx context.Context, seconds uint64) error {
	if err := c.rpc.CallContext(ctx, nil, "evm_increaseTime", seconds); err != nil {
		return rpcError("evm_increaseTime", err)
	}
	return nil
}

// Mine mines the given number of blocks
func (c *Client) Mine(ctx context.Context, blocks uint64) error {
	if err := c.rpc.CallContext(ctx, nil, "anvil_mine", hexutil.Uint64(blocks)); err != nil {
		return rpcError("anvil_mine", err)
	}
	return nil
}

// SetBalance sets the balance of address in wei
func (c *Client) SetBalance(ctx context.Context, address string, wei *big.Int) error {
	if !domain.IsHexAddress(address) {
		return fmt.Errorf("%w: %q", domain.ErrInvalidAddress, address)
	}
	if wei == nil || wei.Sign() < 0 {
		return fmt.Errorf("invalid balance %v", wei)
	}
	if err := c.rpc.CallContext(ctx, nil, "anvil_setBalance", common.HexToAddress(address), (*hexutil.Big)(wei)); err != nil {
		return rpcError("anvil_setBalance", err)
	}
	return nil
}

// SetStorageAt writes value into slot of address. Slot and value may be
// decimal or hex and are padded to 32 bytes.
func (c *Client) SetStorageAt(ctx context.Context, address, slot, value string) error {
	if !domain.IsHexAddress(address) {
		return fmt.Errorf("%w: %q", domain.ErrInvalidAddress, address)
	}
	slotWord, err := word(slot)
	if err != nil {
		return fmt.Errorf("slot: %w", err)
	}
	valueWord, err := word(value)
	if err != nil {
		return fmt.Errorf("value: %w", err)
	}
	if err := c.rpc.CallContext(ctx, nil, "anvil_setStorageAt", common.HexToAddress(address), slotWord, valueWord); err != nil {
		return rpcError("anvil_setStorageAt", err)
	}
	return nil
}

// word left-pads an integer to a 32-byte hex word
func word(s string) (string, error) {
	n, err := domain.ParseBigInt(s)
	if err != nil {
		return "", err
	}
	if n.Sign() < 0 || n.BitLen() > 256 {
		return "", fmt.Errorf("%s does not fit in 32 bytes", s)
	}
	return common.BigToHash(n).Hex(), nil
}

// Close closes the underlying RPC connection
func (c *Client) Close() {
	c.rpc.Close()
}
