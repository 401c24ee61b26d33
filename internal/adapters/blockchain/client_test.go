package blockchain

import (
	"context"
	"encoding/json"
	"log/slog"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/catapult/internal/domain"
	"github.com/trebuchet-org/catapult/internal/usecase"
)

type rpcRequest struct {
	Jsonrpc string            `json:"jsonrpc"`
	Method  string            `json:"method"`
	Params  []json.RawMessage `json:"params"`
	ID      json.RawMessage   `json:"id"`
}

type rpcErrorBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	Jsonrpc string          `json:"jsonrpc"`
	Result  any             `json:"result"`
	Error   *rpcErrorBody   `json:"error,omitempty"`
	ID      json.RawMessage `json:"id"`
}

// mockNode answers JSON-RPC requests from a method table and records calls
type mockNode struct {
	mu       sync.Mutex
	calls    []rpcRequest
	handlers map[string]func(req rpcRequest) (any, *rpcErrorBody)
}

func newMockNode(t *testing.T) (*mockNode, *httptest.Server) {
	t.Helper()
	m := &mockNode{handlers: map[string]func(rpcRequest) (any, *rpcErrorBody){}}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("failed to decode RPC request: %v", err)
			return
		}
		m.mu.Lock()
		m.calls = append(m.calls, req)
		handler, ok := m.handlers[req.Method]
		m.mu.Unlock()

		resp := rpcResponse{Jsonrpc: "2.0", ID: req.ID}
		if ok {
			resp.Result, resp.Error = handler(req)
		} else {
			resp.Error = &rpcErrorBody{Code: -32601, Message: "method not found: " + req.Method}
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			t.Errorf("failed to encode RPC response: %v", err)
		}
	}))
	t.Cleanup(server.Close)
	return m, server
}

func (m *mockNode) on(method string, result any) {
	m.handlers[method] = func(rpcRequest) (any, *rpcErrorBody) { return result, nil }
}

func (m *mockNode) fail(method, message string) {
	m.handlers[method] = func(rpcRequest) (any, *rpcErrorBody) {
		return nil, &rpcErrorBody{Code: -32000, Message: message}
	}
}

func (m *mockNode) params(method string) [][]json.RawMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out [][]json.RawMessage
	for _, c := range m.calls {
		if c.Method == method {
			out = append(out, c.Params)
		}
	}
	return out
}

func param[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v))
	return v
}

func dial(t *testing.T, server *httptest.Server) usecase.ChainClient {
	t.Helper()
	client, err := NewDialer(slog.New(slog.DiscardHandler)).Dial(context.Background(), server.URL)
	require.NoError(t, err)
	t.Cleanup(client.Close)
	return client
}

const (
	txHash   = "0x5c504ed432cb51138bcf09aa5e8a410dd4a1e204ef84bfed1be16dfba1b22060"
	deployed = "0x5FbDB2315678afecb367f032d93F642f64180aa3"
	acc0     = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
	acc0Key  = "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
)

func receiptJSON(status string, contract any) map[string]any {
	return map[string]any{
		"transactionHash": txHash,
		"status":          status,
		"gasUsed":         "0x5208",
		"blockNumber":     "0x2",
		"contractAddress": contract,
	}
}

func TestClient_BlockNumber(t *testing.T) {
	node, server := newMockNode(t)
	node.on("eth_blockNumber", "0x10")

	n, err := dial(t, server).BlockNumber(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(16), n)
}

func TestClient_BlockNumber_Unreachable(t *testing.T) {
	_, server := newMockNode(t)
	client := dial(t, server)
	server.Close()

	_, err := client.BlockNumber(context.Background())
	require.Error(t, err)
	var rpcErr *domain.RPCError
	require.ErrorAs(t, err, &rpcErr)
	assert.Equal(t, "eth_blockNumber", rpcErr.Method)
}

func TestClient_Accounts(t *testing.T) {
	node, server := newMockNode(t)
	node.on("eth_accounts", []string{acc0})

	accounts, err := dial(t, server).Accounts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []common.Address{common.HexToAddress(acc0)}, accounts)
}

func TestClient_SendTransaction_Unlocked(t *testing.T) {
	node, server := newMockNode(t)
	node.on("eth_sendTransaction", txHash)
	node.on("eth_getTransactionReceipt", receiptJSON("0x1", deployed))

	client := dial(t, server)
	receipt, err := client.SendTransaction(context.Background(), domain.TxRequest{
		From:  common.HexToAddress(acc0),
		Data:  []byte{0x60, 0x80},
		Value: big.NewInt(5),
		Gas:   100000,
	})
	require.NoError(t, err)

	assert.True(t, receipt.Mined)
	assert.True(t, receipt.Succeeded())
	assert.Equal(t, uint64(21000), receipt.GasUsed)
	assert.Equal(t, uint64(2), receipt.BlockNumber)
	require.NotNil(t, receipt.ContractAddress)
	assert.Equal(t, common.HexToAddress(deployed), *receipt.ContractAddress)

	sent := node.params("eth_sendTransaction")
	require.Len(t, sent, 1)
	arg := param[map[string]string](t, sent[0][0])
	assert.Equal(t, "0x6080", arg["data"])
	assert.Equal(t, "0x5", arg["value"])
	assert.Equal(t, "0x186a0", arg["gas"])
	_, hasTo := arg["to"]
	assert.False(t, hasTo)
}

func TestClient_SendTransaction_NotMined(t *testing.T) {
	node, server := newMockNode(t)
	node.on("eth_sendTransaction", txHash)
	node.on("eth_getTransactionReceipt", nil)

	receipt, err := dial(t, server).SendTransaction(context.Background(), domain.TxRequest{From: common.HexToAddress(acc0)})
	require.NoError(t, err)
	assert.False(t, receipt.Mined)
	assert.Equal(t, common.HexToHash(txHash), receipt.TxHash)
	assert.Nil(t, receipt.ContractAddress)
}

func TestClient_SendTransaction_Rejected(t *testing.T) {
	node, server := newMockNode(t)
	node.fail("eth_sendTransaction", "execution reverted")

	_, err := dial(t, server).SendTransaction(context.Background(), domain.TxRequest{From: common.HexToAddress(acc0)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "eth_sendTransaction failed")
	assert.Contains(t, err.Error(), "execution reverted")
}

func TestClient_SendTransaction_Signed(t *testing.T) {
	node, server := newMockNode(t)
	node.on("eth_chainId", "0x7a69")
	node.on("eth_getTransactionCount", "0x3")
	node.on("eth_gasPrice", "0x3b9aca00")
	node.on("eth_estimateGas", "0x5208")
	node.on("eth_sendRawTransaction", txHash)
	node.on("eth_getTransactionReceipt", receiptJSON("0x1", nil))

	to := common.HexToAddress(deployed)
	receipt, err := dial(t, server).SendTransaction(context.Background(), domain.TxRequest{
		From:       common.HexToAddress(acc0),
		To:         &to,
		Data:       []byte{0xd0, 0x9d, 0xe0, 0x8a},
		PrivateKey: acc0Key,
	})
	require.NoError(t, err)
	assert.True(t, receipt.Succeeded())
	assert.Nil(t, receipt.ContractAddress)
	assert.Len(t, node.params("eth_sendRawTransaction"), 1)
	assert.Empty(t, node.params("eth_sendTransaction"))
}

func TestClient_SendTransaction_KeyMismatch(t *testing.T) {
	_, server := newMockNode(t)

	_, err := dial(t, server).SendTransaction(context.Background(), domain.TxRequest{
		From:       common.HexToAddress(deployed),
		PrivateKey: acc0Key,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not sender")
}

func TestClient_TransactionReceipt_Reverted(t *testing.T) {
	node, server := newMockNode(t)
	node.on("eth_getTransactionReceipt", receiptJSON("0x0", nil))

	receipt, err := dial(t, server).TransactionReceipt(context.Background(), common.HexToHash(txHash))
	require.NoError(t, err)
	assert.True(t, receipt.Mined)
	assert.False(t, receipt.Succeeded())
}

func TestClient_Call(t *testing.T) {
	node, server := newMockNode(t)
	node.on("eth_call", "0x0000000000000000000000000000000000000000000000000000000000000001")

	out, err := dial(t, server).Call(context.Background(), domain.CallRequest{
		To:   common.HexToAddress(deployed),
		Data: []byte{0x83, 0x81, 0xf5, 0x8a},
	})
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(1), new(big.Int).SetBytes(out))

	calls := node.params("eth_call")
	require.Len(t, calls, 1)
	assert.Equal(t, "latest", param[string](t, calls[0][1]))
}

func TestClient_Snapshot(t *testing.T) {
	node, server := newMockNode(t)
	node.on("evm_snapshot", "0x1")

	id, err := dial(t, server).Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "0x1", id)
}

func TestClient_Snapshot_RPCError(t *testing.T) {
	node, server := newMockNode(t)
	node.fail("evm_snapshot", "snapshot failed")

	_, err := dial(t, server).Snapshot(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "snapshot failed")
}

func TestClient_Revert(t *testing.T) {
	node, server := newMockNode(t)
	node.on("evm_revert", true)

	require.NoError(t, dial(t, server).Revert(context.Background(), "0x1"))
	calls := node.params("evm_revert")
	require.Len(t, calls, 1)
	assert.Equal(t, "0x1", param[string](t, calls[0][0]))
}

func TestClient_Revert_ReturnsFalse(t *testing.T) {
	node, server := newMockNode(t)
	node.on("evm_revert", false)

	err := dial(t, server).Revert(context.Background(), "0xbad")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "evm_revert returned false")
}

func TestClient_DevMethods(t *testing.T) {
	node, server := newMockNode(t)
	node.on("anvil_mine", nil)
	node.on("evm_increaseTime", 3600)
	node.on("anvil_setBalance", nil)
	node.on("anvil_setStorageAt", true)
	client := dial(t, server)
	ctx := context.Background()

	require.NoError(t, client.Mine(ctx, 5))
	assert.Equal(t, "0x5", param[string](t, node.params("anvil_mine")[0][0]))

	require.NoError(t, client.IncreaseTime(ctx, 3600))
	assert.Equal(t, uint64(3600), param[uint64](t, node.params("evm_increaseTime")[0][0]))

	require.NoError(t, client.SetBalance(ctx, acc0, big.NewInt(1e18)))
	balance := node.params("anvil_setBalance")[0]
	assert.Equal(t, "0xde0b6b3a7640000", param[string](t, balance[1]))

	require.NoError(t, client.SetStorageAt(ctx, deployed, "0", "42"))
	storage := node.params("anvil_setStorageAt")[0]
	assert.Equal(t, "0x0000000000000000000000000000000000000000000000000000000000000000", param[string](t, storage[1]))
	assert.Equal(t, "0x000000000000000000000000000000000000000000000000000000000000002a", param[string](t, storage[2]))
}

func TestClient_InvalidArguments(t *testing.T) {
	_, server := newMockNode(t)
	client := dial(t, server)
	ctx := context.Background()

	err := client.SetBalance(ctx, "alice", big.NewInt(1))
	assert.ErrorIs(t, err, domain.ErrInvalidAddress)

	err = client.SetStorageAt(ctx, deployed, "slot", "1")
	assert.Error(t, err)

	err = client.SetStorageAt(ctx, deployed, "0", "-1")
	assert.Error(t, err)

	err = client.SetStorageAt(ctx, deployed, "0b1", "1")
	assert.Error(t, err)
}

func TestWord(t *testing.T) {
	got, err := word("010")
	require.NoError(t, err)
	assert.Equal(t, "0x000000000000000000000000000000000000000000000000000000000000000a", got)

	got, err = word("0x10")
	require.NoError(t, err)
	assert.Equal(t, "0x0000000000000000000000000000000000000000000000000000000000000010", got)

	_, err = word("0o7")
	assert.Error(t, err)
}
