package usecase_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/mock"
	"github.com/trebuchet-org/catapult/internal/domain"
	"github.com/trebuchet-org/catapult/internal/usecase"
)

const counterABI = `[
	{"type":"function","name":"number","inputs":[],"outputs":[{"name":"","type":"uint256"}],"stateMutability":"view"},
	{"type":"function","name":"increment","inputs":[],"outputs":[],"stateMutability":"nonpayable"},
	{"type":"function","name":"setNumber","inputs":[{"name":"newNumber","type":"uint256"}],"outputs":[],"stateMutability":"nonpayable"}
]`

var (
	selectorNumber    = []byte{0x83, 0x81, 0xf5, 0x8a}
	selectorIncrement = []byte{0xd0, 0x9d, 0xe0, 0x8a}
	selectorSetNumber = []byte{0x3f, 0xb5, 0xc1, 0xcb}

	errNodeDown = errors.New("connection refused")
)

// fakeChain emulates a dev node hosting Counter contracts. Every
// transaction uses 21000 gas.
type fakeChain struct {
	mu sync.Mutex

	unreachable       bool
	accounts          []common.Address
	noContractAddress bool
	revertCalls       bool
	pending           bool

	counters  map[common.Address]*big.Int
	snapshots map[string]map[common.Address]*big.Int
	balances  map[common.Address]*big.Int
	storage   map[string]string
	sent      []domain.TxRequest
	mined     uint64
	elapsed   uint64
	reverts   []string
	closed    bool
}

func newFakeChain() *fakeChain {
	accounts := make([]common.Address, 0, len(domain.WellKnownAccounts))
	for _, a := range domain.WellKnownAccounts {
		accounts = append(accounts, a.Address)
	}
	return &fakeChain{
		accounts:  accounts,
		counters:  map[common.Address]*big.Int{},
		snapshots: map[string]map[common.Address]*big.Int{},
		balances:  map[common.Address]*big.Int{},
		storage:   map[string]string{},
	}
}

var _ usecase.ChainClient = (*fakeChain)(nil)

func (c *fakeChain) BlockNumber(context.Context) (uint64, error) {
	if c.unreachable {
		return 0, &domain.RPCError{Method: "eth_blockNumber", Err: errNodeDown}
	}
	return c.mined, nil
}

func (c *fakeChain) Accounts(context.Context) ([]common.Address, error) {
	return c.accounts, nil
}

func (c *fakeChain) Balance(_ context.Context, address common.Address) (*big.Int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if b, ok := c.balances[address]; ok {
		return b, nil
	}
	return big.NewInt(0), nil
}

func (c *fakeChain) SendTransaction(_ context.Context, tx domain.TxRequest) (*domain.TxReceipt, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.sent = append(c.sent, tx)
	receipt := &domain.TxReceipt{
		TxHash:  common.BigToHash(big.NewInt(int64(len(c.sent)))),
		Mined:   true,
		Status:  1,
		GasUsed: 21000,
	}
	if c.pending {
		receipt.Mined, receipt.Status, receipt.GasUsed = false, 0, 0
	}

	if tx.IsCreate() {
		addr := common.BigToAddress(big.NewInt(int64(0xc0de00 + len(c.sent))))
		c.counters[addr] = big.NewInt(0)
		if !c.noContractAddress {
			receipt.ContractAddress = &addr
		}
		return receipt, nil
	}

	counter, ok := c.counters[*tx.To]
	if !ok || c.revertCalls || len(tx.Data) < 4 {
		receipt.Status = 0
		return receipt, nil
	}
	switch {
	case bytes.Equal(tx.Data[:4], selectorIncrement):
		counter.Add(counter, big.NewInt(1))
	case bytes.Equal(tx.Data[:4], selectorSetNumber) && len(tx.Data) >= 36:
		counter.SetBytes(tx.Data[4:36])
	default:
		receipt.Status = 0
	}
	return receipt, nil
}

func (c *fakeChain) TransactionReceipt(context.Context, common.Hash) (*domain.TxReceipt, error) {
	return nil, domain.ErrNotFound
}

func (c *fakeChain) Call(_ context.Context, call domain.CallRequest) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	counter, ok := c.counters[call.To]
	if !ok {
		return nil, nil
	}
	if bytes.Equal(call.Data, selectorNumber) {
		return common.BigToHash(counter).Bytes(), nil
	}
	return nil, &domain.RPCError{Method: "eth_call", Err: errors.New("execution reverted")}
}

func (c *fakeChain) Snapshot(context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := fmt.Sprintf("0x%x", len(c.snapshots)+1)
	state := make(map[common.Address]*big.Int, len(c.counters))
	for addr, v := range c.counters {
		state[addr] = new(big.Int).Set(v)
	}
	c.snapshots[id] = state
	return id, nil
}

func (c *fakeChain) Revert(_ context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.reverts = append(c.reverts, id)
	state, ok := c.snapshots[id]
	if !ok {
		return &domain.RPCError{Method: "evm_revert", Err: fmt.Errorf("evm_revert returned false for snapshot %s", id)}
	}
	c.counters = state
	delete(c.snapshots, id)
	return nil
}

func (c *fakeChain) IncreaseTime(_ context.Context, seconds uint64) error {
	c.elapsed += seconds
	return nil
}

func (c *fakeChain) Mine(_ context.Context, blocks uint64) error {
	c.mined += blocks
	return nil
}

func (c *fakeChain) SetBalance(_ context.Context, address string, wei *big.Int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.balances[common.HexToAddress(address)] = new(big.Int).Set(wei)
	return nil
}

func (c *fakeChain) SetStorageAt(_ context.Context, address, slot, value string) error {
	c.storage[address+"/"+slot] = value
	return nil
}

func (c *fakeChain) Close() { c.closed = true }

// fakeDialer hands out the same chain for every dial
type fakeDialer struct {
	chain *fakeChain
	err   error
}

func (d *fakeDialer) Dial(context.Context, string) (usecase.ChainClient, error) {
	if d.err != nil {
		return nil, d.err
	}
	return d.chain, nil
}

// fakeArtifacts serves artifacts from a map
type fakeArtifacts map[string]*domain.ContractArtifact

func counterArtifacts() fakeArtifacts {
	return fakeArtifacts{
		"Counter": {
			Name:       "Counter",
			SourcePath: "src/Counter.sol",
			ABI:        json.RawMessage(counterABI),
			Bytecode:   "0x6080604052",
		},
	}
}

func (f fakeArtifacts) FindArtifact(_ context.Context, name string) (*domain.ContractArtifact, error) {
	if a, ok := f[name]; ok {
		return a, nil
	}
	return nil, fmt.Errorf("%w: %s", domain.ErrArtifactNotFound, name)
}

func (f fakeArtifacts) ListArtifacts(context.Context) ([]*domain.ContractArtifact, error) {
	out := make([]*domain.ContractArtifact, 0, len(f))
	for _, a := range f {
		out = append(out, a)
	}
	return out, nil
}

// MockScenarioStore is a mock implementation of ScenarioStore
type MockScenarioStore struct {
	mock.Mock
}

func (m *MockScenarioStore) Read(ctx context.Context, path string) (string, error) {
	args := m.Called(ctx, path)
	return args.String(0), args.Error(1)
}

func (m *MockScenarioStore) Save(ctx context.Context, name string, content []byte, overwrite bool) (string, error) {
	args := m.Called(ctx, name, content, overwrite)
	return args.String(0), args.Error(1)
}

func (m *MockScenarioStore) List(ctx context.Context) ([]usecase.ScenarioFile, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]usecase.ScenarioFile), args.Error(1)
}

// MockTraceWriter is a mock implementation of TraceWriter
type MockTraceWriter struct {
	mock.Mock
}

func (m *MockTraceWriter) WriteTrace(ctx context.Context, result *domain.ExecutionResult) (string, error) {
	args := m.Called(ctx, result)
	return args.String(0), args.Error(1)
}

// MockNodeManager is a mock implementation of NodeManager
type MockNodeManager struct {
	mock.Mock
}

func (m *MockNodeManager) Start(ctx context.Context, instance *domain.AnvilInstance) error {
	return m.Called(ctx, instance).Error(0)
}

func (m *MockNodeManager) Stop(ctx context.Context, instance *domain.AnvilInstance) error {
	return m.Called(ctx, instance).Error(0)
}

func (m *MockNodeManager) GetStatus(ctx context.Context, instance *domain.AnvilInstance) (*domain.AnvilStatus, error) {
	args := m.Called(ctx, instance)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AnvilStatus), args.Error(1)
}

func (m *MockNodeManager) StreamLogs(ctx context.Context, instance *domain.AnvilInstance, writer io.Writer) error {
	return m.Called(ctx, instance, writer).Error(0)
}

func (m *MockNodeManager) EnsureRunning(ctx context.Context, rpcURL string) (bool, error) {
	args := m.Called(ctx, rpcURL)
	return args.Bool(0), args.Error(1)
}

// recordingProgress keeps every message it receives
type recordingProgress struct {
	events []usecase.ProgressEvent
	infos  []string
}

func (r *recordingProgress) OnProgress(_ context.Context, event usecase.ProgressEvent) {
	r.events = append(r.events, event)
}
func (r *recordingProgress) Info(message string)  { r.infos = append(r.infos, message) }
func (r *recordingProgress) Error(message string) {}
