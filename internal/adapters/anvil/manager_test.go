package anvil

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/catapult/internal/domain"
	"github.com/trebuchet-org/catapult/internal/domain/config"
)

type rpcRequest struct {
	Jsonrpc string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  []interface{}   `json:"params"`
	ID      json.RawMessage `json:"id"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	Jsonrpc string          `json:"jsonrpc"`
	Result  interface{}     `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
	ID      json.RawMessage `json:"id"`
}

func newTestManager(t *testing.T, node config.NodeConfig) *Manager {
	t.Helper()
	return NewManager(&config.RuntimeConfig{DataDir: t.TempDir(), Node: node}, slog.New(slog.DiscardHandler))
}

func TestBuildAnvilArgs_Basic(t *testing.T) {
	instance := &domain.AnvilInstance{
		Port: "8545",
	}
	args := buildAnvilArgs(instance)
	assert.Equal(t, []string{"--port", "8545", "--host", "0.0.0.0"}, args)
}

func TestBuildAnvilArgs_WithChainID(t *testing.T) {
	instance := &domain.AnvilInstance{
		Port:    "9000",
		ChainID: "31337",
	}
	args := buildAnvilArgs(instance)
	assert.Equal(t, []string{"--port", "9000", "--host", "0.0.0.0", "--chain-id", "31337"}, args)
}

func TestBuildAnvilArgs_WithChainIDAndForkURL(t *testing.T) {
	instance := &domain.AnvilInstance{
		Port:    "9000",
		ChainID: "11155111",
		ForkURL: "https://rpc.sepolia.org",
	}
	args := buildAnvilArgs(instance)
	assert.Equal(t, []string{
		"--port", "9000",
		"--host", "0.0.0.0",
		"--chain-id", "11155111",
		"--fork-url", "https://rpc.sepolia.org",
	}, args)
}

func TestSetFilePaths_DefaultInstance(t *testing.T) {
	m := newTestManager(t, config.NodeConfig{})
	instance := &domain.AnvilInstance{}
	m.setFilePaths(instance)

	assert.Equal(t, "anvil", instance.Name)
	assert.Equal(t, DefaultAnvilPort, instance.Port)
	assert.Equal(t, filepath.Join(m.dataDir, "anvil.pid"), instance.PidFile)
	assert.Equal(t, filepath.Join(m.dataDir, "anvil.log"), instance.LogFile)
}

func TestSetFilePaths_NamedInstance(t *testing.T) {
	m := newTestManager(t, config.NodeConfig{})
	instance := &domain.AnvilInstance{
		Name: "testnet",
		Port: "9000",
	}
	m.setFilePaths(instance)

	assert.Equal(t, filepath.Join(m.dataDir, "testnet.pid"), instance.PidFile)
	assert.Equal(t, filepath.Join(m.dataDir, "testnet.log"), instance.LogFile)
}

func TestSetFilePaths_PresetPathsPreserved(t *testing.T) {
	m := newTestManager(t, config.NodeConfig{})
	instance := &domain.AnvilInstance{
		Name:    "scratch",
		Port:    "54321",
		PidFile: "/custom/path/my.pid",
		LogFile: "/custom/path/my.log",
	}
	m.setFilePaths(instance)

	assert.Equal(t, "/custom/path/my.pid", instance.PidFile)
	assert.Equal(t, "/custom/path/my.log", instance.LogFile)
}

// newMockRPCServer creates a test HTTP server that responds to JSON-RPC requests
func newMockRPCServer(t *testing.T, handler func(req rpcRequest) rpcResponse) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("failed to decode RPC request: %v", err)
			return
		}
		resp := handler(req)
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			t.Errorf("failed to encode RPC response: %v", err)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func serverPort(server *httptest.Server) string {
	parts := strings.Split(server.URL, ":")
	return parts[len(parts)-1]
}

// instanceForServer creates an AnvilInstance pointing at the test server
func instanceForServer(t *testing.T, server *httptest.Server) *domain.AnvilInstance {
	t.Helper()
	dir := t.TempDir()
	return &domain.AnvilInstance{
		Name:    "test",
		Port:    serverPort(server),
		PidFile: filepath.Join(dir, "test.pid"),
		LogFile: filepath.Join(dir, "test.log"),
	}
}

func blockNumberHandler(req rpcRequest) rpcResponse {
	if req.Method != "eth_blockNumber" {
		return rpcResponse{Jsonrpc: "2.0", Error: &rpcError{Code: -32601, Message: "unexpected " + req.Method}, ID: req.ID}
	}
	return rpcResponse{Jsonrpc: "2.0", Result: "0x2a", ID: req.ID}
}

func TestGetStatus_HealthyWithoutPidFile(t *testing.T) {
	server := newMockRPCServer(t, blockNumberHandler)
	m := newTestManager(t, config.NodeConfig{})
	instance := instanceForServer(t, server)

	status, err := m.GetStatus(context.Background(), instance)
	require.NoError(t, err)
	assert.False(t, status.Running)
	assert.True(t, status.RPCHealthy)
	assert.Equal(t, uint64(42), status.BlockNumber)
	assert.Equal(t, "http://127.0.0.1:"+instance.Port, status.RPCURL)
}

func TestGetStatus_RunningProcess(t *testing.T) {
	server := newMockRPCServer(t, blockNumberHandler)
	m := newTestManager(t, config.NodeConfig{})
	instance := instanceForServer(t, server)
	require.NoError(t, writePidFile(instance.PidFile, os.Getpid()))

	status, err := m.GetStatus(context.Background(), instance)
	require.NoError(t, err)
	assert.True(t, status.Running)
	assert.Equal(t, os.Getpid(), status.PID)
	assert.True(t, status.RPCHealthy)
}

func TestGetStatus_RPCError(t *testing.T) {
	server := newMockRPCServer(t, func(req rpcRequest) rpcResponse {
		return rpcResponse{Jsonrpc: "2.0", Error: &rpcError{Code: -32000, Message: "node is syncing"}, ID: req.ID}
	})
	m := newTestManager(t, config.NodeConfig{})
	instance := instanceForServer(t, server)
	require.NoError(t, writePidFile(instance.PidFile, os.Getpid()))

	status, err := m.GetStatus(context.Background(), instance)
	require.NoError(t, err)
	assert.True(t, status.Running)
	assert.False(t, status.RPCHealthy)
	assert.Contains(t, status.Error, "node is syncing")
}

func TestStop_NotRunning(t *testing.T) {
	m := newTestManager(t, config.NodeConfig{})
	instance := &domain.AnvilInstance{Name: "idle", Port: "1"}
	require.NoError(t, m.Stop(context.Background(), instance))
}

func TestStart_AlreadyRunning(t *testing.T) {
	m := newTestManager(t, config.NodeConfig{})
	instance := &domain.AnvilInstance{Name: "busy", Port: "1"}
	m.setFilePaths(instance)
	require.NoError(t, writePidFile(instance.PidFile, os.Getpid()))

	err := m.Start(context.Background(), instance)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already running")
}

func TestEnsureRunning_AlreadyServing(t *testing.T) {
	server := newMockRPCServer(t, blockNumberHandler)
	m := newTestManager(t, config.NodeConfig{})

	started, err := m.EnsureRunning(context.Background(), server.URL)
	require.NoError(t, err)
	assert.False(t, started)
}

func TestEnsureRunning_RemoteURL(t *testing.T) {
	m := newTestManager(t, config.NodeConfig{})

	started, err := m.EnsureRunning(context.Background(), "https://sepolia.example.org:8545")
	require.Error(t, err)
	assert.False(t, started)
	assert.Contains(t, err.Error(), "non-local")
}

func TestInstanceFor(t *testing.T) {
	m := newTestManager(t, config.NodeConfig{Name: "dev", Port: "8545", ChainID: "31337"})

	inst, err := m.instanceFor("http://localhost:8545")
	require.NoError(t, err)
	assert.Equal(t, &domain.AnvilInstance{Name: "dev", Port: "8545", ChainID: "31337"}, inst)

	inst, err = m.instanceFor("http://127.0.0.1:9545")
	require.NoError(t, err)
	assert.Equal(t, "dev-9545", inst.Name)

	_, err = m.instanceFor("http://127.0.0.1")
	assert.Error(t, err)
}

func TestStreamLogs(t *testing.T) {
	m := newTestManager(t, config.NodeConfig{})
	instance := &domain.AnvilInstance{Name: "logs"}
	m.setFilePaths(instance)
	require.NoError(t, os.WriteFile(instance.LogFile, []byte("Listening on 0.0.0.0:8545\nblock 1\n"), 0644))

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	var buf bytes.Buffer
	require.NoError(t, m.StreamLogs(ctx, instance, &buf))
	assert.Equal(t, "Listening on 0.0.0.0:8545\nblock 1\n", buf.String())
}

func TestStreamLogs_Missing(t *testing.T) {
	m := newTestManager(t, config.NodeConfig{})
	err := m.StreamLogs(context.Background(), &domain.AnvilInstance{Name: "none"}, &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")
}

func TestReadPidFile_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.pid")
	require.NoError(t, os.WriteFile(path, []byte("not-a-pid"), 0644))
	_, err := readPidFile(path)
	assert.Error(t, err)

	require.NoError(t, writePidFile(path, 123))
	pid, err := readPidFile(path)
	require.NoError(t, err)
	assert.Equal(t, 123, pid)
}
