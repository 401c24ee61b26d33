package anvil

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/trebuchet-org/catapult/internal/domain"
	"github.com/trebuchet-org/catapult/internal/domain/config"
	"github.com/trebuchet-org/catapult/internal/usecase"
)

const (
	DefaultAnvilName = "anvil"
	DefaultAnvilPort = "8545"

	startupTimeout = 10 * time.Second
	stopTimeout    = 5 * time.Second
	healthTimeout  = 2 * time.Second
)

// Manager starts and stops anvil processes tracked by pid files in the
// project data directory
type Manager struct {
	dataDir string
	node    config.NodeConfig
	log     *slog.Logger
}

// NewManager creates a new anvil manager
func NewManager(cfg *config.RuntimeConfig, log *slog.Logger) *Manager {
	dataDir := cfg.DataDir
	if dataDir == "" {
		dataDir = os.TempDir()
	}
	return &Manager{
		dataDir: dataDir,
		node:    cfg.Node,
		log:     log.With("component", "AnvilManager"),
	}
}

var _ usecase.NodeManager = (*Manager)(nil)

// Start starts an anvil instance and waits for its RPC to answer
func (m *Manager) Start(ctx context.Context, instance *domain.AnvilInstance) error {
	m.setFilePaths(instance)
	if m.isRunning(instance) {
		return fmt.Errorf("anvil '%s' is already running (PID file exists at %s)", instance.Name, instance.PidFile)
	}
	if _, err := exec.LookPath("anvil"); err != nil {
		return fmt.Errorf("anvil not found in PATH, install foundry first: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(instance.PidFile), 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Dir(instance.PidFile), err)
	}

	logFile, err := os.Create(instance.LogFile)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}
	defer logFile.Close()

	cmd := exec.Command("anvil", buildAnvilArgs(instance)...)
	cmd.Stdout = logFile
	cmd.Stderr = logFile
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start anvil: %w", err)
	}
	if err := writePidFile(instance.PidFile, cmd.Process.Pid); err != nil {
		_ = cmd.Process.Kill()
		return fmt.Errorf("failed to write PID file: %w", err)
	}
	// reap the child if it exits while this process is still around
	go func() { _ = cmd.Wait() }()
	m.log.Info("anvil started", "name", instance.Name, "pid", cmd.Process.Pid, "port", instance.Port)

	return m.waitForRPC(ctx, instance)
}

func (m *Manager) waitForRPC(ctx context.Context, instance *domain.AnvilInstance) error {
	ctx, cancel := context.WithTimeout(ctx, startupTimeout)
	defer cancel()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	for {
		if _, err := blockNumber(ctx, rpcURL(instance)); err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("anvil '%s' did not answer on port %s, see %s", instance.Name, instance.Port, instance.LogFile)
		case <-ticker.C:
		}
	}
}

// Stop stops an anvil instance. Stopping an instance that is not running is
// not an error.
func (m *Manager) Stop(ctx context.Context, instance *domain.AnvilInstance) error {
	m.setFilePaths(instance)
	if !m.isRunning(instance) {
		return nil
	}

	pid, err := readPidFile(instance.PidFile)
	if err != nil {
		return fmt.Errorf("failed to read PID file: %w", err)
	}
	process, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("failed to find process: %w", err)
	}

	if err := process.Signal(syscall.SIGTERM); err != nil {
		if err := process.Kill(); err != nil {
			return fmt.Errorf("failed to kill process: %w", err)
		}
	}

	// Wait for the process to exit
	deadline := time.Now().Add(stopTimeout)
	for processAlive(pid) && time.Now().Before(deadline) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(100 * time.Millisecond):
		}
	}
	if processAlive(pid) {
		_ = process.Kill()
	}

	if err := os.Remove(instance.PidFile); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove PID file: %w", err)
	}
	m.log.Info("anvil stopped", "name", instance.Name, "pid", pid)
	return nil
}

// GetStatus reports process and RPC health of an instance
func (m *Manager) GetStatus(ctx context.Context, instance *domain.AnvilInstance) (*domain.AnvilStatus, error) {
	m.setFilePaths(instance)
	status := &domain.AnvilStatus{
		RPCURL:  rpcURL(instance),
		LogFile: instance.LogFile,
	}

	if m.isRunning(instance) {
		status.Running = true
		status.PID, _ = readPidFile(instance.PidFile)
	}

	block, err := blockNumber(ctx, status.RPCURL)
	if err != nil {
		if status.Running {
			status.Error = err.Error()
		}
		return status, nil
	}
	status.RPCHealthy = true
	status.BlockNumber = block
	return status, nil
}

// StreamLogs copies the instance log to writer and follows it until ctx is done
func (m *Manager) StreamLogs(ctx context.Context, instance *domain.AnvilInstance, writer io.Writer) error {
	m.setFilePaths(instance)
	f, err := os.Open(instance.LogFile)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("log file does not exist: %s", instance.LogFile)
		}
		return err
	}
	defer f.Close()

	reader := bufio.NewReader(f)
	for {
		line, err := reader.ReadString('\n')
		if line != "" {
			if _, werr := io.WriteString(writer, line); werr != nil {
				return werr
			}
		}
		if err == nil {
			continue
		}
		if !errors.Is(err, io.EOF) {
			return err
		}
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(200 * time.Millisecond):
		}
	}
}

// EnsureRunning starts a node for a local rpcURL when nothing answers there
func (m *Manager) EnsureRunning(ctx context.Context, rawURL string) (bool, error) {
	instance, err := m.instanceFor(rawURL)
	if err != nil {
		return false, err
	}
	if _, err := blockNumber(ctx, rawURL); err == nil {
		return false, nil
	}
	if err := m.Start(ctx, instance); err != nil {
		return false, err
	}
	return true, nil
}

// instanceFor maps a localhost RPC URL to the managed instance on its port
func (m *Manager) instanceFor(rawURL string) (*domain.AnvilInstance, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid RPC URL %q: %w", rawURL, err)
	}
	if !isLocalHost(u.Hostname()) {
		return nil, fmt.Errorf("not starting a node for non-local RPC URL %s", rawURL)
	}
	port := u.Port()
	if port == "" {
		return nil, fmt.Errorf("RPC URL %s has no port", rawURL)
	}

	name := m.node.Name
	if name == "" {
		name = DefaultAnvilName
	}
	if m.node.Port != "" && m.node.Port != port {
		name = fmt.Sprintf("%s-%s", name, port)
	}
	return &domain.AnvilInstance{Name: name, Port: port, ChainID: m.node.ChainID}, nil
}

func isLocalHost(host string) bool {
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && (ip.IsLoopback() || ip.IsUnspecified())
}

// setFilePaths fills in defaults and pid/log paths for an instance
func (m *Manager) setFilePaths(instance *domain.AnvilInstance) {
	if strings.TrimSpace(instance.Name) == "" {
		instance.Name = DefaultAnvilName
	}
	if strings.TrimSpace(instance.Port) == "" {
		instance.Port = DefaultAnvilPort
	}
	if instance.PidFile == "" {
		instance.PidFile = filepath.Join(m.dataDir, fmt.Sprintf("%s.pid", instance.Name))
	}
	if instance.LogFile == "" {
		instance.LogFile = filepath.Join(m.dataDir, fmt.Sprintf("%s.log", instance.Name))
	}
}

func buildAnvilArgs(instance *domain.AnvilInstance) []string {
	args := []string{"--port", instance.Port, "--host", "0.0.0.0"}
	if instance.ChainID != "" {
		args = append(args, "--chain-id", instance.ChainID)
	}
	if instance.ForkURL != "" {
		args = append(args, "--fork-url", instance.ForkURL)
	}
	return args
}

func rpcURL(instance *domain.AnvilInstance) string {
	return fmt.Sprintf("http://127.0.0.1:%s", instance.Port)
}

func blockNumber(ctx context.Context, endpoint string) (uint64, error) {
	ctx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()

	client, err := rpc.DialContext(ctx, endpoint)
	if err != nil {
		return 0, err
	}
	defer client.Close()

	var n hexutil.Uint64
	if err := client.CallContext(ctx, &n, "eth_blockNumber"); err != nil {
		return 0, err
	}
	return uint64(n), nil
}

func (m *Manager) isRunning(instance *domain.AnvilInstance) bool {
	pid, err := readPidFile(instance.PidFile)
	if err != nil {
		return false
	}
	return processAlive(pid)
}

func processAlive(pid int) bool {
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return process.Signal(syscall.Signal(0)) == nil
}

func readPidFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("invalid PID in file: %s", string(data))
	}
	return pid, nil
}

func writePidFile(path string, pid int) error {
	return os.WriteFile(path, []byte(strconv.Itoa(pid)), 0644)
}
