package usecase

import (
	"context"
	"encoding/json"
	"io"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/catapult/internal/domain"
)

// ScenarioParser turns scenario YAML into a definition
type ScenarioParser interface {
	Parse(text string) (*domain.ParsedScenario, error)
}

// ScenarioEncoder renders a definition back to scenario YAML
type ScenarioEncoder interface {
	Encode(def *domain.ScenarioDefinition) ([]byte, error)
}

// ABIAnalyzer summarises a contract ABI
type ABIAnalyzer interface {
	Analyze(contract string, contractABI json.RawMessage) (*domain.ContractAnalysis, error)
}

// ChainDialer opens a client to a JSON-RPC endpoint
type ChainDialer interface {
	Dial(ctx context.Context, rpcURL string) (ChainClient, error)
}

// ChainClient talks to a development node. Every method maps to one or a
// few JSON-RPC calls and never retries.
type ChainClient interface {
	BlockNumber(ctx context.Context) (uint64, error)
	Accounts(ctx context.Context) ([]common.Address, error)
	Balance(ctx context.Context, address common.Address) (*big.Int, error)
	SendTransaction(ctx context.Context, tx domain.TxRequest) (*domain.TxReceipt, error)
	TransactionReceipt(ctx context.Context, hash common.Hash) (*domain.TxReceipt, error)
	Call(ctx context.Context, call domain.CallRequest) ([]byte, error)

	// Development node methods
	Snapshot(ctx context.Context) (string, error)
	Revert(ctx context.Context, id string) error
	IncreaseTime(ctx context.Context, seconds uint64) error
	Mine(ctx context.Context, blocks uint64) error
	SetBalance(ctx context.Context, address string, wei *big.Int) error
	SetStorageAt(ctx context.Context, address, slot, value string) error

	Close()
}

// CallCodec encodes calldata and decodes return data. fn is either a full
// signature such as "transfer(address,uint256)(bool)" or a bare method name
// looked up in contractABI.
type CallCodec interface {
	EncodeCall(fn string, args []string, contractABI json.RawMessage) ([]byte, error)
	DecodeResult(fn string, data []byte, contractABI json.RawMessage) (string, error)
	EncodeDeployment(bytecode string, contractABI json.RawMessage, args []string) ([]byte, error)
}

// ArtifactRepository provides access to compiled contracts
type ArtifactRepository interface {
	FindArtifact(ctx context.Context, name string) (*domain.ContractArtifact, error)
	ListArtifacts(ctx context.Context) ([]*domain.ContractArtifact, error)
}

// NodeManager manages local anvil node instances
type NodeManager interface {
	Start(ctx context.Context, instance *domain.AnvilInstance) error
	Stop(ctx context.Context, instance *domain.AnvilInstance) error
	GetStatus(ctx context.Context, instance *domain.AnvilInstance) (*domain.AnvilStatus, error)
	StreamLogs(ctx context.Context, instance *domain.AnvilInstance, writer io.Writer) error
	// EnsureRunning starts a node for a localhost rpcURL if none answers.
	// It reports whether a node was started.
	EnsureRunning(ctx context.Context, rpcURL string) (bool, error)
}

// ScenarioFile is a scenario stored on disk
type ScenarioFile struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// ScenarioStore reads and writes scenario files
type ScenarioStore interface {
	Read(ctx context.Context, path string) (string, error)
	Save(ctx context.Context, name string, content []byte, overwrite bool) (string, error)
	List(ctx context.Context) ([]ScenarioFile, error)
}

// TraceWriter persists the trace of a run
type TraceWriter interface {
	WriteTrace(ctx context.Context, result *domain.ExecutionResult) (string, error)
}

// LocalConfigStore manages the project-local config file
type LocalConfigStore interface {
	Exists() bool
	Load(ctx context.Context) (*domain.LocalConfig, error)
	Save(ctx context.Context, config *domain.LocalConfig) error
	GetPath() string
}

// FileWriter handles project file creation
type FileWriter interface {
	WriteFile(ctx context.Context, path string, content string) error
	FileExists(ctx context.Context, path string) (bool, error)
	EnsureDirectory(ctx context.Context, path string) error
}

// ScenarioSelector lets the user pick a scenario interactively
type ScenarioSelector interface {
	SelectScenario(ctx context.Context, files []ScenarioFile, prompt string) (*ScenarioFile, error)
}

// Progress tracking interfaces

// ProgressEvent represents a progress update
type ProgressEvent struct {
	Stage    string
	Current  int
	Total    int
	Message  string
	Spinner  bool
	Metadata interface{}
}

// ProgressSink receives progress events
type ProgressSink interface {
	OnProgress(ctx context.Context, event ProgressEvent)
	Info(message string)
	Error(message string)
}
