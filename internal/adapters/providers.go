package adapters

import (
	"github.com/google/wire"
	"github.com/trebuchet-org/catapult/internal/adapters/abi"
	"github.com/trebuchet-org/catapult/internal/adapters/anvil"
	"github.com/trebuchet-org/catapult/internal/adapters/blockchain"
	"github.com/trebuchet-org/catapult/internal/adapters/contracts"
	"github.com/trebuchet-org/catapult/internal/adapters/forge"
	"github.com/trebuchet-org/catapult/internal/adapters/fs"
	"github.com/trebuchet-org/catapult/internal/adapters/interactive"
	"github.com/trebuchet-org/catapult/internal/adapters/parser"
	"github.com/trebuchet-org/catapult/internal/usecase"
)

// FSSet provides filesystem-based implementations
var FSSet = wire.NewSet(
	fs.NewScenarioStoreAdapter,
	wire.Bind(new(usecase.ScenarioStore), new(*fs.ScenarioStoreAdapter)),

	fs.NewTraceWriterAdapter,
	wire.Bind(new(usecase.TraceWriter), new(*fs.TraceWriterAdapter)),

	fs.NewFileWriterAdapter,
	wire.Bind(new(usecase.FileWriter), new(*fs.FileWriterAdapter)),

	fs.NewLocalConfigStoreAdapter,
	wire.Bind(new(usecase.LocalConfigStore), new(*fs.LocalConfigStoreAdapter)),
)

// ParserSet provides the scenario YAML parser and encoder
var ParserSet = wire.NewSet(
	parser.NewScenarioParser,
	wire.Bind(new(usecase.ScenarioParser), new(*parser.ScenarioParser)),

	parser.NewScenarioEncoder,
	wire.Bind(new(usecase.ScenarioEncoder), new(*parser.ScenarioEncoder)),
)

// ABISet provides calldata encoding and ABI analysis
var ABISet = wire.NewSet(
	abi.NewCodec,
	wire.Bind(new(usecase.CallCodec), new(*abi.Codec)),

	abi.NewAnalyzer,
	wire.Bind(new(usecase.ABIAnalyzer), new(*abi.Analyzer)),
)

// ContractsSet provides compiled artifact lookup backed by forge
var ContractsSet = wire.NewSet(
	forge.NewBuilder,
	wire.Bind(new(contracts.Builder), new(*forge.Builder)),

	contracts.NewIndexer,
	wire.Bind(new(usecase.ArtifactRepository), new(*contracts.Indexer)),
)

// BlockchainSet provides JSON-RPC clients
var BlockchainSet = wire.NewSet(
	blockchain.NewDialer,
	wire.Bind(new(usecase.ChainDialer), new(*blockchain.Dialer)),
)

// NodeSet provides the local anvil node manager
var NodeSet = wire.NewSet(
	anvil.NewManager,
	wire.Bind(new(usecase.NodeManager), new(*anvil.Manager)),
)

// InteractiveSet provides interactive implementations
var InteractiveSet = wire.NewSet(
	interactive.NewSelectorAdapter,
	wire.Bind(new(usecase.ScenarioSelector), new(*interactive.SelectorAdapter)),
)

// AllAdapters includes all adapter sets
var AllAdapters = wire.NewSet(
	FSSet,
	ParserSet,
	ABISet,
	ContractsSet,
	BlockchainSet,
	NodeSet,
	InteractiveSet,
)
