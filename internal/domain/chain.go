package domain

import (
	"encoding/json"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// TxRequest is a transaction the executor asks the node to run
type TxRequest struct {
	From     common.Address
	To       *common.Address // nil for contract creation
	Data     []byte
	Value    *big.Int
	Gas      uint64
	GasPrice *big.Int
	// PrivateKey, when set, makes the client sign locally instead of relying
	// on the node's unlocked accounts.
	PrivateKey string
}

// IsCreate reports whether the request deploys a contract
func (r TxRequest) IsCreate() bool {
	return r.To == nil
}

// CallRequest is a read-only eth_call
type CallRequest struct {
	From common.Address
	To   common.Address
	Data []byte
}

// TxReceipt is the subset of a receipt the executor needs. Mined is false
// when the transaction was accepted but no receipt was available yet.
type TxReceipt struct {
	TxHash          common.Hash     `json:"txHash"`
	Mined           bool            `json:"mined"`
	Status          uint64          `json:"status"`
	GasUsed         uint64          `json:"gasUsed"`
	BlockNumber     uint64          `json:"blockNumber"`
	ContractAddress *common.Address `json:"contractAddress,omitempty"`
}

// Succeeded reports whether the transaction did not revert
func (r *TxReceipt) Succeeded() bool {
	return r != nil && r.Mined && r.Status == 1
}

// ContractArtifact is a compiled contract found in the build output
type ContractArtifact struct {
	Name         string          `json:"name"`
	SourcePath   string          `json:"sourcePath"`
	ArtifactPath string          `json:"artifactPath"`
	ABI          json.RawMessage `json:"abi"`
	Bytecode     string          `json:"bytecode"`
}

// HasBytecode reports whether the artifact can be deployed
func (a *ContractArtifact) HasBytecode() bool {
	return a != nil && a.Bytecode != "" && a.Bytecode != "0x"
}
