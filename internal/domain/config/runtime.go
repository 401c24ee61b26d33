package config

import (
	"time"

	"github.com/trebuchet-org/catapult/internal/domain"
)

// RuntimeConfig represents the complete runtime configuration
// This is injected into use cases and contains all resolved settings
type RuntimeConfig struct {
	// Core settings
	ProjectRoot  string
	DataDir      string
	ScenariosDir string

	// Node settings
	RPCURL  string
	Network *Network // nil if not specified
	Node    NodeConfig

	// Execution settings
	Debug               bool
	NonInteractive      bool
	JSON                bool // Output in JSON format
	Timeout             time.Duration
	RPCTimeout          time.Duration
	DeployAddressPolicy domain.DeployAddressPolicy
	WriteTrace          bool

	// Resolved configurations
	FoundryConfig *FoundryConfig
}

// NodeConfig describes the managed local node
type NodeConfig struct {
	Name      string
	Port      string
	ChainID   string
	AutoStart bool
}

// Network represents network configuration
type Network struct {
	Name   string `json:"name"`
	RPCURL string `json:"rpcUrl"`
	EnvVar string `json:"envVar,omitempty"`
}
