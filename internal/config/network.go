package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/trebuchet-org/catapult/internal/domain/config"
)

// NetworkResolver resolves network names to RPC endpoints
type NetworkResolver struct {
	foundryConfig *config.FoundryConfig
}

// NewNetworkResolver creates a new network resolver
func NewNetworkResolver(foundryConfig *config.FoundryConfig) *NetworkResolver {
	return &NetworkResolver{foundryConfig: foundryConfig}
}

// Resolve maps a network name from foundry.toml [rpc_endpoints] to its RPC
// URL. A name that already is an http(s) or ws(s) URL is used as is.
func (r *NetworkResolver) Resolve(networkName string) (*config.Network, error) {
	if isRPCURL(networkName) {
		return &config.Network{Name: networkName, RPCURL: networkName}, nil
	}

	raw, exists := r.foundryConfig.RpcEndpoints[networkName]
	if !exists {
		return nil, fmt.Errorf("network '%s' not found in foundry.toml [rpc_endpoints]", networkName)
	}

	ep := expandEndpoint(raw)
	if len(ep.Missing) > 0 {
		return nil, fmt.Errorf("environment variable %s referenced by network '%s' is not set",
			strings.Join(ep.Missing, ", "), networkName)
	}
	if ep.URL == "" {
		return nil, fmt.Errorf("network '%s' has an empty RPC URL", networkName)
	}

	network := &config.Network{Name: networkName, RPCURL: ep.URL}
	if len(ep.Vars) > 0 {
		network.EnvVar = ep.Vars[0]
	}
	return network, nil
}

func isRPCURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	switch u.Scheme {
	case "http", "https", "ws", "wss":
		return u.Host != ""
	}
	return false
}
