package domain

import (
	"fmt"
	"time"
)

// LocalConfig holds the per-project defaults stored in
// .catapult/config.local.json. Keys match the viper keys they override.
type LocalConfig struct {
	Network             string `json:"network,omitempty"`
	RPCURL              string `json:"rpc_url,omitempty"`
	DeployAddressPolicy string `json:"deploy_address_policy,omitempty"`
	ScenariosDir        string `json:"scenarios_dir,omitempty"`
	RPCTimeout          string `json:"rpc_timeout,omitempty"`
}

// ConfigKey represents a configuration key
type ConfigKey string

const (
	ConfigKeyNetwork             ConfigKey = "network"
	ConfigKeyRPCURL              ConfigKey = "rpc_url"
	ConfigKeyDeployAddressPolicy ConfigKey = "deploy_address_policy"
	ConfigKeyScenariosDir        ConfigKey = "scenarios_dir"
	ConfigKeyRPCTimeout          ConfigKey = "rpc_timeout"
)

var configKeyAliases = map[string]ConfigKey{
	"rpc":    ConfigKeyRPCURL,
	"policy": ConfigKeyDeployAddressPolicy,
}

// DefaultLocalConfig returns the default local configuration
func DefaultLocalConfig() *LocalConfig {
	return &LocalConfig{}
}

// ValidConfigKeys returns all valid configuration keys
func ValidConfigKeys() []ConfigKey {
	return []ConfigKey{
		ConfigKeyNetwork,
		ConfigKeyRPCURL,
		ConfigKeyDeployAddressPolicy,
		ConfigKeyScenariosDir,
		ConfigKeyRPCTimeout,
	}
}

// IsValidConfigKey checks if a key is valid
func IsValidConfigKey(key string) bool {
	if _, ok := configKeyAliases[key]; ok {
		return true
	}
	for _, validKey := range ValidConfigKeys() {
		if string(validKey) == key {
			return true
		}
	}
	return false
}

// NormalizeConfigKey normalizes a config key (e.g., "rpc" -> "rpc_url")
func NormalizeConfigKey(key string) ConfigKey {
	if k, ok := configKeyAliases[key]; ok {
		return k
	}
	return ConfigKey(key)
}

// ConfigKeyAlias returns the short alias of key, if any
func ConfigKeyAlias(key ConfigKey) string {
	for alias, k := range configKeyAliases {
		if k == key {
			return alias
		}
	}
	return ""
}

// Get returns the stored value for key
func (c *LocalConfig) Get(key ConfigKey) string {
	switch key {
	case ConfigKeyNetwork:
		return c.Network
	case ConfigKeyRPCURL:
		return c.RPCURL
	case ConfigKeyDeployAddressPolicy:
		return c.DeployAddressPolicy
	case ConfigKeyScenariosDir:
		return c.ScenariosDir
	case ConfigKeyRPCTimeout:
		return c.RPCTimeout
	}
	return ""
}

// Set validates value and stores it under key. An empty value clears the key.
func (c *LocalConfig) Set(key ConfigKey, value string) error {
	if value != "" {
		switch key {
		case ConfigKeyDeployAddressPolicy:
			if !DeployAddressPolicy(value).IsValid() {
				return fmt.Errorf("invalid deploy address policy %q (want %q or %q)",
					value, DeployAddressPlaceholder, DeployAddressStrict)
			}
		case ConfigKeyRPCTimeout:
			if d, err := time.ParseDuration(value); err != nil || d <= 0 {
				return fmt.Errorf("invalid rpc timeout %q, use a duration like 30s", value)
			}
		}
	}

	switch key {
	case ConfigKeyNetwork:
		c.Network = value
	case ConfigKeyRPCURL:
		c.RPCURL = value
	case ConfigKeyDeployAddressPolicy:
		c.DeployAddressPolicy = value
	case ConfigKeyScenariosDir:
		c.ScenariosDir = value
	case ConfigKeyRPCTimeout:
		c.RPCTimeout = value
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}
