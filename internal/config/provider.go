package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/trebuchet-org/catapult/internal/domain"
	"github.com/trebuchet-org/catapult/internal/domain/config"
)

const (
	DefaultRPCURL     = "http://127.0.0.1:8545"
	DefaultRPCTimeout = 30 * time.Second
	EnvPrefix         = "CATAPULT"
	DataDirName       = ".catapult"
)

// Provider creates RuntimeConfig for Wire dependency injection
func Provider(v *viper.Viper) (*config.RuntimeConfig, error) {
	projectRoot := v.GetString("project_root")
	if projectRoot == "" {
		var err error
		projectRoot, err = FindProjectRoot()
		if err != nil {
			return nil, fmt.Errorf("failed to find project root: %w", err)
		}
	}

	policy := domain.DeployAddressPolicy(strings.ToLower(v.GetString("deploy_address_policy")))
	if !policy.IsValid() {
		return nil, fmt.Errorf("invalid deploy_address_policy %q (want %q or %q)",
			policy, domain.DeployAddressPlaceholder, domain.DeployAddressStrict)
	}

	scenariosDir := v.GetString("scenarios_dir")
	if !filepath.IsAbs(scenariosDir) {
		scenariosDir = filepath.Join(projectRoot, scenariosDir)
	}

	rpcTimeout := v.GetDuration("rpc_timeout")
	if rpcTimeout <= 0 {
		rpcTimeout = DefaultRPCTimeout
	}

	cfg := &config.RuntimeConfig{
		ProjectRoot:  projectRoot,
		DataDir:      filepath.Join(projectRoot, DataDirName),
		ScenariosDir: scenariosDir,
		RPCURL:       v.GetString("rpc_url"),
		Node: config.NodeConfig{
			Name:      v.GetString("node.name"),
			Port:      v.GetString("node.port"),
			ChainID:   v.GetString("node.chain_id"),
			AutoStart: v.GetBool("auto_start_node"),
		},
		Debug:               v.GetBool("debug"),
		NonInteractive:      v.GetBool("non_interactive"),
		JSON:                v.GetBool("json"),
		Timeout:             v.GetDuration("timeout"),
		RPCTimeout:          rpcTimeout,
		DeployAddressPolicy: policy,
		WriteTrace:          v.GetBool("trace"),
	}

	foundryConfig, err := loadFoundryConfig(projectRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to load foundry config: %w", err)
	}
	cfg.FoundryConfig = foundryConfig

	if networkName := v.GetString("network"); networkName != "" {
		network, err := NewNetworkResolver(foundryConfig).Resolve(networkName)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve network %s: %w", networkName, err)
		}
		cfg.Network = network
		cfg.RPCURL = network.RPCURL
	}
	if cfg.RPCURL == "" {
		cfg.RPCURL = DefaultRPCURL
	}

	return cfg, nil
}

// FindProjectRoot walks up from the current directory to find foundry.toml.
// Outside a Foundry project the current directory is used.
func FindProjectRoot() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}

	dir := cwd
	for {
		if _, err := os.Stat(filepath.Join(dir, "foundry.toml")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return cwd, nil
		}
		dir = parent
	}
}

// SetupViper creates and configures a viper instance
func SetupViper(projectRoot string, cmd *cobra.Command) *viper.Viper {
	v := viper.New()

	// Set up config file
	v.SetConfigName("config.local")
	v.SetConfigType("json")
	v.AddConfigPath(filepath.Join(projectRoot, DataDirName))

	// Set up environment variables
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	// Set defaults
	v.SetDefault("rpc_url", DefaultRPCURL)
	v.SetDefault("rpc_timeout", DefaultRPCTimeout.String())
	v.SetDefault("timeout", "0s")
	v.SetDefault("deploy_address_policy", string(domain.DeployAddressPlaceholder))
	v.SetDefault("auto_start_node", true)
	v.SetDefault("scenarios_dir", "scenarios")
	v.SetDefault("node.name", "catapult")
	v.SetDefault("node.port", "8545")
	v.SetDefault("trace", false)
	v.SetDefault("debug", false)
	v.SetDefault("non_interactive", false)
	v.SetDefault("project_root", projectRoot)

	// Try to read config file (ignore error if not found)
	_ = v.ReadInConfig()

	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		key := strings.ReplaceAll(f.Name, "-", "_")
		if err := v.BindPFlag(key, f); err != nil {
			panic(err)
		}
	})

	return v
}
