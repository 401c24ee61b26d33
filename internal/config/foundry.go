package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/trebuchet-org/catapult/internal/domain/config"
)

// loadFoundryConfig loads foundry.toml when present. Scenarios can run
// outside a Foundry project, so a missing file yields an empty config.
// RPC endpoints are kept raw and expanded by NetworkResolver.
func loadFoundryConfig(projectRoot string) (*config.FoundryConfig, error) {
	loadEnvFiles(projectRoot)

	cfg := &config.FoundryConfig{
		Profile:      make(map[string]config.ProfileConfig),
		RpcEndpoints: make(map[string]string),
	}

	foundryPath := filepath.Join(projectRoot, "foundry.toml")
	if _, err := os.Stat(foundryPath); os.IsNotExist(err) {
		return cfg, nil
	}

	var raw config.FoundryConfig
	if _, err := toml.DecodeFile(foundryPath, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse foundry.toml: %w", err)
	}

	for name, url := range raw.RpcEndpoints {
		cfg.RpcEndpoints[name] = url
	}
	for name, profile := range raw.Profile {
		cfg.Profile[name] = profile
	}

	return cfg, nil
}

// loadEnvFiles loads .env then .env.local for variable expansion
func loadEnvFiles(projectRoot string) {
	envFiles := []string{
		filepath.Join(projectRoot, ".env"),
		filepath.Join(projectRoot, ".env.local"),
	}

	for _, envFile := range envFiles {
		if _, err := os.Stat(envFile); err == nil {
			if err := godotenv.Load(envFile); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: Failed to load %s: %v\n", envFile, err)
			}
		}
	}
}
