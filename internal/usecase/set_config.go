package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/trebuchet-org/catapult/internal/domain"
)

// SetConfigParams contains parameters for setting configuration
type SetConfigParams struct {
	Key   string
	Value string
}

// SetConfigResult contains the result of setting configuration
type SetConfigResult struct {
	UpdatedConfig *domain.LocalConfig
	ConfigPath    string
	Key           domain.ConfigKey
	Value         string
}

// SetConfig is a use case for setting configuration values
type SetConfig struct {
	store LocalConfigStore
}

// NewSetConfig creates a new SetConfig use case
func NewSetConfig(store LocalConfigStore) *SetConfig {
	return &SetConfig{
		store: store,
	}
}

// Run executes the set config use case
func (uc *SetConfig) Run(ctx context.Context, params SetConfigParams) (*SetConfigResult, error) {
	key, err := validateConfigKey(params.Key)
	if err != nil {
		return nil, err
	}
	value := strings.TrimSpace(params.Value)
	if value == "" {
		return nil, fmt.Errorf("value for %s must not be empty, use 'config remove %s' instead", key, key)
	}

	local, err := uc.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := local.Set(key, value); err != nil {
		return nil, err
	}

	if err := uc.store.Save(ctx, local); err != nil {
		return nil, fmt.Errorf("failed to save config: %w", err)
	}

	return &SetConfigResult{
		UpdatedConfig: local,
		ConfigPath:    uc.store.GetPath(),
		Key:           key,
		Value:         value,
	}, nil
}

func validateConfigKey(raw string) (domain.ConfigKey, error) {
	key := strings.ToLower(strings.TrimSpace(raw))
	if !domain.IsValidConfigKey(key) {
		var validKeys []string
		for _, k := range domain.ValidConfigKeys() {
			if alias := domain.ConfigKeyAlias(k); alias != "" {
				validKeys = append(validKeys, fmt.Sprintf("%s (%s)", k, alias))
			} else {
				validKeys = append(validKeys, string(k))
			}
		}
		return "", fmt.Errorf("unknown config key: %s\nAvailable keys: %s", raw, strings.Join(validKeys, ", "))
	}
	return domain.NormalizeConfigKey(key), nil
}
