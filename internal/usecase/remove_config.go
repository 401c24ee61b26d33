package usecase

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/trebuchet-org/catapult/internal/domain"
)

// RemoveConfigParams contains parameters for removing configuration
type RemoveConfigParams struct {
	Key string
}

// RemoveConfigResult contains the result of removing configuration
type RemoveConfigResult struct {
	UpdatedConfig *domain.LocalConfig
	ConfigPath    string
	Key           domain.ConfigKey
	RemovedValue  string
}

// RemoveConfig is a use case for removing configuration values
type RemoveConfig struct {
	store LocalConfigStore
}

// NewRemoveConfig creates a new RemoveConfig use case
func NewRemoveConfig(store LocalConfigStore) *RemoveConfig {
	return &RemoveConfig{
		store: store,
	}
}

// Run executes the remove config use case
func (uc *RemoveConfig) Run(ctx context.Context, params RemoveConfigParams) (*RemoveConfigResult, error) {
	// Config file must exist to remove values
	if !uc.store.Exists() {
		path := uc.store.GetPath()
		if cwd, err := os.Getwd(); err == nil {
			if relPath, err := filepath.Rel(cwd, path); err == nil {
				path = relPath
			}
		}
		return nil, fmt.Errorf("no config file found at %s", path)
	}

	key, err := validateConfigKey(params.Key)
	if err != nil {
		return nil, err
	}

	local, err := uc.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	removedValue := local.Get(key)
	if err := local.Set(key, ""); err != nil {
		return nil, err
	}

	if err := uc.store.Save(ctx, local); err != nil {
		return nil, fmt.Errorf("failed to save config: %w", err)
	}

	return &RemoveConfigResult{
		UpdatedConfig: local,
		ConfigPath:    uc.store.GetPath(),
		Key:           key,
		RemovedValue:  removedValue,
	}, nil
}
