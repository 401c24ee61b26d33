package usecase

import (
	"context"

	"github.com/trebuchet-org/catapult/internal/domain"
	"github.com/trebuchet-org/catapult/internal/domain/config"
)

// ShowConfigResult contains the stored defaults next to the effective values
type ShowConfigResult struct {
	Config     *domain.LocalConfig
	ConfigPath string
	Exists     bool

	// Effective values after env vars and flags
	RPCURL              string
	Network             string
	DeployAddressPolicy domain.DeployAddressPolicy
	ScenariosDir        string
}

// ShowConfig is a use case for showing configuration
type ShowConfig struct {
	config *config.RuntimeConfig
	store  LocalConfigStore
}

// NewShowConfig creates a new ShowConfig use case
func NewShowConfig(cfg *config.RuntimeConfig, store LocalConfigStore) *ShowConfig {
	return &ShowConfig{
		config: cfg,
		store:  store,
	}
}

// Run executes the show config use case
func (uc *ShowConfig) Run(ctx context.Context) (*ShowConfigResult, error) {
	exists := uc.store.Exists()

	local, err := uc.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	result := &ShowConfigResult{
		Config:              local,
		ConfigPath:          uc.store.GetPath(),
		Exists:              exists,
		RPCURL:              uc.config.RPCURL,
		DeployAddressPolicy: uc.config.DeployAddressPolicy,
		ScenariosDir:        uc.config.ScenariosDir,
	}
	if uc.config.Network != nil {
		result.Network = uc.config.Network.Name
	}
	return result, nil
}
