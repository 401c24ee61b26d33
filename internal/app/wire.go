//go:build wireinject
// +build wireinject

package app

import (
	"github.com/google/wire"
	"github.com/spf13/viper"
	"github.com/trebuchet-org/catapult/internal/adapters"
	"github.com/trebuchet-org/catapult/internal/config"
	"github.com/trebuchet-org/catapult/internal/logging"
	"github.com/trebuchet-org/catapult/internal/usecase"
)

// InitApp creates a fully wired App instance
func InitApp(v *viper.Viper, sink usecase.ProgressSink) (*App, error) {
	wire.Build(
		// Configuration
		config.Provider,
		logging.LoggingSet,

		// Adapters
		adapters.AllAdapters,

		// Use cases
		usecase.NewRunScenario,
		usecase.NewParseScenario,
		usecase.NewListScenarios,
		usecase.NewSaveScenario,
		usecase.NewCreateScenarioTemplate,
		usecase.NewManageNode,
		usecase.NewShowConfig,
		usecase.NewSetConfig,
		usecase.NewRemoveConfig,
		usecase.NewInitProject,

		// App
		NewApp,
	)
	return nil, nil
}
