package app

import (
	"log/slog"

	"github.com/trebuchet-org/catapult/internal/domain/config"
	"github.com/trebuchet-org/catapult/internal/usecase"
)

// App is the main application container that holds all use cases
type App struct {
	// Configuration
	Config *config.RuntimeConfig
	Log    *slog.Logger

	// Shared dependencies
	Selector usecase.ScenarioSelector

	// Use cases
	RunScenario            *usecase.RunScenario
	ParseScenario          *usecase.ParseScenario
	ListScenarios          *usecase.ListScenarios
	SaveScenario           *usecase.SaveScenario
	CreateScenarioTemplate *usecase.CreateScenarioTemplate
	ManageNode             *usecase.ManageNode
	ShowConfig             *usecase.ShowConfig
	SetConfig              *usecase.SetConfig
	RemoveConfig           *usecase.RemoveConfig
	InitProject            *usecase.InitProject
}

// NewApp creates a new application instance with all use cases
func NewApp(
	cfg *config.RuntimeConfig,
	log *slog.Logger,
	selector usecase.ScenarioSelector,
	runScenario *usecase.RunScenario,
	parseScenario *usecase.ParseScenario,
	listScenarios *usecase.ListScenarios,
	saveScenario *usecase.SaveScenario,
	createScenarioTemplate *usecase.CreateScenarioTemplate,
	manageNode *usecase.ManageNode,
	showConfig *usecase.ShowConfig,
	setConfig *usecase.SetConfig,
	removeConfig *usecase.RemoveConfig,
	initProject *usecase.InitProject,
) (*App, error) {
	return &App{
		Config:                 cfg,
		Log:                    log,
		Selector:               selector,
		RunScenario:            runScenario,
		ParseScenario:          parseScenario,
		ListScenarios:          listScenarios,
		SaveScenario:           saveScenario,
		CreateScenarioTemplate: createScenarioTemplate,
		ManageNode:             manageNode,
		ShowConfig:             showConfig,
		SetConfig:              setConfig,
		RemoveConfig:           removeConfig,
		InitProject:            initProject,
	}, nil
}
