package cli

import (
	"github.com/spf13/cobra"
	"github.com/trebuchet-org/catapult/internal/cli/render"
	"github.com/trebuchet-org/catapult/internal/usecase"
)

// NewListCmd creates the list command
func NewListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List stored scenarios",
		Long: `List the scenarios in the scenarios directory with their step counts.

Files that fail to parse are listed with the parse error.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			result, err := app.ListScenarios.Execute(cmd.Context())
			if err != nil {
				return err
			}

			if app.Config.JSON {
				return render.NewJSONRenderer[[]usecase.ScenarioSummary](cmd.OutOrStdout()).Render(result.Scenarios)
			}
			return render.NewFilesRenderer(cmd.OutOrStdout()).RenderList(result, app.Config.ScenariosDir)
		},
	}
}
