package cli

import (
	"github.com/spf13/cobra"
	"github.com/trebuchet-org/catapult/internal/cli/render"
	"github.com/trebuchet-org/catapult/internal/domain"
	"github.com/trebuchet-org/catapult/internal/usecase"
)

// NewParseCmd creates the parse command
func NewParseCmd() *cobra.Command {
	var inline string

	cmd := &cobra.Command{
		Use:     "parse [scenario]",
		Aliases: []string{"check"},
		Short:   "Parse a scenario without running it",
		Long: `Parse a scenario and show the canonical steps and diagnostics.

Nothing is sent to the node. Use it to see how loose YAML and unknown step
names were interpreted.`,
		Example: `  catapult parse counter
  catapult parse --yaml "name: x
steps:
  - mine_blocks: 5"`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			var params usecase.ParseScenarioParams
			if err := resolveScenarioSource(cmd, args, inline, &params.Path, &params.YAML); err != nil {
				return err
			}

			result, err := app.ParseScenario.Execute(cmd.Context(), params)
			if err != nil {
				return err
			}

			if app.Config.JSON {
				return render.NewJSONRenderer[*domain.ParsedScenario](cmd.OutOrStdout()).Render(result.Parsed)
			}
			return render.NewScenarioRenderer(cmd.OutOrStdout(), false).RenderParse(result)
		},
	}

	cmd.Flags().StringVar(&inline, "yaml", "", "Inline scenario YAML")

	return cmd
}
