package cli

import (
	"github.com/spf13/cobra"
	"github.com/trebuchet-org/catapult/internal/cli/render"
	"github.com/trebuchet-org/catapult/internal/usecase"
)

// NewSaveCmd creates the save command
func NewSaveCmd() *cobra.Command {
	var (
		inline    string
		name      string
		overwrite bool
	)

	cmd := &cobra.Command{
		Use:   "save [file|-]",
		Short: "Validate a scenario and store it in the scenarios directory",
		Long: `Validate a scenario by parsing it and store it as
scenarios/<name>.yaml. The name defaults to the scenario's name field and
the content is stored as written.`,
		Example: `  catapult save ./drafts/counter.yaml
  pbpaste | catapult save - --name counter-smoke`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			var path string
			params := usecase.SaveScenarioParams{Name: name, Overwrite: overwrite}
			if err := resolveScenarioSource(cmd, args, inline, &path, &params.YAML); err != nil {
				return err
			}
			if path != "" {
				parsed, err := app.ParseScenario.Execute(cmd.Context(), usecase.ParseScenarioParams{Path: path})
				if err != nil {
					return err
				}
				params.YAML = parsed.Source
			}

			result, err := app.SaveScenario.Execute(cmd.Context(), params)
			if err != nil {
				return err
			}
			return render.NewFilesRenderer(cmd.OutOrStdout()).RenderSave(result)
		},
	}

	cmd.Flags().StringVar(&inline, "yaml", "", "Inline scenario YAML")
	cmd.Flags().StringVar(&name, "name", "", "File name (defaults to the scenario name)")
	cmd.Flags().BoolVar(&overwrite, "force", false, "Overwrite an existing scenario file")

	return cmd
}
