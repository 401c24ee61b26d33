package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/trebuchet-org/catapult/internal/cli/render"
	"github.com/trebuchet-org/catapult/internal/usecase"
)

// NewTemplateCmd creates the template command
func NewTemplateCmd() *cobra.Command {
	var (
		scenarioType string
		abiFile      string
		save         bool
		overwrite    bool
	)

	cmd := &cobra.Command{
		Use:   "template <contract>",
		Short: "Generate a starter scenario for a contract",
		Long: `Generate a starter scenario from a contract ABI.

The ABI comes from the compiled artifact in the foundry output directory
(running forge build when needed) or from --abi. The template deploys the
contract, sends its first state-changing function and calls its first
view, and lists scenario ideas based on the functions it finds.`,
		Example: `  # Print a template for Counter
  catapult template Counter

  # Save it to scenarios/stress-counter.yaml
  catapult template Counter --type stress --save

  # Use an ABI file outside a Foundry project
  catapult template Token --abi ./Token.abi.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			params := usecase.CreateScenarioTemplateParams{
				Contract:     args[0],
				ScenarioType: scenarioType,
				Save:         save,
				Overwrite:    overwrite,
			}
			if abiFile != "" {
				data, err := os.ReadFile(abiFile)
				if err != nil {
					return fmt.Errorf("failed to read ABI file: %w", err)
				}
				params.ABI = data
			}

			result, err := app.CreateScenarioTemplate.Execute(cmd.Context(), params)
			if err != nil {
				return err
			}

			if app.Config.JSON {
				return render.NewJSONRenderer[*templateOutput](cmd.OutOrStdout()).Render(&templateOutput{
					YAML:     result.YAML,
					Analysis: result.Analysis,
					Path:     result.Path,
				})
			}
			return render.NewFilesRenderer(cmd.OutOrStdout()).RenderTemplate(result)
		},
	}

	cmd.Flags().StringVar(&scenarioType, "type", usecase.DefaultScenarioType, "Scenario type used in the template name")
	cmd.Flags().StringVar(&abiFile, "abi", "", "Read the ABI from a JSON file instead of the artifact")
	cmd.Flags().BoolVar(&save, "save", false, "Save the template to the scenarios directory")
	cmd.Flags().BoolVar(&overwrite, "force", false, "Overwrite an existing scenario file")

	return cmd
}

type templateOutput struct {
	YAML     string `json:"yaml"`
	Analysis any    `json:"analysis"`
	Path     string `json:"path,omitempty"`
}
