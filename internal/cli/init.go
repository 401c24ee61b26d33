package cli

import (
	"github.com/spf13/cobra"
	"github.com/trebuchet-org/catapult/internal/cli/render"
)

// NewInitCmd creates the init command
func NewInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize catapult in a project",
		Long: `Create the .catapult data directory, the scenarios directory, an example
scenario and a .env.example. Existing files are left untouched.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			renderer := render.NewInitRenderer(cmd.OutOrStdout())
			result, err := app.InitProject.Execute(cmd.Context())
			if err != nil {
				// Still render partial results even on error
				if result != nil {
					_ = renderer.Render(result)
				}
				return err
			}

			return renderer.Render(result)
		},
	}
}
