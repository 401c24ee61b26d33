package cli

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/trebuchet-org/catapult/internal/cli/render"
	"github.com/trebuchet-org/catapult/internal/domain"
	"github.com/trebuchet-org/catapult/internal/usecase"
)

// NewRunCmd creates the run command
func NewRunCmd() *cobra.Command {
	var (
		inline  string
		verbose bool
	)

	cmd := &cobra.Command{
		Use:   "run [scenario]",
		Short: "Run a scenario against the development node",
		Long: `Run a scenario against the development node.

The scenario is a file path, a name from the scenarios directory, "-" for
stdin, or inline YAML passed with --yaml. Without any of these an
interactive picker lists the stored scenarios.

A local node on the configured RPC URL is started automatically when none
is answering (disable with CATAPULT_AUTO_START_NODE=false).`,
		Example: `  # Run a stored scenario by name
  catapult run counter

  # Run from stdin against another node
  cat scenario.yaml | catapult run - --rpc-url http://127.0.0.1:9545

  # Fail deploy steps whose address can't be determined
  catapult run counter --deploy-address-policy strict --trace`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			params := usecase.RunScenarioParams{
				RPCURL:              app.Config.RPCURL,
				DeployAddressPolicy: app.Config.DeployAddressPolicy,
				WriteTrace:          app.Config.WriteTrace,
			}
			if err := resolveScenarioSource(cmd, args, inline, &params.Path, &params.YAML); err != nil {
				return err
			}

			result, err := app.RunScenario.Execute(cmd.Context(), params)
			if err != nil {
				return err
			}

			if app.Config.JSON {
				if err := render.NewJSONRenderer[*domain.ExecutionResult](cmd.OutOrStdout()).Render(result.Result); err != nil {
					return err
				}
			} else {
				renderer := render.NewScenarioRenderer(cmd.OutOrStdout(), verbose)
				if err := renderer.RenderRun(result); err != nil {
					return err
				}
			}

			if !result.Result.Success {
				return fmt.Errorf("scenario '%s' failed", result.Result.ScenarioName)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&inline, "yaml", "", "Inline scenario YAML")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Show step outputs and all symbols")
	cmd.Flags().String("deploy-address-policy", "", "What to do when a deploy address can't be determined (placeholder, strict)")
	cmd.Flags().Bool("trace", false, "Write a JSONL trace to .catapult/runs")
	cmd.Flags().Duration("timeout", 0, "Override the scenario timeout")

	return cmd
}

// resolveScenarioSource picks the scenario from args, --yaml, stdin or the picker
func resolveScenarioSource(cmd *cobra.Command, args []string, inline string, path, text *string) error {
	switch {
	case inline != "":
		*text = inline
		return nil
	case len(args) == 1 && args[0] == "-":
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("failed to read scenario from stdin: %w", err)
		}
		*text = string(data)
		return nil
	case len(args) == 1:
		*path = args[0]
		return nil
	}

	app, err := getApp(cmd)
	if err != nil {
		return err
	}
	list, err := app.ListScenarios.Execute(cmd.Context())
	if err != nil {
		return err
	}
	files := make([]usecase.ScenarioFile, 0, len(list.Scenarios))
	for _, s := range list.Scenarios {
		files = append(files, usecase.ScenarioFile{Name: strings.TrimSuffix(s.File, filepath.Ext(s.File)), Path: s.Path})
	}

	selected, err := app.Selector.SelectScenario(cmd.Context(), files, "Select scenario")
	if err != nil {
		return err
	}
	*path = selected.Path
	return nil
}
