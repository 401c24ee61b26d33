package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/trebuchet-org/catapult/internal/adapters/progress"
	"github.com/trebuchet-org/catapult/internal/app"
	"github.com/trebuchet-org/catapult/internal/config"
	"github.com/trebuchet-org/catapult/internal/usecase"
)

// contextKey is the type for context keys
type contextKey string

const (
	// appKey is the context key for the app instance
	appKey contextKey = "app"
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "catapult",
		Short: "Scenario engine for smart contracts on local dev nodes",
		Long: `Catapult runs YAML scenarios against a local development node.

Scenarios declare roles, deploy contracts, send transactions, make calls and
assert on the results. Loose YAML is repaired and unknown step names are
mapped onto the closest known step kind.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Skip for help/version commands
			if !needsApp(cmd) {
				return nil
			}

			projectRoot, err := config.FindProjectRoot()
			if err != nil {
				return err
			}

			v := config.SetupViper(projectRoot, cmd)

			appInstance, err := app.InitApp(v, newProgressSink(v.GetBool("json"), v.GetBool("non_interactive")))
			if err != nil {
				return fmt.Errorf("failed to initialize app: %w", err)
			}

			ctx := context.WithValue(cmd.Context(), appKey, appInstance)
			cmd.SetContext(ctx)

			return nil
		},
	}

	// Global flags
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug output")
	rootCmd.PersistentFlags().Bool("non-interactive", false, "Disable interactive prompts")
	rootCmd.PersistentFlags().Bool("json", false, "Output in JSON format")
	rootCmd.PersistentFlags().StringP("network", "n", "", "Network from foundry.toml [rpc_endpoints] or an RPC URL")
	rootCmd.PersistentFlags().String("rpc-url", "", "RPC URL of the development node")

	rootCmd.AddGroup(&cobra.Group{
		ID:    "main",
		Title: "Scenario Commands",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "management",
		Title: "Management Commands",
	})

	for _, cmd := range []*cobra.Command{
		NewRunCmd(),
		NewParseCmd(),
		NewListCmd(),
		NewTemplateCmd(),
		NewSaveCmd(),
	} {
		cmd.GroupID = "main"
		rootCmd.AddCommand(cmd)
	}

	for _, cmd := range []*cobra.Command{
		NewNodeCmd(),
		NewConfigCmd(),
		NewInitCmd(),
		NewServeCmd(),
	} {
		cmd.GroupID = "management"
		rootCmd.AddCommand(cmd)
	}

	rootCmd.AddCommand(NewVersionCmd())

	return rootCmd
}

// needsApp reports whether a command runs use cases
func needsApp(cmd *cobra.Command) bool {
	switch cmd.Name() {
	case "version", "help", "completion", "__complete":
		return false
	}
	return cmd.Runnable()
}

// newProgressSink shows a spinner unless output must stay machine readable
func newProgressSink(jsonOutput, nonInteractive bool) usecase.ProgressSink {
	if jsonOutput || nonInteractive {
		return progress.NewNopSink()
	}
	return progress.NewSpinnerProgressReporter()
}

// getApp retrieves the app instance from the command context
func getApp(cmd *cobra.Command) (*app.App, error) {
	appInstance := cmd.Context().Value(appKey)
	if appInstance == nil {
		return nil, fmt.Errorf("app not initialized")
	}

	app, ok := appInstance.(*app.App)
	if !ok {
		return nil, fmt.Errorf("invalid app instance")
	}

	return app, nil
}
