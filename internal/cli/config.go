package cli

import (
	"github.com/spf13/cobra"
	"github.com/trebuchet-org/catapult/internal/cli/render"
	"github.com/trebuchet-org/catapult/internal/usecase"
)

// NewConfigCmd creates the config command
func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage catapult local config",
		Long: `Manage catapult local config stored in .catapult/config.local.json

The config holds defaults used when flags and CATAPULT_* environment
variables don't set a value.

Available subcommands:
  config           Show current config
  config set       Set a config value
  config remove    Remove a config value

When run without subcommands, displays the current config.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfig(cmd)
		},
	}

	cmd.AddCommand(NewConfigSetCmd())
	cmd.AddCommand(NewConfigRemoveCmd())

	return cmd
}

// NewConfigSetCmd creates the config set subcommand
func NewConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a config value",
		Long: `Set a config value in .catapult/config.local.json.
Available keys: network, rpc_url (rpc), deploy_address_policy (policy),
scenarios_dir, rpc_timeout

Examples:
  catapult config set rpc http://127.0.0.1:9545
  catapult config set policy strict
  catapult config set rpc_timeout 1m`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			result, err := app.SetConfig.Run(cmd.Context(), usecase.SetConfigParams{
				Key:   args[0],
				Value: args[1],
			})
			if err != nil {
				return err
			}

			return render.NewConfigRenderer(cmd.OutOrStdout()).RenderSet(result)
		},
	}
}

// NewConfigRemoveCmd creates the config remove subcommand
func NewConfigRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <key>",
		Short: "Remove a config value",
		Long: `Remove a config value from .catapult/config.local.json.
The value falls back to the environment or the built-in default.

Examples:
  catapult config remove network
  catapult config remove policy`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			result, err := app.RemoveConfig.Run(cmd.Context(), usecase.RemoveConfigParams{
				Key: args[0],
			})
			if err != nil {
				return err
			}

			return render.NewConfigRenderer(cmd.OutOrStdout()).RenderRemove(result)
		},
	}
}

// showConfig displays the current configuration
func showConfig(cmd *cobra.Command) error {
	app, err := getApp(cmd)
	if err != nil {
		return err
	}

	result, err := app.ShowConfig.Run(cmd.Context())
	if err != nil {
		return err
	}

	return render.NewConfigRenderer(cmd.OutOrStdout()).RenderConfig(result)
}
