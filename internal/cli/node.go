package cli

import (
	"github.com/spf13/cobra"
	"github.com/trebuchet-org/catapult/internal/cli/render"
	"github.com/trebuchet-org/catapult/internal/usecase"
)

// NewNodeCmd creates the node command with subcommands
func NewNodeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "node",
		Short: "Manage the local anvil node",
		Long: `Manage a local anvil node for running scenarios.

The pid and log files live in .catapult/. Defaults come from node.name,
node.port and node.chain_id in the config.`,
	}

	cmd.AddCommand(newNodeOpCmd("start", "Start the local node", "Start a local anvil node. Fails if it is already running."))
	cmd.AddCommand(newNodeOpCmd("stop", "Stop the local node", "Stop the local anvil node if running."))
	cmd.AddCommand(newNodeOpCmd("restart", "Restart the local node", "Stop the local anvil node if running and start it again."))
	cmd.AddCommand(newNodeOpCmd("status", "Show node status", "Show the status of the local anvil node and whether its RPC answers."))
	cmd.AddCommand(newNodeOpCmd("logs", "Follow node logs", "Follow the log of the local anvil node until interrupted."))

	return cmd
}

// nodeFlags holds common flags for node commands
type nodeFlags struct {
	name    string
	port    string
	chainID string
	forkURL string
}

func newNodeOpCmd(operation, short, long string) *cobra.Command {
	flags := &nodeFlags{}

	cmd := &cobra.Command{
		Use:   operation,
		Short: short,
		Long:  long,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNodeCommand(cmd, operation, flags)
		},
	}

	cmd.Flags().StringVar(&flags.name, "name", "", "Instance name (defaults to node.name)")
	cmd.Flags().StringVar(&flags.port, "port", "", "RPC port to bind (defaults to node.port)")
	if operation == "start" || operation == "restart" {
		cmd.Flags().StringVar(&flags.chainID, "chain-id", "", "Chain ID for the instance")
		cmd.Flags().StringVar(&flags.forkURL, "fork-url", "", "Fork state from this RPC URL")
	}
	return cmd
}

// runNodeCommand executes a node management operation
func runNodeCommand(cmd *cobra.Command, operation string, flags *nodeFlags) error {
	app, err := getApp(cmd)
	if err != nil {
		return err
	}

	renderer := render.NewNodeRenderer(cmd.OutOrStdout())
	params := usecase.ManageNodeParams{
		Operation: operation,
		Name:      flags.name,
		Port:      flags.port,
		ChainID:   flags.chainID,
		ForkURL:   flags.forkURL,
	}

	if operation == "logs" {
		name := flags.name
		if name == "" {
			name = app.Config.Node.Name
		}
		renderer.RenderLogsHeader(name)
		params.LogWriter = cmd.OutOrStdout()
	}

	result, err := app.ManageNode.Execute(cmd.Context(), params)
	if err != nil {
		return err
	}

	if app.Config.JSON && operation != "logs" {
		return render.NewJSONRenderer[*usecase.ManageNodeResult](cmd.OutOrStdout()).Render(result)
	}
	return renderer.Render(result)
}
