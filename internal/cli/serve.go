package cli

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/trebuchet-org/catapult/internal/config"
	"github.com/trebuchet-org/catapult/internal/server"
)

// NewServeCmd creates the serve command
func NewServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the scenario API over HTTP",
		Long: `Serve scenario parsing and execution over HTTP.

Routes:
  GET  /health
  GET  /v1/scenarios
  POST /v1/scenarios/parse   {"path": "...", "yaml": "..."}
  POST /v1/scenarios/run     {"path": "...", "yaml": "...", "rpcUrl": "...",
                              "deployAddressPolicy": "strict", "trace": true}`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			srv := server.New(app.RunScenario, app.ParseScenario, app.ListScenarios, app.Log, config.Version)
			fmt.Fprintf(cmd.OutOrStdout(), "🚀 catapult API listening on %s\n", addr)
			return srv.Listen(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8700", "Address to listen on")

	return cmd
}
