package app

import (
	"github.com/spf13/cobra"
)

const defaultServer = "http://localhost:8080"

type rootOptions struct {
	server string
}

// NewFleetCommand builds the fleetctl command tree.
func NewFleetCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "fleetctl",
		Short: "Inspect and control a LogiFlow fleet",
		Long: `fleetctl talks to a running geo hub over its REST API. It lists live
vehicle state, dumps recorded position history, and changes vehicle status.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.server, "server", "s", defaultServer,
		"Base URL of the geo hub API.")

	cmd.AddCommand(
		newVehiclesCommand(opts),
		newHistoryCommand(opts),
		newStatusCommand(opts),
	)

	return cmd
}
