package app

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/logiflow-io/logiflow/internal/geohub/core/model"
)

func newStatusCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status <vehicle-id> <status>",
		Short: "Change the status of a vehicle",
		Long: `Change the status of a vehicle. The hub enforces the allowed transitions,
so for example a vehicle in maintenance must return to idle before it can
become active again.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var v model.Vehicle
			client := newAPIClient(opts.server)
			path := "/api/v1/vehicles/" + url.PathEscape(args[0]) + "/status"
			body := map[string]string{"status": args[1]}
			if err := client.patch(cmd.Context(), path, body, &v); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "vehicle %s is now %s\n", v.ID, v.Status)

			return nil
		},
	}

	return cmd
}
