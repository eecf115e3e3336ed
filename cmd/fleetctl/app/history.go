package app

import (
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"github.com/logiflow-io/logiflow/internal/geohub/core/model"
)

func newHistoryCommand(opts *rootOptions) *cobra.Command {
	var (
		limit int
		from  string
		to    string
	)

	cmd := &cobra.Command{
		Use:   "history <vehicle-id>",
		Short: "Show the recorded position history of a vehicle, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q := url.Values{}
			q.Set("limit", strconv.Itoa(limit))
			if from != "" {
				q.Set("from", from)
			}
			if to != "" {
				q.Set("to", to)
			}

			var samples []model.PositionSample
			client := newAPIClient(opts.server)
			path := "/api/v1/vehicles/" + url.PathEscape(args[0]) + "/history"
			if err := client.get(cmd.Context(), path, q, &samples); err != nil {
				return err
			}

			table := uitable.New()
			table.AddRow("TIMESTAMP", "LAT", "LNG", "SPEED", "HEADING")
			for _, s := range samples {
				heading := "-"
				if s.Heading != nil {
					heading = fmt.Sprintf("%.1f", *s.Heading)
				}
				table.AddRow(
					s.Timestamp.Format(time.RFC3339),
					fmt.Sprintf("%.5f", s.Lat),
					fmt.Sprintf("%.5f", s.Lng),
					fmt.Sprintf("%.1f km/h", s.Speed),
					heading,
				)
			}
			fmt.Fprintln(cmd.OutOrStdout(), table)

			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of samples to return.")
	cmd.Flags().StringVar(&from, "from", "", "Only include samples at or after this RFC3339 timestamp.")
	cmd.Flags().StringVar(&to, "to", "", "Only include samples at or before this RFC3339 timestamp.")

	return cmd
}
