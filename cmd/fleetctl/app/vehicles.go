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

type vehicleListResult struct {
	Vehicles   []*model.Vehicle `json:"vehicles"`
	Pagination struct {
		Total  int `json:"total"`
		Limit  int `json:"limit"`
		Offset int `json:"offset"`
	} `json:"pagination"`
}

func newVehiclesCommand(opts *rootOptions) *cobra.Command {
	var (
		status   string
		category string
		limit    int
		offset   int
	)

	cmd := &cobra.Command{
		Use:   "vehicles",
		Short: "List fleet vehicles and their live state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			q := url.Values{}
			if status != "" {
				q.Set("status", status)
			}
			if category != "" {
				q.Set("category", category)
			}
			q.Set("limit", strconv.Itoa(limit))
			q.Set("offset", strconv.Itoa(offset))

			var result vehicleListResult
			client := newAPIClient(opts.server)
			if err := client.get(cmd.Context(), "/api/v1/vehicles", q, &result); err != nil {
				return err
			}

			table := uitable.New()
			table.MaxColWidth = 40
			table.AddRow("ID", "NAME", "CATEGORY", "STATUS", "LAT", "LNG", "SPEED", "FUEL", "UPDATED")
			for _, v := range result.Vehicles {
				table.AddRow(
					v.ID,
					v.Name,
					string(v.Category),
					string(v.Status),
					fmt.Sprintf("%.5f", v.Lat),
					fmt.Sprintf("%.5f", v.Lng),
					fmt.Sprintf("%.1f km/h", v.Speed),
					fmt.Sprintf("%.1f%%", v.Fuel),
					v.UpdatedAt.Format(time.RFC3339),
				)
			}
			fmt.Fprintln(cmd.OutOrStdout(), table)
			fmt.Fprintf(cmd.OutOrStdout(), "\nShowing %d of %d vehicles (offset %d)\n",
				len(result.Vehicles), result.Pagination.Total, result.Pagination.Offset)

			return nil
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "Filter by status (active, idle, maintenance, offline).")
	cmd.Flags().StringVar(&category, "category", "", "Filter by category (delivery, courier, refrigerated).")
	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum number of vehicles to return.")
	cmd.Flags().IntVar(&offset, "offset", 0, "Number of vehicles to skip.")

	return cmd
}
