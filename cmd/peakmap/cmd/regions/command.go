// Package regions provides the regions command.
package regions

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/peakmap/cmd/application"
	"github.com/agentstation/peakmap/internal/cmd/output"
	"github.com/agentstation/peakmap/internal/cmd/table"
	"github.com/agentstation/peakmap/pkg/catalog"
	"github.com/agentstation/peakmap/pkg/errors"
	"github.com/agentstation/peakmap/pkg/regions"
)

// Flags holds the flags of the regions command.
type Flags struct {
	Lon float64
	Lat float64
}

// Assignment is the region found for a point.
type Assignment struct {
	Longitude float64 `json:"longitude" yaml:"longitude"`
	Latitude  float64 `json:"latitude" yaml:"latitude"`
	RegionID  string  `json:"region_id" yaml:"region_id"`
}

// NewCommand creates the regions command.
func NewCommand(app application.Application) *cobra.Command {
	flags := &Flags{}

	cmd := &cobra.Command{
		Use:     "regions",
		GroupID: "inspect",
		Short:   "List regions or find the region of a point",
		Long: `Regions loads the region boundaries, computes which regions are shadowed
by smaller regions inside them and lists every region in id order.

With --lon and --lat it prints the first region not shadowed that
contains the point instead.`,
		Example: `  peakmap regions --regions himal.geojson
  peakmap regions --lon 86.8612 --lat 27.8617`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := app.Client()
			if err != nil {
				return err
			}
			set, err := client.Regions(cmd.Context())
			if err != nil {
				return err
			}

			lonSet, latSet := cmd.Flags().Changed("lon"), cmd.Flags().Changed("lat")
			if lonSet != latSet {
				return &errors.ValidationError{Field: "lon/lat", Message: "give both --lon and --lat"}
			}
			if lonSet {
				return assign(cmd, app, set, flags)
			}
			return output.Render(cmd.OutOrStdout(), app.OutputFormat(), table.Regions(set), set.Regions())
		},
	}

	cmd.Flags().Float64Var(&flags.Lon, "lon", 0, "longitude of the point to assign")
	cmd.Flags().Float64Var(&flags.Lat, "lat", 0, "latitude of the point to assign")

	return cmd
}

func assign(cmd *cobra.Command, app application.Application, set *regions.Set, flags *Flags) error {
	id, ok := set.Assign(flags.Lon, flags.Lat)
	if !ok {
		return errors.NewNotFoundError("region for point", catalog.Decimal(flags.Lon)+","+catalog.Decimal(flags.Lat))
	}
	a := Assignment{Longitude: flags.Lon, Latitude: flags.Lat, RegionID: id}
	tbl := table.Data{
		Headers: []string{"Longitude", "Latitude", "Region"},
		Rows:    [][]string{{catalog.Decimal(a.Longitude), catalog.Decimal(a.Latitude), a.RegionID}},
	}
	return output.Render(cmd.OutOrStdout(), app.OutputFormat(), tbl, a)
}
