package main

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/sells-group/placelookup/internal/place"
)

var (
	pointLat    float64
	pointLon    float64
	pointEPSG   string
	pointFormat string
)

var pointCmd = &cobra.Command{
	Use:   "point",
	Short: "Describe the place at a coordinate",
	Long:  "Looks up elevation, county, municipality and the nearest named place for a coordinate and prints a GeoJSON Feature (null when the lookup fails).",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("lookup"); err != nil {
			return err
		}
		svc := newService(cfg, nil, nil)
		return runPoint(cmd.Context(), cmd.OutOrStdout(), svc,
			place.Coordinate{Latitude: pointLat, Longitude: pointLon}, pointEPSG, pointFormat)
	},
}

func runPoint(ctx context.Context, w io.Writer, svc *place.Service, coord place.Coordinate, epsg, format string) error {
	f := svc.SearchByCoordinates(ctx, coord, place.CoordinateOptions{EPSG: epsg})
	return writeResult(w, f, format)
}

func init() {
	pointCmd.Flags().Float64Var(&pointLat, "lat", 0, "latitude (north)")
	pointCmd.Flags().Float64Var(&pointLon, "lon", 0, "longitude (east)")
	pointCmd.Flags().StringVar(&pointEPSG, "epsg", "", "coordinate reference system (default from config)")
	pointCmd.Flags().StringVar(&pointFormat, "format", "json", "output format: json or yaml")
	_ = pointCmd.MarkFlagRequired("lat")
	_ = pointCmd.MarkFlagRequired("lon")
	rootCmd.AddCommand(pointCmd)
}
