package main

import (
	"context"
	"io"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/placelookup/internal/place"
)

var (
	searchLimit  int
	searchEPSG   string
	searchFormat string
)

var searchCmd = &cobra.Command{
	Use:   "search <name>",
	Short: "Find places by name",
	Long:  "Searches the place-name register and prints a GeoJSON FeatureCollection, each feature enriched with its elevation.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("lookup"); err != nil {
			return err
		}
		if searchLimit < 0 {
			return eris.New("search: --limit must be >= 0")
		}
		svc := newService(cfg, nil, nil)
		return runSearch(cmd.Context(), cmd.OutOrStdout(), svc, strings.Join(args, " "),
			place.NameOptions{Limit: searchLimit, EPSG: searchEPSG}, searchFormat)
	},
}

func runSearch(ctx context.Context, w io.Writer, svc *place.Service, query string, opts place.NameOptions, format string) error {
	fc := svc.SearchByName(ctx, query, opts)
	return writeResult(w, fc, format)
}

func init() {
	searchCmd.Flags().IntVar(&searchLimit, "limit", 0, "maximum number of results (default from config)")
	searchCmd.Flags().StringVar(&searchEPSG, "epsg", "", "output coordinate reference system (default from config)")
	searchCmd.Flags().StringVar(&searchFormat, "format", "json", "output format: json or yaml")
	rootCmd.AddCommand(searchCmd)
}
