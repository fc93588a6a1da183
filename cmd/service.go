package main

import (
	"net/http"
	"time"

	"github.com/sells-group/placelookup/internal/config"
	"github.com/sells-group/placelookup/internal/place"
	"github.com/sells-group/placelookup/pkg/geonorge"
)

// buildSources creates the Geonorge clients selected by the configuration.
// All clients share one HTTP client.
func buildSources(gc config.GeonorgeConfig, httpClient *http.Client) place.Sources {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: time.Duration(gc.TimeoutSecs) * time.Second}
	}
	common := []geonorge.Option{
		geonorge.WithHTTPClient(httpClient),
		geonorge.WithUserAgent(gc.UserAgent),
	}
	with := func(baseURL string) []geonorge.Option {
		return append(append([]geonorge.Option{}, common...), geonorge.WithBaseURL(baseURL))
	}

	src := place.Sources{
		AdminUnits: geonorge.NewMunicipalityClient(with(gc.MunicipalityURL)...),
	}

	switch gc.ElevationBackend {
	case config.ElevationWPS:
		src.Elevation = geonorge.NewWPSElevationClient(with(gc.WPSURL)...)
	default:
		src.Elevation = geonorge.NewElevationClient(with(gc.ElevationURL)...)
	}

	switch gc.PlacesBackend {
	case config.PlacesSSR:
		src.Places = geonorge.NewSSRClient(with(gc.SSRURL), geonorge.WithSSRRadius(gc.SSRRadiusDeg))
	default:
		src.Places = geonorge.NewPlacesClient(with(gc.PlacesURL)...)
	}

	return src
}

// newService wires the lookup service from the configuration. A nil
// observer disables lookup metrics.
func newService(c *config.Config, httpClient *http.Client, observer place.Observer) *place.Service {
	return place.NewService(buildSources(c.Geonorge, httpClient),
		place.WithDefaultEPSG(c.Geonorge.EPSG),
		place.WithSearchLimit(c.Search.DefaultLimit),
		place.WithEnrichConcurrency(c.Search.EnrichConcurrency),
		place.WithDiagnostics(!c.App.Production()),
		place.WithObserver(observer),
	)
}
