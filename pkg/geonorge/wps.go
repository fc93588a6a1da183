package geonorge

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/rotisserie/eris"
)

// WPSElevationClient looks up terrain height through the legacy WPS
// elevation process. Besides the height it reports the nearest named place.
type WPSElevationClient struct {
	base
}

// NewWPSElevationClient creates a legacy WPS elevation client.
func NewWPSElevationClient(opts ...Option) *WPSElevationClient {
	return &WPSElevationClient{base: newBase("wps-elevation", DefaultWPSURL, opts)}
}

type wpsOutput struct {
	Identifier string `xml:"Identifier"`
	Title      string `xml:"Title"`
	Literal    string `xml:"Data>LiteralData"`
}

// Elevation returns the height at p together with the nearest site.
func (c *WPSElevationClient) Elevation(ctx context.Context, p Point) (*Elevation, error) {
	params := url.Values{
		"request":    {"Execute"},
		"service":    {"WPS"},
		"version":    {"1.0.0"},
		"identifier": {"elevation"},
		"datainputs": {fmt.Sprintf("lat=%s;lon=%s;epsg=%s", formatFloat(p.North), formatFloat(p.East), p.epsg())},
	}

	body, err := c.get(ctx, "", params)
	if err != nil {
		return nil, err
	}

	outputs, err := decodeElements[wpsOutput](body, "Output")
	if err != nil {
		return nil, c.malformed(eris.Wrap(err, "geonorge: wps parse response"))
	}
	if len(outputs) == 0 {
		return nil, c.malformed(eris.New("geonorge: wps response has no process outputs"))
	}

	elev := &Elevation{}
	for _, o := range outputs {
		key := o.Title
		if key == "" {
			key = o.Identifier
		}
		value := strings.TrimSpace(o.Literal)
		switch strings.ToLower(strings.TrimSpace(key)) {
		case "elevation":
			elev.Literal = value
		case "placename":
			elev.SiteName = noneToEmpty(value)
		case "stedsnummer":
			elev.SiteID = noneToEmpty(value)
		}
	}
	return elev, nil
}

// noneToEmpty maps the service's "None" placeholder to the empty string.
// Elevation literals keep "None" so callers can tell it from a number.
func noneToEmpty(s string) string {
	if s == "None" {
		return ""
	}
	return s
}
