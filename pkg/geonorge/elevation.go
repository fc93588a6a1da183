package geonorge

import (
	"bytes"
	"context"
	"encoding/json"
	"net/url"
	"strconv"

	"github.com/rotisserie/eris"
)

// Elevation is the raw answer of an elevation lookup. Literal carries the
// height exactly as the service sent it ("" when it sent nothing, "None" on
// the legacy service when the point has no height). SiteID and SiteName are
// only filled by the legacy service, which also reports the nearest named
// place.
type Elevation struct {
	Literal  string
	SiteID   string
	SiteName string
}

// ElevationClient looks up terrain height through the hoydedata API.
type ElevationClient struct {
	base
}

// NewElevationClient creates a hoydedata client.
func NewElevationClient(opts ...Option) *ElevationClient {
	return &ElevationClient{base: newBase("hoydedata", DefaultElevationURL, opts)}
}

type hoydedataResponse struct {
	Punkter []struct {
		X         float64         `json:"x"`
		Y         float64         `json:"y"`
		Z         json.RawMessage `json:"z"`
		Datakilde string          `json:"datakilde"`
		Terreng   string          `json:"terreng"`
	} `json:"punkter"`
}

// Elevation returns the height at p.
func (c *ElevationClient) Elevation(ctx context.Context, p Point) (*Elevation, error) {
	params := url.Values{
		"nord":     {formatFloat(p.North)},
		"ost":      {formatFloat(p.East)},
		"koordsys": {p.epsg()},
	}

	body, err := c.get(ctx, "/punkt", params)
	if err != nil {
		return nil, err
	}

	var resp hoydedataResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, c.malformed(eris.Wrap(err, "geonorge: hoydedata parse response"))
	}
	if len(resp.Punkter) == 0 {
		return nil, c.empty()
	}

	return &Elevation{Literal: rawLiteral(resp.Punkter[0].Z)}, nil
}

// rawLiteral turns a JSON scalar into its text: strings are unquoted, null
// and missing values become "".
func rawLiteral(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
