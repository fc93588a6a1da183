package geonorge

import (
	"context"
	"encoding/json"
	"net/url"

	"github.com/rotisserie/eris"
)

// Municipality is the administrative unit containing a point.
type Municipality struct {
	County             string
	CountyNumber       string
	Municipality       string
	MunicipalityNumber string
}

// MunicipalityClient queries the kommuneinfo API.
type MunicipalityClient struct {
	base
}

// NewMunicipalityClient creates a kommuneinfo client.
func NewMunicipalityClient(opts ...Option) *MunicipalityClient {
	return &MunicipalityClient{base: newBase("kommuneinfo", DefaultMunicipalityURL, opts)}
}

type kommuneinfoResponse struct {
	Fylkesnavn    string     `json:"fylkesnavn"`
	Fylkesnummer  flexString `json:"fylkesnummer"`
	Kommunenavn   string     `json:"kommunenavn"`
	Kommunenummer flexString `json:"kommunenummer"`
}

// Municipality returns the county and municipality containing p.
func (c *MunicipalityClient) Municipality(ctx context.Context, p Point) (*Municipality, error) {
	params := url.Values{
		"nord":     {formatFloat(p.North)},
		"ost":      {formatFloat(p.East)},
		"koordsys": {p.epsg()},
	}

	body, err := c.get(ctx, "/punkt", params)
	if err != nil {
		return nil, err
	}

	var resp kommuneinfoResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, c.malformed(eris.Wrap(err, "geonorge: kommuneinfo parse response"))
	}
	if resp.Fylkesnavn == "" && resp.Kommunenavn == "" {
		return nil, c.empty()
	}

	return &Municipality{
		County:             resp.Fylkesnavn,
		CountyNumber:       string(resp.Fylkesnummer),
		Municipality:       resp.Kommunenavn,
		MunicipalityNumber: string(resp.Kommunenummer),
	}, nil
}
