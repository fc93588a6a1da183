package geonorge

import (
	"bytes"
	"context"
	"encoding/json"
	"net/url"
	"strconv"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Place is one place-name record as returned by a place service.
type Place struct {
	ID           string
	TypeCode     string
	North        float64
	East         float64
	County       string
	Municipality string
	Names        []Name
}

// Name is one recorded spelling of a place name.
type Name struct {
	Text           string
	Language       string
	SpellingStatus string // "godkjent og prioritert", "vedtatt", ...
	NameStatus     string // "hovednavn", "sidenavn", ...
}

// DefaultSearchLimit is the page size used when a NameQuery has no limit.
const DefaultSearchLimit = 10

// NameQuery is a name search.
type NameQuery struct {
	Text  string
	Limit int
	EPSG  string
}

// PlacesClient queries the stedsnavn API.
type PlacesClient struct {
	base
	nearLimit int
}

// NewPlacesClient creates a stedsnavn client.
func NewPlacesClient(opts ...Option) *PlacesClient {
	return &PlacesClient{base: newBase("stedsnavn", DefaultPlacesURL, opts), nearLimit: 15}
}

const searchFilter = "navn.representasjonspunkt,navn.stedsnummer,navn.navneobjekttype,navn.fylker,navn.kommuner,navn.stedsnavn"

type stedsnavnResponse struct {
	Navn []json.RawMessage `json:"navn"`
}

type stedsnavnPlace struct {
	Stedsnummer     flexString `json:"stedsnummer"`
	Navneobjekttype string     `json:"navneobjekttype"`
	Fylker          []struct {
		Fylkesnavn   string     `json:"fylkesnavn"`
		Fylkesnummer flexString `json:"fylkesnummer"`
	} `json:"fylker"`
	Kommuner []struct {
		Kommunenavn   string     `json:"kommunenavn"`
		Kommunenummer flexString `json:"kommunenummer"`
	} `json:"kommuner"`
	Representasjonspunkt *struct {
		Ost  *flexFloat `json:"øst"`
		Nord *flexFloat `json:"nord"`
	} `json:"representasjonspunkt"`
	Stedsnavn []struct {
		Skrivemate       string `json:"skrivemåte"`
		Skrivematestatus string `json:"skrivemåtestatus"`
		Navnestatus      string `json:"navnestatus"`
		Sprak            string `json:"språk"`
	} `json:"stedsnavn"`
}

// PlacesNear returns the places registered around p, as ordered by the service.
func (c *PlacesClient) PlacesNear(ctx context.Context, p Point) ([]Place, error) {
	params := url.Values{
		"nord":         {formatFloat(p.North)},
		"ost":          {formatFloat(p.East)},
		"koordsys":     {p.epsg()},
		"utkoordsys":   {p.epsg()},
		"treffPerSide": {strconv.Itoa(c.nearLimit)},
		"side":         {"1"},
	}
	return c.fetch(ctx, "/punkt", params)
}

// SearchPlaces returns up to q.Limit places whose name matches q.Text.
func (c *PlacesClient) SearchPlaces(ctx context.Context, q NameQuery) ([]Place, error) {
	epsg := q.EPSG
	if epsg == "" {
		epsg = DefaultEPSG
	}
	limit := q.Limit
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	params := url.Values{
		"sok":          {q.Text},
		"fuzzy":        {"true"},
		"treffPerSide": {strconv.Itoa(limit)},
		"utkoordsys":   {epsg},
		"side":         {"1"},
		"filtrer":      {searchFilter},
	}
	return c.fetch(ctx, "/sted", params)
}

func (c *PlacesClient) fetch(ctx context.Context, path string, params url.Values) ([]Place, error) {
	body, err := c.get(ctx, path, params)
	if err != nil {
		return nil, err
	}

	var resp stedsnavnResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, c.malformed(eris.Wrap(err, "geonorge: stedsnavn parse response"))
	}
	if len(resp.Navn) == 0 {
		return nil, c.empty()
	}

	places := make([]Place, 0, len(resp.Navn))
	for i, raw := range resp.Navn {
		pl, err := decodeStedsnavnPlace(raw)
		if err != nil {
			zap.L().Warn("geonorge: skipping place record",
				zap.String("service", c.service),
				zap.Int("index", i),
				zap.Error(err),
			)
			continue
		}
		places = append(places, pl)
	}
	if len(places) == 0 {
		return nil, c.malformed(eris.Errorf("geonorge: stedsnavn returned %d records without a usable position", len(resp.Navn)))
	}
	return places, nil
}

// decodeStedsnavnPlace maps one record. Records without a complete
// representation point are rejected.
func decodeStedsnavnPlace(raw json.RawMessage) (Place, error) {
	var n stedsnavnPlace
	if err := json.Unmarshal(raw, &n); err != nil {
		return Place{}, eris.Wrap(err, "geonorge: stedsnavn parse record")
	}
	pt := n.Representasjonspunkt
	if pt == nil || pt.Nord == nil || pt.Ost == nil {
		return Place{}, eris.Errorf("geonorge: stedsnavn record %s has no representation point", string(n.Stedsnummer))
	}

	pl := Place{
		ID:       string(n.Stedsnummer),
		TypeCode: n.Navneobjekttype,
		North:    float64(*pt.Nord),
		East:     float64(*pt.Ost),
	}
	if len(n.Fylker) > 0 {
		pl.County = n.Fylker[0].Fylkesnavn
	}
	if len(n.Kommuner) > 0 {
		pl.Municipality = n.Kommuner[0].Kommunenavn
	}
	for _, s := range n.Stedsnavn {
		pl.Names = append(pl.Names, Name{
			Text:           s.Skrivemate,
			Language:       s.Sprak,
			SpellingStatus: s.Skrivematestatus,
			NameStatus:     s.Navnestatus,
		})
	}
	return pl, nil
}

// flexString accepts a JSON string or number.
type flexString string

func (s *flexString) UnmarshalJSON(b []byte) error {
	*s = flexString(rawLiteral(b))
	return nil
}

// flexFloat accepts a JSON number or a numeric string.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(b []byte) error {
	lit := rawLiteral(bytes.TrimSpace(b))
	if lit == "" {
		return eris.New("geonorge: empty coordinate")
	}
	v, err := strconv.ParseFloat(lit, 64)
	if err != nil {
		return eris.Wrapf(err, "geonorge: invalid coordinate %q", lit)
	}
	*f = flexFloat(v)
	return nil
}
