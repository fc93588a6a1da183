package geonorge

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// SSRClient queries the legacy SSR place-name index. Point lookups are
// bounding-box searches, so they usually return several nearby places.
type SSRClient struct {
	base
	radius  float64
	perPage int
}

// SSROption configures an SSRClient.
type SSROption func(*SSRClient)

// WithSSRRadius sets the half-width, in degrees, of the search box around a point.
func WithSSRRadius(deg float64) SSROption {
	return func(c *SSRClient) {
		if deg > 0 {
			c.radius = deg
		}
	}
}

// NewSSRClient creates a legacy SSR client.
func NewSSRClient(opts []Option, ssrOpts ...SSROption) *SSRClient {
	c := &SSRClient{
		base:    newBase("ssr", DefaultSSRURL, opts),
		radius:  0.01,
		perPage: 15,
	}
	for _, opt := range ssrOpts {
		opt(c)
	}
	return c
}

type ssrRecord struct {
	SSRID             string `xml:"ssrId"`
	Navnetype         string `xml:"navnetype"`
	Kommunenavn       string `xml:"kommunenavn"`
	Fylkesnavn        string `xml:"fylkesnavn"`
	Stedsnavn         string `xml:"stedsnavn"`
	Aust              string `xml:"aust"`
	Nord              string `xml:"nord"`
	Skrivemaatestatus string `xml:"skrivemaatestatus"`
	Navnestatus       string `xml:"navnestatus"`
	Spraak            string `xml:"spraak"`
}

// PlacesNear returns the places inside the search box centred on p.
func (c *SSRClient) PlacesNear(ctx context.Context, p Point) ([]Place, error) {
	params := url.Values{
		"nordLL":       {formatFloat(p.North - c.radius)},
		"nordUR":       {formatFloat(p.North + c.radius)},
		"ostLL":        {formatFloat(p.East - c.radius)},
		"ostUR":        {formatFloat(p.East + c.radius)},
		"eksakteForst": {"true"},
		"antPerSide":   {strconv.Itoa(c.perPage)},
		"epsgKode":     {p.epsg()},
		"side":         {"0"},
	}
	return c.fetch(ctx, params)
}

// SearchPlaces returns places whose name starts with q.Text. The legacy
// index has a fixed page size; callers truncate to q.Limit.
func (c *SSRClient) SearchPlaces(ctx context.Context, q NameQuery) ([]Place, error) {
	epsg := q.EPSG
	if epsg == "" {
		epsg = DefaultEPSG
	}
	params := url.Values{
		"navn":         {q.Text + "*"},
		"eksakteForst": {"true"},
		"antPerSide":   {strconv.Itoa(c.perPage)},
		"epsgKode":     {epsg},
		"side":         {"0"},
	}
	return c.fetch(ctx, params)
}

func (c *SSRClient) fetch(ctx context.Context, params url.Values) ([]Place, error) {
	body, err := c.get(ctx, "", params)
	if err != nil {
		return nil, err
	}

	records, err := decodeElements[ssrRecord](body, "stedsnavn")
	if err != nil {
		return nil, c.malformed(eris.Wrap(err, "geonorge: ssr parse response"))
	}
	if len(records) == 0 {
		return nil, c.empty()
	}

	places := make([]Place, 0, len(records))
	for i, r := range records {
		pl, err := r.place()
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
		return nil, c.malformed(eris.Errorf("geonorge: ssr returned %d records without a usable position", len(records)))
	}
	return places, nil
}

func (r ssrRecord) place() (Place, error) {
	north, err := strconv.ParseFloat(strings.TrimSpace(r.Nord), 64)
	if err != nil {
		return Place{}, eris.Wrapf(err, "geonorge: ssr invalid nord %q", r.Nord)
	}
	east, err := strconv.ParseFloat(strings.TrimSpace(r.Aust), 64)
	if err != nil {
		return Place{}, eris.Wrapf(err, "geonorge: ssr invalid aust %q", r.Aust)
	}
	return Place{
		ID:           r.SSRID,
		TypeCode:     r.Navnetype,
		North:        north,
		East:         east,
		County:       r.Fylkesnavn,
		Municipality: r.Kommunenavn,
		Names: []Name{{
			Text:           r.Stedsnavn,
			Language:       r.Spraak,
			SpellingStatus: r.Skrivemaatestatus,
			NameStatus:     r.Navnestatus,
		}},
	}, nil
}
