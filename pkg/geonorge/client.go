// Package geonorge provides clients for the Kartverket elevation, place-name
// and municipality services published on Geonorge.
package geonorge

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
)

// Service base URLs.
const (
	DefaultElevationURL    = "https://ws.geonorge.no/hoydedata/v1"
	DefaultPlacesURL       = "https://ws.geonorge.no/stedsnavn/v1"
	DefaultMunicipalityURL = "https://ws.geonorge.no/kommuneinfo/v1"
	DefaultWPSURL          = "https://wms.geonorge.no/skwms1/wps.elevation2"
	DefaultSSRURL          = "https://ws.geonorge.no/SKWS3Index/v2/ssr/sok"
)

// DefaultEPSG is ETRS89 geographic, the services' native reference system.
const DefaultEPSG = "4258"

const defaultUserAgent = "placelookup/1.0"

// Point is a position in the reference system named by EPSG.
// North is the latitude (or northing), East the longitude (or easting).
type Point struct {
	North float64
	East  float64
	EPSG  string
}

func (p Point) epsg() string {
	if p.EPSG == "" {
		return DefaultEPSG
	}
	return p.EPSG
}

// Option configures a service client.
type Option func(*base)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(b *base) {
		if hc != nil {
			b.httpClient = hc
		}
	}
}

// WithBaseURL overrides the service base URL.
func WithBaseURL(u string) Option {
	return func(b *base) {
		if u != "" {
			b.baseURL = u
		}
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(b *base) {
		if ua != "" {
			b.userAgent = ua
		}
	}
}

// WithTimeout sets the timeout of the default HTTP client. It has no effect
// on a client supplied through WithHTTPClient.
func WithTimeout(d time.Duration) Option {
	return func(b *base) {
		b.timeout = d
	}
}

// base holds the HTTP plumbing shared by every service client.
type base struct {
	service    string
	httpClient *http.Client
	baseURL    string
	userAgent  string
	timeout    time.Duration
}

func newBase(service, defaultURL string, opts []Option) base {
	b := base{
		service:   service,
		baseURL:   defaultURL,
		userAgent: defaultUserAgent,
		timeout:   30 * time.Second,
	}
	for _, opt := range opts {
		opt(&b)
	}
	if b.httpClient == nil {
		b.httpClient = &http.Client{Timeout: b.timeout}
	}
	return b
}

// get issues a GET against baseURL+path and returns the body of a 200 reply.
func (b *base) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	reqURL := b.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, b.unavailable(0, eris.Wrapf(err, "geonorge: %s build request", b.service))
	}
	req.Header.Set("User-Agent", b.userAgent)

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, b.unavailable(0, eris.Wrapf(err, "geonorge: %s request", b.service))
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, b.unavailable(resp.StatusCode, eris.Errorf("geonorge: %s returned status %d", b.service, resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, b.unavailable(resp.StatusCode, eris.Wrapf(err, "geonorge: %s read body", b.service))
	}
	return body, nil
}

func (b *base) unavailable(status int, err error) error {
	return &UpstreamError{Service: b.service, Kind: KindUnavailable, StatusCode: status, Err: err}
}

func (b *base) malformed(err error) error {
	return &UpstreamError{Service: b.service, Kind: KindMalformed, Err: err}
}

func (b *base) empty() error {
	return &UpstreamError{Service: b.service, Kind: KindEmpty, Err: eris.Errorf("geonorge: %s returned no results", b.service)}
}
