// Package monitoring exposes Prometheus metrics for upstream lookups and HTTP
// requests, and raises webhook alerts when an upstream service keeps failing.
package monitoring

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rotisserie/eris"
)

const (
	lookupsName          = "placelookup_upstream_lookups_total"
	lookupDurationsName  = "placelookup_upstream_lookup_duration_seconds"
	requestsName         = "placelookup_http_requests_total"
	requestDurationsName = "placelookup_http_request_duration_seconds"
)

// Metrics bundles the Prometheus collectors of the service.
type Metrics struct {
	gatherer prometheus.Gatherer

	Lookups          *prometheus.CounterVec
	LookupDurations  *prometheus.HistogramVec
	Requests         *prometheus.CounterVec
	RequestDurations *prometheus.HistogramVec
}

// NewMetrics registers the collectors against reg, defaulting to the global
// registry when nil. Collectors already registered under the same name are
// reused.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	lookups, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: lookupsName,
		Help: "Upstream Geonorge lookups, labeled by source and outcome.",
	}, []string{"source", "outcome"}), lookupsName)
	if err != nil {
		return nil, err
	}

	lookupDurations, err := registerHistogramVec(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    lookupDurationsName,
		Help:    "Upstream Geonorge lookup latency in seconds.",
		Buckets: []float64{0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
	}, []string{"source"}), lookupDurationsName)
	if err != nil {
		return nil, err
	}

	requests, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: requestsName,
		Help: "Handled HTTP requests, labeled by route, method and status code.",
	}, []string{"route", "method", "code"}), requestsName)
	if err != nil {
		return nil, err
	}

	requestDurations, err := registerHistogramVec(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    requestDurationsName,
		Help:    "HTTP request latency in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method"}), requestDurationsName)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		gatherer:         gatherer,
		Lookups:          lookups,
		LookupDurations:  lookupDurations,
		Requests:         requests,
		RequestDurations: requestDurations,
	}, nil
}

// ObserveLookup records one upstream lookup.
func (m *Metrics) ObserveLookup(source, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.Lookups.WithLabelValues(source, outcome).Inc()
	m.LookupDurations.WithLabelValues(source).Observe(elapsed.Seconds())
}

// ObserveRequest records one handled HTTP request.
func (m *Metrics) ObserveRequest(route, method string, code int, elapsed time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.Requests.WithLabelValues(route, method, strconv.Itoa(code)).Inc()
	m.RequestDurations.WithLabelValues(route, method).Observe(elapsed.Seconds())
}

// Handler exposes a ready-to-use /metrics handler.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, eris.Errorf("monitoring: collector %s already registered with incompatible type", name)
		}
		return nil, eris.Wrapf(err, "monitoring: register %s", name)
	}
	return vec, nil
}

func registerHistogramVec(reg prometheus.Registerer, vec *prometheus.HistogramVec, name string) (*prometheus.HistogramVec, error) {
	if err := reg.Register(vec); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing, nil
			}
			return nil, eris.Errorf("monitoring: collector %s already registered with incompatible type", name)
		}
		return nil, eris.Wrapf(err, "monitoring: register %s", name)
	}
	return vec, nil
}
