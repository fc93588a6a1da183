package monitoring

import (
	"sort"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/rotisserie/eris"
)

// SourceStats counts the lookups of one upstream source within a window.
type SourceStats struct {
	Source   string  `json:"source"`
	Total    int     `json:"total"`
	Failed   int     `json:"failed"`
	FailRate float64 `json:"fail_rate"`
}

// MetricsSnapshot holds the upstream lookup activity since the previous
// collection.
type MetricsSnapshot struct {
	Sources     []SourceStats `json:"sources"`
	WindowStart time.Time     `json:"window_start"`
	CollectedAt time.Time     `json:"collected_at"`
}

// Collector turns the cumulative lookup counter into per-window snapshots.
type Collector struct {
	gatherer prometheus.Gatherer

	mu       sync.Mutex
	previous map[string]SourceStats
	since    time.Time
}

// NewCollector creates a collector reading the lookup counter of m.
func NewCollector(m *Metrics) *Collector {
	return &Collector{
		gatherer: m.gatherer,
		previous: make(map[string]SourceStats),
		since:    time.Now().UTC(),
	}
}

// Collect returns the lookups recorded since the last call.
func (c *Collector) Collect() (*MetricsSnapshot, error) {
	families, err := c.gatherer.Gather()
	if err != nil {
		return nil, eris.Wrap(err, "monitoring: gather metrics")
	}

	current := make(map[string]SourceStats)
	for _, mf := range families {
		if mf.GetName() != lookupsName {
			continue
		}
		for _, metric := range mf.GetMetric() {
			source, outcome := lookupLabels(metric)
			st := current[source]
			st.Source = source
			n := int(metric.GetCounter().GetValue())
			st.Total += n
			if outcome != "ok" && outcome != "empty" {
				st.Failed += n
			}
			current[source] = st
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now().UTC()
	snap := &MetricsSnapshot{WindowStart: c.since, CollectedAt: now}
	for source, st := range current {
		prev := c.previous[source]
		delta := SourceStats{
			Source: source,
			Total:  st.Total - prev.Total,
			Failed: st.Failed - prev.Failed,
		}
		if delta.Total > 0 {
			delta.FailRate = float64(delta.Failed) / float64(delta.Total)
		}
		snap.Sources = append(snap.Sources, delta)
	}
	sort.Slice(snap.Sources, func(i, j int) bool { return snap.Sources[i].Source < snap.Sources[j].Source })

	c.previous = current
	c.since = now
	return snap, nil
}

func lookupLabels(m *dto.Metric) (source, outcome string) {
	for _, lp := range m.GetLabel() {
		switch lp.GetName() {
		case "source":
			source = lp.GetValue()
		case "outcome":
			outcome = lp.GetValue()
		}
	}
	return source, outcome
}
