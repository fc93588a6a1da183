package monitoring

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sells-group/placelookup/internal/config"
)

func newTestChecker(t *testing.T, cfg config.MonitoringConfig) (*Checker, *Metrics) {
	t.Helper()
	m, err := NewMetrics(prometheus.NewRegistry())
	require.NoError(t, err)
	return NewChecker(NewCollector(m), NewAlerter(cfg), cfg), m
}

func TestChecker_RunStopsOnCancel(t *testing.T) {
	checker, _ := newTestChecker(t, config.MonitoringConfig{CheckIntervalSecs: 1})

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		checker.Run(ctx)
		close(done)
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Checker.Run did not stop after context cancellation")
	}
}

func TestChecker_DefaultInterval(t *testing.T) {
	checker, _ := newTestChecker(t, config.MonitoringConfig{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	checker.Run(ctx)
}

func TestChecker_SweepSendsAlerts(t *testing.T) {
	var received atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		received.Add(1)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer ts.Close()

	checker, m := newTestChecker(t, config.MonitoringConfig{
		WebhookURL:           ts.URL,
		FailureRateThreshold: 0.5,
		MinLookups:           2,
	})
	m.ObserveLookup("elevation", "unavailable", time.Millisecond)
	m.ObserveLookup("elevation", "unavailable", time.Millisecond)

	assert.Equal(t, 1, checker.sweep(context.Background(), zap.NewNop()))
	assert.Equal(t, int32(1), received.Load())

	// The window resets after each sweep.
	assert.Zero(t, checker.sweep(context.Background(), zap.NewNop()))
	assert.Equal(t, int32(1), received.Load())
}

func TestChecker_SweepIgnoresHealthySources(t *testing.T) {
	checker, m := newTestChecker(t, config.MonitoringConfig{FailureRateThreshold: 0.5, MinLookups: 1})
	m.ObserveLookup("places", "ok", time.Millisecond)
	m.ObserveLookup("places", "empty", time.Millisecond)

	assert.Zero(t, checker.sweep(context.Background(), zap.NewNop()))
}

func TestChecker_Interval(t *testing.T) {
	checker, _ := newTestChecker(t, config.MonitoringConfig{})
	assert.Equal(t, 5*time.Minute, checker.interval())

	checker, _ = newTestChecker(t, config.MonitoringConfig{CheckIntervalSecs: 30})
	assert.Equal(t, 30*time.Second, checker.interval())
}
