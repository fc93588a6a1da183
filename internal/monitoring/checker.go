package monitoring

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/placelookup/internal/config"
)

const defaultSweepInterval = 5 * time.Minute

// Checker periodically reviews upstream lookup failure rates and raises
// alerts for degraded Geonorge services.
type Checker struct {
	collector *Collector
	alerter   *Alerter
	cfg       config.MonitoringConfig
}

// NewChecker creates a background upstream checker.
func NewChecker(collector *Collector, alerter *Alerter, cfg config.MonitoringConfig) *Checker {
	return &Checker{
		collector: collector,
		alerter:   alerter,
		cfg:       cfg,
	}
}

func (c *Checker) interval() time.Duration {
	if c.cfg.CheckIntervalSecs <= 0 {
		return defaultSweepInterval
	}
	return time.Duration(c.cfg.CheckIntervalSecs) * time.Second
}

// Run sweeps once per interval until ctx is done.
func (c *Checker) Run(ctx context.Context) {
	every := c.interval()
	log := zap.L().With(zap.String("component", "monitoring.upstream"))
	log.Info("watching geonorge lookups",
		zap.Duration("every", every),
		zap.Float64("max_failure_rate", c.cfg.FailureRateThreshold),
		zap.Int("min_lookups", c.cfg.MinLookups),
		zap.Bool("webhook", c.cfg.WebhookURL != ""),
	)

	tick := time.NewTicker(every)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("stopped watching geonorge lookups")
			return
		case <-tick.C:
			c.sweep(ctx, log)
		}
	}
}

// sweep reviews the lookups since the previous sweep and returns the number
// of degraded sources.
func (c *Checker) sweep(ctx context.Context, log *zap.Logger) int {
	snap, err := c.collector.Collect()
	if err != nil {
		log.Error("monitoring: read lookup counters", zap.Error(err))
		return 0
	}

	for _, st := range snap.Sources {
		log.Debug("geonorge source window",
			zap.String("source", st.Source),
			zap.Int("lookups", st.Total),
			zap.Int("failed", st.Failed),
			zap.Time("since", snap.WindowStart),
		)
	}

	degraded := c.alerter.Evaluate(snap)
	for _, a := range degraded {
		log.Warn("geonorge source degraded",
			zap.Any("source", a.Details["source"]),
			zap.String("severity", a.Severity),
			zap.String("detail", a.Message),
		)
	}
	if len(degraded) > 0 {
		delivered := c.alerter.SendAlerts(ctx, degraded)
		log.Info("monitoring: sweep raised alerts",
			zap.Int("degraded_sources", len(degraded)),
			zap.Int("delivered", delivered),
		)
	}
	return len(degraded)
}
