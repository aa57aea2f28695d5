package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// EngineMetricsCollector handles scheduler, production and upgrade metrics
type EngineMetricsCollector struct {
	tickDuration   prometheus.Histogram
	ticksTotal     prometheus.Counter
	passDuration   *prometheus.HistogramVec
	passesTotal    *prometheus.CounterVec
	productions    *prometheus.CounterVec
	upgrades       *prometheus.CounterVec
	heals          *prometheus.CounterVec
	flushesTotal   *prometheus.CounterVec
	flushedRecords prometheus.Counter
}

// NewEngineMetricsCollector creates a new engine metrics collector
func NewEngineMetricsCollector() *EngineMetricsCollector {
	return &EngineMetricsCollector{
		tickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "tick_duration_seconds",
			Help:      "Duration of one production/upgrade tick over all factories",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1.0},
		}),

		ticksTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "ticks_total",
			Help:      "Total number of scheduler ticks",
		}),

		passDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "pass_duration_seconds",
				Help:      "Duration of periodic passes",
				Buckets:   []float64{0.001, 0.01, 0.1, 0.5, 1.0, 5.0},
			},
			[]string{"pass"},
		),

		passesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "passes_total",
				Help:      "Total number of periodic passes by pass and status",
			},
			[]string{"pass", "status"},
		),

		productions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "productions_completed_total",
				Help:      "Completed production tasks by factory type and recipe",
			},
			[]string{"factory_type", "recipe"},
		),

		upgrades: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "upgrades_completed_total",
				Help:      "Completed upgrades by reached level",
			},
			[]string{"level"},
		),

		heals: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "consistency_heals_total",
				Help:      "Inconsistent records repaired during ticks",
			},
			[]string{"entity"},
		),

		flushesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "snapshot_flushes_total",
				Help:      "Snapshot flushes by status",
			},
			[]string{"status"},
		),

		flushedRecords: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "snapshot_records_total",
			Help:      "Records written by successful flushes",
		}),
	}
}

// Register registers all engine metrics with the Prometheus registry
func (c *EngineMetricsCollector) Register() error {
	if Registry == nil {
		return nil // Metrics not enabled
	}

	metrics := []prometheus.Collector{
		c.tickDuration,
		c.ticksTotal,
		c.passDuration,
		c.passesTotal,
		c.productions,
		c.upgrades,
		c.heals,
		c.flushesTotal,
		c.flushedRecords,
	}

	for _, metric := range metrics {
		if err := Registry.Register(metric); err != nil {
			return err
		}
	}

	return nil
}

func (c *EngineMetricsCollector) RecordTick(durationSeconds float64) {
	c.ticksTotal.Inc()
	c.tickDuration.Observe(durationSeconds)
}

func (c *EngineMetricsCollector) RecordPass(pass string, durationSeconds float64, success bool) {
	c.passDuration.WithLabelValues(pass).Observe(durationSeconds)
	c.passesTotal.WithLabelValues(pass, statusLabel(success)).Inc()
}

func (c *EngineMetricsCollector) RecordProductionCompleted(factoryType, recipeID string) {
	c.productions.WithLabelValues(factoryType, recipeID).Inc()
}

func (c *EngineMetricsCollector) RecordUpgradeCompleted(level int) {
	c.upgrades.WithLabelValues(strconv.Itoa(level)).Inc()
}

func (c *EngineMetricsCollector) RecordHeal(entity string) {
	c.heals.WithLabelValues(entity).Inc()
}

func (c *EngineMetricsCollector) RecordFlush(success bool, records int) {
	c.flushesTotal.WithLabelValues(statusLabel(success)).Inc()
	if success {
		c.flushedRecords.Add(float64(records))
	}
}

func statusLabel(success bool) string {
	if success {
		return "success"
	}
	return "error"
}
