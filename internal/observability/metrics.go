package observability

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/cory-johannsen/raidloot/internal/game/location"
)

// GenerationMetrics records loot generation runs as Prometheus metrics.
// Labels are bounded by the set of location ids and populator names.
type GenerationMetrics struct {
	runs        *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	spawned     *prometheus.CounterVec
	items       *prometheus.CounterVec
	skipped     *prometheus.CounterVec
	fitFailures *prometheus.CounterVec
}

// NewGenerationMetrics creates the metric collectors and registers them with reg.
//
// Precondition: reg must be non-nil and must not already hold these metrics.
// Postcondition: returns registered metrics or the registration error.
func NewGenerationMetrics(reg prometheus.Registerer) (*GenerationMetrics, error) {
	m := &GenerationMetrics{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "loot_generation_runs_total",
			Help: "Completed loot generation runs",
		}, []string{"location"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "loot_generation_duration_seconds",
			Help:    "Time spent generating a location's loot",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 1},
		}, []string{"location"}),
		spawned: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "loot_spawned_total",
			Help: "Containers or spawn points emitted",
		}, []string{"location", "populator"}),
		items: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "loot_items_total",
			Help: "Item nodes emitted",
		}, []string{"location", "populator"}),
		skipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "loot_skipped_total",
			Help: "Containers, spawn points or items dropped during generation",
		}, []string{"location", "populator"}),
		fitFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "loot_fit_failures_total",
			Help: "Items that did not fit their container grid",
		}, []string{"location"}),
	}
	for _, c := range []prometheus.Collector{m.runs, m.duration, m.spawned, m.items, m.skipped, m.fitFailures} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("registering generation metrics: %w", err)
		}
	}
	return m, nil
}

// ObserveGeneration implements location.Recorder.
func (m *GenerationMetrics) ObserveGeneration(loc string, elapsed time.Duration, static, dynamic location.Stats) {
	m.runs.WithLabelValues(loc).Inc()
	m.duration.WithLabelValues(loc).Observe(elapsed.Seconds())
	for populator, s := range map[string]location.Stats{"static": static, "dynamic": dynamic} {
		m.spawned.WithLabelValues(loc, populator).Add(float64(s.Spawned))
		m.items.WithLabelValues(loc, populator).Add(float64(s.Items))
		m.skipped.WithLabelValues(loc, populator).Add(float64(s.Skipped))
	}
	m.fitFailures.WithLabelValues(loc).Add(float64(static.FitFailures))
}

// WriteTextfile writes every metric gathered by g to path in the Prometheus
// text exposition format, for pickup by a node exporter textfile collector.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	if err := prometheus.WriteToTextfile(path, g); err != nil {
		return fmt.Errorf("writing metrics textfile %q: %w", path, err)
	}
	return nil
}
