// Package observability records run metrics for a catalog build and writes
// them as a Prometheus textfile for node_exporter's textfile collector.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/agentstation/peakmap/pkg/errors"
)

// Metrics holds the gauges of one build run. Each Metrics owns its
// registry, so several can coexist in one process.
type Metrics struct {
	registry *prometheus.Registry

	// Links counts anchor ids per source pair and outcome
	// (overridden, matched, unmatched, below_threshold).
	Links *prometheus.GaugeVec

	// Anchors counts anchor ids considered per source pair.
	Anchors *prometheus.GaugeVec

	// Peaks counts catalog peaks by property
	// (total, with_coordinates, approximate, with_region, region_overrides).
	Peaks *prometheus.GaugeVec

	// Regions counts regions by state (active, shadowed).
	Regions *prometheus.GaugeVec

	// StageDuration observes the wall time of each pipeline stage in seconds.
	StageDuration *prometheus.HistogramVec

	// LastRun is the unix time the last run finished.
	LastRun prometheus.Gauge

	// LastRunSuccess is 1 when the last run succeeded and 0 otherwise.
	LastRunSuccess prometheus.Gauge
}

// NewMetrics creates the metrics of a run. namespace prefixes every name.
func NewMetrics(namespace string) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Links: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "links",
			Help:      "Anchor ids per source pair and link outcome",
		}, []string{"pair", "outcome"}),
		Anchors: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "anchors",
			Help:      "Anchor ids considered per source pair",
		}, []string{"pair"}),
		Peaks: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "catalog_peaks",
			Help:      "Catalog peaks by property",
		}, []string{"kind"}),
		Regions: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "regions",
			Help:      "Regions by shadow state",
		}, []string{"state"}),
		StageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of pipeline stages in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.01, 4, 8),
		}, []string{"stage"}),
		LastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last run finished",
		}),
		LastRunSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_success",
			Help:      "Whether the last run succeeded",
		}),
	}

	m.registry.MustRegister(
		m.Links,
		m.Anchors,
		m.Peaks,
		m.Regions,
		m.StageDuration,
		m.LastRun,
		m.LastRunSuccess,
	)
	return m
}

// Registry returns the registry holding the metrics.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordLinks records the outcome counts of one source pair.
func (m *Metrics) RecordLinks(pair string, anchors, overridden, matched, unmatched, below int) {
	m.Anchors.WithLabelValues(pair).Set(float64(anchors))
	m.Links.WithLabelValues(pair, "overridden").Set(float64(overridden))
	m.Links.WithLabelValues(pair, "matched").Set(float64(matched))
	m.Links.WithLabelValues(pair, "unmatched").Set(float64(unmatched))
	m.Links.WithLabelValues(pair, "below_threshold").Set(float64(below))
}

// RecordPeaks records a catalog property count.
func (m *Metrics) RecordPeaks(kind string, n int) {
	m.Peaks.WithLabelValues(kind).Set(float64(n))
}

// RecordRegions records how many regions are active and shadowed.
func (m *Metrics) RecordRegions(active, shadowed int) {
	m.Regions.WithLabelValues("active").Set(float64(active))
	m.Regions.WithLabelValues("shadowed").Set(float64(shadowed))
}

// ObserveStage records how long a stage took.
func (m *Metrics) ObserveStage(stage string, d time.Duration) {
	m.StageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// RecordRun records the end of a run.
func (m *Metrics) RecordRun(at time.Time, success bool) {
	m.LastRun.Set(float64(at.Unix()))
	if success {
		m.LastRunSuccess.Set(1)
	} else {
		m.LastRunSuccess.Set(0)
	}
}

// WriteTextfile writes every metric to path in the text exposition format.
// The file is replaced atomically.
func (m *Metrics) WriteTextfile(path string) error {
	return errors.WrapIO("write", path, prometheus.WriteToTextfile(path, m.registry))
}
