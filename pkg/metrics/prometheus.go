package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusExporter implements Exporter on top of a Prometheus registry.
type PrometheusExporter struct {
	hitsTotal        *prometheus.CounterVec
	missesTotal      *prometheus.CounterVec
	evictionsTotal   *prometheus.CounterVec
	expirationsTotal *prometheus.CounterVec

	entries *prometheus.GaugeVec
	hitRate *prometheus.GaugeVec

	operationDuration *prometheus.HistogramVec

	mu        sync.Mutex
	snapshots map[string]*counterSnapshot
}

// PrometheusConfig holds Prometheus-specific options.
type PrometheusConfig struct {
	// Registry to register metrics with. Defaults to the global registerer.
	Registry prometheus.Registerer

	// ConstLabels are applied to every metric.
	ConstLabels prometheus.Labels

	// DurationBuckets for the operation-duration histogram.
	DurationBuckets []float64
}

// NewPrometheusExporter creates and registers the cache metrics.
func NewPrometheusExporter(cfg *PrometheusConfig) (*PrometheusExporter, error) {
	if cfg == nil {
		cfg = &PrometheusConfig{}
	}

	registry := cfg.Registry
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}

	buckets := cfg.DurationBuckets
	if buckets == nil {
		buckets = []float64{1e-7, 5e-7, 1e-6, 5e-6, 1e-5, 5e-5, 1e-4, 1e-3, 1e-2}
	}

	e := &PrometheusExporter{
		snapshots: make(map[string]*counterSnapshot),
	}

	baseLabels := []string{"cache_name"}

	counter := func(name, help string) *prometheus.CounterVec {
		return prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        name,
			Help:        help,
			ConstLabels: cfg.ConstLabels,
		}, baseLabels)
	}
	gauge := func(name, help string) *prometheus.GaugeVec {
		return prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name:        name,
			Help:        help,
			ConstLabels: cfg.ConstLabels,
		}, baseLabels)
	}

	e.hitsTotal = counter(MetricHitsTotal, "Total number of cache hits")
	e.missesTotal = counter(MetricMissesTotal, "Total number of cache misses")
	e.evictionsTotal = counter(MetricEvictionsTotal, "Total number of entries evicted by capacity pressure")
	e.expirationsTotal = counter(MetricExpirationsTotal, "Total number of entries purged as expired")
	e.entries = gauge(MetricEntries, "Current number of entries in the cache")
	e.hitRate = gauge(MetricHitRate, "Cache hit rate as a percentage")
	e.operationDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:        MetricOperationDuration,
		Help:        "Cache operation duration in seconds",
		ConstLabels: cfg.ConstLabels,
		Buckets:     buckets,
	}, append(baseLabels, "operation"))

	collectors := []prometheus.Collector{
		e.hitsTotal, e.missesTotal, e.evictionsTotal, e.expirationsTotal,
		e.entries, e.hitRate, e.operationDuration,
	}
	for _, c := range collectors {
		if err := registry.Register(c); err != nil {
			return nil, err
		}
	}

	return e, nil
}

// ExportStats publishes the counter deltas since the previous export and
// refreshes the gauges.
func (e *PrometheusExporter) ExportStats(stats Stats, labels Labels) error {
	base := prometheus.Labels{"cache_name": labels["cache_name"]}

	e.mu.Lock()
	snap, ok := e.snapshots[labels["cache_name"]]
	if !ok {
		snap = &counterSnapshot{}
		e.snapshots[labels["cache_name"]] = snap
	}
	hits, misses, evictions, expirations := snap.deltas(stats)
	e.mu.Unlock()

	e.hitsTotal.With(base).Add(float64(hits))
	e.missesTotal.With(base).Add(float64(misses))
	e.evictionsTotal.With(base).Add(float64(evictions))
	e.expirationsTotal.With(base).Add(float64(expirations))

	e.entries.With(base).Set(float64(stats.EntryCount()))
	e.hitRate.With(base).Set(stats.HitRate())

	return nil
}

// RecordOperation observes one operation duration.
func (e *PrometheusExporter) RecordOperation(op Operation, duration time.Duration, labels Labels) error {
	e.operationDuration.With(prometheus.Labels{
		"cache_name": labels["cache_name"],
		"operation":  string(op),
	}).Observe(duration.Seconds())
	return nil
}

// Close is a no-op; Prometheus collectors need no explicit shutdown.
func (e *PrometheusExporter) Close() error {
	return nil
}

var _ Exporter = (*PrometheusExporter)(nil)
