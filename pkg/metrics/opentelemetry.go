package metrics

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// OpenTelemetryExporter implements Exporter on top of an OTel meter.
type OpenTelemetryExporter struct {
	meter metric.Meter
	ctx   context.Context
	attrs []attribute.KeyValue

	hitsCounter        metric.Int64Counter
	missesCounter      metric.Int64Counter
	evictionsCounter   metric.Int64Counter
	expirationsCounter metric.Int64Counter

	entriesGauge metric.Int64Gauge
	hitRateGauge metric.Float64Gauge

	operationDuration metric.Float64Histogram

	mu        sync.Mutex
	snapshots map[string]*counterSnapshot
}

// OpenTelemetryConfig holds OTel-specific options.
type OpenTelemetryConfig struct {
	// Meter creates the metric instruments. Required.
	Meter metric.Meter

	// Context used when recording measurements. Defaults to Background.
	Context context.Context

	// DefaultAttributes are attached to every measurement.
	DefaultAttributes []attribute.KeyValue
}

// NewOpenTelemetryExporter creates the cache metric instruments on the
// given meter.
func NewOpenTelemetryExporter(cfg *OpenTelemetryConfig) (*OpenTelemetryExporter, error) {
	if cfg == nil || cfg.Meter == nil {
		return nil, fmt.Errorf("metrics: OpenTelemetry meter is required")
	}

	ctx := cfg.Context
	if ctx == nil {
		ctx = context.Background()
	}

	e := &OpenTelemetryExporter{
		meter:     cfg.Meter,
		ctx:       ctx,
		attrs:     cfg.DefaultAttributes,
		snapshots: make(map[string]*counterSnapshot),
	}

	var err error
	counter := func(name, desc string) metric.Int64Counter {
		if err != nil {
			return nil
		}
		var c metric.Int64Counter
		c, err = e.meter.Int64Counter(name, metric.WithDescription(desc), metric.WithUnit("1"))
		return c
	}

	e.hitsCounter = counter(MetricHitsTotal, "Total number of cache hits")
	e.missesCounter = counter(MetricMissesTotal, "Total number of cache misses")
	e.evictionsCounter = counter(MetricEvictionsTotal, "Total number of entries evicted by capacity pressure")
	e.expirationsCounter = counter(MetricExpirationsTotal, "Total number of entries purged as expired")
	if err != nil {
		return nil, fmt.Errorf("metrics: creating counters: %w", err)
	}

	e.entriesGauge, err = e.meter.Int64Gauge(MetricEntries,
		metric.WithDescription("Current number of entries in the cache"), metric.WithUnit("1"))
	if err != nil {
		return nil, fmt.Errorf("metrics: creating entries gauge: %w", err)
	}

	e.hitRateGauge, err = e.meter.Float64Gauge(MetricHitRate,
		metric.WithDescription("Cache hit rate as a percentage"), metric.WithUnit("%"))
	if err != nil {
		return nil, fmt.Errorf("metrics: creating hit-rate gauge: %w", err)
	}

	e.operationDuration, err = e.meter.Float64Histogram(MetricOperationDuration,
		metric.WithDescription("Cache operation duration in seconds"), metric.WithUnit("s"))
	if err != nil {
		return nil, fmt.Errorf("metrics: creating duration histogram: %w", err)
	}

	return e, nil
}

// ExportStats publishes the counter deltas since the previous export and
// records the gauges.
func (e *OpenTelemetryExporter) ExportStats(stats Stats, labels Labels) error {
	attrs := e.attributes(labels)
	opt := metric.WithAttributes(attrs...)

	e.mu.Lock()
	snap, ok := e.snapshots[labels["cache_name"]]
	if !ok {
		snap = &counterSnapshot{}
		e.snapshots[labels["cache_name"]] = snap
	}
	hits, misses, evictions, expirations := snap.deltas(stats)
	e.mu.Unlock()

	e.hitsCounter.Add(e.ctx, hits, opt)
	e.missesCounter.Add(e.ctx, misses, opt)
	e.evictionsCounter.Add(e.ctx, evictions, opt)
	e.expirationsCounter.Add(e.ctx, expirations, opt)

	e.entriesGauge.Record(e.ctx, stats.EntryCount(), opt)
	e.hitRateGauge.Record(e.ctx, stats.HitRate(), opt)

	return nil
}

// RecordOperation observes one operation duration.
func (e *OpenTelemetryExporter) RecordOperation(op Operation, duration time.Duration, labels Labels) error {
	attrs := append(e.attributes(labels), attribute.String("operation", string(op)))
	e.operationDuration.Record(e.ctx, duration.Seconds(), metric.WithAttributes(attrs...))
	return nil
}

// Close is a no-op; instrument lifecycle belongs to the meter provider.
func (e *OpenTelemetryExporter) Close() error {
	return nil
}

func (e *OpenTelemetryExporter) attributes(labels Labels) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, len(e.attrs)+len(labels))
	attrs = append(attrs, e.attrs...)
	for k, v := range labels {
		attrs = append(attrs, attribute.String(k, v))
	}
	return attrs
}

var _ Exporter = (*OpenTelemetryExporter)(nil)
