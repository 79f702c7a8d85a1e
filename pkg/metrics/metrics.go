// Package metrics exports cache statistics to external observability
// systems. Exporters are pluggable; the cache only talks to the
// Exporter interface.
package metrics

import (
	"time"
)

// Exporter publishes cache statistics and operation timings to an
// observability backend.
type Exporter interface {
	// ExportStats publishes a snapshot of the cache counters.
	ExportStats(stats Stats, labels Labels) error

	// RecordOperation records one cache operation with its duration.
	RecordOperation(op Operation, duration time.Duration, labels Labels) error

	// Close flushes pending metrics and shuts the exporter down.
	Close() error
}

// Labels are key-value pairs attached to exported metrics.
// The cache always sets "cache_name".
type Labels map[string]string

// Stats is the counter snapshot the cache hands to exporters.
type Stats interface {
	Hits() int64
	Misses() int64
	Evictions() int64
	Expirations() int64
	EntryCount() int64
	HitRate() float64
}

// Operation identifies a cache operation for timing metrics.
type Operation string

const (
	OperationGet    Operation = "get"
	OperationPut    Operation = "put"
	OperationRemove Operation = "remove"
	OperationClear  Operation = "clear"
	OperationLoad   Operation = "load"
)

// Standard metric names shared by all exporters.
const (
	MetricHitsTotal         = "locallru_hits_total"
	MetricMissesTotal       = "locallru_misses_total"
	MetricEvictionsTotal    = "locallru_evictions_total"
	MetricExpirationsTotal  = "locallru_expirations_total"
	MetricEntries           = "locallru_entries"
	MetricHitRate           = "locallru_hit_rate"
	MetricOperationDuration = "locallru_operation_duration_seconds"
)

// counterSnapshot remembers the last exported totals so monotonic
// counters receive deltas rather than re-adding the running totals.
// A total below the snapshot means the source counters were reset; the
// snapshot re-baselines and exports a zero delta, since backend
// counters must never decrease.
type counterSnapshot struct {
	hits        int64
	misses      int64
	evictions   int64
	expirations int64
}

func (s *counterSnapshot) deltas(stats Stats) (hits, misses, evictions, expirations int64) {
	hits = advance(&s.hits, stats.Hits())
	misses = advance(&s.misses, stats.Misses())
	evictions = advance(&s.evictions, stats.Evictions())
	expirations = advance(&s.expirations, stats.Expirations())
	return hits, misses, evictions, expirations
}

// advance moves prev to total and returns the non-negative delta.
func advance(prev *int64, total int64) int64 {
	d := total - *prev
	*prev = total
	if d < 0 {
		return 0
	}
	return d
}

// MultiExporter fans out to several exporters.
type MultiExporter struct {
	exporters []Exporter
}

// NewMultiExporter creates an exporter that writes to every backend given.
func NewMultiExporter(exporters ...Exporter) *MultiExporter {
	return &MultiExporter{exporters: exporters}
}

// ExportStats exports to all configured exporters.
func (m *MultiExporter) ExportStats(stats Stats, labels Labels) error {
	for _, e := range m.exporters {
		if err := e.ExportStats(stats, labels); err != nil {
			return err
		}
	}
	return nil
}

// RecordOperation records to all configured exporters.
func (m *MultiExporter) RecordOperation(op Operation, duration time.Duration, labels Labels) error {
	for _, e := range m.exporters {
		if err := e.RecordOperation(op, duration, labels); err != nil {
			return err
		}
	}
	return nil
}

// Close closes all configured exporters.
func (m *MultiExporter) Close() error {
	for _, e := range m.exporters {
		if err := e.Close(); err != nil {
			return err
		}
	}
	return nil
}

// NoOpExporter discards everything. Used when metrics are disabled.
type NoOpExporter struct{}

// NewNoOpExporter creates an exporter that discards all metrics.
func NewNoOpExporter() *NoOpExporter { return &NoOpExporter{} }

func (*NoOpExporter) ExportStats(Stats, Labels) error                        { return nil }
func (*NoOpExporter) RecordOperation(Operation, time.Duration, Labels) error { return nil }
func (*NoOpExporter) Close() error                                           { return nil }

var (
	_ Exporter = (*MultiExporter)(nil)
	_ Exporter = (*NoOpExporter)(nil)
)
