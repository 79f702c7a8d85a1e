package locallru

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/HN026/LocalLru/pkg/metrics"
)

// Config defines the settings for a cache store.
//
// Capacity 0 disables the store entirely: puts become no-ops and gets
// always miss. TTL 0 means entries never expire.
type Config struct {
	// Capacity is the maximum number of entries held (LRU bound).
	Capacity int

	// TTL is the time-to-live applied to every entry at write time.
	TTL time.Duration

	// Logger receives cache events. Nil disables logging.
	// Only used by the shared cache.
	Logger Logger

	// Metrics configures statistics export. Nil disables export.
	// Only used by the shared cache.
	Metrics *MetricsConfig
}

// MetricsConfig holds metrics exporter configuration.
type MetricsConfig struct {
	// Exporter is the metrics backend to publish to.
	Exporter metrics.Exporter

	// Enabled determines whether metrics are exported at all.
	Enabled bool

	// CacheName is the cache_name label applied to all metrics.
	CacheName string

	// ReportingInterval is how often stats are exported automatically.
	// 0 disables the periodic reporter; stats are still exported on Close.
	ReportingInterval time.Duration

	// Labels are additional labels applied to all metrics.
	Labels metrics.Labels
}

// NewDefaultConfig returns a Config with a 1000-entry capacity and no
// expiry.
func NewDefaultConfig() Config {
	return Config{
		Capacity: 1000,
		TTL:      0,
	}
}

// WithCapacity sets the maximum number of entries.
func (c Config) WithCapacity(capacity int) Config {
	c.Capacity = capacity
	return c
}

// WithTTL sets the per-entry time-to-live.
func (c Config) WithTTL(ttl time.Duration) Config {
	c.TTL = ttl
	return c
}

// WithLogger sets the event logger.
func (c Config) WithLogger(logger Logger) Config {
	c.Logger = logger
	return c
}

// WithMetricsExporter enables metrics export through the given exporter.
func (c Config) WithMetricsExporter(exporter metrics.Exporter, cacheName string) Config {
	c.Metrics = &MetricsConfig{
		Exporter:          exporter,
		Enabled:           true,
		CacheName:         cacheName,
		ReportingInterval: 30 * time.Second,
		Labels:            make(metrics.Labels),
	}
	return c
}

func (c Config) validate() error {
	if c.Capacity < 0 {
		return fmt.Errorf("locallru: negative capacity %d", c.Capacity)
	}
	if c.TTL < 0 {
		return fmt.Errorf("locallru: negative ttl %v", c.TTL)
	}
	return nil
}

// defaults is the process-wide (capacity, ttl) cell consulted by stores
// at construction time. Configure swaps the whole pair atomically; a
// store copies whichever snapshot is visible at its construction instant
// and never re-reads. A race between Configure and a concurrent first
// access resolves to one of the two snapshots, never a mix.
type defaults struct {
	cfg atomic.Pointer[Config]
}

func newDefaults(cfg Config) *defaults {
	d := &defaults{}
	d.cfg.Store(&cfg)
	return d
}

// update replaces the current snapshot.
func (d *defaults) update(cfg Config) {
	d.cfg.Store(&cfg)
}

// snapshot returns a copy of the current settings.
func (d *defaults) snapshot() Config {
	return *d.cfg.Load()
}
