package locallru

import (
	"context"
	"sync"
	"time"

	"github.com/HN026/LocalLru/internal/singleflight"
	"github.com/HN026/LocalLru/internal/store"
	"github.com/HN026/LocalLru/pkg/metrics"
)

// SharedCache is a single store visible to all goroutines. One mutex is
// held for the full duration of every operation, so no partial mutation
// of the map or recency order is ever observable; operation order is
// whatever order the lock is acquired in. The lock is never acquired
// recursively or nested with another lock.
//
// The cache takes its configuration snapshot once, at construction.
type SharedCache[K comparable, V any] struct {
	mu     sync.Mutex
	store  *store.Store[K, V]
	stats  *Stats
	logger Logger
	sf     singleflight.Group[K, V]

	exporter    metrics.Exporter
	labels      metrics.Labels
	reportEvery time.Duration
	stop        chan struct{}
	wg          sync.WaitGroup
	closeOnce   sync.Once
}

// NewShared creates a SharedCache from the given settings.
func NewShared[K comparable, V any](cfg Config) (*SharedCache[K, V], error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	s, err := store.New[K, V](cfg.Capacity, cfg.TTL)
	if err != nil {
		return nil, err
	}

	logger := cfg.Logger
	if logger == nil {
		logger = NewNoOpLogger()
	}

	c := &SharedCache[K, V]{
		store:  s,
		stats:  &Stats{},
		logger: logger,
	}

	// The callbacks run while c.mu is held, so they must not call back
	// into the cache. Stats are atomic and the logger is independent.
	s.SetEvictCallback(func(key K, _ V) {
		c.stats.incEvictions()
		c.logger.Debug("entry evicted", F("key", key), F("reason", "capacity"))
	})
	s.SetExpireCallback(func(key K, _ V) {
		c.stats.incExpirations()
		c.logger.Debug("entry expired", F("key", key), F("reason", "ttl"))
	})

	c.initMetrics(cfg.Metrics)

	return c, nil
}

func (c *SharedCache[K, V]) initMetrics(cfg *MetricsConfig) {
	if cfg == nil || !cfg.Enabled || cfg.Exporter == nil {
		c.exporter = metrics.NewNoOpExporter()
		return
	}

	c.exporter = cfg.Exporter

	c.labels = make(metrics.Labels, len(cfg.Labels)+1)
	for k, v := range cfg.Labels {
		c.labels[k] = v
	}
	if cfg.CacheName != "" {
		c.labels["cache_name"] = cfg.CacheName
	} else {
		c.labels["cache_name"] = "default"
	}

	if cfg.ReportingInterval > 0 {
		c.reportEvery = cfg.ReportingInterval
		c.stop = make(chan struct{})
		c.wg.Add(1)
		go c.reporter()
	}
}

// reporter periodically exports the cache statistics.
func (c *SharedCache[K, V]) reporter() {
	defer c.wg.Done()

	ticker := time.NewTicker(c.reportEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.exportStats()
		case <-c.stop:
			return
		}
	}
}

func (c *SharedCache[K, V]) exportStats() {
	if err := c.exporter.ExportStats(c.stats, c.labels); err != nil {
		c.logger.Warn("stats export failed", F("error", err))
	}
}

func (c *SharedCache[K, V]) recordOp(op metrics.Operation, start time.Time) {
	if err := c.exporter.RecordOperation(op, time.Since(start), c.labels); err != nil {
		c.logger.Warn("operation metric failed", F("operation", op), F("error", err))
	}
}

// Get returns the value stored under key.
func (c *SharedCache[K, V]) Get(key K) (V, bool) {
	start := time.Now()
	defer c.recordOp(metrics.OperationGet, start)

	c.mu.Lock()
	value, ok := c.store.Get(key)
	c.stats.setEntryCount(int64(c.store.Len()))
	c.mu.Unlock()

	if ok {
		c.stats.incHits()
	} else {
		c.stats.incMisses()
	}
	return value, ok
}

// Put stores value under key, evicting the least recently used entry if
// the cache is full.
func (c *SharedCache[K, V]) Put(key K, value V) {
	start := time.Now()
	defer c.recordOp(metrics.OperationPut, start)

	c.mu.Lock()
	c.store.Put(key, value)
	c.stats.setEntryCount(int64(c.store.Len()))
	c.mu.Unlock()
}

// Remove deletes the entry under key and reports whether it was present.
func (c *SharedCache[K, V]) Remove(key K) bool {
	start := time.Now()
	defer c.recordOp(metrics.OperationRemove, start)

	c.mu.Lock()
	removed := c.store.Remove(key)
	c.stats.setEntryCount(int64(c.store.Len()))
	c.mu.Unlock()

	return removed
}

// Clear removes every entry.
func (c *SharedCache[K, V]) Clear() {
	start := time.Now()
	defer c.recordOp(metrics.OperationClear, start)

	c.mu.Lock()
	n := c.store.Len()
	c.store.Clear()
	c.stats.setEntryCount(0)
	c.mu.Unlock()

	c.logger.Info("cache cleared", F("entries", n))
}

// Len returns the current entry count.
func (c *SharedCache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.Len()
}

// Capacity returns the configured capacity.
func (c *SharedCache[K, V]) Capacity() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.Capacity()
}

// TTL returns the configured time-to-live.
func (c *SharedCache[K, V]) TTL() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.TTL()
}

// Stats returns the cache statistics.
func (c *SharedCache[K, V]) Stats() *Stats {
	c.mu.Lock()
	c.stats.setEntryCount(int64(c.store.Len()))
	c.mu.Unlock()
	return c.stats
}

// GetOrLoad returns the cached value for key, or runs loader to produce
// it. Concurrent misses for the same key share one loader execution; a
// successful load is stored before being returned. Waiters give up with
// ctx.Err() when their context ends. The loader itself runs detached
// from any single caller's cancellation (values are preserved, the
// deadline is not), so a shared load cannot be failed by the deadline
// of whichever caller happened to start it.
func (c *SharedCache[K, V]) GetOrLoad(ctx context.Context, key K, loader func(ctx context.Context) (V, error)) (V, error) {
	if value, ok := c.Get(key); ok {
		return value, nil
	}

	start := time.Now()
	defer c.recordOp(metrics.OperationLoad, start)

	loadCtx := context.WithoutCancel(ctx)
	value, err, _ := c.sf.Do(ctx, key, func() (V, error) {
		v, err := loader(loadCtx)
		if err != nil {
			return v, err
		}
		c.Put(key, v)
		return v, nil
	})
	return value, err
}

// Close stops the metrics reporter and performs a final stats export.
// The cache remains usable for plain operations after Close; only
// metrics reporting ends.
func (c *SharedCache[K, V]) Close() error {
	c.closeOnce.Do(func() {
		if c.stop != nil {
			close(c.stop)
			c.wg.Wait()
		}
		if _, noop := c.exporter.(*metrics.NoOpExporter); !noop {
			c.exportStats()
		}
		if err := c.exporter.Close(); err != nil {
			c.logger.Warn("exporter close failed", F("error", err))
		}
	})
	return nil
}

var _ metrics.Stats = (*Stats)(nil)
