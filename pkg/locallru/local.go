package locallru

import (
	"time"

	"github.com/HN026/LocalLru/internal/store"
)

// LocalCache hands out private, unsynchronized stores, one per
// execution context. Callers acquire a Handle and keep it for the
// lifetime of their goroutine or worker; handles never share entries,
// so no locking exists anywhere on the operation path.
//
// The cache itself only owns the process-wide default settings. A
// handle snapshots them the first time it is used; Configure calls made
// after that point affect only handles that have not yet materialized
// their store.
type LocalCache[K comparable, V any] struct {
	defaults *defaults
}

// NewLocal creates a LocalCache seeded with the given settings.
func NewLocal[K comparable, V any](cfg Config) (*LocalCache[K, V], error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &LocalCache[K, V]{
		defaults: newDefaults(Config{Capacity: cfg.Capacity, TTL: cfg.TTL}),
	}, nil
}

// Configure atomically replaces the process-wide default capacity and
// TTL. It constructs nothing and has no effect on handles that already
// materialized their store.
func (c *LocalCache[K, V]) Configure(capacity int, ttl time.Duration) error {
	cfg := Config{Capacity: capacity, TTL: ttl}
	if err := cfg.validate(); err != nil {
		return err
	}
	c.defaults.update(cfg)
	return nil
}

// Defaults returns the current default settings.
func (c *LocalCache[K, V]) Defaults() Config {
	return c.defaults.snapshot()
}

// Acquire returns a new handle for the calling context. The handle must
// not be shared between goroutines.
func (c *LocalCache[K, V]) Acquire() *Handle[K, V] {
	return &Handle[K, V]{defaults: c.defaults}
}

// Handle is one execution context's private view of a LocalCache. Its
// store is built lazily on the first cache operation, from a snapshot
// of the defaults taken at that instant, and is reused for every
// operation after that.
//
// A Handle performs no synchronization and must stay confined to the
// context that acquired it.
type Handle[K comparable, V any] struct {
	defaults *defaults
	store    *store.Store[K, V]
}

// resolve returns the handle's store, constructing it on first use.
func (h *Handle[K, V]) resolve() *store.Store[K, V] {
	if h.store == nil {
		cfg := h.defaults.snapshot()
		s, err := store.New[K, V](cfg.Capacity, cfg.TTL)
		if err != nil {
			// Configure and NewLocal validate the pair, so a bad
			// snapshot here is a programming defect.
			panic("locallru: invalid defaults snapshot: " + err.Error())
		}
		h.store = s
	}
	return h.store
}

// Put stores value under key.
func (h *Handle[K, V]) Put(key K, value V) {
	h.resolve().Put(key, value)
}

// Get returns the value stored under key by this handle.
func (h *Handle[K, V]) Get(key K) (V, bool) {
	return h.resolve().Get(key)
}

// Remove deletes the entry under key and reports whether it was present.
func (h *Handle[K, V]) Remove(key K) bool {
	return h.resolve().Remove(key)
}

// Clear empties the handle's store.
func (h *Handle[K, V]) Clear() {
	h.resolve().Clear()
}

// Len returns the handle's current entry count.
func (h *Handle[K, V]) Len() int {
	return h.resolve().Len()
}

// Capacity returns the capacity captured by this handle's snapshot.
func (h *Handle[K, V]) Capacity() int {
	return h.resolve().Capacity()
}

// TTL returns the time-to-live captured by this handle's snapshot.
func (h *Handle[K, V]) TTL() time.Duration {
	return h.resolve().TTL()
}
