// Package singleflight suppresses duplicate concurrent loads of the
// same cache key: while a load is in flight, every other caller for
// that key waits for its result instead of executing another load.
package singleflight

import (
	"context"
	"sync"
)

// Group namespaces in-flight loads by key.
type Group[K comparable, V any] struct {
	mu       sync.Mutex
	inflight map[K]*call[V]
}

// call is one in-flight load. Its result fields are written once,
// before done is closed, and read only after done is closed.
type call[V any] struct {
	done chan struct{}
	val  V
	err  error
	dups int
}

// Do executes fn, ensuring only one execution is in flight for key at a
// time. Duplicate callers wait for the original to complete and receive
// the same result, or return early with ctx.Err() if their context ends
// first; the load itself keeps running for the remaining waiters.
// shared reports whether the result was delivered to more than one caller.
func (g *Group[K, V]) Do(ctx context.Context, key K, fn func() (V, error)) (v V, err error, shared bool) {
	g.mu.Lock()
	if g.inflight == nil {
		g.inflight = make(map[K]*call[V])
	}
	if c, ok := g.inflight[key]; ok {
		c.dups++
		g.mu.Unlock()

		select {
		case <-c.done:
			return c.val, c.err, true
		case <-ctx.Done():
			return v, ctx.Err(), false
		}
	}
	c := &call[V]{done: make(chan struct{})}
	g.inflight[key] = c
	g.mu.Unlock()

	c.val, c.err = fn()

	g.mu.Lock()
	delete(g.inflight, key)
	shared = c.dups > 0
	g.mu.Unlock()
	close(c.done)

	return c.val, c.err, shared
}

// Forget drops the in-flight record for key. Future Do calls for the key
// execute their own load instead of waiting for an earlier one.
func (g *Group[K, V]) Forget(key K) {
	g.mu.Lock()
	delete(g.inflight, key)
	g.mu.Unlock()
}

// InFlight returns the number of keys currently being loaded.
func (g *Group[K, V]) InFlight() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.inflight)
}
