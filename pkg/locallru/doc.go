// Package locallru provides a bounded in-process key/value cache with
// LRU eviction and optional TTL expiration, under two concurrency
// models.
//
// # Two façades, one engine
//
// LocalCache hands each execution context (goroutine, worker, shard) a
// private Handle backed by its own store. Handles never share entries
// and use no locks; throughput scales linearly with the number of
// contexts. The trade-off is deliberate: one context never observes
// another context's puts.
//
//	cache, _ := locallru.NewLocal[string, float64](locallru.NewDefaultConfig().WithCapacity(128))
//	h := cache.Acquire() // one per goroutine
//	h.Put("AAPL", 189.84)
//	price, ok := h.Get("AAPL")
//
// SharedCache is a single store visible to every goroutine, guarded by
// a mutex held for the whole of each operation.
//
//	shared, _ := locallru.NewShared[string, float64](locallru.NewDefaultConfig().WithCapacity(1000).WithTTL(time.Minute))
//	shared.Put("AAPL", 189.84)
//	price, ok := shared.Get("AAPL")
//
// # Configuration snapshots
//
// LocalCache.Configure updates process-wide defaults that are read
// exactly once per handle, at the instant the handle first touches the
// cache. Handles that already materialized their store keep their
// original capacity and TTL forever.
//
// # Expiry
//
// TTL enforcement is strictly lazy: an expired entry is purged only
// when a Get touches it. Until then it occupies a capacity slot like
// any other entry and can be displaced by normal LRU pressure. There is
// no background sweeper.
//
// # Observability
//
// SharedCache keeps atomic hit/miss/eviction/expiration counters and
// can export them through the metrics package to Prometheus or
// OpenTelemetry backends, with optional structured event logging.
package locallru
