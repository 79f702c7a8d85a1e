package locallru

import (
	"sync/atomic"
)

// Stats holds shared-cache performance counters. All fields are updated
// atomically and may be read while the cache is in use.
type Stats struct {
	hits        int64
	misses      int64
	evictions   int64
	expirations int64
	entryCount  int64
}

// Hits returns the number of cache hits.
func (s *Stats) Hits() int64 {
	return atomic.LoadInt64(&s.hits)
}

// Misses returns the number of cache misses, including expired reads.
func (s *Stats) Misses() int64 {
	return atomic.LoadInt64(&s.misses)
}

// Evictions returns the number of entries displaced by capacity pressure.
func (s *Stats) Evictions() int64 {
	return atomic.LoadInt64(&s.evictions)
}

// Expirations returns the number of entries purged as expired on read.
func (s *Stats) Expirations() int64 {
	return atomic.LoadInt64(&s.expirations)
}

// EntryCount returns the entry count at the last cache operation.
func (s *Stats) EntryCount() int64 {
	return atomic.LoadInt64(&s.entryCount)
}

// HitRate returns the hit rate as a percentage (0-100).
func (s *Stats) HitRate() float64 {
	hits := s.Hits()
	total := hits + s.Misses()
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total) * 100
}

// Total returns the total number of lookups (hits + misses).
func (s *Stats) Total() int64 {
	return s.Hits() + s.Misses()
}

// Reset zeroes all counters.
func (s *Stats) Reset() {
	atomic.StoreInt64(&s.hits, 0)
	atomic.StoreInt64(&s.misses, 0)
	atomic.StoreInt64(&s.evictions, 0)
	atomic.StoreInt64(&s.expirations, 0)
	atomic.StoreInt64(&s.entryCount, 0)
}

func (s *Stats) incHits()        { atomic.AddInt64(&s.hits, 1) }
func (s *Stats) incMisses()      { atomic.AddInt64(&s.misses, 1) }
func (s *Stats) incEvictions()   { atomic.AddInt64(&s.evictions, 1) }
func (s *Stats) incExpirations() { atomic.AddInt64(&s.expirations, 1) }

func (s *Stats) setEntryCount(n int64) { atomic.StoreInt64(&s.entryCount, n) }
