// Package store implements the LRU+TTL cache engine shared by both
// cache façades.
//
// Entries live in a dense slot arena. A map resolves keys to slot
// indices, and recency order is encoded as prev/next slot indices
// inside each slot, so every operation is a hash lookup plus a constant
// number of index relinks. No pointers into the map are retained.
package store

import (
	"fmt"
	"time"
)

// noSlot marks the absence of a neighboring slot in the recency list.
const noSlot = -1

// EvictCallback is invoked when an entry leaves the store involuntarily,
// either displaced by capacity pressure or purged as expired during a Get.
type EvictCallback[K comparable, V any] func(key K, value V)

// slot holds one cache entry plus its position in the recency list.
// A zero expiry means the entry never expires.
type slot[K comparable, V any] struct {
	key    K
	value  V
	expiry time.Time
	prev   int
	next   int
}

// Store is a bounded key/value store with LRU eviction and lazy TTL
// expiry. It performs no synchronization; callers own the concurrency
// model (one store per goroutine, or a lock around a shared one).
type Store[K comparable, V any] struct {
	capacity int
	ttl      time.Duration

	index map[K]int
	slots []slot[K, V]
	free  []int
	head  int // most recently used
	tail  int // least recently used

	now      func() time.Time
	onEvict  EvictCallback[K, V]
	onExpire EvictCallback[K, V]
}

// New creates a store with the given capacity and TTL.
// Capacity 0 yields a permanently disabled store that holds nothing.
// TTL 0 means entries never expire.
func New[K comparable, V any](capacity int, ttl time.Duration) (*Store[K, V], error) {
	return NewWithClock[K, V](capacity, ttl, time.Now)
}

// NewWithClock is like New but reads time from the given clock.
// Tests use this to drive TTL expiry deterministically.
func NewWithClock[K comparable, V any](capacity int, ttl time.Duration, now func() time.Time) (*Store[K, V], error) {
	if capacity < 0 {
		return nil, fmt.Errorf("store: negative capacity %d", capacity)
	}
	if ttl < 0 {
		return nil, fmt.Errorf("store: negative ttl %v", ttl)
	}
	if now == nil {
		now = time.Now
	}

	return &Store[K, V]{
		capacity: capacity,
		ttl:      ttl,
		index:    make(map[K]int, capacity),
		head:     noSlot,
		tail:     noSlot,
		now:      now,
	}, nil
}

// SetEvictCallback sets the callback invoked when an entry is displaced
// by capacity pressure.
func (s *Store[K, V]) SetEvictCallback(cb EvictCallback[K, V]) {
	s.onEvict = cb
}

// SetExpireCallback sets the callback invoked when an expired entry is
// purged during a Get.
func (s *Store[K, V]) SetExpireCallback(cb EvictCallback[K, V]) {
	s.onExpire = cb
}

// Get returns the value stored under key. An entry whose TTL has lapsed
// is purged on this access and reported as absent; a live entry is
// promoted to most recently used.
func (s *Store[K, V]) Get(key K) (V, bool) {
	var zero V

	i, ok := s.index[key]
	if !ok {
		return zero, false
	}

	if s.expired(i) {
		value := s.slots[i].value
		s.unlink(i)
		s.release(i, key)
		if s.onExpire != nil {
			s.onExpire(key, value)
		}
		return zero, false
	}

	s.moveToFront(i)
	return s.slots[i].value, true
}

// Put stores value under key. Overwriting an existing key refreshes its
// value, expiry and recency without changing the entry count. Inserting
// into a full store evicts the least recently used entry first.
// A store with capacity 0 ignores all puts.
func (s *Store[K, V]) Put(key K, value V) {
	if s.capacity == 0 {
		return
	}

	if i, ok := s.index[key]; ok {
		s.slots[i].value = value
		s.slots[i].expiry = s.expiryFrom(s.now())
		s.moveToFront(i)
		return
	}

	if len(s.index) >= s.capacity {
		s.evictOldest()
	}

	i := s.obtain()
	sl := &s.slots[i]
	sl.key = key
	sl.value = value
	sl.expiry = s.expiryFrom(s.now())
	s.pushFront(i)
	s.index[key] = i
}

// Remove deletes the entry under key and reports whether it was present.
func (s *Store[K, V]) Remove(key K) bool {
	i, ok := s.index[key]
	if !ok {
		return false
	}

	s.unlink(i)
	s.release(i, key)
	return true
}

// Clear removes every entry and recycles the arena.
func (s *Store[K, V]) Clear() {
	clear(s.index)
	s.slots = s.slots[:0]
	s.free = s.free[:0]
	s.head = noSlot
	s.tail = noSlot
}

// Len returns the current entry count. Expired-but-unread entries still
// count: they occupy a capacity slot until touched or evicted.
func (s *Store[K, V]) Len() int {
	return len(s.index)
}

// Capacity returns the configured capacity.
func (s *Store[K, V]) Capacity() int {
	return s.capacity
}

// TTL returns the configured time-to-live. Zero means entries never expire.
func (s *Store[K, V]) TTL() time.Duration {
	return s.ttl
}

// expiryFrom computes the expiry instant for an entry written at now.
func (s *Store[K, V]) expiryFrom(now time.Time) time.Time {
	if s.ttl == 0 {
		return time.Time{}
	}
	return now.Add(s.ttl)
}

func (s *Store[K, V]) expired(i int) bool {
	expiry := s.slots[i].expiry
	return !expiry.IsZero() && s.now().After(expiry)
}

// evictOldest removes the recency tail. Order is total, so the victim
// is always unambiguous.
func (s *Store[K, V]) evictOldest() {
	i := s.tail
	if i == noSlot {
		return
	}

	key := s.slots[i].key
	value := s.slots[i].value
	s.unlink(i)
	s.release(i, key)
	if s.onEvict != nil {
		s.onEvict(key, value)
	}
}

// obtain returns a free slot index, growing the arena if none is available.
func (s *Store[K, V]) obtain() int {
	if n := len(s.free); n > 0 {
		i := s.free[n-1]
		s.free = s.free[:n-1]
		return i
	}
	s.slots = append(s.slots, slot[K, V]{prev: noSlot, next: noSlot})
	return len(s.slots) - 1
}

// release removes key from the index and returns slot i to the free list.
// The slot is zeroed so the arena does not pin dead keys or values.
func (s *Store[K, V]) release(i int, key K) {
	delete(s.index, key)
	s.slots[i] = slot[K, V]{prev: noSlot, next: noSlot}
	s.free = append(s.free, i)
}

func (s *Store[K, V]) pushFront(i int) {
	sl := &s.slots[i]
	sl.prev = noSlot
	sl.next = s.head
	if s.head != noSlot {
		s.slots[s.head].prev = i
	}
	s.head = i
	if s.tail == noSlot {
		s.tail = i
	}
}

func (s *Store[K, V]) unlink(i int) {
	sl := &s.slots[i]
	if sl.prev != noSlot {
		s.slots[sl.prev].next = sl.next
	} else {
		s.head = sl.next
	}
	if sl.next != noSlot {
		s.slots[sl.next].prev = sl.prev
	} else {
		s.tail = sl.prev
	}
	sl.prev = noSlot
	sl.next = noSlot
}

func (s *Store[K, V]) moveToFront(i int) {
	if s.head == i {
		return
	}
	s.unlink(i)
	s.pushFront(i)
}
