package store

import (
	"fmt"
	"testing"
	"time"
)

// fakeClock is a manually advanced clock for TTL tests.
type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

func mustStore[K comparable, V any](t *testing.T, capacity int, ttl time.Duration, now func() time.Time) *Store[K, V] {
	t.Helper()
	s, err := NewWithClock[K, V](capacity, ttl, now)
	if err != nil {
		t.Fatalf("NewWithClock failed: %v", err)
	}
	return s
}

func TestStoreRejectsNegativeConfig(t *testing.T) {
	if _, err := New[string, int](-1, 0); err == nil {
		t.Fatal("expected error for negative capacity")
	}
	if _, err := New[string, int](1, -time.Second); err == nil {
		t.Fatal("expected error for negative ttl")
	}
}

func TestStoreBasicPutGet(t *testing.T) {
	s := mustStore[string, string](t, 10, 0, nil)

	s.Put("key1", "value1")
	got, ok := s.Get("key1")
	if !ok {
		t.Fatal("expected to find key1")
	}
	if got != "value1" {
		t.Fatalf("expected value1, got %q", got)
	}

	if _, ok := s.Get("missing"); ok {
		t.Fatal("expected miss for absent key")
	}
}

func TestStoreLRUEviction(t *testing.T) {
	s := mustStore[string, int](t, 2, 0, nil)

	s.Put("a", 1)
	s.Put("b", 2)
	s.Put("c", 3)

	if _, ok := s.Get("a"); ok {
		t.Fatal("expected a to be evicted")
	}
	if v, ok := s.Get("b"); !ok || v != 2 {
		t.Fatalf("expected b==2, got %d (found=%v)", v, ok)
	}
	if v, ok := s.Get("c"); !ok || v != 3 {
		t.Fatalf("expected c==3, got %d (found=%v)", v, ok)
	}
	if s.Len() != 2 {
		t.Fatalf("expected len 2, got %d", s.Len())
	}
}

func TestStoreGetRefreshesRecency(t *testing.T) {
	s := mustStore[string, int](t, 2, 0, nil)

	s.Put("a", 1)
	s.Put("b", 2)
	if _, ok := s.Get("a"); !ok {
		t.Fatal("expected a present")
	}
	s.Put("c", 3)

	// b was least recently used, so it goes, not a.
	if _, ok := s.Get("b"); ok {
		t.Fatal("expected b to be evicted")
	}
	if v, ok := s.Get("a"); !ok || v != 1 {
		t.Fatalf("expected a==1, got %d (found=%v)", v, ok)
	}
	if v, ok := s.Get("c"); !ok || v != 3 {
		t.Fatalf("expected c==3, got %d (found=%v)", v, ok)
	}
}

func TestStoreOverwriteKeepsSize(t *testing.T) {
	s := mustStore[string, int](t, 4, 0, nil)

	s.Put("k", 1)
	s.Put("k", 2)

	if s.Len() != 1 {
		t.Fatalf("expected len 1 after overwrite, got %d", s.Len())
	}
	if v, ok := s.Get("k"); !ok || v != 2 {
		t.Fatalf("expected k==2, got %d (found=%v)", v, ok)
	}
}

func TestStoreOverwritePromotesEntry(t *testing.T) {
	s := mustStore[string, int](t, 2, 0, nil)

	s.Put("a", 1)
	s.Put("b", 2)
	s.Put("a", 10) // a becomes most recent
	s.Put("c", 3)  // evicts b

	if _, ok := s.Get("b"); ok {
		t.Fatal("expected b to be evicted")
	}
	if v, ok := s.Get("a"); !ok || v != 10 {
		t.Fatalf("expected a==10, got %d (found=%v)", v, ok)
	}
}

func TestStoreCapacityBound(t *testing.T) {
	const capacity = 8
	s := mustStore[string, int](t, capacity, 0, nil)

	for i := 0; i < 100; i++ {
		s.Put(fmt.Sprintf("key-%d", i), i)
		if s.Len() > capacity {
			t.Fatalf("len %d exceeds capacity %d after %d puts", s.Len(), capacity, i+1)
		}
	}
	if s.Len() != capacity {
		t.Fatalf("expected len %d, got %d", capacity, s.Len())
	}
}

func TestStoreDisabledWhenCapacityZero(t *testing.T) {
	s := mustStore[string, int](t, 0, 0, nil)

	for i := 0; i < 10; i++ {
		s.Put(fmt.Sprintf("key-%d", i), i)
	}

	if s.Len() != 0 {
		t.Fatalf("expected len 0 for disabled store, got %d", s.Len())
	}
	if _, ok := s.Get("key-0"); ok {
		t.Fatal("expected miss on disabled store")
	}
}

func TestStoreTTLExpiry(t *testing.T) {
	clock := newFakeClock()
	s := mustStore[string, string](t, 10, time.Second, clock.Now)

	s.Put("k", "v")
	if v, ok := s.Get("k"); !ok || v != "v" {
		t.Fatalf("expected immediate hit, got %q (found=%v)", v, ok)
	}

	clock.Advance(1500 * time.Millisecond)

	if _, ok := s.Get("k"); ok {
		t.Fatal("expected expired entry to be absent")
	}
	if s.Len() != 0 {
		t.Fatalf("expected expired entry purged, len=%d", s.Len())
	}
}

func TestStoreTTLBoundaryIsExclusive(t *testing.T) {
	clock := newFakeClock()
	s := mustStore[string, int](t, 10, time.Second, clock.Now)

	s.Put("k", 1)
	clock.Advance(time.Second)

	// Exactly at the expiry instant the entry is still live; only
	// strictly-later observations see it expired.
	if _, ok := s.Get("k"); !ok {
		t.Fatal("expected entry live exactly at expiry instant")
	}

	clock.Advance(time.Nanosecond)
	if _, ok := s.Get("k"); ok {
		t.Fatal("expected entry expired past expiry instant")
	}
}

func TestStoreTTLZeroNeverExpires(t *testing.T) {
	clock := newFakeClock()
	s := mustStore[string, int](t, 10, 0, clock.Now)

	s.Put("k", 42)
	clock.Advance(1000 * time.Hour)

	if v, ok := s.Get("k"); !ok || v != 42 {
		t.Fatalf("expected k==42 after long delay, got %d (found=%v)", v, ok)
	}
}

func TestStoreOverwriteRefreshesExpiry(t *testing.T) {
	clock := newFakeClock()
	s := mustStore[string, int](t, 10, time.Second, clock.Now)

	s.Put("k", 1)
	clock.Advance(900 * time.Millisecond)
	s.Put("k", 2) // expiry recomputed from now
	clock.Advance(900 * time.Millisecond)

	if v, ok := s.Get("k"); !ok || v != 2 {
		t.Fatalf("expected refreshed entry live, got %d (found=%v)", v, ok)
	}
}

func TestStoreExpiredEntryOccupiesSlotUntilRead(t *testing.T) {
	clock := newFakeClock()
	s := mustStore[string, int](t, 10, time.Second, clock.Now)

	s.Put("dead", 1)
	clock.Advance(2 * time.Second)

	// No background sweep: the entry still counts until a Get touches it.
	if s.Len() != 1 {
		t.Fatalf("expected expired-but-unread entry to occupy a slot, len=%d", s.Len())
	}
	if _, ok := s.Get("dead"); ok {
		t.Fatal("expected lazy purge on read")
	}
	if s.Len() != 0 {
		t.Fatalf("expected len 0 after lazy purge, got %d", s.Len())
	}
}

func TestStoreRemove(t *testing.T) {
	s := mustStore[string, int](t, 10, 0, nil)

	s.Put("k", 1)
	if !s.Remove("k") {
		t.Fatal("expected Remove to report presence")
	}
	if s.Remove("k") {
		t.Fatal("expected Remove to report absence on second call")
	}
	if s.Len() != 0 {
		t.Fatalf("expected len 0, got %d", s.Len())
	}
}

func TestStoreClear(t *testing.T) {
	s := mustStore[string, int](t, 10, 0, nil)

	for i := 0; i < 5; i++ {
		s.Put(fmt.Sprintf("key-%d", i), i)
	}
	s.Clear()

	if s.Len() != 0 {
		t.Fatalf("expected len 0 after Clear, got %d", s.Len())
	}
	if _, ok := s.Get("key-0"); ok {
		t.Fatal("expected miss after Clear")
	}

	// The store stays usable after Clear.
	s.Put("k", 1)
	if v, ok := s.Get("k"); !ok || v != 1 {
		t.Fatalf("expected k==1 after reuse, got %d (found=%v)", v, ok)
	}
}

func TestStoreIntrospection(t *testing.T) {
	s := mustStore[string, int](t, 7, 3*time.Second, nil)

	if s.Capacity() != 7 {
		t.Fatalf("expected capacity 7, got %d", s.Capacity())
	}
	if s.TTL() != 3*time.Second {
		t.Fatalf("expected ttl 3s, got %v", s.TTL())
	}
	if s.Len() != 0 {
		t.Fatalf("expected len 0, got %d", s.Len())
	}
}

func TestStoreEvictCallback(t *testing.T) {
	s := mustStore[string, int](t, 2, 0, nil)

	var evicted []string
	s.SetEvictCallback(func(key string, _ int) {
		evicted = append(evicted, key)
	})

	s.Put("a", 1)
	s.Put("b", 2)
	s.Put("c", 3)

	if len(evicted) != 1 || evicted[0] != "a" {
		t.Fatalf("expected eviction of a, got %v", evicted)
	}
}

func TestStoreExpireCallback(t *testing.T) {
	clock := newFakeClock()
	s := mustStore[string, int](t, 10, time.Second, clock.Now)

	var expired []string
	s.SetExpireCallback(func(key string, _ int) {
		expired = append(expired, key)
	})
	var evicted int
	s.SetEvictCallback(func(string, int) { evicted++ })

	s.Put("k", 1)
	clock.Advance(2 * time.Second)
	s.Get("k")

	if len(expired) != 1 || expired[0] != "k" {
		t.Fatalf("expected expiry callback for k, got %v", expired)
	}
	if evicted != 0 {
		t.Fatalf("expected no capacity evictions, got %d", evicted)
	}
}

func TestStoreSlotReuseAfterRemove(t *testing.T) {
	s := mustStore[string, int](t, 3, 0, nil)

	for round := 0; round < 50; round++ {
		key := fmt.Sprintf("key-%d", round)
		s.Put(key, round)
		if !s.Remove(key) {
			t.Fatalf("round %d: expected removal", round)
		}
	}

	// Every put reused the single freed slot instead of growing the arena.
	if got := len(s.slots); got != 1 {
		t.Fatalf("expected arena of 1 slot, got %d", got)
	}
}

func TestStoreChurnPreservesInvariants(t *testing.T) {
	const capacity = 16
	s := mustStore[int, int](t, capacity, 0, nil)

	for i := 0; i < 10000; i++ {
		s.Put(i%37, i)
		if i%3 == 0 {
			s.Get(i % 11)
		}
		if i%7 == 0 {
			s.Remove(i % 5)
		}
		assertListConsistent(t, s)
	}
}

// assertListConsistent verifies the map/recency-order bijection: walking
// the list from head visits exactly the indexed slots, in both directions.
func assertListConsistent[K comparable, V any](t *testing.T, s *Store[K, V]) {
	t.Helper()

	seen := 0
	prev := noSlot
	for i := s.head; i != noSlot; i = s.slots[i].next {
		if s.slots[i].prev != prev {
			t.Fatalf("slot %d has prev %d, want %d", i, s.slots[i].prev, prev)
		}
		if j, ok := s.index[s.slots[i].key]; !ok || j != i {
			t.Fatalf("slot %d not indexed under its key", i)
		}
		prev = i
		seen++
		if seen > len(s.index) {
			t.Fatal("recency list longer than index")
		}
	}
	if prev != s.tail {
		t.Fatalf("tail is %d, want %d", s.tail, prev)
	}
	if seen != len(s.index) {
		t.Fatalf("recency list has %d nodes, index has %d", seen, len(s.index))
	}
	if s.capacity >= 0 && len(s.index) > s.capacity {
		t.Fatalf("len %d exceeds capacity %d", len(s.index), s.capacity)
	}
}
