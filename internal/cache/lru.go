// Package cache holds the bounded memo used for per-category spent totals.
package cache

import (
	"container/list"
	"sync"
	"time"
)

// Stats counts lookups since the cache was created.
type Stats struct {
	Hits      int64
	Misses    int64
	Evictions int64
}

// LRU is a size-bounded map whose entries also expire after ttl.
// A zero ttl keeps entries until they are evicted or cleared.
type LRU[K comparable, V any] struct {
	mu      sync.Mutex
	max     int
	ttl     time.Duration
	now     func() time.Time
	entries map[K]*list.Element
	order   *list.List // front is most recently used
	stats   Stats
	gen     uint64
}

type entry[K comparable, V any] struct {
	key     K
	value   V
	expires time.Time
}

func NewLRU[K comparable, V any](max int, ttl time.Duration) *LRU[K, V] {
	if max < 1 {
		max = 1
	}
	return &LRU[K, V]{
		max:     max,
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[K]*list.Element),
		order:   list.New(),
	}
}

// WithClock replaces the expiry clock.
func (c *LRU[K, V]) WithClock(now func() time.Time) *LRU[K, V] {
	c.now = now
	return c
}

func (c *LRU[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	elem, ok := c.entries[key]
	if !ok {
		c.stats.Misses++
		return zero, false
	}
	e := elem.Value.(*entry[K, V])
	if c.expired(e) {
		c.remove(elem)
		c.stats.Misses++
		return zero, false
	}
	c.order.MoveToFront(elem)
	c.stats.Hits++
	return e.value, true
}

func (c *LRU[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.set(key, value)
}

// Generation changes on every Clear. Read it before computing a value
// and hand it to SetIf.
func (c *LRU[K, V]) Generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen
}

// SetIf stores value only when no Clear happened since gen was read, so a
// value computed from data that has since changed is dropped.
func (c *LRU[K, V]) SetIf(key K, value V, gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return false
	}
	c.set(key, value)
	return true
}

func (c *LRU[K, V]) set(key K, value V) {
	e := &entry[K, V]{key: key, value: value}
	if c.ttl > 0 {
		e.expires = c.now().Add(c.ttl)
	}
	if elem, ok := c.entries[key]; ok {
		elem.Value = e
		c.order.MoveToFront(elem)
		return
	}
	c.entries[key] = c.order.PushFront(e)
	for c.order.Len() > c.max {
		c.remove(c.order.Back())
		c.stats.Evictions++
	}
}

// Clear drops every entry. Stats are kept.
func (c *LRU[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.entries)
	c.order.Init()
	c.gen++
}

// Prune removes expired entries and reports how many went.
func (c *LRU[K, V]) Prune() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for elem := c.order.Back(); elem != nil; {
		prev := elem.Prev()
		if c.expired(elem.Value.(*entry[K, V])) {
			c.remove(elem)
			n++
		}
		elem = prev
	}
	return n
}

func (c *LRU[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

func (c *LRU[K, V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

func (c *LRU[K, V]) expired(e *entry[K, V]) bool {
	return c.ttl > 0 && !c.now().Before(e.expires)
}

func (c *LRU[K, V]) remove(elem *list.Element) {
	delete(c.entries, elem.Value.(*entry[K, V]).key)
	c.order.Remove(elem)
}
