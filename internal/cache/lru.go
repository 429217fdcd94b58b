// Package cache provides the query-result cache: a bounded memo of
// (SQL text, parameter tuple) -> materialized result table.
//
// The default backend is an in-process LRU. A Redis backend exists for
// deployments where several host processes should share one cache.
package cache

import (
	"container/list"
	"context"
	"sync"
	"sync/atomic"

	"github.com/rzpsarthak13/indexserve/internal/core"
)

// DefaultCapacity is the entry bound used when none is configured.
const DefaultCapacity = 64

// LRU is a thread-safe least-recently-used result cache. Entries are only
// ever complete tables; eviction happens on insert when at capacity, and
// Clear drops everything.
type LRU struct {
	mu       sync.Mutex
	capacity int
	ll       *list.List
	items    map[string]*list.Element

	hits   uint64
	misses uint64
}

type lruEntry struct {
	key   string
	table *core.ResultTable
}

// NewLRU creates an LRU cache bounded to capacity entries.
func NewLRU(capacity int) *LRU {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &LRU{
		capacity: capacity,
		ll:       list.New(),
		items:    make(map[string]*list.Element, capacity),
	}
}

// Get returns the cached table for key and marks it most recently used.
func (c *LRU) Get(_ context.Context, key string) (*core.ResultTable, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[key]
	if !ok {
		atomic.AddUint64(&c.misses, 1)
		return nil, false
	}
	c.ll.MoveToFront(elem)
	atomic.AddUint64(&c.hits, 1)
	return elem.Value.(*lruEntry).table, true
}

// Put stores table under key, evicting the least-recently-used entry when
// at capacity.
func (c *LRU) Put(_ context.Context, key string, table *core.ResultTable) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		elem.Value.(*lruEntry).table = table
		c.ll.MoveToFront(elem)
		return nil
	}

	for c.ll.Len() >= c.capacity {
		oldest := c.ll.Back()
		if oldest == nil {
			break
		}
		c.ll.Remove(oldest)
		delete(c.items, oldest.Value.(*lruEntry).key)
	}

	c.items[key] = c.ll.PushFront(&lruEntry{key: key, table: table})
	return nil
}

// Clear evicts every entry. Idempotent.
func (c *LRU) Clear(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.ll.Init()
	c.items = make(map[string]*list.Element, c.capacity)
	return nil
}

// Close is a no-op for the in-process cache.
func (c *LRU) Close() error { return nil }

// Len returns the current number of entries.
func (c *LRU) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ll.Len()
}

// Stats returns hit/miss counters since creation.
func (c *LRU) Stats() (hits, misses uint64) {
	return atomic.LoadUint64(&c.hits), atomic.LoadUint64(&c.misses)
}
