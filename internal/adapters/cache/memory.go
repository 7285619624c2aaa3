// Package cache stores video search results keyed by the provider query.
package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aromabalance/balance/internal/domain/model"
)

// Cache keeps search results so repeated lookups for the same recipe do not
// spend provider quota. Implementations must be safe for concurrent use.
// A failing backend behaves like a miss; callers never see cache errors.
type Cache interface {
	// Get returns the cached candidates for key and whether they were found.
	Get(ctx context.Context, key string) ([]model.VideoCandidate, bool)

	// Put stores candidates under key, replacing any previous value.
	Put(ctx context.Context, key string, candidates []model.VideoCandidate)

	Size() int64
}

// node represents a single entry in the linked list
type node struct {
	key      string
	value    []model.VideoCandidate
	storedAt time.Time
	next     *node
}

// reset clears the node state for reuse
func (n *node) reset() {
	n.key = ""
	n.value = nil
	n.storedAt = time.Time{}
	n.next = nil
}

// inMemoryCache implements Cache with a map plus a singly linked list.
// For bounded mode (maxSize > 0) the oldest entry is evicted first and nodes come from a sync.Pool.
// For unbounded mode (maxSize <= 0) entries are never evicted by size.
type inMemoryCache struct {
	mu       sync.Mutex
	entries  map[string]*node
	head     *node // most recently inserted
	maxSize  int
	ttl      time.Duration // 0 disables expiry
	now      func() time.Time
	size     atomic.Int64
	nodePool sync.Pool
}

// NewInMemory creates a new in-memory cache with configuration options.
func NewInMemory(opts ...Option) Cache {
	c := &inMemoryCache{
		maxSize: 1000,
		now:     time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	c.entries = make(map[string]*node)
	c.nodePool = sync.Pool{
		New: func() interface{} {
			return &node{}
		},
	}

	return c
}

// Get returns a copy of the cached candidates for key.
func (c *inMemoryCache) Get(_ context.Context, key string) ([]model.VideoCandidate, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.expired(n) {
		c.remove(n)
		return nil, false
	}
	return copyCandidates(n.value), true
}

// Put stores candidates under key. An existing key keeps its list position.
func (c *inMemoryCache) Put(_ context.Context, key string, candidates []model.VideoCandidate) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if n, ok := c.entries[key]; ok {
		n.value = copyCandidates(candidates)
		n.storedAt = c.now()
		return
	}

	if c.maxSize > 0 && len(c.entries) >= c.maxSize {
		c.evictOldest()
	}

	n := c.nodePool.Get().(*node)
	n.key = key
	n.value = copyCandidates(candidates)
	n.storedAt = c.now()
	n.next = c.head

	c.head = n
	c.entries[key] = n
	c.size.Add(1)
}

// Size returns the current number of entries.
func (c *inMemoryCache) Size() int64 {
	return c.size.Load()
}

func (c *inMemoryCache) expired(n *node) bool {
	return c.ttl > 0 && c.now().Sub(n.storedAt) >= c.ttl
}

// remove unlinks n from the list and the map.
// Must be called with c.mu held.
func (c *inMemoryCache) remove(n *node) {
	delete(c.entries, n.key)

	if c.head == n {
		c.head = n.next
	} else {
		current := c.head
		for current != nil && current.next != n {
			current = current.next
		}
		if current != nil {
			current.next = n.next
		}
	}

	n.reset()
	c.nodePool.Put(n)
	c.size.Add(-1)
}

// evictOldest removes the tail of the list, which is the earliest inserted entry.
// Must be called with c.mu held.
func (c *inMemoryCache) evictOldest() {
	if c.head == nil {
		return
	}

	var prev *node
	current := c.head
	for current.next != nil {
		prev = current
		current = current.next
	}

	delete(c.entries, current.key)
	if prev == nil {
		c.head = nil
	} else {
		prev.next = nil
	}
	current.reset()
	c.nodePool.Put(current)
	c.size.Add(-1)
}

func copyCandidates(in []model.VideoCandidate) []model.VideoCandidate {
	if in == nil {
		return nil
	}
	out := make([]model.VideoCandidate, len(in))
	copy(out, in)
	return out
}
