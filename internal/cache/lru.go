package cache

import (
	"container/list"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/hupe1980/pathstore/resource"
)

// Stats is a point-in-time view of a cache.
type Stats struct {
	Hits    int64
	Misses  int64
	Entries int
	Bytes   int64
}

// LRU is a byte-bounded least-recently-used cache. Returned slices must be
// treated as read-only.
type LRU struct {
	mu       sync.Mutex
	capacity int64
	size     int64
	items    map[string]*list.Element
	order    *list.List
	rc       *resource.Controller

	hits   atomic.Int64
	misses atomic.Int64
}

type entry struct {
	key   string
	value []byte
}

// NewLRU returns a cache holding at most capacity bytes.
// rc may be nil.
func NewLRU(capacity int64, rc *resource.Controller) *LRU {
	return &LRU{
		capacity: capacity,
		items:    make(map[string]*list.Element),
		order:    list.New(),
		rc:       rc,
	}
}

// Get returns the cached value for key.
func (c *LRU) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		c.hits.Add(1)
		c.order.MoveToFront(el)
		return el.Value.(*entry).value, true
	}
	c.misses.Add(1)
	return nil, false
}

// Set caches value under key. Values larger than the capacity, or that the
// memory budget refuses, are silently not cached.
func (c *LRU) Set(key string, value []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		c.removeElement(el)
	}

	n := int64(len(value))
	if n > c.capacity {
		return
	}
	for c.size+n > c.capacity {
		c.removeElement(c.order.Back())
	}
	if c.rc != nil && c.rc.TryAcquireMemory(n) != nil {
		return
	}

	c.items[key] = c.order.PushFront(&entry{key: key, value: value})
	c.size += n
}

// Remove drops key from the cache.
func (c *LRU) Remove(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		c.removeElement(el)
	}
}

// RemovePrefix drops every key starting with prefix.
func (c *LRU) RemovePrefix(prefix string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key, el := range c.items {
		if strings.HasPrefix(key, prefix) {
			c.removeElement(el)
		}
	}
}

// Purge empties the cache and returns its memory to the controller.
func (c *LRU) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for c.order.Len() > 0 {
		c.removeElement(c.order.Back())
	}
}

func (c *LRU) removeElement(el *list.Element) {
	c.order.Remove(el)
	e := el.Value.(*entry)
	delete(c.items, e.key)
	n := int64(len(e.value))
	c.size -= n
	if c.rc != nil {
		c.rc.ReleaseMemory(n)
	}
}

// Stats returns hit/miss counters and current occupancy.
func (c *LRU) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		Hits:    c.hits.Load(),
		Misses:  c.misses.Load(),
		Entries: len(c.items),
		Bytes:   c.size,
	}
}
