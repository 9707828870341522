package preview

import (
	"strconv"
	"sync"

	"github.com/sjoeboo/peek/internal/entry"
	"github.com/sjoeboo/peek/internal/ringset"
)

const (
	// DefaultCacheSize bounds the number of computed previews kept in memory.
	DefaultCacheSize = 100
	// DefaultRenderedCacheSize bounds the number of rendered previews.
	DefaultRenderedCacheSize = 25
)

// bounded is a fixed-capacity map evicting keys in insertion order.
type bounded[V any] struct {
	mu      sync.Mutex
	entries map[string]V
	ring    *ringset.RingSet[string]
}

func newBounded[V any](capacity int) *bounded[V] {
	return &bounded[V]{
		entries: make(map[string]V),
		ring:    ringset.New[string](capacity),
	}
}

func (b *bounded[V]) get(key string) (V, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	v, ok := b.entries[key]
	return v, ok
}

// insert stores v under key, returning the key evicted to make room.
func (b *bounded[V]) insert(key string, v V) (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries[key] = v
	evicted, ok := b.ring.Push(key)
	if ok {
		delete(b.entries, evicted)
	}
	return evicted, ok
}

func (b *bounded[V]) len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.entries)
}

func (b *bounded[V]) clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries = make(map[string]V)
	b.ring.Clear()
}

// Cache holds computed previews keyed by CacheKey.
// Safe for concurrent use.
type Cache struct {
	b *bounded[*Preview]
}

// NewCache creates a cache holding at most capacity previews.
func NewCache(capacity int) *Cache {
	return &Cache{b: newBounded[*Preview](capacity)}
}

// Get returns the preview stored under key.
func (c *Cache) Get(key string) (*Preview, bool) {
	return c.b.get(key)
}

// Insert stores p under key. Once full, the oldest inserted key is evicted.
// Re-inserting a key replaces its value without refreshing its age.
func (c *Cache) Insert(key string, p *Preview) (evicted string, ok bool) {
	return c.b.insert(key, p)
}

// Len returns the number of cached previews.
func (c *Cache) Len() int {
	return c.b.len()
}

// Clear drops every cached preview.
func (c *Cache) Clear() {
	c.b.clear()
}

// RenderedCache holds previews already drawn for the terminal, keyed by
// RenderedKey. Only fresh (non-stale) previews belong here.
type RenderedCache struct {
	b *bounded[string]
}

// NewRenderedCache creates a rendered cache holding at most capacity items.
func NewRenderedCache(capacity int) *RenderedCache {
	return &RenderedCache{b: newBounded[string](capacity)}
}

func (c *RenderedCache) Get(key string) (string, bool) {
	return c.b.get(key)
}

func (c *RenderedCache) Insert(key, rendered string) {
	c.b.insert(key, rendered)
}

func (c *RenderedCache) Len() int {
	return c.b.len()
}

func (c *RenderedCache) Clear() {
	c.b.clear()
}

// CacheKey identifies a computed preview: entry name plus command template.
func CacheKey(e entry.Entry, cmd entry.PreviewCommand) string {
	return e.Name + cmd.Template
}

// RenderedKey identifies a rendered preview. The line number is part of the
// key because the render scrolls to it.
func RenderedKey(e entry.Entry, cmd entry.PreviewCommand) string {
	if e.LineNumber > 0 {
		return e.Name + strconv.Itoa(e.LineNumber) + cmd.Template
	}
	return e.Name + cmd.Template
}
