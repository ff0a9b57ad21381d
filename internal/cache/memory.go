package cache

import (
	"container/list"
	"context"
	"strings"
	"sync"
	"time"

	"marketdata/internal/model"
)

const (
	// DefaultTTL is how long a stored series stays readable.
	DefaultTTL = 60 * time.Second
	// DefaultMaxEntries bounds the memory cache before LRU eviction.
	DefaultMaxEntries = 1000
)

type memEntry struct {
	key      string
	bars     []model.Bar
	storedAt time.Time
}

// MemoryCache is a mutex-guarded TTL+LRU cache. Expiry is measured from
// store time with a strict `age > ttl` predicate, so ttl=0 expires an entry
// after any positive delay. Reads promote an entry to most-recently-used
// but do not reset its TTL. Every public call sweeps expired entries first,
// so expired data is unobservable even before eviction by capacity.
type MemoryCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	max     int
	order   *list.List               // front = least recently used
	entries map[string]*list.Element // key -> element holding *memEntry
}

// NewMemoryCache builds a cache with the given TTL and capacity.
// Non-positive maxEntries falls back to DefaultMaxEntries.
func NewMemoryCache(ttl time.Duration, maxEntries int) *MemoryCache {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &MemoryCache{
		ttl:     ttl,
		max:     maxEntries,
		order:   list.New(),
		entries: make(map[string]*list.Element),
	}
}

func (c *MemoryCache) GetBars(_ context.Context, symbol string, start, end time.Time, timeframe model.Timeframe) ([]model.Bar, bool) {
	key := Key(symbol, timeframe, start, end)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.evictExpired()
	el, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	ent := el.Value.(*memEntry)
	if time.Since(ent.storedAt) > c.ttl {
		c.remove(el)
		return nil, false
	}
	c.order.MoveToBack(el)
	return ent.bars, true
}

func (c *MemoryCache) StoreBars(_ context.Context, symbol string, bars []model.Bar, timeframe model.Timeframe, start, end time.Time) error {
	if len(bars) == 0 {
		return nil
	}
	key := Key(symbol, timeframe, start, end)

	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[key]; ok {
		ent := el.Value.(*memEntry)
		ent.bars = bars
		ent.storedAt = time.Now()
		c.order.MoveToBack(el)
	} else {
		c.entries[key] = c.order.PushBack(&memEntry{key: key, bars: bars, storedAt: time.Now()})
	}
	for len(c.entries) > c.max {
		c.remove(c.order.Front())
	}
	return nil
}

func (c *MemoryCache) HasData(_ context.Context, symbol string, timeframe model.Timeframe, start, end time.Time) bool {
	key := Key(symbol, timeframe, start, end)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.evictExpired()
	_, ok := c.entries[key]
	return ok
}

func (c *MemoryCache) Clear(_ context.Context, symbol string) error {
	prefix := strings.ToUpper(symbol) + "|"

	c.mu.Lock()
	defer c.mu.Unlock()

	for key, el := range c.entries {
		if strings.HasPrefix(key, prefix) {
			c.remove(el)
		}
	}
	return nil
}

func (c *MemoryCache) ClearAll(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.order.Init()
	c.entries = make(map[string]*list.Element)
	return nil
}

// Len reports the live entry count (expired entries included until the next
// sweep).
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// evictExpired drops every entry older than the TTL. Caller holds the lock.
func (c *MemoryCache) evictExpired() {
	now := time.Now()
	var expired []*list.Element
	for el := c.order.Front(); el != nil; el = el.Next() {
		if now.Sub(el.Value.(*memEntry).storedAt) > c.ttl {
			expired = append(expired, el)
		}
	}
	for _, el := range expired {
		c.remove(el)
	}
}

// remove unlinks one element. Caller holds the lock.
func (c *MemoryCache) remove(el *list.Element) {
	if el == nil {
		return
	}
	delete(c.entries, el.Value.(*memEntry).key)
	c.order.Remove(el)
}
