package state

import (
	"sync"

	"golang.org/x/sync/singleflight"
)

// MemoStats is a snapshot of cache counters
type MemoStats struct {
	Hits    uint64
	Misses  uint64
	Entries int
}

// MemoCache maps canonical argument keys to results.
//
// There is no expiry, eviction or size bound: every distinct successful argument
// list stays cached for the lifetime of the owning operation. Concurrent misses on
// the same key run the computation once.
type MemoCache[R any] struct {
	mu      sync.RWMutex
	entries map[string]R
	hits    uint64
	misses  uint64
	group   singleflight.Group
}

// NewMemoCache creates an empty cache
func NewMemoCache[R any]() *MemoCache[R] {
	return &MemoCache[R]{
		entries: make(map[string]R),
	}
}

// GetOrCompute returns the cached result for key, or runs compute and caches its
// result. The boolean reports a cache hit: callers that waited on another
// caller's computation of the same key count as hits. Failed computations are
// not cached.
func (c *MemoCache[R]) GetOrCompute(key string, compute func() (R, error)) (R, bool, error) {
	if value, ok := c.lookup(key); ok {
		return value, true, nil
	}

	var executed, hit bool
	v, err, shared := c.group.Do(key, func() (interface{}, error) {
		executed = true

		// Another caller may have stored the key between lookup and Do
		if value, ok := c.lookup(key); ok {
			hit = true
			return value, nil
		}

		c.mu.Lock()
		c.misses++
		c.mu.Unlock()

		value, err := compute()
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.entries[key] = value
		c.mu.Unlock()

		return value, nil
	})
	if err != nil {
		var zero R
		return zero, false, err
	}

	if shared && !executed {
		c.mu.Lock()
		c.hits++
		c.mu.Unlock()
		hit = true
	}

	value, _ := v.(R)
	return value, hit, nil
}

// Get returns the cached result for key without counting a hit or miss
func (c *MemoCache[R]) Get(key string) (R, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	value, ok := c.entries[key]
	return value, ok
}

// Len returns the number of cached entries
func (c *MemoCache[R]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Stats returns a snapshot of the cache counters
func (c *MemoCache[R]) Stats() MemoStats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return MemoStats{
		Hits:    c.hits,
		Misses:  c.misses,
		Entries: len(c.entries),
	}
}

func (c *MemoCache[R]) lookup(key string) (R, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	value, ok := c.entries[key]
	if ok {
		c.hits++
	}
	return value, ok
}
