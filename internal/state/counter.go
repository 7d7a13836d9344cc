package state

import "sync"

// Counter counts attempts. It is never decremented.
type Counter struct {
	mu    sync.Mutex
	count int64
}

// Next increments the counter and returns the post-increment value
func (c *Counter) Next() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.count++
	return c.count
}

// Value returns the current count
func (c *Counter) Value() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count
}
