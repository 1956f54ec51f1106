package memory

import (
	"context"
	"sync"
)

// Counter is a process-local usage counter. Fine for a single instance;
// use the SQL or redis counter when running more than one.
type Counter struct {
	mu     sync.Mutex
	counts map[string]int
}

func NewCounter() *Counter {
	return &Counter{counts: make(map[string]int)}
}

func (c *Counter) Get(_ context.Context, key string) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counts[key], nil
}

func (c *Counter) Increment(_ context.Context, key string) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counts[key]++
	return c.counts[key], nil
}

func (c *Counter) Decrement(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.counts[key] > 0 {
		c.counts[key]--
	}
	return nil
}
