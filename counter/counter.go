// Package counter provides a mutex-guarded integer accumulator shared
// by concurrent workers.
//
// All mutation goes through Add, which is linearizable: any set of
// concurrent Add calls is equivalent to some sequential application of
// their deltas, so no update is ever lost or applied twice. Never share
// a raw integer between workers instead of a Counter.
package counter

import "sync"

// Counter is a shared integer accumulator. The zero value is ready to
// use and starts at zero.
type Counter struct {
	mu    sync.Mutex
	value int64
}

// New creates a Counter starting at initial.
func New(initial int64) *Counter {
	return &Counter{value: initial}
}

// Add applies delta and returns the new value.
func (c *Counter) Add(delta int64) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.value += delta
	return c.value
}

// Inc adds one and returns the new value.
func (c *Counter) Inc() int64 { return c.Add(1) }

// Value returns the value at some instant during the call. Other
// workers may mutate concurrently, so the snapshot can be stale by the
// time the caller inspects it.
func (c *Counter) Value() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value
}
