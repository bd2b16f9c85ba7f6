package routing

import (
	"context"
	"sync"
	"time"

	"orthoroute/core"
)

const defaultDrainTimeout = 250 * time.Millisecond

// Coordinator buffers the routes computed in one pass and releases them
// atomically once every expected connector has reported, or a timeout
// elapses. This keeps one connector's rerouted path from applying a frame
// before its siblings when several connectors react to the same node move.
type Coordinator struct {
	timeout time.Duration

	mu       sync.Mutex
	expected int
	routes   map[string]core.Polyline
	done     chan struct{}
}

// NewCoordinator creates a batch coordinator with the given drain timeout.
func NewCoordinator(timeout time.Duration) *Coordinator {
	if timeout <= 0 {
		timeout = defaultDrainTimeout
	}
	return &Coordinator{timeout: timeout}
}

// Begin starts a new batch expecting the given number of connectors. Any
// routes buffered from an earlier batch are discarded.
func (c *Coordinator) Begin(expected int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.expected = expected
	c.routes = make(map[string]core.Polyline, expected)
	c.done = make(chan struct{})
	if expected == 0 {
		close(c.done)
	}
}

// Report buffers one connector's computed route. Reporting the same
// connector twice keeps the latest route without double-counting.
func (c *Coordinator) Report(connectorID string, pl core.Polyline) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.routes == nil {
		return
	}
	_, seen := c.routes[connectorID]
	c.routes[connectorID] = pl
	if !seen && len(c.routes) >= c.expected {
		close(c.done)
	}
}

// Complete reports whether every expected connector has reported.
func (c *Coordinator) Complete() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.routes != nil && len(c.routes) >= c.expected
}

// Drain blocks until the batch completes, the timeout elapses, or the
// context is canceled, then releases all buffered routes at once. The
// boolean reports whether the batch was complete.
func (c *Coordinator) Drain(ctx context.Context) (map[string]core.Polyline, bool) {
	c.mu.Lock()
	done := c.done
	c.mu.Unlock()

	complete := true
	if done == nil {
		complete = false
	} else {
		timer := time.NewTimer(c.timeout)
		defer timer.Stop()
		select {
		case <-done:
		case <-timer.C:
			complete = false
		case <-ctx.Done():
			complete = false
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	out := c.routes
	c.routes = nil
	c.done = nil
	c.expected = 0
	if out == nil {
		out = map[string]core.Polyline{}
	}
	return out, complete
}
