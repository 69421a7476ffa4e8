// Package fakegameclock provides a recording GameClock implementation for testing.
package fakegameclock

import (
	"fmt"
	"sync"
	"time"

	"github.com/quietpawn/quietpawn/internal/ports"
)

// Clock records every call made against the GameClock port and serves
// fixed remaining times.
type Clock struct {
	mu        sync.Mutex
	remaining [2]time.Duration
	calls     []string
}

// New returns a fake clock serving the given remaining time for both sides.
func New(remaining time.Duration) *Clock {
	return &Clock{remaining: [2]time.Duration{remaining, remaining}}
}

// SetRemaining fixes the remaining time served for one side.
func (c *Clock) SetRemaining(side ports.Side, d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.remaining[side] = d
}

// Reset records the reset and serves the budget on both sides.
func (c *Clock) Reset(budget time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.remaining = [2]time.Duration{budget, budget}
	c.calls = append(c.calls, fmt.Sprintf("reset %s", budget))
}

// RemainingTime returns the configured remaining time.
func (c *Clock) RemainingTime(side ports.Side) time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remaining[side]
}

// StartOne records the call.
func (c *Clock) StartOne(side ports.Side) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, fmt.Sprintf("start %s", side))
}

// StartOneStopOther records the call and the locked flag.
func (c *Clock) StartOneStopOther(side ports.Side, locked bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, fmt.Sprintf("start %s stop %s locked=%t", side, side.Other(), locked))
}

// Calls returns the recorded calls in order.
func (c *Clock) Calls() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.calls...)
}

var _ ports.GameClock = (*Clock)(nil)
