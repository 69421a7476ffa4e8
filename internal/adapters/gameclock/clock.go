// Package gameclock implements the GameClock port as a two-sided chess
// clock: at most one side runs at a time and its remaining budget drains
// while it runs.
package gameclock

import (
	"sync"
	"time"

	"github.com/quietpawn/quietpawn/internal/ports"
)

const noSide = ports.Side(-1)

// Clock is a per-side countdown clock. Time is read through the Clock
// port so tests can drive it.
type Clock struct {
	clk ports.Clock

	mu        sync.Mutex
	remaining [2]time.Duration
	running   ports.Side
	startedAt time.Time
}

// New returns a stopped clock with the given budget on both sides.
func New(clk ports.Clock, budget time.Duration) *Clock {
	return &Clock{
		clk:       clk,
		remaining: [2]time.Duration{budget, budget},
		running:   noSide,
	}
}

// Reset stops the clock and puts the given budget on both sides.
func (c *Clock) Reset(budget time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.remaining = [2]time.Duration{budget, budget}
	c.running = noSide
}

// RemainingTime returns the time left for a side, including the elapsed
// portion of an in-progress turn.
func (c *Clock) RemainingTime(side ports.Side) time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	left := c.remaining[side]
	if c.running == side {
		left -= c.clk.Now().Sub(c.startedAt)
	}
	if left < 0 {
		return 0
	}
	return left
}

// StartOne starts a side's clock. Used on the first ply, when no side is
// running yet.
func (c *Clock) StartOne(side ports.Side) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.start(side)
}

// StartOneStopOther settles the currently running side and starts the
// other. locked is part of the port contract for implementations tied to
// a UI thread; this adapter has its own lock and ignores it.
func (c *Clock) StartOneStopOther(side ports.Side, locked bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stop()
	c.start(side)
}

// Running returns the side whose clock is draining, or false when the
// clock is stopped.
func (c *Clock) Running() (ports.Side, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running == noSide {
		return 0, false
	}
	return c.running, true
}

// start begins draining side. Callers hold c.mu.
func (c *Clock) start(side ports.Side) {
	c.running = side
	c.startedAt = c.clk.Now()
}

// stop settles the running side's elapsed time. Callers hold c.mu.
func (c *Clock) stop() {
	if c.running == noSide {
		return
	}
	c.remaining[c.running] -= c.clk.Now().Sub(c.startedAt)
	if c.remaining[c.running] < 0 {
		c.remaining[c.running] = 0
	}
	c.running = noSide
}

var _ ports.GameClock = (*Clock)(nil)
