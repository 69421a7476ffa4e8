package ports

import "time"

// Side identifies a player. White is the first mover.
type Side int

const (
	SideWhite Side = 0
	SideBlack Side = 1
)

// Other returns the opposing side.
func (s Side) Other() Side {
	if s == SideWhite {
		return SideBlack
	}
	return SideWhite
}

// String returns the side name used in logs.
func (s Side) String() string {
	if s == SideWhite {
		return "white"
	}
	return "black"
}

// GameClock is the session's view of the chess clock. The clock itself is
// an external collaborator; the session only starts, stops and reads it.
type GameClock interface {
	// Reset sets both sides to the given time budget and stops the clock.
	Reset(budget time.Duration)

	// RemainingTime returns the time left for a side.
	RemainingTime(side Side) time.Duration

	// StartOne starts a side's clock without touching the other side.
	// Used for the very first ply, when no clock is running yet.
	StartOne(side Side)

	// StartOneStopOther starts a side's clock and stops the opposing one.
	// locked reports that the caller already holds its session lock, for
	// implementations that coordinate with the caller's threading.
	StartOneStopOther(side Side, locked bool)
}
