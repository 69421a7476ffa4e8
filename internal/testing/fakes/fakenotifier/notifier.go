// Package fakenotifier provides a recording Notifier implementation for testing.
package fakenotifier

import (
	"sync"

	"github.com/quietpawn/quietpawn/internal/ports"
	"github.com/quietpawn/quietpawn/internal/uci"
)

// AcceptedMove is one recorded MoveAccepted notification.
type AcceptedMove struct {
	Move      string
	Promotion uci.PieceKind
}

// Notifier records every notification for later assertions.
type Notifier struct {
	mu     sync.Mutex
	moves  []AcceptedMove
	scores []string
	lines  []string
	nps    []string
}

// New returns an empty Notifier.
func New() *Notifier {
	return &Notifier{}
}

// MoveAccepted records the accepted move.
func (n *Notifier) MoveAccepted(move string, promotion uci.PieceKind) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.moves = append(n.moves, AcceptedMove{Move: move, Promotion: promotion})
}

// SetScore records the displayed score.
func (n *Notifier) SetScore(score string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.scores = append(n.scores, score)
}

// SetBestLine records the displayed principal variation.
func (n *Notifier) SetBestLine(line string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.lines = append(n.lines, line)
}

// SetNodesPerSecond records the displayed search speed.
func (n *Notifier) SetNodesPerSecond(nps string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.nps = append(n.nps, nps)
}

// Moves returns the recorded accepted moves in order.
func (n *Notifier) Moves() []AcceptedMove {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]AcceptedMove(nil), n.moves...)
}

// Scores returns the recorded score updates in order.
func (n *Notifier) Scores() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.scores...)
}

// Lines returns the recorded principal-variation updates in order.
func (n *Notifier) Lines() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.lines...)
}

// NPS returns the recorded search-speed updates in order.
func (n *Notifier) NPS() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.nps...)
}

var _ ports.Notifier = (*Notifier)(nil)
