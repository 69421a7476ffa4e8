package ports

import "github.com/quietpawn/quietpawn/internal/uci"

// Notifier receives one-way, fire-and-forget notifications for the GUI.
// Implementations must not call back into the session.
type Notifier interface {
	// MoveAccepted reports a committed engine move. promotion is
	// uci.PieceNone unless the move token carried a promotion suffix.
	MoveAccepted(move string, promotion uci.PieceKind)

	// SetScore updates the displayed evaluation, already formatted
	// (e.g. "-0.35" or "#3").
	SetScore(score string)

	// SetBestLine updates the displayed principal variation.
	SetBestLine(line string)

	// SetNodesPerSecond updates the displayed search speed (e.g. "240 kNps").
	SetNodesPerSecond(nps string)
}
