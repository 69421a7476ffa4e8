// Package sanmoves implements the MoveFormatter port on notnil/chess,
// turning the engine's coordinate move tokens into standard algebraic
// notation for display. All chess-rule knowledge stays in the library;
// the protocol core never validates moves.
package sanmoves

import (
	"fmt"
	"strings"

	"github.com/notnil/chess"

	"github.com/quietpawn/quietpawn/internal/ports"
)

// Formatter converts coordinate lines to SAN.
type Formatter struct{}

// New returns a Formatter.
func New() *Formatter {
	return &Formatter{}
}

// FormatLine replays history from the starting position, then encodes
// each move of line in SAN. A token that does not decode (an illegal or
// garbled move from a confused engine) fails the whole conversion; the
// caller falls back to the raw coordinate line.
func (f *Formatter) FormatLine(history, line []string) (string, error) {
	pos := chess.NewGame().Position()

	var err error
	if pos, err = replay(pos, history); err != nil {
		return "", fmt.Errorf("replay history: %w", err)
	}

	san := make([]string, 0, len(line))
	for _, token := range line {
		move, err := chess.UCINotation{}.Decode(pos, token)
		if err != nil {
			return "", fmt.Errorf("decode %q: %w", token, err)
		}
		san = append(san, chess.AlgebraicNotation{}.Encode(pos, move))
		pos = pos.Update(move)
	}
	return strings.Join(san, " "), nil
}

func replay(pos *chess.Position, moves []string) (*chess.Position, error) {
	for _, token := range moves {
		move, err := chess.UCINotation{}.Decode(pos, token)
		if err != nil {
			return nil, err
		}
		pos = pos.Update(move)
	}
	return pos, nil
}

var _ ports.MoveFormatter = (*Formatter)(nil)
