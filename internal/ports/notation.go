package ports

// MoveFormatter converts coordinate move tokens into display notation.
// history is the game so far from the starting position, line the
// continuation to format. Implementations own all chess-rule knowledge;
// the session never validates moves itself.
type MoveFormatter interface {
	FormatLine(history, line []string) (string, error)
}
