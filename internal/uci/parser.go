package uci

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Mode selects who the engine plays for in a session. It also fixes the
// sign convention for displayed scores: engines report scores from the
// side to move, the GUI displays them from white's perspective.
type Mode int

const (
	// EngineWhite has the engine play the first mover.
	EngineWhite Mode = iota
	// EngineBlack has the engine play the second mover.
	EngineBlack
	// Analysis runs an unbounded search without the engine owning a side.
	Analysis
)

// String returns the mode name used in logs.
func (m Mode) String() string {
	switch m {
	case EngineWhite:
		return "engine_white"
	case EngineBlack:
		return "engine_black"
	case Analysis:
		return "analysis"
	default:
		return "unknown"
	}
}

// PieceKind identifies a promotion piece derived from a move token.
type PieceKind byte

const (
	PieceNone   PieceKind = 0
	PieceQueen  PieceKind = 'Q'
	PieceRook   PieceKind = 'R'
	PieceBishop PieceKind = 'B'
	PieceKnight PieceKind = 'N'
)

// PromotionPiece derives the promotion piece from a coordinate move token.
// UCI appends a lowercase piece letter as the 5th character of a promoting
// move (e.g. "e7e8q"); the letter is case-shifted to the uppercase piece
// identifier. Tokens of four characters or fewer carry no promotion.
func PromotionPiece(move string) PieceKind {
	if len(move) <= 4 {
		return PieceNone
	}
	switch move[4] - 32 {
	case 'Q':
		return PieceQueen
	case 'R':
		return PieceRook
	case 'B':
		return PieceBishop
	case 'N':
		return PieceKnight
	default:
		return PieceNone
	}
}

// Option is a declared engine option from an "option name ... type ..." line.
type Option struct {
	Name string
	Type string
}

// BestMove is a parsed "bestmove" line. Ponder is empty when the engine
// proposed no reply to ponder on.
type BestMove struct {
	Move   string
	Ponder string
}

// SearchInfo is one snapshot from an "info" line. Every field is
// independently optional; absent fields are nil pointers. ScoreCP and
// ScoreMate are mutually exclusive. It is overwritten on every update and
// never retained.
type SearchInfo struct {
	Depth     *int
	SelDepth  *int
	TimeMS    *int
	ScoreCP   *int
	ScoreMate *int
	NPS       *int
	PV        []string
}

// Line grammars fixed by the UCI protocol family. A line that fails a
// match simply lacks that field; it is never an error.
var (
	optionMatcher         = regexp.MustCompile(`option name (.*) type (.*)`)
	bestMovePonderMatcher = regexp.MustCompile(`bestmove (\S+) ponder (\S+)`)
	bestMoveMatcher       = regexp.MustCompile(`bestmove (\S+)`)
	infoDepthMatcher      = regexp.MustCompile(`depth ([0-9]+)`)
	infoSelDepthMatcher   = regexp.MustCompile(`seldepth ([0-9]+)`)
	infoTimeMatcher       = regexp.MustCompile(`time ([0-9]+)`)
	infoScoreCPMatcher    = regexp.MustCompile(`score cp (-?[0-9]+)`)
	infoScoreMateMatcher  = regexp.MustCompile(`score mate (-?[0-9]+)`)
	infoNPSMatcher        = regexp.MustCompile(`nps ([0-9]+)`)
	infoBestLineMatcher   = regexp.MustCompile(` pv ([a-h1-8 ]+)`)
)

// ParseOption extracts the name and declared type from an option line.
func ParseOption(line string) (Option, bool) {
	m := optionMatcher.FindStringSubmatch(line)
	if m == nil {
		return Option{}, false
	}
	return Option{Name: m[1], Type: m[2]}, true
}

// ParseBestMove extracts the move from a bare bestmove line.
func ParseBestMove(line string) (BestMove, bool) {
	m := bestMoveMatcher.FindStringSubmatch(line)
	if m == nil {
		return BestMove{}, false
	}
	return BestMove{Move: m[1]}, true
}

// ParseBestMoveWithPonder extracts the move and ponder move from a
// "bestmove ... ponder ..." line.
func ParseBestMoveWithPonder(line string) (BestMove, bool) {
	m := bestMovePonderMatcher.FindStringSubmatch(line)
	if m == nil {
		return BestMove{}, false
	}
	return BestMove{Move: m[1], Ponder: m[2]}, true
}

// ParseInfo extracts every recognized field present on an info line.
func ParseInfo(line string) SearchInfo {
	var info SearchInfo
	info.Depth = matchInt(infoDepthMatcher, line)
	info.SelDepth = matchInt(infoSelDepthMatcher, line)
	info.TimeMS = matchInt(infoTimeMatcher, line)
	info.ScoreCP = matchInt(infoScoreCPMatcher, line)
	info.ScoreMate = matchInt(infoScoreMateMatcher, line)
	info.NPS = matchInt(infoNPSMatcher, line)
	if m := infoBestLineMatcher.FindStringSubmatch(line); m != nil {
		info.PV = strings.Fields(m[1])
	}
	return info
}

func matchInt(re *regexp.Regexp, line string) *int {
	m := re.FindStringSubmatch(line)
	if m == nil {
		return nil
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return nil
	}
	return &n
}

// signedScore applies the display sign convention. Engines score from the
// side to move; the panel shows white's perspective. In analysis the raw
// value is negated when the second mover is on turn; with the engine
// playing black it is always negated; with the engine playing white the
// raw value is already white-relative.
func signedScore(raw int, mode Mode, sideToMove int) int {
	switch mode {
	case Analysis:
		if sideToMove != 0 {
			return -raw
		}
	case EngineBlack:
		return -raw
	}
	return raw
}

// FormatCentipawns renders a centipawn score as pawns with two fraction
// digits, sign-adjusted for display.
func FormatCentipawns(raw int, mode Mode, sideToMove int) string {
	return fmt.Sprintf("%.2f", float64(signedScore(raw, mode, sideToMove))/100.0)
}

// FormatMate renders a mate-in-N score as "#" plus the signed ply count,
// sign-adjusted for display.
func FormatMate(raw int, mode Mode, sideToMove int) string {
	return fmt.Sprintf("#%d", signedScore(raw, mode, sideToMove))
}

// FormatNodesPerSecond renders a nodes-per-second count in thousands.
func FormatNodesPerSecond(nps int) string {
	return fmt.Sprintf("%d kNps", nps/1000)
}
