// Package uci tokenizes and parses the output of a UCI chess engine.
package uci

import "strings"

// EventKind classifies a single line of engine output.
type EventKind int

const (
	EventUnknown EventKind = iota
	EventUCIOk
	EventReadyOK
	EventIDName
	EventIDAuthor
	EventOption
	EventBestMove
	EventBestMoveWithPonder
	EventBestMoveNone
	EventInfo
	EventEmptyLine
)

// String returns a short name for the event kind, used in logs.
func (k EventKind) String() string {
	switch k {
	case EventUCIOk:
		return "uciok"
	case EventReadyOK:
		return "readyok"
	case EventIDName:
		return "id_name"
	case EventIDAuthor:
		return "id_author"
	case EventOption:
		return "option"
	case EventBestMove:
		return "bestmove"
	case EventBestMoveWithPonder:
		return "bestmove_ponder"
	case EventBestMoveNone:
		return "bestmove_none"
	case EventInfo:
		return "info"
	case EventEmptyLine:
		return "empty"
	default:
		return "unknown"
	}
}

// Event is one classified line of engine output. Text is the full line
// without the trailing newline.
type Event struct {
	Kind EventKind
	Text string
}

// Scanner splits raw engine output into classified line events. Engines
// write through a pipe, so a line may arrive split across reads; the
// scanner holds the trailing partial line and completes it on the next
// call to Scan.
type Scanner struct {
	partial strings.Builder
}

// NewScanner returns an empty Scanner.
func NewScanner() *Scanner {
	return &Scanner{}
}

// Scan consumes a chunk of engine output and returns the events for every
// line completed by it. An incomplete trailing line is buffered until the
// terminating newline arrives.
func (s *Scanner) Scan(chunk []byte) []Event {
	var events []Event
	start := 0
	for i, b := range chunk {
		if b != '\n' {
			continue
		}
		line := string(chunk[start:i])
		if s.partial.Len() > 0 {
			line = s.partial.String() + line
			s.partial.Reset()
		}
		// Engines on Windows builds terminate lines with \r\n.
		line = strings.TrimSuffix(line, "\r")
		events = append(events, Event{Kind: Classify(line), Text: line})
		start = i + 1
	}
	if start < len(chunk) {
		s.partial.Write(chunk[start:])
	}
	return events
}

// Pending reports whether an incomplete line is buffered.
func (s *Scanner) Pending() bool {
	return s.partial.Len() > 0
}

// Classify maps a complete output line to its event kind. Classification
// is by prefix and shape, mirroring the line grammar of the UCI protocol.
func Classify(line string) EventKind {
	switch {
	case line == "":
		return EventEmptyLine
	case line == "uciok":
		return EventUCIOk
	case line == "readyok":
		return EventReadyOK
	case strings.HasPrefix(line, "id name "):
		return EventIDName
	case strings.HasPrefix(line, "id author "):
		return EventIDAuthor
	case strings.HasPrefix(line, "option "):
		return EventOption
	case strings.HasPrefix(line, "bestmove (none)"):
		return EventBestMoveNone
	case strings.HasPrefix(line, "bestmove "):
		if strings.Contains(line, " ponder ") {
			return EventBestMoveWithPonder
		}
		return EventBestMove
	case strings.HasPrefix(line, "info "):
		return EventInfo
	default:
		return EventUnknown
	}
}
