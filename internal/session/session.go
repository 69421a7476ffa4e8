// Package session holds the game-side state machine that reconciles user
// moves, engine replies, pondering and analysis against one UCI engine.
package session

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/quietpawn/quietpawn/internal/ports"
	"github.com/quietpawn/quietpawn/internal/uci"
)

// Commander is the session's view of the engine: a fire-and-forget
// command channel plus the synchronous readiness rendezvous.
type Commander interface {
	Send(command string)
	WaitReady() error
}

// Session is the game state machine. Two actors touch it: the caller
// (StartNewGame, SubmitUserMove) and the engine reader goroutine (the
// On* handlers). All shared state lives behind one mutex; the engine
// rendezvous is never awaited while the mutex is held, so the reader can
// always deliver the readyok that the rendezvous is waiting on.
type Session struct {
	engine    Commander
	clock     ports.GameClock
	notifier  ports.Notifier
	formatter ports.MoveFormatter // optional, nil means raw coordinate PV

	mu         sync.Mutex
	mode       uci.Mode
	history    []string
	pondering  bool
	analysing  bool
	engineDown bool
}

// Option configures a Session.
type Option func(*Session)

// WithMoveFormatter installs a display-notation formatter for the
// principal variation. Without one the raw coordinate line is shown.
func WithMoveFormatter(f ports.MoveFormatter) Option {
	return func(s *Session) { s.formatter = f }
}

// New creates a session around a started engine and its collaborators.
func New(engine Commander, clock ports.GameClock, notifier ports.Notifier, opts ...Option) *Session {
	s := &Session{
		engine:   engine,
		clock:    clock,
		notifier: notifier,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// StartNewGame resets the session for a fresh game: any running search is
// stopped, the move history cleared, the clock reset to the time budget,
// and the engine told to start over. Per mode, the engine is then either
// kicked off immediately (it plays white), left waiting for the user's
// first move (it plays black), or put into an unbounded analysis search.
func (s *Session) StartNewGame(budget time.Duration, mode uci.Mode) {
	slog.Info("starting new game",
		slog.String("mode", mode.String()),
		slog.Duration("budget", budget),
	)

	s.mu.Lock()
	searching := s.pondering || s.analysing
	s.mu.Unlock()

	if searching {
		s.engine.Send("stop")
	}
	s.waitReady()

	s.mu.Lock()
	s.mode = mode
	s.history = nil
	s.pondering = false
	s.analysing = false
	s.mu.Unlock()
	s.clock.Reset(budget)

	s.engine.Send("ucinewgame")
	s.waitReady()

	switch mode {
	case uci.EngineWhite:
		// Engine has the first move: kick it now.
		s.engine.Send("position startpos")
		s.engine.Send(s.timedGo())
	case uci.EngineBlack:
		// The user moves first; nothing to send until then.
	case uci.Analysis:
		s.engine.Send("position startpos")
		s.engine.Send("go infinite")
		s.mu.Lock()
		s.analysing = true
		s.mu.Unlock()
	}
}

// SubmitUserMove commits a user move: it is appended to the history (which
// also drives the clock), any speculative or analysis search on the now
// stale position is stopped, and the engine is pointed at the new position
// with a timed or unbounded search per mode.
func (s *Session) SubmitUserMove(move string) {
	slog.Debug("user move", slog.String("move", move))

	s.mu.Lock()
	s.appendMove(move, false)
	stale := s.pondering || s.mode == uci.Analysis
	position := s.positionCommand()
	mode := s.mode
	s.mu.Unlock()

	if stale {
		// The interrupted search still emits a bestmove; the pondering
		// flag makes the handler discard it.
		s.engine.Send("stop")
	}
	s.waitReady()

	s.engine.Send(position)
	if mode == uci.Analysis {
		s.engine.Send("go infinite")
		s.mu.Lock()
		s.analysing = true
		s.mu.Unlock()
	} else {
		s.engine.Send(s.timedGo())
	}
}

// OnBestMove handles a committed engine move. A bestmove that arrives
// while pondering or analysing belongs to a superseded position and is
// dropped without touching the history.
func (s *Session) OnBestMove(move string) {
	s.mu.Lock()
	if s.pondering || s.mode == uci.Analysis {
		s.pondering = false
		s.mu.Unlock()
		slog.Debug("skipping stale best move", slog.String("move", move))
		return
	}
	promotion := uci.PromotionPiece(move)
	if promotion != uci.PieceNone {
		slog.Debug("engine promotion",
			slog.String("move", move),
			slog.String("piece", string(promotion)),
		)
	}
	s.appendMove(move, true)
	s.mu.Unlock()

	s.notifier.MoveAccepted(move, promotion)
}

// OnBestMoveWithPonder handles a committed engine move that carries a
// predicted reply: after the acceptance path of OnBestMove, the engine is
// pointed at the position extended with the predicted reply and told to
// ponder on it.
func (s *Session) OnBestMoveWithPonder(move, ponder string) {
	s.mu.Lock()
	if s.pondering || s.mode == uci.Analysis {
		s.pondering = false
		s.mu.Unlock()
		slog.Debug("skipping stale best move", slog.String("move", move))
		return
	}
	promotion := uci.PromotionPiece(move)
	s.appendMove(move, true)
	position := s.positionCommand() + " " + ponder
	s.pondering = true
	s.mu.Unlock()

	s.notifier.MoveAccepted(move, promotion)

	s.engine.Send(position)
	s.engine.Send("go ponder")
}

// OnSearchInfo forwards one search snapshot to the display. Every field
// is optional; only present fields update the panel.
func (s *Session) OnSearchInfo(info uci.SearchInfo) {
	s.mu.Lock()
	mode := s.mode
	side := len(s.history) % 2
	history := append([]string(nil), s.history...)
	s.mu.Unlock()

	if info.ScoreCP != nil {
		s.notifier.SetScore(uci.FormatCentipawns(*info.ScoreCP, mode, side))
	} else if info.ScoreMate != nil {
		s.notifier.SetScore(uci.FormatMate(*info.ScoreMate, mode, side))
	}

	if info.PV != nil {
		line := strings.Join(info.PV, " ")
		if s.formatter != nil {
			if san, err := s.formatter.FormatLine(history, info.PV); err == nil {
				line = san
			} else {
				slog.Debug("pv formatting failed", slog.String("error", err.Error()))
			}
		}
		s.notifier.SetBestLine(line)
	}

	if info.NPS != nil {
		s.notifier.SetNodesPerSecond(uci.FormatNodesPerSecond(*info.NPS))
	}
}

// appendMove is the single primitive that grows the history. It toggles
// the side to move and drives the clock: the first ply starts the
// newly-on-turn side's clock, every later ply also stops the side that
// just moved. Callers hold s.mu; locked is forwarded to the clock.
func (s *Session) appendMove(move string, locked bool) {
	s.history = append(s.history, move)
	side := ports.Side(len(s.history) % 2)
	if len(s.history) == 1 {
		s.clock.StartOne(side)
	} else {
		s.clock.StartOneStopOther(side, locked)
	}
}

// positionCommand renders the position for the current history. Callers
// hold s.mu.
func (s *Session) positionCommand() string {
	if len(s.history) == 0 {
		return "position startpos"
	}
	return "position startpos moves " + strings.Join(s.history, " ")
}

// timedGo renders a clock-bound search request from the remaining times.
func (s *Session) timedGo() string {
	return fmt.Sprintf("go wtime %d btime %d",
		s.clock.RemainingTime(ports.SideWhite).Milliseconds(),
		s.clock.RemainingTime(ports.SideBlack).Milliseconds(),
	)
}

// waitReady runs the readiness rendezvous and records a missed deadline
// as the session being engine-down. The call always returns; a stalled
// engine must never freeze the caller.
func (s *Session) waitReady() {
	err := s.engine.WaitReady()

	s.mu.Lock()
	s.engineDown = err != nil
	s.mu.Unlock()

	if err != nil {
		slog.Warn("continuing without engine readiness", slog.String("error", err.Error()))
	}
}

// History returns a copy of the accepted moves of the current game.
func (s *Session) History() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.history...)
}

// SideToMove returns who moves next under the white-first convention.
func (s *Session) SideToMove() ports.Side {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ports.Side(len(s.history) % 2)
}

// Mode returns the mode of the current game.
func (s *Session) Mode() uci.Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// Pondering reports whether a speculative search is running.
func (s *Session) Pondering() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pondering
}

// Analysing reports whether an unbounded analysis search is running.
func (s *Session) Analysing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.analysing
}

// Healthy reports whether the engine met its last readiness deadline.
func (s *Session) Healthy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.engineDown
}
