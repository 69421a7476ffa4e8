package engine

import (
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/quietpawn/quietpawn/internal/uci"
)

// readChunkSize is the per-read buffer for engine output. Engines emit
// short lines; one chunk usually holds several.
const readChunkSize = 4096

// readLoop runs in its own goroutine until the liveness flag is cleared.
// Each iteration blocks on a chunk read from the subprocess stdout, feeds
// the scanner and dispatches the resulting events. A failed or empty read
// is a transient fault: logged, throttled and retried; the loop never
// terminates on its own, so a dead engine shows up as a warning stream
// and an unavailable flag, not a silent stop.
func (e *Engine) readLoop(stdout io.ReadCloser) {
	slog.Info("starting uci reader")
	defer close(e.readerDone)
	defer slog.Info("closing uci reader")

	scanner := uci.NewScanner()
	buf := make([]byte, readChunkSize)

	for e.running.Load() {
		n, err := stdout.Read(buf)
		if n <= 0 {
			if !e.running.Load() {
				return
			}
			e.available.Store(false)
			slog.Warn("failed to read from engine pipe",
				slog.String("error", errText(err)),
			)
			e.clock.Sleep(time.Second)
			continue
		}
		for _, ev := range scanner.Scan(buf[:n]) {
			e.dispatch(ev)
		}
	}
}

func errText(err error) string {
	if err == nil {
		return "short read"
	}
	return err.Error()
}

// dispatch routes one classified line. Unknown lines and blank lines are
// protocol noise and are dropped; parse mismatches on recognized kinds
// mean the field is absent, never an error.
func (e *Engine) dispatch(ev uci.Event) {
	switch ev.Kind {
	case uci.EventUCIOk:
		e.signal(e.uciOK)

	case uci.EventReadyOK:
		e.available.Store(true)
		e.signal(e.readyOK)

	case uci.EventIDName:
		name := strings.TrimPrefix(ev.Text, "id name ")
		slog.Info("engine identified", slog.String("name", name))
		e.mu.Lock()
		if e.identity.Name == "" {
			e.identity.Name = name
		}
		e.mu.Unlock()

	case uci.EventIDAuthor:
		author := strings.TrimPrefix(ev.Text, "id author ")
		slog.Info("engine author", slog.String("author", author))
		e.mu.Lock()
		if e.identity.Author == "" {
			e.identity.Author = author
		}
		e.mu.Unlock()

	case uci.EventOption:
		if opt, ok := uci.ParseOption(ev.Text); ok {
			slog.Debug("engine option",
				slog.String("name", opt.Name),
				slog.String("type", opt.Type),
			)
			e.mu.Lock()
			e.declared = append(e.declared, opt)
			e.mu.Unlock()
		}

	case uci.EventBestMove:
		if bm, ok := uci.ParseBestMove(ev.Text); ok {
			e.handler.OnBestMove(bm.Move)
		}

	case uci.EventBestMoveWithPonder:
		if bm, ok := uci.ParseBestMoveWithPonder(ev.Text); ok {
			e.handler.OnBestMoveWithPonder(bm.Move, bm.Ponder)
		}

	case uci.EventInfo:
		e.handler.OnSearchInfo(uci.ParseInfo(ev.Text))

	case uci.EventBestMoveNone, uci.EventEmptyLine, uci.EventUnknown:
		// No-op kinds: "bestmove (none)" on an empty search, banner
		// lines, blank lines.
	}
}

// signal fills a single-slot rendezvous channel without blocking the
// reader when nobody is waiting.
func (e *Engine) signal(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}
