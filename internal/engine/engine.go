// Package engine owns the UCI subprocess: spawning, the command channel
// to its stdin, the background reader over its stdout, and the readiness
// rendezvous.
package engine

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/quietpawn/quietpawn/internal/ports"
	"github.com/quietpawn/quietpawn/internal/uci"
)

// ErrEngineUnavailable reports that the engine missed a readiness
// deadline and is presumed crashed or wedged. Callers may keep going;
// the session never blocks the UI on a dead engine.
var ErrEngineUnavailable = errors.New("engine unavailable")

// ErrNotRunning reports an operation on an engine that was never started
// or has been closed.
var ErrNotRunning = errors.New("engine not running")

// Handler receives game-relevant protocol events from the reader loop.
// Methods are called from the reader goroutine, one event at a time.
type Handler interface {
	OnBestMove(move string)
	OnBestMoveWithPonder(move, ponder string)
	OnSearchInfo(info uci.SearchInfo)
}

// Identity is the engine's self-identification. Name is set once per
// subprocess from the first "id name" line.
type Identity struct {
	Name   string
	Author string
}

// Options configures an engine instance.
type Options struct {
	Binary       string
	Threads      int
	HashMB       int
	Ponder       bool
	SkillLevel   int
	ReadyTimeout time.Duration
}

// Engine drives one UCI subprocess. All three standard streams belong to
// it for the lifetime of the subprocess.
type Engine struct {
	launcher ports.Launcher
	clock    ports.Clock
	handler  Handler
	opts     Options

	proc  ports.Process
	stdin io.WriteCloser

	// Single-slot rendezvous signals, filled by the reader loop.
	uciOK   chan struct{}
	readyOK chan struct{}

	running    atomic.Bool
	available  atomic.Bool
	readerDone chan struct{}

	mu       sync.Mutex
	identity Identity
	declared []uci.Option
}

// New creates an engine. Start must be called before any other method.
func New(launcher ports.Launcher, clock ports.Clock, opts Options) *Engine {
	return &Engine{
		launcher: launcher,
		clock:    clock,
		opts:     opts,
		uciOK:    make(chan struct{}, 1),
		readyOK:  make(chan struct{}, 1),
	}
}

// Start spawns the subprocess, starts the reader loop dispatching into
// handler, and performs the protocol greeting: "uci" until uciok, then
// the configured options, then a readiness rendezvous.
func (e *Engine) Start(handler Handler) error {
	e.handler = handler
	proc, err := e.launcher.Spawn(e.opts.Binary)
	if err != nil {
		return fmt.Errorf("spawn engine: %w", err)
	}

	e.proc = proc
	e.stdin = proc.Stdin()
	e.running.Store(true)
	e.available.Store(true)
	e.readerDone = make(chan struct{})
	go e.readLoop(proc.Stdout())

	e.Send("uci")
	select {
	case <-e.uciOK:
		slog.Info("engine greeting complete", slog.String("name", e.Identity().Name))
	case <-e.clock.After(e.readyTimeout()):
		e.available.Store(false)
		slog.Warn("engine did not answer uci, crashed?")
		return ErrEngineUnavailable
	}

	e.applyOptions(e.opts)
	return e.WaitReady()
}

// ApplyOptions re-sends the tunable engine options and waits for the
// engine to settle. Used by config hot-reload.
func (e *Engine) ApplyOptions(opts Options) error {
	if !e.running.Load() {
		return ErrNotRunning
	}
	e.applyOptions(opts)
	return e.WaitReady()
}

func (e *Engine) applyOptions(opts Options) {
	e.Send(fmt.Sprintf("setoption name Threads value %d", opts.Threads))
	e.Send(fmt.Sprintf("setoption name Hash value %d", opts.HashMB))
	e.Send(fmt.Sprintf("setoption name Ponder value %t", opts.Ponder))
	e.Send(fmt.Sprintf("setoption name Skill Level value %d", opts.SkillLevel))
}

// Send writes one protocol command to the subprocess. A write failure is
// logged and swallowed: the engine is a best-effort companion process and
// the session never retries or escalates a lost command.
func (e *Engine) Send(command string) {
	if e.stdin == nil {
		slog.Error("uci write with no subprocess", slog.String("command", command))
		return
	}
	if _, err := io.WriteString(e.stdin, command+"\n"); err != nil {
		slog.Error("uci write failed",
			slog.String("command", command),
			slog.String("error", err.Error()),
		)
		return
	}
	slog.Debug("uci write", slog.String("command", command))
}

// WaitReady performs the synchronous readiness rendezvous: it drains any
// stale signal, sends "isready" and blocks until readyok or the timeout.
// On timeout the engine is marked unavailable and ErrEngineUnavailable is
// returned; callers proceed regardless rather than blocking the UI.
func (e *Engine) WaitReady() error {
	select {
	case <-e.readyOK:
	default:
	}

	e.Send("isready")

	select {
	case <-e.readyOK:
		return nil
	case <-e.clock.After(e.readyTimeout()):
		e.available.Store(false)
		slog.Warn("engine did not answer isready, crashed?")
		return ErrEngineUnavailable
	}
}

func (e *Engine) readyTimeout() time.Duration {
	if e.opts.ReadyTimeout > 0 {
		return e.opts.ReadyTimeout
	}
	return 3 * time.Second
}

// Available reports whether the engine has met every readiness deadline
// so far. It turns false when a rendezvous times out and stays false
// until the next successful one.
func (e *Engine) Available() bool {
	return e.available.Load()
}

// Identity returns the engine's self-identification.
func (e *Engine) Identity() Identity {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.identity
}

// DeclaredOptions returns the options the engine announced during the
// greeting, in declaration order.
func (e *Engine) DeclaredOptions() []uci.Option {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]uci.Option, len(e.declared))
	copy(out, e.declared)
	return out
}

// Close stops the reader loop and terminates the subprocess. It asks the
// engine to quit first and kills it if the reader does not wind down
// within a grace period.
func (e *Engine) Close() error {
	if e.proc == nil {
		return ErrNotRunning
	}
	e.running.Store(false)
	e.Send("quit")

	select {
	case <-e.readerDone:
	case <-e.clock.After(2 * time.Second):
		_ = e.proc.Kill()
		<-e.readerDone
	}
	return e.proc.Wait()
}
