// Package fakeengine provides a scripted in-memory engine subprocess for
// testing: commands written to its stdin drive a script that emits
// protocol lines on its stdout.
package fakeengine

import (
	"io"
	"strings"
	"sync"

	"github.com/quietpawn/quietpawn/internal/ports"
)

// Script reacts to one command written to the fake engine's stdin. It
// runs on the writer's goroutine; replies go out through p.Emit.
type Script func(cmd string, p *Process)

// Process is an in-memory stand-in for an engine subprocess.
type Process struct {
	script Script

	stdoutR *io.PipeReader
	stdoutW *io.PipeWriter

	mu       sync.Mutex
	commands []string
	closed   bool
}

// NewProcess returns a process driven by script. A nil script records
// commands and never replies.
func NewProcess(script Script) *Process {
	r, w := io.Pipe()
	return &Process{
		script:  script,
		stdoutR: r,
		stdoutW: w,
	}
}

// Scripted returns a process with UCI greeting behavior: "uci" yields
// identification lines, an option declaration and "uciok"; "isready"
// yields "readyok"; "quit" ends the output stream. Other commands are
// recorded only.
func Scripted() *Process {
	return NewProcess(func(cmd string, p *Process) {
		switch cmd {
		case "uci":
			p.Emit("id name FakeFish 1.0")
			p.Emit("id author quietpawn developers")
			p.Emit("option name Hash type spin default 16 min 1 max 1024")
			p.Emit("uciok")
		case "isready":
			p.Emit("readyok")
		case "quit":
			p.CloseOutput()
		}
	})
}

// Emit writes one protocol line to the fake stdout. It blocks until the
// reader loop consumes it, which keeps test event order deterministic.
func (p *Process) Emit(line string) {
	_, _ = io.WriteString(p.stdoutW, line+"\n")
}

// EmitRaw writes bytes to the fake stdout without a newline, for tests
// that exercise partial-line reads.
func (p *Process) EmitRaw(chunk string) {
	_, _ = io.WriteString(p.stdoutW, chunk)
}

// CloseOutput ends the stdout stream, as a dead subprocess would.
func (p *Process) CloseOutput() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.mu.Unlock()
	_ = p.stdoutW.Close()
}

// Commands returns every command line written to stdin, in order.
func (p *Process) Commands() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.commands...)
}

// Stdin returns the command sink driving the script.
func (p *Process) Stdin() io.WriteCloser { return &stdinWriter{proc: p} }

// Stdout returns the scripted output stream.
func (p *Process) Stdout() io.ReadCloser { return p.stdoutR }

// Stderr returns an always-empty stream.
func (p *Process) Stderr() io.ReadCloser { return io.NopCloser(strings.NewReader("")) }

// Kill ends the output stream.
func (p *Process) Kill() error {
	p.CloseOutput()
	return nil
}

// Wait returns once the output stream has ended.
func (p *Process) Wait() error {
	return nil
}

type stdinWriter struct {
	proc *Process
}

// Write records each newline-terminated command and feeds it to the script.
func (w *stdinWriter) Write(data []byte) (int, error) {
	for _, line := range strings.Split(string(data), "\n") {
		if line == "" {
			continue
		}
		w.proc.mu.Lock()
		w.proc.commands = append(w.proc.commands, line)
		script := w.proc.script
		w.proc.mu.Unlock()
		if script != nil {
			script(line, w.proc)
		}
	}
	return len(data), nil
}

func (w *stdinWriter) Close() error { return nil }

// Launcher hands out a prepared fake process.
type Launcher struct {
	Process  *Process
	SpawnErr error

	mu      sync.Mutex
	Spawned []string
}

// Spawn records the requested binary and returns the prepared process.
func (l *Launcher) Spawn(binary string, args ...string) (ports.Process, error) {
	l.mu.Lock()
	l.Spawned = append(l.Spawned, binary)
	l.mu.Unlock()
	if l.SpawnErr != nil {
		return nil, l.SpawnErr
	}
	return l.Process, nil
}

var (
	_ ports.Process  = (*Process)(nil)
	_ ports.Launcher = (*Launcher)(nil)
)
