// Package oslauncher implements the Launcher port with os/exec, handing
// out a subprocess with three independent pipe streams.
package oslauncher

import (
	"fmt"
	"io"
	"os/exec"

	"github.com/quietpawn/quietpawn/internal/ports"
)

// Launcher spawns real engine subprocesses.
type Launcher struct{}

// New returns a Launcher.
func New() *Launcher {
	return &Launcher{}
}

// Spawn starts binary with three pipes attached. The returned process is
// already running.
func (l *Launcher) Spawn(binary string, args ...string) (ports.Process, error) {
	cmd := exec.Command(binary, args...)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", binary, err)
	}

	return &process{
		cmd:    cmd,
		stdin:  stdin,
		stdout: stdout,
		stderr: stderr,
	}, nil
}

type process struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout io.ReadCloser
	stderr io.ReadCloser
}

func (p *process) Stdin() io.WriteCloser { return p.stdin }
func (p *process) Stdout() io.ReadCloser { return p.stdout }
func (p *process) Stderr() io.ReadCloser { return p.stderr }

// Kill forcibly terminates the subprocess.
func (p *process) Kill() error {
	if p.cmd.Process == nil {
		return nil
	}
	return p.cmd.Process.Kill()
}

// Wait reaps the subprocess. Exit status is irrelevant for a companion
// engine that was told to quit; callers only need the resources released.
func (p *process) Wait() error {
	return p.cmd.Wait()
}

var _ ports.Launcher = (*Launcher)(nil)
