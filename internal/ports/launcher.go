package ports

import "io"

// Process is a running engine subprocess with its three standard streams.
// The streams are exclusively owned by the caller for the process lifetime.
type Process interface {
	// Stdin is the subprocess input stream.
	Stdin() io.WriteCloser

	// Stdout is the subprocess output stream.
	Stdout() io.ReadCloser

	// Stderr is the subprocess error stream.
	Stderr() io.ReadCloser

	// Kill forcibly terminates the subprocess.
	Kill() error

	// Wait blocks until the subprocess exits and releases its resources.
	Wait() error
}

// Launcher spawns engine subprocesses with three independent pipe streams.
type Launcher interface {
	Spawn(binary string, args ...string) (Process, error)
}
