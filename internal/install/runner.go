package install

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
)

// SpawnOptions configures a subprocess.
type SpawnOptions struct {
	// Dir is the working directory.
	Dir string

	// Env is appended to the current environment.
	Env []string
}

// Result is the outcome of a finished process.
type Result struct {
	ExitCode int
	Err      error
}

// Process is a started subprocess.
type Process interface {
	// Done delivers exactly one Result when the process exits.
	Done() <-chan Result
}

// Runner starts subprocesses.
type Runner interface {
	Spawn(ctx context.Context, name string, args []string, opts SpawnOptions) (Process, error)
}

// ExecRunner starts real processes with os/exec.
type ExecRunner struct {
	// Stdout for process output. If nil, os.Stdout is used.
	Stdout io.Writer

	// Stderr for process errors. If nil, os.Stderr is used.
	Stderr io.Writer
}

// NewExecRunner creates a runner writing to the process's standard streams.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

type execProcess struct {
	done chan Result
}

func (p *execProcess) Done() <-chan Result {
	return p.done
}

// Spawn starts name with args and returns without waiting for it to exit.
func (r *ExecRunner) Spawn(ctx context.Context, name string, args []string, opts SpawnOptions) (Process, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = opts.Dir
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr
	if len(opts.Env) > 0 {
		cmd.Env = append(os.Environ(), opts.Env...)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("starting %s: %w", name, err)
	}

	p := &execProcess{done: make(chan Result, 1)}
	go func() {
		err := cmd.Wait()
		res := Result{Err: err}
		if err != nil {
			var exitErr *exec.ExitError
			if errors.As(err, &exitErr) {
				res.ExitCode = exitErr.ExitCode()
			} else {
				res.ExitCode = 1
			}
		}
		p.done <- res
		close(p.done)
	}()

	return p, nil
}
