// Package install schedules package-manager invocations and runs them as
// background processes, reporting each exit through callbacks.
package install

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/opmodel/scaffold/internal/output"
)

// Request is one package-manager invocation.
type Request struct {
	// Manager is the executable, e.g. "go" or "npm".
	Manager string

	// Args are passed to the manager.
	Args []string

	// Dir is the working directory.
	Dir string
}

// String renders the request as a command line.
func (r Request) String() string {
	return strings.TrimSpace(r.Manager + " " + strings.Join(r.Args, " "))
}

func (r Request) key() string {
	return r.Dir + "\x00" + r.Manager + "\x00" + strings.Join(r.Args, "\x00")
}

// Outcome pairs a request with its process result.
type Outcome struct {
	Request Request
	Result  Result
}

// ExitFunc is called once per finished process, from the goroutine
// observing the process.
type ExitFunc func(Outcome)

// Installer collects requests and runs them.
type Installer struct {
	mu        sync.Mutex
	runner    Runner
	scheduled []Request
	seen      map[string]bool
	onExit    []ExitFunc
	outcomes  []Outcome
	wg        sync.WaitGroup
}

// New creates an installer that spawns processes with runner.
func New(runner Runner) *Installer {
	return &Installer{
		runner: runner,
		seen:   make(map[string]bool),
	}
}

// Schedule queues a request. Identical requests are queued once; the
// result reports whether req was newly queued.
func (i *Installer) Schedule(req Request) bool {
	if req.Manager == "" {
		return false
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	if i.seen[req.key()] {
		return false
	}
	i.seen[req.key()] = true
	i.scheduled = append(i.scheduled, req)
	output.Debug("install scheduled", "command", req.String(), "dir", req.Dir)
	return true
}

// Pending returns requests scheduled but not yet started.
func (i *Installer) Pending() []Request {
	i.mu.Lock()
	defer i.mu.Unlock()
	return slices.Clone(i.scheduled)
}

// OnExit registers a callback for finished processes.
func (i *Installer) OnExit(fn ExitFunc) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.onExit = append(i.onExit, fn)
}

// Run starts every pending request and returns without waiting for them.
// Requests that fail to start are reported in the returned error and
// still produce an Outcome.
func (i *Installer) Run(ctx context.Context) error {
	i.mu.Lock()
	requests := i.scheduled
	i.scheduled = nil
	i.mu.Unlock()

	var errs []error
	for _, req := range requests {
		output.Info("running " + output.StyleNoun.Render(req.String()))

		proc, err := i.runner.Spawn(ctx, req.Manager, req.Args, SpawnOptions{Dir: req.Dir})
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", req, err))
			i.finish(Outcome{Request: req, Result: Result{ExitCode: -1, Err: err}})
			continue
		}

		i.wg.Add(1)
		go func() {
			defer i.wg.Done()
			res := <-proc.Done()
			i.finish(Outcome{Request: req, Result: res})
		}()
	}
	return errors.Join(errs...)
}

func (i *Installer) finish(o Outcome) {
	i.mu.Lock()
	i.outcomes = append(i.outcomes, o)
	callbacks := slices.Clone(i.onExit)
	i.mu.Unlock()

	if o.Result.Err != nil {
		output.Warn("install failed", "command", o.Request.String(), "exit", o.Result.ExitCode, "err", o.Result.Err)
	} else {
		output.Debug("install finished", "command", o.Request.String())
	}

	for _, fn := range callbacks {
		fn(o)
	}
}

// Wait blocks until every started process has exited or ctx is done, and
// returns the outcomes collected so far.
func (i *Installer) Wait(ctx context.Context) ([]Outcome, error) {
	done := make(chan struct{})
	go func() {
		i.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return i.Outcomes(), ctx.Err()
	}
	return i.Outcomes(), nil
}

// Outcomes returns the results of finished processes in completion order.
func (i *Installer) Outcomes() []Outcome {
	i.mu.Lock()
	defer i.mu.Unlock()
	return slices.Clone(i.outcomes)
}
