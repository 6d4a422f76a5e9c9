package environment

import (
	"context"
	"fmt"
	"maps"

	oerrors "github.com/opmodel/scaffold/internal/errors"
	"github.com/opmodel/scaffold/internal/generator"
	"github.com/opmodel/scaffold/internal/output"
	"github.com/opmodel/scaffold/internal/runloop"
)

// RunOptions are the inputs of a top-level generator.
type RunOptions struct {
	Args []string

	// Options are merged over the environment's shared options.
	Options map[string]any

	// DestinationRoot defaults to the environment's working directory.
	DestinationRoot string
}

// Create instantiates the generator registered as ref, or built by a
// Factory, without queueing it.
func (e *Environment) Create(ref any, opts RunOptions) (generator.Generator, error) {
	factory, namespace, err := e.Resolve(ref)
	if err != nil {
		return nil, err
	}
	if namespace == "" {
		namespace = generator.LocalNamespace
	}

	options := e.SharedOptions()
	maps.Copy(options, opts.Options)

	g, err := factory(generator.Options{
		Env:             e,
		Namespace:       namespace,
		Args:            opts.Args,
		Options:         options,
		DestinationRoot: opts.DestinationRoot,
	})
	if err != nil {
		return nil, oerrors.Wrapf(oerrors.ErrResolution, "instantiating %s: %v", namespace, err)
	}
	g.Core().Bind(g)

	if key := g.Core().UniqueKey(); key != "" {
		e.AddComposed(key, g)
	}
	return g, nil
}

// Run creates the generator for ref, queues its tasks and drains the run
// loop. Staged files are committed in the commit queue and once more after
// the loop; installs started in the install queue are awaited before Run
// returns.
func (e *Environment) Run(ctx context.Context, ref any, opts RunOptions) (generator.Generator, error) {
	g, err := e.Create(ref, opts)
	if err != nil {
		return nil, err
	}
	return g, e.RunGenerator(ctx, g)
}

// RunGenerator queues g and drains the run loop.
func (e *Environment) RunGenerator(ctx context.Context, g generator.Generator) error {
	if e.loop.Running() {
		return runloop.ErrAlreadyRunning
	}

	core := g.Core()
	output.Debug("running generator", "namespace", core.Namespace(), "env", e.id)

	if err := core.QueueTasks(ctx); err != nil {
		return err
	}

	e.mu.Lock()
	e.force = core.BoolOption(generator.OptionForce)
	e.mu.Unlock()

	features := core.Features()
	if !features.CustomCommitTask {
		if _, err := e.loop.Add(runloop.Task{
			Name:  CommitQueue,
			Queue: CommitQueue,
			Once:  CommitQueue,
			Run:   e.commit,
		}); err != nil {
			return err
		}
	}
	if !features.CustomInstallTask && !core.BoolOption(generator.OptionSkipInstall) {
		if _, err := e.loop.Add(runloop.Task{
			Name:  InstallQueue,
			Queue: InstallQueue,
			Once:  InstallQueue,
			Run:   e.install,
		}); err != nil {
			return err
		}
	}

	if err := e.loop.Run(ctx); err != nil {
		return err
	}

	if err := e.commit(ctx); err != nil {
		return err
	}
	return e.wait(ctx)
}

// Commit writes every staged file. The force option of the running
// generator overwrites conflicting files.
func (e *Environment) Commit(ctx context.Context) error {
	return e.commit(ctx)
}

func (e *Environment) commit(ctx context.Context) error {
	e.mu.Lock()
	force := e.force
	e.mu.Unlock()

	changes, err := e.editor.Commit(ctx, force)

	e.mu.Lock()
	e.changes = append(e.changes, changes...)
	e.mu.Unlock()

	if err != nil {
		return fmt.Errorf("committing files: %w", err)
	}
	return nil
}

func (e *Environment) install(ctx context.Context) error {
	if len(e.installer.Pending()) == 0 {
		return nil
	}
	e.mu.Lock()
	e.started = true
	e.mu.Unlock()
	return e.installer.Run(ctx)
}

// wait blocks on started installs behind a spinner.
func (e *Environment) wait(ctx context.Context) error {
	if !e.installing() {
		return nil
	}
	return output.RunWithSpinner(ctx, func() error {
		_, err := e.installer.Wait(ctx)
		return err
	}, output.WithTitle("Installing dependencies..."))
}

func (e *Environment) installing() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.started
}

// CancelCancellableTasks drops every queued cancellable task.
func (e *Environment) CancelCancellableTasks() int {
	return e.loop.CancelCancellable()
}
