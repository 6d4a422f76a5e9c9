package generator

import (
	"context"
	"fmt"
	"slices"

	oerrors "github.com/opmodel/scaffold/internal/errors"
	"github.com/opmodel/scaffold/internal/priority"
	"github.com/opmodel/scaffold/internal/runloop"
)

// State is the lifecycle phase of a generator instance.
type State int

const (
	StateConstructed State = iota
	StateQueued
	StateRunning
	StateDone
	StateErrored
)

func (s State) String() string {
	switch s {
	case StateConstructed:
		return "constructed"
	case StateQueued:
		return "queued"
	case StateRunning:
		return "running"
	case StateDone:
		return "done"
	case StateErrored:
		return "errored"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// TaskInfo describes the task being executed.
type TaskInfo struct {
	// GeneratorID is the ID of the instance owning the task.
	GeneratorID string
	Namespace   string
	Name        string
	Method      string
	Priority    string
	Queue       string
	Edit        bool
	Args        []any
}

type taskInfoKey struct{}

// TaskFromContext returns the metadata of the running task.
func TaskFromContext(ctx context.Context) (TaskInfo, bool) {
	info, ok := ctx.Value(taskInfoKey{}).(TaskInfo)
	return info, ok
}

// TaskError reports a failed task. It matches errors.Is for both ErrTask and
// the task's own error.
type TaskError struct {
	Namespace   string
	GeneratorID string
	Task        string
	Err         error
}

func (e *TaskError) Error() string {
	return fmt.Sprintf("%s: task %q failed: %v", e.Namespace, e.Task, e.Err)
}

func (e *TaskError) Unwrap() []error {
	return []error{oerrors.ErrTask, e.Err}
}

// DoneEvent is emitted once a generator and everything it composed finished.
type DoneEvent struct {
	Generator    Generator
	GeneratorID  string
	Namespace    string
	PriorityName string
	QueueName    string
}

// ComposeEvent is emitted for every composition.
type ComposeEvent struct {
	Parent   Generator
	ParentID string
	Child    Generator
	ChildID  string

	// Reused is set when an existing unique instance was returned.
	Reused bool
}

// State returns the lifecycle phase.
func (b *Base) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// LastTask returns the most recently completed task.
func (b *Base) LastTask() TaskInfo {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.last
}

// QueueTasks classifies the instance's tasks and schedules them on the run
// loop. Calling it again is a no-op.
func (b *Base) QueueTasks(ctx context.Context) error {
	b.mu.Lock()
	if b.queued {
		b.mu.Unlock()
		return nil
	}
	b.queued = true
	b.mu.Unlock()

	if b.beforeQueue != nil {
		if err := b.beforeQueue(); err != nil {
			return err
		}
	}

	specs, err := b.ClassifyTasks()
	if err != nil {
		return err
	}

	b.registerQueues()

	for _, spec := range specs {
		if !spec.Queued {
			continue
		}
		if spec.Skip {
			b.mu.Lock()
			b.held[spec.Priority] = append(b.held[spec.Priority], spec)
			b.mu.Unlock()
			continue
		}
		if err := b.schedule(spec); err != nil {
			return err
		}
	}

	b.mu.Lock()
	if b.state == StateConstructed {
		b.state = StateQueued
	}
	b.mu.Unlock()

	if err := b.queueDeferred(ctx); err != nil {
		return err
	}

	b.log.Debug("tasks queued", "count", len(specs))
	b.checkDone()
	return ctx.Err()
}

// QueuePriority schedules the held tasks of a skipped priority.
func (b *Base) QueuePriority(name string) error {
	if !b.priorities.Has(name) {
		return oerrors.NewConfigurationError(
			fmt.Sprintf("unknown priority %q", name), "priority", "")
	}

	b.mu.Lock()
	held := b.held[name]
	delete(b.held, name)
	b.mu.Unlock()

	for _, spec := range held {
		if err := b.schedule(spec); err != nil {
			return err
		}
	}
	return nil
}

// registerQueues adds every priority's queue to the loop, anchored before
// the queue of its Before priority.
func (b *Base) registerQueues() {
	loop := b.env.Loop()
	for _, p := range b.priorities.All() {
		anchor := p.Before
		if a, ok := b.priorities.Lookup(p.Before); ok {
			anchor = a.Queue()
		}
		if loop.AddSubQueue(p.Queue(), anchor) {
			b.log.Debug("queue registered", "queue", p.Queue(), "before", anchor)
		}
	}
}

func (b *Base) schedule(spec TaskSpec) error {
	info := TaskInfo{
		GeneratorID: b.id,
		Namespace:   b.namespace,
		Name:        spec.Name,
		Method:      spec.Method,
		Priority:    spec.Priority,
		Queue:       spec.Queue,
		Edit:        spec.Edit,
		Args:        spec.args(),
	}

	var once string
	if spec.Once {
		once = b.Identity() + "#" + spec.Name
	}

	// Counted up front: the task may run before Insert returns when the
	// loop is driven from another goroutine.
	b.mu.Lock()
	b.pending++
	b.mu.Unlock()

	added, err := b.env.Loop().Insert(runloop.Task{
		Name:        b.namespace + "#" + spec.Name,
		Queue:       spec.Queue,
		Owner:       b.namespace,
		Once:        once,
		Cancellable: spec.Cancellable,
		Run:         b.wrap(info, spec.Run),
		Discarded:   b.discarded,
	})
	if err != nil || !added {
		b.mu.Lock()
		b.pending--
		b.mu.Unlock()
	}
	if err != nil {
		return oerrors.NewConfigurationError(err.Error(), spec.Name, "")
	}
	return nil
}

func (b *Base) wrap(info TaskInfo, run TaskFunc) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		b.mu.Lock()
		b.state = StateRunning
		b.mu.Unlock()

		b.log.Debug("running task", "task", info.Name, "queue", info.Queue)

		if err := run(context.WithValue(ctx, taskInfoKey{}, info)); err != nil {
			b.mu.Lock()
			b.state = StateErrored
			b.mu.Unlock()

			terr := &TaskError{Namespace: b.namespace, GeneratorID: b.id, Task: info.Name, Err: err}
			b.env.Emit(EventError, terr)
			return terr
		}

		b.mu.Lock()
		b.last = info
		b.pending--
		b.mu.Unlock()

		b.checkDone()
		return nil
	}
}

func (b *Base) discarded() {
	b.mu.Lock()
	b.pending--
	b.mu.Unlock()
	b.checkDone()
}

// checkDone moves the instance to done once its own tasks drained and every
// composed child is done, then lets the parents re-check.
func (b *Base) checkDone() {
	b.mu.Lock()
	if !b.queued || b.pending > 0 || b.state == StateDone || b.state == StateErrored {
		b.mu.Unlock()
		return
	}
	children := slices.Clone(b.children)
	b.mu.Unlock()

	for _, c := range children {
		if c.State() != StateDone {
			return
		}
	}

	b.mu.Lock()
	if b.state == StateDone || b.state == StateErrored {
		b.mu.Unlock()
		return
	}
	b.state = StateDone
	last := b.last
	parents := slices.Clone(b.parents)
	b.mu.Unlock()

	ev := DoneEvent{
		Generator:    b.Self(),
		GeneratorID:  b.id,
		Namespace:    b.namespace,
		PriorityName: last.Priority,
		QueueName:    last.Queue,
	}
	if ev.PriorityName == "" {
		ev.PriorityName = priority.Default
		ev.QueueName = priority.Default
	}
	b.log.Debug("generator done", "id", b.id, "priority", ev.PriorityName)
	b.env.Emit(EventDone, ev)

	for _, p := range parents {
		p.checkDone()
	}
}
