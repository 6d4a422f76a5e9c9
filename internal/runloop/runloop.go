// Package runloop drains an ordered set of named task queues one task at a
// time. After every task the loop restarts from the first queue, so work added
// to an earlier queue runs before the loop advances.
package runloop

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/opmodel/scaffold/internal/output"
)

// ErrAlreadyRunning is returned when Run is called while the loop is draining.
var ErrAlreadyRunning = errors.New("run loop is already running")

// ErrUnknownQueue is returned when a task targets a queue that was never registered.
var ErrUnknownQueue = errors.New("unknown queue")

// Task is a single unit of work scheduled into one queue.
type Task struct {
	// Name identifies the task in logs and errors.
	Name string

	// Queue is the queue the task runs in.
	Queue string

	// Owner is the namespace of the generator that queued the task.
	Owner string

	// Once, when non-empty, is a key that may be scheduled at most once per loop.
	Once string

	// Cancellable tasks are dropped by CancelCancellable if they have not started.
	Cancellable bool

	// Run executes the task.
	Run func(ctx context.Context) error

	// Discarded is called when a queued task is dropped without running.
	Discarded func()
}

type queue struct {
	name  string
	tasks []Task
}

// Loop is the ordered queue set.
type Loop struct {
	mu      sync.Mutex
	queues  []*queue
	once    map[string]struct{}
	running bool

	// current is the queue of the task being executed, cursor the position
	// right after it where same-queue insertions go.
	current *queue
	cursor  int
}

// New creates a loop with the given queues in order.
func New(queues ...string) *Loop {
	l := &Loop{once: make(map[string]struct{})}
	for _, name := range queues {
		l.AddSubQueue(name, "")
	}
	return l
}

// AddSubQueue registers a queue immediately ahead of before, or at the end when
// before is empty or unknown. Registering an existing queue is a no-op and
// reports false.
func (l *Loop) AddSubQueue(name, before string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.find(name) != nil {
		return false
	}

	q := &queue{name: name}
	idx := slices.IndexFunc(l.queues, func(q *queue) bool { return q.name == before })
	if before == "" || idx < 0 {
		l.queues = append(l.queues, q)
	} else {
		l.queues = slices.Insert(l.queues, idx, q)
	}
	return true
}

// QueueNames returns the registered queue names in run order.
func (l *Loop) QueueNames() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	names := make([]string, len(l.queues))
	for i, q := range l.queues {
		names[i] = q.name
	}
	return names
}

// HasQueue reports whether name is registered.
func (l *Loop) HasQueue(name string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.find(name) != nil
}

// Add appends a task to the end of its queue. It reports false when the
// task's once key was already scheduled.
func (l *Loop) Add(t Task) (bool, error) {
	return l.enqueue(t, false)
}

// Insert schedules a task right after the task currently executing when both
// share a queue, keeping insertion order across consecutive calls. Otherwise
// it behaves like Add.
func (l *Loop) Insert(t Task) (bool, error) {
	return l.enqueue(t, true)
}

func (l *Loop) enqueue(t Task, insert bool) (bool, error) {
	if t.Run == nil {
		return false, fmt.Errorf("task %q has no run function", t.Name)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	q := l.find(t.Queue)
	if q == nil {
		return false, fmt.Errorf("%w %q for task %q", ErrUnknownQueue, t.Queue, t.Name)
	}

	if t.Once != "" {
		if _, seen := l.once[t.Once]; seen {
			output.Debug("skipping once task", "task", t.Name, "key", t.Once)
			return false, nil
		}
		l.once[t.Once] = struct{}{}
	}

	if insert && l.current == q {
		q.tasks = slices.Insert(q.tasks, l.cursor, t)
		l.cursor++
		return true, nil
	}

	q.tasks = append(q.tasks, t)
	return true, nil
}

// Run drains the queues until every queue is empty, a task fails, or ctx is
// cancelled. The context is checked between tasks only.
func (l *Loop) Run(ctx context.Context) error {
	l.mu.Lock()
	if l.running {
		l.mu.Unlock()
		return ErrAlreadyRunning
	}
	l.running = true
	l.mu.Unlock()

	defer func() {
		l.mu.Lock()
		l.running = false
		l.current = nil
		l.cursor = 0
		l.mu.Unlock()
	}()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		task, ok := l.next()
		if !ok {
			return nil
		}

		output.Debug("running task", "queue", task.Queue, "task", task.Name, "owner", task.Owner)
		err := task.Run(ctx)

		l.mu.Lock()
		l.current = nil
		l.cursor = 0
		l.mu.Unlock()

		if err != nil {
			return err
		}
	}
}

// next pops the head of the first non-empty queue and marks it current.
func (l *Loop) next() (Task, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, q := range l.queues {
		if len(q.tasks) == 0 {
			continue
		}
		t := q.tasks[0]
		q.tasks = q.tasks[1:]
		l.current = q
		l.cursor = 0
		return t, true
	}
	return Task{}, false
}

// CancelCancellable drops every queued cancellable task and returns how many
// were dropped. Tasks already executing are not affected.
func (l *Loop) CancelCancellable() int {
	l.mu.Lock()
	var dropped []Task
	for _, q := range l.queues {
		kept := q.tasks[:0]
		for i, t := range q.tasks {
			if t.Cancellable {
				dropped = append(dropped, t)
				if q == l.current && i < l.cursor {
					l.cursor--
				}
				continue
			}
			kept = append(kept, t)
		}
		q.tasks = kept
	}
	l.mu.Unlock()

	for _, t := range dropped {
		if t.Discarded != nil {
			t.Discarded()
		}
	}
	return len(dropped)
}

// Running reports whether Run is draining the loop.
func (l *Loop) Running() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.running
}

// Pending returns the number of queued tasks, or of tasks in the named queues.
func (l *Loop) Pending(queues ...string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	n := 0
	for _, q := range l.queues {
		if len(queues) > 0 && !slices.Contains(queues, q.name) {
			continue
		}
		n += len(q.tasks)
	}
	return n
}

func (l *Loop) find(name string) *queue {
	for _, q := range l.queues {
		if q.name == name {
			return q
		}
	}
	return nil
}
