package generator

import (
	"context"
	"slices"
	"strings"

	oerrors "github.com/opmodel/scaffold/internal/errors"
	"github.com/opmodel/scaffold/internal/priority"
)

// TaskFunc is the body of a task. Task metadata, including priority
// arguments, is available through TaskFromContext.
type TaskFunc func(ctx context.Context) error

// Step is one entry of a task group.
type Step struct {
	Name string
	Run  TaskFunc
}

// TaskOption tunes a registered task.
type TaskOption func(*method)

// Once runs the task at most once per generator identity across the run.
func Once() TaskOption {
	return func(m *method) { m.once = true }
}

// Cancellable lets the task be dropped before it starts.
func Cancellable() TaskOption {
	return func(m *method) { m.cancellable = true }
}

type method struct {
	name        string
	run         TaskFunc
	group       []Step
	once        bool
	cancellable bool
}

// reservedNames are never classified as tasks.
var reservedNames = []string{
	"constructor", "config", "packageJson", "instanceConfig",
	"options", "args", "env", "fs", "log", "features",
}

// Define registers a task under name in the current layer. A name matching a
// priority runs in that priority; other names run in the default priority
// unless TasksMatchingPriority is set. Names starting with "_" are helpers
// and never run.
func (b *Base) Define(name string, fn TaskFunc, opts ...TaskOption) {
	if name == "" || fn == nil {
		b.recordDefineErr("task definitions require a name and a function", name)
		return
	}
	m := method{name: name, run: fn}
	for _, opt := range opts {
		opt(&m)
	}
	b.addMethod(m)
}

// DefineGroup registers a group of steps under name. When name is a priority
// each step runs as its own task named "<name>:<step>", in order. Groups
// under other names are not queued.
func (b *Base) DefineGroup(name string, steps ...Step) {
	if name == "" || len(steps) == 0 {
		b.recordDefineErr("task groups require a name and at least one step", name)
		return
	}
	for _, s := range steps {
		if s.Name == "" || s.Run == nil {
			b.recordDefineErr("group steps require a name and a function", name)
			return
		}
	}
	b.addMethod(method{name: name, group: slices.Clone(steps)})
}

// Extend starts a new definition layer. Definitions made after Extend belong
// to a derived generator; with InheritTasks the earlier layers run too,
// otherwise only the last layer is classified.
func (b *Base) Extend() {
	b.layers = append(b.layers, nil)
}

// BeforeQueue registers a hook that runs right before the instance's tasks
// are queued. Generators composed from the hook are queued first.
func (b *Base) BeforeQueue(fn func() error) {
	b.beforeQueue = fn
}

func (b *Base) addMethod(m method) {
	last := len(b.layers) - 1
	layer := b.layers[last]
	if i := slices.IndexFunc(layer, func(x method) bool { return x.name == m.name }); i >= 0 {
		layer[i] = m
		return
	}
	b.layers[last] = append(layer, m)
}

func (b *Base) recordDefineErr(msg, name string) {
	if b.defineErr == nil {
		b.defineErr = oerrors.NewConfigurationError(msg, name, "")
	}
}

// methods returns the methods to classify in discovery order. When layers
// override a method it keeps the position of its first definition and the
// body of its last.
func (b *Base) methods() []method {
	if !b.features.InheritTasks {
		return slices.Clone(b.layers[len(b.layers)-1])
	}

	var out []method
	for _, layer := range b.layers {
		for _, m := range layer {
			if i := slices.IndexFunc(out, func(x method) bool { return x.name == m.name }); i >= 0 {
				out[i] = m
				continue
			}
			out = append(out, m)
		}
	}
	return out
}

// TaskSpec is a classified task.
type TaskSpec struct {
	// Name is the effective task name, "<group>:<step>" for group steps.
	Name string

	// Method is the registered name before prefix stripping.
	Method string

	Priority    string
	Queue       string
	Run         TaskFunc
	Once        bool
	Cancellable bool
	Skip        bool
	Edit        bool

	// Queued is false for priorities declared with Run set to false.
	Queued bool

	// Args are computed when the task is queued.
	args func() []any
}

// ClassifyTasks maps registered definitions to priorities.
func (b *Base) ClassifyTasks() ([]TaskSpec, error) {
	if b.defineErr != nil {
		return nil, b.defineErr
	}

	var specs []TaskSpec
	for _, m := range b.methods() {
		name, ok := b.taskName(m.name)
		if !ok {
			continue
		}

		p, isPriority := b.priorities.Lookup(name)
		switch {
		case m.group != nil && isPriority:
			for _, step := range m.group {
				specs = append(specs, b.spec(m, name+":"+step.Name, step.Run, p))
			}
		case m.group != nil:
			b.log.Debug("group does not match a priority, not queued", "group", name)
		case isPriority:
			specs = append(specs, b.spec(m, name, m.run, p))
		case b.features.TasksMatchingPriority:
			b.log.Debug("task does not match a priority, not queued", "task", name)
		default:
			def, _ := b.priorities.Lookup(priority.Default)
			specs = append(specs, b.spec(m, name, m.run, def))
		}
	}
	return specs, nil
}

// taskName applies the private, reserved and prefix rules.
func (b *Base) taskName(name string) (string, bool) {
	if strings.HasPrefix(name, "_") || slices.Contains(reservedNames, name) {
		return "", false
	}
	if prefix := b.features.TaskPrefix; prefix != "" {
		if !strings.HasPrefix(name, prefix) {
			return "", false
		}
		name = strings.TrimPrefix(name, prefix)
		if name == "" {
			return "", false
		}
	}
	return name, true
}

func (b *Base) spec(m method, name string, run TaskFunc, p priority.Priority) TaskSpec {
	return TaskSpec{
		Name:        name,
		Method:      m.name,
		Priority:    p.Name,
		Queue:       p.Queue(),
		Run:         run,
		Once:        m.once || p.Once,
		Cancellable: m.cancellable,
		Skip:        p.Skip,
		Edit:        p.Edit,
		Queued:      p.Runs(),
		args:        p.TaskArgs,
	}
}
