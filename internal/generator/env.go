package generator

import (
	"io/fs"

	"github.com/opmodel/scaffold/internal/install"
	"github.com/opmodel/scaffold/internal/prompt"
	"github.com/opmodel/scaffold/internal/runloop"
)

// Event names emitted through Env.Emit.
const (
	// EventDone carries a DoneEvent when a generator and all its composed
	// children have finished.
	EventDone = "generator:done"

	// EventError carries the *TaskError that halted the run.
	EventError = "error"

	// EventCompose carries a ComposeEvent for every composition, reused or not.
	EventCompose = "compose"
)

// Shared option keys forwarded from a parent to the generators it composes.
const (
	OptionForce       = "force"
	OptionSkipInstall = "skip-install"
	OptionSkipCache   = "skip-cache"
)

// SharedOptionKeys lists the options every composed generator inherits.
func SharedOptionKeys() []string {
	return []string{OptionForce, OptionSkipInstall, OptionSkipCache}
}

// Loop is the part of the run loop generators schedule into.
type Loop interface {
	AddSubQueue(name, before string) bool
	HasQueue(name string) bool
	Add(t runloop.Task) (bool, error)
	Insert(t runloop.Task) (bool, error)
}

// Editor is the in-memory file editor generators write through.
type Editor interface {
	Read(path string) ([]byte, error)
	Write(path string, data []byte) error
	WriteJSON(path string, v any) error
	Exists(path string) bool
	Delete(path string) error
	Copy(src fs.FS, from, to string) ([]string, error)
	CopyTpl(src fs.FS, from, to string, data any) ([]string, error)
	AlwaysOverwrite(path string)
	Subscribe(fn func(path string)) func()
}

// Installer collects package-manager invocations.
type Installer interface {
	Schedule(req install.Request) bool
}

// Env is the environment a generator runs in: it owns the run loop, the
// file editor, the prompt adapter and the registry of composed generators.
type Env interface {
	Loop() Loop

	// Resolve maps a namespace string or a Factory to a factory and the
	// namespace the instance will carry.
	Resolve(ref any) (Factory, string, error)

	// Composed returns the instance registered under a uniqueness key.
	Composed(key string) (Generator, bool)
	AddComposed(key string, g Generator)

	Emit(event string, payload any)

	FS() Editor
	Adapter() prompt.Adapter
	Installer() Installer

	// Cwd is the directory relative destination roots resolve against.
	Cwd() string

	// GlobalConfigPath is the per-user file remembered answers live in.
	GlobalConfigPath() string

	// Version returns the version of the environment when pkg is empty, or
	// of a registered generator package.
	Version(pkg string) (string, bool)

	// SharedOptions are the options every generator starts with.
	SharedOptions() map[string]any
}
