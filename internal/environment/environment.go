// Package environment runs generators: it owns the run loop, the in-memory
// file editor, the prompt adapter and the installer, resolves namespaces to
// registered generators and commits files once the queues drain.
package environment

import (
	"maps"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"github.com/opmodel/scaffold/internal/generator"
	"github.com/opmodel/scaffold/internal/install"
	"github.com/opmodel/scaffold/internal/memfs"
	"github.com/opmodel/scaffold/internal/priority"
	"github.com/opmodel/scaffold/internal/prompt"
	"github.com/opmodel/scaffold/internal/runloop"
)

// Queues the environment adds around the generator priorities.
const (
	// CommitQueue runs after conflicts and writes staged files to disk.
	CommitQueue = "environment:commit"

	// InstallQueue runs after install and starts scheduled package installs.
	InstallQueue = "environment:install"
)

// EventInstallDone carries an install.Outcome for every finished install.
const EventInstallDone = "install:done"

// Options configure an Environment. Zero values select the defaults noted
// on each field.
type Options struct {
	// Cwd is the directory relative destination roots resolve against.
	// Defaults to the process working directory.
	Cwd string

	// Fs is the filesystem files are committed to. Defaults to the OS.
	Fs afero.Fs

	// Adapter answers prompts. Defaults to an interactive huh adapter.
	Adapter prompt.Adapter

	// Runner spawns install processes. Defaults to os/exec.
	Runner install.Runner

	// Reporter receives one line per committed file. Nil keeps the
	// editor's default styled output.
	Reporter memfs.Reporter

	// GlobalConfigPath is where remembered answers are stored. Defaults to
	// ~/.scaffold/answers.json.
	GlobalConfigPath string

	// Version is the environment version reported to generators.
	Version string

	// SharedOptions are given to every generator, e.g. force and
	// skip-install from the command line.
	SharedOptions map[string]any
}

// Environment implements generator.Env.
type Environment struct {
	id        string
	cwd       string
	fs        afero.Fs
	loop      *runloop.Loop
	editor    *memfs.Editor
	adapter   prompt.Adapter
	installer *install.Installer

	globalConfigPath string
	version          string
	shared           map[string]any

	mu        sync.Mutex
	registry  map[string]registration
	composed  map[string]generator.Generator
	listeners map[string][]Listener
	changes   []memfs.Change
	force     bool
	started   bool
}

var _ generator.Env = (*Environment)(nil)

// New creates an environment.
func New(opts Options) *Environment {
	if opts.Cwd == "" {
		if wd, err := os.Getwd(); err == nil {
			opts.Cwd = wd
		}
	}
	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}
	if opts.Adapter == nil {
		opts.Adapter = prompt.NewHuhAdapter()
	}
	if opts.Runner == nil {
		opts.Runner = install.NewExecRunner()
	}
	if opts.GlobalConfigPath == "" {
		opts.GlobalConfigPath = DefaultGlobalConfigPath()
	}

	editorOpts := []memfs.Option{memfs.WithRoot(opts.Cwd)}
	if opts.Reporter != nil {
		editorOpts = append(editorOpts, memfs.WithReporter(opts.Reporter))
	}

	e := &Environment{
		id:               uuid.NewString(),
		cwd:              opts.Cwd,
		fs:               opts.Fs,
		loop:             runloop.New(priority.DefaultQueueNames()...),
		editor:           memfs.New(opts.Fs, editorOpts...),
		adapter:          opts.Adapter,
		installer:        install.New(opts.Runner),
		globalConfigPath: opts.GlobalConfigPath,
		version:          opts.Version,
		shared:           maps.Clone(opts.SharedOptions),
		registry:         make(map[string]registration),
		composed:         make(map[string]generator.Generator),
		listeners:        make(map[string][]Listener),
	}
	if e.shared == nil {
		e.shared = make(map[string]any)
	}

	e.loop.AddSubQueue(CommitQueue, priority.Install)
	e.loop.AddSubQueue(InstallQueue, priority.End)

	e.installer.OnExit(func(o install.Outcome) {
		e.Emit(EventInstallDone, o)
	})

	return e
}

// DefaultGlobalConfigPath is ~/.scaffold/answers.json, or a file in the
// temporary directory when the home directory is unknown.
func DefaultGlobalConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "scaffold-answers.json")
	}
	return filepath.Join(home, ".scaffold", "answers.json")
}

// ID identifies the environment in logs.
func (e *Environment) ID() string { return e.id }

// Loop implements generator.Env.
func (e *Environment) Loop() generator.Loop { return e.loop }

// RunLoop returns the concrete run loop.
func (e *Environment) RunLoop() *runloop.Loop { return e.loop }

// FS implements generator.Env.
func (e *Environment) FS() generator.Editor { return e.editor }

// Editor returns the concrete file editor.
func (e *Environment) Editor() *memfs.Editor { return e.editor }

// Adapter implements generator.Env.
func (e *Environment) Adapter() prompt.Adapter { return e.adapter }

// Installer implements generator.Env.
func (e *Environment) Installer() generator.Installer { return e.installer }

// Cwd implements generator.Env.
func (e *Environment) Cwd() string { return e.cwd }

// GlobalConfigPath implements generator.Env.
func (e *Environment) GlobalConfigPath() string { return e.globalConfigPath }

// SharedOptions implements generator.Env.
func (e *Environment) SharedOptions() map[string]any { return maps.Clone(e.shared) }

// Version implements generator.Env. An empty pkg is the environment itself.
func (e *Environment) Version(pkg string) (string, bool) {
	if pkg == "" {
		return e.version, e.version != ""
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	reg, ok := e.registry[pkg]
	if !ok || reg.meta.Version == "" {
		return "", false
	}
	return reg.meta.Version, true
}

// Composed implements generator.Env.
func (e *Environment) Composed(key string) (generator.Generator, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	g, ok := e.composed[key]
	return g, ok
}

// AddComposed implements generator.Env.
func (e *Environment) AddComposed(key string, g generator.Generator) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.composed[key] = g
}

// Changes returns every file change committed so far.
func (e *Environment) Changes() []memfs.Change {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]memfs.Change(nil), e.changes...)
}
