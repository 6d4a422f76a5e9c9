// Package generator is the base every scaffolding generator builds on. It
// classifies registered tasks into priorities, queues them on the
// environment's run loop, composes other generators into the same run and
// tracks each instance's lifecycle.
package generator

import (
	"fmt"
	"io/fs"
	"maps"
	"path/filepath"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	oerrors "github.com/opmodel/scaffold/internal/errors"
	"github.com/opmodel/scaffold/internal/output"
	"github.com/opmodel/scaffold/internal/priority"
	"github.com/opmodel/scaffold/internal/storage"
	"github.com/opmodel/scaffold/internal/user"
)

// Generator is implemented by every generator, usually by embedding *Base.
type Generator interface {
	Core() *Base
}

// Factory creates a generator instance.
type Factory func(opts Options) (Generator, error)

// Options are the construction inputs of a generator instance.
type Options struct {
	// Env is the environment the instance runs in. Required.
	Env Env

	// Namespace is the resolver identity. Required.
	Namespace string

	// Args are positional arguments.
	Args []string

	// Options are named options, e.g. parsed CLI flags.
	Options map[string]any

	// DestinationRoot is where files are written. Relative paths resolve
	// against Env.Cwd(); empty means Env.Cwd().
	DestinationRoot string

	// Templates holds the generator's template files.
	Templates fs.FS
}

// Uniqueness selects how composed instances are deduplicated.
type Uniqueness string

const (
	// UniqueNone creates a new instance for every composition.
	UniqueNone Uniqueness = ""

	// UniqueNamespace allows one instance per namespace.
	UniqueNamespace Uniqueness = "namespace"

	// UniqueArgument allows one instance per namespace and first argument.
	UniqueArgument Uniqueness = "argument"
)

// Features are the capability flags of a generator.
type Features struct {
	// UniqueBy is an explicit identity, overriding Unique.
	UniqueBy string

	// Unique derives the identity from the namespace and arguments.
	Unique Uniqueness

	// TasksMatchingPriority drops tasks whose names match no priority
	// instead of running them in the default priority.
	TasksMatchingPriority bool

	// TaskPrefix restricts tasks to names with this prefix, which is
	// stripped before classification.
	TaskPrefix string

	// CustomPriorities extend the base priorities.
	CustomPriorities []priority.Priority

	// InheritTasks classifies tasks from every Extend layer instead of only
	// the last one.
	InheritTasks bool

	// CustomInstallTask disables the environment's install step.
	CustomInstallTask bool

	// CustomCommitTask disables the environment's commit step.
	CustomCommitTask bool
}

// Base holds the state shared by all generators.
type Base struct {
	env        Env
	self       Generator
	id         string
	namespace  string
	args       []string
	options    map[string]any
	features   Features
	priorities *priority.Set
	templates  fs.FS
	log        *log.Logger

	destinationRoot string

	layers      [][]method
	defineErr   error
	beforeQueue func() error

	config         *storage.Storage
	packageJSON    *storage.Storage
	instanceConfig *storage.Storage
	globalConfig   *storage.Storage
	user           *user.Git

	mu       sync.Mutex
	state    State
	pending  int
	queued   bool
	held     map[string][]TaskSpec
	last     TaskInfo
	parents  []*Base
	children []*Base

	// deferred holds children composed before b scheduled its own tasks.
	deferred []deferredChild
}

// New creates the base of a generator. Duplicate custom priority names and
// missing construction inputs are configuration errors.
func New(opts Options, features Features) (*Base, error) {
	if opts.Env == nil {
		return nil, oerrors.NewConfigurationError("generator requires an environment", "env", "")
	}
	if opts.Namespace == "" {
		return nil, oerrors.NewConfigurationError("generator requires a namespace", "namespace", "")
	}

	set, err := priority.Resolve(features.CustomPriorities)
	if err != nil {
		return nil, err
	}

	options := make(map[string]any)
	maps.Copy(options, opts.Env.SharedOptions())
	maps.Copy(options, opts.Options)

	b := &Base{
		env:        opts.Env,
		id:         uuid.NewString(),
		namespace:  opts.Namespace,
		args:       append([]string(nil), opts.Args...),
		options:    options,
		features:   features,
		priorities: set,
		templates:  opts.Templates,
		log:        output.WithPrefix(opts.Namespace),
		layers:     [][]method{nil},
		held:       make(map[string][]TaskSpec),
		state:      StateConstructed,
	}
	b.destinationRoot = b.resolvePath(opts.DestinationRoot)

	return b, nil
}

// Core implements Generator.
func (b *Base) Core() *Base {
	return b
}

// Bind records the generator embedding b, so events and composition return
// the outer value. Factories that embed *Base need not call it; the
// environment binds every instance it creates.
func (b *Base) Bind(g Generator) {
	b.self = g
}

// Self returns the generator embedding b, or b when unbound.
func (b *Base) Self() Generator {
	if b.self != nil {
		return b.self
	}
	return b
}

// ID is unique per instance.
func (b *Base) ID() string { return b.id }

// Namespace returns the resolver identity.
func (b *Base) Namespace() string { return b.namespace }

// Args returns the positional arguments.
func (b *Base) Args() []string { return append([]string(nil), b.args...) }

// Options returns a copy of the named options.
func (b *Base) Options() map[string]any { return maps.Clone(b.options) }

// Option returns one named option.
func (b *Base) Option(name string) any { return b.options[name] }

// BoolOption reports whether a named option is set to true.
func (b *Base) BoolOption(name string) bool {
	v, _ := b.options[name].(bool)
	return v
}

// Features returns the capability flags.
func (b *Base) Features() Features { return b.features }

// Priorities returns the resolved priority set.
func (b *Base) Priorities() *priority.Set { return b.priorities }

// Env returns the environment.
func (b *Base) Env() Env { return b.env }

// Log returns a logger prefixed with the namespace.
func (b *Base) Log() *log.Logger { return b.log }

// Identity is the uniqueness key, falling back to the namespace. It scopes
// once-only tasks.
func (b *Base) Identity() string {
	if key := b.UniqueKey(); key != "" {
		return key
	}
	return b.namespace
}

// UniqueKey returns the key composed instances are deduplicated by, or an
// empty string when every composition creates an instance.
func (b *Base) UniqueKey() string {
	if b.features.UniqueBy != "" {
		return b.features.UniqueBy
	}
	switch b.features.Unique {
	case UniqueNamespace:
		return b.namespace
	case UniqueArgument:
		if len(b.args) > 0 {
			return b.namespace + "#" + b.args[0]
		}
		return b.namespace
	default:
		return ""
	}
}

// rootName is the namespace up to the first colon.
func (b *Base) rootName() string {
	name, _, _ := strings.Cut(b.namespace, ":")
	return name
}

func (b *Base) resolvePath(p string) string {
	if p == "" {
		return filepath.Clean(b.env.Cwd())
	}
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(b.env.Cwd(), p)
}

// Release closes the instance's storages. Instances dropped in favour of an
// existing unique instance are released automatically.
func (b *Base) Release() {
	for _, s := range []*storage.Storage{b.config, b.packageJSON, b.instanceConfig, b.globalConfig} {
		if s != nil {
			s.Close()
		}
	}
	b.config, b.packageJSON, b.instanceConfig, b.globalConfig = nil, nil, nil, nil
}

// String implements fmt.Stringer.
func (b *Base) String() string {
	return fmt.Sprintf("%s(%s)", b.namespace, b.State())
}
