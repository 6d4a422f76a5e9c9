package environment

import (
	"fmt"
	"io/fs"
	"regexp"
	"slices"
	"strings"

	oerrors "github.com/opmodel/scaffold/internal/errors"
	"github.com/opmodel/scaffold/internal/generator"
)

// namespacePattern allows colon-separated lowercase segments. Dots are
// excluded because storages address namespaces as dotted key paths.
var namespacePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*(:[a-z0-9][a-z0-9-]*)*$`)

// Meta describes a registered generator.
type Meta struct {
	Description string

	// Version is reported by generator.Env.Version for the namespace.
	Version string

	// Templates are given to instances created without their own.
	Templates fs.FS
}

type registration struct {
	namespace string
	factory   generator.Factory
	meta      Meta
}

// Registered is a namespace with its metadata.
type Registered struct {
	Namespace string
	Meta      Meta
}

// Register makes factory resolvable as namespace.
func (e *Environment) Register(namespace string, factory generator.Factory, meta Meta) error {
	if !namespacePattern.MatchString(namespace) {
		return oerrors.NewValidationError(
			fmt.Sprintf("invalid namespace %q", namespace), namespace, "namespace",
			"Use lowercase segments separated by colons, e.g. app:sub")
	}
	if factory == nil {
		return oerrors.NewConfigurationError("register requires a factory", "factory", "")
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, exists := e.registry[namespace]; exists {
		return oerrors.NewConfigurationError(
			fmt.Sprintf("namespace %q is already registered", namespace), "namespace", "")
	}
	e.registry[namespace] = registration{namespace: namespace, factory: factory, meta: meta}
	return nil
}

// Registered lists registrations sorted by namespace.
func (e *Environment) Registered() []Registered {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]Registered, 0, len(e.registry))
	for _, r := range e.registry {
		out = append(out, Registered{Namespace: r.namespace, Meta: r.meta})
	}
	slices.SortFunc(out, func(a, b Registered) int { return strings.Compare(a.Namespace, b.Namespace) })
	return out
}

// Resolve implements generator.Env. A string resolves to its registration,
// falling back to "<name>:app" for a bare name. A Factory resolves to itself
// with an empty namespace.
func (e *Environment) Resolve(ref any) (generator.Factory, string, error) {
	switch r := ref.(type) {
	case generator.Factory:
		if r == nil {
			return nil, "", oerrors.Wrap(oerrors.ErrResolution, "nil factory")
		}
		return r, "", nil
	case func(generator.Options) (generator.Generator, error):
		if r == nil {
			return nil, "", oerrors.Wrap(oerrors.ErrResolution, "nil factory")
		}
		return r, "", nil
	case string:
		reg, ok := e.lookup(r)
		if !ok {
			return nil, "", oerrors.Wrapf(oerrors.ErrResolution, "no generator registered as %q", r)
		}
		return reg.bind(), reg.namespace, nil
	default:
		return nil, "", oerrors.Wrapf(oerrors.ErrResolution, "cannot resolve %T", ref)
	}
}

func (e *Environment) lookup(namespace string) (registration, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if reg, ok := e.registry[namespace]; ok {
		return reg, true
	}
	if !strings.Contains(namespace, ":") {
		reg, ok := e.registry[namespace+":app"]
		return reg, ok
	}
	return registration{}, false
}

// bind fills in the registration's templates.
func (r registration) bind() generator.Factory {
	return func(opts generator.Options) (generator.Generator, error) {
		if opts.Templates == nil {
			opts.Templates = r.meta.Templates
		}
		return r.factory(opts)
	}
}
