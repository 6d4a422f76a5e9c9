package generator

import (
	"context"
	"fmt"
	"maps"
	"slices"

	oerrors "github.com/opmodel/scaffold/internal/errors"
)

// LocalNamespace names generators composed from a bare Factory.
const LocalNamespace = "local"

// ComposeOptions tune a composition.
type ComposeOptions struct {
	Args []string

	// Options are merged over the shared options inherited from the parent.
	Options map[string]any

	// DestinationRoot defaults to the parent's destination root.
	DestinationRoot string

	// RunPriorities queues held tasks of skipped priorities right away.
	RunPriorities []string

	// Namespace names an instance created from a bare Factory.
	Namespace string
}

// ComposeWith resolves ref, a namespace or a Factory, and adds the
// generator to the current run. When the generator is unique and an
// instance with the same key exists, that instance is returned instead.
func (b *Base) ComposeWith(ctx context.Context, ref any, opts ComposeOptions) (Generator, error) {
	factory, namespace, err := b.env.Resolve(ref)
	if err != nil {
		return nil, fmt.Errorf("composing %v from %s: %w", ref, b.namespace, err)
	}
	if namespace == "" {
		namespace = opts.Namespace
	}
	if namespace == "" {
		namespace = LocalNamespace
	}

	options := make(map[string]any)
	for _, key := range SharedOptionKeys() {
		if v, ok := b.options[key]; ok {
			options[key] = v
		}
	}
	maps.Copy(options, opts.Options)

	root := opts.DestinationRoot
	if root == "" {
		root = b.DestinationRoot()
	} else {
		root = b.resolvePath(root)
	}

	g, err := factory(Options{
		Env:             b.env,
		Namespace:       namespace,
		Args:            opts.Args,
		Options:         options,
		DestinationRoot: root,
	})
	if err != nil {
		return nil, oerrors.Wrapf(oerrors.ErrResolution, "instantiating %s: %v", namespace, err)
	}
	child := g.Core()
	child.Bind(g)

	if key := child.UniqueKey(); key != "" {
		if existing, ok := b.env.Composed(key); ok {
			child.Release()
			b.link(existing.Core())
			b.log.Debug("reusing composed generator", "key", key)
			b.env.Emit(EventCompose, b.composeEvent(existing, true))
			return existing, nil
		}
		b.env.AddComposed(key, g)
	}

	b.link(child)

	b.mu.Lock()
	if b.state == StateConstructed {
		b.deferred = append(b.deferred, deferredChild{child: child, priorities: opts.RunPriorities})
		b.mu.Unlock()
		b.log.Debug("deferred composed generator", "child", namespace, "id", child.id)
		b.env.Emit(EventCompose, b.composeEvent(g, false))
		return g, nil
	}
	b.mu.Unlock()

	if err := child.queueComposed(ctx, opts.RunPriorities); err != nil {
		return nil, err
	}

	b.log.Debug("composed generator", "child", namespace, "id", child.id)
	b.env.Emit(EventCompose, b.composeEvent(g, false))
	return g, nil
}

// deferredChild is a composition requested while the parent was still
// being constructed.
type deferredChild struct {
	child      *Base
	priorities []string
}

// queueDeferred queues the children composed before b's own tasks were
// scheduled, in request order.
func (b *Base) queueDeferred(ctx context.Context) error {
	b.mu.Lock()
	deferred := b.deferred
	b.deferred = nil
	b.mu.Unlock()

	for _, d := range deferred {
		if err := d.child.queueComposed(ctx, d.priorities); err != nil {
			return err
		}
	}
	return nil
}

func (b *Base) queueComposed(ctx context.Context, priorities []string) error {
	if err := b.QueueTasks(ctx); err != nil {
		return err
	}
	for _, name := range priorities {
		if err := b.QueuePriority(name); err != nil {
			return err
		}
	}
	return nil
}

func (b *Base) composeEvent(child Generator, reused bool) ComposeEvent {
	return ComposeEvent{
		Parent:   b.Self(),
		ParentID: b.id,
		Child:    child,
		ChildID:  child.Core().id,
		Reused:   reused,
	}
}

// link records child as composed by b. Links that would make b wait on
// itself are ignored.
func (b *Base) link(child *Base) {
	if b.isDescendantOf(child) {
		return
	}

	b.mu.Lock()
	if !slices.Contains(b.children, child) {
		b.children = append(b.children, child)
	}
	b.mu.Unlock()

	child.mu.Lock()
	if !slices.Contains(child.parents, b) {
		child.parents = append(child.parents, b)
	}
	child.mu.Unlock()
}

// Children returns the generators b composed.
func (b *Base) Children() []Generator {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]Generator, len(b.children))
	for i, c := range b.children {
		out[i] = c.Self()
	}
	return out
}

// isDescendantOf reports whether other is b or one of b's ancestors.
func (b *Base) isDescendantOf(other *Base) bool {
	if b == other {
		return true
	}
	b.mu.Lock()
	parents := slices.Clone(b.parents)
	b.mu.Unlock()

	for _, p := range parents {
		if p.isDescendantOf(other) {
			return true
		}
	}
	return false
}
