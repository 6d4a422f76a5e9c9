// Package memfs buffers file edits in memory and commits them to an afero
// filesystem in one pass, reporting a status per file.
package memfs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/spf13/afero"

	"github.com/opmodel/scaffold/internal/output"
	"github.com/opmodel/scaffold/internal/templates"
)

// Change is the outcome of committing one file.
type Change struct {
	Path   string
	Status string
}

// Reporter receives one call per committed file.
type Reporter func(status, path string)

type entry struct {
	contents []byte
	deleted  bool
}

// Editor is an in-memory layer over a filesystem. Reads see pending edits;
// nothing touches the base filesystem until Commit.
type Editor struct {
	mu        sync.Mutex
	base      afero.Fs
	pending   map[string]*entry
	order     []string
	overwrite map[string]bool
	subs      map[int]func(path string)
	nextSub   int
	reporter  Reporter
	root      string
}

// Option configures an Editor.
type Option func(*Editor)

// WithReporter replaces the default status printer.
func WithReporter(r Reporter) Option {
	return func(e *Editor) {
		e.reporter = r
	}
}

// WithRoot makes reported paths relative to root.
func WithRoot(root string) Option {
	return func(e *Editor) {
		e.root = filepath.Clean(root)
	}
}

// New creates an editor over base.
func New(base afero.Fs, opts ...Option) *Editor {
	e := &Editor{
		base:      base,
		pending:   make(map[string]*entry),
		overwrite: make(map[string]bool),
		subs:      make(map[int]func(string)),
		reporter: func(status, path string) {
			output.Println(output.FormatFileLine(status, path))
		},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Fs returns the base filesystem.
func (e *Editor) Fs() afero.Fs {
	return e.base
}

// Read returns the current contents of path. Missing files return an error
// matching fs.ErrNotExist.
func (e *Editor) Read(path string) ([]byte, error) {
	path = filepath.Clean(path)

	e.mu.Lock()
	ent, ok := e.pending[path]
	e.mu.Unlock()

	if ok {
		if ent.deleted {
			return nil, &fs.PathError{Op: "read", Path: path, Err: fs.ErrNotExist}
		}
		return bytes.Clone(ent.contents), nil
	}

	return afero.ReadFile(e.base, path)
}

// ReadJSON decodes path into v. It reports false, leaving v untouched, when
// the file does not exist.
func (e *Editor) ReadJSON(path string, v any) (bool, error) {
	data, err := e.Read(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return true, fmt.Errorf("parsing %s: %w", path, err)
	}
	return true, nil
}

// Exists reports whether path exists, counting pending edits.
func (e *Editor) Exists(path string) bool {
	path = filepath.Clean(path)

	e.mu.Lock()
	ent, ok := e.pending[path]
	e.mu.Unlock()

	if ok {
		return !ent.deleted
	}
	exists, err := afero.Exists(e.base, path)
	return err == nil && exists
}

// Write stages contents for path and notifies subscribers.
func (e *Editor) Write(path string, contents []byte) error {
	if path == "" {
		return errors.New("write: empty path")
	}
	e.stage(filepath.Clean(path), &entry{contents: bytes.Clone(contents)})
	return nil
}

// WriteJSON stages v encoded with two-space indentation and a trailing newline.
func (e *Editor) WriteJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return e.Write(path, append(data, '\n'))
}

// Delete stages the removal of path.
func (e *Editor) Delete(path string) error {
	e.stage(filepath.Clean(path), &entry{deleted: true})
	return nil
}

func (e *Editor) stage(path string, ent *entry) {
	e.mu.Lock()
	if _, ok := e.pending[path]; !ok {
		e.order = append(e.order, path)
	}
	e.pending[path] = ent
	subs := make([]func(string), 0, len(e.subs))
	for _, id := range slices.Sorted(maps.Keys(e.subs)) {
		subs = append(subs, e.subs[id])
	}
	e.mu.Unlock()

	for _, fn := range subs {
		fn(path)
	}
}

// Copy stages every file under from in src at the same relative path under
// to, without rendering. It returns the destination paths.
func (e *Editor) Copy(src fs.FS, from, to string) ([]string, error) {
	var written []string
	err := fs.WalkDir(src, from, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		data, err := fs.ReadFile(src, p)
		if err != nil {
			return fmt.Errorf("reading %s: %w", p, err)
		}

		rel, err := filepath.Rel(filepath.FromSlash(from), filepath.FromSlash(p))
		if err != nil {
			return err
		}
		target := to
		if rel != "." {
			target = filepath.Join(to, rel)
		}
		if err := e.Write(target, data); err != nil {
			return err
		}
		written = append(written, target)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("copying %s: %w", from, err)
	}
	return written, nil
}

// CopyTpl renders every file under from in src with data and stages the
// result under to. Files ending in .tmpl are rendered and lose the suffix;
// when from names a single file, to is the exact destination path.
func (e *Editor) CopyTpl(src fs.FS, from, to string, data any) ([]string, error) {
	files, err := templates.NewRenderer(data).RenderTree(src, from)
	if err != nil {
		return nil, err
	}

	info, err := fs.Stat(src, from)
	if err != nil {
		return nil, fmt.Errorf("copying %s: %w", from, err)
	}

	written := make([]string, 0, len(files))
	for _, f := range files {
		target := to
		if info.IsDir() {
			target = filepath.Join(to, filepath.FromSlash(f.TargetPath))
		}
		if err := e.Write(target, f.Content); err != nil {
			return nil, err
		}
		written = append(written, target)
	}
	return written, nil
}

// AlwaysOverwrite marks path as written without conflict checks on commit.
func (e *Editor) AlwaysOverwrite(path string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.overwrite[filepath.Clean(path)] = true
}

// Subscribe registers fn to be called with the path of every staged change.
// The returned function removes the subscription.
func (e *Editor) Subscribe(fn func(path string)) func() {
	e.mu.Lock()
	id := e.nextSub
	e.nextSub++
	e.subs[id] = fn
	e.mu.Unlock()

	return func() {
		e.mu.Lock()
		delete(e.subs, id)
		e.mu.Unlock()
	}
}

// Pending returns the staged paths in staging order.
func (e *Editor) Pending() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return slices.Clone(e.order)
}

// Commit writes staged edits to the base filesystem. Existing files with
// different contents are conflicts: they are overwritten when force is set
// or the path was marked with AlwaysOverwrite, and skipped otherwise.
func (e *Editor) Commit(ctx context.Context, force bool) ([]Change, error) {
	e.mu.Lock()
	order := e.order
	pending := e.pending
	overwrite := maps.Clone(e.overwrite)
	e.order = nil
	e.pending = make(map[string]*entry)
	e.mu.Unlock()

	changes := make([]Change, 0, len(order))
	for i, path := range order {
		if err := ctx.Err(); err != nil {
			e.requeue(order[i:], pending)
			return changes, err
		}

		status, err := e.commitOne(path, pending[path], force || overwrite[path])
		if err != nil {
			e.requeue(order[i:], pending)
			return changes, fmt.Errorf("committing %s: %w", path, err)
		}

		changes = append(changes, Change{Path: path, Status: status})
		e.report(status, path)
	}

	output.Debug("commit complete", "files", len(changes))
	return changes, nil
}

func (e *Editor) commitOne(path string, ent *entry, force bool) (string, error) {
	existing, err := afero.ReadFile(e.base, path)
	exists := err == nil
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return "", err
	}

	if ent.deleted {
		if !exists {
			return output.StatusSkip, nil
		}
		return output.StatusDelete, e.base.Remove(path)
	}

	status := output.StatusCreate
	if exists {
		if bytes.Equal(existing, ent.contents) {
			return output.StatusIdentical, nil
		}
		e.report(output.StatusConflict, path)
		if !force {
			return output.StatusSkip, nil
		}
		status = output.StatusForce
	}

	if err := e.base.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	return status, afero.WriteFile(e.base, path, ent.contents, 0o644)
}

// requeue puts uncommitted entries back ahead of anything staged meanwhile.
func (e *Editor) requeue(paths []string, pending map[string]*entry) {
	e.mu.Lock()
	defer e.mu.Unlock()

	var order []string
	for _, p := range paths {
		if _, staged := e.pending[p]; staged {
			continue
		}
		e.pending[p] = pending[p]
		order = append(order, p)
	}
	e.order = append(order, e.order...)
}

func (e *Editor) report(status, path string) {
	if e.reporter == nil {
		return
	}
	if e.root != "" {
		if rel, err := filepath.Rel(e.root, path); err == nil {
			path = rel
		}
	}
	e.reporter(status, path)
}
