package generator

import (
	"fmt"
	"io/fs"
	"path/filepath"

	oerrors "github.com/opmodel/scaffold/internal/errors"
)

// DestinationRoot is the directory files are written to.
func (b *Base) DestinationRoot() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.destinationRoot
}

// SetDestinationRoot moves the destination root. Storages opened under the
// previous root are released.
func (b *Base) SetDestinationRoot(root string) string {
	resolved := b.resolvePath(root)

	b.mu.Lock()
	changed := resolved != b.destinationRoot
	b.destinationRoot = resolved
	b.mu.Unlock()

	if changed {
		b.Release()
	}
	return resolved
}

// DestinationPath joins parts onto the destination root. Absolute parts are
// returned cleaned.
func (b *Base) DestinationPath(parts ...string) string {
	p := filepath.Join(parts...)
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(b.DestinationRoot(), p)
}

// TemplatePath returns a slash-separated path into the template files.
func (b *Base) TemplatePath(parts ...string) string {
	p := filepath.ToSlash(filepath.Join(parts...))
	if p == "" {
		return "."
	}
	return p
}

// Templates returns the template files, which may be nil.
func (b *Base) Templates() fs.FS {
	return b.templates
}

// SetTemplates replaces the template files.
func (b *Base) SetTemplates(fsys fs.FS) {
	b.templates = fsys
}

// ReadDestination reads a file relative to the destination root, seeing
// staged writes.
func (b *Base) ReadDestination(path string) ([]byte, error) {
	return b.env.FS().Read(b.DestinationPath(path))
}

// WriteDestination stages a file relative to the destination root.
func (b *Base) WriteDestination(path string, data []byte) error {
	return b.env.FS().Write(b.DestinationPath(path), data)
}

// WriteDestinationJSON stages a JSON file relative to the destination root.
func (b *Base) WriteDestinationJSON(path string, v any) error {
	return b.env.FS().WriteJSON(b.DestinationPath(path), v)
}

// ExistsDestination reports whether a file exists on disk or is staged.
func (b *Base) ExistsDestination(path string) bool {
	return b.env.FS().Exists(b.DestinationPath(path))
}

// DeleteDestination stages a deletion.
func (b *Base) DeleteDestination(path string) error {
	return b.env.FS().Delete(b.DestinationPath(path))
}

// CopyTemplate renders a template file or directory into the destination
// root. Files ending in .tmpl are executed with data and lose the suffix.
func (b *Base) CopyTemplate(from, to string, data any) ([]string, error) {
	if b.templates == nil {
		return nil, oerrors.NewConfigurationError(
			fmt.Sprintf("%s has no templates", b.namespace), "templates", "")
	}
	return b.env.FS().CopyTpl(b.templates, b.TemplatePath(from), b.DestinationPath(to), data)
}

// CopyStatic copies template files verbatim.
func (b *Base) CopyStatic(from, to string) ([]string, error) {
	if b.templates == nil {
		return nil, oerrors.NewConfigurationError(
			fmt.Sprintf("%s has no templates", b.namespace), "templates", "")
	}
	return b.env.FS().Copy(b.templates, b.TemplatePath(from), b.DestinationPath(to))
}
