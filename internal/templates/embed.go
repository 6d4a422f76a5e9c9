// Package templates provides the embedded templates of the built-in
// generators and the renderer used to expand them.
package templates

import (
	"embed"
	"fmt"
	"io/fs"
)

//go:embed app license gitignore
var embedded embed.FS

// FS returns the embedded template tree. Each template set is a top-level
// directory named after the generator that uses it.
func FS() fs.FS {
	return embedded
}

// Sub returns the files of one template set rooted at its directory.
func Sub(name string) (fs.FS, error) {
	if !IsValidTemplate(name) {
		return nil, fmt.Errorf("unknown template %q; valid templates: %v", name, Names())
	}
	return fs.Sub(embedded, name)
}

// IsValidTemplate checks if a template set exists.
func IsValidTemplate(name string) bool {
	_, ok := templates[name]
	return ok
}
