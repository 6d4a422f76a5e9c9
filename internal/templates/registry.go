package templates

import "slices"

// templates is the internal registry of embedded template sets.
var templates = map[string]Template{
	"app": {
		Name:        "app",
		Description: "Go module skeleton with a main package and README",
	},
	"license": {
		Name:        "license",
		Description: "License texts, one file per SPDX identifier",
	},
	"gitignore": {
		Name:        "gitignore",
		Description: "Default .gitignore for Go projects",
	},
}

// Get returns a template set by name.
func Get(name string) (Template, bool) {
	t, ok := templates[name]
	return t, ok
}

// List returns all template sets ordered by name.
func List() []Template {
	out := make([]Template, 0, len(templates))
	for _, name := range Names() {
		out = append(out, templates[name])
	}
	return out
}

// Names returns all template set names, sorted.
func Names() []string {
	names := make([]string, 0, len(templates))
	for name := range templates {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
