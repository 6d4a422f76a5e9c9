// Package generators contains the built-in generators: app scaffolds a Go
// module, license writes a LICENSE file and gitignore a .gitignore.
package generators

import (
	"fmt"

	"github.com/opmodel/scaffold/internal/environment"
	"github.com/opmodel/scaffold/internal/generator"
	"github.com/opmodel/scaffold/internal/templates"
	"github.com/opmodel/scaffold/internal/version"
)

// Namespaces of the built-in generators.
const (
	AppNamespace       = "app"
	LicenseNamespace   = "license"
	GitignoreNamespace = "gitignore"
)

type builtin struct {
	namespace string
	factory   generator.Factory
}

func builtins() []builtin {
	return []builtin{
		{AppNamespace, NewApp},
		{LicenseNamespace, NewLicense},
		{GitignoreNamespace, NewGitignore},
	}
}

// Register adds the built-in generators to env.
func Register(env *environment.Environment) error {
	for _, b := range builtins() {
		tpl, ok := templates.Get(b.namespace)
		if !ok {
			return fmt.Errorf("no templates for %s", b.namespace)
		}
		files, err := templates.Sub(b.namespace)
		if err != nil {
			return err
		}

		if err := env.Register(b.namespace, b.factory, environment.Meta{
			Description: tpl.Description,
			Version:     version.Get().Version,
			Templates:   files,
		}); err != nil {
			return err
		}
	}
	return nil
}
