package generators

import (
	"context"

	"github.com/opmodel/scaffold/internal/generator"
	"github.com/opmodel/scaffold/internal/priority"
)

// Gitignore writes a .gitignore unless the project already has one. It is
// unique per run however often it is composed.
type Gitignore struct {
	*generator.Base
}

// NewGitignore creates the gitignore generator.
func NewGitignore(opts generator.Options) (generator.Generator, error) {
	base, err := generator.New(opts, generator.Features{Unique: generator.UniqueNamespace})
	if err != nil {
		return nil, err
	}

	g := &Gitignore{Base: base}
	g.Define(priority.Writing, g.writing)
	return g, nil
}

func (g *Gitignore) writing(context.Context) error {
	if g.ExistsDestination(".gitignore") {
		g.Log().Debug("keeping existing .gitignore")
		return nil
	}
	_, err := g.CopyTemplate("gitignore.tmpl", ".gitignore", nil)
	return err
}
