package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/opmodel/scaffold/internal/environment"
	"github.com/opmodel/scaffold/internal/generator"
	"github.com/opmodel/scaffold/internal/generators"
	"github.com/opmodel/scaffold/internal/output"
)

// NewListCmd creates the list command.
func NewListCmd(cfg *GlobalConfig) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List registered generators",
		Args:    cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			return runList(cfg)
		},
	}
}

func runList(cfg *GlobalConfig) error {
	env := environment.New(environment.Options{
		Cwd:              cfg.Runtime.Cwd,
		Fs:               cfg.Runtime.Fs,
		Runner:           cfg.Runtime.Runner,
		GlobalConfigPath: cfg.answersPath(),
	})
	if err := generators.Register(env); err != nil {
		return exitWith(err)
	}

	var rows []output.GeneratorRow
	for _, r := range env.Registered() {
		unique, err := uniqueness(env, r.Namespace)
		if err != nil {
			return exitWith(err)
		}
		rows = append(rows, output.GeneratorRow{
			Namespace:   r.Namespace,
			Description: r.Meta.Description,
			Unique:      unique,
		})
	}

	fmt.Fprintln(cfg.out(), output.RenderGeneratorTable(rows))
	return nil
}

// uniqueness instantiates namespace without queueing it to read its
// deduplication mode.
func uniqueness(env *environment.Environment, namespace string) (string, error) {
	factory, _, err := env.Resolve(namespace)
	if err != nil {
		return "", err
	}
	g, err := factory(generator.Options{Env: env, Namespace: namespace})
	if err != nil {
		return "", err
	}
	defer g.Core().Release()

	features := g.Core().Features()
	if features.UniqueBy != "" {
		return "custom", nil
	}
	return string(features.Unique), nil
}
