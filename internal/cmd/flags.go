package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	oerrors "github.com/opmodel/scaffold/internal/errors"
)

// GeneratorFlags holds the flags of commands that run generators.
type GeneratorFlags struct {
	SkipInstall bool
	SkipCache   bool
	Force       bool
	Accessible  bool
	Answers     string
	Dir         string
	Options     []string
	Summary     bool
}

// AddTo registers the generator flags on the given cobra command.
func (f *GeneratorFlags) AddTo(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.SkipInstall, "skip-install", false,
		"Do not run package installs (env: SCAFFOLD_SKIP_INSTALL)")
	cmd.Flags().BoolVar(&f.SkipCache, "skip-cache", false,
		"Do not prefill or remember answers (env: SCAFFOLD_SKIP_CACHE)")
	cmd.Flags().BoolVar(&f.Force, "force", false,
		"Overwrite conflicting files (env: SCAFFOLD_FORCE)")
	cmd.Flags().BoolVar(&f.Accessible, "accessible", false,
		"Use plain line-based prompts (env: SCAFFOLD_ACCESSIBLE)")
	cmd.Flags().StringVar(&f.Answers, "answers", "",
		"YAML file answering prompts non-interactively")
	cmd.Flags().StringVarP(&f.Dir, "dir", "d", "",
		"Destination directory (default: current directory)")
	cmd.Flags().StringArrayVar(&f.Options, "option", nil,
		"Generator option as key=value (can be repeated)")
	cmd.Flags().BoolVar(&f.Summary, "summary", false,
		"Print a tree of the committed files")
}

// ParseOptions turns the repeated --option values into a map.
func (f *GeneratorFlags) ParseOptions() (map[string]any, error) {
	options := make(map[string]any, len(f.Options))
	for _, raw := range f.Options {
		key, value, ok := strings.Cut(raw, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, oerrors.NewValidationError(
				fmt.Sprintf("invalid option %q", raw), "", "option",
				"Use --option key=value")
		}
		options[key] = value
	}
	return options, nil
}
