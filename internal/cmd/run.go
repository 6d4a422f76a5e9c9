package cmd

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/opmodel/scaffold/internal/config"
	"github.com/opmodel/scaffold/internal/environment"
	oerrors "github.com/opmodel/scaffold/internal/errors"
	"github.com/opmodel/scaffold/internal/generator"
	"github.com/opmodel/scaffold/internal/generators"
	"github.com/opmodel/scaffold/internal/install"
	"github.com/opmodel/scaffold/internal/memfs"
	"github.com/opmodel/scaffold/internal/output"
	"github.com/opmodel/scaffold/internal/prompt"
	"github.com/opmodel/scaffold/internal/version"
)

// NewRunCmd creates the run command.
func NewRunCmd(cfg *GlobalConfig) *cobra.Command {
	var flags GeneratorFlags

	c := &cobra.Command{
		Use:   "run <namespace> [args...]",
		Short: "Run a generator",
		Long: `Run a registered generator and every generator it composes.

Files are staged in memory and written once all writing tasks have run.
Conflicting files are skipped unless --force is given.`,
		Example: `  # Scaffold a Go module in ./hello
  scaffold run app --dir hello

  # Answer prompts from a file
  scaffold run app --answers answers.yaml --skip-install

  # Add a license without prompting
  scaffold run license --option license=MIT --option author="Jane Doe"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			return runRun(c, args, cfg, &flags)
		},
	}

	flags.AddTo(c)

	return c
}

// runSettings are the resolved boolean settings of a run.
type runSettings struct {
	force       config.ResolvedValue
	skipInstall config.ResolvedValue
	skipCache   config.ResolvedValue
	accessible  config.ResolvedValue
}

func resolveRunSettings(c *cobra.Command, cfg *GlobalConfig, flags *GeneratorFlags) runSettings {
	fileCfg := cfg.Config
	if fileCfg == nil {
		fileCfg = config.DefaultConfig()
	}
	inConfig := func(key string) bool {
		return cfg.Loader != nil && cfg.Loader.InConfig(key)
	}

	setting := func(key, flag, env string, flagValue, configValue bool) config.ResolvedValue {
		return config.ResolveBool(config.BoolSetting{
			Key:       key,
			Flag:      flagValue,
			FlagSet:   c.Flags().Changed(flag),
			Env:       env,
			Config:    configValue,
			ConfigSet: inConfig(key),
		})
	}

	return runSettings{
		force:       setting("force", "force", "SCAFFOLD_FORCE", flags.Force, fileCfg.Force),
		skipInstall: setting("skipInstall", "skip-install", "SCAFFOLD_SKIP_INSTALL", flags.SkipInstall, fileCfg.SkipInstall),
		skipCache:   setting("skipCache", "skip-cache", "SCAFFOLD_SKIP_CACHE", flags.SkipCache, fileCfg.SkipCache),
		accessible:  setting("accessible", "accessible", "SCAFFOLD_ACCESSIBLE", flags.Accessible, fileCfg.Accessible),
	}
}

func runRun(c *cobra.Command, args []string, cfg *GlobalConfig, flags *GeneratorFlags) error {
	namespace, genArgs := args[0], args[1:]

	settings := resolveRunSettings(c, cfg, flags)
	if cfg.Verbose {
		config.LogResolvedValues([]config.ResolvedValue{
			settings.force, settings.skipInstall, settings.skipCache, settings.accessible,
		})
	}

	options, err := flags.ParseOptions()
	if err != nil {
		return exitWith(err)
	}

	adapter, err := newAdapter(cfg, flags, settings.accessible.Bool())
	if err != nil {
		return exitWith(err)
	}

	env := environment.New(environment.Options{
		Cwd:              cfg.Runtime.Cwd,
		Fs:               cfg.Runtime.Fs,
		Adapter:          adapter,
		Runner:           cfg.Runtime.Runner,
		GlobalConfigPath: cfg.answersPath(),
		Version:          version.Get().Version,
		SharedOptions: map[string]any{
			generator.OptionForce:       settings.force.Bool(),
			generator.OptionSkipInstall: settings.skipInstall.Bool(),
			generator.OptionSkipCache:   settings.skipCache.Bool(),
		},
	})
	if err := generators.Register(env); err != nil {
		return exitWith(err)
	}

	env.On(generator.EventCompose, func(payload any) {
		if ev, ok := payload.(generator.ComposeEvent); ok {
			output.Debug("composed generator", "parent", ev.Parent, "child", ev.Child,
				"child_id", ev.ChildID, "reused", ev.Reused)
		}
	})
	env.On(generator.EventDone, func(payload any) {
		if ev, ok := payload.(generator.DoneEvent); ok {
			output.Debug("generator done", "namespace", ev.Namespace, "id", ev.GeneratorID, "priority", ev.PriorityName)
		}
	})
	env.On(environment.EventInstallDone, func(payload any) {
		o, ok := payload.(install.Outcome)
		if !ok {
			return
		}
		if o.Result.Err != nil || o.Result.ExitCode != 0 {
			output.Warn("install failed", "command", o.Request.String(), "exit", o.Result.ExitCode, "error", o.Result.Err)
			return
		}
		output.Debug("install finished", "command", o.Request.String())
	})

	output.Debug("running generator", "namespace", namespace, "args", genArgs, "dir", flags.Dir, "run", env.ID())

	g, err := env.Run(c.Context(), namespace, environment.RunOptions{
		Args:            genArgs,
		Options:         options,
		DestinationRoot: flags.Dir,
	})
	if err != nil {
		var terr *generator.TaskError
		if errors.As(err, &terr) {
			output.Debug("task failed", "run", env.ID(), "generator", terr.GeneratorID, "task", terr.Task)
		}
		return exitWith(err)
	}

	if flags.Summary {
		printSummary(cfg, g.Core().DestinationRoot(), env.Changes())
	}
	return nil
}

// printSummary renders the committed files below root as a tree.
func printSummary(cfg *GlobalConfig, root string, changes []memfs.Change) {
	files := make(map[string]string, len(changes))
	for _, ch := range changes {
		rel, err := filepath.Rel(root, ch.Path)
		if err != nil || strings.HasPrefix(rel, "..") {
			rel = ch.Path
		}
		files[rel] = ch.Status
	}
	if tree := output.RenderFileTree(filepath.Base(root), files); tree != "" {
		fmt.Fprint(cfg.out(), tree)
	}
}

// newAdapter answers from --answers when given, otherwise from the terminal.
func newAdapter(cfg *GlobalConfig, flags *GeneratorFlags, accessible bool) (prompt.Adapter, error) {
	if flags.Answers == "" {
		var opts []prompt.HuhOption
		if accessible {
			opts = append(opts, prompt.WithAccessible(true))
		}
		return prompt.NewHuhAdapter(opts...), nil
	}

	path, err := config.ExpandPath(flags.Answers)
	if err != nil {
		return nil, err
	}
	answers, err := prompt.LoadAnswers(cfg.Runtime.Fs, path)
	if err != nil {
		return nil, oerrors.NewNotFoundError(err.Error(), path, "Check the --answers path")
	}
	return prompt.NewStaticAdapter(answers), nil
}

// exitWith logs err and wraps it with its exit code.
func exitWith(err error) error {
	output.Error(err.Error())
	return &oerrors.ExitError{Err: err, Code: oerrors.ExitCodeFromError(err), Printed: true}
}
