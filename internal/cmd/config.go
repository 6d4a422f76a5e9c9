package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	oerrors "github.com/opmodel/scaffold/internal/errors"
	"github.com/opmodel/scaffold/internal/generator"
	"github.com/opmodel/scaffold/internal/memfs"
	"github.com/opmodel/scaffold/internal/output"
	"github.com/opmodel/scaffold/internal/storage"
)

// NewConfigCmd creates the config command group.
func NewConfigCmd(cfg *GlobalConfig) *cobra.Command {
	c := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long: `Inspect the CLI configuration and edit stored generator configuration.

Project configuration lives in .scaffold-rc.json under the destination
directory, one object per generator namespace. Remembered prompt answers
live in the global answers file (--global).`,
	}

	c.AddCommand(newConfigShowCmd(cfg))
	c.AddCommand(newConfigGetCmd(cfg))
	c.AddCommand(newConfigSetCmd(cfg))
	c.AddCommand(newConfigUnsetCmd(cfg))

	return c
}

// storeFlags select the document and namespace config get/set/unset edit.
type storeFlags struct {
	Global    bool
	Dir       string
	Namespace string
}

func (f *storeFlags) addTo(c *cobra.Command) {
	c.Flags().BoolVar(&f.Global, "global", false, "Use the global answers file instead of the project config")
	c.Flags().StringVarP(&f.Dir, "dir", "d", "", "Project directory (default: current directory)")
	c.Flags().StringVarP(&f.Namespace, "namespace", "n", "", "Generator namespace (default: whole document)")
}

// openStore opens the selected document through an in-memory editor. The
// caller commits the editor to persist changes.
func openStore(cfg *GlobalConfig, f *storeFlags) (*storage.Storage, *memfs.Editor, error) {
	cwd := cfg.Runtime.Cwd
	if cwd == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, nil, err
		}
		cwd = wd
	}

	path := cfg.answersPath()
	if !f.Global {
		dir := f.Dir
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(cwd, dir)
		}
		path = filepath.Join(dir, generator.ConfigFile)
	}

	editor := memfs.New(cfg.Runtime.Fs, memfs.WithRoot(cwd), memfs.WithReporter(func(status, p string) {
		output.Debug("config file written", "status", status, "path", p)
	}))
	store, err := storage.New(editor, path, storage.Options{Name: f.Namespace, LodashPath: true})
	if err != nil {
		return nil, nil, err
	}
	return store, editor, nil
}

func newConfigShowCmd(cfg *GlobalConfig) *cobra.Command {
	var format string

	c := &cobra.Command{
		Use:   "show",
		Short: "Show the resolved CLI configuration",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			return printValue(cfg, format, cfg.Config)
		},
	}

	c.Flags().StringVarP(&format, "output", "o", "yaml", "Output format: yaml, json")

	return c
}

func newConfigGetCmd(cfg *GlobalConfig) *cobra.Command {
	var (
		flags  storeFlags
		format string
	)

	c := &cobra.Command{
		Use:   "get [key]",
		Short: "Print a stored value, or the whole namespace",
		Example: `  # Show the app generator's project configuration
  scaffold config get -n app

  # Print one remembered answer
  scaffold config get --global promptValues.license`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			store, _, err := openStore(cfg, &flags)
			if err != nil {
				return exitWith(err)
			}
			defer store.Close()

			if len(args) == 0 {
				return printValue(cfg, format, store.All())
			}
			if !store.Has(args[0]) {
				return exitWith(oerrors.NewNotFoundError(
					fmt.Sprintf("key %q is not set", args[0]), store.Path(), ""))
			}
			return printValue(cfg, format, store.Get(args[0]))
		},
	}

	flags.addTo(c)
	c.Flags().StringVarP(&format, "output", "o", "json", "Output format: yaml, json")

	return c
}

func newConfigSetCmd(cfg *GlobalConfig) *cobra.Command {
	var flags storeFlags

	c := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Store a value",
		Long: `Store a value under key. The value is parsed as YAML, so true, 3 and
[a, b] are stored as a boolean, a number and a list.`,
		Args: cobra.ExactArgs(2),
		RunE: func(c *cobra.Command, args []string) error {
			value, err := parseValue(args[1])
			if err != nil {
				return exitWith(err)
			}

			store, editor, err := openStore(cfg, &flags)
			if err != nil {
				return exitWith(err)
			}
			defer store.Close()

			if _, err := store.Set(args[0], value); err != nil {
				return exitWith(err)
			}
			if _, err := editor.Commit(c.Context(), true); err != nil {
				return exitWith(err)
			}
			output.Debug("config value stored", "key", args[0], "path", store.Path())
			return nil
		},
	}

	flags.addTo(c)

	return c
}

func newConfigUnsetCmd(cfg *GlobalConfig) *cobra.Command {
	var flags storeFlags

	c := &cobra.Command{
		Use:   "unset <key>",
		Short: "Remove a stored value",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			store, editor, err := openStore(cfg, &flags)
			if err != nil {
				return exitWith(err)
			}
			defer store.Close()

			if err := store.Delete(args[0]); err != nil {
				return exitWith(err)
			}
			if _, err := editor.Commit(c.Context(), true); err != nil {
				return exitWith(err)
			}
			return nil
		},
	}

	flags.addTo(c)

	return c
}

// parseValue decodes a command-line value as YAML.
func parseValue(raw string) (any, error) {
	var v any
	if err := yaml.Unmarshal([]byte(raw), &v); err != nil {
		return nil, oerrors.NewValidationError(
			fmt.Sprintf("cannot parse value %q: %v", raw, err), "", "value", "Quote strings containing YAML syntax")
	}
	if v == nil && strings.TrimSpace(raw) != "null" && strings.TrimSpace(raw) != "~" {
		return raw, nil
	}
	return v, nil
}

func printValue(cfg *GlobalConfig, format string, v any) error {
	f := output.ParseOutputFormat(format)
	if !strings.EqualFold(format, "yml") && !output.OutputFormat(strings.ToLower(format)).IsValid() {
		return exitWith(oerrors.NewValidationError(
			fmt.Sprintf("unsupported output format %q", format), "", "output",
			"Use one of: "+strings.Join(output.ValidFormats(), ", ")))
	}

	out, err := output.Marshal(f, v)
	if err != nil {
		return exitWith(err)
	}
	fmt.Fprint(cfg.out(), out)
	return nil
}
