// Package cmd provides CLI command implementations.
package cmd

import (
	"io"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/opmodel/scaffold/internal/config"
	"github.com/opmodel/scaffold/internal/install"
	"github.com/opmodel/scaffold/internal/output"
)

// Runtime holds the collaborators commands run against. Zero values select
// the operating system.
type Runtime struct {
	Fs     afero.Fs
	Runner install.Runner
	Stdout io.Writer

	// Cwd overrides the working directory generators write relative to.
	Cwd string

	// GlobalConfigPath overrides where remembered answers are stored.
	GlobalConfigPath string
}

// GlobalConfig holds CLI-wide configuration resolved during PersistentPreRunE.
// It is populated once at startup and passed into every sub-command
// constructor.
type GlobalConfig struct {
	Runtime Runtime

	Config     *config.Config
	Loader     *config.Loader
	ConfigPath string
	Verbose    bool
}

// out returns where command output is printed.
func (g *GlobalConfig) out() io.Writer {
	if g.Runtime.Stdout != nil {
		return g.Runtime.Stdout
	}
	return os.Stdout
}

// answersPath returns the global answers file: the runtime override, then
// the config file's answersFile, then the default under ~/.scaffold.
func (g *GlobalConfig) answersPath() string {
	if g.Runtime.GlobalConfigPath != "" {
		return g.Runtime.GlobalConfigPath
	}
	if g.Config != nil && g.Config.AnswersFile != "" {
		if p, err := config.ExpandPath(g.Config.AnswersFile); err == nil {
			return p
		}
	}
	if paths, err := config.DefaultPaths(); err == nil {
		return paths.AnswersFile
	}
	return ""
}

// NewRootCmd creates the root command for the scaffold CLI.
func NewRootCmd() *cobra.Command {
	return NewRootCmdWith(Runtime{})
}

// NewRootCmdWith creates the root command running against rt.
func NewRootCmdWith(rt Runtime) *cobra.Command {
	if rt.Fs == nil {
		rt.Fs = afero.NewOsFs()
	}
	cfg := &GlobalConfig{Runtime: rt}

	var (
		configFlag     string
		verboseFlag    bool
		timestampsFlag bool
	)

	rootCmd := &cobra.Command{
		Use:   "scaffold",
		Short: "Project scaffolding generators",
		Long: `scaffold runs code generators that prompt for input, compose each other
and write the resulting files into a project directory.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg.Verbose = verboseFlag
			return initializeGlobals(cmd, cfg, configFlag, timestampsFlag)
		},
	}

	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "Path to config file (env: SCAFFOLD_CONFIG)")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&timestampsFlag, "timestamps", true, "Show timestamps in log output")

	rootCmd.AddCommand(NewRunCmd(cfg))
	rootCmd.AddCommand(NewListCmd(cfg))
	rootCmd.AddCommand(NewConfigCmd(cfg))
	rootCmd.AddCommand(NewVersionCmd(cfg))

	return rootCmd
}

// initializeGlobals loads configuration and sets up logging.
func initializeGlobals(cmd *cobra.Command, cfg *GlobalConfig, configFlag string, timestampsFlag bool) error {
	configPath, err := config.ResolveConfigPath(configFlag)
	if err != nil {
		return err
	}

	loader := config.NewLoader()
	loaded, err := loader.LoadWithDefaults(configPath.String())
	if err != nil {
		return err
	}

	cfg.Loader = loader
	cfg.Config = loaded
	cfg.ConfigPath = configPath.String()

	logCfg := output.LogConfig{
		Verbose: cfg.Verbose,
	}

	// flag (if explicitly set) > config > default (nil = true)
	if cmd.Flags().Changed("timestamps") {
		logCfg.Timestamps = output.BoolPtr(timestampsFlag)
	} else if loaded.Log.Timestamps != nil {
		logCfg.Timestamps = loaded.Log.Timestamps
	}

	output.SetupLogging(logCfg)

	if cfg.Verbose {
		config.LogResolvedValues([]config.ResolvedValue{configPath})
	}

	return nil
}
