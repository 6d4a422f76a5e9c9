// Package config provides configuration loading and management.
package config

// LogConfig contains logging-related settings.
type LogConfig struct {
	// Timestamps controls whether timestamps are shown in log output.
	// Default: true. Override with --timestamps flag.
	Timestamps *bool `mapstructure:"timestamps" json:"timestamps,omitempty"`
}

// Config represents the scaffold CLI configuration.
// Loaded from ~/.scaffold/config.yaml.
type Config struct {
	// AnswersFile is where remembered prompt answers are stored.
	// Env: SCAFFOLD_ANSWERS_FILE, Default: ~/.scaffold/answers.json
	AnswersFile string `mapstructure:"answersFile" json:"answersFile,omitempty"`

	// SkipInstall disables package installs after generation.
	// Env: SCAFFOLD_SKIP_INSTALL
	SkipInstall bool `mapstructure:"skipInstall" json:"skipInstall,omitempty"`

	// SkipCache disables remembered answers.
	// Env: SCAFFOLD_SKIP_CACHE
	SkipCache bool `mapstructure:"skipCache" json:"skipCache,omitempty"`

	// Force overwrites conflicting files without asking.
	// Env: SCAFFOLD_FORCE
	Force bool `mapstructure:"force" json:"force,omitempty"`

	// Accessible switches prompts to plain line-based input.
	// Env: SCAFFOLD_ACCESSIBLE
	Accessible bool `mapstructure:"accessible" json:"accessible,omitempty"`

	// Log contains logging-related settings.
	Log LogConfig `mapstructure:"log" json:"log,omitempty"`
}

// DefaultConfig returns a Config with all default values populated.
func DefaultConfig() *Config {
	return (&Config{}).WithDefaults()
}

// WithDefaults fills unset fields with their defaults.
func (c *Config) WithDefaults() *Config {
	out := *c
	if out.AnswersFile == "" {
		if paths, err := DefaultPaths(); err == nil {
			out.AnswersFile = paths.AnswersFile
		}
	}
	return &out
}
