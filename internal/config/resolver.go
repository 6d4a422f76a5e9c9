package config

import (
	"os"
	"strconv"

	"github.com/opmodel/scaffold/internal/output"
)

// ConfigSource indicates where a configuration value came from.
type ConfigSource string

const (
	// SourceFlag indicates value came from command-line flag.
	SourceFlag ConfigSource = "flag"
	// SourceEnv indicates value came from environment variable.
	SourceEnv ConfigSource = "env"
	// SourceConfig indicates value came from config file.
	SourceConfig ConfigSource = "config"
	// SourceDefault indicates value is the built-in default.
	SourceDefault ConfigSource = "default"
)

// ResolvedValue records the outcome of resolving one setting.
type ResolvedValue struct {
	Key    string
	Value  any
	Source ConfigSource
	// Shadowed contains values that were overridden by higher precedence.
	Shadowed map[ConfigSource]any
}

// BoolSetting describes the inputs of a boolean setting.
type BoolSetting struct {
	Key string

	// Flag is the flag value, used when FlagSet is true.
	Flag    bool
	FlagSet bool

	// Env is the environment variable consulted after the flag.
	Env string

	// Config is the config file value, used when ConfigSet is true.
	Config    bool
	ConfigSet bool
}

// ResolveBool resolves a setting using precedence:
// (1) flag, (2) env, (3) config file, (4) false.
func ResolveBool(s BoolSetting) ResolvedValue {
	result := ResolvedValue{Key: s.Key, Value: false, Source: SourceDefault, Shadowed: map[ConfigSource]any{}}

	var envValue *bool
	if raw, ok := os.LookupEnv(s.Env); ok && s.Env != "" {
		if b, err := strconv.ParseBool(raw); err == nil {
			envValue = &b
		}
	}

	switch {
	case s.FlagSet:
		result.Value, result.Source = s.Flag, SourceFlag
		if envValue != nil {
			result.Shadowed[SourceEnv] = *envValue
		}
		if s.ConfigSet {
			result.Shadowed[SourceConfig] = s.Config
		}
	case envValue != nil:
		result.Value, result.Source = *envValue, SourceEnv
		if s.ConfigSet {
			result.Shadowed[SourceConfig] = s.Config
		}
	case s.ConfigSet:
		result.Value, result.Source = s.Config, SourceConfig
	}

	return result
}

// Bool returns the resolved value as a bool.
func (r ResolvedValue) Bool() bool {
	b, _ := r.Value.(bool)
	return b
}

// String returns the resolved value as a string.
func (r ResolvedValue) String() string {
	s, _ := r.Value.(string)
	return s
}

// ResolveConfigPath resolves the config file path using precedence:
// (1) --config flag, (2) SCAFFOLD_CONFIG env, (3) ~/.scaffold/config.yaml default
func ResolveConfigPath(flagValue string) (ResolvedValue, error) {
	result := ResolvedValue{Key: "config", Shadowed: map[ConfigSource]any{}}

	envValue := os.Getenv("SCAFFOLD_CONFIG")

	paths, err := DefaultPaths()
	if err != nil {
		return result, err
	}
	defaultPath := paths.ConfigFile

	switch {
	case flagValue != "":
		result.Value, result.Source = flagValue, SourceFlag
		if envValue != "" {
			result.Shadowed[SourceEnv] = envValue
		}
		result.Shadowed[SourceDefault] = defaultPath
	case envValue != "":
		result.Value, result.Source = envValue, SourceEnv
		result.Shadowed[SourceDefault] = defaultPath
	default:
		result.Value, result.Source = defaultPath, SourceDefault
	}

	return result, nil
}

// LogResolvedValues logs configuration resolution at DEBUG level.
func LogResolvedValues(values []ResolvedValue) {
	for _, v := range values {
		output.Debug("config value resolved",
			"key", v.Key,
			"value", v.Value,
			"source", v.Source,
		)
		for source, shadowed := range v.Shadowed {
			output.Debug("  shadowed by higher precedence",
				"key", v.Key,
				"shadowed_source", source,
				"shadowed_value", shadowed,
			)
		}
	}
}
