package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/opmodel/stager/internal/output"
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

// ResolvedValue records the winning value for one key and what it shadowed.
type ResolvedValue struct {
	Key      string
	Value    string
	Source   ConfigSource
	Shadowed map[ConfigSource]string
}

// ResolveOptions lists the candidate values for one key.
type ResolveOptions struct {
	Key     string
	Flag    string
	EnvVar  string
	Config  string
	Default string
}

// Resolve picks a value using precedence: (1) flag, (2) env, (3) config, (4) default.
// Lower-precedence values that were set are recorded as shadowed.
func Resolve(opts ResolveOptions) ResolvedValue {
	result := ResolvedValue{Key: opts.Key, Shadowed: make(map[ConfigSource]string)}

	var envValue string
	if opts.EnvVar != "" {
		envValue = os.Getenv(opts.EnvVar)
	}

	candidates := []struct {
		source ConfigSource
		value  string
	}{
		{SourceFlag, opts.Flag},
		{SourceEnv, envValue},
		{SourceConfig, opts.Config},
		{SourceDefault, opts.Default},
	}
	for _, c := range candidates {
		if c.value == "" {
			continue
		}
		if result.Source == "" {
			result.Value = c.value
			result.Source = c.source
			continue
		}
		result.Shadowed[c.source] = c.value
	}

	return result
}

// Settings are the effective values for a staging command.
type Settings struct {
	SearchPath     []string
	Interpreter    string
	TargetVersion  string
	TargetPlatform string
	HostVersion    string
	OverridesDir   string
	Exclude        []string

	// Values records how each scalar setting was resolved.
	Values []ResolvedValue
}

// Flags holds command-line values. Empty means "not given".
type Flags struct {
	SearchPath     []string
	Interpreter    string
	TargetVersion  string
	TargetPlatform string
	HostVersion    string
	OverridesDir   string
}

// ResolveSettings merges flags, STAGER_* environment variables, the config
// file and defaults. cfg should come from NewFileLoader so that environment
// values are attributed to SourceEnv.
func ResolveSettings(cfg *Config, flags Flags) Settings {
	if cfg == nil {
		cfg = &Config{}
	}
	defaults := DefaultConfig()

	s := Settings{}
	scalars := []struct {
		key string
		dst *string
	}{
		{"interpreter", &s.Interpreter},
		{"target.version", &s.TargetVersion},
		{"target.platform", &s.TargetPlatform},
		{"hostVersion", &s.HostVersion},
		{"overridesDir", &s.OverridesDir},
	}
	for _, sc := range scalars {
		v := Resolve(ResolveOptions{
			Key:     sc.key,
			Flag:    flagValue(flags, sc.key),
			EnvVar:  envBindings[sc.key],
			Config:  configValue(cfg, sc.key),
			Default: configValue(defaults, sc.key),
		})
		*sc.dst = v.Value
		s.Values = append(s.Values, v)
	}

	pathValue := Resolve(ResolveOptions{
		Key:    "searchPath",
		Flag:   strings.Join(flags.SearchPath, string(filepath.ListSeparator)),
		EnvVar: envBindings["searchPath"],
		Config: strings.Join(cfg.SearchPath, string(filepath.ListSeparator)),
	})
	s.Values = append(s.Values, pathValue)
	switch pathValue.Source {
	case SourceFlag:
		s.SearchPath = flags.SearchPath
	case SourceEnv:
		s.SearchPath = strings.Split(os.Getenv(envBindings["searchPath"]), ",")
	case SourceConfig:
		s.SearchPath = cfg.SearchPath
	}

	s.Exclude = cfg.Exclude
	if s.Exclude == nil {
		s.Exclude = defaults.Exclude
	}

	return s
}

func flagValue(f Flags, key string) string {
	switch key {
	case "interpreter":
		return f.Interpreter
	case "target.version":
		return f.TargetVersion
	case "target.platform":
		return f.TargetPlatform
	case "hostVersion":
		return f.HostVersion
	case "overridesDir":
		return f.OverridesDir
	}
	return ""
}

func configValue(c *Config, key string) string {
	switch key {
	case "interpreter":
		return c.Interpreter
	case "target.version":
		return c.Target.Version
	case "target.platform":
		return c.Target.Platform
	case "hostVersion":
		return c.HostVersion
	case "overridesDir":
		return c.OverridesDir
	}
	return ""
}

// LogResolvedValues logs configuration resolution at DEBUG level.
func LogResolvedValues(values []ResolvedValue) {
	for _, v := range values {
		if v.Source == "" {
			continue
		}
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

// ResolveConfigPathResult contains the resolved config path and its source.
type ResolveConfigPathResult struct {
	// ConfigPath is the resolved config file path.
	ConfigPath string
	// Source indicates where the config path came from.
	Source ConfigSource
	// Shadowed contains values that were overridden by higher precedence.
	Shadowed map[ConfigSource]string
}

// ResolveConfigPath resolves the config file path using precedence:
// (1) --config flag, (2) STAGER_CONFIG env, (3) ~/.stager/config.yaml default
func ResolveConfigPath(flag string) (ResolveConfigPathResult, error) {
	paths, err := DefaultPaths()
	if err != nil {
		return ResolveConfigPathResult{}, err
	}

	v := Resolve(ResolveOptions{
		Key:     "config",
		Flag:    flag,
		EnvVar:  ConfigEnvVar,
		Default: paths.ConfigFile,
	})
	return ResolveConfigPathResult{ConfigPath: v.Value, Source: v.Source, Shadowed: v.Shadowed}, nil
}
