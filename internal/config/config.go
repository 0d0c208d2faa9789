// Package config provides configuration loading and management.
package config

import (
	"github.com/opmodel/stager/internal/copier"
)

// TargetConfig names the runtime a bundle is staged for.
type TargetConfig struct {
	// Version is the runtime major.minor, e.g. "3.8".
	// Env: STAGER_TARGET_VERSION
	Version string `json:"version,omitempty" yaml:"version,omitempty"`

	// Platform is the platform identifier, e.g. "win_amd64".
	// Env: STAGER_TARGET_PLATFORM
	Platform string `json:"platform,omitempty" yaml:"platform,omitempty"`
}

// LogConfig contains logging-related settings.
type LogConfig struct {
	// Timestamps controls whether timestamps are shown in log output.
	// Default: true. Override with --timestamps flag.
	Timestamps *bool `json:"timestamps,omitempty" yaml:"timestamps,omitempty"`
}

// Config represents the stager configuration.
// Loaded from ~/.stager/config.yaml, validated against embedded CUE schema.
type Config struct {
	// SearchPath lists the locations modules are looked up in, in order.
	// When empty, the interpreter's import path is used if Interpreter is
	// set, otherwise the current directory followed by PYTHONPATH.
	// Env: STAGER_SEARCH_PATH (comma separated)
	SearchPath []string `json:"searchPath,omitempty" yaml:"searchPath,omitempty"`

	// Interpreter is a runtime executable to ask for its import path and version.
	// Env: STAGER_INTERPRETER
	Interpreter string `json:"interpreter,omitempty" yaml:"interpreter,omitempty"`

	// Target is the runtime being staged for.
	Target TargetConfig `json:"target,omitempty" yaml:"target,omitempty"`

	// HostVersion is the runtime version untagged binaries on the search path
	// were built for.
	// Env: STAGER_HOST_VERSION
	HostVersion string `json:"hostVersion,omitempty" yaml:"hostVersion,omitempty"`

	// Exclude lists glob patterns left out of copied packages.
	Exclude []string `json:"exclude,omitempty" yaml:"exclude,omitempty"`

	// OverridesDir holds entries copied into the destination before staging.
	// Env: STAGER_OVERRIDES_DIR
	OverridesDir string `json:"overridesDir,omitempty" yaml:"overridesDir,omitempty"`

	// Log contains logging-related settings.
	Log LogConfig `json:"log,omitempty" yaml:"log,omitempty"`
}

// DefaultConfig returns a Config with all default values populated.
// Used by `stager config init` to generate initial config file.
func DefaultConfig() *Config {
	return &Config{
		Target: TargetConfig{
			Version:  "3.8",
			Platform: "win_amd64",
		},
		Exclude: append([]string(nil), copier.DefaultExclude...),
	}
}
