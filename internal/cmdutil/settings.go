package cmdutil

import (
	"context"

	"github.com/opmodel/stager/internal/cmdtypes"
	"github.com/opmodel/stager/internal/compat"
	"github.com/opmodel/stager/internal/config"
	"github.com/opmodel/stager/internal/output"
	"github.com/opmodel/stager/internal/searchpath"
	"github.com/opmodel/stager/internal/version"
)

// Environment is everything a staging command needs after settings resolution.
type Environment struct {
	Settings    config.Settings
	Target      compat.TargetRuntime
	HostVersion string
	SearchPath  searchpath.SearchPath
}

// Prepare resolves settings for a command, parses the target runtime, builds
// the search path and settles the host version. Without a search path,
// an interpreter is only consulted when searchNeeded is true.
func Prepare(ctx context.Context, cfg *cmdtypes.GlobalConfig, flags config.Flags, searchNeeded bool) (*Environment, error) {
	var fileCfg *config.Config
	if cfg != nil {
		if cfg.ConfigErr != nil {
			return nil, cfg.ConfigErr
		}
		fileCfg = cfg.Config
	}
	settings := config.ResolveSettings(fileCfg, flags)
	config.LogResolvedValues(settings.Values)

	target, err := compat.ParseTargetRuntime(settings.TargetVersion, settings.TargetPlatform)
	if err != nil {
		return nil, err
	}

	env := &Environment{
		Settings:    settings,
		Target:      target,
		HostVersion: settings.HostVersion,
	}

	if searchNeeded {
		env.SearchPath, err = BuildSearchPath(ctx, settings)
		if err != nil {
			return nil, err
		}
	}

	if env.HostVersion == "" && settings.Interpreter != "" {
		env.HostVersion = DetectHostVersion(ctx, settings.Interpreter, target)
	}
	output.Debug("staging target",
		"target", target.String(),
		"host_version", env.HostVersion,
		"search_path_entries", len(env.SearchPath),
	)

	return env, nil
}

// BuildSearchPath returns the explicit search path when one was configured,
// otherwise the import path of the configured interpreter, otherwise the
// current directory followed by PYTHONPATH.
func BuildSearchPath(ctx context.Context, settings config.Settings) (searchpath.SearchPath, error) {
	if len(settings.SearchPath) > 0 {
		return searchpath.Parse(settings.SearchPath), nil
	}
	if settings.Interpreter == "" {
		return searchpath.FromEnv(), nil
	}

	var path searchpath.SearchPath
	err := output.RunWithSpinner(ctx, func() error {
		var err error
		path, err = searchpath.FromInterpreter(ctx, settings.Interpreter)
		return err
	}, output.WithTitle("Querying "+settings.Interpreter+" for its import path"))
	if err != nil {
		return nil, err
	}
	return path, nil
}

// DetectHostVersion asks the interpreter for its version. It returns an empty
// string when the interpreter cannot be run, which makes untagged extension
// binaries fail the compatibility check.
func DetectHostVersion(ctx context.Context, interpreter string, target compat.TargetRuntime) string {
	info := version.DetectInterpreter(ctx, interpreter, target.Version)
	if !info.Found || info.Version == "" {
		output.Warn("could not determine interpreter version", "interpreter", interpreter, "reason", info.Message)
		return ""
	}
	if !info.Compatible {
		output.Warn(info.Message, "interpreter", info.Path)
	}
	return info.Version
}
