// Package cmdutil provides shared command utilities for the stager commands.
// It centralizes flag group management, settings resolution and error display.
package cmdutil

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/opmodel/stager/internal/config"
	oerrors "github.com/opmodel/stager/internal/errors"
	"github.com/opmodel/stager/internal/output"
)

// SearchFlags holds flags that control where modules are looked up
// (stage, resolve).
type SearchFlags struct {
	Path        []string
	Interpreter string
}

// AddTo registers the search flags on the given cobra command.
func (f *SearchFlags) AddTo(cmd *cobra.Command) {
	cmd.Flags().StringArrayVarP(&f.Path, "path", "p", nil,
		"Search path entry, directory or zip archive (can be repeated; env: STAGER_SEARCH_PATH)")
	cmd.Flags().StringVar(&f.Interpreter, "interpreter", "",
		"Interpreter to query for its import path (env: STAGER_INTERPRETER)")
}

// TargetFlags holds flags that describe the runtime a bundle is staged for
// (stage, check).
type TargetFlags struct {
	Version     string
	Platform    string
	HostVersion string
}

// AddTo registers the target flags on the given cobra command.
func (f *TargetFlags) AddTo(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.Version, "target-version", "",
		"Target runtime major.minor version (default: from config, 3.8)")
	cmd.Flags().StringVar(&f.Platform, "platform", "",
		"Target platform tag, e.g. win_amd64 or linux_x86_64 (default: from config)")
	cmd.Flags().StringVar(&f.HostVersion, "host-version", "",
		"Runtime version untagged extension binaries were built for (default: detected from --interpreter)")
}

// OutputFlags holds the output format flag (resolve, ls).
type OutputFlags struct {
	Format string
}

// AddTo registers the output flag on the given cobra command.
func (f *OutputFlags) AddTo(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.Format, "output", "o", "table",
		fmt.Sprintf("Output format: %s", strings.Join(output.ValidFormats(), ", ")))
}

// Parse returns the selected format or a validation error.
func (f *OutputFlags) Parse() (output.Format, error) {
	format, ok := output.ParseFormat(f.Format)
	if !ok {
		return "", oerrors.NewValidationError(
			fmt.Sprintf("unknown output format %q", f.Format), "--output",
			fmt.Sprintf("Use one of: %s", strings.Join(output.ValidFormats(), ", ")))
	}
	return format, nil
}

// ConfigFlags converts command-line values into resolver input.
// Nil groups contribute nothing.
func ConfigFlags(search *SearchFlags, target *TargetFlags, overridesDir string) config.Flags {
	flags := config.Flags{OverridesDir: overridesDir}
	if search != nil {
		flags.SearchPath = search.Path
		flags.Interpreter = search.Interpreter
	}
	if target != nil {
		flags.TargetVersion = target.Version
		flags.TargetPlatform = target.Platform
		flags.HostVersion = target.HostVersion
	}
	return flags
}
