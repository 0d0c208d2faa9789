package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/opmodel/stager/internal/cmdtypes"
	"github.com/opmodel/stager/internal/config"
	"github.com/opmodel/stager/internal/version"
)

// NewVersionCmd creates the version command.
func NewVersionCmd(cfg *cmdtypes.GlobalConfig) *cobra.Command {
	var interpreter string

	c := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long: `Show stager version information.

Displays:
  - stager version, commit, and build date
  - CUE SDK version (embedded in CLI)
  - the configured interpreter and whether it matches the target version`,
		RunE: func(c *cobra.Command, _ []string) error {
			info := version.GetInfo()

			var fileCfg *config.Config
			if cfg != nil {
				fileCfg = cfg.Config
			}
			settings := config.ResolveSettings(fileCfg, config.Flags{Interpreter: interpreter})
			if settings.Interpreter == "" {
				fmt.Fprintln(c.OutOrStdout(), info.String())
				return nil
			}

			interp := version.DetectInterpreter(c.Context(), settings.Interpreter, settings.TargetVersion)
			fmt.Fprintln(c.OutOrStdout(), version.FullVersionString(info, interp))
			return nil
		},
	}

	c.Flags().StringVar(&interpreter, "interpreter", "", "Interpreter to report on (env: STAGER_INTERPRETER)")

	return c
}
