package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/opmodel/stager/internal/cmdtypes"
	"github.com/opmodel/stager/internal/cmdutil"
	"github.com/opmodel/stager/internal/output"
	"github.com/opmodel/stager/internal/staging"
)

// NewLsCmd creates the ls command.
func NewLsCmd(_ *cmdtypes.GlobalConfig) *cobra.Command {
	var outputFlags cmdutil.OutputFlags

	c := &cobra.Command{
		Use:   "ls DIR",
		Short: "List the top-level entries of a staged directory",
		Long: `List the top-level entries of a staged directory with their type, as
an installer generator sees them.`,
		Args: cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			format, err := outputFlags.Parse()
			if err != nil {
				return cmdutil.Exit("ls", err)
			}

			entries, err := staging.List(args[0])
			if err != nil {
				return cmdutil.Exit("ls failed", err)
			}

			if format != output.FormatTable {
				if err := output.WriteStructured(c.OutOrStdout(), format, entries); err != nil {
					return cmdutil.Exit("writing output", err)
				}
				return nil
			}

			tbl := output.NewTable("NAME", "TYPE")
			for _, e := range entries {
				tbl.Row(e.Name, string(e.Type))
			}
			fmt.Fprintln(c.OutOrStdout(), tbl.String())
			return nil
		},
	}

	outputFlags.AddTo(c)

	return c
}
