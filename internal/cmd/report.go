package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/opmodel/stager/internal/cmdtypes"
	"github.com/opmodel/stager/internal/cmdutil"
	oerrors "github.com/opmodel/stager/internal/errors"
	"github.com/opmodel/stager/internal/output"
	"github.com/opmodel/stager/internal/staging"
)

// NewReportCmd creates the report command group.
func NewReportCmd(_ *cmdtypes.GlobalConfig) *cobra.Command {
	c := &cobra.Command{
		Use:   "report",
		Short: "Staging report operations",
		Long:  `Commands for producing and comparing staging reports.`,
	}

	c.AddCommand(newReportBuildCmd(), newReportDiffCmd())

	return c
}

func newReportBuildCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "build DIR",
		Short: "Print a report for a staged directory",
		Long: `Digest every top-level entry of a staged directory and print the
report as YAML. Staging the same modules again leaves the digests unchanged.`,
		Args: cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			report, err := staging.BuildReport(nil, args[0])
			if err != nil {
				return cmdutil.Exit("building report", err)
			}
			data, err := report.YAML()
			if err != nil {
				return cmdutil.Exit("building report", err)
			}
			_, err = c.OutOrStdout().Write(data)
			return err
		},
	}
}

func newReportDiffCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "diff OLD NEW",
		Short: "Compare two staging reports",
		Long: `Show the differences between two staging reports: the top-level
entries added, removed or changed, followed by a field-level diff.`,
		Args: cobra.ExactArgs(2),
		RunE: func(c *cobra.Command, args []string) error {
			from, err := loadReport(args[0])
			if err != nil {
				return cmdutil.Exit("reading report", err)
			}
			to, err := loadReport(args[1])
			if err != nil {
				return cmdutil.Exit("reading report", err)
			}

			changes := staging.Compare(from, to)
			if changes.Empty() {
				fmt.Fprintln(c.OutOrStdout(), output.FormatCheckmark("No differences"))
				return nil
			}
			fmt.Fprint(c.OutOrStdout(), output.RenderChangeSummary(changes))

			fromYAML, err := from.YAML()
			if err != nil {
				return cmdutil.Exit("comparing reports", err)
			}
			toYAML, err := to.YAML()
			if err != nil {
				return cmdutil.Exit("comparing reports", err)
			}
			diff, err := output.DiffYAML(args[0], fromYAML, args[1], toYAML, output.IsTTY())
			if err != nil {
				return cmdutil.Exit("comparing reports", err)
			}
			fmt.Fprintln(c.OutOrStdout())
			fmt.Fprint(c.OutOrStdout(), output.IndentDiff(diff, "  "))
			return nil
		},
	}
}

// loadReport reads a report, mapping a missing file to ErrNotFound.
func loadReport(path string) (*staging.Report, error) {
	report, err := staging.LoadReport(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, oerrors.Wrap(oerrors.ErrNotFound, "report "+path)
		}
		return nil, err
	}
	return report, nil
}
