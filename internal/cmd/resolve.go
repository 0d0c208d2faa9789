package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/opmodel/stager/internal/cmdtypes"
	"github.com/opmodel/stager/internal/cmdutil"
	"github.com/opmodel/stager/internal/loader"
	"github.com/opmodel/stager/internal/output"
	"github.com/opmodel/stager/internal/staging"
)

type resolveOptions struct {
	search cmdutil.SearchFlags
	output cmdutil.OutputFlags
}

// NewResolveCmd creates the resolve command.
func NewResolveCmd(cfg *cmdtypes.GlobalConfig) *cobra.Command {
	opts := &resolveOptions{}

	c := &cobra.Command{
		Use:   "resolve NAME...",
		Short: "Show where modules would be staged from",
		Long: `Look up each module on the search path and print how it is stored and
where it was found, without copying anything.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			return runResolve(c, cfg, opts, args)
		},
	}

	opts.search.AddTo(c)
	opts.output.AddTo(c)

	return c
}

func runResolve(c *cobra.Command, cfg *cmdtypes.GlobalConfig, opts *resolveOptions, names []string) error {
	format, err := opts.output.Parse()
	if err != nil {
		return cmdutil.Exit("resolve", err)
	}

	env, err := cmdutil.Prepare(c.Context(), cfg, cmdutil.ConfigFlags(&opts.search, nil, ""), true)
	if err != nil {
		return cmdutil.Exit("preparing resolve", err)
	}

	mods, err := staging.Resolve(names, env.SearchPath, loader.Conventions{})
	if err != nil {
		return cmdutil.Exit("resolve failed", err)
	}

	if format != output.FormatTable {
		if err := output.WriteStructured(c.OutOrStdout(), format, mods); err != nil {
			return cmdutil.Exit("writing output", err)
		}
		return nil
	}

	tbl := output.NewTable("NAME", "KIND", "LOCATION")
	for _, m := range mods {
		tbl.Row(m.Name, m.Kind.String(), m.Location())
	}
	fmt.Fprintln(c.OutOrStdout(), tbl.String())
	return nil
}
