package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/opmodel/stager/internal/cmdtypes"
	"github.com/opmodel/stager/internal/cmdutil"
	"github.com/opmodel/stager/internal/copier"
	"github.com/opmodel/stager/internal/output"
	"github.com/opmodel/stager/internal/staging"
)

// stageOptions holds the flags for the stage command.
type stageOptions struct {
	search    cmdutil.SearchFlags
	target    cmdutil.TargetFlags
	dest      string
	overrides string
	report    string
}

// NewStageCmd creates the stage command.
func NewStageCmd(cfg *cmdtypes.GlobalConfig) *cobra.Command {
	opts := &stageOptions{}

	c := &cobra.Command{
		Use:   "stage [NAME...]",
		Short: "Copy modules into a bundle directory",
		Long: `Copy the named modules into a bundle directory.

Each name is looked up on the search path in order and the first match is
copied: a package directory as a whole tree, a native extension binary after
a compatibility check against the target runtime, a source file, or an entry
extracted from a zip archive on the path.

Entries of the override directory are copied first. A name whose entry is
already in the destination is skipped without being looked up, so a bundle
can be staged repeatedly. With no names, a zero-length placeholder file is
written so the bundle is never empty.`,
		Example: `  # Stage two modules for a 64-bit Windows bundle
  stager stage requests six --dest build/lib --path venv/Lib/site-packages

  # Use the import path of an interpreter and write a report
  stager stage yaml --dest build/lib --interpreter python3.8 --report stage.yaml`,
		RunE: func(c *cobra.Command, args []string) error {
			return runStage(c, cfg, opts, args)
		},
	}

	opts.search.AddTo(c)
	opts.target.AddTo(c)
	c.Flags().StringVarP(&opts.dest, "dest", "d", "", "Destination bundle directory (must exist)")
	c.Flags().StringVar(&opts.overrides, "overrides", "", "Directory whose entries are copied before staging (env: STAGER_OVERRIDES_DIR)")
	c.Flags().StringVar(&opts.report, "report", "", "Write a staging report to this file")
	_ = c.MarkFlagRequired("dest")

	return c
}

func runStage(c *cobra.Command, cfg *cmdtypes.GlobalConfig, opts *stageOptions, names []string) error {
	ctx := c.Context()

	env, err := cmdutil.Prepare(ctx, cfg, cmdutil.ConfigFlags(&opts.search, &opts.target, opts.overrides), len(names) > 0)
	if err != nil {
		return cmdutil.Exit("preparing stage", err)
	}

	if err := staging.CheckDest(opts.dest); err != nil {
		return cmdutil.Exit("preparing stage", err)
	}
	excluder, err := copier.NewExcluder(env.Settings.Exclude)
	if err != nil {
		return cmdutil.Exit("preparing stage", err)
	}

	overridden := map[string]bool{}
	if dir := env.Settings.OverridesDir; dir != "" {
		copied, err := copier.CopyOverrides(dir, opts.dest, excluder)
		if err != nil {
			return cmdutil.Exit("copying overrides", err)
		}
		for _, name := range copied {
			overridden[name] = true
			output.Info(output.FormatModuleLine(name, "", output.StatusOverridden))
		}
	}

	var result *staging.Result
	err = output.RunWithSpinner(ctx, func() error {
		var stageErr error
		result, stageErr = staging.Stage(ctx, staging.Request{
			Names:       names,
			Dest:        opts.dest,
			Target:      env.Target,
			HostVersion: env.HostVersion,
			SearchPath:  env.SearchPath,
			Exclude:     env.Settings.Exclude,
		})
		return stageErr
	}, output.WithTitle(fmt.Sprintf("Staging %d module(s) for %s", len(names), env.Target)))
	if err != nil {
		if result != nil {
			printModules(result)
		}
		return cmdutil.Exit("staging failed", err)
	}

	printModules(result)

	if opts.report != "" {
		if err := writeReport(result, opts.dest, opts.report); err != nil {
			return cmdutil.Exit("writing report", err)
		}
		output.Debug("report written", "path", opts.report)
	}

	tree, err := stagedTree(opts.dest, result, overridden)
	if err != nil {
		return cmdutil.Exit("listing destination", err)
	}
	fmt.Fprint(c.OutOrStdout(), tree)

	fmt.Fprintln(c.OutOrStdout(), output.FormatCheckmark(
		fmt.Sprintf("Staged %d module(s), skipped %d", result.Staged(), len(result.Modules)-result.Staged())))
	return nil
}

// printModules logs one line per module outcome.
func printModules(result *staging.Result) {
	for _, m := range result.Modules {
		kind := ""
		if m.Outcome == staging.OutcomeStaged {
			kind = m.Kind.String()
		}
		output.Info(output.FormatModuleLine(m.Name, kind, string(m.Outcome)))
	}
}

// stagedTree renders the destination's top-level entries, annotated with
// what this run did to each.
func stagedTree(dest string, result *staging.Result, overridden map[string]bool) (string, error) {
	entries, err := staging.List(dest)
	if err != nil {
		return "", err
	}

	produced := make(map[string]string, len(result.Modules))
	for _, m := range result.Modules {
		if m.Output != "" {
			produced[m.Output] = fmt.Sprintf("%s (%s)", output.StatusStaged, m.Kind)
		}
	}

	files := make(map[string]string, len(entries))
	for _, e := range entries {
		key := e.Name
		if e.Type == staging.EntryDir {
			key += "/"
		}
		switch {
		case produced[e.Name] != "":
			files[key] = produced[e.Name]
		case overridden[e.Name]:
			files[key] = output.StatusOverridden
		case result.Placeholder && e.Name == staging.PlaceholderName:
			files[key] = "placeholder"
		default:
			files[key] = ""
		}
	}
	return output.RenderFileTree(filepath.Base(filepath.Clean(dest)), files), nil
}

func writeReport(result *staging.Result, dest, path string) error {
	report, err := staging.BuildReport(result, dest)
	if err != nil {
		return err
	}
	data, err := report.YAML()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing report %s: %w", path, err)
	}
	return nil
}
