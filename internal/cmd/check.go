package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/opmodel/stager/internal/cmdtypes"
	"github.com/opmodel/stager/internal/cmdutil"
	"github.com/opmodel/stager/internal/compat"
	oerrors "github.com/opmodel/stager/internal/errors"
	"github.com/opmodel/stager/internal/loader"
	"github.com/opmodel/stager/internal/output"
)

type checkOptions struct {
	target      cmdutil.TargetFlags
	interpreter string
}

// NewCheckCmd creates the check command.
func NewCheckCmd(cfg *cmdtypes.GlobalConfig) *cobra.Command {
	opts := &checkOptions{}

	c := &cobra.Command{
		Use:   "check PATH...",
		Short: "Check extension binaries against the target runtime",
		Long: `Check native extension binaries, or every binary under a package
directory, against the target runtime. Files that are not extension
binaries always pass.

All paths are checked; the command fails if any of them is rejected.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			return runCheck(c, cfg, opts, args)
		},
	}

	opts.target.AddTo(c)
	c.Flags().StringVar(&opts.interpreter, "interpreter", "",
		"Interpreter whose version untagged binaries are assumed to target")

	return c
}

func runCheck(c *cobra.Command, cfg *cmdtypes.GlobalConfig, opts *checkOptions, paths []string) error {
	flags := cmdutil.ConfigFlags(&cmdutil.SearchFlags{Interpreter: opts.interpreter}, &opts.target, "")
	env, err := cmdutil.Prepare(c.Context(), cfg, flags, false)
	if err != nil {
		return cmdutil.Exit("preparing check", err)
	}

	checker := compat.NewChecker(env.Target, env.HostVersion, loader.DefaultConventions())

	var firstErr error
	for _, p := range paths {
		err := checkPath(checker, p)
		if err == nil {
			fmt.Fprintln(c.OutOrStdout(), output.FormatCheckmark(p))
			continue
		}
		var incompatible *oerrors.IncompatibilityError
		if !errors.As(err, &incompatible) {
			return cmdutil.Exit("check failed", err)
		}
		cmdutil.PrintError("check failed", err)
		if firstErr == nil {
			firstErr = err
		}
	}

	if firstErr != nil {
		return &cmdtypes.ExitError{Err: firstErr, Code: cmdtypes.ExitIncompatible, Printed: true}
	}
	return nil
}

func checkPath(checker *compat.Checker, p string) error {
	info, err := os.Stat(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return oerrors.Wrap(oerrors.ErrNotFound, p)
		}
		return err
	}
	module := loader.ModuleNameOf(filepath.Base(p))
	if info.IsDir() {
		return checker.CheckTree(module, p)
	}
	return checker.Check(module, p)
}
