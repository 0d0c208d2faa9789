package compat

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	oerrors "github.com/opmodel/stager/internal/errors"
	"github.com/opmodel/stager/internal/loader"
	"github.com/opmodel/stager/internal/output"
)

// Checker accepts or rejects extension binaries for a target runtime.
type Checker struct {
	// Target is the runtime being staged for.
	Target TargetRuntime

	// HostVersion is the runtime major.minor the untagged binaries on the
	// search path were built for. Empty means unknown.
	HostVersion string

	// Conventions describe file suffixes and tags.
	Conventions loader.Conventions
}

// NewChecker creates a checker for target.
func NewChecker(target TargetRuntime, hostVersion string, conv loader.Conventions) *Checker {
	return &Checker{
		Target:      target,
		HostVersion: MajorMinor(hostVersion),
		Conventions: conv,
	}
}

// Check inspects a single file. Files that are not extension binaries pass.
// module names the module being staged and is only used in the error.
func (c *Checker) Check(module, path string) error {
	bin, ok := ParseBinary(c.Conventions, path)
	if !ok {
		return nil
	}

	family := c.Target.Family()
	if !family.Accepts(bin.Family) {
		return &oerrors.IncompatibilityError{
			Module:   module,
			Path:     path,
			Mismatch: oerrors.MismatchPlatform,
			Target:   family.DisplayName(),
			Reason:   fmt.Sprintf("built for %s", bin.Family.DisplayName()),
		}
	}

	version := bin.Version
	if version == "" && !bin.StableABI {
		version = c.HostVersion
	}
	target := "Python " + c.Target.Version
	switch {
	case bin.StableABI:
		return &oerrors.IncompatibilityError{
			Module:   module,
			Path:     path,
			Mismatch: oerrors.MismatchVersion,
			Target:   target,
			Reason:   "stable-ABI binaries carry no runtime version",
		}
	case version == "":
		return &oerrors.IncompatibilityError{
			Module:   module,
			Path:     path,
			Mismatch: oerrors.MismatchVersion,
			Target:   target,
			Reason:   "runtime version of the binary is unknown; set the host version",
		}
	case version != c.Target.Version:
		return &oerrors.IncompatibilityError{
			Module:   module,
			Path:     path,
			Mismatch: oerrors.MismatchVersion,
			Target:   target,
			Reason:   "built for Python " + version,
		}
	}

	output.Debug("extension binary accepted", "path", path, "target", c.Target.String())
	return nil
}

// CheckTree checks every file under dir, stopping at the first rejection.
// Symbolic links to directories are followed, as they are when copying.
func (c *Checker) CheckTree(module, dir string) error {
	return c.checkTree(module, dir, map[string]bool{})
}

func (c *Checker) checkTree(module, dir string, active map[string]bool) error {
	real, err := filepath.EvalSymlinks(dir)
	if err != nil {
		return err
	}
	if real, err = filepath.Abs(real); err != nil {
		return err
	}
	if active[real] {
		return fmt.Errorf("symbolic link cycle at %s", dir)
	}
	active[real] = true
	defer delete(active, real)

	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if d.Type()&fs.ModeSymlink != 0 {
			info, err := os.Stat(p)
			if err != nil {
				return err
			}
			if info.IsDir() {
				return c.checkTree(module, p, active)
			}
		}
		return c.Check(module, p)
	})
}
