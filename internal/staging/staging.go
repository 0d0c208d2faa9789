// Package staging copies a set of modules into a bundle directory.
//
// A staging run owns its destination for its whole duration. The set of
// entries already present is read once at the start and not revalidated, so
// runs against the same destination must not overlap.
package staging

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/opmodel/stager/internal/compat"
	"github.com/opmodel/stager/internal/copier"
	oerrors "github.com/opmodel/stager/internal/errors"
	"github.com/opmodel/stager/internal/loader"
	"github.com/opmodel/stager/internal/output"
	"github.com/opmodel/stager/internal/searchpath"
)

// PlaceholderName is the marker file written when no modules are requested.
const PlaceholderName = "placeholder"

// Request describes one staging run.
type Request struct {
	// Names are the module names to stage, in order.
	Names []string

	// Dest is the destination directory. It must already exist.
	Dest string

	// Target is the runtime the bundle is staged for.
	Target compat.TargetRuntime

	// HostVersion is the runtime version untagged binaries were built for.
	HostVersion string

	// SearchPath is where modules are looked up.
	SearchPath searchpath.SearchPath

	// Exclude lists glob patterns left out of copied packages. Nil means the defaults.
	Exclude []string

	// Conventions describe the module layout. Zero value means the defaults.
	Conventions loader.Conventions
}

// Outcome is what happened to one requested module.
type Outcome string

const (
	// OutcomeStaged means the module was copied into the destination.
	OutcomeStaged Outcome = "staged"

	// OutcomeSkipped means the destination already held an entry of that name.
	OutcomeSkipped Outcome = "skipped"
)

// ModuleResult records the outcome for one requested name.
type ModuleResult struct {
	Name    string      `json:"name"`
	Outcome Outcome     `json:"outcome"`
	Kind    loader.Kind `json:"kind,omitempty"`
	Source  string      `json:"source,omitempty"`
	Output  string      `json:"output,omitempty"`
}

// Result summarizes a staging run.
type Result struct {
	Dest        string               `json:"dest"`
	Target      compat.TargetRuntime `json:"target"`
	Modules     []ModuleResult       `json:"modules"`
	Placeholder bool                 `json:"placeholder,omitempty"`
}

// Staged returns the number of modules copied in this run.
func (r *Result) Staged() int {
	n := 0
	for _, m := range r.Modules {
		if m.Outcome == OutcomeStaged {
			n++
		}
	}
	return n
}

// Stage copies every requested module into req.Dest in input order.
//
// Names already present in the destination when the run starts, by base name
// up to the first dot, are skipped without being looked up. The first error
// ends the run; the returned Result lists what was done before it.
func Stage(ctx context.Context, req Request) (*Result, error) {
	if err := CheckDest(req.Dest); err != nil {
		return nil, err
	}

	result := &Result{Dest: req.Dest, Target: req.Target}

	if len(req.Names) == 0 {
		if err := writePlaceholder(req.Dest); err != nil {
			return nil, err
		}
		result.Placeholder = true
		output.Debug("no modules requested, wrote placeholder", "dest", req.Dest)
		return result, nil
	}

	present, err := snapshot(req.Dest)
	if err != nil {
		return nil, err
	}

	conv := req.Conventions
	if conv.InitName == "" {
		conv = loader.DefaultConventions()
	}
	mc, err := copier.New(copier.Options{
		SearchPath:  req.SearchPath,
		Checker:     compat.NewChecker(req.Target, req.HostVersion, conv),
		Conventions: conv,
		Exclude:     req.Exclude,
	})
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(req.Names))
	for _, name := range req.Names {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if seen[name] {
			continue
		}
		seen[name] = true

		log := output.ModuleLogger(name)
		if present[name] {
			log.Info("already staged, skipping")
			result.Modules = append(result.Modules, ModuleResult{Name: name, Outcome: OutcomeSkipped})
			continue
		}

		mod, err := mc.Copy(name, req.Dest)
		if err != nil {
			return result, err
		}
		log.Info("staged", "kind", mod.Kind, "from", mod.Location())
		result.Modules = append(result.Modules, ModuleResult{
			Name:    name,
			Outcome: OutcomeStaged,
			Kind:    mod.Kind,
			Source:  mod.Location(),
			Output:  mod.OutputName(),
		})
	}

	return result, nil
}

// Resolve classifies each name against path without copying anything.
func Resolve(names []string, path searchpath.SearchPath, conv loader.Conventions) ([]*loader.ResolvedModule, error) {
	if conv.InitName == "" {
		conv = loader.DefaultConventions()
	}
	c := loader.NewClassifier(conv)
	mods := make([]*loader.ResolvedModule, 0, len(names))
	for _, name := range names {
		mod, err := c.Resolve(name, path)
		if err != nil {
			return mods, err
		}
		mods = append(mods, mod)
	}
	return mods, nil
}

// CheckDest verifies that dest exists and is a directory.
func CheckDest(dest string) error {
	info, err := os.Stat(dest)
	if errors.Is(err, fs.ErrPermission) {
		return oerrors.NewPermissionError(
			fmt.Sprintf("cannot access destination %s", dest),
			map[string]string{"path": dest},
			"Check the permissions of the destination and its parent directories")
	}
	if err != nil {
		return fmt.Errorf("destination %s: %w", dest, err)
	}
	if !info.IsDir() {
		return oerrors.NewValidationError(
			fmt.Sprintf("destination %s is not a directory", dest), dest,
			"Create the destination directory before staging")
	}
	return nil
}

// snapshot returns the names of the entries in dest, each cut at its first dot.
func snapshot(dest string) (map[string]bool, error) {
	entries, err := os.ReadDir(dest)
	if err != nil {
		return nil, fmt.Errorf("reading destination %s: %w", dest, err)
	}
	present := make(map[string]bool, len(entries))
	for _, e := range entries {
		present[loader.ModuleNameOf(e.Name())] = true
	}
	return present, nil
}

func writePlaceholder(dest string) error {
	f, err := os.OpenFile(filepath.Join(dest, PlaceholderName), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if errors.Is(err, fs.ErrExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("writing placeholder: %w", err)
	}
	return f.Close()
}
