// Package copier stages a single module into a destination directory.
package copier

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/opmodel/stager/internal/archive"
	"github.com/opmodel/stager/internal/compat"
	"github.com/opmodel/stager/internal/loader"
	"github.com/opmodel/stager/internal/output"
	"github.com/opmodel/stager/internal/searchpath"
)

// Options configures a ModuleCopier.
type Options struct {
	// SearchPath is where modules are looked up.
	SearchPath searchpath.SearchPath

	// Checker rejects incompatible extension binaries. Required.
	Checker *compat.Checker

	// Conventions describe the module layout. Zero value means loader.DefaultConventions().
	Conventions loader.Conventions

	// Exclude lists glob patterns left out of copied packages.
	// Nil means DefaultExclude.
	Exclude []string
}

// ModuleCopier resolves a module and writes it into a destination directory.
type ModuleCopier struct {
	path       searchpath.SearchPath
	checker    *compat.Checker
	classifier *loader.Classifier
	exclude    *Excluder
}

// New creates a ModuleCopier.
func New(opts Options) (*ModuleCopier, error) {
	if opts.Checker == nil {
		return nil, errors.New("copier: compatibility checker is required")
	}
	conv := opts.Conventions
	if conv.InitName == "" {
		conv = loader.DefaultConventions()
	}
	patterns := opts.Exclude
	if patterns == nil {
		patterns = DefaultExclude
	}
	exclude, err := NewExcluder(patterns)
	if err != nil {
		return nil, err
	}
	return &ModuleCopier{
		path:       opts.SearchPath,
		checker:    opts.Checker,
		classifier: loader.NewClassifier(conv),
		exclude:    exclude,
	}, nil
}

// Resolve classifies name without copying anything.
func (c *ModuleCopier) Resolve(name string) (*loader.ResolvedModule, error) {
	return c.classifier.Resolve(name, c.path)
}

// Copy resolves name and writes it into destDir. Extension binaries, standalone
// or inside a package, are checked before anything is written. If writing fails
// part way, whatever was written for this module is removed again.
func (c *ModuleCopier) Copy(name, destDir string) (*loader.ResolvedModule, error) {
	mod, err := c.Resolve(name)
	if err != nil {
		return nil, err
	}
	if err := c.copyResolved(mod, destDir); err != nil {
		return mod, err
	}
	return mod, nil
}

func (c *ModuleCopier) copyResolved(mod *loader.ResolvedModule, destDir string) error {
	log := output.ModuleLogger(mod.Name)

	switch mod.Kind {
	case loader.SourceFile:
		target := filepath.Join(destDir, filepath.Base(mod.Path))
		return c.write(target, func() error { return copyFile(mod.Path, target) })

	case loader.ExtensionBinary:
		if err := c.checker.Check(mod.Name, mod.Path); err != nil {
			return err
		}
		target := filepath.Join(destDir, filepath.Base(mod.Path))
		return c.write(target, func() error { return copyFile(mod.Path, target) })

	case loader.PackageDirectory:
		if err := c.checker.CheckTree(mod.Name, mod.Path); err != nil {
			return err
		}
		target := filepath.Join(destDir, filepath.Base(mod.Path))
		log.Debug("copying package tree", "from", mod.Path, "to", target)
		return c.write(target, func() error { return copyTree(mod.Path, target, c.exclude.Match) })

	case loader.ArchivedEntry:
		loc := mod.Archive
		if !loc.IsPackage {
			target := filepath.Join(destDir, filepath.Base(filepath.FromSlash(loc.Member)))
			return c.write(target, func() error {
				_, err := archive.ExtractFile(loc.Archive, loc.Member, destDir)
				return err
			})
		}
		target := filepath.Join(destDir, filepath.Base(filepath.FromSlash(loc.Member)))
		log.Debug("extracting package", "archive", loc.Archive, "member", loc.Member)
		return c.write(target, func() error {
			if _, err := archive.ExtractPackage(loc.Archive, loc.Member, destDir, c.exclude.Match); err != nil {
				return err
			}
			// Binaries are inert inside the archive but loadable once extracted.
			return c.checker.CheckTree(mod.Name, target)
		})

	default:
		return fmt.Errorf("module %s: unknown kind %s", mod.Name, mod.Kind)
	}
}

// write runs fn, which creates target. target must not exist beforehand; on
// failure anything fn created at target is removed.
func (c *ModuleCopier) write(target string, fn func() error) error {
	if _, err := os.Lstat(target); err == nil {
		return fmt.Errorf("%s: %w", target, fs.ErrExist)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	if err := fn(); err != nil {
		if rmErr := os.RemoveAll(target); rmErr != nil {
			output.Warn("could not remove partial output", "path", target, "err", rmErr)
		}
		return err
	}
	return nil
}
