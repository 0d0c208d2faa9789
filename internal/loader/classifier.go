// Package loader finds modules on a search path and classifies how they are stored.
package loader

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/opmodel/stager/internal/archive"
	oerrors "github.com/opmodel/stager/internal/errors"
	"github.com/opmodel/stager/internal/output"
	"github.com/opmodel/stager/internal/searchpath"
)

// Classifier resolves module names against a search path.
type Classifier struct {
	conv Conventions
}

// NewClassifier creates a classifier for the given layout conventions.
func NewClassifier(conv Conventions) *Classifier {
	return &Classifier{conv: conv}
}

// ValidateName checks that name is a bare top-level module name.
func ValidateName(name string) error {
	if name == "" {
		return oerrors.NewValidationError("module name is empty", "", "")
	}
	if strings.ContainsAny(name, `/\.`) || strings.ContainsRune(name, os.PathSeparator) {
		return oerrors.NewValidationError(
			fmt.Sprintf("invalid module name %q", name), "",
			"Only top-level module names are accepted; packages are always staged whole")
	}
	return nil
}

// Resolve finds the first search-path entry that provides name and classifies it.
// Entries are consulted strictly in order; the first match wins.
func (c *Classifier) Resolve(name string, path searchpath.SearchPath) (*ResolvedModule, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}

	for _, entry := range path {
		var (
			mod *ResolvedModule
			err error
		)
		if entry.IsArchive() {
			mod, err = c.resolveInArchive(name, entry)
		} else {
			mod, err = c.resolveInDir(name, entry)
		}
		if err != nil {
			return nil, err
		}
		if mod != nil {
			output.Debug("resolved module",
				"name", name,
				"kind", mod.Kind,
				"location", mod.Location(),
				"entry", entry.Path,
			)
			return mod, nil
		}
	}

	return nil, &oerrors.NotFoundError{Name: name, SearchPath: path.Strings()}
}

// resolveInDir applies the classification rules to a directory entry:
// package directory, then extension binary, then source file.
func (c *Classifier) resolveInDir(name string, entry searchpath.Entry) (*ResolvedModule, error) {
	dir := entry.Path
	if dir == "" {
		dir = "."
	}

	// 1. Package directory
	pkgDir := filepath.Join(dir, name)
	if isDir(pkgDir) {
		for _, initName := range c.conv.initFileNames() {
			if isFile(filepath.Join(pkgDir, initName)) {
				return &ResolvedModule{Name: name, Kind: PackageDirectory, Path: pkgDir, Entry: entry.Path}, nil
			}
		}
		// A directory without an initializer is a namespace portion; keep looking.
	}

	// 2. Extension binary
	ext, err := c.findExtension(dir, name)
	if err != nil {
		return nil, err
	}
	if ext != "" {
		return &ResolvedModule{Name: name, Kind: ExtensionBinary, Path: ext, Entry: entry.Path}, nil
	}

	// 3. Source file (bytecode-only modules are accepted as a last resort)
	for _, suffix := range c.conv.archiveSuffixes() {
		p := filepath.Join(dir, name+suffix)
		if isFile(p) {
			return &ResolvedModule{Name: name, Kind: SourceFile, Path: p, Entry: entry.Path}, nil
		}
	}

	return nil, nil
}

// findExtension returns the extension binary for name in dir, or "".
// Candidates are ranked by suffix order, then tagged before untagged, then by name.
func (c *Classifier) findExtension(dir, name string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) || isNotDir(dir) {
			return "", nil
		}
		return "", fmt.Errorf("reading search path entry %s: %w", dir, err)
	}

	type candidate struct {
		file   string
		rank   int
		tagged bool
	}
	var found []candidate
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		tag, suffix, ok := c.conv.ExtensionTag(name, e.Name())
		if !ok {
			continue
		}
		found = append(found, candidate{
			file:   e.Name(),
			rank:   slices.Index(c.conv.ExtensionSuffixes, suffix),
			tagged: tag != "",
		})
	}
	if len(found) == 0 {
		return "", nil
	}

	slices.SortFunc(found, func(a, b candidate) int {
		if a.rank != b.rank {
			return a.rank - b.rank
		}
		if a.tagged != b.tagged {
			if a.tagged {
				return -1
			}
			return 1
		}
		return strings.Compare(a.file, b.file)
	})
	return filepath.Join(dir, found[0].file), nil
}

// resolveInArchive looks for name inside a zip entry using the same
// package-before-module rule. Archives never provide extension binaries, and
// an archived package needs a source initializer.
func (c *Classifier) resolveInArchive(name string, entry searchpath.Entry) (*ResolvedModule, error) {
	index, err := archive.Index(entry.Archive)
	if err != nil {
		return nil, err
	}

	base := entry.Prefix
	if base != "" {
		base = strings.TrimSuffix(base, "/") + "/"
	}

	for _, suffix := range c.conv.SourceSuffixes {
		if index.Has(base + name + "/" + c.conv.InitName + suffix) {
			return &ResolvedModule{
				Name: name,
				Kind: ArchivedEntry,
				Archive: &ArchiveLocation{
					Archive:   entry.Archive,
					Member:    base + name,
					Prefix:    entry.Prefix,
					IsPackage: true,
				},
				Entry: entry.Path,
			}, nil
		}
	}

	for _, suffix := range c.conv.archiveSuffixes() {
		member := base + name + suffix
		if index.Has(member) {
			return &ResolvedModule{
				Name: name,
				Kind: ArchivedEntry,
				Archive: &ArchiveLocation{
					Archive: entry.Archive,
					Member:  member,
					Prefix:  entry.Prefix,
				},
				Entry: entry.Path,
			}, nil
		}
	}

	return nil, nil
}

func isDir(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.IsDir()
}

func isFile(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.Mode().IsRegular()
}

func isNotDir(p string) bool {
	info, err := os.Stat(p)
	return err == nil && !info.IsDir()
}
