// Package archive reads modules out of zip containers.
//
// A zip archive has no real directory tree: it is a flat list of member paths.
// A package is therefore every member whose path starts with the package
// directory followed by a slash, regardless of where it appears in the list.
package archive

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zip"

	"github.com/opmodel/stager/internal/output"
)

// MemberIndex is the set of member names in an archive.
type MemberIndex map[string]struct{}

// Has reports whether name is a member of the archive.
func (idx MemberIndex) Has(name string) bool {
	_, ok := idx[name]
	return ok
}

// Index reads the member names of the archive at archivePath.
func Index(archivePath string) (MemberIndex, error) {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, fmt.Errorf("opening archive %s: %w", archivePath, err)
	}
	defer r.Close()

	idx := make(MemberIndex, len(r.File))
	for _, f := range r.File {
		idx[f.Name] = struct{}{}
	}
	return idx, nil
}

// SkipFunc reports whether a member, given as a path relative to the package
// directory, should be left out of an extracted package.
type SkipFunc func(rel string, isDir bool) bool

// ExtractFile extracts the single member to destDir, keeping its base name.
// It returns the path of the written file.
func ExtractFile(archivePath, member, destDir string) (written string, err error) {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return "", fmt.Errorf("opening archive %s: %w", archivePath, err)
	}
	defer func() {
		if closeErr := r.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	for _, f := range r.File {
		if f.Name != member {
			continue
		}
		destPath := filepath.Join(destDir, path.Base(member))
		if err := extractMember(f, destPath); err != nil {
			return "", fmt.Errorf("extracting %s from %s: %w", member, archivePath, err)
		}
		return destPath, nil
	}

	return "", fmt.Errorf("member %s not found in archive %s", member, archivePath)
}

// ExtractPackage extracts every member under pkgDir + "/" into destDir/<base of pkgDir>.
// Leading path components of pkgDir (an archive search-path prefix) are dropped,
// so "lib/requests" lands at destDir/requests. Members are matched by prefix over
// the whole member list; their order in the archive does not matter.
// It returns the path of the package directory written.
func ExtractPackage(archivePath, pkgDir, destDir string, skip SkipFunc) (written string, err error) {
	pkgDir = strings.TrimSuffix(pkgDir, "/")
	if pkgDir == "" {
		return "", fmt.Errorf("empty package directory for archive %s", archivePath)
	}
	prefix := pkgDir + "/"
	pkgName := path.Base(pkgDir)

	absDest, err := filepath.Abs(destDir)
	if err != nil {
		return "", fmt.Errorf("resolving destination directory: %w", err)
	}
	root := filepath.Join(absDest, pkgName)

	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return "", fmt.Errorf("opening archive %s: %w", archivePath, err)
	}
	defer func() {
		if closeErr := r.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	if err := os.MkdirAll(root, 0o755); err != nil {
		return "", fmt.Errorf("creating package directory: %w", err)
	}

	count := 0
	for _, f := range r.File {
		if !strings.HasPrefix(f.Name, prefix) {
			continue
		}
		rel := strings.TrimPrefix(f.Name, prefix)
		if rel == "" {
			continue
		}
		isDir := f.FileInfo().IsDir() || strings.HasSuffix(rel, "/")
		if skip != nil && skip(strings.TrimSuffix(rel, "/"), isDir) {
			continue
		}

		destPath := filepath.Join(root, filepath.FromSlash(rel))

		// Reject members escaping the package directory (zip-slip).
		relPath, relErr := filepath.Rel(root, destPath)
		if relErr != nil || relPath == ".." || strings.HasPrefix(relPath, ".."+string(filepath.Separator)) {
			return "", fmt.Errorf("invalid path in archive %s: %s", archivePath, f.Name)
		}

		if isDir {
			if mkdirErr := os.MkdirAll(destPath, 0o755); mkdirErr != nil {
				return "", fmt.Errorf("creating directory: %w", mkdirErr)
			}
			continue
		}

		if mkdirErr := os.MkdirAll(filepath.Dir(destPath), 0o755); mkdirErr != nil {
			return "", fmt.Errorf("creating parent directory: %w", mkdirErr)
		}
		if extractErr := extractMember(f, destPath); extractErr != nil {
			return "", fmt.Errorf("extracting %s from %s: %w", f.Name, archivePath, extractErr)
		}
		count++
	}

	output.Debug("extracted package from archive",
		"archive", archivePath,
		"package", pkgDir,
		"files", count,
	)

	return root, nil
}

// extractMember writes a single archive member to destPath, restoring its
// mode and modification time.
func extractMember(f *zip.File, destPath string) (err error) {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := rc.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	mode := f.Mode().Perm()
	if mode == 0 {
		mode = 0o644
	}

	destFile, err := os.OpenFile(destPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, mode)
	if err != nil {
		return err
	}

	//nolint:gosec // G110: archives come from the user's own search path
	_, err = io.Copy(destFile, rc)
	if closeErr := destFile.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	if err != nil {
		return err
	}

	if mtime := f.Modified; !mtime.IsZero() {
		if err := os.Chtimes(destPath, mtime, mtime); err != nil {
			return err
		}
	}
	return nil
}
