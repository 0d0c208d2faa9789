package copier

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// copyFile copies src to dst, keeping the permission bits and modification
// time. dst must not exist.
func copyFile(src, dst string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%s is not a regular file", src)
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, info.Mode().Perm())
	if err != nil {
		return err
	}
	_, err = io.Copy(out, in)
	if closeErr := out.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	if err != nil {
		return err
	}

	// umask may have narrowed the mode on create.
	if err := os.Chmod(dst, info.Mode().Perm()); err != nil {
		return err
	}
	return os.Chtimes(dst, info.ModTime(), info.ModTime())
}

// copyTree copies the directory src to dst, which must not exist. Symbolic
// links are followed; a link back to a directory being copied is an error.
// skip is called with slash-separated paths relative to src.
func copyTree(src, dst string, skip func(rel string, isDir bool) bool) error {
	return copyTreeVisiting(src, dst, skip, map[string]bool{})
}

// copyTreeVisiting copies src to dst. active holds the real paths of the
// directories whose copy is in progress.
func copyTreeVisiting(src, dst string, skip func(rel string, isDir bool) bool, active map[string]bool) error {
	real, err := filepath.EvalSymlinks(src)
	if err != nil {
		return err
	}
	if real, err = filepath.Abs(real); err != nil {
		return err
	}
	if active[real] {
		return fmt.Errorf("symbolic link cycle at %s", src)
	}
	active[real] = true
	defer delete(active, real)

	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	if err := os.Mkdir(dst, info.Mode().Perm()|0o700); err != nil {
		return err
	}

	return filepath.WalkDir(src, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if p == src {
			return nil
		}
		rel, err := filepath.Rel(src, p)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		isDir := d.IsDir()
		if d.Type()&fs.ModeSymlink != 0 {
			linked, err := os.Stat(p)
			if err != nil {
				return err
			}
			if linked.IsDir() {
				if skip != nil && skip(filepath.ToSlash(rel), true) {
					return nil
				}
				return copyTreeVisiting(p, target, func(sub string, dir bool) bool {
					return skip != nil && skip(filepath.ToSlash(rel)+"/"+sub, dir)
				}, active)
			}
		}

		if skip != nil && skip(filepath.ToSlash(rel), isDir) {
			if isDir {
				return filepath.SkipDir
			}
			return nil
		}

		if isDir {
			dirInfo, err := d.Info()
			if err != nil {
				return err
			}
			return os.Mkdir(target, dirInfo.Mode().Perm()|0o700)
		}
		return copyFile(p, target)
	})
}
