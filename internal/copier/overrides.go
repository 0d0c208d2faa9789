package copier

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/opmodel/stager/internal/output"
)

// CopyOverrides copies every top-level entry of srcDir into destDir, unless
// destDir already has an entry of that name. It runs before staging so that a
// module provided here is seen as already present and is not looked up.
// It returns the names copied, sorted.
func CopyOverrides(srcDir, destDir string, exclude *Excluder) ([]string, error) {
	entries, err := os.ReadDir(srcDir)
	if err != nil {
		return nil, fmt.Errorf("reading overrides directory %s: %w", srcDir, err)
	}

	var copied []string
	for _, e := range entries {
		src := filepath.Join(srcDir, e.Name())
		dst := filepath.Join(destDir, e.Name())

		if _, err := os.Lstat(dst); err == nil {
			output.Debug("override already present", "name", e.Name())
			continue
		} else if !errors.Is(err, fs.ErrNotExist) {
			return copied, err
		}
		if exclude.Match(e.Name(), e.IsDir()) {
			continue
		}

		info, err := os.Stat(src)
		if err != nil {
			return copied, err
		}
		if info.IsDir() {
			err = copyTree(src, dst, exclude.Match)
		} else {
			err = copyFile(src, dst)
		}
		if err != nil {
			_ = os.RemoveAll(dst)
			return copied, fmt.Errorf("copying override %s: %w", e.Name(), err)
		}
		copied = append(copied, e.Name())
	}

	sort.Strings(copied)
	return copied, nil
}
