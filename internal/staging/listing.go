package staging

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// EntryType says whether a staged entry is a single file or a directory tree.
type EntryType string

const (
	EntryFile EntryType = "file"
	EntryDir  EntryType = "dir"
)

// Entry is a top-level item of a staged directory. It is all a bundle
// installer needs to know: how the entry got there is not recorded.
type Entry struct {
	Name string    `json:"name"`
	Type EntryType `json:"type"`
}

// List returns the top-level entries of dest sorted by name.
func List(dest string) ([]Entry, error) {
	dirEntries, err := os.ReadDir(dest)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", dest, err)
	}

	entries := make([]Entry, 0, len(dirEntries))
	for _, d := range dirEntries {
		t := EntryFile
		if d.IsDir() {
			t = EntryDir
		} else if d.Type()&os.ModeSymlink != 0 {
			if info, err := os.Stat(filepath.Join(dest, d.Name())); err == nil && info.IsDir() {
				t = EntryDir
			}
		}
		entries = append(entries, Entry{Name: d.Name(), Type: t})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}
