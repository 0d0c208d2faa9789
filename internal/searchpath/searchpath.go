// Package searchpath models the ordered list of locations that modules are looked up in.
//
// A search path is an explicit value: nothing in the staging engine reads the
// process environment on its own. Callers build one with Parse, FromEnv or
// FromInterpreter and pass it down.
package searchpath

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zip"
)

// EnvVar is the environment variable holding the ambient module path list.
const EnvVar = "PYTHONPATH"

// Entry is one location in a SearchPath.
type Entry struct {
	// Path is the raw entry as given by the caller.
	Path string

	// Archive is the zip container path when the entry lives inside an archive.
	Archive string

	// Prefix is the slash-separated directory inside Archive that acts as the
	// import root. Empty means the archive root.
	Prefix string
}

// IsArchive reports whether the entry refers to a zip container.
func (e Entry) IsArchive() bool {
	return e.Archive != ""
}

// String returns the raw entry.
func (e Entry) String() string {
	return e.Path
}

// SearchPath is an ordered sequence of entries. Lookup order is slice order.
type SearchPath []Entry

// Strings returns the raw entries, in order.
func (p SearchPath) Strings() []string {
	out := make([]string, len(p))
	for i, e := range p {
		out[i] = e.Path
	}
	return out
}

// Parse classifies each raw location. An empty string means the current directory.
//
// A location is an archive entry when it names a zip file, or when a leading
// part of it names a zip file and the remainder is a directory inside it
// (for example "deps.zip/lib"). Locations that do not exist are kept: they
// never match, which mirrors how the runtime treats stale path entries.
func Parse(raw []string) SearchPath {
	path := make(SearchPath, 0, len(raw))
	for _, r := range raw {
		path = append(path, parseEntry(r))
	}
	return path
}

func parseEntry(raw string) Entry {
	p := raw
	if p == "" {
		p = "."
	}

	info, err := os.Stat(p)
	if err == nil {
		if !info.IsDir() && isZipFile(p) {
			return Entry{Path: raw, Archive: p}
		}
		return Entry{Path: raw}
	}

	// Walk up looking for an archive that contains the remainder as a prefix.
	dir := filepath.Clean(p)
	var inner []string
	for {
		parent := filepath.Dir(dir)
		inner = append([]string{filepath.Base(dir)}, inner...)
		if parent == dir {
			break
		}
		dir = parent

		info, err := os.Stat(dir)
		if err != nil {
			continue
		}
		if !info.IsDir() && isZipFile(dir) {
			return Entry{Path: raw, Archive: dir, Prefix: strings.Join(inner, "/")}
		}
		break
	}

	return Entry{Path: raw}
}

// isZipFile reports whether path is a readable zip container.
func isZipFile(path string) bool {
	r, err := zip.OpenReader(path)
	if err != nil {
		return false
	}
	_ = r.Close()
	return true
}

// FromEnv builds the ambient search path: the current directory followed by
// the entries of PYTHONPATH.
func FromEnv() SearchPath {
	raw := []string{""}
	if env := os.Getenv(EnvVar); env != "" {
		for _, p := range filepath.SplitList(env) {
			if p != "" {
				raw = append(raw, p)
			}
		}
	}
	return Parse(raw)
}

// interpreterScript prints the interpreter's live import path as a JSON list.
const interpreterScript = "import json, sys; print(json.dumps([''] + sys.path))"

// FromInterpreter asks a runtime interpreter for its active import path.
// The current directory is always first, as it is for a script run from it.
func FromInterpreter(ctx context.Context, interpreter string) (SearchPath, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, interpreter, "-c", interpreterScript)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("querying import path from %s: %w: %s", interpreter, err, strings.TrimSpace(stderr.String()))
	}

	raw, err := decodePathList(stdout.Bytes())
	if err != nil {
		return nil, fmt.Errorf("decoding import path from %s: %w", interpreter, err)
	}
	return Parse(dedupe(raw)), nil
}

func decodePathList(data []byte) ([]string, error) {
	var raw []string
	if err := json.Unmarshal(bytes.TrimSpace(data), &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// dedupe drops repeated entries, keeping the first occurrence.
func dedupe(raw []string) []string {
	seen := make(map[string]bool, len(raw))
	out := raw[:0]
	for _, r := range raw {
		if seen[r] {
			continue
		}
		seen[r] = true
		out = append(out, r)
	}
	return out
}
