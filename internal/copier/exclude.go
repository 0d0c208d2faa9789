package copier

import (
	"fmt"
	"path"

	"github.com/gobwas/glob"
)

// DefaultExclude lists the bytecode cache artifacts left out of copied packages.
var DefaultExclude = []string{"*.pyc", "*.pyo", "__pycache__"}

// Excluder matches package-relative paths against exclude patterns.
// A pattern matches either the base name or the whole slash-separated path.
type Excluder struct {
	patterns []glob.Glob
}

// NewExcluder compiles patterns.
func NewExcluder(patterns []string) (*Excluder, error) {
	e := &Excluder{patterns: make([]glob.Glob, 0, len(patterns))}
	for _, p := range patterns {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid exclude pattern %q: %w", p, err)
		}
		e.patterns = append(e.patterns, g)
	}
	return e, nil
}

// Match reports whether rel is excluded.
func (e *Excluder) Match(rel string, _ bool) bool {
	if e == nil {
		return false
	}
	base := path.Base(rel)
	for _, g := range e.patterns {
		if g.Match(base) || g.Match(rel) {
			return true
		}
	}
	return false
}
