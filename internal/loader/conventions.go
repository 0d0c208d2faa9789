package loader

import (
	"path"
	"slices"
	"strings"
)

// Conventions describes how modules are laid out on disk for the runtime
// being packaged.
type Conventions struct {
	// InitName is the package-initializer base name, without suffix.
	InitName string

	// SourceSuffixes are suffixes of plain source modules.
	SourceSuffixes []string

	// ExtensionSuffixes are suffixes of compiled native-extension binaries.
	// A binary may carry a tag between the module name and the suffix,
	// as in "name.cp38-win_amd64.pyd".
	ExtensionSuffixes []string

	// BytecodeSuffixes are suffixes of compiled bytecode files.
	BytecodeSuffixes []string

	// CacheDirs are directory names holding bytecode caches.
	CacheDirs []string
}

// DefaultConventions returns the layout used by CPython.
func DefaultConventions() Conventions {
	return Conventions{
		InitName:          "__init__",
		SourceSuffixes:    []string{".py"},
		ExtensionSuffixes: []string{".pyd", ".so"},
		BytecodeSuffixes:  []string{".pyc", ".pyo"},
		CacheDirs:         []string{"__pycache__"},
	}
}

// ExtensionSuffix returns the extension-binary suffix name ends with, or "".
func (c Conventions) ExtensionSuffix(name string) string {
	for _, s := range c.ExtensionSuffixes {
		if strings.HasSuffix(name, s) {
			return s
		}
	}
	return ""
}

// IsBytecode reports whether a file name is compiled bytecode.
func (c Conventions) IsBytecode(name string) bool {
	return slices.ContainsFunc(c.BytecodeSuffixes, func(s string) bool {
		return strings.HasSuffix(name, s)
	})
}

// IsCacheDir reports whether a directory name holds a bytecode cache.
func (c Conventions) IsCacheDir(name string) bool {
	return slices.Contains(c.CacheDirs, name)
}

// ExtensionTag splits an extension binary file name for module name into its
// tag and suffix. For "fast.cp38-win_amd64.pyd" it returns ("cp38-win_amd64", ".pyd", true);
// for "fast.pyd" it returns ("", ".pyd", true).
func (c Conventions) ExtensionTag(module, fileName string) (tag, suffix string, ok bool) {
	if !strings.HasPrefix(fileName, module+".") {
		return "", "", false
	}
	for _, s := range c.ExtensionSuffixes {
		if !strings.HasSuffix(fileName, s) {
			continue
		}
		middle := strings.TrimSuffix(strings.TrimPrefix(fileName, module), s)
		if middle == "" {
			return "", s, true
		}
		// middle is ".<tag>"
		tag = strings.TrimPrefix(middle, ".")
		if tag == "" || strings.Contains(tag, ".") || strings.Contains(tag, "/") {
			return "", "", false
		}
		return tag, s, true
	}
	return "", "", false
}

// ModuleNameOf returns the module name of an extension file name, i.e. the
// part before the first dot.
func ModuleNameOf(fileName string) string {
	base := path.Base(strings.ReplaceAll(fileName, "\\", "/"))
	if i := strings.IndexByte(base, '.'); i > 0 {
		return base[:i]
	}
	return base
}

// initFileNames lists initializer file names accepted inside a package
// directory, in lookup order. Bytecode initializers are not accepted since
// bytecode is left out of package copies.
func (c Conventions) initFileNames() []string {
	var names []string
	for _, s := range c.SourceSuffixes {
		names = append(names, c.InitName+s)
	}
	for _, s := range c.ExtensionSuffixes {
		names = append(names, c.InitName+s)
	}
	return names
}

// archiveSuffixes lists module suffixes loadable from inside an archive, in lookup order.
func (c Conventions) archiveSuffixes() []string {
	return append(slices.Clone(c.SourceSuffixes), c.BytecodeSuffixes...)
}
