package loader

import (
	"fmt"
	"path"
	"path/filepath"
)

// Kind is how a resolved module is stored.
type Kind int

const (
	// SourceFile is a loose source module file.
	SourceFile Kind = iota + 1

	// PackageDirectory is a directory holding a package initializer.
	PackageDirectory

	// ExtensionBinary is a compiled native-extension binary.
	ExtensionBinary

	// ArchivedEntry is a module or package stored inside a zip archive.
	ArchivedEntry
)

// String returns the kind name used in output.
func (k Kind) String() string {
	switch k {
	case SourceFile:
		return "source"
	case PackageDirectory:
		return "package"
	case ExtensionBinary:
		return "extension"
	case ArchivedEntry:
		return "archived"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	for _, candidate := range []Kind{SourceFile, PackageDirectory, ExtensionBinary, ArchivedEntry} {
		if candidate.String() == string(text) {
			*k = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown module kind %q", text)
}

// ArchiveLocation points at a member inside a zip archive.
type ArchiveLocation struct {
	// Archive is the zip file path.
	Archive string `json:"archive"`

	// Member is the slash-separated member path. For packages it is the
	// package directory (without trailing slash); for modules the file member.
	Member string `json:"member"`

	// Prefix is the search-path prefix inside the archive that Member lives under.
	Prefix string `json:"prefix,omitempty"`

	// IsPackage reports whether Member is a package directory.
	IsPackage bool `json:"isPackage"`
}

// String returns "archive/member".
func (l ArchiveLocation) String() string {
	return path.Join(l.Archive, l.Member)
}

// ResolvedModule is the result of classifying a module name against a search path.
// It is computed fresh for every lookup and never cached.
type ResolvedModule struct {
	// Name is the module name that was looked up.
	Name string `json:"name"`

	// Kind is how the module is stored.
	Kind Kind `json:"kind"`

	// Path is the filesystem location for SourceFile, PackageDirectory and
	// ExtensionBinary. For PackageDirectory it is the directory itself.
	Path string `json:"path,omitempty"`

	// Archive is set for ArchivedEntry.
	Archive *ArchiveLocation `json:"archive,omitempty"`

	// Entry is the search-path entry that matched.
	Entry string `json:"entry"`
}

// Location returns a printable location for the module.
func (m *ResolvedModule) Location() string {
	if m.Archive != nil {
		return m.Archive.String()
	}
	return m.Path
}

// IsPackage reports whether the module is a package, loose or archived.
func (m *ResolvedModule) IsPackage() bool {
	if m.Kind == PackageDirectory {
		return true
	}
	return m.Archive != nil && m.Archive.IsPackage
}

// OutputName is the top-level entry name the module occupies once staged.
func (m *ResolvedModule) OutputName() string {
	if m.Archive != nil {
		return path.Base(m.Archive.Member)
	}
	return filepath.Base(m.Path)
}
