package compat

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/opmodel/stager/internal/loader"
)

// Binary is what can be read off an extension binary's file name.
type Binary struct {
	// File is the base file name.
	File string

	// Tag is the platform tag between module name and suffix, if any.
	Tag string

	// Suffix is the extension suffix, e.g. ".pyd".
	Suffix string

	// Family is the platform family the binary was built for.
	Family Family

	// Version is the runtime major.minor the binary was built for, or "" if unknown.
	Version string

	// StableABI reports an "abi3" tag.
	StableABI bool
}

var (
	// cp38-win_amd64, cp310
	shortTagRegex = regexp.MustCompile(`^cp(\d)(\d+)(?:-(.+))?$`)
	// cpython-38-x86_64-linux-gnu, cpython-36m-darwin
	longTagRegex = regexp.MustCompile(`^cpython-(\d)(\d+)[dmu]*(?:-(.+))?$`)
)

// ParseBinary inspects an extension binary file name. It returns false when
// the name is not an extension binary under conv. Any name ending in an
// extension suffix is a binary; a tag that cannot be read leaves the version
// unknown and the family implied by the suffix.
func ParseBinary(conv loader.Conventions, fileName string) (Binary, bool) {
	base := filepath.Base(fileName)
	suffix := conv.ExtensionSuffix(base)
	if suffix == "" {
		return Binary{}, false
	}

	b := Binary{File: base, Suffix: suffix, Family: suffixFamily(suffix)}
	tag, _, ok := conv.ExtensionTag(loader.ModuleNameOf(base), base)
	if !ok || tag == "" {
		return b, true
	}
	b.Tag = tag
	if tag == "abi3" {
		b.StableABI = true
		return b, true
	}

	var platform string
	if m := shortTagRegex.FindStringSubmatch(tag); m != nil {
		b.Version = m[1] + "." + m[2]
		platform = m[3]
	} else if m := longTagRegex.FindStringSubmatch(tag); m != nil {
		b.Version = m[1] + "." + m[2]
		platform = m[3]
	} else {
		platform = tag
	}

	if f := tagFamily(platform); f != FamilyUnknown {
		b.Family = f
	}
	return b, true
}

func suffixFamily(suffix string) Family {
	switch suffix {
	case ".pyd":
		return FamilyWindows
	case ".so":
		return FamilyPOSIX
	default:
		return FamilyUnknown
	}
}

// tagFamily finds a family in the platform part of a tag, which may carry an
// architecture before the OS ("x86_64-linux-gnu").
func tagFamily(platform string) Family {
	if platform == "" {
		return FamilyUnknown
	}
	if f := PlatformFamily(platform); f != FamilyUnknown {
		return f
	}
	for _, part := range strings.Split(platform, "-") {
		if f := PlatformFamily(part); f != FamilyUnknown {
			return f
		}
	}
	return FamilyUnknown
}
