// Package compat decides whether native extension binaries will load on the
// runtime a bundle is being staged for.
package compat

import (
	"fmt"
	"regexp"
	"strings"

	oerrors "github.com/opmodel/stager/internal/errors"
)

// Family is an operating-system family that binaries are built for.
type Family string

const (
	// FamilyUnknown means the family could not be determined.
	FamilyUnknown Family = ""

	// FamilyWindows covers win32, win_amd64 and win_arm64.
	FamilyWindows Family = "windows"

	// FamilyLinux covers linux and manylinux platforms.
	FamilyLinux Family = "linux"

	// FamilyDarwin covers macOS platforms.
	FamilyDarwin Family = "darwin"

	// FamilyPOSIX is used for binaries whose suffix only says "not Windows".
	FamilyPOSIX Family = "posix"
)

// DisplayName returns the name used in user-facing messages.
func (f Family) DisplayName() string {
	switch f {
	case FamilyWindows:
		return "Windows"
	case FamilyLinux:
		return "Linux"
	case FamilyDarwin:
		return "macOS"
	case FamilyPOSIX:
		return "POSIX"
	default:
		return "unknown platform"
	}
}

// Accepts reports whether a binary built for family b loads on family f.
func (f Family) Accepts(b Family) bool {
	if b == FamilyPOSIX {
		return f == FamilyLinux || f == FamilyDarwin
	}
	return f != FamilyUnknown && f == b
}

// PlatformFamily maps a platform identifier to its family.
func PlatformFamily(platform string) Family {
	p := strings.ToLower(strings.TrimSpace(platform))
	switch {
	case p == "windows" || p == "win32" || strings.HasPrefix(p, "win_") || strings.HasPrefix(p, "win-"):
		return FamilyWindows
	case strings.HasPrefix(p, "linux") || strings.HasPrefix(p, "manylinux") || strings.HasPrefix(p, "musllinux"):
		return FamilyLinux
	case p == "darwin" || strings.HasPrefix(p, "macosx") || p == "macos":
		return FamilyDarwin
	default:
		return FamilyUnknown
	}
}

var versionRegex = regexp.MustCompile(`^(\d+)\.(\d+)(?:\.\d+)?(?:[a-z]+\d*)?$`)

// MajorMinor normalizes a runtime version such as "3.8.10" to "3.8".
// It returns "" when version is not recognized.
func MajorMinor(version string) string {
	m := versionRegex.FindStringSubmatch(strings.TrimPrefix(strings.TrimSpace(version), "v"))
	if m == nil {
		return ""
	}
	return m[1] + "." + m[2]
}

// TargetRuntime is the runtime version and platform a bundle is staged for.
type TargetRuntime struct {
	// Version is the runtime major.minor, e.g. "3.8".
	Version string `json:"version"`

	// Platform is the platform identifier, e.g. "win_amd64".
	Platform string `json:"platform"`
}

// ParseTargetRuntime validates and normalizes a version and platform pair.
func ParseTargetRuntime(version, platform string) (TargetRuntime, error) {
	mm := MajorMinor(version)
	if mm == "" {
		return TargetRuntime{}, oerrors.NewValidationError(
			fmt.Sprintf("invalid target version %q", version), "target.version",
			"Use a major.minor version such as 3.8")
	}
	if PlatformFamily(platform) == FamilyUnknown {
		return TargetRuntime{}, oerrors.NewValidationError(
			fmt.Sprintf("unsupported target platform %q", platform), "target.platform",
			"Use a platform such as win_amd64, win32, linux_x86_64 or macosx_11_0_arm64")
	}
	return TargetRuntime{Version: mm, Platform: strings.ToLower(strings.TrimSpace(platform))}, nil
}

// Family returns the operating-system family of the target platform.
func (t TargetRuntime) Family() Family {
	return PlatformFamily(t.Platform)
}

// String returns e.g. "Python 3.8 (win_amd64)".
func (t TargetRuntime) String() string {
	return fmt.Sprintf("Python %s (%s)", t.Version, t.Platform)
}
