// Package version provides version information for the stager CLI.
package version

import (
	"fmt"
	"runtime"
	"strings"
)

// Build-time variables set via ldflags.
var (
	// Version is the CLI version (set via ldflags).
	Version = "v0.0.0-dev"

	// GitCommit is the git commit hash.
	GitCommit = "unknown"

	// BuildDate is the build timestamp.
	BuildDate = "unknown"
)

// CUESDKVersion is the version of the CUE SDK used for config validation.
const CUESDKVersion = "v0.15.4"

// Info contains version information.
type Info struct {
	// Version is the CLI version (set via ldflags).
	Version string `json:"version"`

	// GitCommit is the git commit hash.
	GitCommit string `json:"gitCommit"`

	// BuildDate is the build timestamp.
	BuildDate string `json:"buildDate"`

	// GoVersion is the Go version used to build.
	GoVersion string `json:"goVersion"`

	// CUESDKVersion is the CUE SDK version (embedded at build time).
	CUESDKVersion string `json:"cueSDKVersion"`
}

// InterpreterInfo describes the runtime interpreter found on the host.
type InterpreterInfo struct {
	// Version is the interpreter version, e.g. "3.8.10".
	Version string `json:"version"`

	// Path is the path to the interpreter.
	Path string `json:"path"`

	// Compatible indicates the interpreter matches the target major.minor.
	Compatible bool `json:"compatible"`

	// Found indicates if the interpreter was found.
	Found bool `json:"found"`

	// Message provides additional information about compatibility.
	Message string `json:"message,omitempty"`
}

// GetInfo returns the current version information.
func GetInfo() Info {
	return Info{
		Version:       Version,
		GitCommit:     GitCommit,
		BuildDate:     BuildDate,
		GoVersion:     runtime.Version(),
		CUESDKVersion: CUESDKVersion,
	}
}

// String returns a human-readable version string.
func (i Info) String() string {
	return fmt.Sprintf("stager:\n  Version:  %s\n  Build ID: %s/%s\n  Go:       %s\n  CUE SDK:  %s",
		i.Version, i.BuildDate, i.GitCommit, i.GoVersion, i.CUESDKVersion)
}

// RuntimeVersionCompatible checks whether an interpreter version can build
// binaries for the target version. Versions are compatible if MAJOR and
// MINOR components match.
func RuntimeVersionCompatible(targetVersion, interpreterVersion string) bool {
	targetParts := strings.Split(strings.TrimPrefix(targetVersion, "v"), ".")
	interpParts := strings.Split(strings.TrimPrefix(interpreterVersion, "v"), ".")

	if len(targetParts) < 2 || len(interpParts) < 2 {
		return false
	}

	return targetParts[0] == interpParts[0] && targetParts[1] == interpParts[1]
}

// CompatibilityMessage returns a message explaining version compatibility.
func CompatibilityMessage(targetVersion, interpreterVersion string) string {
	if RuntimeVersionCompatible(targetVersion, interpreterVersion) {
		return "compatible"
	}

	targetParts := strings.Split(strings.TrimPrefix(targetVersion, "v"), ".")
	interpParts := strings.Split(strings.TrimPrefix(interpreterVersion, "v"), ".")

	if len(targetParts) >= 2 && len(interpParts) >= 2 {
		if targetParts[0] != interpParts[0] {
			return "incompatible - MAJOR version mismatch"
		}
		return "incompatible - MINOR version mismatch"
	}

	return "incompatible - invalid version format"
}

// String returns a human-readable interpreter info string.
func (c InterpreterInfo) String() string {
	if !c.Found {
		return "  Interpreter: not found"
	}

	compatStr := "compatible"
	if !c.Compatible {
		compatStr = c.Message
	}

	return fmt.Sprintf("  Interpreter: %s (%s)\n  Path:        %s",
		c.Version, compatStr, c.Path)
}

// FullVersionString returns complete version information including the interpreter.
func FullVersionString(info Info, interp InterpreterInfo) string {
	return fmt.Sprintf("%s\n\nRuntime:\n%s", info.String(), interp.String())
}
