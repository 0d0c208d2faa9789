package version

import (
	"bytes"
	"context"
	"os/exec"
	"regexp"
	"strings"
)

// interpreterVersionRegex matches output like "Python 3.8.10".
var interpreterVersionRegex = regexp.MustCompile(`\d+\.\d+(?:\.\d+)?(?:[a-z]+\d*)?`)

// DetectInterpreter finds the interpreter and checks it against targetVersion.
// An empty targetVersion skips the compatibility check.
func DetectInterpreter(ctx context.Context, interpreter, targetVersion string) InterpreterInfo {
	path, err := exec.LookPath(interpreter)
	if err != nil {
		return InterpreterInfo{
			Found:   false,
			Message: interpreter + " not found in PATH",
		}
	}

	version, err := getInterpreterVersion(ctx, path)
	if err != nil {
		return InterpreterInfo{
			Path:    path,
			Found:   true,
			Message: "failed to get interpreter version: " + err.Error(),
		}
	}

	info := InterpreterInfo{
		Version:    version,
		Path:       path,
		Found:      true,
		Compatible: true,
	}
	if targetVersion != "" {
		info.Compatible = RuntimeVersionCompatible(targetVersion, version)
		info.Message = CompatibilityMessage(targetVersion, version)
	}
	return info
}

// getInterpreterVersion executes '<interpreter> --version' and extracts the version string.
func getInterpreterVersion(ctx context.Context, path string) (string, error) {
	cmd := exec.CommandContext(ctx, path, "--version")
	var out bytes.Buffer
	cmd.Stdout = &out
	// Python 2 prints its version to stderr.
	cmd.Stderr = &out

	if err := cmd.Run(); err != nil {
		return "", err
	}

	return extractVersion(out.String())
}

// extractVersion extracts the version number from interpreter output.
func extractVersion(output string) (string, error) {
	line := strings.TrimSpace(output)
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}

	match := interpreterVersionRegex.FindString(line)
	if match == "" {
		return "", &versionParseError{output: output}
	}
	return match, nil
}

// versionParseError indicates failure to parse interpreter version output.
type versionParseError struct {
	output string
}

func (e *versionParseError) Error() string {
	return "failed to parse interpreter version from output: " + e.output
}
