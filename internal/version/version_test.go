package version

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetInfo(t *testing.T) {
	info := GetInfo()

	require.NotEmpty(t, info.GoVersion, "GoVersion should be populated")
	require.NotEmpty(t, info.CUESDKVersion, "CUESDKVersion should be populated")
}

func TestInfoString(t *testing.T) {
	info := Info{
		Version:       "v1.0.0",
		GitCommit:     "abc123",
		BuildDate:     "2026-01-29",
		GoVersion:     "go1.25",
		CUESDKVersion: "v0.15.0",
	}

	str := info.String()

	assert.Contains(t, str, "v1.0.0")
	assert.Contains(t, str, "abc123")
	assert.Contains(t, str, "2026-01-29")
	assert.Contains(t, str, "go1.25")
	assert.Contains(t, str, "v0.15.0")
}

func TestRuntimeVersionCompatible(t *testing.T) {
	tests := []struct {
		target string
		interp string
		want   bool
		msg    string
	}{
		{"3.8", "3.8.10", true, "compatible"},
		{"3.8", "3.8", true, "compatible"},
		{"3.8", "3.6.9", false, "incompatible - MINOR version mismatch"},
		{"3.8", "2.7.18", false, "incompatible - MAJOR version mismatch"},
		{"3", "3.8.0", false, "incompatible - invalid version format"},
	}

	for _, tt := range tests {
		t.Run(tt.target+"/"+tt.interp, func(t *testing.T) {
			assert.Equal(t, tt.want, RuntimeVersionCompatible(tt.target, tt.interp))
			assert.Equal(t, tt.msg, CompatibilityMessage(tt.target, tt.interp))
		})
	}
}

func TestExtractVersion(t *testing.T) {
	v, err := extractVersion("Python 3.8.10\n")
	require.NoError(t, err)
	assert.Equal(t, "3.8.10", v)

	v, err = extractVersion("Python 3.12.0rc2")
	require.NoError(t, err)
	assert.Equal(t, "3.12.0rc2", v)

	_, err = extractVersion("no version here")
	assert.Error(t, err)
}

func TestDetectInterpreter(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses a shell script as a fake interpreter")
	}

	dir := t.TempDir()
	fake := filepath.Join(dir, "python")
	require.NoError(t, os.WriteFile(fake, []byte("#!/bin/sh\necho 'Python 3.8.10'\n"), 0o755))

	info := DetectInterpreter(context.Background(), fake, "3.8")
	assert.True(t, info.Found)
	assert.True(t, info.Compatible)
	assert.Equal(t, "3.8.10", info.Version)

	info = DetectInterpreter(context.Background(), fake, "3.6")
	assert.False(t, info.Compatible)
	assert.Contains(t, info.String(), "MINOR version mismatch")

	missing := DetectInterpreter(context.Background(), filepath.Join(dir, "nope"), "3.8")
	assert.False(t, missing.Found)
	assert.Contains(t, missing.String(), "not found")
}
