package cmdutil

import (
	"bytes"
	"errors"
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opmodel/stager/internal/cmdtypes"
	"github.com/opmodel/stager/internal/config"
	oerrors "github.com/opmodel/stager/internal/errors"
	"github.com/opmodel/stager/internal/output"
)

// captureStderr runs fn with os.Stderr redirected and returns what was written.
func captureStderr(t *testing.T, fn func()) string {
	t.Helper()
	oldStderr := os.Stderr
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stderr = w

	fn()

	w.Close()
	os.Stderr = oldStderr
	var buf bytes.Buffer
	_, err = io.Copy(&buf, r)
	require.NoError(t, err)
	return buf.String()
}

func TestPrintError(t *testing.T) {
	var logBuf bytes.Buffer
	output.SetupLoggingTo(&logBuf, output.LogConfig{Timestamps: output.BoolPtr(false)})
	t.Cleanup(func() { output.SetupLogging(output.LogConfig{}) })

	t.Run("detailer", func(t *testing.T) {
		err := &oerrors.NotFoundError{Name: "six", SearchPath: []string{"site"}}
		got := captureStderr(t, func() { PrintError("staging failed", err) })
		assert.Contains(t, got, "Error: module not found")
		assert.Contains(t, got, `could not find module "six"`)
		assert.Contains(t, got, "Hint:")
	})

	t.Run("detail error", func(t *testing.T) {
		err := oerrors.NewValidationError("bad destination", "out", "create it")
		got := captureStderr(t, func() { PrintError("staging failed", err) })
		assert.Contains(t, got, "Location: out")
	})

	t.Run("config validation errors", func(t *testing.T) {
		logBuf.Reset()
		err := config.ValidationErrors{{Field: "target.version", Message: "bad"}}
		got := captureStderr(t, func() { PrintError("loading config", err) })
		assert.Contains(t, got, "target.version: bad")
		assert.Contains(t, logBuf.String(), "config validation failed")
	})

	t.Run("plain error", func(t *testing.T) {
		logBuf.Reset()
		PrintError("staging failed", errors.New("disk full"))
		assert.Contains(t, logBuf.String(), "staging failed")
		assert.Contains(t, logBuf.String(), "disk full")
	})
}

func TestExit(t *testing.T) {
	output.SetupLoggingTo(io.Discard, output.LogConfig{})
	t.Cleanup(func() { output.SetupLogging(output.LogConfig{}) })

	assert.NoError(t, Exit("msg", nil))

	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{"general", errors.New("boom"), cmdtypes.ExitGeneralError},
		{"validation", oerrors.NewValidationError("bad", "", ""), cmdtypes.ExitValidationError},
		{"not found", &oerrors.NotFoundError{Name: "x"}, cmdtypes.ExitNotFound},
		{"incompatible", &oerrors.IncompatibilityError{Path: "x.pyd"}, cmdtypes.ExitIncompatible},
		{"permission", oerrors.NewPermissionError("denied", nil, ""), cmdtypes.ExitPermissionDenied},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got error
			captureStderr(t, func() { got = Exit("failed", tt.err) })

			var exitErr *cmdtypes.ExitError
			require.True(t, errors.As(got, &exitErr))
			assert.Equal(t, tt.wantCode, exitErr.Code)
			assert.True(t, exitErr.Printed)
			assert.ErrorIs(t, got, tt.err)
		})
	}

	t.Run("existing exit error is kept", func(t *testing.T) {
		orig := oerrors.NewExitError(errors.New("x"), cmdtypes.ExitNotFound)
		got := Exit("failed", orig)
		assert.Same(t, orig, got)
	})
}

func TestExitCodeConstants(t *testing.T) {
	assert.Equal(t, 0, cmdtypes.ExitSuccess)
	assert.Equal(t, 1, cmdtypes.ExitGeneralError)
	assert.Equal(t, 2, cmdtypes.ExitValidationError)
	assert.Equal(t, 4, cmdtypes.ExitPermissionDenied)
	assert.Equal(t, 5, cmdtypes.ExitNotFound)
	assert.Equal(t, 7, cmdtypes.ExitIncompatible)
}
