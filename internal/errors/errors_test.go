//nolint:revive // Package name matches the package it tests
package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSentinelErrors(t *testing.T) {
	assert.NotEqual(t, ErrValidation, ErrPermission)
	assert.NotEqual(t, ErrValidation, ErrNotFound)
	assert.NotEqual(t, ErrNotFound, ErrIncompatible)
}

func TestDetailErrorError(t *testing.T) {
	detail := &DetailError{
		Type:     "incompatible extension module",
		Message:  "built for linux",
		Location: "/site-packages/fast.cpython-38-x86_64-linux-gnu.so",
		Context:  map[string]string{"Module": "fast"},
		Hint:     "Use the overrides directory",
	}

	output := detail.Error()

	assert.Contains(t, output, "Error: incompatible extension module")
	assert.Contains(t, output, "Location: /site-packages/fast.cpython-38-x86_64-linux-gnu.so")
	assert.Contains(t, output, "Module: fast")
	assert.Contains(t, output, "built for linux")
	assert.Contains(t, output, "Hint: Use the overrides directory")
}

func TestDetailErrorUnwrap(t *testing.T) {
	detail := &DetailError{
		Type:    "test",
		Message: "test message",
		Cause:   ErrValidation,
	}

	assert.True(t, errors.Is(detail, ErrValidation))
	assert.Equal(t, ErrValidation, detail.Unwrap())
}

func TestNewValidationError(t *testing.T) {
	err := NewValidationError("bad version", "/home/u/.stager/config.yaml", "Use MAJOR.MINOR")

	require.NotNil(t, err)
	assert.True(t, errors.Is(err, ErrValidation))

	var detail *DetailError
	require.True(t, errors.As(err, &detail))
	assert.Equal(t, "validation failed", detail.Type)
	assert.Equal(t, "bad version", detail.Message)
	assert.Equal(t, "Use MAJOR.MINOR", detail.Hint)
}

func TestNotFoundError(t *testing.T) {
	err := &NotFoundError{Name: "requests", SearchPath: []string{"/a", "/b.zip"}}

	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Contains(t, err.Error(), `"requests"`)
	assert.Contains(t, err.Error(), "/a, /b.zip")

	detail := err.Detail()
	assert.True(t, errors.Is(detail, ErrNotFound))
	assert.Equal(t, "/a, /b.zip", detail.Context["Search path"])
}

func TestIncompatibilityError(t *testing.T) {
	err := &IncompatibilityError{
		Module:   "numpy",
		Path:     "/pkgs/numpy/core/_multiarray.so",
		Mismatch: MismatchPlatform,
		Target:   "Windows",
		Reason:   "built for posix",
	}

	wrapped := fmt.Errorf("copying numpy: %w", err)
	assert.True(t, errors.Is(wrapped, ErrIncompatible))

	var ie *IncompatibilityError
	require.True(t, errors.As(wrapped, &ie))
	assert.Equal(t, MismatchPlatform, ie.Mismatch)
	assert.Contains(t, err.Error(), "will not be usable on Windows")

	detail := err.Detail()
	assert.Equal(t, "/pkgs/numpy/core/_multiarray.so", detail.Location)
	assert.Equal(t, "numpy", detail.Context["Module"])
	assert.Contains(t, detail.Hint, "overrides")
}

func TestWrap(t *testing.T) {
	wrapped := Wrap(ErrValidation, "schema check failed")

	assert.True(t, errors.Is(wrapped, ErrValidation))
	assert.Contains(t, wrapped.Error(), "schema check failed")
}

func TestExitCodeFromError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{name: "nil error returns success", err: nil, wantCode: ExitSuccess},
		{name: "validation error", err: ErrValidation, wantCode: ExitValidationError},
		{name: "wrapped validation error", err: Wrap(ErrValidation, "bad"), wantCode: ExitValidationError},
		{name: "permission error", err: ErrPermission, wantCode: ExitPermissionDenied},
		{name: "not found error", err: &NotFoundError{Name: "x"}, wantCode: ExitNotFound},
		{name: "incompatible error", err: &IncompatibilityError{Path: "x.so"}, wantCode: ExitIncompatible},
		{name: "explicit exit error", err: NewExitError(errors.New("boom"), ExitValidationError), wantCode: ExitValidationError},
		{name: "unknown error returns general error", err: errors.New("unknown error"), wantCode: ExitGeneralError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantCode, ExitCodeFromError(tt.err))
		})
	}
}

func TestExitCodeName(t *testing.T) {
	assert.Equal(t, "Success", ExitCodeName(ExitSuccess))
	assert.Equal(t, "Not Found", ExitCodeName(ExitNotFound))
	assert.Equal(t, "Incompatible Extension", ExitCodeName(ExitIncompatible))
	assert.Equal(t, "Unknown", ExitCodeName(99))
}
