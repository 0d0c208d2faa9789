package errors

import (
	"fmt"
	"strings"
)

// NotFoundError reports a module name that resolves to nothing in the search path.
type NotFoundError struct {
	// Name is the requested module name.
	Name string

	// SearchPath is the list of locations that were consulted, in order.
	SearchPath []string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("could not find module %q in search path [%s]", e.Name, strings.Join(e.SearchPath, ", "))
}

// Unwrap returns ErrNotFound so callers can match with errors.Is.
func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// Detail converts the error into a DetailError for display.
func (e *NotFoundError) Detail() *DetailError {
	return &DetailError{
		Type:    "module not found",
		Message: fmt.Sprintf("could not find module %q", e.Name),
		Context: map[string]string{"Search path": strings.Join(e.SearchPath, ", ")},
		Hint:    "Check the module name or extend the search path with --path",
		Cause:   e,
	}
}

// Mismatch classifies why an extension binary was rejected.
type Mismatch string

const (
	// MismatchPlatform means the binary targets a different operating system family.
	MismatchPlatform Mismatch = "platform"

	// MismatchVersion means the binary targets a different runtime major.minor.
	MismatchVersion Mismatch = "version"
)

// IncompatibilityError reports a native extension binary that will not load on the target.
type IncompatibilityError struct {
	// Module is the module being staged when the binary was found (optional).
	Module string

	// Path is the offending binary.
	Path string

	// Mismatch is the failed rule.
	Mismatch Mismatch

	// Target describes what the binary was checked against, e.g. "Windows" or "Python 3.8".
	Target string

	// Reason is a short human-readable explanation.
	Reason string
}

// Error implements the error interface.
func (e *IncompatibilityError) Error() string {
	return fmt.Sprintf("found an extension module that will not be usable on %s: %s (%s mismatch: %s)",
		e.Target, e.Path, e.Mismatch, e.Reason)
}

// Unwrap returns ErrIncompatible so callers can match with errors.Is.
func (e *IncompatibilityError) Unwrap() error {
	return ErrIncompatible
}

// Detail converts the error into a DetailError for display.
func (e *IncompatibilityError) Detail() *DetailError {
	ctx := map[string]string{
		"Mismatch": string(e.Mismatch),
		"Target":   e.Target,
	}
	if e.Module != "" {
		ctx["Module"] = e.Module
	}
	return &DetailError{
		Type:     "incompatible extension module",
		Message:  e.Reason,
		Location: e.Path,
		Context:  ctx,
		Hint:     "Put a build of this package for the target platform in the overrides directory (--overrides) so it is staged instead",
		Cause:    e,
	}
}
