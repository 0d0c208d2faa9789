// Package cmdtypes provides shared types for the cmd package and its sub-packages.
// It is separate from internal/cmd to avoid import cycles between internal/cmd
// and internal/cmd/config.
package cmdtypes

import (
	"github.com/opmodel/stager/internal/config"
	oerrors "github.com/opmodel/stager/internal/errors"
)

// GlobalConfig holds CLI-wide configuration resolved during PersistentPreRunE.
// It is populated once at startup and passed into every sub-command constructor.
type GlobalConfig struct {
	// Config is the config file content without environment overrides, so
	// that STAGER_* values are attributed to their own source.
	Config     *config.Config
	ConfigPath string // resolved --config path
	Verbose    bool

	// ConfigErr is set when the config file could not be loaded or is
	// invalid. Commands that only manage the file ignore it.
	ConfigErr error
}

// Exit codes, aliased from internal/errors.
const (
	ExitSuccess          = oerrors.ExitSuccess
	ExitGeneralError     = oerrors.ExitGeneralError
	ExitValidationError  = oerrors.ExitValidationError
	ExitPermissionDenied = oerrors.ExitPermissionDenied
	ExitNotFound         = oerrors.ExitNotFound
	ExitIncompatible     = oerrors.ExitIncompatible
)

// ExitError is a type alias to internal/errors.ExitError.
type ExitError = oerrors.ExitError
