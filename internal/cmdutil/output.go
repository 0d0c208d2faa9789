package cmdutil

import (
	"errors"

	"github.com/opmodel/stager/internal/cmdtypes"
	"github.com/opmodel/stager/internal/config"
	oerrors "github.com/opmodel/stager/internal/errors"
	"github.com/opmodel/stager/internal/output"
)

// detailer is implemented by errors that carry a structured display form.
type detailer interface {
	Detail() *oerrors.DetailError
}

// PrintError prints err in a user-friendly format. Errors with structured
// details are printed as a block, config validation failures list each
// field, and anything else falls back to a single log line.
func PrintError(msg string, err error) {
	var (
		d          detailer
		detailErr  *oerrors.DetailError
		configErrs config.ValidationErrors
	)
	switch {
	case errors.As(err, &d):
		output.Details(d.Detail().Error())
	case errors.As(err, &detailErr):
		output.Details(detailErr.Error())
	case errors.As(err, &configErrs):
		output.Error(msg + ": config validation failed")
		for _, e := range configErrs {
			output.Details("  " + e.Field + ": " + e.Message)
		}
	default:
		output.Error(msg, "error", err)
	}
}

// Exit prints err and returns an ExitError marked as printed, so the entry
// point only sets the process exit code.
func Exit(msg string, err error) error {
	if err == nil {
		return nil
	}
	var exitErr *cmdtypes.ExitError
	if errors.As(err, &exitErr) {
		return err
	}
	PrintError(msg, err)
	return &cmdtypes.ExitError{
		Err:     err,
		Code:    oerrors.ExitCodeFromError(err),
		Printed: true,
	}
}
