// Package main is the entry point for the stager CLI.
package main

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/charmbracelet/fang"

	"github.com/opmodel/stager/internal/cmd"
	oerrors "github.com/opmodel/stager/internal/errors"
	"github.com/opmodel/stager/internal/version"
)

func main() {
	os.Exit(run())
}

func run() int {
	err := fang.Execute(
		context.Background(),
		cmd.NewRootCmd(),
		fang.WithVersion(version.Version),
		fang.WithCommit(version.GitCommit),
		fang.WithNotifySignal(os.Interrupt),
		fang.WithErrorHandler(handleError),
	)
	return oerrors.ExitCodeFromError(err)
}

// handleError prints errors the command layer has not already displayed.
func handleError(w io.Writer, styles fang.Styles, err error) {
	var exitErr *oerrors.ExitError
	if errors.As(err, &exitErr) && exitErr.Printed {
		return
	}
	fang.DefaultErrorHandler(w, styles, err)
}
