// Command kdeconv convolves a sampled signal with a Gaussian kernel density
// filter, choosing between the direct and the transform-based algorithms.
package main

import (
	"context"
	"os"

	"github.com/agbru/kdeconv/internal/app"
	apperrors "github.com/agbru/kdeconv/internal/errors"
)

func main() {
	os.Exit(run())
}

func run() int {
	if app.HasVersionFlag(os.Args[1:]) {
		app.PrintVersion(os.Stdout)
		return apperrors.ExitSuccess
	}

	application, err := app.New(os.Args, os.Stderr)
	if err != nil {
		if app.IsHelpError(err) {
			return apperrors.ExitSuccess
		}
		// ParseConfig has already reported the problem.
		return apperrors.ExitErrorConfig
	}
	defer application.Close()

	return application.Run(context.Background(), os.Stdout)
}
