// Command mfmsweep runs the Morillas-Fourier prime sweep: for each K it
// corrects the base sequence with a K-term cosine series, counts the primes
// and reports the results as console lines, a CSV table and two plots.
package main

import (
	"context"
	"os"

	"github.com/agbru/mfmprime/internal/app"
	apperrors "github.com/agbru/mfmprime/internal/errors"
)

func main() {
	if app.HasVersionFlag(os.Args[1:]) {
		app.PrintVersion(os.Stdout)
		os.Exit(apperrors.ExitSuccess)
	}

	application, err := app.New(os.Args, os.Stderr)
	if err != nil {
		if app.IsHelpError(err) {
			os.Exit(apperrors.ExitSuccess)
		}
		os.Exit(apperrors.ExitErrorConfig)
	}

	os.Exit(application.Run(context.Background(), os.Stdout))
}
