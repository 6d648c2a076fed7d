package main

import (
	"context"
	"os"

	"github.com/agbru/mandelpart/internal/app"
	apperrors "github.com/agbru/mandelpart/internal/errors"
)

func main() {
	application, err := app.New(os.Args, os.Stderr)
	if err != nil {
		if app.IsHelpError(err) {
			os.Exit(apperrors.ExitSuccess)
		}
		os.Exit(apperrors.ExitCode(err))
	}

	os.Exit(application.Run(context.Background(), os.Stdout))
}
