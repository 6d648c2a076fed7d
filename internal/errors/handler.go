package apperrors

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"
)

// ColorProvider supplies the escape codes used when reporting errors. The
// presentation layer implements it so this package stays free of UI code.
type ColorProvider interface {
	Red() string
	Yellow() string
	Reset() string
}

type noColors struct{}

func (noColors) Red() string    { return "" }
func (noColors) Yellow() string { return "" }
func (noColors) Reset() string  { return "" }

// ExitCode maps an error to the process exit status without printing.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var (
		timeoutErr    TimeoutError
		configErr     ConfigError
		validationErr ValidationError
		mismatchErr   MismatchError
	)
	switch {
	case errors.As(err, &timeoutErr), errors.Is(err, context.DeadlineExceeded):
		return ExitErrorTimeout
	case errors.Is(err, context.Canceled):
		return ExitErrorCanceled
	case errors.As(err, &configErr), errors.As(err, &validationErr):
		return ExitErrorConfig
	case errors.As(err, &mismatchErr):
		return ExitErrorMismatch
	default:
		return ExitErrorGeneric
	}
}

// HandleRunError reports err on out and returns the matching exit code.
// duration is how long the run lasted before failing; zero omits it.
func HandleRunError(err error, duration time.Duration, out io.Writer, colors ColorProvider) int {
	if err == nil {
		return ExitSuccess
	}
	if colors == nil {
		colors = noColors{}
	}
	elapsed := ""
	if duration > 0 {
		elapsed = fmt.Sprintf(" after %s", duration)
	}

	code := ExitCode(err)
	switch code {
	case ExitErrorTimeout:
		fmt.Fprintf(out, "%sStatus: Failure (Timeout). The run exceeded its time limit%s.%s\n", colors.Red(), elapsed, colors.Reset())
	case ExitErrorCanceled:
		fmt.Fprintf(out, "%sStatus: Canceled%s.%s\n", colors.Yellow(), elapsed, colors.Reset())
	case ExitErrorConfig:
		fmt.Fprintf(out, "%sConfiguration error: %v%s\n", colors.Red(), err, colors.Reset())
	default:
		fmt.Fprintf(out, "%sStatus: Failure%s. Error: %v%s\n", colors.Red(), elapsed, err, colors.Reset())
	}
	return code
}
