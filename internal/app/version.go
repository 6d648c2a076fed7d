package app

import (
	"fmt"
	"io"
	"runtime"
)

// Build metadata, set with -ldflags "-X github.com/agbru/mandelpart/internal/app.Version=...".
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

// PrintVersion writes the version banner.
func PrintVersion(out io.Writer) {
	fmt.Fprintf(out, "mandelpart %s (commit %s, built %s, %s %s/%s)\n",
		Version, Commit, BuildDate, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
