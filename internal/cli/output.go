// # Naming Conventions
//
// Functions in this package follow consistent naming patterns based on their behavior:
//
//   - Display* functions write formatted output to an [io.Writer].
//     Examples: [DisplayResult], [DisplayQuietResults], [DisplayProgress].
//
//   - Format* functions return a formatted string without performing I/O.
//     Examples: [FormatQuietResult].
//
//   - Write* functions produce files through a renderer or the filesystem.
//     Examples: [WriteImages].

package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/agbru/mandelpart/internal/orchestration"
	"github.com/agbru/mandelpart/internal/render"
	"github.com/agbru/mandelpart/internal/ui"
)

// WriteImages renders the grid of every successful result and returns the
// written paths in result order. The first failure stops the loop.
func WriteImages(ctx context.Context, r render.Renderer, results []orchestration.StrategyResult) ([]string, error) {
	var paths []string
	for _, res := range results {
		if res.Err != nil || res.Result == nil {
			continue
		}
		path, err := r.Render(ctx, res.Name, res.Result.Grid)
		if err != nil {
			return paths, fmt.Errorf("rendering %s: %w", res.Name, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// DisplayOutputFiles lists the files written by the run.
func DisplayOutputFiles(out io.Writer, paths ...string) {
	for _, p := range paths {
		fmt.Fprintf(out, "%s✓ Written: %s%s%s\n", ui.ColorGreen(), ui.ColorCyan(), p, ui.ColorReset())
	}
}

// FormatQuietResult formats one result as a single script-friendly line:
// name, status, total time and grid digest.
func FormatQuietResult(res orchestration.StrategyResult) string {
	if res.Err != nil {
		return fmt.Sprintf("%s failed %s %v", res.Name, res.Duration, res.Err)
	}
	return fmt.Sprintf("%s ok %s %s", res.Name, res.Result.TotalTime, res.Result.Grid.Digest())
}

// DisplayQuietResults prints FormatQuietResult for each result.
func DisplayQuietResults(out io.Writer, results []orchestration.StrategyResult) {
	for _, res := range results {
		fmt.Fprintln(out, FormatQuietResult(res))
	}
}
