package cli

import (
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/agbru/mandelpart/internal/config"
	"github.com/agbru/mandelpart/internal/format"
	"github.com/agbru/mandelpart/internal/strategy"
	"github.com/agbru/mandelpart/internal/ui"
)

// PrintExecutionConfig shows the grid size, rank count, timeout and host
// environment in a bordered banner.
func PrintExecutionConfig(cfg config.AppConfig, out io.Writer) {
	s := ui.CurrentStyles()
	lines := []string{
		s.Title.Render("mandelpart"),
		fmt.Sprintf("Grid:        %s%d x %d%s (%s cells)",
			ui.ColorMagenta(), cfg.Height, cfg.Width, ui.ColorReset(), format.FormatInt(cfg.Height*cfg.Width)),
		fmt.Sprintf("Ranks:       %s%d%s (1 coordinator, %d workers)",
			ui.ColorCyan(), cfg.Procs, ui.ColorReset(), max(cfg.Procs-1, 0)),
		fmt.Sprintf("Granularity: %s%d%s row(s) per dynamic task",
			ui.ColorCyan(), cfg.Granularity, ui.ColorReset()),
		fmt.Sprintf("Timeout:     %s%s%s", ui.ColorYellow(), cfg.Timeout, ui.ColorReset()),
		fmt.Sprintf("Environment: %d logical processors, Go %s", runtime.NumCPU(), runtime.Version()),
	}
	fmt.Fprintln(out, s.Box.Render(strings.Join(lines, "\n")))
}

// PrintExecutionMode states whether one strategy runs or several are
// compared.
func PrintExecutionMode(strategies []strategy.Strategy, out io.Writer) {
	var modeDesc string
	if len(strategies) > 1 {
		names := make([]string, len(strategies))
		for i, s := range strategies {
			names[i] = s.Name()
		}
		modeDesc = fmt.Sprintf("Parallel comparison of %s%s%s",
			ui.ColorGreen(), strings.Join(names, ", "), ui.ColorReset())
	} else {
		modeDesc = fmt.Sprintf("Single run with the %s%s%s strategy",
			ui.ColorGreen(), strategies[0].Description(), ui.ColorReset())
	}
	fmt.Fprintf(out, "Execution mode: %s.\n", modeDesc)
	fmt.Fprintf(out, "\n--- Starting Execution ---\n")
}
