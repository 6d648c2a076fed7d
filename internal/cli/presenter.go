package cli

import (
	"fmt"
	"io"
	"strconv"
	"sync"
	"time"

	apperrors "github.com/agbru/mandelpart/internal/errors"
	"github.com/agbru/mandelpart/internal/format"
	"github.com/agbru/mandelpart/internal/grid"
	"github.com/agbru/mandelpart/internal/kernel"
	"github.com/agbru/mandelpart/internal/metrics"
	"github.com/agbru/mandelpart/internal/orchestration"
	"github.com/agbru/mandelpart/internal/progress"
	"github.com/agbru/mandelpart/internal/ui"
)

// CLIProgressReporter implements orchestration.ProgressReporter with a
// spinner and progress bar.
type CLIProgressReporter struct{}

var _ orchestration.ProgressReporter = CLIProgressReporter{}

// DisplayProgress delegates to DisplayProgress.
func (CLIProgressReporter) DisplayProgress(wg *sync.WaitGroup, progressChan <-chan progress.ProgressUpdate, numStrategies int, out io.Writer) {
	DisplayProgress(wg, progressChan, numStrategies, out)
}

// LatencySource exposes per-strategy task latency summaries.
// *metrics.Collector implements it.
type LatencySource interface {
	Latency(strategy string) (metrics.LatencySummary, bool)
}

// CLIResultPresenter implements orchestration.ResultPresenter for terminal
// output. When Verbose is set, every successful strategy also gets its
// per-rank load table and, if Latency has data for it, a task latency line.
type CLIResultPresenter struct {
	Verbose bool
	Latency LatencySource
}

var _ orchestration.ResultPresenter = CLIResultPresenter{}

// PresentComparisonTable prints one row per strategy with its total and
// communication time.
func (p CLIResultPresenter) PresentComparisonTable(results []orchestration.StrategyResult, out io.Writer) {
	fmt.Fprintf(out, "\n--- Comparison Summary ---\n")
	s := ui.CurrentStyles()

	rows := make([][]string, 0, len(results))
	for _, res := range results {
		if res.Err != nil {
			rows = append(rows, []string{res.Name, formatDuration(res.Duration), "-", "-",
				s.Bad.Render(fmt.Sprintf("❌ Failure (%v)", res.Err))})
			continue
		}
		tasks := "-"
		if res.Result.TasksDispatched > 0 {
			tasks = strconv.Itoa(res.Result.TasksDispatched)
		}
		rows = append(rows, []string{res.Name, formatDuration(res.Result.TotalTime),
			formatDuration(res.Result.CommTime), tasks, s.Ok.Render("✅ Success")})
	}
	fmt.Fprintln(out, ui.Table([]string{"Strategy", "Total", "Comm", "Tasks", "Status"}, rows))

	if !p.Verbose {
		return
	}
	for _, res := range results {
		if res.Err != nil {
			continue
		}
		fmt.Fprintf(out, "\n%s%s%s (%s)\n", ui.ColorBold(), res.Name, ui.ColorReset(), res.Description)
		DisplayLoadTable(res.Result.RowsByRank, out)
		if p.Latency != nil {
			if sum, ok := p.Latency.Latency(res.Name); ok {
				DisplayLatency(sum, out)
			}
		}
	}
}

// PresentResult prints the summary of the reference grid.
func (p CLIResultPresenter) PresentResult(result orchestration.StrategyResult, opts orchestration.PresentationOptions, out io.Writer) {
	DisplayResult(result, opts, out)
}

// HandleError reports err with colors and returns the exit code.
func (CLIResultPresenter) HandleError(err error, duration time.Duration, out io.Writer) int {
	return apperrors.HandleRunError(err, duration, out, CLIColorProvider{})
}

// DisplayResult prints the grid shape, its digest and how many points
// never escaped.
func DisplayResult(result orchestration.StrategyResult, opts orchestration.PresentationOptions, out io.Writer) {
	g := result.Result.Grid
	fmt.Fprintf(out, "\n--- Result (%s) ---\n", result.Name)
	fmt.Fprintf(out, "Grid:          %s%d x %d%s\n", ui.ColorMagenta(), g.Height(), g.Width(), ui.ColorReset())
	fmt.Fprintf(out, "Points in set: %s%s%s of %s\n",
		ui.ColorYellow(), format.FormatInt(CountInSet(g)), ui.ColorReset(), format.FormatInt(g.Height()*g.Width()))
	fmt.Fprintf(out, "Digest:        %s%s%s\n", ui.ColorCyan(), g.Digest(), ui.ColorReset())
	fmt.Fprintf(out, "Total time:    %s\n", formatDuration(result.Result.TotalTime))
	if opts.Verbose {
		fmt.Fprintf(out, "Comm time:     %s\n", formatDuration(result.Result.CommTime))
		fmt.Fprintf(out, "Throughput:    %s\n", format.FormatThroughput(g.Height()*g.Width(), result.Result.TotalTime))
	}
}

// CountInSet counts the cells that reached the iteration cap.
func CountInSet(g *grid.Grid) int {
	n := 0
	for r := 0; r < g.Height(); r++ {
		for _, v := range g.Row(r) {
			if v == kernel.MaxIterations {
				n++
			}
		}
	}
	return n
}

// DisplayLoadTable prints the number of rows each rank computed and its
// share of the grid.
func DisplayLoadTable(rowsByRank []int, out io.Writer) {
	total := 0
	for _, n := range rowsByRank {
		total += n
	}
	rows := make([][]string, len(rowsByRank))
	for rank, n := range rowsByRank {
		share := 0.0
		if total > 0 {
			share = float64(n) / float64(total) * 100
		}
		role := "worker"
		if rank == 0 {
			role = "coordinator"
		}
		rows[rank] = []string{strconv.Itoa(rank), role, strconv.Itoa(n), fmt.Sprintf("%.1f%%", share)}
	}
	fmt.Fprintln(out, ui.Table([]string{"Rank", "Role", "Rows", "Share"}, rows))
}

// DisplayLatency prints a task latency summary.
func DisplayLatency(s metrics.LatencySummary, out io.Writer) {
	fmt.Fprintf(out, "Task latency: %d tasks, p50 %s, p99 %s, max %s\n",
		s.Count, formatDuration(s.P50), formatDuration(s.P99), formatDuration(s.Max))
}

// DisplayMemoryStats shows what the run did to the heap.
func DisplayMemoryStats(d metrics.MemoryDelta, out io.Writer) {
	fmt.Fprintf(out, "\nMemory Stats:\n")
	fmt.Fprintf(out, "  Peak heap:       %s\n", format.FormatBytes(d.PeakHeap))
	fmt.Fprintf(out, "  Total allocated: %s\n", format.FormatBytes(d.Allocated))
	fmt.Fprintf(out, "  GC cycles:       %d\n", d.GCCycles)
	fmt.Fprintf(out, "  GC pause total:  %.2fms\n", float64(d.PauseTotal)/float64(time.Millisecond))
}

func formatDuration(d time.Duration) string {
	if d == 0 {
		return "< 1µs"
	}
	return format.FormatExecutionDuration(d)
}

// CLIColorProvider feeds the active theme to apperrors.
type CLIColorProvider struct{}

var _ apperrors.ColorProvider = CLIColorProvider{}

func (CLIColorProvider) Red() string    { return ui.ColorRed() }
func (CLIColorProvider) Yellow() string { return ui.ColorYellow() }
func (CLIColorProvider) Reset() string  { return ui.ColorReset() }
