package orchestration

import (
	"io"
	"sync"
	"time"

	"github.com/agbru/mandelpart/internal/progress"
	"github.com/agbru/mandelpart/internal/strategy"
)

// StrategyResult is the outcome of one strategy run. It is the shared
// domain type between orchestration and presentation.
type StrategyResult struct {
	// Name is the strategy identifier ("block", "cyclic", "mw").
	Name string
	// Description is the human readable label of the strategy.
	Description string
	// Result is nil when Err is set.
	Result *strategy.Result
	// Duration is the wall time of the run as seen by the orchestrator.
	Duration time.Duration
	Err      error
}

// PresentationOptions configures how results are presented.
type PresentationOptions struct {
	Height  int
	Width   int
	Procs   int
	Verbose bool
	Quiet   bool
}

// ProgressReporter displays progress updates. DisplayProgress runs in its
// own goroutine, must drain progressChan until it is closed and then call
// wg.Done.
type ProgressReporter interface {
	DisplayProgress(wg *sync.WaitGroup, progressChan <-chan progress.ProgressUpdate, numStrategies int, out io.Writer)
}

// ProgressReporterFunc adapts a function to ProgressReporter.
type ProgressReporterFunc func(wg *sync.WaitGroup, progressChan <-chan progress.ProgressUpdate, numStrategies int, out io.Writer)

// DisplayProgress calls f.
func (f ProgressReporterFunc) DisplayProgress(wg *sync.WaitGroup, progressChan <-chan progress.ProgressUpdate, numStrategies int, out io.Writer) {
	f(wg, progressChan, numStrategies, out)
}

// NullProgressReporter drains the channel without output. Used in quiet
// mode and tests.
type NullProgressReporter struct{}

// DisplayProgress drains the channel.
func (NullProgressReporter) DisplayProgress(wg *sync.WaitGroup, progressChan <-chan progress.ProgressUpdate, _ int, _ io.Writer) {
	defer wg.Done()
	DrainChannel(progressChan)
}

// ResultPresenter presents the results of a comparison run.
type ResultPresenter interface {
	// PresentComparisonTable shows one line per strategy.
	PresentComparisonTable(results []StrategyResult, out io.Writer)
	// PresentResult shows the details of one successful run.
	PresentResult(result StrategyResult, opts PresentationOptions, out io.Writer)
	// HandleError reports err and returns the exit code.
	HandleError(err error, duration time.Duration, out io.Writer) int
}
