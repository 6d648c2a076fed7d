package cli

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/briandowns/spinner"

	"github.com/agbru/mandelpart/internal/format"
	"github.com/agbru/mandelpart/internal/orchestration"
	"github.com/agbru/mandelpart/internal/progress"
	"github.com/agbru/mandelpart/internal/ui"
)

const (
	// ProgressRefreshRate is how often the spinner suffix is redrawn.
	ProgressRefreshRate = 200 * time.Millisecond
	// ProgressBarWidth is the width in characters of the progress bar.
	ProgressBarWidth = 40
)

// Spinner abstracts the terminal spinner so DisplayProgress can be tested
// without a terminal.
type Spinner interface {
	Start()
	Stop()
	// UpdateSuffix sets the text displayed after the spinner.
	UpdateSuffix(suffix string)
}

// realSpinner adapts spinner.Spinner to Spinner.
type realSpinner struct {
	s *spinner.Spinner
}

func (rs *realSpinner) Start() { rs.s.Start() }

func (rs *realSpinner) Stop() { rs.s.Stop() }

// UpdateSuffix takes the spinner lock since the animation goroutine reads
// the suffix on every frame.
func (rs *realSpinner) UpdateSuffix(suffix string) {
	rs.s.Lock()
	rs.s.Suffix = suffix
	rs.s.Unlock()
}

var newSpinner = func(options ...spinner.Option) Spinner {
	return &realSpinner{spinner.New(spinner.CharSets[11], ProgressRefreshRate, options...)}
}

// DisplayProgress shows a spinner with an aggregated progress bar and ETA
// until progressChan is closed, then prints the final state on its own line.
// It calls wg.Done on return.
func DisplayProgress(wg *sync.WaitGroup, progressChan <-chan progress.ProgressUpdate, numStrategies int, out io.Writer) {
	defer wg.Done()
	agg := orchestration.NewProgressAggregator(numStrategies)
	if agg == nil {
		orchestration.DrainChannel(progressChan)
		return
	}

	label := "Computing"
	if agg.IsMultiStrategy() {
		label = fmt.Sprintf("Comparing %d strategies", agg.NumStrategies())
	}
	suffix := func(avg float64, eta time.Duration) string {
		return fmt.Sprintf(" %s %s", label, format.FormatProgressBarWithETA(avg, eta, ProgressBarWidth))
	}

	s := newSpinner(spinner.WithWriter(out))
	s.UpdateSuffix(suffix(0, 0))
	s.Start()

	ticker := time.NewTicker(ProgressRefreshRate)
	defer ticker.Stop()
	for {
		select {
		case update, ok := <-progressChan:
			if !ok {
				s.Stop()
				fmt.Fprintf(out, "%s%s%s\n", ui.ColorGreen(), suffix(agg.CalculateAverage(), 0), ui.ColorReset())
				return
			}
			agg.Update(update)
		case <-ticker.C:
			s.UpdateSuffix(suffix(agg.CalculateAverage(), agg.GetETA()))
		}
	}
}
