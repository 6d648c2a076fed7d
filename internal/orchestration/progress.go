package orchestration

import (
	"time"

	"github.com/agbru/mandelpart/internal/format"
	"github.com/agbru/mandelpart/internal/progress"
)

// ProgressAggregator folds per-strategy progress updates into an average
// and an ETA.
type ProgressAggregator struct {
	state         *format.ProgressWithETA
	numStrategies int
}

// NewProgressAggregator returns nil when numStrategies <= 0.
func NewProgressAggregator(numStrategies int) *ProgressAggregator {
	if numStrategies <= 0 {
		return nil
	}
	return &ProgressAggregator{
		state:         format.NewProgressWithETA(numStrategies),
		numStrategies: numStrategies,
	}
}

// AggregatedProgress is the result of folding a single update.
type AggregatedProgress struct {
	StrategyIndex   int
	Value           float64
	AverageProgress float64
	ETA             time.Duration
}

// Update folds update into the aggregate.
func (a *ProgressAggregator) Update(update progress.ProgressUpdate) AggregatedProgress {
	avg, eta := a.state.UpdateWithETA(update.StrategyIndex, update.Value)
	return AggregatedProgress{
		StrategyIndex:   update.StrategyIndex,
		Value:           update.Value,
		AverageProgress: avg,
		ETA:             eta,
	}
}

// CalculateAverage returns the current average without updating.
func (a *ProgressAggregator) CalculateAverage() float64 {
	return a.state.CalculateAverage()
}

// GetETA returns the current estimate without updating.
func (a *ProgressAggregator) GetETA() time.Duration {
	return a.state.GetETA()
}

// NumStrategies returns the number of strategies tracked.
func (a *ProgressAggregator) NumStrategies() int {
	return a.numStrategies
}

// IsMultiStrategy reports whether more than one strategy is tracked.
func (a *ProgressAggregator) IsMultiStrategy() bool {
	return a.numStrategies > 1
}

// DrainChannel discards every update until the channel is closed.
func DrainChannel(progressChan <-chan progress.ProgressUpdate) {
	for range progressChan {
	}
}
