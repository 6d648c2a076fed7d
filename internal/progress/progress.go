// Package progress defines the progress updates strategies emit while they
// run and the callbacks that carry them to the presentation layer.
package progress

import (
	"sync"
)

// ProgressUpdate is a progress report from one running strategy.
type ProgressUpdate struct {
	// StrategyIndex identifies the strategy within the current run.
	StrategyIndex int
	// Value is the completed fraction, from 0.0 to 1.0.
	Value float64
}

// ProgressCallback receives the completed fraction of a single strategy.
type ProgressCallback func(progress float64)

// ChannelCallback returns a callback that forwards values to ch tagged with
// index. Sends never block: when the consumer lags behind, updates are
// dropped, and the next one supersedes them anyway.
func ChannelCallback(ch chan<- ProgressUpdate, index int) ProgressCallback {
	return func(v float64) {
		select {
		case ch <- ProgressUpdate{StrategyIndex: index, Value: v}:
		default:
		}
	}
}

// ReportThreshold is the minimum change in progress that triggers a report.
const ReportThreshold = 0.01

// RowCounter turns completed rows into progress values. Several ranks may add
// to the same counter concurrently.
type RowCounter struct {
	mu           sync.Mutex
	total        int
	done         int
	lastReported float64
	report       ProgressCallback
}

// NewRowCounter tracks total rows and reports through report, which may be
// nil.
func NewRowCounter(total int, report ProgressCallback) *RowCounter {
	return &RowCounter{total: total, report: report, lastReported: -1}
}

// Add records rows more completed rows. The callback runs under the
// counter's lock, so reports arrive in increasing order and must not block.
func (c *RowCounter) Add(rows int) {
	if c == nil || rows <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.done += rows
	if c.done > c.total {
		c.done = c.total
	}
	v := c.fractionLocked()
	if c.report != nil && (v-c.lastReported >= ReportThreshold || v == 1.0) {
		c.lastReported = v
		c.report(v)
	}
}

// Done returns the number of rows recorded so far.
func (c *RowCounter) Done() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.done
}

// Fraction returns the completed fraction.
func (c *RowCounter) Fraction() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fractionLocked()
}

func (c *RowCounter) fractionLocked() float64 {
	if c.total <= 0 {
		return 1.0
	}
	return float64(c.done) / float64(c.total)
}
