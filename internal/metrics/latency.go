package metrics

import (
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

const (
	minLatencyMicros = 1
	maxLatencyMicros = int64(time.Hour / time.Microsecond)
	latencySigFigs   = 3
)

// LatencySummary is a digest of recorded latencies.
type LatencySummary struct {
	Count int64
	P50   time.Duration
	P99   time.Duration
	Max   time.Duration
}

// LatencyRecorder is an HDR histogram of durations at microsecond resolution.
type LatencyRecorder struct {
	mu sync.Mutex
	h  *hdrhistogram.Histogram
}

// NewLatencyRecorder tracks latencies from 1µs to one hour.
func NewLatencyRecorder() *LatencyRecorder {
	return &LatencyRecorder{h: hdrhistogram.New(minLatencyMicros, maxLatencyMicros, latencySigFigs)}
}

// Record adds d, clamped to the trackable range.
func (l *LatencyRecorder) Record(d time.Duration) {
	v := d.Microseconds()
	if v < minLatencyMicros {
		v = minLatencyMicros
	}
	if v > maxLatencyMicros {
		v = maxLatencyMicros
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	// In range by construction.
	_ = l.h.RecordValue(v)
}

// Summary returns count, median, 99th percentile and maximum.
func (l *LatencyRecorder) Summary() LatencySummary {
	l.mu.Lock()
	defer l.mu.Unlock()
	return LatencySummary{
		Count: l.h.TotalCount(),
		P50:   micros(l.h.ValueAtQuantile(50)),
		P99:   micros(l.h.ValueAtQuantile(99)),
		Max:   micros(l.h.Max()),
	}
}

func micros(v int64) time.Duration { return time.Duration(v) * time.Microsecond }
