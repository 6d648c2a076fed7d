package metrics

import (
	"runtime"
	"time"
)

// MemorySnapshot holds a point-in-time memory reading.
type MemorySnapshot struct {
	HeapAlloc    uint64 // bytes in use
	TotalAlloc   uint64 // cumulative bytes allocated
	Sys          uint64 // total bytes obtained from the OS
	NumGC        uint32
	PauseTotalNs uint64
}

// MemoryDelta is what happened to the heap between two snapshots.
type MemoryDelta struct {
	Allocated  uint64
	PeakHeap   uint64
	GCCycles   uint32
	PauseTotal time.Duration
}

// MemoryCollector reads runtime memory statistics.
type MemoryCollector struct{}

// NewMemoryCollector creates a new memory collector.
func NewMemoryCollector() *MemoryCollector {
	return &MemoryCollector{}
}

// Snapshot reads current memory statistics.
func (mc *MemoryCollector) Snapshot() MemorySnapshot {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return MemorySnapshot{
		HeapAlloc:    m.HeapAlloc,
		TotalAlloc:   m.TotalAlloc,
		Sys:          m.Sys,
		NumGC:        m.NumGC,
		PauseTotalNs: m.PauseTotalNs,
	}
}

// Since compares the current statistics with before. PeakHeap is the larger
// of the two heap readings.
func (mc *MemoryCollector) Since(before MemorySnapshot) MemoryDelta {
	now := mc.Snapshot()
	return MemoryDelta{
		Allocated:  now.TotalAlloc - before.TotalAlloc,
		PeakHeap:   max(now.HeapAlloc, before.HeapAlloc),
		GCCycles:   now.NumGC - before.NumGC,
		PauseTotal: time.Duration(now.PauseTotalNs - before.PauseTotalNs),
	}
}
