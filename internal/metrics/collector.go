package metrics

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

const namespace = "mandelpart"

// Collector records what every strategy run did. It keeps its own registry so
// several collectors can coexist in one process. All methods are safe for
// concurrent use.
type Collector struct {
	registry *prometheus.Registry
	rows     *prometheus.CounterVec
	tasks    *prometheus.CounterVec
	duration *prometheus.GaugeVec

	mu      sync.Mutex
	latency map[string]*LatencyRecorder
}

// NewCollector creates a collector with its metrics registered.
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		rows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_computed_total",
			Help:      "Grid rows computed, by strategy and rank.",
		}, []string{"strategy", "rank"}),
		tasks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tasks_dispatched_total",
			Help:      "Dynamic tasks handed to workers, by strategy.",
		}, []string{"strategy"}),
		duration: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of the last run of each strategy.",
		}, []string{"strategy"}),
		latency: make(map[string]*LatencyRecorder),
	}
	c.registry.MustRegister(c.rows, c.tasks, c.duration)
	return c
}

// Registry exposes the underlying registry.
func (c *Collector) Registry() *prometheus.Registry { return c.registry }

// RowsComputed adds rows to the count of rank under strategy.
func (c *Collector) RowsComputed(strategy string, rank int, rows int) {
	c.rows.WithLabelValues(strategy, strconv.Itoa(rank)).Add(float64(rows))
}

// TaskDispatched counts one dynamic task.
func (c *Collector) TaskDispatched(strategy string) {
	c.tasks.WithLabelValues(strategy).Inc()
}

// TaskCompleted records the round-trip latency of one dynamic task.
func (c *Collector) TaskCompleted(strategy string, latency time.Duration) {
	c.recorder(strategy).Record(latency)
}

// ObserveRun records the duration of a strategy run.
func (c *Collector) ObserveRun(strategy string, d time.Duration) {
	c.duration.WithLabelValues(strategy).Set(d.Seconds())
}

func (c *Collector) recorder(strategy string) *LatencyRecorder {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.latency[strategy]
	if !ok {
		r = NewLatencyRecorder()
		c.latency[strategy] = r
	}
	return r
}

// Latency summarises the task latencies recorded for strategy. ok is false
// when none were recorded.
func (c *Collector) Latency(strategy string) (s LatencySummary, ok bool) {
	c.mu.Lock()
	r, found := c.latency[strategy]
	c.mu.Unlock()
	if !found {
		return LatencySummary{}, false
	}
	s = r.Summary()
	return s, s.Count > 0
}

// WriteText writes every metric in the Prometheus text exposition format.
func (c *Collector) WriteText(w io.Writer) error {
	families, err := c.registry.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("encode %s: %w", mf.GetName(), err)
		}
	}
	return nil
}

// WriteFile writes the text exposition to path.
func (c *Collector) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create metrics file: %w", err)
	}
	if err := c.WriteText(f); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}
