package strategy

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/agbru/mandelpart/internal/comm"
	"github.com/agbru/mandelpart/internal/grid"
	"github.com/agbru/mandelpart/internal/kernel"
	"github.com/agbru/mandelpart/internal/logging"
	"github.com/agbru/mandelpart/internal/progress"
)

// Strategy computes a whole grid across a number of ranks.
type Strategy interface {
	// Name is the short identifier used on the command line and in file names.
	Name() string
	// Description is a human readable label.
	Description() string
	// Run computes plane over opts.Procs ranks.
	Run(ctx context.Context, plane kernel.Plane, opts Options) (*Result, error)
}

// Observer receives per-run accounting. Implementations must be safe for
// concurrent use since every rank reports from its own goroutine.
type Observer interface {
	RowsComputed(strategy string, rank int, rows int)
	TaskDispatched(strategy string)
	TaskCompleted(strategy string, latency time.Duration)
}

// Options configures a strategy run.
type Options struct {
	// Procs is the number of ranks, coordinator included.
	Procs int
	// Granularity is the number of rows per dynamic task.
	Granularity int
	// Progress, when set, receives the completed fraction.
	Progress progress.ProgressCallback
	Observer Observer
	Logger   logging.Logger
}

// DefaultGranularity is the dynamic task size when none is configured.
const DefaultGranularity = 1

func (o Options) validate(height int) error {
	if o.Procs <= 0 {
		return fmt.Errorf("process count must be positive, got %d", o.Procs)
	}
	if o.Granularity < 0 {
		return fmt.Errorf("granularity must not be negative, got %d", o.Granularity)
	}
	if height <= 0 {
		return fmt.Errorf("height must be positive, got %d", height)
	}
	return nil
}

func (o Options) granularity() int {
	if o.Granularity <= 0 {
		return DefaultGranularity
	}
	return o.Granularity
}

func (o Options) logger(name string) logging.Logger {
	if o.Logger == nil {
		return logging.Nop()
	}
	return logging.WithFields(o.Logger, logging.String("strategy", name))
}

// Result is the outcome of one strategy run.
type Result struct {
	Grid *grid.Grid
	// RowsByRank is the per-rank load, indexed by rank.
	RowsByRank []int
	// CommTime is the coordinator's time in collective or protocol traffic.
	CommTime time.Duration
	// TotalTime covers computation and communication at the coordinator.
	TotalTime time.Duration
	// TasksDispatched is zero for the static strategies.
	TasksDispatched int
}

// run carries the per-call plumbing shared by the strategies.
type run struct {
	name     string
	plane    kernel.Plane
	opts     Options
	log      logging.Logger
	counter  *progress.RowCounter
	start    time.Time
	mu       sync.Mutex
	rows     []int
	observer Observer
}

func newRun(name string, plane kernel.Plane, opts Options) (*run, error) {
	if err := opts.validate(plane.Height); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return &run{
		name:     name,
		plane:    plane,
		opts:     opts,
		log:      opts.logger(name),
		counter:  progress.NewRowCounter(plane.Height, opts.Progress),
		start:    time.Now(),
		rows:     make([]int, opts.Procs),
		observer: opts.Observer,
	}, nil
}

// workerInbox bounds every non-root inbox. A worker never has more than one
// assignment outstanding and the static strategies only send to the root.
const workerInbox = 1

func (r *run) world() (*comm.World, error) {
	return comm.NewWorld(r.opts.Procs, comm.WithLogger(r.log), comm.WithInboxCapacity(workerInbox))
}

// computed books rows computed by rank.
func (r *run) computed(rank comm.Rank, rows int) {
	if rows <= 0 {
		return
	}
	r.mu.Lock()
	r.rows[rank] += rows
	r.mu.Unlock()
	r.counter.Add(rows)
	if r.observer != nil {
		r.observer.RowsComputed(r.name, int(rank), rows)
	}
}

// remainder computes rows at the coordinator and writes them into g.
func (r *run) remainder(g *grid.Grid, rows grid.RowRange) error {
	if rows.Empty() {
		return nil
	}
	buf := grid.NewBuffer(rows.Count, r.plane.Width)
	r.plane.ComputeRows(rows.Start, rows.Count, buf.Cells())
	if err := g.SetRows(rows.Start, buf); err != nil {
		return err
	}
	r.computed(comm.Root, rows.Count)
	return nil
}

func (r *run) result(g *grid.Grid, commTime time.Duration, tasks int) (*Result, error) {
	if !g.Complete() {
		return nil, fmt.Errorf("%s: rows %v were never computed", r.name, g.Missing())
	}
	total := time.Since(r.start)
	r.mu.Lock()
	rows := append([]int(nil), r.rows...)
	r.mu.Unlock()
	r.log.Debug("strategy finished",
		logging.Int("height", r.plane.Height),
		logging.Int("width", r.plane.Width),
		logging.Int("procs", r.opts.Procs),
		logging.String("comm", commTime.String()),
		logging.String("total", total.String()))
	return &Result{Grid: g, RowsByRank: rows, CommTime: commTime, TotalTime: total, TasksDispatched: tasks}, nil
}

// Factory resolves strategies by name.
type Factory interface {
	Get(name string) (Strategy, error)
	// List returns the registered names in sorted order.
	List() []string
}

// Registry is the default Factory. It is safe for concurrent use.
type Registry struct {
	mu         sync.RWMutex
	strategies map[string]Strategy
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{strategies: make(map[string]Strategy)}
}

// NewDefaultFactory returns a registry holding block, cyclic and mw.
func NewDefaultFactory() *Registry {
	r := NewRegistry()
	r.Register(Block{})
	r.Register(Cyclic{})
	r.Register(MasterWorker{})
	return r
}

// Register adds s under its name, replacing any previous entry.
func (r *Registry) Register(s Strategy) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.strategies[s.Name()] = s
}

// Get returns the strategy registered under name.
func (r *Registry) Get(name string) (Strategy, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.strategies[name]
	if !ok {
		return nil, fmt.Errorf("unknown strategy %q", name)
	}
	return s, nil
}

// List returns the registered names in sorted order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.strategies))
	for name := range r.strategies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
