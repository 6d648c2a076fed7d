package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/agbru/mandelpart/internal/comm"
	"github.com/agbru/mandelpart/internal/grid"
	"github.com/agbru/mandelpart/internal/kernel"
)

// Hooks observe the coordinator loop. Nil fields are skipped. They run on the
// coordinator's goroutine and must not block.
type Hooks struct {
	// Dispatched is called after a task has been sent to a worker.
	Dispatched func(worker comm.Rank, task Task)
	// Completed is called once a task's rows have been placed, with the time
	// elapsed since the task was dispatched.
	Completed func(worker comm.Rank, task Task, latency time.Duration)
}

func (h Hooks) dispatched(w comm.Rank, t Task) {
	if h.Dispatched != nil {
		h.Dispatched(w, t)
	}
}

func (h Hooks) completed(w comm.Rank, t Task, d time.Duration) {
	if h.Completed != nil {
		h.Completed(w, t, d)
	}
}

// Report is what the coordinator returns once every row is in place.
type Report struct {
	Grid *grid.Grid
	// TasksByWorker and RowsByWorker are indexed by rank.
	TasksByWorker []int
	RowsByWorker  []int
	Dispatched    int
	// CommTime is the time the coordinator spent blocked in Send and Recv.
	CommTime time.Duration
}

// RunCoordinator schedules every row of plane over the workers reachable
// through t and assembles the grid. With a single rank it computes the grid
// itself without any messaging.
func RunCoordinator(ctx context.Context, t Transport, plane kernel.Plane, granularity int, hooks Hooks) (*Report, error) {
	if t.Size() == 1 {
		return computeAlone(plane, hooks)
	}

	c, err := NewCoordinator(plane.Height, granularity)
	if err != nil {
		return nil, err
	}
	g := grid.New(plane.Height, plane.Width)
	sentAt := make(map[int]time.Time, c.TaskCount())
	var commTime time.Duration

	reply := func(a Assignment) error {
		start := time.Now()
		err := send(ctx, t, a.Worker, a.Msg)
		commTime += time.Since(start)
		if err != nil {
			return fmt.Errorf("send %s to rank %d: %w", a.Msg, a.Worker, err)
		}
		if a.Msg.Tag == TagData {
			sentAt[a.Msg.Offset] = time.Now()
			hooks.dispatched(a.Worker, c.TaskAt(a.Msg.Offset))
		}
		return nil
	}

	for _, a := range c.Seed(t.Size() - 1) {
		if err := reply(a); err != nil {
			return nil, err
		}
	}

	for !c.Done() {
		start := time.Now()
		env, err := t.Recv(ctx, comm.AnySource, comm.AnyTag)
		commTime += time.Since(start)
		if err != nil {
			return nil, fmt.Errorf("receive result (%d in flight): %w", c.Active(), err)
		}
		msg, err := Decode(env, plane.Width)
		if err != nil {
			return nil, &ProtocolError{Rank: env.Source, Offset: -1, Reason: err.Error()}
		}
		next, err := c.Absorb(env.Source, msg)
		if err != nil {
			return nil, err
		}
		if err := reply(next); err != nil {
			return nil, err
		}
		if err := grid.PlaceAt(g, msg.Offset, msg.Rows); err != nil {
			return nil, err
		}
		hooks.completed(env.Source, c.TaskAt(msg.Offset), time.Since(sentAt[msg.Offset]))
	}

	if !g.Complete() {
		return nil, fmt.Errorf("scheduler: rows %v missing after all tasks completed", g.Missing())
	}
	return &Report{
		Grid:          g,
		TasksByWorker: c.TasksByWorker(),
		RowsByWorker:  c.RowsByWorker(),
		Dispatched:    c.Dispatched(),
		CommTime:      commTime,
	}, nil
}

func computeAlone(plane kernel.Plane, hooks Hooks) (*Report, error) {
	start := time.Now()
	buf := grid.NewBuffer(plane.Height, plane.Width)
	plane.ComputeRows(0, plane.Height, buf.Cells())

	g := grid.New(plane.Height, plane.Width)
	if err := g.SetRows(0, buf); err != nil {
		return nil, err
	}
	hooks.completed(comm.Root, Task{Offset: 0, Rows: plane.Height}, time.Since(start))
	return &Report{
		Grid:          g,
		TasksByWorker: []int{0},
		RowsByWorker:  []int{plane.Height},
	}, nil
}
