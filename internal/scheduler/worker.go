package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/agbru/mandelpart/internal/comm"
	"github.com/agbru/mandelpart/internal/grid"
	"github.com/agbru/mandelpart/internal/kernel"
)

// WorkerState is where a worker is in its loop.
type WorkerState int

const (
	// StateIdle waits for the next message from the coordinator.
	StateIdle WorkerState = iota
	// StateComputing evaluates the rows of a task.
	StateComputing
	// StateFinished has received Finish and exited.
	StateFinished
)

func (s WorkerState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateComputing:
		return "computing"
	case StateFinished:
		return "finished"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Worker computes the tasks the coordinator sends it until told to finish.
// A Worker is used by a single goroutine.
type Worker struct {
	transport   Transport
	plane       kernel.Plane
	granularity int

	state    WorkerState
	tasks    int
	rows     int
	busy     time.Duration
	commTime time.Duration
}

// NewWorker returns an idle worker.
func NewWorker(t Transport, plane kernel.Plane, granularity int) *Worker {
	return &Worker{transport: t, plane: plane, granularity: granularity}
}

// Run serves tasks until Finish arrives or ctx is done.
func (w *Worker) Run(ctx context.Context) error {
	for {
		start := time.Now()
		env, err := w.transport.Recv(ctx, comm.Root, comm.AnyTag)
		w.commTime += time.Since(start)
		if err != nil {
			return err
		}
		msg, err := Decode(env, w.plane.Width)
		if err != nil {
			return &ProtocolError{Rank: env.Source, Offset: -1, Reason: err.Error()}
		}

		switch msg.Tag {
		case TagData:
			if err := w.serve(ctx, msg.Offset); err != nil {
				return err
			}
		case TagFinish:
			w.state = StateFinished
			return nil
		case TagResult:
			return &ProtocolError{Rank: env.Source, Offset: msg.Offset, Reason: "worker received a result"}
		default:
			return &ProtocolError{Rank: env.Source, Offset: msg.Offset, Reason: fmt.Sprintf("unexpected %s", msg.Tag)}
		}
	}
}

func (w *Worker) serve(ctx context.Context, offset int) error {
	if offset < 0 || offset >= w.plane.Height {
		return &ProtocolError{Rank: comm.Root, Offset: offset, Reason: fmt.Sprintf("offset outside grid of height %d", w.plane.Height)}
	}
	w.state = StateComputing
	start := time.Now()
	n := min(w.granularity, w.plane.Height-offset)
	buf := grid.NewBuffer(n, w.plane.Width)
	w.plane.ComputeRows(offset, n, buf.Cells())
	w.busy += time.Since(start)
	w.tasks++
	w.rows += n
	w.state = StateIdle

	start = time.Now()
	err := send(ctx, w.transport, comm.Root, Result(offset, buf))
	w.commTime += time.Since(start)
	return err
}

// State returns the current state.
func (w *Worker) State() WorkerState { return w.state }

// Tasks returns the number of tasks served.
func (w *Worker) Tasks() int { return w.tasks }

// RowsComputed returns the number of rows computed so far.
func (w *Worker) RowsComputed() int { return w.rows }

// Busy returns the time spent computing.
func (w *Worker) Busy() time.Duration { return w.busy }

// CommTime returns the time spent blocked in Send and Recv.
func (w *Worker) CommTime() time.Duration { return w.commTime }
