package scheduler

import (
	"fmt"

	"github.com/agbru/mandelpart/internal/comm"
)

// Task is a run of consecutive rows handed to one worker.
type Task struct {
	Offset int
	Rows   int
}

// Assignment is a message the coordinator must send to a worker.
type Assignment struct {
	Worker comm.Rank
	Msg    Message
}

// ProtocolError reports a message that breaks the scheduling protocol, such
// as a result for a task that was never dispatched or was already absorbed.
type ProtocolError struct {
	Rank   comm.Rank
	Offset int
	Reason string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("protocol violation from rank %d at offset %d: %s", e.Rank, e.Offset, e.Reason)
}

type taskState int

const (
	taskInFlight taskState = iota + 1
	taskAbsorbed
)

// Coordinator is the coordinator's bookkeeping. It decides what every worker
// receives next but never touches a transport.
//
// active counts tasks in flight, starting from zero; the run is over once the
// last one is absorbed.
type Coordinator struct {
	height      int
	granularity int
	workers     int

	next    int
	active  int
	claimed []bool
	tasks   map[int]taskState
	owner   map[int]comm.Rank

	dispatched    int
	tasksByWorker []int
	rowsByWorker  []int
}

// NewCoordinator prepares scheduling of height rows, granularity rows per task.
func NewCoordinator(height, granularity int) (*Coordinator, error) {
	if height <= 0 {
		return nil, fmt.Errorf("scheduler: height must be positive, got %d", height)
	}
	if granularity <= 0 {
		return nil, fmt.Errorf("scheduler: granularity must be positive, got %d", granularity)
	}
	return &Coordinator{
		height:      height,
		granularity: granularity,
		claimed:     make([]bool, height),
		tasks:       make(map[int]taskState),
		owner:       make(map[int]comm.Rank),
	}, nil
}

// TaskAt returns the task starting at offset. The last task may be short.
func (c *Coordinator) TaskAt(offset int) Task {
	return Task{Offset: offset, Rows: min(c.granularity, c.height-offset)}
}

// TaskCount is the number of tasks the grid splits into.
func (c *Coordinator) TaskCount() int {
	return (c.height + c.granularity - 1) / c.granularity
}

// Seed returns the opening assignments for ranks 1..workers: one task each
// while tasks last, then Finish for the workers left without one.
func (c *Coordinator) Seed(workers int) []Assignment {
	c.workers = workers
	c.tasksByWorker = make([]int, workers+1)
	c.rowsByWorker = make([]int, workers+1)

	out := make([]Assignment, 0, workers)
	for w := 1; w <= workers; w++ {
		rank := comm.Rank(w)
		if m, ok := c.dispatch(rank); ok {
			out = append(out, Assignment{Worker: rank, Msg: m})
			continue
		}
		out = append(out, Assignment{Worker: rank, Msg: Finish(c.next)})
	}
	return out
}

// Absorb records a result from a worker and returns the reply that worker
// gets: the next task, or Finish once every row has been handed out.
func (c *Coordinator) Absorb(from comm.Rank, msg Message) (Assignment, error) {
	if msg.Tag != TagResult {
		return Assignment{}, &ProtocolError{Rank: from, Offset: msg.Offset, Reason: fmt.Sprintf("expected a result, got %s", msg.Tag)}
	}
	switch c.tasks[msg.Offset] {
	case taskInFlight:
	case taskAbsorbed:
		return Assignment{}, &ProtocolError{Rank: from, Offset: msg.Offset, Reason: "result already absorbed"}
	default:
		return Assignment{}, &ProtocolError{Rank: from, Offset: msg.Offset, Reason: "no task was dispatched at this offset"}
	}
	if owner := c.owner[msg.Offset]; owner != from {
		return Assignment{}, &ProtocolError{Rank: from, Offset: msg.Offset, Reason: fmt.Sprintf("task belongs to rank %d", owner)}
	}
	want := c.TaskAt(msg.Offset).Rows
	if msg.Rows == nil || msg.Rows.Rows() != want {
		got := 0
		if msg.Rows != nil {
			got = msg.Rows.Rows()
		}
		return Assignment{}, &ProtocolError{Rank: from, Offset: msg.Offset, Reason: fmt.Sprintf("result has %d rows, want %d", got, want)}
	}

	c.tasks[msg.Offset] = taskAbsorbed
	c.active--
	if int(from) < len(c.rowsByWorker) {
		c.rowsByWorker[from] += want
	}

	if m, ok := c.dispatch(from); ok {
		return Assignment{Worker: from, Msg: m}, nil
	}
	return Assignment{Worker: from, Msg: Finish(c.next)}, nil
}

func (c *Coordinator) dispatch(to comm.Rank) (Message, bool) {
	if c.next >= c.height {
		return Message{}, false
	}
	t := c.TaskAt(c.next)
	for r := t.Offset; r < t.Offset+t.Rows; r++ {
		// Offsets only move forward, so a claimed row here is a bookkeeping bug.
		if c.claimed[r] {
			panic(fmt.Sprintf("scheduler: row %d claimed twice", r))
		}
		c.claimed[r] = true
	}
	c.tasks[t.Offset] = taskInFlight
	c.owner[t.Offset] = to
	c.next += t.Rows
	c.active++
	c.dispatched++
	if int(to) < len(c.tasksByWorker) {
		c.tasksByWorker[to]++
	}
	return Data(t.Offset), true
}

// Done reports whether no task is in flight. Before Seed it is trivially true.
func (c *Coordinator) Done() bool { return c.active == 0 }

// Active returns the number of tasks in flight.
func (c *Coordinator) Active() int { return c.active }

// Next returns the first row not yet handed out.
func (c *Coordinator) Next() int { return c.next }

// Dispatched returns the number of tasks handed out so far.
func (c *Coordinator) Dispatched() int { return c.dispatched }

// Claimed reports whether row belongs to a dispatched task.
func (c *Coordinator) Claimed(row int) bool { return c.claimed[row] }

// TasksByWorker returns how many tasks each rank was given, indexed by rank.
func (c *Coordinator) TasksByWorker() []int { return append([]int(nil), c.tasksByWorker...) }

// RowsByWorker returns how many rows each rank delivered, indexed by rank.
func (c *Coordinator) RowsByWorker() []int { return append([]int(nil), c.rowsByWorker...) }
