package scheduler

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/agbru/mandelpart/internal/comm"
	"github.com/agbru/mandelpart/internal/grid"
)

func rowsOf(n int) *grid.Buffer { return grid.NewBuffer(n, 2) }

func TestNewCoordinatorValidation(t *testing.T) {
	t.Parallel()
	if _, err := NewCoordinator(0, 1); err == nil {
		t.Error("height 0 accepted")
	}
	if _, err := NewCoordinator(4, 0); err == nil {
		t.Error("granularity 0 accepted")
	}
}

func TestSeedFinishesSurplusWorkers(t *testing.T) {
	t.Parallel()
	c, _ := NewCoordinator(2, 1)
	seed := c.Seed(4)

	want := []Message{Data(0), Data(1), Finish(2), Finish(2)}
	if len(seed) != len(want) {
		t.Fatalf("Seed returned %d assignments, want %d", len(seed), len(want))
	}
	for i, a := range seed {
		if a.Worker != comm.Rank(i+1) {
			t.Errorf("assignment %d goes to rank %d, want %d", i, a.Worker, i+1)
		}
		if a.Msg.Tag != want[i].Tag || a.Msg.Offset != want[i].Offset {
			t.Errorf("assignment %d = %v, want %v", i, a.Msg, want[i])
		}
	}
	if c.Active() != 2 {
		t.Errorf("Active() = %d, want 2", c.Active())
	}
}

func TestCoordinatorWalkthrough(t *testing.T) {
	t.Parallel()
	// Five rows, two rows per task, two workers: tasks at 0, 2 and a short one at 4.
	c, _ := NewCoordinator(5, 2)
	if c.TaskCount() != 3 {
		t.Fatalf("TaskCount() = %d, want 3", c.TaskCount())
	}
	seed := c.Seed(2)
	if seed[0].Msg.Offset != 0 || seed[1].Msg.Offset != 2 {
		t.Fatalf("seed = %v", seed)
	}

	// Rank 2 answers first and gets the last task.
	next, err := c.Absorb(2, Result(2, rowsOf(2)))
	if err != nil {
		t.Fatal(err)
	}
	if next.Worker != 2 || next.Msg.Tag != TagData || next.Msg.Offset != 4 {
		t.Fatalf("reply = %+v, want data(4) to rank 2", next)
	}
	if got := c.TaskAt(4).Rows; got != 1 {
		t.Errorf("last task has %d rows, want 1", got)
	}

	next, err = c.Absorb(1, Result(0, rowsOf(2)))
	if err != nil {
		t.Fatal(err)
	}
	if next.Msg.Tag != TagFinish {
		t.Fatalf("reply to rank 1 = %v, want finish", next.Msg)
	}
	if c.Done() {
		t.Fatal("Done() before the last result")
	}

	next, err = c.Absorb(2, Result(4, rowsOf(1)))
	if err != nil {
		t.Fatal(err)
	}
	if next.Msg.Tag != TagFinish || !c.Done() {
		t.Fatalf("reply = %v, done = %v", next.Msg, c.Done())
	}

	if got := c.TasksByWorker(); got[1] != 1 || got[2] != 2 {
		t.Errorf("TasksByWorker() = %v", got)
	}
	if got := c.RowsByWorker(); got[1] != 2 || got[2] != 3 {
		t.Errorf("RowsByWorker() = %v", got)
	}
}

func TestAbsorbProtocolErrors(t *testing.T) {
	t.Parallel()
	setup := func() *Coordinator {
		c, _ := NewCoordinator(6, 2)
		c.Seed(2) // rank 1 has offset 0, rank 2 has offset 2
		return c
	}

	tests := []struct {
		name string
		run  func(c *Coordinator) error
	}{
		{"never dispatched", func(c *Coordinator) error {
			_, err := c.Absorb(1, Result(4, rowsOf(2)))
			return err
		}},
		{"unaligned offset", func(c *Coordinator) error {
			_, err := c.Absorb(1, Result(1, rowsOf(2)))
			return err
		}},
		{"absorbed twice", func(c *Coordinator) error {
			if _, err := c.Absorb(1, Result(0, rowsOf(2))); err != nil {
				return nil
			}
			_, err := c.Absorb(1, Result(0, rowsOf(2)))
			return err
		}},
		{"wrong worker", func(c *Coordinator) error {
			_, err := c.Absorb(2, Result(0, rowsOf(2)))
			return err
		}},
		{"short result", func(c *Coordinator) error {
			_, err := c.Absorb(1, Result(0, rowsOf(1)))
			return err
		}},
		{"not a result", func(c *Coordinator) error {
			_, err := c.Absorb(1, Data(0))
			return err
		}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.run(setup())
			var perr *ProtocolError
			if !errors.As(err, &perr) {
				t.Fatalf("error = %v, want *ProtocolError", err)
			}
		})
	}
}

// simulate plays the protocol with workers answering in random order and
// checks every invariant along the way.
func simulate(height, granularity, workers int, seed int64) bool {
	c, err := NewCoordinator(height, granularity)
	if err != nil {
		return false
	}
	rng := rand.New(rand.NewSource(seed))

	covered := make([]int, height)
	offsetsSent := make(map[int]bool)
	finished := make(map[comm.Rank]int)
	var inFlight []Assignment

	handle := func(a Assignment) bool {
		switch a.Msg.Tag {
		case TagData:
			if offsetsSent[a.Msg.Offset] {
				return false
			}
			offsetsSent[a.Msg.Offset] = true
			inFlight = append(inFlight, a)
		case TagFinish:
			finished[a.Worker]++
		default:
			return false
		}
		return true
	}

	for _, a := range c.Seed(workers) {
		if !handle(a) {
			return false
		}
	}
	if c.Active() > workers || c.Active() > c.TaskCount() {
		return false
	}

	for steps := 0; len(inFlight) > 0; steps++ {
		if steps > height+workers {
			return false
		}
		i := rng.Intn(len(inFlight))
		a := inFlight[i]
		inFlight = append(inFlight[:i], inFlight[i+1:]...)

		task := c.TaskAt(a.Msg.Offset)
		for r := task.Offset; r < task.Offset+task.Rows; r++ {
			covered[r]++
		}
		next, err := c.Absorb(a.Worker, Result(task.Offset, rowsOf(task.Rows)))
		if err != nil || next.Worker != a.Worker || !handle(next) {
			return false
		}
		if c.Active() != len(inFlight) {
			return false
		}
	}

	if !c.Done() || c.Dispatched() != c.TaskCount() {
		return false
	}
	for _, n := range covered {
		if n != 1 {
			return false
		}
	}
	for w := 1; w <= workers; w++ {
		if finished[comm.Rank(w)] != 1 {
			return false
		}
	}
	return true
}

func TestCoordinatorProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("every row is delivered exactly once and every worker finishes once", prop.ForAll(
		simulate,
		gen.IntRange(1, 64),
		gen.IntRange(1, 8),
		gen.IntRange(1, 12),
		gen.Int64(),
	))

	properties.TestingRun(t)
}
