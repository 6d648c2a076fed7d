package strategy

import (
	"context"
	"time"

	"github.com/agbru/mandelpart/internal/comm"
	"github.com/agbru/mandelpart/internal/grid"
	"github.com/agbru/mandelpart/internal/kernel"
	"github.com/agbru/mandelpart/internal/partition"
)

const (
	BlockName        = "block"
	CyclicName       = "cyclic"
	MasterWorkerName = "mw"
)

// Block gives every rank one contiguous run of height/procs rows. The
// coordinator gathers the runs in rank order and computes the leftover rows
// itself.
type Block struct{}

func (Block) Name() string        { return BlockName }
func (Block) Description() string { return "Static block partition" }

func (Block) Run(ctx context.Context, plane kernel.Plane, opts Options) (*Result, error) {
	r, err := newRun(BlockName, plane, opts)
	if err != nil {
		return nil, err
	}
	layout, err := partition.NewBlock(plane.Height, opts.Procs)
	if err != nil {
		return nil, err
	}
	world, err := r.world()
	if err != nil {
		return nil, err
	}

	g := grid.New(plane.Height, plane.Width)
	var commTime time.Duration
	err = world.Run(ctx, func(ctx context.Context, ep *comm.Endpoint) error {
		own := layout.Range(int(ep.Rank()))
		local := grid.NewBuffer(own.Count, plane.Width)
		plane.ComputeRows(own.Start, own.Count, local.Cells())
		r.computed(ep.Rank(), own.Count)

		commStart := time.Now()
		parts, err := ep.Gather(ctx, comm.Root, local.Cells())
		if err != nil || ep.Rank() != comm.Root {
			return err
		}
		commTime = time.Since(commStart)

		gathered, err := joinParts(plane.Width, parts)
		if err != nil {
			return err
		}
		if err := grid.PlaceBlocks(g, gathered); err != nil {
			return err
		}
		return r.remainder(g, layout.Remainder())
	})
	if err != nil {
		return nil, err
	}
	return r.result(g, commTime, 0)
}

// Cyclic deals rows round-robin: rank k computes k, k+procs, k+2*procs and so
// on. The gathered buffer is grouped by rank, so the coordinator maps it back
// to row order before computing the leftover rows.
type Cyclic struct{}

func (Cyclic) Name() string        { return CyclicName }
func (Cyclic) Description() string { return "Static cyclic partition" }

func (Cyclic) Run(ctx context.Context, plane kernel.Plane, opts Options) (*Result, error) {
	r, err := newRun(CyclicName, plane, opts)
	if err != nil {
		return nil, err
	}
	layout, err := partition.NewCyclic(plane.Height, opts.Procs)
	if err != nil {
		return nil, err
	}
	world, err := r.world()
	if err != nil {
		return nil, err
	}

	g := grid.New(plane.Height, plane.Width)
	var commTime time.Duration
	err = world.Run(ctx, func(ctx context.Context, ep *comm.Endpoint) error {
		local := computeCyclic(plane, layout, int(ep.Rank()))
		r.computed(ep.Rank(), local.Rows())

		commStart := time.Now()
		parts, err := ep.Gather(ctx, comm.Root, local.Cells())
		if err != nil || ep.Rank() != comm.Root {
			return err
		}
		commTime = time.Since(commStart)

		gathered, err := joinParts(plane.Width, parts)
		if err != nil {
			return err
		}
		if err := grid.ReassembleCyclic(g, gathered, layout.Ranks, layout.JobSize); err != nil {
			return err
		}
		return r.remainder(g, layout.Remainder())
	})
	if err != nil {
		return nil, err
	}
	return r.result(g, commTime, 0)
}

// computeCyclic evaluates the rows rank owns, in local order.
func computeCyclic(plane kernel.Plane, layout partition.Cyclic, rank int) *grid.Buffer {
	local := grid.NewBuffer(layout.JobSize, plane.Width)
	for i, row := range layout.Rows(rank) {
		plane.ComputeRow(row, local.Row(i))
	}
	return local
}

func joinParts(width int, parts [][]int32) (*grid.Buffer, error) {
	bufs := make([]*grid.Buffer, len(parts))
	for i, p := range parts {
		b, err := grid.BufferFromCells(width, p)
		if err != nil {
			return nil, err
		}
		bufs[i] = b
	}
	return grid.Concat(width, bufs...)
}
