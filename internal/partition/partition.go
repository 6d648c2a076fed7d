// Package partition computes static row ownership for the block and cyclic
// strategies. Ownership is a pure function of (height, ranks, rank), so every
// rank can work out its own rows without talking to anyone.
package partition

import (
	"fmt"

	"github.com/agbru/mandelpart/internal/grid"
)

// JobSize is the number of rows every rank owns: height / ranks.
func JobSize(height, ranks int) int {
	return height / ranks
}

// Remainder is the range of rows no rank owns. The coordinator computes them
// directly once the gather has completed.
func Remainder(height, ranks int) grid.RowRange {
	start := JobSize(height, ranks) * ranks
	return grid.RowRange{Start: start, Count: height - start}
}

func validate(height, ranks int) error {
	if height <= 0 {
		return fmt.Errorf("partition: height must be positive, got %d", height)
	}
	if ranks <= 0 {
		return fmt.Errorf("partition: rank count must be positive, got %d", ranks)
	}
	return nil
}

// Block assigns each rank one contiguous run of JobSize rows.
type Block struct {
	Height  int
	Ranks   int
	JobSize int
}

// NewBlock returns the block layout for height rows over ranks ranks.
func NewBlock(height, ranks int) (Block, error) {
	if err := validate(height, ranks); err != nil {
		return Block{}, err
	}
	return Block{Height: height, Ranks: ranks, JobSize: JobSize(height, ranks)}, nil
}

// Range returns the rows owned by rank.
func (b Block) Range(rank int) grid.RowRange {
	return grid.RowRange{Start: rank * b.JobSize, Count: b.JobSize}
}

// Owner returns the rank that computes row. ok is false for remainder rows.
func (b Block) Owner(row int) (rank int, ok bool) {
	if b.JobSize == 0 || row >= b.JobSize*b.Ranks {
		return 0, false
	}
	return row / b.JobSize, true
}

// Remainder returns the rows left to the coordinator.
func (b Block) Remainder() grid.RowRange { return Remainder(b.Height, b.Ranks) }

// Cyclic deals rows to ranks round-robin: rank r owns r, r+N, r+2N, ...
// JobSize rows in total.
type Cyclic struct {
	Height  int
	Ranks   int
	JobSize int
}

// NewCyclic returns the cyclic layout for height rows over ranks ranks.
func NewCyclic(height, ranks int) (Cyclic, error) {
	if err := validate(height, ranks); err != nil {
		return Cyclic{}, err
	}
	return Cyclic{Height: height, Ranks: ranks, JobSize: JobSize(height, ranks)}, nil
}

// Row returns the grid row computed in local iteration i of rank.
func (c Cyclic) Row(rank, i int) int { return rank + i*c.Ranks }

// Rows returns every row owned by rank, in the order it computes them.
func (c Cyclic) Rows(rank int) []int {
	rows := make([]int, c.JobSize)
	for i := range rows {
		rows[i] = c.Row(rank, i)
	}
	return rows
}

// Owner returns the rank that computes row. ok is false for remainder rows.
func (c Cyclic) Owner(row int) (rank int, ok bool) {
	if row >= c.JobSize*c.Ranks {
		return 0, false
	}
	return row % c.Ranks, true
}

// Remainder returns the rows left to the coordinator.
func (c Cyclic) Remainder() grid.RowRange { return Remainder(c.Height, c.Ranks) }
