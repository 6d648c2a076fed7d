package grid

import "fmt"

// PlaceBlocks writes a block-distributed gather result into g. Rank r's rows
// already sit at [r*jobSize, (r+1)*jobSize) of the gathered buffer, so the
// whole buffer lands verbatim from row 0.
func PlaceBlocks(g *Grid, gathered *Buffer) error {
	return g.SetRows(0, gathered)
}

// CyclicSourceRow returns the row of a cyclic gather result that holds logical
// grid row dst. The gathered buffer is grouped by rank: rank k's j-th local
// row sits at k*jobSize + j and carries logical row k + j*ranks.
func CyclicSourceRow(dst, ranks, jobSize int) int {
	cycNum, count := dst/ranks, dst%ranks
	return cycNum + count*jobSize
}

// ReassembleCyclic restores canonical row order from a cyclic gather result
// and writes rows [0, ranks*jobSize) of g.
func ReassembleCyclic(g *Grid, gathered *Buffer, ranks, jobSize int) error {
	if ranks <= 0 {
		return fmt.Errorf("grid: cyclic reassembly needs at least one rank, got %d", ranks)
	}
	if gathered.Rows() != ranks*jobSize {
		return fmt.Errorf("grid: gathered %d rows, want %d (%d ranks x %d)", gathered.Rows(), ranks*jobSize, ranks, jobSize)
	}

	cycNum, count := 0, 0
	for i := 0; i < jobSize*ranks; i++ {
		if err := g.SetRow(i, gathered.Row(cycNum+count*jobSize)); err != nil {
			return err
		}
		count++
		if count >= ranks {
			cycNum++
			count = 0
		}
	}
	return nil
}

// PlaceAt writes a partial result at its embedded row offset. Arrival order is
// irrelevant; only offset decides where the rows go.
func PlaceAt(g *Grid, offset int, rows *Buffer) error {
	return g.SetRows(offset, rows)
}
