package partition

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestNewLayoutsRejectInvalidInput(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name          string
		height, ranks int
	}{
		{"zero height", 0, 3},
		{"negative height", -4, 3},
		{"zero ranks", 10, 0},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := NewBlock(tt.height, tt.ranks); err == nil {
				t.Error("NewBlock: expected error")
			}
			if _, err := NewCyclic(tt.height, tt.ranks); err == nil {
				t.Error("NewCyclic: expected error")
			}
		})
	}
}

func TestBlock_Example(t *testing.T) {
	t.Parallel()
	// height=10, N=3 -> jobSize=3; ranks own 0-2, 3-5, 6-8; coordinator row 9.
	b, err := NewBlock(10, 3)
	if err != nil {
		t.Fatalf("NewBlock: %v", err)
	}
	if b.JobSize != 3 {
		t.Fatalf("JobSize = %d, want 3", b.JobSize)
	}
	wantStarts := []int{0, 3, 6}
	for rank, start := range wantStarts {
		r := b.Range(rank)
		if r.Start != start || r.Count != 3 {
			t.Errorf("Range(%d) = %v, want start %d count 3", rank, r, start)
		}
	}
	rem := b.Remainder()
	if rem.Start != 9 || rem.Count != 1 {
		t.Errorf("Remainder() = %v, want [9,10)", rem)
	}
	for row := 0; row < 9; row++ {
		if owner, ok := b.Owner(row); !ok || owner != row/3 {
			t.Errorf("Owner(%d) = %d,%v", row, owner, ok)
		}
	}
	if _, ok := b.Owner(9); ok {
		t.Error("row 9 belongs to the coordinator")
	}
}

func TestCyclic_Example(t *testing.T) {
	t.Parallel()
	// height=8, N=4 -> jobSize=2; rank r computes r and r+4.
	c, err := NewCyclic(8, 4)
	if err != nil {
		t.Fatalf("NewCyclic: %v", err)
	}
	for rank := 0; rank < 4; rank++ {
		rows := c.Rows(rank)
		if len(rows) != 2 || rows[0] != rank || rows[1] != rank+4 {
			t.Errorf("Rows(%d) = %v", rank, rows)
		}
	}
	if !c.Remainder().Empty() {
		t.Errorf("Remainder() = %v, want empty", c.Remainder())
	}
	if owner, ok := c.Owner(5); !ok || owner != 1 {
		t.Errorf("Owner(5) = %d,%v, want 1,true", owner, ok)
	}
}

func TestMoreRanksThanRows(t *testing.T) {
	t.Parallel()
	b, _ := NewBlock(3, 5)
	if b.JobSize != 0 {
		t.Fatalf("JobSize = %d, want 0", b.JobSize)
	}
	if rem := b.Remainder(); rem.Start != 0 || rem.Count != 3 {
		t.Errorf("Remainder() = %v, want all rows", rem)
	}
	if _, ok := b.Owner(0); ok {
		t.Error("no rank owns rows when JobSize is 0")
	}
}

// TestLayouts_PropertyBased checks that, for both layouts, rank ranges plus the
// remainder partition [0, height).
func TestLayouts_PropertyBased(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("block ranges and remainder partition the rows", prop.ForAll(
		func(height, ranks int) bool {
			b, err := NewBlock(height, ranks)
			if err != nil {
				return false
			}
			count := make([]int, height)
			for r := 0; r < ranks; r++ {
				rng := b.Range(r)
				for row := rng.Start; row < rng.End(); row++ {
					count[row]++
					if owner, ok := b.Owner(row); !ok || owner != r {
						return false
					}
				}
			}
			rem := b.Remainder()
			for row := rem.Start; row < rem.End(); row++ {
				count[row]++
			}
			for _, c := range count {
				if c != 1 {
					return false
				}
			}
			return rem.Count < ranks
		},
		gen.IntRange(1, 500),
		gen.IntRange(1, 64),
	))

	properties.Property("cyclic rows and remainder partition the rows", prop.ForAll(
		func(height, ranks int) bool {
			c, err := NewCyclic(height, ranks)
			if err != nil {
				return false
			}
			count := make([]int, height)
			for r := 0; r < ranks; r++ {
				for _, row := range c.Rows(r) {
					count[row]++
					if owner, ok := c.Owner(row); !ok || owner != r {
						return false
					}
				}
			}
			rem := c.Remainder()
			for row := rem.Start; row < rem.End(); row++ {
				count[row]++
			}
			for _, n := range count {
				if n != 1 {
					return false
				}
			}
			return true
		},
		gen.IntRange(1, 500),
		gen.IntRange(1, 64),
	))

	properties.TestingRun(t)
}
