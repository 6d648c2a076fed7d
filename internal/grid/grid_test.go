package grid

import (
	"testing"
)

func TestRowRange(t *testing.T) {
	t.Parallel()
	r := RowRange{Start: 3, Count: 4}
	if r.End() != 7 {
		t.Errorf("End() = %d, want 7", r.End())
	}
	if !r.Contains(3) || !r.Contains(6) || r.Contains(7) || r.Contains(2) {
		t.Errorf("Contains is wrong for %v", r)
	}
	if r.String() != "[3,7)" {
		t.Errorf("String() = %q", r.String())
	}
	if !(RowRange{Start: 5}).Empty() {
		t.Error("zero-count range should be empty")
	}
}

func TestBufferFromCells(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		width   int
		cells   []int32
		rows    int
		wantErr bool
	}{
		{"two rows", 3, []int32{1, 2, 3, 4, 5, 6}, 2, false},
		{"empty", 3, nil, 0, false},
		{"ragged", 4, []int32{1, 2, 3}, 0, true},
		{"zero width", 0, []int32{1}, 0, true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			b, err := BufferFromCells(tt.width, tt.cells)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && b.Rows() != tt.rows {
				t.Errorf("Rows() = %d, want %d", b.Rows(), tt.rows)
			}
		})
	}
}

func TestConcat(t *testing.T) {
	t.Parallel()
	a, _ := BufferFromCells(2, []int32{1, 2})
	b, _ := BufferFromCells(2, []int32{3, 4, 5, 6})
	out, err := Concat(2, a, b)
	if err != nil {
		t.Fatalf("Concat: %v", err)
	}
	want := []int32{1, 2, 3, 4, 5, 6}
	for i, v := range want {
		if out.Cells()[i] != v {
			t.Fatalf("cells = %v, want %v", out.Cells(), want)
		}
	}

	c, _ := BufferFromCells(3, []int32{1, 2, 3})
	if _, err := Concat(2, a, c); err == nil {
		t.Error("expected width mismatch error")
	}
}

func TestGridRowsWrittenOnce(t *testing.T) {
	t.Parallel()
	g := New(3, 2)
	if g.Complete() {
		t.Fatal("new grid reports complete")
	}
	if err := g.SetRow(1, []int32{4, 5}); err != nil {
		t.Fatalf("SetRow: %v", err)
	}
	if err := g.SetRow(1, []int32{4, 5}); err == nil {
		t.Error("expected error writing row 1 twice")
	}
	if err := g.SetRow(0, []int32{1}); err == nil {
		t.Error("expected error for short row")
	}
	if got := g.Missing(); len(got) != 2 || got[0] != 0 || got[1] != 2 {
		t.Errorf("Missing() = %v, want [0 2]", got)
	}
	buf, _ := BufferFromCells(2, []int32{1, 2, 3, 4})
	if err := g.SetRows(2, buf); err == nil {
		t.Error("expected error for rows past the end")
	}
	if g.Filled(2) {
		t.Error("row 2 must not be marked after a rejected write")
	}
}

func TestGridAtPanicsOutOfRange(t *testing.T) {
	t.Parallel()
	g := New(2, 2)
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	g.At(0, 2)
}

func TestGridEqualAndDigest(t *testing.T) {
	t.Parallel()
	fill := func(v int32) *Grid {
		g := New(2, 3)
		for r := 0; r < 2; r++ {
			_ = g.SetRow(r, []int32{v, v + 1, v + 2})
		}
		return g
	}
	a, b, c := fill(1), fill(1), fill(2)

	if !a.Equal(b) || a.Digest() != b.Digest() {
		t.Error("identical grids compare unequal")
	}
	if a.Equal(c) || a.Digest() == c.Digest() {
		t.Error("different grids compare equal")
	}
	if row, col, found := a.FirstDifference(c); !found || row != 0 || col != 0 {
		t.Errorf("FirstDifference = (%d,%d,%v), want (0,0,true)", row, col, found)
	}
	if row, _, found := a.FirstDifference(New(3, 3)); !found || row != -1 {
		t.Error("shape mismatch must be reported at -1")
	}
}
