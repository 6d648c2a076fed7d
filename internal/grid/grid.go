package grid

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
)

// RowRange is a contiguous span of grid rows.
type RowRange struct {
	Start int
	Count int
}

// End returns the first row after the range.
func (r RowRange) End() int { return r.Start + r.Count }

// Empty reports whether the range holds no rows.
func (r RowRange) Empty() bool { return r.Count <= 0 }

// Contains reports whether row lies inside the range.
func (r RowRange) Contains(row int) bool { return row >= r.Start && row < r.End() }

func (r RowRange) String() string {
	return fmt.Sprintf("[%d,%d)", r.Start, r.End())
}

// Buffer is a rows × width block of iteration counts owned by a single rank.
type Buffer struct {
	rows, width int
	cells       []int32
}

// NewBuffer allocates a zeroed rows × width buffer.
func NewBuffer(rows, width int) *Buffer {
	if rows < 0 || width <= 0 {
		panic(fmt.Sprintf("grid: invalid buffer shape %dx%d", rows, width))
	}
	return &Buffer{rows: rows, width: width, cells: make([]int32, rows*width)}
}

// BufferFromCells wraps cells as a buffer of the given width. The slice is
// adopted, not copied.
func BufferFromCells(width int, cells []int32) (*Buffer, error) {
	if width <= 0 {
		return nil, fmt.Errorf("grid: width must be positive, got %d", width)
	}
	if len(cells)%width != 0 {
		return nil, fmt.Errorf("grid: %d cells is not a whole number of %d-wide rows", len(cells), width)
	}
	return &Buffer{rows: len(cells) / width, width: width, cells: cells}, nil
}

// Rows returns the number of rows.
func (b *Buffer) Rows() int { return b.rows }

// Width returns the number of columns.
func (b *Buffer) Width() int { return b.width }

// Cells exposes the backing row-major slice.
func (b *Buffer) Cells() []int32 { return b.cells }

// Row returns a view of row i.
func (b *Buffer) Row(i int) []int32 {
	if i < 0 || i >= b.rows {
		panic(fmt.Sprintf("grid: buffer row %d out of range [0,%d)", i, b.rows))
	}
	return b.cells[i*b.width : (i+1)*b.width]
}

// Concat joins buffers of equal width in order, the way a gather lays out
// per-rank buffers at the root.
func Concat(width int, parts ...*Buffer) (*Buffer, error) {
	total := 0
	for i, p := range parts {
		if p.width != width {
			return nil, fmt.Errorf("grid: part %d has width %d, want %d", i, p.width, width)
		}
		total += p.rows
	}
	out := NewBuffer(total, width)
	off := 0
	for _, p := range parts {
		off += copy(out.cells[off:], p.cells)
	}
	return out, nil
}

// Grid is the final height × width image of iteration counts.
type Grid struct {
	height, width int
	cells         []int32
	filled        []bool
	filledCount   int
}

// New allocates an empty grid.
func New(height, width int) *Grid {
	if height <= 0 || width <= 0 {
		panic(fmt.Sprintf("grid: invalid grid shape %dx%d", height, width))
	}
	return &Grid{
		height: height,
		width:  width,
		cells:  make([]int32, height*width),
		filled: make([]bool, height),
	}
}

// Height returns the number of rows.
func (g *Grid) Height() int { return g.height }

// Width returns the number of columns.
func (g *Grid) Width() int { return g.width }

// At returns the value of cell (row, col).
func (g *Grid) At(row, col int) int32 {
	g.checkCell(row, col)
	return g.cells[row*g.width+col]
}

// Row returns a read-only view of row r.
func (g *Grid) Row(r int) []int32 {
	g.checkRow(r)
	return g.cells[r*g.width : (r+1)*g.width]
}

// SetRow writes a full row. Each row may be written once.
func (g *Grid) SetRow(r int, values []int32) error {
	g.checkRow(r)
	if len(values) != g.width {
		return fmt.Errorf("grid: row %d has %d cells, want %d", r, len(values), g.width)
	}
	if g.filled[r] {
		return fmt.Errorf("grid: row %d written twice", r)
	}
	copy(g.cells[r*g.width:], values)
	g.filled[r] = true
	g.filledCount++
	return nil
}

// SetRows writes every row of buf starting at grid row offset.
func (g *Grid) SetRows(offset int, buf *Buffer) error {
	if buf.width != g.width {
		return fmt.Errorf("grid: buffer width %d, grid width %d", buf.width, g.width)
	}
	if offset < 0 || offset+buf.rows > g.height {
		return fmt.Errorf("grid: rows [%d,%d) outside grid of height %d", offset, offset+buf.rows, g.height)
	}
	for i := 0; i < buf.rows; i++ {
		if err := g.SetRow(offset+i, buf.Row(i)); err != nil {
			return err
		}
	}
	return nil
}

// Filled reports whether row r has been written.
func (g *Grid) Filled(r int) bool {
	g.checkRow(r)
	return g.filled[r]
}

// Complete reports whether every row has been written.
func (g *Grid) Complete() bool { return g.filledCount == g.height }

// Missing lists the rows that have not been written yet.
func (g *Grid) Missing() []int {
	var rows []int
	for r, ok := range g.filled {
		if !ok {
			rows = append(rows, r)
		}
	}
	return rows
}

// Equal reports whether both grids have the same shape and cells.
func (g *Grid) Equal(other *Grid) bool {
	_, _, diff := g.FirstDifference(other)
	return !diff
}

// FirstDifference returns the first cell, in row-major order, where the grids
// disagree. A shape mismatch is reported at (-1, -1).
func (g *Grid) FirstDifference(other *Grid) (row, col int, found bool) {
	if other == nil || g.height != other.height || g.width != other.width {
		return -1, -1, true
	}
	for i, v := range g.cells {
		if other.cells[i] != v {
			return i / g.width, i % g.width, true
		}
	}
	return 0, 0, false
}

// Digest returns a hex SHA-256 of the shape and cells.
func (g *Grid) Digest() string {
	h := sha256.New()
	var word [4]byte
	binary.LittleEndian.PutUint32(word[:], uint32(g.height))
	h.Write(word[:])
	binary.LittleEndian.PutUint32(word[:], uint32(g.width))
	h.Write(word[:])
	for _, v := range g.cells {
		binary.LittleEndian.PutUint32(word[:], uint32(v))
		h.Write(word[:])
	}
	return hex.EncodeToString(h.Sum(nil))
}

func (g *Grid) checkRow(r int) {
	if r < 0 || r >= g.height {
		panic(fmt.Sprintf("grid: row %d out of range [0,%d)", r, g.height))
	}
}

func (g *Grid) checkCell(row, col int) {
	g.checkRow(row)
	if col < 0 || col >= g.width {
		panic(fmt.Sprintf("grid: column %d out of range [0,%d)", col, g.width))
	}
}
