package kernel

import "fmt"

const (
	// MaxIterations is the iteration cap. Points that never escape report
	// exactly this value.
	MaxIterations = 511

	// EscapeRadiusSq is the squared modulus at which a point is considered
	// to have escaped.
	EscapeRadiusSq = 4.0

	// NormalizationFactor is the divisor renderers use to bring an iteration
	// count into [0, 1).
	NormalizationFactor = 512.0
)

// Viewport is the rectangle of the complex plane covered by a grid.
type Viewport struct {
	MinX, MaxX float64
	MinY, MaxY float64
}

// DefaultViewport frames the whole Mandelbrot set.
var DefaultViewport = Viewport{MinX: -2.1, MaxX: 0.7, MinY: -1.25, MaxY: 1.25}

// Escape returns the number of iterations of z -> z² + c, starting at z = c,
// before |z|² reaches EscapeRadiusSq, capped at MaxIterations.
func Escape(x, y float64) int32 {
	cx, cy := x, y
	var it int32
	for it = 0; it < MaxIterations && x*x+y*y < EscapeRadiusSq; it++ {
		x, y = x*x-y*y+cx, 2*x*y+cy
	}
	return it
}

// Plane maps integer grid cells onto a Viewport.
type Plane struct {
	Viewport
	Height, Width int
	dx, dy        float64
}

// NewPlane returns the Plane for a height × width grid over the default
// viewport.
func NewPlane(height, width int) (Plane, error) {
	return NewPlaneWithViewport(height, width, DefaultViewport)
}

// NewPlaneWithViewport returns the Plane for a height × width grid over vp.
func NewPlaneWithViewport(height, width int, vp Viewport) (Plane, error) {
	if height <= 0 || width <= 0 {
		return Plane{}, fmt.Errorf("grid dimensions must be positive, got %dx%d", height, width)
	}
	return Plane{
		Viewport: vp,
		Height:   height,
		Width:    width,
		dx:       (vp.MaxX - vp.MinX) / float64(width),
		dy:       (vp.MaxY - vp.MinY) / float64(height),
	}, nil
}

// Coordinate returns the point of the plane for cell (row, col).
func (p Plane) Coordinate(row, col int) (x, y float64) {
	return p.MinX + float64(col)*p.dx, p.MinY + float64(row)*p.dy
}

// Cell evaluates the kernel for a single cell.
func (p Plane) Cell(row, col int) int32 {
	return Escape(p.Coordinate(row, col))
}

// ComputeRow fills dst (len Width) with the iteration counts of row.
func (p Plane) ComputeRow(row int, dst []int32) {
	if len(dst) != p.Width {
		panic(fmt.Sprintf("kernel: row buffer has %d cells, want %d", len(dst), p.Width))
	}
	for col := range dst {
		dst[col] = p.Cell(row, col)
	}
}

// ComputeRows fills dst with count consecutive rows starting at start.
// dst must hold exactly count*Width cells.
func (p Plane) ComputeRows(start, count int, dst []int32) {
	if len(dst) != count*p.Width {
		panic(fmt.Sprintf("kernel: buffer has %d cells, want %d", len(dst), count*p.Width))
	}
	for i := 0; i < count; i++ {
		p.ComputeRow(start+i, dst[i*p.Width:(i+1)*p.Width])
	}
}
