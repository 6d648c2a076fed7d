//go:generate mockgen -source=renderer.go -destination=mocks/mock_renderer.go -package=mocks

package render

import (
	"bufio"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/agbru/mandelpart/internal/grid"
	"github.com/agbru/mandelpart/internal/kernel"
)

// Renderer writes a grid somewhere and returns where it went.
type Renderer interface {
	Render(ctx context.Context, name string, g *grid.Grid) (string, error)
}

// Palette maps a normalised iteration count in [0,1) to a colour.
type Palette func(v float64) color.RGBA

// Normalize scales an iteration count by the normalisation factor.
func Normalize(v int32) float64 {
	return float64(v) / kernel.NormalizationFactor
}

// FileName is the output file for a strategy, e.g. mandelbrot_block.png.
func FileName(strategy string) string {
	return "mandelbrot_" + strategy + ".png"
}

var stops = []color.RGBA{
	{0, 7, 100, 255},
	{32, 107, 203, 255},
	{237, 255, 255, 255},
	{255, 170, 0, 255},
	{120, 20, 0, 255},
}

// DefaultPalette runs a blue-white-orange gradient over the escape counts and
// paints points that never escaped black.
func DefaultPalette(v float64) color.RGBA {
	if v >= Normalize(kernel.MaxIterations) {
		return color.RGBA{A: 255}
	}
	if v <= 0 {
		return stops[0]
	}
	pos := v / Normalize(kernel.MaxIterations) * float64(len(stops)-1)
	i := int(pos)
	if i >= len(stops)-1 {
		return stops[len(stops)-1]
	}
	frac := pos - float64(i)
	a, b := stops[i], stops[i+1]
	lerp := func(x, y uint8) uint8 { return uint8(float64(x) + (float64(y)-float64(x))*frac) }
	return color.RGBA{lerp(a.R, b.R), lerp(a.G, b.G), lerp(a.B, b.B), 255}
}

// GrayPalette is a plain gray ramp.
func GrayPalette(v float64) color.RGBA {
	if v >= 1 {
		v = 1
	}
	if v < 0 {
		v = 0
	}
	c := uint8(v * 255)
	return color.RGBA{c, c, c, 255}
}

var palettes = map[string]Palette{
	"color": DefaultPalette,
	"gray":  GrayPalette,
}

// PaletteNames lists the names PaletteByName accepts, sorted.
func PaletteNames() []string {
	names := make([]string, 0, len(palettes))
	for name := range palettes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// PaletteByName resolves a palette name such as "color" or "gray".
func PaletteByName(name string) (Palette, error) {
	p, ok := palettes[name]
	if !ok {
		return nil, fmt.Errorf("unknown palette %q", name)
	}
	return p, nil
}

// Image paints g with p. Column maps to x and row to y.
func Image(g *grid.Grid, p Palette) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, g.Width(), g.Height()))
	for row := 0; row < g.Height(); row++ {
		for col, v := range g.Row(row) {
			img.SetRGBA(col, row, p(Normalize(v)))
		}
	}
	return img
}

// encodePNG is replaced in tests to simulate a failing encoder.
var encodePNG = png.Encode

// PNGRenderer writes mandelbrot_<name>.png files into Dir.
type PNGRenderer struct {
	Dir     string
	Palette Palette
}

// NewPNGRenderer renders into dir with the default palette.
func NewPNGRenderer(dir string) *PNGRenderer {
	return &PNGRenderer{Dir: dir, Palette: DefaultPalette}
}

// Render encodes g as a PNG named after the strategy.
func (r *PNGRenderer) Render(ctx context.Context, name string, g *grid.Grid) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if !g.Complete() {
		return "", fmt.Errorf("render %s: rows %v are missing", name, g.Missing())
	}
	dir := r.Dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	palette := r.Palette
	if palette == nil {
		palette = DefaultPalette
	}

	path := filepath.Join(dir, FileName(name))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create image file: %w", err)
	}
	if err := encodePNG(f, Image(g, palette)); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("failed to encode %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", err
	}
	return path, nil
}

// PrintTrailer ends a matrix dump.
const PrintTrailer = "Print successful"

// WriteMatrix prints g one row per line, each value followed by a space, then
// the trailer line.
func WriteMatrix(w io.Writer, g *grid.Grid) error {
	bw := bufio.NewWriter(w)
	buf := make([]byte, 0, 8)
	for row := 0; row < g.Height(); row++ {
		for _, v := range g.Row(row) {
			buf = strconv.AppendInt(buf[:0], int64(v), 10)
			buf = append(buf, ' ')
			bw.Write(buf)
		}
		bw.WriteByte('\n')
	}
	bw.WriteString(PrintTrailer + "\n")
	return bw.Flush()
}
