// Command generate-golden writes reference digests of Mandelbrot grids
// computed directly with the kernel, one row after the other. Strategy
// tests compare their assembled grids against these values.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/agbru/mandelpart/internal/grid"
	"github.com/agbru/mandelpart/internal/kernel"
)

// Entry is the reference data for one grid size.
type Entry struct {
	Height int    `yaml:"height"`
	Width  int    `yaml:"width"`
	Digest string `yaml:"digest"`
	InSet  int    `yaml:"in_set"`
	// Center is the value of the cell at (Height/2, Width/2).
	Center int32 `yaml:"center"`
}

// Golden is the file layout.
type Golden struct {
	MaxIterations int     `yaml:"max_iterations"`
	Entries       []Entry `yaml:"entries"`
}

var defaultSizes = [][2]int{{1, 1}, {1, 7}, {7, 1}, {8, 2}, {10, 4}, {16, 16}, {33, 47}, {100, 100}}

// computeDirect evaluates every row of plane in order.
func computeDirect(plane kernel.Plane) *grid.Grid {
	g := grid.New(plane.Height, plane.Width)
	row := make([]int32, plane.Width)
	for r := 0; r < plane.Height; r++ {
		plane.ComputeRow(r, row)
		if err := g.SetRow(r, row); err != nil {
			panic(err)
		}
	}
	return g
}

func entryFor(height, width int) (Entry, error) {
	plane, err := kernel.NewPlane(height, width)
	if err != nil {
		return Entry{}, err
	}
	g := computeDirect(plane)
	inSet := 0
	for r := 0; r < height; r++ {
		for _, v := range g.Row(r) {
			if v == kernel.MaxIterations {
				inSet++
			}
		}
	}
	return Entry{
		Height: height,
		Width:  width,
		Digest: g.Digest(),
		InSet:  inSet,
		Center: g.At(height/2, width/2),
	}, nil
}

func generate(sizes [][2]int) (Golden, error) {
	golden := Golden{MaxIterations: kernel.MaxIterations}
	for _, s := range sizes {
		e, err := entryFor(s[0], s[1])
		if err != nil {
			return Golden{}, err
		}
		golden.Entries = append(golden.Entries, e)
	}
	return golden, nil
}

func write(w io.Writer, golden Golden) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(golden); err != nil {
		return err
	}
	return enc.Close()
}

func main() {
	out := flag.String("o", "", "output file (default stdout)")
	flag.Parse()

	golden, err := generate(defaultSizes)
	if err != nil {
		fmt.Fprintf(os.Stderr, "generate-golden: %v\n", err)
		os.Exit(1)
	}

	w := io.Writer(os.Stdout)
	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			fmt.Fprintf(os.Stderr, "generate-golden: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		w = f
	}
	if err := write(w, golden); err != nil {
		fmt.Fprintf(os.Stderr, "generate-golden: %v\n", err)
		os.Exit(1)
	}
}
