// Package render turns an assembled grid into output: a PNG image through a
// colour palette, or the raw integer matrix as text.
package render
