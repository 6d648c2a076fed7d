// Package kernel implements the per-cell escape-time function and the mapping
// from grid cells to points of the complex plane.
//
// Every function in this package is pure: the same (row, col) on the same
// Plane always yields the same iteration count, which is what lets the
// partitioning strategies be compared cell for cell.
package kernel
