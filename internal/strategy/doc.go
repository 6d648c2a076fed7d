// Package strategy provides the three ways of spreading the grid over ranks:
// static blocks, static round-robin rows, and dynamic master/worker
// scheduling. Every strategy runs a fresh comm.World per call, returns the
// grid assembled at rank 0, and must produce exactly the grid a direct
// row-by-row evaluation would.
package strategy
