// Package grid provides the owned, bounds-checked containers that carry
// iteration counts between ranks and the reassembly routines that turn
// partial buffers back into one canonical row-major grid.
//
// A Grid records which rows have been written. Writing a row twice, or
// reading a grid that still has holes, is reported instead of silently
// producing a wrong image.
package grid
