// Package comm is the message-passing layer the partitioning strategies run
// on. A World is a fixed set of ranks; each rank runs its program in its own
// supervised process (an ifrit.Process) and reaches the others only through
// its Endpoint: blocking point-to-point Send and Recv, a receive that accepts
// any source, and a rank-ordered Gather to a root.
//
// Payloads are copied on Send, so no two ranks ever hold the same backing
// array. Messages between a given pair of ranks are delivered in send order.
package comm
