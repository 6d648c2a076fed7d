// Package scheduler implements dynamic master/worker row scheduling.
//
// The coordinator (rank 0) hands out tasks of a few consecutive rows, one per
// idle worker, and refills a worker as soon as it reports back. A worker never
// asks for work: receiving a Result is the request for the next task. Results
// carry their row offset, so the coordinator places them by offset alone and
// arrival order never matters.
//
// The bookkeeping lives in Coordinator, a plain state machine with no
// transport, so every protocol invariant can be exercised without running
// ranks. RunCoordinator and Worker drive it over a Transport.
package scheduler
