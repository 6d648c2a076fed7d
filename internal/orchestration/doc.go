// Package orchestration runs the selected partitioning strategies
// concurrently, aggregates their progress and checks that every successful
// strategy produced the same grid. Presentation stays behind the
// ProgressReporter and ResultPresenter interfaces.
package orchestration
