// Package metrics collects run accounting: Prometheus counters for rows and
// tasks, HDR histograms of dynamic task latency, and runtime memory
// snapshots.
package metrics
