package config

import "runtime"

// ApplyAdaptiveProcs resolves a process count of zero to EstimateProcs.
// Explicit counts are kept.
func ApplyAdaptiveProcs(cfg AppConfig) AppConfig {
	if cfg.Procs == 0 && cfg.Completion == "" && !cfg.ShowVersion {
		cfg.Procs = EstimateProcs(runtime.NumCPU())
	}
	return cfg
}

// EstimateProcs picks one rank per logical CPU, with at least two so the
// coordinator always has a worker, and at most MaxProcs.
func EstimateProcs(numCPU int) int {
	return min(max(numCPU, 2), MaxProcs)
}
