package orchestration

import (
	"github.com/agbru/mandelpart/internal/config"
	"github.com/agbru/mandelpart/internal/strategy"
)

// GetStrategiesToRun resolves the configured strategy selection against
// factory. "all" yields every registered strategy in sorted name order.
// Unknown names are skipped.
func GetStrategiesToRun(cfg config.AppConfig, factory strategy.Factory) []strategy.Strategy {
	names := cfg.Strategies(factory.List())
	strategies := make([]strategy.Strategy, 0, len(names))
	for _, name := range names {
		if s, err := factory.Get(name); err == nil {
			strategies = append(strategies, s)
		}
	}
	return strategies
}
