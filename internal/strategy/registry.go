package strategy

import "fmt"

// Factory builds a fresh, unconfigured instance of a built-in strategy.
type Factory func() Strategy

// registry lists the five built-in reference strategies (spec §4.2) by
// the name a config document or CLI flag selects them with.
var registry = map[string]Factory{
	"crossover":           func() Strategy { return NewCrossover() },
	"donchian_breakout":   func() Strategy { return NewDonchian() },
	"bollinger_reversion": func() Strategy { return NewBollinger() },
	"rsi_mean_reversion":  func() Strategy { return NewRSIMeanReversion() },
	"zscore":              func() Strategy { return NewZScore() },
}

// Lookup returns the factory registered under name.
func Lookup(name string) (Factory, error) {
	f, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown strategy %q", name)
	}
	return f, nil
}

// Names lists every registered strategy name, for CLI help text.
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	return names
}
