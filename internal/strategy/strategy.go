// Package strategy defines the strategy framework (spec §4.2): the
// polymorphic capability set a strategy implements, its declared
// metadata, and five bit-reproducible reference strategies. Modeled on
// the teacher's Decision/decide shape (strategy.go) generalized from one
// implicit instrument and an ML-blended signal to the target-position /
// order-intent duality spec §3 defines.
package strategy

import (
	"github.com/chidi150c/backtest-core/internal/bar"
	"github.com/chidi150c/backtest-core/internal/order"
)

// Metadata is what the engine needs to know about a strategy before
// running it: warm-up length, the instruments/timeframes it expects, and
// whether it is allowed to hold short positions (spec §4.2).
type Metadata struct {
	RequiredHistory int
	Instruments     []bar.InstrumentID
	Timeframes      []bar.Timeframe
	AllowShort      bool
}

// Strategy is the sole place alpha lives. Configure is called once before
// the run starts; OnBar is called once per (instrument, timeframe) tick
// once warm-up has elapsed, and must not perform I/O.
type Strategy interface {
	Configure(params map[string]any) error
	Metadata() Metadata
	OnBar(frame bar.Frame) ([]order.Signal, error)
}

// FillObserver is the optional on_fill notification (spec §4.2): a
// strategy that wants post-fill bookkeeping (e.g. counters) implements
// this in addition to Strategy. It must not issue orders.
type FillObserver interface {
	OnFill(fill order.Fill)
}

// Param describes one entry in a strategy's declared parameter schema
// (spec §4.2: "each strategy declares its parameter schema: name, type,
// default, bounds").
type Param struct {
	Name    string
	Type    string // "int", "float", "bool"
	Default any
	Min     any
	Max     any
}

// paramInt reads an integer-valued parameter, falling back to def.
func paramInt(params map[string]any, name string, def int) int {
	v, ok := params[name]
	if !ok {
		return def
	}
	switch n := v.(type) {
	case int:
		return n
	case float64:
		return int(n)
	default:
		return def
	}
}

func paramFloat(params map[string]any, name string, def float64) float64 {
	v, ok := params[name]
	if !ok {
		return def
	}
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	default:
		return def
	}
}

func paramBool(params map[string]any, name string, def bool) bool {
	v, ok := params[name]
	if !ok {
		return def
	}
	if b, ok := v.(bool); ok {
		return b
	}
	return def
}
