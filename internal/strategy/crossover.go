package strategy

import (
	"github.com/chidi150c/backtest-core/internal/bar"
	"github.com/chidi150c/backtest-core/internal/money"
	"github.com/chidi150c/backtest-core/internal/order"
)

// Crossover is the dual moving-average crossover reference strategy
// (spec §4.2.1): long on the fast SMA crossing above the slow SMA,
// flat (or short, if allowed) on the opposite cross.
type Crossover struct {
	fast, slow   int
	positionSize money.D
	allowShort   bool
}

// NewCrossover constructs an unconfigured Crossover; call Configure
// before use.
func NewCrossover() *Crossover { return &Crossover{} }

func (s *Crossover) Configure(params map[string]any) error {
	s.fast = paramInt(params, "fast", 10)
	s.slow = paramInt(params, "slow", 30)
	s.positionSize = money.FromFloat(paramFloat(params, "position_size", 1))
	s.allowShort = paramBool(params, "allow_short", false)
	return nil
}

func (s *Crossover) Metadata() Metadata {
	return Metadata{RequiredHistory: s.slow, AllowShort: s.allowShort}
}

func (s *Crossover) OnBar(frame bar.Frame) ([]order.Signal, error) {
	series := closes(frame)
	fastNow, ok1 := sma(series, s.fast, 0)
	slowNow, ok2 := sma(series, s.slow, 0)
	fastPrev, ok3 := sma(series, s.fast, 1)
	slowPrev, ok4 := sma(series, s.slow, 1)
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return nil, nil
	}

	crossedUp := fastPrev.LessThanOrEqual(slowPrev) && fastNow.GreaterThan(slowNow)
	crossedDown := fastPrev.GreaterThanOrEqual(slowPrev) && fastNow.LessThan(slowNow)

	switch {
	case crossedUp:
		return []order.Signal{order.TargetPosition(frame.Key.Instrument, s.positionSize, "crossover_up")}, nil
	case crossedDown:
		target := money.Zero
		if s.allowShort {
			target = money.Neg(s.positionSize)
		}
		return []order.Signal{order.TargetPosition(frame.Key.Instrument, target, "crossover_down")}, nil
	default:
		return nil, nil
	}
}
