package strategy

import (
	"github.com/chidi150c/backtest-core/internal/bar"
	"github.com/chidi150c/backtest-core/internal/money"
	"github.com/chidi150c/backtest-core/internal/order"
)

// Donchian is the Donchian channel breakout reference strategy
// (spec §4.2.2): enters long on a close above the prior entry_period
// high, exits on a close below the prior exit_period low. Channel bounds
// exclude the current bar.
type Donchian struct {
	entryPeriod, exitPeriod int
	positionSize            money.D
}

func NewDonchian() *Donchian { return &Donchian{} }

func (s *Donchian) Configure(params map[string]any) error {
	s.entryPeriod = paramInt(params, "entry_period", 20)
	s.exitPeriod = paramInt(params, "exit_period", 10)
	s.positionSize = money.FromFloat(paramFloat(params, "position_size", 1))
	return nil
}

func (s *Donchian) Metadata() Metadata {
	n := s.entryPeriod
	if s.exitPeriod > n {
		n = s.exitPeriod
	}
	return Metadata{RequiredHistory: n}
}

func (s *Donchian) OnBar(frame bar.Frame) ([]order.Signal, error) {
	entryHigh, _, okEntry := donchianChannel(frame.History, s.entryPeriod)
	_, exitLow, okExit := donchianChannel(frame.History, s.exitPeriod)
	if !okEntry || !okExit {
		return nil, nil
	}

	pos := frame.Snapshot.PositionQty(frame.Key.Instrument)
	close := frame.Current.Close

	switch {
	case pos.IsZero() && close.GreaterThan(entryHigh):
		return []order.Signal{order.TargetPosition(frame.Key.Instrument, s.positionSize, "donchian_breakout")}, nil
	case pos.IsPositive() && close.LessThan(exitLow):
		return []order.Signal{order.TargetPosition(frame.Key.Instrument, money.Zero, "donchian_breakdown")}, nil
	default:
		return nil, nil
	}
}
