package strategy

import (
	"github.com/chidi150c/backtest-core/internal/bar"
	"github.com/chidi150c/backtest-core/internal/money"
	"github.com/chidi150c/backtest-core/internal/order"
)

// RSIMeanReversion is the RSI mean-reversion reference strategy
// (spec §4.2.4): enters long below the oversold threshold, exits above
// the overbought threshold.
type RSIMeanReversion struct {
	period               int
	oversold, overbought float64
	positionSize         money.D
}

func NewRSIMeanReversion() *RSIMeanReversion { return &RSIMeanReversion{} }

func (s *RSIMeanReversion) Configure(params map[string]any) error {
	s.period = paramInt(params, "period", 14)
	s.oversold = paramFloat(params, "oversold", 30)
	s.overbought = paramFloat(params, "overbought", 70)
	s.positionSize = money.FromFloat(paramFloat(params, "position_size", 1))
	return nil
}

func (s *RSIMeanReversion) Metadata() Metadata {
	return Metadata{RequiredHistory: s.period}
}

func (s *RSIMeanReversion) OnBar(frame bar.Frame) ([]order.Signal, error) {
	val, ok := rsi(closes(frame), s.period)
	if !ok {
		return nil, nil
	}

	pos := frame.Snapshot.PositionQty(frame.Key.Instrument)
	oversold := money.FromFloat(s.oversold)
	overbought := money.FromFloat(s.overbought)

	switch {
	case pos.IsZero() && val.LessThan(oversold):
		return []order.Signal{order.TargetPosition(frame.Key.Instrument, s.positionSize, "rsi_oversold")}, nil
	case pos.IsPositive() && val.GreaterThan(overbought):
		return []order.Signal{order.TargetPosition(frame.Key.Instrument, money.Zero, "rsi_overbought")}, nil
	default:
		return nil, nil
	}
}
