package strategy

import (
	"github.com/chidi150c/backtest-core/internal/bar"
	"github.com/chidi150c/backtest-core/internal/money"
	"github.com/chidi150c/backtest-core/internal/order"
)

// Bollinger is the Bollinger bands mean-reversion reference strategy
// (spec §4.2.3): enters long on a touch of the lower band, exits on a
// touch of the middle or upper band.
type Bollinger struct {
	period       int
	stdDev       float64
	positionSize money.D
}

func NewBollinger() *Bollinger { return &Bollinger{} }

func (s *Bollinger) Configure(params map[string]any) error {
	s.period = paramInt(params, "period", 20)
	s.stdDev = paramFloat(params, "std_dev", 2)
	s.positionSize = money.FromFloat(paramFloat(params, "position_size", 1))
	return nil
}

func (s *Bollinger) Metadata() Metadata {
	return Metadata{RequiredHistory: s.period}
}

func (s *Bollinger) OnBar(frame bar.Frame) ([]order.Signal, error) {
	mid, _, lower, ok := bollinger(closes(frame), s.period, s.stdDev)
	if !ok {
		return nil, nil
	}

	pos := frame.Snapshot.PositionQty(frame.Key.Instrument)
	close := frame.Current.Close

	switch {
	case pos.IsZero() && close.LessThanOrEqual(lower):
		return []order.Signal{order.TargetPosition(frame.Key.Instrument, s.positionSize, "bollinger_lower_touch")}, nil
	case pos.IsPositive() && close.GreaterThanOrEqual(mid):
		return []order.Signal{order.TargetPosition(frame.Key.Instrument, money.Zero, "bollinger_mid_touch")}, nil
	default:
		return nil, nil
	}
}
