package strategy

import (
	"github.com/chidi150c/backtest-core/internal/bar"
	"github.com/chidi150c/backtest-core/internal/money"
	"github.com/chidi150c/backtest-core/internal/order"
)

// ZScore is the rolling z-score reference strategy (spec §4.2.5): enters
// long when the normalized deviation from the rolling mean drops below
// -entry_z, exits when it rises to -exit_z or above.
type ZScore struct {
	period           int
	entryZ, exitZ    float64
	positionSize     money.D
}

func NewZScore() *ZScore { return &ZScore{} }

func (s *ZScore) Configure(params map[string]any) error {
	s.period = paramInt(params, "period", 20)
	s.entryZ = paramFloat(params, "entry_z", 2)
	s.exitZ = paramFloat(params, "exit_z", 0.5)
	s.positionSize = money.FromFloat(paramFloat(params, "position_size", 1))
	return nil
}

func (s *ZScore) Metadata() Metadata {
	return Metadata{RequiredHistory: s.period}
}

func (s *ZScore) OnBar(frame bar.Frame) ([]order.Signal, error) {
	z, ok := zscore(closes(frame), s.period)
	if !ok {
		return nil, nil
	}

	pos := frame.Snapshot.PositionQty(frame.Key.Instrument)
	entryThreshold := money.FromFloat(-s.entryZ)
	exitThreshold := money.FromFloat(-s.exitZ)

	switch {
	case pos.IsZero() && z.LessThan(entryThreshold):
		return []order.Signal{order.TargetPosition(frame.Key.Instrument, s.positionSize, "zscore_entry")}, nil
	case pos.IsPositive() && z.GreaterThanOrEqual(exitThreshold):
		return []order.Signal{order.TargetPosition(frame.Key.Instrument, money.Zero, "zscore_exit")}, nil
	default:
		return nil, nil
	}
}
