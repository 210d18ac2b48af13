package rules

import (
	"github.com/chidi150c/backtest-core/internal/money"
)

// CryptoPerpGate enforces spec §4.4's perpetual rules: longs and shorts
// both allowed, leverage-capped, margin-gated. Liquidation itself is a
// mark-time event handled by the engine and ledger, not this gate.
type CryptoPerpGate struct {
	Cfg Config
}

func (g CryptoPerpGate) Evaluate(in EvalInput) Decision {
	qty := money.FloorStep(in.Order.Quantity, in.Instrument.LotStep)
	if qty.IsZero() {
		return reject(ReasonLotStepZero)
	}

	refPrice := referencePrice(in.Order, in.NextBar)
	notional := money.Mul(qty, refPrice)

	leverage := in.Instrument.MaxLeverage
	if leverage.IsZero() || leverage.GreaterThan(g.Cfg.MaxLeverage) {
		leverage = g.Cfg.MaxLeverage
	}
	marginRequired := money.Div(notional, leverage)
	if marginRequired.GreaterThan(in.FreeCash) {
		return reject(ReasonInsufficientMargin)
	}
	return accept(qty)
}
