package rules

import (
	"github.com/chidi150c/backtest-core/internal/bar"
	"github.com/chidi150c/backtest-core/internal/money"
	"github.com/chidi150c/backtest-core/internal/order"
)

// CryptoSpotGate enforces spec §4.4's crypto spot rules: no short
// positions, quantity snapped down to the lot step, zero-result orders
// dropped.
type CryptoSpotGate struct {
	Cfg Config
}

func (g CryptoSpotGate) Evaluate(in EvalInput) Decision {
	qty := money.FloorStep(in.Order.Quantity, in.Instrument.LotStep)
	if qty.IsZero() {
		return reject(ReasonLotStepZero)
	}
	if in.Order.Side == order.Sell && qty.GreaterThan(in.SellableQty) {
		return reject(ReasonNoShort)
	}
	if in.Order.Side == order.Buy {
		refPrice := referencePrice(in.Order, in.NextBar)
		notional := money.Mul(qty, refPrice)
		if notional.GreaterThan(in.FreeCash) {
			return reject(ReasonInsufficientCash)
		}
	}
	return accept(qty)
}

// referencePrice is the price used for pre-trade cash/margin checks: the
// limit price for limit orders, otherwise the next bar's open (the actual
// fill price including slippage is only known inside the matching engine,
// spec §4.5, so the gate uses this as a conservative stand-in).
func referencePrice(o order.Order, next bar.Bar) money.D {
	if o.Type == order.Limit {
		return o.LimitPrice
	}
	return next.Open
}
