package rules

import (
	"github.com/chidi150c/backtest-core/internal/bar"
	"github.com/chidi150c/backtest-core/internal/money"
	"github.com/chidi150c/backtest-core/internal/order"
)

// AShareGate enforces spec §4.4's A-share rules, checked in the specified
// order: lot rounding, then price-limit admissibility, then sellable
// quantity / cash sufficiency.
type AShareGate struct {
	Cfg Config
}

// LotSize is the A-share 100-share lot (spec §4.4).
var LotSize = money.New(100, 0)

func (g AShareGate) Evaluate(in EvalInput) Decision {
	qty := money.FloorStep(in.Order.Quantity, LotSize)
	if qty.IsZero() {
		return reject(ReasonLotStepZero)
	}

	upLimit, downLimit := PriceLimitBand(in.PrevClose, in.Instrument.Board, in.Instrument.IsST)
	nextOpen := in.NextBar.Open
	if in.Order.Side == order.Buy && !upLimit.IsZero() && nextOpen.Equal(upLimit) {
		return reject(ReasonUpLimit)
	}
	if in.Order.Side == order.Sell && !downLimit.IsZero() && nextOpen.Equal(downLimit) {
		return reject(ReasonDownLimit)
	}

	if in.Order.Side == order.Sell {
		if qty.GreaterThan(in.SellableQty) {
			return reject(ReasonTPlusOne)
		}
		return accept(qty)
	}

	// Buy: cash must cover notional plus commission.
	refPrice := referencePrice(in.Order, in.NextBar)
	notional := money.Mul(qty, refPrice)
	commission, _ := CommissionAndTax(bar.StockAShare, order.Buy, qty, refPrice, g.Cfg)
	if notional.Add(commission).GreaterThan(in.FreeCash) {
		return reject(ReasonInsufficientCash)
	}
	return accept(qty)
}

// PriceLimitBand returns the (up, down) limit prices for an A-share
// instrument given the prior trading day's close (spec §4.4): ±10% on
// the main board, ±20% on ChiNext/STAR, ±5% for ST issues. ST is checked
// first, so an ST issue gets the ±5% band whatever its board.
func PriceLimitBand(prevClose money.D, board bar.Board, isST bool) (up, down money.D) {
	if prevClose.IsZero() {
		return money.Zero, money.Zero
	}
	var bandPct float64
	switch {
	case isST:
		bandPct = 5
	case board == bar.BoardChiNext, board == bar.BoardSTAR:
		bandPct = 20
	default:
		bandPct = 10
	}
	band := money.Pct(bandPct)
	up = money.Round(prevClose.Add(money.Mul(prevClose, band)))
	down = money.Round(prevClose.Sub(money.Mul(prevClose, band)))
	return up, down
}

// CommissionAndTax computes the A-share fee/tax split for a fill: a 0.03%
// commission with a 5-currency-unit floor plus a 0.05% stamp duty on
// sell-side fills only (spec §4.4). For crypto kinds it returns zero for
// both; the crypto commission is computed by the matching engine.
func CommissionAndTax(kind bar.AssetKind, side order.Side, qty, price money.D, cfg Config) (commission, tax money.D) {
	notional := money.Mul(qty, price)
	if kind != bar.StockAShare {
		return money.Zero, money.Zero // crypto commission is computed by the matching engine's fee model
	}
	commission = money.Round(money.Mul(notional, cfg.AShareCommissionRate))
	commission = money.Max(commission, cfg.AShareMinCommission)
	tax = money.Zero
	if side == order.Sell {
		tax = money.Round(money.Mul(notional, cfg.AShareStampDutyRate))
	}
	return commission, tax
}
