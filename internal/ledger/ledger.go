// Package ledger owns all mutable account state: cash, positions, realized
// and unrealized PnL, and the equity time series (spec §4.6). It is the
// engine's exclusive mutator of account state (spec §5); nothing else
// writes to it.
package ledger

import (
	"time"

	"github.com/chidi150c/backtest-core/internal/bar"
	"github.com/chidi150c/backtest-core/internal/money"
	"github.com/chidi150c/backtest-core/internal/order"
)

// shanghai is used to compute the A-share trading date for T+1 locks.
var shanghai = mustLoadShanghai()

func mustLoadShanghai() *time.Location {
	loc, err := time.LoadLocation("Asia/Shanghai")
	if err != nil {
		return time.FixedZone("CST", 8*3600)
	}
	return loc
}

// Position is one instrument's holding. Quantity is signed: positive for
// long, negative for short (perpetuals only; spot/A-share never go
// negative, enforced upstream by the rule gate).
type Position struct {
	Instrument  bar.InstrumentID
	Kind        bar.AssetKind
	Quantity    money.D
	AvgBasis    money.D
	RealizedPnL money.D
	Unrealized  money.D
	MarkPrice   money.D

	// LockedQty and LockedDate implement A-share T+1: quantity bought on
	// LockedDate does not count toward SellableQty until that date passes.
	LockedQty  money.D
	LockedDate string
}

// EquityPoint is one row of the append-only equity series (spec §4.6).
type EquityPoint struct {
	BarIndex      int
	TClose        time.Time
	Equity        money.D
	Cash          money.D
	GrossExposure money.D
	NetExposure   money.D
	Drawdown      money.D
}

// TradeEvent is one ledger row: either a fill or a rejection (spec §6
// trade_ledger). Exactly one of Fill/Rejection is populated.
type TradeEvent struct {
	Fill       *order.Fill
	Rejection  *order.Rejection
}

// RealizedTrade records one closing (or partially closing) fill's
// realized result (spec §3 Trade), used by the metrics component for
// win rate, profit factor and average trade return.
type RealizedTrade struct {
	Instrument bar.InstrumentID
	Quantity   money.D
	PnL        money.D
	BarIndex   int
}

// Ledger is the portfolio's single source of truth.
type Ledger struct {
	cash          money.D
	positions     map[bar.InstrumentID]*Position
	equitySeries  []EquityPoint
	tradeLedger   []TradeEvent
	realizedTrades []RealizedTrade
	highWater     money.D
}

// New constructs a Ledger seeded with the engine's initial capital.
func New(initialCapital money.D) *Ledger {
	return &Ledger{
		cash:      initialCapital,
		positions: map[bar.InstrumentID]*Position{},
		highWater: initialCapital,
	}
}

func (l *Ledger) position(id bar.InstrumentID, kind bar.AssetKind) *Position {
	p, ok := l.positions[id]
	if !ok {
		p = &Position{Instrument: id, Kind: kind, Quantity: money.Zero, AvgBasis: money.Zero}
		l.positions[id] = p
	}
	return p
}

// PositionQty implements bar.LedgerSnapshot and order.PositionQuery.
func (l *Ledger) PositionQty(id bar.InstrumentID) money.D {
	if p, ok := l.positions[id]; ok {
		return p.Quantity
	}
	return money.Zero
}

// Cash returns free cash, implementing bar.LedgerSnapshot.
func (l *Ledger) Cash() money.D { return l.cash }

// Equity implements bar.LedgerSnapshot: last marked equity, or cash if no
// bar has been marked yet.
func (l *Ledger) Equity() money.D {
	if len(l.equitySeries) == 0 {
		return l.cash
	}
	return l.equitySeries[len(l.equitySeries)-1].Equity
}

// SellableQty returns the quantity available to sell at time asOf: for
// crypto this is simply the held quantity; for A-share it excludes
// today's locked (T+1) buys (spec §4.4).
func (l *Ledger) SellableQty(id bar.InstrumentID, asOf time.Time) money.D {
	p, ok := l.positions[id]
	if !ok {
		return money.Zero
	}
	if p.Kind != bar.StockAShare {
		return p.Quantity
	}
	locked := money.Zero
	if p.LockedDate == tradingDate(asOf) {
		locked = p.LockedQty
	}
	free := p.Quantity.Sub(locked)
	if free.IsNegative() {
		return money.Zero
	}
	return free
}

// FreeCash returns cash available for new commitments. The core does not
// reserve margin out of cash (perp margin checks compare notional/leverage
// against free cash directly, spec §4.4), so this is simply current cash.
func (l *Ledger) FreeCash() money.D { return l.cash }

func tradingDate(t time.Time) string {
	return t.In(shanghai).Format("2006-01-02")
}

// ApplyFill adjusts position quantity, average basis, cash and realized
// PnL per spec §4.6: weighted-average basis on adds, basis release on
// reductions.
func (l *Ledger) ApplyFill(fill order.Fill, inst bar.Instrument) {
	pos := l.position(fill.Instrument, inst.Kind)

	signedDelta := fill.FillQuantity
	if fill.Side == order.Sell {
		signedDelta = money.Neg(fill.FillQuantity)
	}

	isPerp := inst.Kind == bar.CryptoPerp
	notional := money.Mul(fill.FillQuantity, fill.FillPrice)
	feeAndTax := fill.FeeAmount.Add(fill.TaxAmount)

	oldQty := pos.Quantity
	sameSideOrOpening := oldQty.IsZero() || signedDelta.IsZero() || oldQty.Sign() == signedDelta.Sign()
	realized := money.Zero

	switch {
	case sameSideOrOpening:
		oldAbs := money.Abs(oldQty)
		addAbs := money.Abs(signedDelta)
		total := oldAbs.Add(addAbs)
		if total.IsZero() {
			pos.AvgBasis = money.Zero
		} else {
			weighted := money.Mul(oldAbs, pos.AvgBasis).Add(money.Mul(addAbs, fill.FillPrice))
			pos.AvgBasis = money.Div(weighted, total)
		}
	default:
		oldAbs := money.Abs(oldQty)
		closingAbs := money.Min(oldAbs, money.Abs(signedDelta))
		sign := money.New(int64(oldQty.Sign()), 0)
		realized = money.Mul(money.Mul(fill.FillPrice.Sub(pos.AvgBasis), closingAbs), sign)
		pos.RealizedPnL = pos.RealizedPnL.Add(realized)
		l.realizedTrades = append(l.realizedTrades, RealizedTrade{
			Instrument: fill.Instrument, Quantity: closingAbs, PnL: realized, BarIndex: fill.FillBarIndex,
		})

		remainderAbs := money.Abs(signedDelta).Sub(closingAbs)
		if remainderAbs.IsPositive() {
			// Position flips through zero; the remainder opens a fresh
			// position in the new direction at this fill's price.
			pos.AvgBasis = fill.FillPrice
		} else if oldAbs.Equal(closingAbs) {
			pos.AvgBasis = money.Zero
		}
	}

	switch {
	case !isPerp && fill.Side == order.Buy:
		l.cash = l.cash.Sub(notional).Sub(feeAndTax)
	case !isPerp && fill.Side == order.Sell:
		l.cash = l.cash.Add(notional).Sub(feeAndTax)
	default:
		// Perpetuals never move notional cash on open (margin only); a
		// closing fill instead settles its realized PnL straight to cash.
		l.cash = l.cash.Add(realized).Sub(feeAndTax)
	}
	pos.Quantity = oldQty.Add(signedDelta)

	if inst.Kind == bar.StockAShare && fill.Side == order.Buy {
		dateStr := tradingDate(fill.TFill)
		if pos.LockedDate != dateStr {
			pos.LockedQty = money.Zero
			pos.LockedDate = dateStr
		}
		pos.LockedQty = pos.LockedQty.Add(fill.FillQuantity)
	}

	l.tradeLedger = append(l.tradeLedger, TradeEvent{Fill: &fill})
}

// RecordRejection appends a structured rejection to the trade ledger
// (spec §4.4, §6).
func (l *Ledger) RecordRejection(r order.Rejection) {
	l.tradeLedger = append(l.tradeLedger, TradeEvent{Rejection: &r})
}

// Mark updates unrealized PnL/equity using the bar's close as mark price
// (spec §4.6) and appends one equity-series row.
func (l *Ledger) Mark(barIndex int, bars map[bar.InstrumentID]bar.Bar) {
	equity := l.cash
	gross := money.Zero
	net := money.Zero
	var tClose time.Time

	for id, pos := range l.positions {
		b, ok := bars[id]
		if !ok {
			equity = equity.Add(marginContribution(pos))
			net = net.Add(money.Mul(pos.Quantity, pos.MarkPrice))
			gross = gross.Add(money.Abs(money.Mul(pos.Quantity, pos.MarkPrice)))
			continue
		}
		pos.MarkPrice = b.Close
		if pos.Kind == bar.CryptoPerp {
			pos.Unrealized = money.Mul(b.Close.Sub(pos.AvgBasis), pos.Quantity)
			equity = equity.Add(pos.Unrealized)
		} else {
			value := money.Mul(pos.Quantity, b.Close)
			equity = equity.Add(value)
		}
		net = net.Add(money.Mul(pos.Quantity, b.Close))
		gross = gross.Add(money.Abs(money.Mul(pos.Quantity, b.Close)))
		if b.TClose().After(tClose) {
			tClose = b.TClose()
		}
	}

	if l.highWater.IsZero() || equity.GreaterThan(l.highWater) {
		l.highWater = equity
	}
	drawdown := money.Zero
	if l.highWater.IsPositive() {
		drawdown = money.Div(l.highWater.Sub(equity), l.highWater)
	}

	l.equitySeries = append(l.equitySeries, EquityPoint{
		BarIndex:      barIndex,
		TClose:        tClose,
		Equity:        money.Round(equity),
		Cash:          money.Round(l.cash),
		GrossExposure: money.Round(gross),
		NetExposure:   money.Round(net),
		Drawdown:      money.Round(drawdown),
	})
}

func marginContribution(pos *Position) money.D {
	if pos.Kind == bar.CryptoPerp {
		return pos.Unrealized
	}
	return money.Mul(pos.Quantity, pos.MarkPrice)
}

// EquitySeries returns the append-only equity time series.
func (l *Ledger) EquitySeries() []EquityPoint { return l.equitySeries }

// TradeLedger returns the ordered fill/rejection events.
func (l *Ledger) TradeLedger() []TradeEvent { return l.tradeLedger }

// RealizedTrades returns the closing fills recorded so far, for win
// rate, profit factor and average trade return computation.
func (l *Ledger) RealizedTrades() []RealizedTrade { return l.realizedTrades }

// Positions returns a snapshot of all known positions, including
// zero-quantity ones retained for reporting continuity (spec §4.6).
func (l *Ledger) Positions() map[bar.InstrumentID]Position {
	out := make(map[bar.InstrumentID]Position, len(l.positions))
	for id, p := range l.positions {
		out[id] = *p
	}
	return out
}

// Liquidate force-closes a position at the given mark price, charging a
// liquidation penalty fee and recording the realized PnL (spec §4.4:
// perpetual maintenance-margin breach).
func (l *Ledger) Liquidate(id bar.InstrumentID, markPrice money.D, penaltyBps int, barIndex int, at time.Time) order.Fill {
	pos := l.position(id, bar.CryptoPerp)
	qty := money.Abs(pos.Quantity)
	side := order.Sell
	if pos.Quantity.IsNegative() {
		side = order.Buy
	}
	notional := money.Mul(qty, markPrice)
	penalty := money.Mul(notional, money.BPS(penaltyBps))

	fill := order.Fill{
		OrderID:      "liquidation",
		Instrument:   id,
		Side:         side,
		FillQuantity: qty,
		FillPrice:    markPrice,
		FeeAmount:    penalty,
		TaxAmount:    money.Zero,
		TFill:        at,
		FillBarIndex: barIndex,
	}
	l.ApplyFill(fill, bar.Instrument{ID: id, Kind: bar.CryptoPerp})
	return fill
}

// MaintenanceBreached reports whether the account's current equity is
// below the maintenance margin requirement for a perpetual position,
// using the position's notional at markPrice (spec §4.4).
func MaintenanceBreached(equity, notional, maintenanceMarginRate money.D) bool {
	maintenance := money.Mul(notional, maintenanceMarginRate)
	return equity.LessThan(maintenance)
}
