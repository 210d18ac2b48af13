// Package matching implements the matching engine and slippage/fee model
// (spec §4.5): turning accepted orders into fills at the next bar's open,
// in the deterministic order the core's concurrency model requires
// (submit_seq within an instrument, spec §5).
package matching

import (
	"sort"
	"time"

	"github.com/chidi150c/backtest-core/internal/bar"
	"github.com/chidi150c/backtest-core/internal/money"
	"github.com/chidi150c/backtest-core/internal/order"
	"github.com/chidi150c/backtest-core/internal/rules"
)

// Config bundles the venue-independent execution parameters (engine
// config §6).
type Config struct {
	SlippageBps      int
	CommissionRate   money.D // crypto spot/perp only; A-share uses rules.Config
	LiquidationBps   int
	RulesConfig      rules.Config
}

// DefaultConfig returns the spec's documented defaults (5 bps slippage,
// 10 bps commission).
func DefaultConfig() Config {
	return Config{
		SlippageBps:    5,
		CommissionRate: money.BPS(10),
		LiquidationBps: 50,
		RulesConfig:    rules.DefaultConfig(),
	}
}

// PendingOrder pairs an order with the rule-gate input the engine has
// already assembled for it.
type PendingOrder struct {
	Order order.Order
	Eval  rules.EvalInput
}

// Outcome is the result of running one bar's worth of pending orders
// through the gate and matcher.
type Outcome struct {
	Fills       []order.Fill
	Rejections  []order.Rejection
}

// Engine executes the rule gate then the matcher for a batch of pending
// orders destined for the same next-bar-open instant (spec §4.5 step 2-4).
type Engine struct {
	Cfg Config
}

// New constructs a matching Engine.
func New(cfg Config) *Engine { return &Engine{Cfg: cfg} }

// Run processes pending orders in deterministic (instrument_id, submit_seq)
// order (spec §4.5 step 2), applying the rule gate then the fill formula.
func (e *Engine) Run(pending []PendingOrder, instruments map[bar.InstrumentID]bar.Instrument, barIndex int, at time.Time) Outcome {
	ordered := make([]PendingOrder, len(pending))
	copy(ordered, pending)
	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i].Order, ordered[j].Order
		if a.Instrument != b.Instrument {
			return a.Instrument < b.Instrument
		}
		return a.SubmitSeq < b.SubmitSeq
	})

	var out Outcome
	for _, p := range ordered {
		inst := instruments[p.Order.Instrument]
		gate := rules.ForKind(inst.Kind, e.Cfg.RulesConfig)
		decision := gate.Evaluate(p.Eval)
		if !decision.Accepted {
			out.Rejections = append(out.Rejections, order.Rejection{
				OrderID: p.Order.ID, Instrument: p.Order.Instrument,
				Reason: decision.Reason, BarIndex: barIndex, At: at,
			})
			continue
		}

		fill, expired := e.fill(p.Order, decision.Quantity, inst, p.Eval.NextBar, barIndex, at)
		if expired {
			out.Rejections = append(out.Rejections, order.Rejection{
				OrderID: p.Order.ID, Instrument: p.Order.Instrument,
				Reason: "limit_not_satisfied", BarIndex: barIndex, At: at,
			})
			continue
		}
		out.Fills = append(out.Fills, fill)
	}
	return out
}

// fill computes the fill price and fees for one accepted order per the
// spec §4.5 formula. Returns expired=true for a limit order whose price
// was not satisfied by the next bar's open.
func (e *Engine) fill(o order.Order, qty money.D, inst bar.Instrument, next bar.Bar, barIndex int, at time.Time) (order.Fill, bool) {
	slip := money.BPS(e.Cfg.SlippageBps)
	var fillPrice money.D
	if o.Side == order.Buy {
		fillPrice = money.Mul(next.Open, money.New(1, 0).Add(slip))
	} else {
		fillPrice = money.Mul(next.Open, money.New(1, 0).Sub(slip))
	}

	if o.Type == order.Limit {
		if o.Side == order.Buy && next.Open.GreaterThan(o.LimitPrice) {
			return order.Fill{}, true
		}
		if o.Side == order.Sell && next.Open.LessThan(o.LimitPrice) {
			return order.Fill{}, true
		}
	}

	commission, tax := e.fees(inst.Kind, o.Side, qty, fillPrice)

	return order.Fill{
		OrderID:      o.ID,
		Instrument:   o.Instrument,
		Side:         o.Side,
		FillQuantity: qty,
		FillPrice:    fillPrice,
		FeeAmount:    commission,
		TaxAmount:    tax,
		TFill:        at,
		FillBarIndex: barIndex,
	}, false
}

func (e *Engine) fees(kind bar.AssetKind, side order.Side, qty, fillPrice money.D) (commission, tax money.D) {
	if kind == bar.StockAShare {
		return rules.CommissionAndTax(kind, side, qty, fillPrice, e.Cfg.RulesConfig)
	}
	notional := money.Mul(qty, fillPrice)
	return money.Mul(notional, e.Cfg.CommissionRate), money.Zero
}
