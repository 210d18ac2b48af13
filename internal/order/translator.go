package order

import (
	"fmt"

	"github.com/chidi150c/backtest-core/internal/bar"
	"github.com/chidi150c/backtest-core/internal/money"
)

// PositionQuery answers "what do we currently hold in this instrument",
// the only ledger fact the translator needs (spec §4.3: delta = target -
// current). Implemented by the portfolio ledger.
type PositionQuery interface {
	PositionQty(id bar.InstrumentID) money.D
}

// Translator converts strategy signals into concrete pending orders,
// differenced against current holdings (spec §4.3). Modeled on the
// teacher's SignalToSide (strategy.go) generalized from one implicit
// instrument and one signal per tick to N instruments and N signals,
// with the collapse-on-conflict rule spec §4.3 requires.
type Translator struct{}

// NewTranslator constructs a Translator. Stateless; kept as a type for
// symmetry with the other pipeline stages and to leave room for future
// per-translator configuration (e.g. default order type).
func NewTranslator() *Translator { return &Translator{} }

// result tracks the winning signal per instrument while collapsing
// conflicts, per spec §4.3: "TargetPosition overrides any earlier intent
// for that instrument; conflicting intents are rejected with
// duplicate_signal."
type result struct {
	sig       Signal
	hasTarget bool
	hasIntent bool
}

// Translate walks signals in emission order (spec §5: "applied in
// emission order during translation") and returns the orders to submit
// plus any duplicate-signal rejections, each tagged with its origin
// instrument for the caller to record.
func (t *Translator) Translate(signals []Signal, positions PositionQuery, submitBarIndex int) ([]Order, []DuplicateSignal, error) {
	byInstrument := map[bar.InstrumentID]*result{}
	order := []bar.InstrumentID{} // preserve first-seen order for determinism

	var dups []DuplicateSignal

	for _, sig := range signals {
		if err := sig.Validate(); err != nil {
			return nil, dups, fmt.Errorf("instrument %s: %w", sig.Instrument, err)
		}
		r, ok := byInstrument[sig.Instrument]
		if !ok {
			r = &result{}
			byInstrument[sig.Instrument] = r
			order = append(order, sig.Instrument)
		}
		switch sig.Kind {
		case KindTargetPosition:
			// A TargetPosition always wins, even over an earlier TargetPosition
			// or intent (spec §4.3).
			r.sig = sig
			r.hasTarget = true
			r.hasIntent = false
		case KindOrderIntent:
			if r.hasTarget {
				// Target already decided this instrument; intent is moot, not a conflict.
				continue
			}
			if r.hasIntent {
				dups = append(dups, DuplicateSignal{Instrument: sig.Instrument, BarIndex: submitBarIndex})
				continue
			}
			r.sig = sig
			r.hasIntent = true
		}
	}

	var out []Order
	seq := 0
	for _, id := range order {
		r := byInstrument[id]
		switch {
		case r.hasTarget:
			o, ok := t.fromTarget(r.sig, positions, submitBarIndex, seq)
			if ok {
				out = append(out, o)
				seq++
			}
		case r.hasIntent:
			out = append(out, fromIntent(r.sig, submitBarIndex, seq))
			seq++
		}
	}
	return out, dups, nil
}

// DuplicateSignal records a dropped conflicting-intent emission
// (spec §7: "Logged; strategy author bug; emission is dropped (non-fatal)
// and reported in the rejection ledger").
type DuplicateSignal struct {
	Instrument bar.InstrumentID
	BarIndex   int
}

func (t *Translator) fromTarget(sig Signal, positions PositionQuery, submitBarIndex, seq int) (Order, bool) {
	current := positions.PositionQty(sig.Instrument)
	delta := sig.TargetQty.Sub(current)
	if delta.IsZero() {
		return Order{}, false
	}
	side := Buy
	qty := delta
	if delta.IsNegative() {
		side = Sell
		qty = money.Abs(delta)
	}
	return New(sig.Instrument, side, qty, Market, money.Zero, submitBarIndex, seq, sig.Reason), true
}

func fromIntent(sig Signal, submitBarIndex, seq int) Order {
	return New(sig.Instrument, sig.Side, sig.Quantity, sig.Type, sig.LimitPrice, submitBarIndex, seq, sig.Reason)
}
