package order

import (
	"time"

	"github.com/chidi150c/backtest-core/internal/bar"
	"github.com/chidi150c/backtest-core/internal/money"
	"github.com/google/uuid"
)

// Order is a concrete pending order, post-translation, pre-execution
// (spec §3). It lives only until the next bar's open: it is filled,
// rejected, or cancelled there and never carried further.
type Order struct {
	ID              string
	Instrument      bar.InstrumentID
	Side            Side
	Quantity        money.D
	Type            Type
	LimitPrice      money.D
	SubmitBarIndex  int
	SubmitSeq       int // per-bar submission sequence, for deterministic matching order
	Reason          string
}

// New mints an order with a fresh ID.
func New(instrument bar.InstrumentID, side Side, qty money.D, typ Type, limitPrice money.D, submitBarIndex, submitSeq int, reason string) Order {
	return Order{
		ID:             uuid.NewString(),
		Instrument:     instrument,
		Side:           side,
		Quantity:       qty,
		Type:           typ,
		LimitPrice:     limitPrice,
		SubmitBarIndex: submitBarIndex,
		SubmitSeq:      submitSeq,
		Reason:         reason,
	}
}

// Fill records an executed (full or partial) quantity of an order
// (spec §3). t_fill always equals the next bar's t_open.
type Fill struct {
	OrderID      string
	Instrument   bar.InstrumentID
	Side         Side
	FillQuantity money.D
	FillPrice    money.D
	FeeAmount    money.D
	TaxAmount    money.D
	TFill        time.Time
	FillBarIndex int
}

// Rejection records a structured rule-gate or translator decision that
// prevented an order from filling (spec §4.4, §7). Persisted to the trade
// ledger for audit alongside Fills.
type Rejection struct {
	OrderID    string
	Instrument bar.InstrumentID
	Reason     string
	BarIndex   int
	At         time.Time
}
