// Package bar defines the immutable market-data types the rest of the core
// is built on: instruments, timeframes, bars, and the bounded per-bar view
// a strategy receives. Modeled on the teacher's Candle type (strategy.go)
// generalized to multi-instrument, multi-timeframe, decimal-priced bars.
package bar

import (
	"fmt"
	"time"

	"github.com/chidi150c/backtest-core/internal/money"
)

// AssetKind selects which rule-gate module governs an instrument.
type AssetKind string

const (
	CryptoSpot  AssetKind = "crypto_spot"
	CryptoPerp  AssetKind = "crypto_perp"
	StockAShare AssetKind = "stock_a_share"
)

// Board classifies an A-share listing for price-limit purposes. Carried
// with the instrument spec, never derived from the symbol (spec §9 open
// question).
type Board string

const (
	BoardMain    Board = "main"
	BoardChiNext Board = "chinext"
	BoardSTAR    Board = "star"
)

// InstrumentID uniquely names a tradable instrument.
type InstrumentID string

// Instrument is the stable identity and contract spec for a tradable asset.
type Instrument struct {
	ID       InstrumentID
	Venue    string
	Base     string
	Quote    string
	Kind     AssetKind
	PriceTick money.D
	LotStepMin money.D
	LotStep  money.D
	Settlement string

	// Perpetual-only.
	MaxLeverage money.D
	MinLeverage money.D

	// A-share-only.
	Board Board
	IsST  bool
}

func (i Instrument) String() string { return fmt.Sprintf("%s:%s", i.Venue, i.ID) }

// Timeframe is a fixed-width bucket in seconds.
type Timeframe int64

// AlignedOpen returns the bucket start for an arbitrary instant.
func (tf Timeframe) AlignedOpen(t time.Time) time.Time {
	sec := t.Unix()
	width := int64(tf)
	aligned := (sec / width) * width
	return time.Unix(aligned, 0).UTC()
}

// Bar is one OHLCV observation for an instrument/timeframe pair.
type Bar struct {
	Instrument InstrumentID
	Timeframe  Timeframe
	TOpen      time.Time
	Open       money.D
	High       money.D
	Low        money.D
	Close      money.D
	Volume     money.D
}

// TClose returns TOpen + Timeframe.
func (b Bar) TClose() time.Time {
	return b.TOpen.Add(time.Duration(b.Timeframe) * time.Second)
}

// Validate checks the OHLC invariants from spec §3:
// l <= min(o,c), h >= max(o,c), l <= h, v >= 0.
func (b Bar) Validate() error {
	lowOK := b.Low.LessThanOrEqual(money.Min(b.Open, b.Close))
	highOK := b.High.GreaterThanOrEqual(money.Max(b.Open, b.Close))
	if !lowOK || !highOK || b.Low.GreaterThan(b.High) || b.Volume.IsNegative() {
		return fmt.Errorf("malformed bar %s@%s: o=%s h=%s l=%s c=%s v=%s",
			b.Instrument, b.TOpen, b.Open, b.High, b.Low, b.Close, b.Volume)
	}
	return nil
}

// Key identifies a bar's (instrument, timeframe) stream.
type Key struct {
	Instrument InstrumentID
	Timeframe  Timeframe
}

// Frame is what a strategy receives at each tick (spec §3 BarFrame):
// the current bar, a bounded left-truncated history window of prior
// closed bars for the same (instrument, timeframe), and a ledger snapshot
// handle for position queries. History never contains the current bar.
type Frame struct {
	Key     Key
	Current Bar
	History []Bar // ascending by TOpen, length capped by the engine
	BarIndex int  // global scheduler index of Current, for order bookkeeping
	Snapshot LedgerSnapshot
}

// LedgerSnapshot is the read-only view of account state a strategy may
// query. Defined here (rather than in package ledger) to avoid an import
// cycle between bar.Frame and the ledger that produces it; package ledger
// implements this interface.
type LedgerSnapshot interface {
	PositionQty(id InstrumentID) money.D
	Cash() money.D
	Equity() money.D
}
