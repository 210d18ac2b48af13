package ledger_test

import (
	"testing"
	"time"

	"github.com/chidi150c/backtest-core/internal/bar"
	"github.com/chidi150c/backtest-core/internal/ledger"
	"github.com/chidi150c/backtest-core/internal/money"
	"github.com/chidi150c/backtest-core/internal/order"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const spotID = bar.InstrumentID("BTC-USD")

func spotInstrument() bar.Instrument {
	return bar.Instrument{ID: spotID, Kind: bar.CryptoSpot}
}

// spec §8 scenario 2: single round-trip crypto spot buy, commission 10bps,
// slippage already baked into FillPrice by the caller.
func TestApplyFill_SpotRoundTrip(t *testing.T) {
	l := ledger.New(money.New(10000, 0))

	buyPrice := money.New(10005, -2) // 100.05
	fee := money.Mul(money.Mul(money.New(1, 0), buyPrice), money.BPS(10))
	l.ApplyFill(order.Fill{
		Instrument: spotID, Side: order.Buy, FillQuantity: money.New(1, 0),
		FillPrice: buyPrice, FeeAmount: fee, TFill: time.Unix(0, 0), FillBarIndex: 30,
	}, spotInstrument())

	require.True(t, l.PositionQty(spotID).Equal(money.New(1, 0)))

	l.Mark(30, map[bar.InstrumentID]bar.Bar{
		spotID: {Instrument: spotID, TOpen: time.Unix(0, 0), Open: buyPrice, High: buyPrice, Low: buyPrice, Close: money.New(110, 0)},
	})

	// 10000 - 100.05 - (100.05*0.001) + 110 = 10009.84995, which spec §8
	// scenario 2 rounds to 10009.85 for display; the ledger itself keeps
	// full decimal precision.
	expectedEquity := money.New(1000984995, -5)
	assert.True(t, l.Equity().Equal(expectedEquity), "got %s want %s", l.Equity(), expectedEquity)
}

// spec §8 scenario 3: A-share T+1 lock prevents same-day resale.
func TestSellableQty_AShareTPlusOne(t *testing.T) {
	l := ledger.New(money.New(100000, -2))
	inst := bar.Instrument{ID: "600000", Kind: bar.StockAShare}

	day1, _ := time.Parse("2006-01-02", "2024-01-02")
	l.ApplyFill(order.Fill{
		Instrument: inst.ID, Side: order.Buy, FillQuantity: money.New(100, 0),
		FillPrice: money.New(10, 0), TFill: day1, FillBarIndex: 0,
	}, inst)

	assert.True(t, l.SellableQty(inst.ID, day1).IsZero(), "same-day buy must not be sellable")

	day2 := day1.Add(24 * time.Hour)
	assert.True(t, l.SellableQty(inst.ID, day2).Equal(money.New(100, 0)), "next day, full quantity sellable")
}

// spec §8 scenario 5: perpetual liquidation settles the realized loss
// (less penalty) into cash once the position is flat.
func TestLiquidate_PerpEquityAfterLoss(t *testing.T) {
	l := ledger.New(money.New(1000, 0))
	inst := bar.Instrument{ID: "BTC-PERP", Kind: bar.CryptoPerp}

	l.ApplyFill(order.Fill{
		Instrument: inst.ID, Side: order.Buy, FillQuantity: money.New(100, 0),
		FillPrice: money.New(100, 0), TFill: time.Unix(0, 0), FillBarIndex: 0,
	}, inst)

	closeBar := bar.Bar{Instrument: inst.ID, TOpen: time.Unix(60, 0), Open: money.New(89, 0), High: money.New(89, 0), Low: money.New(89, 0), Close: money.New(89, 0)}
	l.Mark(1, map[bar.InstrumentID]bar.Bar{inst.ID: closeBar})

	require.True(t, ledger.MaintenanceBreached(l.Equity(), money.Mul(money.New(100, 0), money.New(89, 0)), money.Pct(5)))
	preLiqEquity := l.Equity()
	assert.True(t, preLiqEquity.Equal(money.New(-100, 0)), "got %s", preLiqEquity)

	l.Liquidate(inst.ID, money.New(89, 0), 50, 1, closeBar.TOpen)
	l.Mark(1, map[bar.InstrumentID]bar.Bar{inst.ID: closeBar})

	assert.True(t, l.PositionQty(inst.ID).IsZero())
	penalty := money.Mul(money.Mul(money.New(100, 0), money.New(89, 0)), money.BPS(50))
	expected := preLiqEquity.Sub(penalty)
	assert.True(t, l.Equity().Equal(expected), "got %s want %s", l.Equity(), expected)
}

func TestRecordRejection(t *testing.T) {
	l := ledger.New(money.New(100, 0))
	l.RecordRejection(order.Rejection{OrderID: "x", Instrument: spotID, Reason: "up_limit"})
	require.Len(t, l.TradeLedger(), 1)
	assert.Equal(t, "up_limit", l.TradeLedger()[0].Rejection.Reason)
}
