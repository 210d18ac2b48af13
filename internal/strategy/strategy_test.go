package strategy_test

import (
	"testing"
	"time"

	"github.com/chidi150c/backtest-core/internal/bar"
	"github.com/chidi150c/backtest-core/internal/money"
	"github.com/chidi150c/backtest-core/internal/order"
	"github.com/chidi150c/backtest-core/internal/strategy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const instID = bar.InstrumentID("BTC-USD")

// fakeSnapshot implements bar.LedgerSnapshot with a single fixed position.
type fakeSnapshot struct {
	qty money.D
}

func (f fakeSnapshot) PositionQty(bar.InstrumentID) money.D { return f.qty }
func (f fakeSnapshot) Cash() money.D                        { return money.Zero }
func (f fakeSnapshot) Equity() money.D                      { return money.Zero }

func mkBar(t time.Time, o, h, l, c float64) bar.Bar {
	return bar.Bar{
		Instrument: instID, Timeframe: 60, TOpen: t,
		Open: money.FromFloat(o), High: money.FromFloat(h), Low: money.FromFloat(l), Close: money.FromFloat(c),
		Volume: money.New(1, 0),
	}
}

// series builds n history bars plus a final current bar from a list of
// closing prices, all with open=high=low=close for simplicity.
func series(closes []float64) ([]bar.Bar, bar.Bar) {
	start := time.Unix(0, 0)
	bars := make([]bar.Bar, len(closes))
	for i, c := range closes {
		bars[i] = mkBar(start.Add(time.Duration(i)*time.Minute), c, c, c, c)
	}
	return bars[:len(bars)-1], bars[len(bars)-1]
}

func frameFor(closes []float64, pos money.D) bar.Frame {
	history, current := series(closes)
	return bar.Frame{
		Key:      bar.Key{Instrument: instID, Timeframe: 60},
		Current:  current,
		History:  history,
		Snapshot: fakeSnapshot{qty: pos},
	}
}

// spec §4.2.2: Donchian enters on a close above the prior entry_period
// high, excluding the current bar from the channel.
func TestDonchian_EntersOnBreakoutExcludingCurrentBar(t *testing.T) {
	s := strategy.NewDonchian()
	require.NoError(t, s.Configure(map[string]any{"entry_period": 5, "exit_period": 3, "position_size": 1.0}))

	// five flat bars at 100 (the channel), then a breakout bar at 110.
	closes := []float64{100, 100, 100, 100, 100, 110}
	frame := frameFor(closes, money.Zero)

	signals, err := s.OnBar(frame)
	require.NoError(t, err)
	require.Len(t, signals, 1)
	assert.Equal(t, order.KindTargetPosition, signals[0].Kind)
	assert.True(t, signals[0].TargetQty.Equal(money.New(1, 0)))
}

func TestDonchian_NoSignalWithinChannel(t *testing.T) {
	s := strategy.NewDonchian()
	require.NoError(t, s.Configure(map[string]any{"entry_period": 5, "exit_period": 3, "position_size": 1.0}))

	closes := []float64{100, 101, 99, 100, 100, 100}
	frame := frameFor(closes, money.Zero)

	signals, err := s.OnBar(frame)
	require.NoError(t, err)
	assert.Empty(t, signals)
}

func TestDonchian_ExitsOnBreakdownWhileLong(t *testing.T) {
	s := strategy.NewDonchian()
	require.NoError(t, s.Configure(map[string]any{"entry_period": 5, "exit_period": 3, "position_size": 1.0}))

	closes := []float64{100, 100, 100, 100, 100, 90}
	frame := frameFor(closes, money.New(1, 0))

	signals, err := s.OnBar(frame)
	require.NoError(t, err)
	require.Len(t, signals, 1)
	assert.True(t, signals[0].TargetQty.IsZero())
}

// spec §4.2.3: Bollinger enters on a touch of the lower band, exits on
// a touch of the middle band.
func TestBollinger_EntersOnLowerBandTouch(t *testing.T) {
	s := strategy.NewBollinger()
	require.NoError(t, s.Configure(map[string]any{"period": 5, "std_dev": 1.0, "position_size": 1.0}))

	closes := []float64{100, 101, 99, 100, 100, 80}
	frame := frameFor(closes, money.Zero)

	signals, err := s.OnBar(frame)
	require.NoError(t, err)
	require.Len(t, signals, 1)
	assert.Equal(t, "bollinger_lower_touch", signals[0].Reason)
}

func TestBollinger_NoSignalInsideBands(t *testing.T) {
	s := strategy.NewBollinger()
	require.NoError(t, s.Configure(map[string]any{"period": 5, "std_dev": 2.0, "position_size": 1.0}))

	closes := []float64{100, 101, 99, 100, 100, 100}
	frame := frameFor(closes, money.Zero)

	signals, err := s.OnBar(frame)
	require.NoError(t, err)
	assert.Empty(t, signals)
}

// spec §4.2.4: RSI mean-reversion enters below the oversold threshold.
func TestRSIMeanReversion_EntersWhenOversold(t *testing.T) {
	s := strategy.NewRSIMeanReversion()
	require.NoError(t, s.Configure(map[string]any{"period": 3, "oversold": 30.0, "overbought": 70.0, "position_size": 1.0}))

	// a steady decline drives RSI toward zero (all losses, no gains).
	closes := []float64{100, 95, 90, 85}
	frame := frameFor(closes, money.Zero)

	signals, err := s.OnBar(frame)
	require.NoError(t, err)
	require.Len(t, signals, 1)
	assert.Equal(t, "rsi_oversold", signals[0].Reason)
}

func TestRSIMeanReversion_ExitsWhenOverbought(t *testing.T) {
	s := strategy.NewRSIMeanReversion()
	require.NoError(t, s.Configure(map[string]any{"period": 3, "oversold": 30.0, "overbought": 70.0, "position_size": 1.0}))

	// a steady rise drives RSI toward 100 (all gains, no losses).
	closes := []float64{100, 105, 110, 115}
	frame := frameFor(closes, money.New(1, 0))

	signals, err := s.OnBar(frame)
	require.NoError(t, err)
	require.Len(t, signals, 1)
	assert.Equal(t, "rsi_overbought", signals[0].Reason)
}

// spec §4.2.5: z-score enters below -entry_z, exits at or above -exit_z.
func TestZScore_EntersOnNegativeExtreme(t *testing.T) {
	s := strategy.NewZScore()
	require.NoError(t, s.Configure(map[string]any{"period": 5, "entry_z": 1.0, "exit_z": 0.0, "position_size": 1.0}))

	closes := []float64{100, 100, 100, 100, 100, 50}
	frame := frameFor(closes, money.Zero)

	signals, err := s.OnBar(frame)
	require.NoError(t, err)
	require.Len(t, signals, 1)
	assert.Equal(t, "zscore_entry", signals[0].Reason)
}

func TestZScore_NoSignalWithoutEnoughHistory(t *testing.T) {
	s := strategy.NewZScore()
	require.NoError(t, s.Configure(map[string]any{"period": 20, "entry_z": 1.0, "exit_z": 0.0, "position_size": 1.0}))

	closes := []float64{100, 90, 80}
	frame := frameFor(closes, money.Zero)

	signals, err := s.OnBar(frame)
	require.NoError(t, err)
	assert.Empty(t, signals)
}

func TestRegistry_LookupKnownAndUnknown(t *testing.T) {
	for _, name := range strategy.Names() {
		factory, err := strategy.Lookup(name)
		require.NoError(t, err)
		assert.NotNil(t, factory())
	}

	_, err := strategy.Lookup("not_a_real_strategy")
	assert.Error(t, err)
}
