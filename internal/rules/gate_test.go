package rules_test

import (
	"testing"

	"github.com/chidi150c/backtest-core/internal/bar"
	"github.com/chidi150c/backtest-core/internal/money"
	"github.com/chidi150c/backtest-core/internal/order"
	"github.com/chidi150c/backtest-core/internal/rules"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPriceLimitBand(t *testing.T) {
	up, down := rules.PriceLimitBand(money.New(10, 0), bar.BoardMain, false)
	assert.True(t, up.Equal(money.New(11, 0)), "got %s", up)
	assert.True(t, down.Equal(money.New(9, 0)), "got %s", down)

	up, _ = rules.PriceLimitBand(money.New(10, 0), bar.BoardChiNext, false)
	assert.True(t, up.Equal(money.New(12, 0)), "got %s", up)

	up, _ = rules.PriceLimitBand(money.New(10, 0), bar.BoardMain, true)
	assert.True(t, up.Equal(money.New(1050, -2)), "got %s", up)
}

// spec §8 scenario 4: a buy at the up-limit price is rejected.
func TestAShareGate_UpLimitRejection(t *testing.T) {
	gate := rules.AShareGate{Cfg: rules.DefaultConfig()}
	inst := bar.Instrument{ID: "600000", Kind: bar.StockAShare, Board: bar.BoardMain}
	nextOpen := money.New(11, 0)

	decision := gate.Evaluate(rules.EvalInput{
		Order:      order.Order{Side: order.Buy, Quantity: money.New(100, 0), Type: order.Market},
		Instrument: inst,
		NextBar:    bar.Bar{Open: nextOpen, High: nextOpen, Low: nextOpen, Close: nextOpen},
		PrevClose:  money.New(10, 0),
		FreeCash:   money.New(100000, 0),
	})
	require.False(t, decision.Accepted)
	assert.Equal(t, rules.ReasonUpLimit, decision.Reason)
}

// spec §8 scenario 3: sell commission is max(5, notional*0.03%); sell adds
// stamp duty of notional*0.05%.
func TestCommissionAndTax_AShare(t *testing.T) {
	cfg := rules.DefaultConfig()
	commission, tax := rules.CommissionAndTax(bar.StockAShare, order.Buy, money.New(100, 0), money.New(10, 0), cfg)
	assert.True(t, commission.Equal(money.New(5, 0)), "got %s", commission)
	assert.True(t, tax.IsZero())

	commission, tax = rules.CommissionAndTax(bar.StockAShare, order.Sell, money.New(100, 0), money.New(10, 0), cfg)
	assert.True(t, commission.Equal(money.New(5, 0)), "got %s", commission)
	assert.True(t, tax.Equal(money.New(5, -1)), "got %s", tax) // 10*100*0.0005 = 0.50
}

func TestAShareGate_TPlusOneRejection(t *testing.T) {
	gate := rules.AShareGate{Cfg: rules.DefaultConfig()}
	inst := bar.Instrument{ID: "600000", Kind: bar.StockAShare, Board: bar.BoardMain}
	price := money.New(10, 0)

	decision := gate.Evaluate(rules.EvalInput{
		Order:       order.Order{Side: order.Sell, Quantity: money.New(100, 0), Type: order.Market},
		Instrument:  inst,
		NextBar:     bar.Bar{Open: price, High: price, Low: price, Close: price},
		PrevClose:   price,
		SellableQty: money.Zero,
		FreeCash:    money.New(100000, 0),
	})
	require.False(t, decision.Accepted)
	assert.Equal(t, rules.ReasonTPlusOne, decision.Reason)
}

func TestAShareGate_LotStepFloorsToZero(t *testing.T) {
	gate := rules.AShareGate{Cfg: rules.DefaultConfig()}
	inst := bar.Instrument{ID: "600000", Kind: bar.StockAShare, Board: bar.BoardMain}
	price := money.New(10, 0)

	decision := gate.Evaluate(rules.EvalInput{
		Order:      order.Order{Side: order.Buy, Quantity: money.New(50, 0), Type: order.Market},
		Instrument: inst,
		NextBar:    bar.Bar{Open: price, High: price, Low: price, Close: price},
		PrevClose:  price,
		FreeCash:   money.New(100000, 0),
	})
	require.False(t, decision.Accepted)
	assert.Equal(t, rules.ReasonLotStepZero, decision.Reason)
}

func TestCryptoSpotGate_NoShort(t *testing.T) {
	gate := rules.CryptoSpotGate{Cfg: rules.DefaultConfig()}
	inst := bar.Instrument{ID: "BTC-USD", Kind: bar.CryptoSpot}
	price := money.New(100, 0)

	decision := gate.Evaluate(rules.EvalInput{
		Order:       order.Order{Side: order.Sell, Quantity: money.New(1, 0), Type: order.Market},
		Instrument:  inst,
		NextBar:     bar.Bar{Open: price, High: price, Low: price, Close: price},
		SellableQty: money.Zero,
		FreeCash:    money.New(10000, 0),
	})
	require.False(t, decision.Accepted)
	assert.Equal(t, rules.ReasonNoShort, decision.Reason)
}

func TestCryptoPerpGate_InsufficientMargin(t *testing.T) {
	gate := rules.CryptoPerpGate{Cfg: rules.DefaultConfig()}
	inst := bar.Instrument{ID: "BTC-PERP", Kind: bar.CryptoPerp, MaxLeverage: money.New(10, 0)}
	price := money.New(100, 0)

	decision := gate.Evaluate(rules.EvalInput{
		Order:      order.Order{Side: order.Buy, Quantity: money.New(1000, 0), Type: order.Market},
		Instrument: inst,
		NextBar:    bar.Bar{Open: price, High: price, Low: price, Close: price},
		FreeCash:   money.New(1000, 0),
	})
	require.False(t, decision.Accepted)
	assert.Equal(t, rules.ReasonInsufficientMargin, decision.Reason)
}
