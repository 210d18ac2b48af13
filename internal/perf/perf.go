// Package perf computes performance metrics and builds the final report
// (spec §4.7) from a completed run's equity series and trade ledger. All
// outputs here are derived statistics, the one part of the core where
// float64 arithmetic is specified rather than exact decimal.
package perf

import (
	"math"

	"github.com/chidi150c/backtest-core/internal/ledger"
	"github.com/chidi150c/backtest-core/internal/money"
)

// Summary is the set of scalar metrics required by spec §4.7.
type Summary struct {
	TotalReturn          float64
	AnnualizedReturn     float64
	AnnualizedVolatility float64
	Sharpe               float64
	Sortino              float64
	Calmar               float64
	MaxDrawdown          float64
	WinRate              float64
	ProfitFactor         float64
	AvgTradeReturn       float64
	TotalTrades          int
	Turnover             float64
	TotalFees            money.D
	TotalTaxes           money.D
}

// Report bundles the summary with the raw series the core emits
// (spec §6): external serializers live outside the core.
type Report struct {
	Summary      Summary
	EquitySeries []ledger.EquityPoint
	TradeLedger  []ledger.TradeEvent
	Rejections   []ledger.TradeEvent
}

// Compute builds a Report from a finished backtest's ledger state.
// annualizationBasis is 365 for crypto, 252 for A-share (spec §4.7).
func Compute(initialCapital money.D, annualizationBasis int, l *ledger.Ledger) Report {
	series := l.EquitySeries()
	trades := l.TradeLedger()
	realized := l.RealizedTrades()

	var rejections []ledger.TradeEvent
	for _, e := range trades {
		if e.Rejection != nil {
			rejections = append(rejections, e)
		}
	}

	summary := Summarize(initialCapital, annualizationBasis, series, trades, realized)
	return Report{Summary: summary, EquitySeries: series, TradeLedger: trades, Rejections: rejections}
}

// Summarize computes the scalar metric set from raw series (spec §4.7),
// independent of a live Ledger. The orchestrator uses this directly to
// score walk-forward out-of-sample segments concatenated from several
// separate runs.
func Summarize(initialCapital money.D, annualizationBasis int, series []ledger.EquityPoint, trades []ledger.TradeEvent, realized []ledger.RealizedTrade) Summary {
	summary := Summary{TotalTrades: len(realized)}
	if len(series) == 0 {
		return summary
	}

	initial, _ := initialCapital.Float64()
	final, _ := series[len(series)-1].Equity.Float64()
	if initial != 0 {
		summary.TotalReturn = (final - initial) / initial
	}

	returns := barReturns(series)
	bars := float64(len(series))
	if bars > 0 && annualizationBasis > 0 {
		years := bars / float64(annualizationBasis)
		if years > 0 {
			summary.AnnualizedReturn = math.Pow(1+summary.TotalReturn, 1/years) - 1
		}
	}

	meanR, stdR := meanStdDev(returns)
	summary.AnnualizedVolatility = stdR * math.Sqrt(float64(annualizationBasis))
	if stdR != 0 {
		summary.Sharpe = (meanR / stdR) * math.Sqrt(float64(annualizationBasis))
	}

	downsideDev := downsideDeviation(returns)
	if downsideDev != 0 {
		summary.Sortino = (meanR / downsideDev) * math.Sqrt(float64(annualizationBasis))
	}

	maxDD := 0.0
	for _, p := range series {
		dd, _ := p.Drawdown.Float64()
		if dd > maxDD {
			maxDD = dd
		}
	}
	summary.MaxDrawdown = maxDD
	if maxDD != 0 {
		summary.Calmar = summary.AnnualizedReturn / maxDD
	}

	wins, grossProfit, grossLoss, sumReturn := 0, 0.0, 0.0, 0.0
	for _, t := range realized {
		pnl, _ := t.PnL.Float64()
		sumReturn += pnl
		if pnl > 0 {
			wins++
			grossProfit += pnl
		} else {
			grossLoss += -pnl
		}
	}
	if len(realized) > 0 {
		summary.WinRate = float64(wins) / float64(len(realized))
		summary.AvgTradeReturn = sumReturn / float64(len(realized))
	}
	if grossLoss != 0 {
		summary.ProfitFactor = grossProfit / grossLoss
	}

	turnoverNotional := money.Zero
	for _, e := range trades {
		if e.Fill == nil {
			continue
		}
		turnoverNotional = turnoverNotional.Add(money.Mul(e.Fill.FillQuantity, e.Fill.FillPrice))
		summary.TotalFees = summary.TotalFees.Add(e.Fill.FeeAmount)
		summary.TotalTaxes = summary.TotalTaxes.Add(e.Fill.TaxAmount)
	}
	if initial != 0 {
		turnoverF, _ := turnoverNotional.Float64()
		summary.Turnover = turnoverF / initial
	}

	return summary
}

func barReturns(series []ledger.EquityPoint) []float64 {
	if len(series) < 2 {
		return nil
	}
	out := make([]float64, 0, len(series)-1)
	for i := 1; i < len(series); i++ {
		prev, _ := series[i-1].Equity.Float64()
		cur, _ := series[i].Equity.Float64()
		if prev == 0 {
			out = append(out, 0)
			continue
		}
		out = append(out, (cur-prev)/prev)
	}
	return out
}

func meanStdDev(xs []float64) (mean, stdDev float64) {
	if len(xs) == 0 {
		return 0, 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	mean = sum / float64(len(xs))
	var sumSq float64
	for _, x := range xs {
		d := x - mean
		sumSq += d * d
	}
	stdDev = math.Sqrt(sumSq / float64(len(xs)))
	return mean, stdDev
}

func downsideDeviation(xs []float64) float64 {
	var sumSq float64
	var n int
	for _, x := range xs {
		if x < 0 {
			sumSq += x * x
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return math.Sqrt(sumSq / float64(n))
}
