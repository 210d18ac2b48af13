package orchestrator

import (
	"context"

	"github.com/chidi150c/backtest-core/internal/engine"
	"github.com/chidi150c/backtest-core/internal/feed"
	"github.com/chidi150c/backtest-core/internal/ledger"
	"github.com/chidi150c/backtest-core/internal/perf"
)

// WalkForwardStep is one window's tuned-and-tested outcome.
type WalkForwardStep struct {
	Window     Window
	BestSample Sample
	TestResult engine.Result
}

// WalkForwardResult is the concatenation of all out-of-sample test
// windows plus their aggregate metrics (spec §4.8).
type WalkForwardResult struct {
	Steps         []WalkForwardStep
	Summary       perf.Summary
	EquitySeries  []ledger.EquityPoint
}

// WalkForward tunes parameters on each window's training slice, then
// evaluates the chosen parameters on the immediately following test
// slice, reporting the concatenated out-of-sample series (spec §4.8).
func (o *Orchestrator) WalkForward(ctx context.Context, history *feed.Feed, space Space, sampler Sampler, n int, seed int64, scoreField string, windows []Window) (WalkForwardResult, error) {
	var steps []WalkForwardStep
	var allEquity []ledger.EquityPoint
	var allTrades []ledger.TradeEvent
	var allRealized []ledger.RealizedTrade
	barOffset := 0

	for _, w := range windows {
		trainFeed := history.Slice(w.TrainStart, w.TrainEnd)
		ranked, err := o.Sweep(ctx, trainFeed, space, sampler, n, seed, scoreField)
		if err != nil {
			return WalkForwardResult{}, err
		}
		var best *ScoredResult
		for i := range ranked {
			if ranked[i].Err == nil {
				best = &ranked[i]
				break
			}
		}
		if best == nil {
			continue
		}

		testFeed := history.Slice(w.TestStart, w.TestEnd)
		strat := o.NewStrategy()
		if err := strat.Configure(best.Sample.Params); err != nil {
			return WalkForwardResult{}, err
		}
		eng, err := engine.New(o.EngineCfg, o.Instruments)
		if err != nil {
			return WalkForwardResult{}, err
		}
		testResult, err := eng.Run(testFeed, strat)
		if err != nil {
			return WalkForwardResult{}, err
		}

		steps = append(steps, WalkForwardStep{Window: w, BestSample: best.Sample, TestResult: testResult})
		for _, p := range testResult.EquitySeries {
			p.BarIndex += barOffset
			allEquity = append(allEquity, p)
		}
		barOffset += len(testResult.EquitySeries)
		allTrades = append(allTrades, testResult.TradeLedger...)
		allRealized = append(allRealized, testResult.RealizedTrades...)
		walkForwardWindows.Inc()
	}

	summary := perf.Summarize(o.EngineCfg.InitialCapital, o.EngineCfg.AnnualizationBasis, allEquity, allTrades, allRealized)
	return WalkForwardResult{Steps: steps, Summary: summary, EquitySeries: allEquity}, nil
}
