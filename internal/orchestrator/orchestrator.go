package orchestrator

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/chidi150c/backtest-core/internal/bar"
	"github.com/chidi150c/backtest-core/internal/engine"
	"github.com/chidi150c/backtest-core/internal/feed"
	"github.com/chidi150c/backtest-core/internal/perf"
	"github.com/chidi150c/backtest-core/internal/strategy"
	"golang.org/x/sync/errgroup"
)

// StrategyFactory builds a fresh, unconfigured strategy instance. Each
// sweep sample gets its own instance so parallel workers share no state
// (spec §5: "independent backtests have disjoint state").
type StrategyFactory func() strategy.Strategy

// Orchestrator runs the single-run engine repeatedly under varying
// strategy parameter sets (spec §4.8).
type Orchestrator struct {
	EngineCfg   engine.Config
	Instruments []bar.Instrument
	NewStrategy StrategyFactory
	Concurrency int // worker cap; defaults to 4
}

// ScoredResult pairs one parameter sample with its backtest result and
// the scalar score it was ranked on.
type ScoredResult struct {
	Sample Sample
	Result engine.Result
	Score  float64
	Err    error
}

// Sweep runs one engine pass per sample, in parallel up to Concurrency
// workers (spec §5 "parallelism envelope"), and returns results ranked
// descending by scoreField (spec §4.8, default "sharpe").
func (o *Orchestrator) Sweep(ctx context.Context, history *feed.Feed, space Space, sampler Sampler, n int, seed int64, scoreField string) ([]ScoredResult, error) {
	samples := sampler.Sample(space, n, seed)
	results := make([]ScoredResult, len(samples))

	workers := o.Concurrency
	if workers <= 0 {
		workers = 4
	}
	sem := make(chan struct{}, workers)
	g, gctx := errgroup.WithContext(ctx)

	var mu sync.Mutex
	bestScore := 0.0
	first := true

	for i, s := range samples {
		i, s := i, s
		g.Go(func() error {
			select {
			case sem <- struct{}{}:
			case <-gctx.Done():
				return gctx.Err()
			}
			defer func() { <-sem }()

			sweepInFlight.Inc()
			defer sweepInFlight.Dec()

			strat := o.NewStrategy()
			if err := strat.Configure(s.Params); err != nil {
				results[i] = ScoredResult{Sample: s, Err: err}
				sweepSamplesTotal.WithLabelValues("config_error").Inc()
				return nil
			}
			eng, err := engine.New(o.EngineCfg, o.Instruments)
			if err != nil {
				results[i] = ScoredResult{Sample: s, Err: err}
				sweepSamplesTotal.WithLabelValues("config_error").Inc()
				return nil
			}
			result, err := eng.Run(history, strat)
			if err != nil {
				results[i] = ScoredResult{Sample: s, Err: err}
				sweepSamplesTotal.WithLabelValues("run_error").Inc()
				return nil
			}
			score := Score(result.Summary, scoreField)
			results[i] = ScoredResult{Sample: s, Result: result, Score: score}
			sweepSamplesTotal.WithLabelValues("ok").Inc()

			mu.Lock()
			if first || score > bestScore {
				bestScore = score
				first = false
				sweepBestScore.Set(bestScore)
			}
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Err != nil {
			return false
		}
		if results[j].Err != nil {
			return true
		}
		return results[i].Score > results[j].Score
	})
	return results, nil
}

// Score extracts the named metric from a Summary (spec §4.8: "a
// configurable scoring field, default Sharpe ratio").
func Score(s perf.Summary, field string) float64 {
	switch field {
	case "", "sharpe":
		return s.Sharpe
	case "sortino":
		return s.Sortino
	case "calmar":
		return s.Calmar
	case "total_return":
		return s.TotalReturn
	case "annualized_return":
		return s.AnnualizedReturn
	case "profit_factor":
		return s.ProfitFactor
	case "win_rate":
		return s.WinRate
	default:
		return s.Sharpe
	}
}

// Window is one walk-forward train/test slice (spec §4.8).
type Window struct {
	TrainStart, TrainEnd time.Time
	TestStart, TestEnd   time.Time
}

// BuildWindows partitions [start, end) into consecutive (train, test)
// slices of length windowLen followed by step, sliding forward by step
// each iteration (spec §4.8).
func BuildWindows(start, end time.Time, windowLen, step time.Duration) []Window {
	var windows []Window
	for trainStart := start; ; trainStart = trainStart.Add(step) {
		trainEnd := trainStart.Add(windowLen)
		testEnd := trainEnd.Add(step)
		if testEnd.After(end) {
			break
		}
		windows = append(windows, Window{
			TrainStart: trainStart, TrainEnd: trainEnd,
			TestStart: trainEnd, TestEnd: testEnd,
		})
	}
	return windows
}
