package orchestrator_test

import (
	"context"
	"testing"
	"time"

	"github.com/chidi150c/backtest-core/internal/bar"
	"github.com/chidi150c/backtest-core/internal/engine"
	"github.com/chidi150c/backtest-core/internal/feed"
	"github.com/chidi150c/backtest-core/internal/money"
	"github.com/chidi150c/backtest-core/internal/orchestrator"
	"github.com/chidi150c/backtest-core/internal/strategy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const instID = bar.InstrumentID("BTC-USD")

func flatBars(n int, price money.D, start time.Time) []bar.Bar {
	out := make([]bar.Bar, n)
	for i := 0; i < n; i++ {
		t := start.Add(time.Duration(i) * time.Minute)
		out[i] = bar.Bar{Instrument: instID, Timeframe: 60, TOpen: t, Open: price, High: price, Low: price, Close: price, Volume: money.New(1, 0)}
	}
	return out
}

func rampBars(n int, start time.Time, startPrice float64) []bar.Bar {
	out := make([]bar.Bar, n)
	p := startPrice
	for i := 0; i < n; i++ {
		t := start.Add(time.Duration(i) * time.Minute)
		price := money.FromFloat(p)
		out[i] = bar.Bar{Instrument: instID, Timeframe: 60, TOpen: t, Open: price, High: price, Low: price, Close: price, Volume: money.New(1, 0)}
		p++
	}
	return out
}

func newOrchestrator(f *feed.Feed) *orchestrator.Orchestrator {
	return &orchestrator.Orchestrator{
		EngineCfg:   engine.Config{InitialCapital: money.New(10000, 0), AnnualizationBasis: 365},
		Instruments: []bar.Instrument{{ID: instID, Kind: bar.CryptoSpot}},
		NewStrategy: func() strategy.Strategy { return strategy.NewCrossover() },
		Concurrency: 2,
	}
}

func gridSpace() orchestrator.Space {
	return orchestrator.Space{
		{Name: "fast", Kind: orchestrator.Discrete, Values: []any{3, 5}},
		{Name: "slow", Kind: orchestrator.Discrete, Values: []any{10, 20}},
	}
}

// spec §4.8: Sweep runs one engine pass per sample and ranks descending
// by the scoring field.
func TestSweep_RanksResultsDescendingByScore(t *testing.T) {
	f := feed.New()
	start := time.Unix(0, 0)
	f.AddStream(bar.Key{Instrument: instID, Timeframe: 60}, rampBars(200, start, 100))

	orch := newOrchestrator(f)
	ranked, err := orch.Sweep(context.Background(), f, gridSpace(), orchestrator.GridSampler{}, 0, 1, "sharpe")
	require.NoError(t, err)
	require.Len(t, ranked, 4)
	for i := 1; i < len(ranked); i++ {
		assert.True(t, ranked[i-1].Score >= ranked[i].Score, "results not sorted descending")
	}
}

func TestSweep_CleanRunReturnsOneResultPerGridSample(t *testing.T) {
	f := feed.New()
	f.AddStream(bar.Key{Instrument: instID, Timeframe: 60}, flatBars(50, money.New(100, 0), time.Unix(0, 0)))

	orch := newOrchestrator(f)
	// a non-numeric fast/slow parameter doesn't error Configure in this
	// strategy (it falls back to defaults), so this checks that a clean run
	// produces no error and one result per grid sample.
	ranked, err := orch.Sweep(context.Background(), f, gridSpace(), orchestrator.GridSampler{}, 0, 1, "sharpe")
	require.NoError(t, err)
	assert.Len(t, ranked, 4)
}

// spec §4.8 "Determinism": two sweeps with the same seed and sampler
// produce the same ranked sample set.
func TestSweep_DeterministicAcrossRuns(t *testing.T) {
	f := feed.New()
	f.AddStream(bar.Key{Instrument: instID, Timeframe: 60}, rampBars(200, time.Unix(0, 0), 100))
	orch := newOrchestrator(f)

	a, err := orch.Sweep(context.Background(), f, gridSpace(), orchestrator.RandomSampler{}, 4, 7, "sharpe")
	require.NoError(t, err)
	b, err := orch.Sweep(context.Background(), f, gridSpace(), orchestrator.RandomSampler{}, 4, 7, "sharpe")
	require.NoError(t, err)

	require.Equal(t, len(a), len(b))
	for i := range a {
		assert.Equal(t, a[i].Sample.Params, b[i].Sample.Params)
	}
}

// spec §4.8: windows partition [start,end) into consecutive
// (train, test) slices advancing by step each iteration.
func TestBuildWindows_PartitionsIntoConsecutiveSlices(t *testing.T) {
	start := time.Unix(0, 0)
	end := start.Add(10 * time.Hour)
	windows := orchestrator.BuildWindows(start, end, 2*time.Hour, time.Hour)
	require.NotEmpty(t, windows)
	for i, w := range windows {
		assert.Equal(t, w.TrainEnd, w.TestStart)
		if i > 0 {
			assert.Equal(t, windows[i-1].TrainStart.Add(time.Hour), w.TrainStart)
		}
	}
}

func TestWalkForward_ConcatenatesOutOfSampleWindows(t *testing.T) {
	f := feed.New()
	start := time.Unix(0, 0)
	f.AddStream(bar.Key{Instrument: instID, Timeframe: 60}, rampBars(300, start, 100))
	orch := newOrchestrator(f)

	trainStart, _ := f.Bounds()
	windows := orchestrator.BuildWindows(trainStart, trainStart.Add(250*time.Minute), 60*time.Minute, 30*time.Minute)
	require.NotEmpty(t, windows)

	result, err := orch.WalkForward(context.Background(), f, gridSpace(), orchestrator.GridSampler{}, 0, 1, "sharpe", windows)
	require.NoError(t, err)
	assert.Len(t, result.Steps, len(windows))
	assert.NotEmpty(t, result.EquitySeries)
}
