package orchestrator

import "github.com/prometheus/client_golang/prometheus"

// Sweep-progress gauges/counters, modeled on the teacher's metrics.go
// (a small init() plus package-level accessors registered once).
var (
	sweepSamplesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backtest_sweep_samples_total",
			Help: "Parameter samples evaluated by the orchestrator, by outcome.",
		},
		[]string{"outcome"},
	)

	sweepInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "backtest_sweep_in_flight",
			Help: "Backtest workers currently running within a sweep.",
		},
	)

	sweepBestScore = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "backtest_sweep_best_score",
			Help: "Best score observed so far in the current sweep.",
		},
	)

	walkForwardWindows = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "backtest_walk_forward_windows_total",
			Help: "Walk-forward train/test windows completed.",
		},
	)
)

func init() {
	prometheus.MustRegister(sweepSamplesTotal, sweepInFlight, sweepBestScore, walkForwardWindows)
}
