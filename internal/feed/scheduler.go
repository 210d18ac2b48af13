package feed

import "github.com/chidi150c/backtest-core/internal/bar"

// Scheduler advances the simulation clock one tick at a time, maintaining
// a bounded, left-truncated history window per (instrument, timeframe)
// and reporting whether a strategy's warm-up requirement has been met
// (spec §4.1). Bars before warm-up still update the history window.
type Scheduler struct {
	warmup     int
	historyCap int
	history    map[bar.Key][]bar.Bar
}

// NewScheduler constructs a Scheduler. warmup is the strategy's declared
// minimum history length (or the engine's warmup_bars override if
// larger, spec §6); historyCap bounds how much history a Frame carries.
func NewScheduler(warmup, historyCap int) *Scheduler {
	if historyCap < warmup {
		historyCap = warmup
	}
	return &Scheduler{warmup: warmup, historyCap: historyCap, history: map[bar.Key][]bar.Bar{}}
}

// Advance folds one tick into the scheduler's state and returns the
// Frame a strategy would see, plus whether warm-up has elapsed for this
// stream. Snapshot is left nil; the caller (engine) attaches the ledger
// view before invoking the strategy.
func (s *Scheduler) Advance(t Tick) (bar.Frame, bool) {
	hist := s.history[t.Key]
	ready := len(hist) >= s.warmup

	windowed := hist
	if len(windowed) > s.historyCap {
		windowed = windowed[len(windowed)-s.historyCap:]
	}
	history := make([]bar.Bar, len(windowed))
	copy(history, windowed)

	frame := bar.Frame{
		Key:      t.Key,
		Current:  t.Bar,
		History:  history,
		BarIndex: t.GlobalIndex,
	}

	hist = append(hist, t.Bar)
	if len(hist) > s.historyCap {
		hist = hist[len(hist)-s.historyCap:]
	}
	s.history[t.Key] = hist

	return frame, ready
}
