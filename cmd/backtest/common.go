package main

import (
	"fmt"

	"github.com/chidi150c/backtest-core/internal/bar"
	"github.com/chidi150c/backtest-core/internal/config"
	"github.com/chidi150c/backtest-core/internal/feed"
	"github.com/chidi150c/backtest-core/internal/strategy"
)

// loadInstruments converts every InstrumentSpec into a bar.Instrument,
// reporting the first conversion error encountered.
func loadInstruments(spec config.RunSpec) ([]bar.Instrument, error) {
	instruments := make([]bar.Instrument, 0, len(spec.Instruments))
	for _, is := range spec.Instruments {
		inst, err := is.ToInstrument()
		if err != nil {
			return nil, err
		}
		instruments = append(instruments, inst)
	}
	return instruments, nil
}

// loadFeed builds one feed.Feed stream per instrument from its declared
// CSV file, keyed by (instrument, timeframe) per spec §4.1.
func loadFeed(spec config.RunSpec) (*feed.Feed, error) {
	f := feed.New()
	for _, is := range spec.Instruments {
		if is.CSVPath == "" {
			continue
		}
		tf := bar.Timeframe(is.Timeframe)
		bars, err := feed.LoadCSV(is.CSVPath, bar.InstrumentID(is.ID), tf)
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", is.CSVPath, err)
		}
		f.AddStream(bar.Key{Instrument: bar.InstrumentID(is.ID), Timeframe: tf}, bars)
	}
	return f, nil
}

// newStrategyFactory resolves the configured strategy name to a
// strategy.Factory, so both `run` and `sweep` can build fresh instances.
func newStrategyFactory(spec config.RunSpec) (strategy.Factory, error) {
	return strategy.Lookup(spec.Strategy.Name)
}
