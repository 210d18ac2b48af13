package main

import (
	"github.com/chidi150c/backtest-core/internal/config"
	"github.com/chidi150c/backtest-core/internal/engine"
	"github.com/chidi150c/backtest-core/internal/xlog"
	"github.com/spf13/cobra"
)

func newRunCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a single deterministic backtest",
		RunE: func(cmd *cobra.Command, args []string) error {
			spec, err := config.Load(configPath)
			if err != nil {
				return err
			}
			result, err := runOnce(spec)
			if err != nil {
				return err
			}
			printSummary(result.Summary)
			return nil
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "path to the run config YAML")
	cmd.MarkFlagRequired("config")
	return cmd
}

// runOnce executes exactly one backtest from a fully-loaded RunSpec.
func runOnce(spec config.RunSpec) (engine.Result, error) {
	instruments, err := loadInstruments(spec)
	if err != nil {
		return engine.Result{}, err
	}
	history, err := loadFeed(spec)
	if err != nil {
		return engine.Result{}, err
	}
	engCfg, err := spec.Engine.ToEngineConfig()
	if err != nil {
		return engine.Result{}, err
	}
	factory, err := newStrategyFactory(spec)
	if err != nil {
		return engine.Result{}, err
	}
	strat := factory()
	if err := strat.Configure(spec.Strategy.Params); err != nil {
		return engine.Result{}, err
	}
	eng, err := engine.New(engCfg, instruments)
	if err != nil {
		return engine.Result{}, err
	}
	xlog.L().Info().Str("strategy", spec.Strategy.Name).Int("instruments", len(instruments)).Msg("starting backtest")
	return eng.Run(history, strat)
}
