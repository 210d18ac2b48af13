package main

import (
	"context"
	"fmt"
	"time"

	"github.com/chidi150c/backtest-core/internal/config"
	"github.com/chidi150c/backtest-core/internal/orchestrator"
	"github.com/chidi150c/backtest-core/internal/xlog"
	"github.com/spf13/cobra"
)

func newSweepCmd() *cobra.Command {
	var configPath string
	var concurrency int

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Run a parameter sweep, optionally with walk-forward windows",
		RunE: func(cmd *cobra.Command, args []string) error {
			spec, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if spec.Sweep == nil {
				return fmt.Errorf("config has no sweep section")
			}
			return runSweep(spec, concurrency)
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "path to the sweep config YAML")
	cmd.Flags().IntVar(&concurrency, "concurrency", 4, "max concurrent sweep workers")
	cmd.MarkFlagRequired("config")
	return cmd
}

func runSweep(spec config.RunSpec, concurrency int) error {
	instruments, err := loadInstruments(spec)
	if err != nil {
		return err
	}
	history, err := loadFeed(spec)
	if err != nil {
		return err
	}
	engCfg, err := spec.Engine.ToEngineConfig()
	if err != nil {
		return err
	}
	factory, err := newStrategyFactory(spec)
	if err != nil {
		return err
	}

	space := make(orchestrator.Space, len(spec.Sweep.Dimensions))
	for i, d := range spec.Sweep.Dimensions {
		space[i] = d.ToDimension()
	}
	sampler, err := pickSampler(spec.Sweep.Sampler)
	if err != nil {
		return err
	}

	orch := &orchestrator.Orchestrator{
		EngineCfg:   engCfg,
		Instruments: instruments,
		NewStrategy: orchestrator.StrategyFactory(factory),
		Concurrency: concurrency,
	}

	ctx := context.Background()
	if spec.WalkForward != nil {
		start, end := history.Bounds()
		windows := orchestrator.BuildWindows(start, end,
			time.Duration(spec.WalkForward.WindowDays)*24*time.Hour,
			time.Duration(spec.WalkForward.StepDays)*24*time.Hour)
		wf, err := orch.WalkForward(ctx, history, space, sampler, spec.Sweep.Samples, spec.Sweep.Seed, spec.Sweep.ScoreField, windows)
		if err != nil {
			return err
		}
		xlog.L().Info().Int("windows", len(wf.Steps)).Msg("walk-forward complete")
		printSummary(wf.Summary)
		return nil
	}

	ranked, err := orch.Sweep(ctx, history, space, sampler, spec.Sweep.Samples, spec.Sweep.Seed, spec.Sweep.ScoreField)
	if err != nil {
		return err
	}
	if len(ranked) == 0 || ranked[0].Err != nil {
		return fmt.Errorf("sweep produced no viable sample")
	}
	best := ranked[0]
	xlog.L().Info().Interface("params", best.Sample.Params).Float64("score", best.Score).Msg("best sample")
	printSummary(best.Result.Summary)
	return nil
}

func pickSampler(name string) (orchestrator.Sampler, error) {
	switch name {
	case "", "grid":
		return orchestrator.GridSampler{}, nil
	case "random":
		return orchestrator.RandomSampler{}, nil
	case "latin_hypercube":
		return orchestrator.LatinHypercubeSampler{}, nil
	default:
		return nil, fmt.Errorf("unknown sampler %q", name)
	}
}
