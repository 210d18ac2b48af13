// Package config loads the declarative YAML documents the core's
// external collaborators hand it: engine configuration, instrument
// specs, and parameter-space descriptors (spec §6). The core itself
// never parses storage formats; this package is the one boundary layer
// that does, living outside the engine proper the way the teacher's
// config.go/env.go stayed outside the trading logic.
package config

import (
	"fmt"
	"os"

	"github.com/chidi150c/backtest-core/internal/bar"
	"github.com/chidi150c/backtest-core/internal/engine"
	"github.com/chidi150c/backtest-core/internal/feed"
	"github.com/chidi150c/backtest-core/internal/money"
	"github.com/chidi150c/backtest-core/internal/orchestrator"
	"gopkg.in/yaml.v3"
)

// InstrumentSpec is the YAML-facing instrument declaration (spec §6).
type InstrumentSpec struct {
	ID          string `yaml:"id"`
	Venue       string `yaml:"venue"`
	Base        string `yaml:"base"`
	Quote       string `yaml:"quote"`
	Kind        string `yaml:"kind"` // crypto_spot, crypto_perp, stock_a_share
	PriceTick   string `yaml:"price_tick"`
	LotStep     string `yaml:"lot_step"`
	Settlement  string `yaml:"settlement"`
	MaxLeverage string `yaml:"max_leverage"`
	MinLeverage string `yaml:"min_leverage"`
	Board       string `yaml:"board"`
	IsST        bool   `yaml:"is_st"`
	CSVPath     string `yaml:"csv_path"`
	Timeframe   int64  `yaml:"timeframe_seconds"`
}

// ToInstrument converts the YAML spec into bar.Instrument.
func (s InstrumentSpec) ToInstrument() (bar.Instrument, error) {
	inst := bar.Instrument{
		ID: bar.InstrumentID(s.ID), Venue: s.Venue, Base: s.Base, Quote: s.Quote,
		Kind: bar.AssetKind(s.Kind), Settlement: s.Settlement,
		Board: bar.Board(s.Board), IsST: s.IsST,
	}
	var err error
	if inst.PriceTick, err = decimalOrZero(s.PriceTick); err != nil {
		return inst, fmt.Errorf("instrument %s: price_tick: %w", s.ID, err)
	}
	if inst.LotStep, err = decimalOrZero(s.LotStep); err != nil {
		return inst, fmt.Errorf("instrument %s: lot_step: %w", s.ID, err)
	}
	if inst.MaxLeverage, err = decimalOrZero(s.MaxLeverage); err != nil {
		return inst, fmt.Errorf("instrument %s: max_leverage: %w", s.ID, err)
	}
	if inst.MinLeverage, err = decimalOrZero(s.MinLeverage); err != nil {
		return inst, fmt.Errorf("instrument %s: min_leverage: %w", s.ID, err)
	}
	return inst, nil
}

func decimalOrZero(s string) (money.D, error) {
	if s == "" {
		return money.Zero, nil
	}
	return money.FromString(s)
}

// EngineSpec is the YAML-facing engine configuration (spec §6).
type EngineSpec struct {
	InitialCapital        string `yaml:"initial_capital"`
	CommissionRate        string `yaml:"commission_rate"`
	SlippageBps           int    `yaml:"slippage_bps"`
	GapPolicy             string `yaml:"gap_policy"`
	AnnualizationBasis    int    `yaml:"annualization_basis"`
	MaxLeverage           string `yaml:"max_leverage"`
	MaintenanceMarginRate string `yaml:"maintenance_margin_rate"`
	LiquidationPenaltyBps int    `yaml:"liquidation_penalty_bps"`
	WarmupBars            int    `yaml:"warmup_bars"`
	AShareCommissionRate  string `yaml:"ashare_commission_rate"`
	AShareMinCommission   string `yaml:"ashare_min_commission"`
	AShareStampDutyRate   string `yaml:"ashare_stamp_duty_rate"`
	Tolerant              bool   `yaml:"tolerant"`
}

// ToEngineConfig converts the YAML spec into engine.Config.
func (s EngineSpec) ToEngineConfig() (engine.Config, error) {
	cfg := engine.Config{
		SlippageBps:           s.SlippageBps,
		GapPolicy:             feed.GapPolicy(s.GapPolicy),
		AnnualizationBasis:    s.AnnualizationBasis,
		LiquidationPenaltyBps: s.LiquidationPenaltyBps,
		WarmupBars:            s.WarmupBars,
		Tolerant:              s.Tolerant,
	}
	if cfg.GapPolicy == "" {
		cfg.GapPolicy = feed.GapSkip
	}
	if cfg.AnnualizationBasis == 0 {
		cfg.AnnualizationBasis = 365
	}
	var err error
	if cfg.InitialCapital, err = decimalOrZero(s.InitialCapital); err != nil {
		return cfg, fmt.Errorf("initial_capital: %w", err)
	}
	if cfg.CommissionRate, err = decimalOrZero(s.CommissionRate); err != nil {
		return cfg, fmt.Errorf("commission_rate: %w", err)
	}
	if cfg.MaxLeverage, err = decimalOrZero(s.MaxLeverage); err != nil {
		return cfg, fmt.Errorf("max_leverage: %w", err)
	}
	if cfg.MaintenanceMarginRate, err = decimalOrZero(s.MaintenanceMarginRate); err != nil {
		return cfg, fmt.Errorf("maintenance_margin_rate: %w", err)
	}
	if cfg.AShareCommissionRate, err = decimalOrZero(s.AShareCommissionRate); err != nil {
		return cfg, fmt.Errorf("ashare_commission_rate: %w", err)
	}
	if cfg.AShareMinCommission, err = decimalOrZero(s.AShareMinCommission); err != nil {
		return cfg, fmt.Errorf("ashare_min_commission: %w", err)
	}
	if cfg.AShareStampDutyRate, err = decimalOrZero(s.AShareStampDutyRate); err != nil {
		return cfg, fmt.Errorf("ashare_stamp_duty_rate: %w", err)
	}
	return cfg, nil
}

// StrategySpec names a built-in strategy and its parameters.
type StrategySpec struct {
	Name   string         `yaml:"name"`
	Params map[string]any `yaml:"params"`
}

// DimensionSpec is one YAML parameter-space dimension (spec §4.8).
type DimensionSpec struct {
	Name   string  `yaml:"name"`
	Kind   string  `yaml:"kind"` // fixed, discrete, range, distribution
	Fixed  any     `yaml:"fixed"`
	Values []any   `yaml:"values"`
	Min    float64 `yaml:"min"`
	Max    float64 `yaml:"max"`
	Step   float64 `yaml:"step"`
	Mean   float64 `yaml:"mean"`
	StdDev float64 `yaml:"std_dev"`
}

// ToDimension converts the YAML dimension into orchestrator.Dimension.
func (d DimensionSpec) ToDimension() orchestrator.Dimension {
	return orchestrator.Dimension{
		Name: d.Name, Kind: orchestrator.DimensionKind(d.Kind),
		FixedValue: d.Fixed, Values: d.Values,
		Min: d.Min, Max: d.Max, Step: d.Step,
		Mean: d.Mean, StdDev: d.StdDev,
	}
}

// SweepSpec is a full parameter-sweep document (spec §4.8).
type SweepSpec struct {
	Sampler    string          `yaml:"sampler"` // grid, random, latin_hypercube
	Samples    int             `yaml:"samples"`
	Seed       int64           `yaml:"seed"`
	ScoreField string          `yaml:"score_field"`
	Dimensions []DimensionSpec `yaml:"dimensions"`
}

// WalkForwardSpec describes walk-forward windowing (spec §4.8).
type WalkForwardSpec struct {
	WindowDays int `yaml:"window_days"`
	StepDays   int `yaml:"step_days"`
}

// RunSpec is the top-level document for both `backtest run` and
// `backtest sweep`.
type RunSpec struct {
	Engine      EngineSpec       `yaml:"engine"`
	Instruments []InstrumentSpec `yaml:"instruments"`
	Strategy    StrategySpec     `yaml:"strategy"`
	Sweep       *SweepSpec       `yaml:"sweep,omitempty"`
	WalkForward *WalkForwardSpec `yaml:"walk_forward,omitempty"`
}

// Load reads and parses a RunSpec document from path.
func Load(path string) (RunSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return RunSpec{}, err
	}
	var spec RunSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return RunSpec{}, fmt.Errorf("parsing %s: %w", path, err)
	}
	return spec, nil
}
