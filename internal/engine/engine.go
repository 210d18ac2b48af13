// Package engine wires the seven components (spec §2) into the pure
// function spec §5 describes: run(config, history, strategy) -> result.
// The engine owns the ledger exclusively and drives the strategy in
// strict bar order, so no interior locking is needed (spec §5).
package engine

import (
	"fmt"

	"github.com/chidi150c/backtest-core/internal/bar"
	"github.com/chidi150c/backtest-core/internal/coreerr"
	"github.com/chidi150c/backtest-core/internal/feed"
	"github.com/chidi150c/backtest-core/internal/ledger"
	"github.com/chidi150c/backtest-core/internal/matching"
	"github.com/chidi150c/backtest-core/internal/money"
	"github.com/chidi150c/backtest-core/internal/order"
	"github.com/chidi150c/backtest-core/internal/perf"
	"github.com/chidi150c/backtest-core/internal/rules"
	"github.com/chidi150c/backtest-core/internal/strategy"
	"github.com/chidi150c/backtest-core/internal/xlog"
)

// defaultHistoryCap bounds how many prior bars a Frame carries regardless
// of a strategy's declared warm-up, to keep per-tick allocation bounded
// over long runs.
const defaultHistoryCap = 1000

// Config enumerates the engine configuration options from spec §6.
type Config struct {
	InitialCapital        money.D
	CommissionRate        money.D // crypto spot/perp, default 10bps
	SlippageBps           int     // applied as given; zero means no slippage (no default is filled in)
	GapPolicy             feed.GapPolicy
	AnnualizationBasis    int // 365 crypto, 252 A-share
	MaxLeverage           money.D
	MaintenanceMarginRate money.D
	LiquidationPenaltyBps int
	WarmupBars            int // overrides strategy default if larger
	AShareCommissionRate  money.D
	AShareMinCommission   money.D
	AShareStampDutyRate   money.D
	Tolerant              bool // StrategyFault: record and continue instead of aborting
}

// Validate enforces spec §7's InvalidConfig checks.
func (c Config) Validate() error {
	if c.InitialCapital.IsNegative() || c.InitialCapital.IsZero() {
		return coreerr.New(coreerr.InvalidConfig, "initial_capital must be positive")
	}
	if c.SlippageBps < 0 {
		return coreerr.New(coreerr.InvalidConfig, "slippage_bps must be >= 0")
	}
	if c.AnnualizationBasis != 365 && c.AnnualizationBasis != 252 {
		return coreerr.New(coreerr.InvalidConfig, "annualization_basis must be 365 or 252")
	}
	return nil
}

func (c Config) rulesConfig() rules.Config {
	cfg := rules.DefaultConfig()
	if c.MaxLeverage.IsPositive() {
		cfg.MaxLeverage = c.MaxLeverage
	}
	if c.MaintenanceMarginRate.IsPositive() {
		cfg.MaintenanceMarginRate = c.MaintenanceMarginRate
	}
	if c.AShareCommissionRate.IsPositive() {
		cfg.AShareCommissionRate = c.AShareCommissionRate
	}
	if c.AShareMinCommission.IsPositive() {
		cfg.AShareMinCommission = c.AShareMinCommission
	}
	if c.AShareStampDutyRate.IsPositive() {
		cfg.AShareStampDutyRate = c.AShareStampDutyRate
	}
	return cfg
}

func (c Config) matchingConfig() matching.Config {
	cfg := matching.DefaultConfig()
	cfg.SlippageBps = c.SlippageBps
	if c.CommissionRate.IsPositive() {
		cfg.CommissionRate = c.CommissionRate
	}
	if c.LiquidationPenaltyBps > 0 {
		cfg.LiquidationBps = c.LiquidationPenaltyBps
	}
	cfg.RulesConfig = c.rulesConfig()
	return cfg
}

// Result is the core's output (spec §6).
type Result struct {
	Summary        perf.Summary
	EquitySeries   []ledger.EquityPoint
	TradeLedger    []ledger.TradeEvent
	Rejections     []ledger.TradeEvent
	RealizedTrades []ledger.RealizedTrade
}

// Engine runs a single deterministic backtest.
type Engine struct {
	cfg         Config
	instruments map[bar.InstrumentID]bar.Instrument
}

// New constructs an Engine for the given instrument universe.
func New(cfg Config, instruments []bar.Instrument) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	byID := make(map[bar.InstrumentID]bar.Instrument, len(instruments))
	for _, inst := range instruments {
		byID[inst.ID] = inst
	}
	return &Engine{cfg: cfg, instruments: byID}, nil
}

// Run executes the full bar-by-bar simulation (spec §5) and returns the
// report the metrics component builds.
func (e *Engine) Run(history *feed.Feed, strat strategy.Strategy) (Result, error) {
	meta := strat.Metadata()
	warmup := meta.RequiredHistory
	if e.cfg.WarmupBars > warmup {
		warmup = e.cfg.WarmupBars
	}

	ticks, err := history.Merge(e.cfg.GapPolicy)
	if err != nil {
		return Result{}, err
	}

	sched := feed.NewScheduler(warmup, defaultHistoryCap)
	l := ledger.New(e.cfg.InitialCapital)
	translator := order.NewTranslator()
	matcher := matching.New(e.cfg.matchingConfig())

	pending := map[bar.InstrumentID][]order.Order{}
	lastClose := map[bar.InstrumentID]money.D{}
	observer, hasObserver := strat.(strategy.FillObserver)

	for _, t := range ticks {
		instID := t.Bar.Instrument
		inst, known := e.instruments[instID]
		if !known {
			return Result{}, coreerr.New(coreerr.UnknownInstrument, fmt.Sprintf("no spec for instrument %s", instID))
		}

		if orders := pending[instID]; len(orders) > 0 {
			prevClose := lastClose[instID]
			batch := make([]matching.PendingOrder, 0, len(orders))
			for _, o := range orders {
				batch = append(batch, matching.PendingOrder{
					Order: o,
					Eval: rules.EvalInput{
						Order:       o,
						Instrument:  inst,
						NextBar:     t.Bar,
						PrevClose:   prevClose,
						PositionQty: l.PositionQty(instID),
						SellableQty: l.SellableQty(instID, t.Bar.TOpen),
						FreeCash:    l.FreeCash(),
					},
				})
			}
			outcome := matcher.Run(batch, e.instruments, t.GlobalIndex, t.Bar.TOpen)
			for _, f := range outcome.Fills {
				l.ApplyFill(f, inst)
				if hasObserver {
					observer.OnFill(f)
				}
			}
			for _, r := range outcome.Rejections {
				l.RecordRejection(r)
			}
			delete(pending, instID)
		}

		l.Mark(t.GlobalIndex, map[bar.InstrumentID]bar.Bar{instID: t.Bar})
		e.checkLiquidation(l, instID, inst, t)

		lastClose[instID] = t.Bar.Close

		frame, ready := sched.Advance(t)
		if !ready {
			continue
		}
		frame.Snapshot = l

		signals, sErr := strat.OnBar(frame)
		if sErr != nil {
			if !e.cfg.Tolerant {
				return Result{}, coreerr.New(coreerr.StrategyFault, sErr.Error())
			}
			xlog.L().Warn().Err(sErr).Str("instrument", string(instID)).Msg("strategy fault, treated as empty")
			signals = nil
		}
		if len(signals) == 0 {
			continue
		}

		orders, dups, tErr := translator.Translate(signals, l, t.GlobalIndex)
		if tErr != nil {
			return Result{}, coreerr.New(coreerr.UnknownInstrument, tErr.Error())
		}
		for _, d := range dups {
			l.RecordRejection(order.Rejection{
				Instrument: d.Instrument, Reason: "duplicate_signal", BarIndex: d.BarIndex, At: t.Bar.TOpen,
			})
		}
		for _, o := range orders {
			pending[o.Instrument] = append(pending[o.Instrument], o)
		}
	}

	report := perf.Compute(e.cfg.InitialCapital, e.cfg.AnnualizationBasis, l)
	return Result{
		Summary:        report.Summary,
		EquitySeries:   report.EquitySeries,
		TradeLedger:    report.TradeLedger,
		Rejections:     report.Rejections,
		RealizedTrades: l.RealizedTrades(),
	}, nil
}

// checkLiquidation force-closes a perpetual position whose equity has
// fallen below the maintenance margin requirement at this bar's close
// (spec §4.4), recording the forced fill and re-marking the account.
func (e *Engine) checkLiquidation(l *ledger.Ledger, instID bar.InstrumentID, inst bar.Instrument, t feed.Tick) {
	if inst.Kind != bar.CryptoPerp {
		return
	}
	positions := l.Positions()
	pos, ok := positions[instID]
	if !ok || pos.Quantity.IsZero() {
		return
	}
	notional := money.Mul(money.Abs(pos.Quantity), t.Bar.Close)
	if !ledger.MaintenanceBreached(l.Equity(), notional, e.cfg.rulesConfig().MaintenanceMarginRate) {
		return
	}
	l.Liquidate(instID, t.Bar.Close, e.cfg.matchingConfig().LiquidationBps, t.GlobalIndex, t.Bar.TClose())
	l.Mark(t.GlobalIndex, map[bar.InstrumentID]bar.Bar{instID: t.Bar})
}
