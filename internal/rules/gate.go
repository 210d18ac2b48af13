// Package rules implements the market-specific rule gate (spec §4.4):
// legality checks and rewrites applied to a pending order at the next
// bar's open, before the matching engine fills it. Decisions are values
// (spec §9), never panics — a rejection is just a Decision with
// Accepted == false and a Reason.
package rules

import (
	"github.com/chidi150c/backtest-core/internal/bar"
	"github.com/chidi150c/backtest-core/internal/money"
	"github.com/chidi150c/backtest-core/internal/order"
)

// Rejection reason codes (spec §4.4, §7).
const (
	ReasonLotStepZero        = "lot_step_zero"
	ReasonUpLimit            = "up_limit"
	ReasonDownLimit          = "down_limit"
	ReasonTPlusOne           = "t_plus_one"
	ReasonInsufficientCash   = "insufficient_cash"
	ReasonInsufficientMargin = "insufficient_margin"
	ReasonNoShort            = "no_short"
)

// EvalInput is everything a Gate needs to judge one pending order. The
// engine/ledger compute these fields before calling Evaluate; the gate
// itself never reaches back into the ledger (spec §5: the ledger is owned
// exclusively by the engine instance).
type EvalInput struct {
	Order       order.Order
	Instrument  bar.Instrument
	NextBar     bar.Bar // order fills (or is rejected) at NextBar.Open
	PrevClose   money.D // close of the bar immediately preceding NextBar
	PositionQty money.D // current signed position quantity
	SellableQty money.D // quantity available to sell (T+1-adjusted for A-share)
	FreeCash    money.D // the ledger's current cash; no margin is reserved out of it
}

// Decision is the gate's verdict: accept (optionally with a rewritten,
// lot-rounded quantity) or reject with a structured reason.
type Decision struct {
	Accepted bool
	Quantity money.D // rewritten quantity when Accepted
	Reason   string  // populated when !Accepted
}

func accept(qty money.D) Decision   { return Decision{Accepted: true, Quantity: qty} }
func reject(reason string) Decision { return Decision{Accepted: false, Reason: reason} }

// Gate is the per-asset-kind legality module.
type Gate interface {
	Evaluate(in EvalInput) Decision
}

// ForKind returns the Gate implementation for an asset kind.
func ForKind(kind bar.AssetKind, cfg Config) Gate {
	switch kind {
	case bar.CryptoPerp:
		return CryptoPerpGate{Cfg: cfg}
	case bar.StockAShare:
		return AShareGate{Cfg: cfg}
	default:
		return CryptoSpotGate{Cfg: cfg}
	}
}

// Config bundles the venue parameters a gate needs (engine config §6).
type Config struct {
	MaxLeverage           money.D
	MaintenanceMarginRate money.D
	AShareCommissionRate  money.D // default 0.03%
	AShareMinCommission   money.D // default 5 (settlement currency)
	AShareStampDutyRate   money.D // default 0.05%, sell-side only
}

// DefaultConfig returns the spec's documented defaults.
func DefaultConfig() Config {
	return Config{
		MaxLeverage:           money.New(10, 0),
		MaintenanceMarginRate: money.Pct(5),
		AShareCommissionRate:  money.Pct(0.03),
		AShareMinCommission:   money.New(5, 0),
		AShareStampDutyRate:   money.Pct(0.05),
	}
}
