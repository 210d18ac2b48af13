// Package coreerr defines the semantic error kinds the backtest core
// surfaces (spec §7). Rule-gate decisions are values, not panics: only the
// Fatal kinds below ever unwind a run.
package coreerr

import "fmt"

// Kind enumerates the error families the core distinguishes.
type Kind string

const (
	InvalidConfig    Kind = "invalid_config"
	MalformedBar     Kind = "malformed_bar"
	DataGap          Kind = "data_gap"
	UnknownInstrument Kind = "unknown_instrument"
	DuplicateSignal  Kind = "duplicate_signal"
	RuleRejection    Kind = "rule_rejection"
	Liquidation      Kind = "liquidation"
	StrategyFault    Kind = "strategy_fault"
)

// Fatal reports whether errors of this kind abort the run by default
// (spec §7: InvalidConfig, MalformedBar, UnknownInstrument and
// StrategyFault are fatal; the rest accumulate in the ledger).
func (k Kind) Fatal() bool {
	switch k {
	case InvalidConfig, MalformedBar, UnknownInstrument, StrategyFault:
		return true
	default:
		return false
	}
}

// Error is a structured diagnostic carrying its Kind and context fields.
type Error struct {
	Kind    Kind
	Message string
	Reason  string // rule-gate reason code, e.g. "up_limit", "lot_step_zero"
}

func (e *Error) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Kind, e.Message, e.Reason)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// New builds an *Error of the given kind.
func New(k Kind, msg string) *Error { return &Error{Kind: k, Message: msg} }

// WithReason attaches a rule-gate reason code and returns e for chaining.
func (e *Error) WithReason(reason string) *Error {
	e.Reason = reason
	return e
}
