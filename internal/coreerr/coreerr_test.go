package coreerr_test

import (
	"testing"

	"github.com/chidi150c/backtest-core/internal/coreerr"
	"github.com/stretchr/testify/assert"
)

// spec §7: InvalidConfig, MalformedBar, UnknownInstrument and
// StrategyFault abort the run; the rest accumulate in the ledger.
func TestKind_FatalClassification(t *testing.T) {
	fatal := []coreerr.Kind{coreerr.InvalidConfig, coreerr.MalformedBar, coreerr.UnknownInstrument, coreerr.StrategyFault}
	for _, k := range fatal {
		assert.True(t, k.Fatal(), "%s should be fatal", k)
	}

	nonFatal := []coreerr.Kind{coreerr.DataGap, coreerr.DuplicateSignal, coreerr.RuleRejection, coreerr.Liquidation}
	for _, k := range nonFatal {
		assert.False(t, k.Fatal(), "%s should not be fatal", k)
	}
}

func TestError_ErrorStringWithAndWithoutReason(t *testing.T) {
	plain := coreerr.New(coreerr.DataGap, "missing bar")
	assert.Equal(t, "data_gap: missing bar", plain.Error())

	withReason := coreerr.New(coreerr.RuleRejection, "order rejected").WithReason("up_limit")
	assert.Equal(t, "rule_rejection: order rejected (up_limit)", withReason.Error())
}

func TestError_WithReasonReturnsSameInstanceForChaining(t *testing.T) {
	e := coreerr.New(coreerr.RuleRejection, "x")
	got := e.WithReason("down_limit")
	assert.Same(t, e, got)
}
