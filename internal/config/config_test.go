package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/chidi150c/backtest-core/internal/bar"
	"github.com/chidi150c/backtest-core/internal/config"
	"github.com/chidi150c/backtest-core/internal/money"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const doc = `
engine:
  initial_capital: "10000"
  commission_rate: "0.001"
  slippage_bps: 5
  annualization_basis: 365
strategy:
  name: crossover
  params:
    fast: 5
    slow: 20
instruments:
  - id: BTC-USD
    venue: coinbase
    kind: crypto_spot
    csv_path: data/btc.csv
    timeframe_seconds: 60
sweep:
  sampler: grid
  samples: 10
  seed: 1
  score_field: sharpe
  dimensions:
    - name: fast
      kind: discrete
      values: [3, 5, 8]
`

func TestLoad_ParsesRunSpec(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "run.yaml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	spec, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "crossover", spec.Strategy.Name)
	require.Len(t, spec.Instruments, 1)
	assert.Equal(t, "BTC-USD", spec.Instruments[0].ID)
	require.NotNil(t, spec.Sweep)
	assert.Equal(t, 10, spec.Sweep.Samples)

	engCfg, err := spec.Engine.ToEngineConfig()
	require.NoError(t, err)
	assert.True(t, engCfg.InitialCapital.Equal(money.New(10000, 0)), "got %s", engCfg.InitialCapital)
	assert.Equal(t, 5, engCfg.SlippageBps)

	inst, err := spec.Instruments[0].ToInstrument()
	require.NoError(t, err)
	assert.Equal(t, bar.CryptoSpot, inst.Kind)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load("/nonexistent/path.yaml")
	require.Error(t, err)
}
