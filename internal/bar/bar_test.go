package bar_test

import (
	"testing"
	"time"

	"github.com/chidi150c/backtest-core/internal/bar"
	"github.com/chidi150c/backtest-core/internal/money"
	"github.com/stretchr/testify/assert"
)

func validBar() bar.Bar {
	return bar.Bar{
		Instrument: "BTC-USD", Timeframe: 60, TOpen: time.Unix(0, 0),
		Open: money.New(100, 0), High: money.New(105, 0), Low: money.New(95, 0), Close: money.New(102, 0),
		Volume: money.New(10, 0),
	}
}

// spec §3: l <= min(o,c), h >= max(o,c), l <= h, v >= 0.
func TestBar_ValidateAcceptsWellFormedBar(t *testing.T) {
	assert.NoError(t, validBar().Validate())
}

func TestBar_ValidateRejectsLowAboveOpenClose(t *testing.T) {
	b := validBar()
	b.Low = money.New(101, 0)
	assert.Error(t, b.Validate())
}

func TestBar_ValidateRejectsHighBelowOpenClose(t *testing.T) {
	b := validBar()
	b.High = money.New(101, 0)
	assert.Error(t, b.Validate())
}

func TestBar_ValidateRejectsLowAboveHigh(t *testing.T) {
	b := validBar()
	b.Low = money.New(106, 0)
	b.High = money.New(95, 0)
	assert.Error(t, b.Validate())
}

func TestBar_ValidateRejectsNegativeVolume(t *testing.T) {
	b := validBar()
	b.Volume = money.New(-1, 0)
	assert.Error(t, b.Validate())
}

func TestBar_TCloseIsOpenPlusTimeframe(t *testing.T) {
	b := validBar()
	assert.Equal(t, b.TOpen.Add(60*time.Second), b.TClose())
}

func TestTimeframe_AlignedOpenBucketsToWidth(t *testing.T) {
	tf := bar.Timeframe(60)
	mid := time.Unix(125, 0)
	assert.Equal(t, time.Unix(120, 0).UTC(), tf.AlignedOpen(mid))
}

func TestTimeframe_AlignedOpenIsIdempotentOnBucketStart(t *testing.T) {
	tf := bar.Timeframe(300)
	start := time.Unix(600, 0)
	assert.Equal(t, start.UTC(), tf.AlignedOpen(start))
}
