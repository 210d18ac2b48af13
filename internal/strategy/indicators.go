package strategy

import (
	"math"

	"github.com/chidi150c/backtest-core/internal/bar"
	"github.com/chidi150c/backtest-core/internal/money"
)

// closes returns the visible close series for a frame: history (ascending,
// oldest first) followed by the current, already-closed bar. Generalizes
// the teacher's indicators.go, which operated on a single []Candle slice,
// to the frame-at-a-time shape the engine delivers per tick.
func closes(frame bar.Frame) []money.D {
	out := make([]money.D, 0, len(frame.History)+1)
	for _, b := range frame.History {
		out = append(out, b.Close)
	}
	out = append(out, frame.Current.Close)
	return out
}

// sma returns the simple moving average of the last n values ending
// `back` positions from the end of series (back=0 means the most recent
// value is included). Returns (zero, false) if there is not enough data.
func sma(series []money.D, n, back int) (money.D, bool) {
	end := len(series) - back
	start := end - n
	if start < 0 || end > len(series) || n <= 0 {
		return money.Zero, false
	}
	sum := money.Zero
	for _, v := range series[start:end] {
		sum = sum.Add(v)
	}
	return money.Div(sum, money.New(int64(n), 0)), true
}

// ema computes the exponential moving average over the full series using
// a seed SMA(n) for the first value, matching the common convention for
// warm-up.
func ema(series []money.D, n int) (money.D, bool) {
	if len(series) < n || n <= 0 {
		return money.Zero, false
	}
	alpha := money.Div(money.New(2, 0), money.New(int64(n+1), 0))
	seed, ok := sma(series[:n], n, 0)
	if !ok {
		return money.Zero, false
	}
	result := seed
	oneMinusAlpha := money.New(1, 0).Sub(alpha)
	for _, v := range series[n:] {
		result = money.Mul(v, alpha).Add(money.Mul(result, oneMinusAlpha))
	}
	return result, true
}

// donchianChannel returns the highest high and lowest low over the n bars
// immediately preceding the current bar, excluding it (spec §4.2:
// "channel bounds exclude the current bar").
func donchianChannel(history []bar.Bar, n int) (high, low money.D, ok bool) {
	if len(history) < n || n <= 0 {
		return money.Zero, money.Zero, false
	}
	window := history[len(history)-n:]
	high, low = window[0].High, window[0].Low
	for _, b := range window[1:] {
		high = money.Max(high, b.High)
		low = money.Min(low, b.Low)
	}
	return high, low, true
}

// bollinger returns the middle, upper and lower bands over the trailing
// n closes (including the current bar). Standard deviation has no exact
// decimal form, so it is computed via float64 and converted back, as rsi
// and zscore also do for their final statistic — consistent with the
// spec reserving float arithmetic for derived statistics.
func bollinger(series []money.D, n int, numStdDev float64) (mid, upper, lower money.D, ok bool) {
	mean, ok := sma(series, n, 0)
	if !ok {
		return money.Zero, money.Zero, money.Zero, false
	}
	window := series[len(series)-n:]
	var sumSq float64
	meanF, _ := mean.Float64()
	for _, v := range window {
		f, _ := v.Float64()
		d := f - meanF
		sumSq += d * d
	}
	stdDev := math.Sqrt(sumSq / float64(n))
	band := money.FromFloat(stdDev * numStdDev)
	return mean, mean.Add(band), mean.Sub(band), true
}

// rsi returns the n-period RSI ending at the most recent value in series,
// using the simple average of the last n gains and losses (no Wilder
// smoothing). Generalizes the teacher's RSI (indicators.go)
// from a full-history pass to a single trailing value, and from float64
// to decimal gain/loss accumulation; the final division to a 0-100 scale
// uses float64, a derived statistic rather than a monetary quantity.
func rsi(series []money.D, n int) (money.D, bool) {
	if len(series) < n+1 || n <= 0 {
		return money.Zero, false
	}
	start := len(series) - n - 1
	window := series[start:]
	gain, loss := money.Zero, money.Zero
	for i := 1; i <= n; i++ {
		d := window[i].Sub(window[i-1])
		if d.IsPositive() {
			gain = gain.Add(d)
		} else {
			loss = loss.Sub(d)
		}
	}
	avgGain := money.Div(gain, money.New(int64(n), 0))
	avgLoss := money.Div(loss, money.New(int64(n), 0))
	if avgLoss.IsZero() {
		return money.New(100, 0), true
	}
	rs, _ := money.Div(avgGain, avgLoss).Float64()
	return money.FromFloat(100 - (100 / (1 + rs))), true
}

// zscore returns the rolling z-score of the most recent value against the
// trailing n-period mean/stddev.
func zscore(series []money.D, n int) (money.D, bool) {
	mean, ok := sma(series, n, 0)
	if !ok {
		return money.Zero, false
	}
	window := series[len(series)-n:]
	meanF, _ := mean.Float64()
	var sumSq float64
	for _, v := range window {
		f, _ := v.Float64()
		d := f - meanF
		sumSq += d * d
	}
	stdDev := math.Sqrt(sumSq / float64(n))
	if stdDev == 0 {
		return money.Zero, true
	}
	latest, _ := series[len(series)-1].Float64()
	return money.FromFloat((latest - meanF) / stdDev), true
}
