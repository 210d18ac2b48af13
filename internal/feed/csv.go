package feed

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/chidi150c/backtest-core/internal/bar"
	"github.com/chidi150c/backtest-core/internal/money"
)

// LoadCSV reads one instrument/timeframe's OHLCV bars from a CSV file.
// Expected headers (case-insensitive, order-independent): time/timestamp,
// open, high, low, close, volume. Generalizes the teacher's loadCSV
// (backtest.go) from float64 Candle rows to decimal bar.Bar rows for a
// named instrument and timeframe; history input parsing is an external
// collaborator to the core (spec §6), not part of it.
func LoadCSV(path string, instrument bar.InstrumentID, tf bar.Timeframe) ([]bar.Bar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	var out []bar.Bar
	var headers []string
	rowIdx := 0

	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if rowIdx == 0 {
			headers = rec
			rowIdx++
			continue
		}
		rowIdx++

		row := map[string]string{}
		for i, h := range rec {
			if i < len(headers) {
				row[normalizeHeader(headers[i])] = h
			}
		}

		tOpen, err := parseTimeFlexible(firstNonEmpty(row, "time", "timestamp", "t_open", "date"))
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", rowIdx, err)
		}
		o, errO := money.FromString(row["open"])
		h, errH := money.FromString(row["high"])
		l, errL := money.FromString(row["low"])
		c, errC := money.FromString(row["close"])
		v, errV := money.FromString(firstNonEmpty(row, "volume", "vol"))
		if errO != nil || errH != nil || errL != nil || errC != nil {
			return nil, fmt.Errorf("row %d: malformed OHLC", rowIdx)
		}
		if errV != nil {
			v = money.Zero
		}

		out = append(out, bar.Bar{
			Instrument: instrument,
			Timeframe:  tf,
			TOpen:      tOpen,
			Open:       o, High: h, Low: l, Close: c, Volume: v,
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].TOpen.Before(out[j].TOpen) })
	return out, nil
}

func parseTimeFlexible(s string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts.UTC(), nil
	}
	if sec, err := strconv.ParseInt(s, 10, 64); err == nil {
		if sec > 1_000_000_000_000 { // milliseconds
			return time.UnixMilli(sec).UTC(), nil
		}
		return time.Unix(sec, 0).UTC(), nil
	}
	return time.Time{}, fmt.Errorf("bad time: %s", s)
}

func normalizeHeader(h string) string {
	out := make([]byte, 0, len(h))
	for _, r := range h {
		if r >= 'A' && r <= 'Z' {
			r += 'a' - 'A'
		}
		if r == ' ' || r == '\t' {
			continue
		}
		out = append(out, byte(r))
	}
	return string(out)
}

func firstNonEmpty(m map[string]string, keys ...string) string {
	for _, k := range keys {
		if v := m[k]; v != "" {
			return v
		}
	}
	return ""
}
