// Package feed implements the history feed and scheduler (spec §4.1):
// merging multiple per-(instrument, timeframe) bar streams into one
// globally chronological tick sequence, and driving the per-bar strategy
// invocation once each stream's warm-up has elapsed.
package feed

import (
	"fmt"
	"sort"
	"time"

	"github.com/chidi150c/backtest-core/internal/bar"
	"github.com/chidi150c/backtest-core/internal/coreerr"
)

// GapPolicy governs how the feed reacts to a missing bar inside an
// expected grid (spec §4.1).
type GapPolicy string

const (
	GapSkip  GapPolicy = "skip"
	GapAbort GapPolicy = "abort"
)

// Tick is one globally ordered unit of work: a single bar from a single
// stream, plus its position in the merged sequence.
type Tick struct {
	Key         bar.Key
	Bar         bar.Bar
	GlobalIndex int
}

// Feed holds the per-(instrument, timeframe) input streams, each
// pre-sorted ascending by t_open with no duplicates or overlaps (spec
// §4.1 input contract). The feed does not repair violations. Under
// GapAbort, Merge returns a DataGap error for the first bar that does not
// open where the previous one closed (a gap, duplicate or overlap); under
// GapSkip such bars are passed through and nothing is reported.
type Feed struct {
	streams map[bar.Key][]bar.Bar
	order   []bar.Key
}

// New constructs an empty Feed.
func New() *Feed {
	return &Feed{streams: map[bar.Key][]bar.Bar{}}
}

// AddStream registers one instrument/timeframe's bar sequence.
func (f *Feed) AddStream(key bar.Key, bars []bar.Bar) {
	if _, ok := f.streams[key]; !ok {
		f.order = append(f.order, key)
	}
	f.streams[key] = bars
}

// Slice returns a new Feed containing only bars with t_open in
// [start, end) for every stream, preserving stream order. Used by the
// orchestrator to carve train/test windows for walk-forward evaluation
// (spec §4.8) without mutating the original feed.
func (f *Feed) Slice(start, end time.Time) *Feed {
	out := New()
	for _, key := range f.order {
		bars := f.streams[key]
		lo := sort.Search(len(bars), func(i int) bool { return !bars[i].TOpen.Before(start) })
		hi := sort.Search(len(bars), func(i int) bool { return !bars[i].TOpen.Before(end) })
		if lo < hi {
			sliced := make([]bar.Bar, hi-lo)
			copy(sliced, bars[lo:hi])
			out.AddStream(key, sliced)
		} else {
			out.AddStream(key, nil)
		}
	}
	return out
}

// Bounds returns the earliest t_open and latest t_close across all
// streams, used to derive walk-forward window boundaries.
func (f *Feed) Bounds() (start, end time.Time) {
	for _, key := range f.order {
		bars := f.streams[key]
		if len(bars) == 0 {
			continue
		}
		if start.IsZero() || bars[0].TOpen.Before(start) {
			start = bars[0].TOpen
		}
		if last := bars[len(bars)-1].TClose(); last.After(end) {
			end = last
		}
	}
	return start, end
}

// Merge produces the single chronological tick sequence (spec §4.1):
// ties on t_open are broken by (timeframe_seconds ascending,
// instrument_id), and each stream is checked for an internal gap in its
// own timeframe grid. With GapAbort, the first detected gap returns a
// DataGap error; with GapSkip (default) gaps are tolerated and merging
// continues.
func (f *Feed) Merge(policy GapPolicy) ([]Tick, error) {
	type cursor struct {
		key  bar.Key
		bars []bar.Bar
		pos  int
	}
	cursors := make([]*cursor, 0, len(f.order))
	for _, k := range f.order {
		bs := f.streams[k]
		if err := validateStream(k, bs, policy); err != nil {
			return nil, err
		}
		cursors = append(cursors, &cursor{key: k, bars: bs})
	}

	var ticks []Tick
	for {
		var best *cursor
		for _, c := range cursors {
			if c.pos >= len(c.bars) {
				continue
			}
			if best == nil || less(c.key, c.bars[c.pos], best.key, best.bars[best.pos]) {
				best = c
			}
		}
		if best == nil {
			break
		}
		ticks = append(ticks, Tick{Key: best.key, Bar: best.bars[best.pos], GlobalIndex: len(ticks)})
		best.pos++
	}

	sort.SliceStable(ticks, func(i, j int) bool {
		return less(ticks[i].Key, ticks[i].Bar, ticks[j].Key, ticks[j].Bar)
	})
	for i := range ticks {
		ticks[i].GlobalIndex = i
	}
	return ticks, nil
}

// less implements the total order (t_open, timeframe_seconds_ascending,
// instrument_id) from spec §4.1.
func less(ak bar.Key, a bar.Bar, bk bar.Key, b bar.Bar) bool {
	if !a.TOpen.Equal(b.TOpen) {
		return a.TOpen.Before(b.TOpen)
	}
	if ak.Timeframe != bk.Timeframe {
		return ak.Timeframe < bk.Timeframe
	}
	return ak.Instrument < bk.Instrument
}

func validateStream(key bar.Key, bars []bar.Bar, policy GapPolicy) error {
	for i, b := range bars {
		if err := b.Validate(); err != nil {
			return coreerr.New(coreerr.MalformedBar, err.Error())
		}
		if i == 0 {
			continue
		}
		expected := bars[i-1].TClose()
		if !b.TOpen.Equal(expected) {
			if policy == GapAbort {
				return coreerr.New(coreerr.DataGap, fmt.Sprintf(
					"gap in %s: expected bar open %s, got %s", key.Instrument, expected, b.TOpen))
			}
		}
	}
	return nil
}
