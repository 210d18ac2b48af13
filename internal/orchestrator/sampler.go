package orchestrator

import "math/rand"

// Sampler produces concrete parameter samples from a Space (spec §4.8:
// grid, random, or Latin-hypercube).
type Sampler interface {
	Sample(space Space, n int, seed int64) []Sample
}

// GridSampler enumerates the Cartesian product of every dimension's
// domain. n is ignored; the grid's size is determined by the space.
type GridSampler struct{}

func (GridSampler) Sample(space Space, n int, seed int64) []Sample {
	domains := make([][]any, len(space))
	for i, d := range space {
		domains[i] = domainValues(d)
	}
	var combos [][]any
	var build func(i int, cur []any)
	build = func(i int, cur []any) {
		if i == len(domains) {
			row := make([]any, len(cur))
			copy(row, cur)
			combos = append(combos, row)
			return
		}
		for _, v := range domains[i] {
			build(i+1, append(cur, v))
		}
	}
	build(0, nil)

	out := make([]Sample, len(combos))
	for i, combo := range combos {
		params := map[string]any{}
		for j, d := range space {
			params[d.Name] = combo[j]
		}
		out[i] = Sample{Params: params, Seed: seed}
	}
	return out
}

// RandomSampler draws n independent samples, one value per dimension per
// sample, from a seeded source (spec §4.8 "Determinism").
type RandomSampler struct{}

func (RandomSampler) Sample(space Space, n int, seed int64) []Sample {
	rng := rand.New(rand.NewSource(seed))
	out := make([]Sample, n)
	for i := 0; i < n; i++ {
		params := map[string]any{}
		for _, d := range space {
			params[d.Name] = drawOne(d, rng)
		}
		out[i] = Sample{Params: params, Seed: seed}
	}
	return out
}

// LatinHypercubeSampler stratifies numeric dimensions (Range,
// Distribution) into n equal-width strata of [Min, Max], one uniform draw
// per stratum, then shuffles the per-dimension assignment so dimensions
// are not correlated. A Distribution dimension's Mean/StdDev and a Range
// dimension's Step are not used here. Fixed and Discrete dimensions fall
// back to a uniform draw per sample, as they have no continuous
// stratification.
type LatinHypercubeSampler struct{}

func (LatinHypercubeSampler) Sample(space Space, n int, seed int64) []Sample {
	rng := rand.New(rand.NewSource(seed))
	if n <= 0 {
		return nil
	}

	perDim := make([][]any, len(space))
	for di, d := range space {
		switch d.Kind {
		case Range, Distribution:
			strata := make([]float64, n)
			width := (d.Max - d.Min) / float64(n)
			for i := 0; i < n; i++ {
				lo := d.Min + float64(i)*width
				strata[i] = lo + rng.Float64()*width
			}
			rng.Shuffle(n, func(i, j int) { strata[i], strata[j] = strata[j], strata[i] })
			values := make([]any, n)
			for i, v := range strata {
				values[i] = v
			}
			perDim[di] = values
		default:
			values := make([]any, n)
			for i := 0; i < n; i++ {
				values[i] = drawOne(d, rng)
			}
			perDim[di] = values
		}
	}

	out := make([]Sample, n)
	for i := 0; i < n; i++ {
		params := map[string]any{}
		for di, d := range space {
			params[d.Name] = perDim[di][i]
		}
		out[i] = Sample{Params: params, Seed: seed}
	}
	return out
}

func domainValues(d Dimension) []any {
	switch d.Kind {
	case Fixed:
		return []any{d.FixedValue}
	case Discrete:
		return d.Values
	case Range:
		return rangeValues(d)
	default:
		return []any{d.Mean}
	}
}

func drawOne(d Dimension, rng *rand.Rand) any {
	switch d.Kind {
	case Fixed:
		return d.FixedValue
	case Discrete:
		if len(d.Values) == 0 {
			return nil
		}
		return d.Values[rng.Intn(len(d.Values))]
	case Range:
		if d.Step > 0 {
			steps := int((d.Max-d.Min)/d.Step) + 1
			return d.Min + float64(rng.Intn(steps))*d.Step
		}
		return d.Min + rng.Float64()*(d.Max-d.Min)
	case Distribution:
		v := d.Mean + rng.NormFloat64()*d.StdDev
		if d.Max > d.Min {
			if v < d.Min {
				v = d.Min
			}
			if v > d.Max {
				v = d.Max
			}
		}
		return v
	default:
		return nil
	}
}
