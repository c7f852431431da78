package combined

import (
	"math"
	"sort"
)

// NaN-aware aggregation helpers. Consolidated peaks carry NaN where a peak
// was not found in a repeat, so every statistic here ignores NaN and returns
// NaN when no values remain.

func nonNaN(a []float64) []float64 {
	out := make([]float64, 0, len(a))
	for _, v := range a {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

func countNonNaN(a []float64) int {
	n := 0
	for _, v := range a {
		if !math.IsNaN(v) {
			n++
		}
	}
	return n
}

func nanMean(a []float64) float64 {
	vals := nonNaN(a)
	if len(vals) == 0 {
		return math.NaN()
	}
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

// nanStd is the population standard deviation of the non-NaN values.
func nanStd(a []float64) float64 {
	vals := nonNaN(a)
	if len(vals) == 0 {
		return math.NaN()
	}
	mean := nanMean(vals)
	ss := 0.0
	for _, v := range vals {
		d := v - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(vals)))
}

// nanPercentile computes the p-th percentile (0-100) of the non-NaN values
// with linear interpolation between closest ranks.
func nanPercentile(a []float64, p float64) float64 {
	vals := nonNaN(a)
	if len(vals) == 0 {
		return math.NaN()
	}
	sort.Float64s(vals)
	if p <= 0 {
		return vals[0]
	}
	if p >= 100 {
		return vals[len(vals)-1]
	}
	rank := (p / 100) * float64(len(vals)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return vals[lo]
	}
	frac := rank - float64(lo)
	return vals[lo]*(1-frac) + vals[hi]*frac
}

func nanMedian(a []float64) float64 {
	return nanPercentile(a, 50)
}
