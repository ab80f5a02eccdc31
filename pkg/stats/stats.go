// Package stats provides statistical utility functions for analyzers.
package stats

import (
	"slices"

	"gonum.org/v1/gonum/stat"
)

// Percentile calculates the p-th percentile of a sorted slice using the
// empirical distribution. The slice must already be sorted in ascending
// order. Returns 0 if the slice is empty.
func Percentile(sorted []float64, p int) float64 {
	if len(sorted) == 0 {
		return 0
	}
	q := float64(min(max(p, 0), 100)) / 100
	return stat.Quantile(q, stat.Empirical, sorted, nil)
}

// Description summarizes a sample.
type Description struct {
	Count int
	Mean  float64
	Max   float64
	P50   float64
	P90   float64
}

// Describe computes count, mean, maximum and the 50th/90th percentiles of
// values. The input is not modified. An empty sample yields zero values.
func Describe(values []float64) Description {
	if len(values) == 0 {
		return Description{}
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	return Description{
		Count: len(sorted),
		Mean:  stat.Mean(sorted, nil),
		Max:   sorted[len(sorted)-1],
		P50:   Percentile(sorted, 50),
		P90:   Percentile(sorted, 90),
	}
}

// Ints converts integer samples for use with Describe.
func Ints(values []int) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = float64(v)
	}
	return out
}
