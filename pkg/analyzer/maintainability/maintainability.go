// Package maintainability derives a bounded maintainability index from
// complexity and size.
package maintainability

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

const (
	// Max is the best possible score.
	Max = 100.0
	// Min is the worst possible score.
	Min = 0.0
)

// Score returns the maintainability index for a unit with cyclomatic
// complexity cc and loc lines of code, in [Min, Max]. Higher is better.
// A unit without lines of code scores Max.
func Score(cc, loc int) float64 {
	if loc <= 0 {
		return Max
	}
	mi := Max - (2*float64(cc) + 5*math.Log2(float64(max(1, loc))))
	return math.Max(Min, math.Min(Max, mi))
}

// Mean returns the arithmetic mean of scores, or Max when there are none.
func Mean(scores []float64) float64 {
	if len(scores) == 0 {
		return Max
	}
	return stat.Mean(scores, nil)
}
