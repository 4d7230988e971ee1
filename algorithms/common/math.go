// Package common provides small numeric helpers and the fixed-capacity
// ring buffer shared by the analyzers.
package common

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Clamp limits value to [lo, hi]
func Clamp(value, lo, hi float64) float64 {
	if value < lo {
		return lo
	}
	if value > hi {
		return hi
	}
	return value
}

// Mean calculates the arithmetic mean of a slice using gonum
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0.0
	}
	return stat.Mean(data, nil)
}

// Variance calculates the sample variance of a slice using gonum
func Variance(data []float64) float64 {
	if len(data) < 2 {
		return 0.0
	}
	return stat.Variance(data, nil)
}

// StandardDeviation calculates the sample standard deviation
func StandardDeviation(data []float64) float64 {
	if len(data) < 2 {
		return 0.0
	}
	return math.Sqrt(Variance(data))
}

// Median returns the middle value of a slice (average of the two middle
// values for even lengths). The input is not modified.
func Median(data []float64) float64 {
	n := len(data)
	if n == 0 {
		return 0.0
	}

	sorted := make([]float64, n)
	copy(sorted, data)
	sort.Float64s(sorted)

	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2.0
}

// RMS calculates root mean square
func RMS(data []float64) float64 {
	if len(data) == 0 {
		return 0.0
	}

	sumSquares := 0.0
	for _, val := range data {
		sumSquares += val * val
	}

	return math.Sqrt(sumSquares / float64(len(data)))
}

// ParabolicPeakOffset refines a discrete peak position using the three
// samples centered on it. The returned offset is in (-1, 1) bins; it is 0
// when the parabola degenerates (flat or non-concave neighborhood).
func ParabolicPeakOffset(y1, y2, y3 float64) float64 {
	denom := 2.0 * (2.0*y2 - y1 - y3)
	if math.Abs(denom) < 1e-12 {
		return 0.0
	}

	offset := (y3 - y1) / denom
	if offset < -1.0 || offset > 1.0 {
		return 0.0
	}
	return offset
}
