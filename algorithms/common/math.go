package common

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/stat"
)

// Basic statistical functions shared by the scale algorithms, using gonum for robustness.
// Everything here uses population (not sample) statistics.

// minRelativeStdDev is the standard deviation, relative to the largest
// absolute value, below which a vector is treated as constant
const minRelativeStdDev = 1e-12

// Mean calculates the arithmetic mean of a slice using gonum
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0.0
	}
	return stat.Mean(data, nil)
}

// PopulationVariance calculates the population variance (divides by N)
func PopulationVariance(data []float64) float64 {
	if len(data) == 0 {
		return 0.0
	}
	return stat.PopVariance(data, nil)
}

// PopulationStdDev calculates the population standard deviation
func PopulationStdDev(data []float64) float64 {
	return math.Sqrt(PopulationVariance(data))
}

// PopulationCovariance calculates the population covariance of two equal-length slices.
// Returns 0 when the lengths differ or the slices are empty.
func PopulationCovariance(a, b []float64) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0.0
	}

	meanA := Mean(a)
	meanB := Mean(b)

	sum := 0.0
	for i := range a {
		sum += (a[i] - meanA) * (b[i] - meanB)
	}

	return sum / float64(len(a))
}

// IsConstant reports whether data has (numerically) zero spread.
// The test is relative to the largest absolute value, so scaling every element
// by the same factor never changes the answer. All-zero data is constant;
// data holding NaN or an infinity is not.
func IsConstant(data []float64) bool {
	if len(data) < 2 {
		return true
	}
	if !IsFinite(data) {
		return false
	}
	if MaxAbs(data) == 0 {
		return true
	}

	return PopulationStdDev(NormalizeByMaxAbs(data)) <= minRelativeStdDev
}

// IsFinite reports whether every element is neither NaN nor infinite
func IsFinite(data []float64) bool {
	for _, v := range data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// MaxAbs returns the largest absolute value in data, 0 for empty input
func MaxAbs(data []float64) float64 {
	return floats.Norm(data, math.Inf(1))
}

// NormalizeByMaxAbs returns a copy of data divided by its largest absolute
// value, so every element lies in [-1, 1]. All-zero or non-finite data is
// copied unchanged.
func NormalizeByMaxAbs(data []float64) []float64 {
	normalized := make([]float64, len(data))
	copy(normalized, data)

	peak := MaxAbs(data)
	if peak == 0 || math.IsInf(peak, 0) || math.IsNaN(peak) {
		return normalized
	}

	// Divide rather than scale by 1/peak: the reciprocal of a subnormal peak overflows
	for i := range normalized {
		normalized[i] /= peak
	}
	return normalized
}

// Center returns a copy of data with its mean subtracted
func Center(data []float64) []float64 {
	centered := make([]float64, len(data))
	copy(centered, data)
	floats.AddConst(-Mean(data), centered)
	return centered
}

// ArgMax returns the index of the first maximal element, or -1 for empty input
func ArgMax(data []float64) int {
	if len(data) == 0 {
		return -1
	}
	return floats.MaxIdx(data)
}

// ApproxEqual reports whether a and b are equal within an absolute tolerance.
// Equal infinities compare equal.
func ApproxEqual(a, b, tolerance float64) bool {
	if a == b {
		return true
	}
	return scalar.EqualWithinAbs(a, b, tolerance)
}

// Clamp limits value to [lo, hi]
func Clamp(value, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, value))
}
