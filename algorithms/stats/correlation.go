package stats

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"

	"github.com/RyanBlaney/sonido-scales/algorithms/common"
)

// PearsonCorrelation calculates the Pearson correlation coefficient of two
// equal-length vectors using population statistics.
//
// Both vectors are normalized by their largest absolute value first, so the
// result does not depend on their scale and squared deviations cannot overflow.
//
// ok is false when the coefficient is undefined: fewer than two values,
// mismatched lengths, a non-finite element, or a vector with zero variance.
func PearsonCorrelation(a, b []float64) (r float64, ok bool) {
	if !correlatable(a, b) {
		return 0.0, false
	}

	a = common.NormalizeByMaxAbs(a)
	b = common.NormalizeByMaxAbs(b)

	cov := common.PopulationCovariance(a, b)
	r = cov / (common.PopulationStdDev(a) * common.PopulationStdDev(b))

	return clampCorrelation(r), true
}

// CircularPearsonCorrelation correlates a against every circular rotation of
// template in one pass. The result has len(a) entries; entry k is the
// correlation of a with template rotated up by k positions, i.e. the vector
// whose element i is template[(i-k) mod n].
//
// Covariances for all shifts come from the circular cross-correlation
// IFFT(FFT(a) * conj(FFT(template))) of the mean-removed vectors; rotation
// does not change the template's standard deviation.
//
// ok is false under the same conditions as PearsonCorrelation.
func CircularPearsonCorrelation(a, template []float64) (r []float64, ok bool) {
	if !correlatable(a, template) {
		return nil, false
	}

	n := len(a)
	a = common.NormalizeByMaxAbs(a)
	template = common.NormalizeByMaxAbs(template)

	spectrumA := fft.FFTReal(common.Center(a))
	spectrumT := fft.FFTReal(common.Center(template))

	product := make([]complex128, n)
	for k := range product {
		product[k] = spectrumA[k] * cmplx.Conj(spectrumT[k])
	}

	crossCorr := fft.IFFT(product)
	norm := float64(n) * common.PopulationStdDev(a) * common.PopulationStdDev(template)

	r = make([]float64, n)
	for k := range r {
		r[k] = clampCorrelation(real(crossCorr[k]) / norm)
	}

	return r, true
}

func correlatable(a, b []float64) bool {
	if len(a) != len(b) || len(a) < 2 {
		return false
	}
	if !common.IsFinite(a) || !common.IsFinite(b) {
		return false
	}
	return !common.IsConstant(a) && !common.IsConstant(b)
}

// clampCorrelation keeps rounding error from pushing a coefficient outside [-1, 1]
func clampCorrelation(correlation float64) float64 {
	if math.IsNaN(correlation) {
		return correlation
	}
	return common.Clamp(correlation, -1.0, 1.0)
}
