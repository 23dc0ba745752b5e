package stats

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/RyanBlaney/sonido-scales/algorithms/common"
)

// NormalizeToProbabilities converts non-negative weights to probabilities.
// ok is false when the weights sum to zero or hold a non-finite value.
func NormalizeToProbabilities(weights []float64) (probabilities []float64, ok bool) {
	if len(weights) == 0 || !common.IsFinite(weights) {
		return nil, false
	}

	probabilities = common.NormalizeByMaxAbs(weights)
	total := floats.Sum(probabilities)
	if total <= 0 {
		return nil, false
	}
	floats.Scale(1.0/total, probabilities)

	return probabilities, true
}

// ShannonEntropy computes H(X) = -∑ p(x) * log2(p(x)) in bits
func ShannonEntropy(probabilities []float64) float64 {
	return stat.Entropy(probabilities) / math.Ln2
}

// NormalizedEntropy returns the Shannon entropy of weights divided by its
// maximum log2(n), so 0 means all weight on one bin and 1 means uniform.
// ok is false for empty or all-zero weights.
func NormalizedEntropy(weights []float64) (float64, bool) {
	probabilities, ok := NormalizeToProbabilities(weights)
	if !ok {
		return 0.0, false
	}
	if len(probabilities) == 1 {
		return 0.0, true
	}

	h := ShannonEntropy(probabilities) / math.Log2(float64(len(probabilities)))
	return common.Clamp(h, 0.0, 1.0), true
}
