package chroma

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/RyanBlaney/sonido-scales/algorithms/common"
)

// Histogram is a duration-weighted pitch class distribution.
// Index = pitch class, value = total duration of every note in that class.
type Histogram [NumPitchClasses]float64

// BuildHistogram accumulates durations per pitch class.
//
// pitches may be in any octave, including negative numbers. durations must be
// parallel to pitches, non-negative and finite; both must be non-empty. The
// summed duration must also stay finite.
func BuildHistogram(pitches []int, durations []float64) (Histogram, error) {
	if err := validateSequences(len(pitches), durations); err != nil {
		return Histogram{}, err
	}

	var hist Histogram
	for i, pitch := range pitches {
		hist[FromPitch(pitch)] += durations[i]
	}

	if err := hist.checkTotal(); err != nil {
		return Histogram{}, err
	}

	return hist, nil
}

// BuildHistogramFromNames is BuildHistogram for note names such as "Eb4"
func BuildHistogramFromNames(names []string, durations []float64) (Histogram, error) {
	if err := validateSequences(len(names), durations); err != nil {
		return Histogram{}, err
	}

	classes, err := ParseNoteNames(names)
	if err != nil {
		return Histogram{}, err
	}

	var hist Histogram
	for i, pc := range classes {
		hist[pc] += durations[i]
	}

	if err := hist.checkTotal(); err != nil {
		return Histogram{}, err
	}

	return hist, nil
}

// checkTotal rejects histograms whose summed duration overflows float64
func (h Histogram) checkTotal() error {
	if total := h.Total(); math.IsInf(total, 0) || math.IsNaN(total) {
		return common.NewInputError("durations", "total duration overflows the float64 range")
	}
	return nil
}

func validateSequences(numNotes int, durations []float64) error {
	if numNotes == 0 || len(durations) == 0 {
		return common.NewInputError("notes", "cannot find scale for passage with zero notes")
	}

	if numNotes != len(durations) {
		return common.NewInputError("durations",
			"must have exactly one duration for each note (got %d notes, %d durations)", numNotes, len(durations))
	}

	for i, d := range durations {
		if math.IsNaN(d) || math.IsInf(d, 0) {
			return common.NewElementInputError("durations", i, "duration %v is not finite", d)
		}
		if d < 0 {
			return common.NewElementInputError("durations", i, "duration %v is negative", d)
		}
	}

	return nil
}

// Slice returns the histogram as a fresh slice
func (h Histogram) Slice() []float64 {
	values := make([]float64, NumPitchClasses)
	copy(values, h[:])
	return values
}

// Total returns the summed duration over all pitch classes
func (h Histogram) Total() float64 {
	return floats.Sum(h[:])
}

// Dominant returns the pitch class held longest (the lowest one on ties)
func (h Histogram) Dominant() PitchClass {
	return PitchClass(common.ArgMax(h[:]))
}

// IsFlat reports whether every pitch class carries the same weight, in which
// case correlation against any profile is undefined
func (h Histogram) IsFlat() bool {
	return common.IsConstant(h[:])
}
