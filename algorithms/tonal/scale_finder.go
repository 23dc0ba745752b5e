package tonal

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/RyanBlaney/sonido-scales/algorithms/chroma"
	"github.com/RyanBlaney/sonido-scales/algorithms/common"
	"github.com/RyanBlaney/sonido-scales/algorithms/stats"
	"github.com/RyanBlaney/sonido-scales/logging"
)

// CorrelationMethod selects how candidate correlations are computed
type CorrelationMethod int

const (
	// MethodDirect correlates the histogram with every rotated profile separately
	MethodDirect CorrelationMethod = iota

	// MethodSpectral correlates all twelve rotations of a template at once via FFT
	MethodSpectral
)

// DefaultTolerance is the score difference below which two candidates tie
const DefaultTolerance = 1e-9

// ScaleFinderParams contains parameters for scale finding
type ScaleFinderParams struct {
	Method        CorrelationMethod `json:"method"`
	Tolerance     float64           `json:"tolerance"`      // Scores within this distance tie
	MaxCandidates int               `json:"max_candidates"` // Ranked candidates to keep in results (0 = all)

	// Break ties between equally correlated candidates in favour of the
	// longest-held pitch class as root, before falling back to root/catalog order
	PreferLongestHeldRoot bool `json:"prefer_longest_held_root"`
}

// ScaleCandidate is one (root, template) pair with its correlation score
type ScaleCandidate struct {
	Root     chroma.PitchClass `json:"root"`
	Template ScaleTemplate     `json:"-"`
	Name     string            `json:"name"`  // e.g. "D dorian"
	Score    float64           `json:"score"` // -Inf when undefined
}

// ScaleEstimationResult contains the winning scale plus diagnostics
type ScaleEstimationResult struct {
	Scale      *Scale            `json:"-"`
	Candidates []ScaleCandidate  `json:"candidates"` // Best first, then by descending score
	Histogram  chroma.Histogram  `json:"histogram"`
	Method     CorrelationMethod `json:"method"`

	// Clarity is (best - runner-up) / best, where the runner-up is the best
	// candidate with a different pitch class set. 0 when undefined.
	Clarity    float64 `json:"clarity"`
	Degenerate bool    `json:"degenerate"` // Histogram had no variance; scale chosen by tie-break

	// Entropy is the normalized Shannon entropy of the histogram: 0 when all
	// time is spent on one pitch class, 1 when spread evenly over all twelve
	Entropy float64 `json:"entropy"`
}

// ScaleFinder estimates scales from pitch/duration observations.
// It holds no mutable state and is safe for concurrent use.
type ScaleFinder struct {
	params ScaleFinderParams
	logger logging.Logger
}

// DefaultScaleFinderParams returns the default parameters
func DefaultScaleFinderParams() ScaleFinderParams {
	return ScaleFinderParams{
		Method:                MethodDirect,
		Tolerance:             DefaultTolerance,
		MaxCandidates:         5,
		PreferLongestHeldRoot: false,
	}
}

// NewScaleFinder creates a scale finder with default parameters
func NewScaleFinder() *ScaleFinder {
	return NewScaleFinderWithParams(DefaultScaleFinderParams())
}

// NewScaleFinderWithParams creates a scale finder with custom parameters.
// Out-of-range values are replaced by their defaults.
func NewScaleFinderWithParams(params ScaleFinderParams) *ScaleFinder {
	defaults := DefaultScaleFinderParams()

	if params.Method != MethodDirect && params.Method != MethodSpectral {
		params.Method = defaults.Method
	}
	if params.Tolerance < 0 || math.IsNaN(params.Tolerance) || math.IsInf(params.Tolerance, 0) {
		params.Tolerance = defaults.Tolerance
	}
	if params.MaxCandidates < 0 {
		params.MaxCandidates = defaults.MaxCandidates
	}

	return &ScaleFinder{
		params: params,
		logger: logging.WithFields(logging.Fields{
			"component": "scale_finder",
			"method":    params.Method.String(),
		}),
	}
}

// FindScale estimates the scale of pitches (any octave) held for durations,
// using the default finder
func FindScale(pitches []int, durations []float64) (*Scale, error) {
	return NewScaleFinder().FindScale(pitches, durations)
}

// FindScaleFromNames is FindScale for note names such as "Eb4", using the default finder
func FindScaleFromNames(names []string, durations []float64) (*Scale, error) {
	return NewScaleFinder().FindScaleFromNames(names, durations)
}

// FindScale estimates the scale of pitches (any octave) held for durations.
// Fails with an InputError when the sequences are empty, differ in length or
// contain a negative duration.
func (sf *ScaleFinder) FindScale(pitches []int, durations []float64) (*Scale, error) {
	result, err := sf.Analyze(pitches, durations)
	if err != nil {
		return nil, err
	}
	return result.Scale, nil
}

// FindScaleFromNames estimates the scale of named notes held for durations
func (sf *ScaleFinder) FindScaleFromNames(names []string, durations []float64) (*Scale, error) {
	hist, err := chroma.BuildHistogramFromNames(names, durations)
	if err != nil {
		return nil, fmt.Errorf("failed to build pitch class histogram: %w", err)
	}
	return sf.AnalyzeHistogram(hist).Scale, nil
}

// Analyze builds the histogram and returns the full estimation result
func (sf *ScaleFinder) Analyze(pitches []int, durations []float64) (*ScaleEstimationResult, error) {
	hist, err := chroma.BuildHistogram(pitches, durations)
	if err != nil {
		return nil, fmt.Errorf("failed to build pitch class histogram: %w", err)
	}
	return sf.AnalyzeHistogram(hist), nil
}

// AnalyzeHistogram correlates hist against every (root, template) candidate
// and selects the best one.
//
// Candidates are enumerated root-major (C first), then in catalog order. A
// candidate only displaces the current best when it scores higher by more
// than the tolerance, so ties go to the lower root and then the earlier
// catalog entry. Undefined correlations score -Inf; if every candidate is
// undefined the first one (C, first template) wins and the result is
// flagged Degenerate.
func (sf *ScaleFinder) AnalyzeHistogram(hist chroma.Histogram) *ScaleEstimationResult {
	candidates := sf.scoreCandidates(hist)

	bestIdx := 0
	for i := 1; i < len(candidates); i++ {
		if candidates[i].Score > candidates[bestIdx].Score+sf.params.Tolerance {
			bestIdx = i
		}
	}

	degenerate := math.IsInf(candidates[bestIdx].Score, -1)

	if sf.params.PreferLongestHeldRoot && !degenerate {
		bestIdx = sf.preferLongestHeld(candidates, bestIdx, hist.Dominant())
	}

	best := candidates[bestIdx]
	scale := newScoredScale(best.Root, best.Template, best.Score, degenerate)

	if degenerate {
		sf.logger.Warn("Pitch class histogram has no variance, scale chosen by tie-break only", logging.Fields{
			"total_duration": hist.Total(),
			"scale":          scale.Name(),
		})
	}

	result := &ScaleEstimationResult{
		Scale:      scale,
		Candidates: sf.rankCandidates(candidates, bestIdx),
		Histogram:  hist,
		Method:     sf.params.Method,
		Clarity:    sf.calculateClarity(candidates, bestIdx),
		Degenerate: degenerate,
	}
	result.Entropy, _ = stats.NormalizedEntropy(hist[:])

	sf.logger.Debug("Scale estimation completed", logging.Fields{
		"scale":      scale.Name(),
		"family":     scale.Family(),
		"score":      scale.Score(),
		"clarity":    result.Clarity,
		"entropy":    result.Entropy,
		"degenerate": degenerate,
	})

	return result
}

// scoreCandidates returns all 12 x |catalog| candidates in enumeration order
func (sf *ScaleFinder) scoreCandidates(hist chroma.Histogram) []ScaleCandidate {
	// scores[t][root]
	scores := make([][chroma.NumPitchClasses]float64, len(catalog))
	for t, template := range catalog {
		switch sf.params.Method {
		case MethodSpectral:
			scores[t] = correlateSpectral(hist, template)
		default:
			scores[t] = correlateDirect(hist, template)
		}
	}

	candidates := make([]ScaleCandidate, 0, chroma.NumPitchClasses*len(catalog))
	for root := chroma.PitchClass(0); root < chroma.NumPitchClasses; root++ {
		for t, template := range catalog {
			candidates = append(candidates, ScaleCandidate{
				Root:     root,
				Template: template,
				Name:     root.Name() + " " + template.Name(),
				Score:    scores[t][root],
			})
		}
	}

	return candidates
}

func correlateDirect(hist chroma.Histogram, template ScaleTemplate) [chroma.NumPitchClasses]float64 {
	var scores [chroma.NumPitchClasses]float64
	for root := chroma.PitchClass(0); root < chroma.NumPitchClasses; root++ {
		profile := template.Profile(root)
		r, ok := stats.PearsonCorrelation(hist[:], profile[:])
		if !ok {
			r = math.Inf(-1)
		}
		scores[root] = r
	}
	return scores
}

func correlateSpectral(hist chroma.Histogram, template ScaleTemplate) [chroma.NumPitchClasses]float64 {
	var scores [chroma.NumPitchClasses]float64

	profile := template.Profile(0)
	r, ok := stats.CircularPearsonCorrelation(hist[:], profile[:])
	for root := range scores {
		if ok {
			scores[root] = r[root]
		} else {
			scores[root] = math.Inf(-1)
		}
	}

	return scores
}

// preferLongestHeld picks, among candidates tied with bestIdx, the first one
// rooted on the dominant pitch class. bestIdx is kept when none is.
func (sf *ScaleFinder) preferLongestHeld(candidates []ScaleCandidate, bestIdx int, dominant chroma.PitchClass) int {
	bestScore := candidates[bestIdx].Score
	for i, c := range candidates {
		if c.Root == dominant && common.ApproxEqual(c.Score, bestScore, sf.params.Tolerance) {
			return i
		}
	}
	return bestIdx
}

// rankCandidates puts the winner first, followed by the rest in descending
// score order (enumeration order among equal scores)
func (sf *ScaleFinder) rankCandidates(candidates []ScaleCandidate, bestIdx int) []ScaleCandidate {
	ranked := make([]ScaleCandidate, 0, len(candidates))
	ranked = append(ranked, candidates[bestIdx])
	for i, c := range candidates {
		if i != bestIdx {
			ranked = append(ranked, c)
		}
	}

	rest := ranked[1:]
	sort.SliceStable(rest, func(i, j int) bool {
		return rest[i].Score > rest[j].Score
	})

	if sf.params.MaxCandidates > 0 && len(ranked) > sf.params.MaxCandidates {
		ranked = ranked[:sf.params.MaxCandidates]
	}

	return ranked
}

// calculateClarity compares the winner with the best candidate that has a
// different pitch class set; rotations of the winner would always tie it
func (sf *ScaleFinder) calculateClarity(candidates []ScaleCandidate, bestIdx int) float64 {
	best := candidates[bestIdx]
	if math.IsInf(best.Score, -1) || best.Score <= 0 {
		return 0.0
	}

	bestProfile := best.Template.Profile(best.Root)
	runnerUp := math.Inf(-1)
	for _, c := range candidates {
		if c.Template.Profile(c.Root) == bestProfile {
			continue
		}
		runnerUp = math.Max(runnerUp, c.Score)
	}

	if math.IsInf(runnerUp, -1) {
		return 0.0
	}

	return common.Clamp((best.Score-runnerUp)/best.Score, 0.0, 1.0)
}

// GetParameters returns the finder's parameters
func (sf *ScaleFinder) GetParameters() ScaleFinderParams {
	return sf.params
}

// String returns the method name
func (m CorrelationMethod) String() string {
	switch m {
	case MethodDirect:
		return "direct"
	case MethodSpectral:
		return "spectral"
	default:
		return "unknown"
	}
}

// ParseCorrelationMethod parses "direct" or "spectral", ignoring case and
// surrounding space
func ParseCorrelationMethod(name string) (CorrelationMethod, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "direct":
		return MethodDirect, nil
	case "spectral":
		return MethodSpectral, nil
	default:
		return MethodDirect, common.NewInputError("method", "unknown correlation method %q", name)
	}
}
