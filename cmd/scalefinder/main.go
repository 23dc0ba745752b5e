// Command scalefinder reads "note duration" pairs and prints the best
// matching scale from the Aebersold syllabus.
//
//	printf '65 1\n67 1\n69 1\n70 1\n72 2\n' | scalefinder
package main

import (
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/RyanBlaney/sonido-scales/algorithms/tonal"
	"github.com/RyanBlaney/sonido-scales/config"
	"github.com/RyanBlaney/sonido-scales/logging"
)

func main() {
	cfg := config.Load()

	inputPath := flag.String("input", "", "file with one \"note duration\" pair per line (default stdin)")
	method := flag.String("method", cfg.Finder.Method.String(), "correlation method: direct|spectral")
	candidates := flag.Int("candidates", cfg.Finder.MaxCandidates, "number of ranked candidates to print")
	longestHeld := flag.Bool("longest-held", cfg.Finder.PreferLongestHeldRoot, "break ties in favour of the longest-held note as root")
	flag.Parse()

	logging.SetLevel(cfg.LogLevel)
	logger := logging.WithFields(logging.Fields{"component": "scalefinder"})

	for _, key := range cfg.Invalid {
		logger.Warn("Ignoring invalid environment value, using default", logging.Fields{"key": key})
	}

	params, err := finderParams(cfg.Finder, *method, *candidates, *longestHeld)
	if err != nil {
		logger.Fatal(err, "Invalid -method flag")
	}

	var input io.Reader = os.Stdin
	if *inputPath != "" {
		f, err := os.Open(*inputPath)
		if err != nil {
			logger.Fatal(err, "Failed to open input", logging.Fields{"path": *inputPath})
		}
		defer f.Close()
		input = f
	}

	pitches, durations, err := readObservations(input)
	if err != nil {
		logger.Fatal(err, "Failed to read observations")
	}

	result, err := tonal.NewScaleFinderWithParams(params).Analyze(pitches, durations)
	if err != nil {
		logger.Fatal(err, "Failed to find scale")
	}

	printResult(os.Stdout, result)
}

// finderParams overlays command line flags on the configured parameters
func finderParams(base tonal.ScaleFinderParams, method string, candidates int, longestHeld bool) (tonal.ScaleFinderParams, error) {
	m, err := tonal.ParseCorrelationMethod(method)
	if err != nil {
		return base, err
	}

	params := base
	params.Method = m
	params.MaxCandidates = candidates
	params.PreferLongestHeldRoot = longestHeld
	return params, nil
}

func printResult(w io.Writer, result *tonal.ScaleEstimationResult) {
	scale := result.Scale

	fmt.Fprintf(w, "scale:   %s (%s)\n", scale.Name(), scale.ChordFamily())
	fmt.Fprintf(w, "notes:   %s\n", strings.Join(scale.Notes(), " "))
	fmt.Fprintf(w, "score:   %s\n", formatScore(scale.Score()))
	fmt.Fprintf(w, "clarity: %.3f\n", result.Clarity)
	fmt.Fprintf(w, "entropy: %.3f\n", result.Entropy)
	if result.Degenerate {
		fmt.Fprintln(w, "warning: histogram has no variance, scale chosen by tie-break")
	}

	if len(result.Candidates) > 1 {
		fmt.Fprintln(w, "candidates:")
		for i, c := range result.Candidates {
			fmt.Fprintf(w, "  %2d. %-32s %s\n", i+1, c.Name, formatScore(c.Score))
		}
	}
}

func formatScore(score float64) string {
	if math.IsInf(score, -1) {
		return "undefined"
	}
	return fmt.Sprintf("%.4f", score)
}
