package tonal

import (
	"bytes"
	"errors"
	"math"
	"math/rand"
	"strings"
	"sync"
	"testing"

	"github.com/RyanBlaney/sonido-scales/algorithms/chroma"
	"github.com/RyanBlaney/sonido-scales/algorithms/common"
	"github.com/RyanBlaney/sonido-scales/logging"
)

// profileObservations turns a membership profile into one observation per pitch class
func profileObservations(profile [chroma.NumPitchClasses]float64) ([]int, []float64) {
	pitches := make([]int, chroma.NumPitchClasses)
	durations := make([]float64, chroma.NumPitchClasses)
	for pc := range profile {
		pitches[pc] = 60 + pc
		durations[pc] = profile[pc]
	}
	return pitches, durations
}

func TestFindScaleRoundTrip(t *testing.T) {
	for _, method := range []CorrelationMethod{MethodDirect, MethodSpectral} {
		params := DefaultScaleFinderParams()
		params.Method = method
		sf := NewScaleFinderWithParams(params)

		for root := chroma.PitchClass(0); root < chroma.NumPitchClasses; root++ {
			for _, tmpl := range Syllabus() {
				expected := NewScale(root, tmpl)
				pitches, durations := profileObservations(expected.Profile())

				got, err := sf.FindScale(pitches, durations)
				if err != nil {
					t.Fatalf("%s %s: %v", method, expected.Name(), err)
				}

				if math.Abs(got.Score()-1.0) > 1e-9 {
					t.Errorf("%s %s: score = %v, want 1", method, expected.Name(), got.Score())
				}
				if !got.SameNotes(expected) {
					t.Errorf("%s %s: found %s with different notes", method, expected.Name(), got.Name())
				}

				// Of all candidates with this exact note set, the first enumerated wins
				first := firstWithProfile(expected.Profile())
				if !got.Equal(first) {
					t.Errorf("%s %s: found %s, want %s", method, expected.Name(), got.Name(), first.Name())
				}
			}
		}
	}
}

func firstWithProfile(profile [chroma.NumPitchClasses]float64) *Scale {
	for root := chroma.PitchClass(0); root < chroma.NumPitchClasses; root++ {
		for _, tmpl := range catalog {
			if tmpl.Profile(root) == profile {
				return NewScale(root, tmpl)
			}
		}
	}
	return nil
}

func TestFindScaleTieBreak(t *testing.T) {
	tests := []struct {
		name      string
		notes     []string
		durations []float64
		want      string
	}{
		{"C harmonic minor is unique at C", []string{"C", "D", "Eb", "F", "G", "Ab", "B"}, nil, "C harmonic minor"},
		{"D dorian resolves to C major", []string{"D", "E", "F", "G", "A", "B", "C"}, nil, "C major"},
		{"F major resolves to C dominant 7th", []string{"F", "G", "A", "Bb", "C", "D", "E"}, nil, "C dominant 7th"},
		{"phrygian major resolves to Spanish / Jewish", []string{"C", "Db", "E", "F", "G", "Ab", "Bb"}, nil, "C Spanish / Jewish"},
		{"diminished 8-tone resolves to diminished minor", []string{"C", "D", "Eb", "F", "Gb", "Ab", "A", "B"}, nil, "C diminished minor"},
		{"single C picks C major pentatonic", []string{"C"}, []float64{1}, "C major pentatonic"},
		{"single D picks lowest root", []string{"D4"}, []float64{2.5}, "C major pentatonic"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			durations := tt.durations
			if durations == nil {
				durations = make([]float64, len(tt.notes))
				for i := range durations {
					durations[i] = 1
				}
			}

			scale, err := FindScaleFromNames(tt.notes, durations)
			if err != nil {
				t.Fatalf("FindScaleFromNames: %v", err)
			}
			if scale.Name() != tt.want {
				t.Errorf("FindScaleFromNames(%v) = %s, want %s", tt.notes, scale.Name(), tt.want)
			}
		})
	}
}

func TestPreferLongestHeldRoot(t *testing.T) {
	params := DefaultScaleFinderParams()
	params.PreferLongestHeldRoot = true
	sf := NewScaleFinderWithParams(params)

	tests := []struct {
		name      string
		notes     []string
		durations []float64
		plain     string
		preferred string
	}{
		{
			"F held longest",
			[]string{"F", "G", "A", "Bb", "C", "D", "E"},
			[]float64{2, 1, 1, 1, 1, 1, 1},
			"C dominant 7th",
			"F major",
		},
		{
			"single D",
			[]string{"D"},
			[]float64{1},
			"C major pentatonic",
			"D major pentatonic",
		},
		{
			"equal durations keep the default",
			[]string{"C", "D", "E", "F", "G", "A", "B"},
			[]float64{1, 1, 1, 1, 1, 1, 1},
			"C major",
			"C major",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plain, err := FindScaleFromNames(tt.notes, tt.durations)
			if err != nil {
				t.Fatalf("FindScaleFromNames: %v", err)
			}
			if plain.Name() != tt.plain {
				t.Errorf("default finder = %s, want %s", plain.Name(), tt.plain)
			}

			preferred, err := sf.FindScaleFromNames(tt.notes, tt.durations)
			if err != nil {
				t.Fatalf("FindScaleFromNames: %v", err)
			}
			if preferred.Name() != tt.preferred {
				t.Errorf("longest-held finder = %s, want %s", preferred.Name(), tt.preferred)
			}
			if math.Abs(preferred.Score()-plain.Score()) > DefaultTolerance {
				t.Errorf("scores differ: %v vs %v", preferred.Score(), plain.Score())
			}
		})
	}
}

func TestFindScaleDegenerate(t *testing.T) {
	var out, errOut bytes.Buffer
	previous := logging.GetGlobalLogger()
	logging.SetGlobalLogger(logging.NewDefaultLoggerWithWriters(&out, &errOut))
	t.Cleanup(func() { logging.SetGlobalLogger(previous) })

	allTwelve := make([]int, chroma.NumPitchClasses)
	tenths := make([]float64, chroma.NumPitchClasses)
	for i := range allTwelve {
		allTwelve[i] = 48 + i
		tenths[i] = 0.1
	}

	tests := []struct {
		name      string
		pitches   []int
		durations []float64
	}{
		{"zero durations", []int{60, 62, 64}, []float64{0, 0, 0}},
		{"all twelve equal", allTwelve, tenths},
	}

	for _, method := range []CorrelationMethod{MethodDirect, MethodSpectral} {
		params := DefaultScaleFinderParams()
		params.Method = method
		sf := NewScaleFinderWithParams(params)

		for _, tt := range tests {
			errOut.Reset()

			result, err := sf.Analyze(tt.pitches, tt.durations)
			if err != nil {
				t.Fatalf("%s %s: %v", method, tt.name, err)
			}

			scale := result.Scale
			if !math.IsInf(scale.Score(), -1) {
				t.Errorf("%s %s: score = %v, want -Inf", method, tt.name, scale.Score())
			}
			if !scale.Degenerate() || !result.Degenerate {
				t.Errorf("%s %s: not flagged degenerate", method, tt.name)
			}
			if scale.Name() != "C major" {
				t.Errorf("%s %s: scale = %s, want C major", method, tt.name, scale.Name())
			}
			if tt.name == "all twelve equal" && math.Abs(result.Entropy-1) > 1e-12 {
				t.Errorf("%s %s: entropy = %v, want 1", method, tt.name, result.Entropy)
			}
			if result.Clarity != 0 {
				t.Errorf("%s %s: clarity = %v, want 0", method, tt.name, result.Clarity)
			}
			if !strings.Contains(errOut.String(), "[WARN]") {
				t.Errorf("%s %s: expected a warning, got %q", method, tt.name, errOut.String())
			}
		}
	}
}

func TestFindScaleInputErrors(t *testing.T) {
	tests := []struct {
		name      string
		pitches   []int
		durations []float64
		field     string
	}{
		{"empty", []int{}, []float64{}, "notes"},
		{"mismatched", []int{60, 62}, []float64{1}, "durations"},
		{"negative", []int{60, 62}, []float64{1, -1}, "durations"},
		{"overflowing pitch class", []int{60, 72}, []float64{math.MaxFloat64, math.MaxFloat64}, "durations"},
		{"overflowing total", []int{60, 62}, []float64{math.MaxFloat64, math.MaxFloat64}, "durations"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scale, err := FindScale(tt.pitches, tt.durations)
			if scale != nil {
				t.Errorf("scale = %v, want nil", scale)
			}
			if !errors.Is(err, common.ErrInvalidInput) {
				t.Fatalf("error = %v, want ErrInvalidInput", err)
			}

			var inputErr *common.InputError
			if !errors.As(err, &inputErr) {
				t.Fatalf("error = %v, want *InputError", err)
			}
			if inputErr.Field != tt.field {
				t.Errorf("InputError.Field = %q, want %q", inputErr.Field, tt.field)
			}
		})
	}

	if _, err := FindScaleFromNames([]string{"C", "Z"}, []float64{1, 1}); !common.IsInputError(err) {
		t.Errorf("malformed note name error = %v, want InputError", err)
	}
}

func TestFindScaleIgnoresDurationUnit(t *testing.T) {
	pitches := []int{65, 67, 69, 70, 72, 74, 76, 77}
	durations := []float64{2, 1, 1, 1, 1, 1, 1, 1}

	for _, method := range []CorrelationMethod{MethodDirect, MethodSpectral} {
		params := DefaultScaleFinderParams()
		params.Method = method
		sf := NewScaleFinderWithParams(params)

		base, err := sf.FindScale(pitches, durations)
		if err != nil {
			t.Fatalf("%s: %v", method, err)
		}

		for _, unit := range []float64{1e-300, 1e-13, 1e-3, 60, 1e160, 1e200, 1e300} {
			scaled := make([]float64, len(durations))
			for i, d := range durations {
				scaled[i] = d * unit
			}

			got, err := sf.FindScale(pitches, scaled)
			if err != nil {
				t.Fatalf("%s unit %g: %v", method, unit, err)
			}
			if got.Degenerate() {
				t.Errorf("%s unit %g: flagged degenerate", method, unit)
			}
			if !got.Equal(base) {
				t.Errorf("%s unit %g: found %s, want %s", method, unit, got.Name(), base.Name())
			}
			if math.Abs(got.Score()-base.Score()) > 1e-9 {
				t.Errorf("%s unit %g: score = %v, want %v", method, unit, got.Score(), base.Score())
			}
		}
	}
}

func randomObservations(rng *rand.Rand) ([]int, []float64) {
	n := 1 + rng.Intn(40)
	pitches := make([]int, n)
	durations := make([]float64, n)
	for i := range pitches {
		pitches[i] = rng.Intn(160) - 16
		durations[i] = rng.Float64() * 3
	}
	return pitches, durations
}

func TestFindScaleRandomInputs(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	sf := NewScaleFinder()

	for trial := 0; trial < 200; trial++ {
		pitches, durations := randomObservations(rng)

		first, err := sf.FindScale(pitches, durations)
		if err != nil {
			t.Fatalf("trial %d: %v", trial, err)
		}
		if !first.Root().Valid() {
			t.Errorf("trial %d: root %d out of range", trial, first.Root())
		}
		if _, ok := TemplateByName(first.Family()); !ok {
			t.Errorf("trial %d: family %q not in catalog", trial, first.Family())
		}
		if first.Score() < -1 || first.Score() > 1 {
			t.Errorf("trial %d: score %v outside [-1, 1]", trial, first.Score())
		}

		again, err := sf.FindScale(pitches, durations)
		if err != nil {
			t.Fatalf("trial %d: %v", trial, err)
		}
		if !again.Equal(first) || again.Score() != first.Score() {
			t.Errorf("trial %d: %s (%v) then %s (%v)", trial, first.Name(), first.Score(), again.Name(), again.Score())
		}
	}
}

func TestSpectralMatchesDirect(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	direct := NewScaleFinderWithParams(ScaleFinderParams{Method: MethodDirect, Tolerance: DefaultTolerance})
	spectral := NewScaleFinderWithParams(ScaleFinderParams{Method: MethodSpectral, Tolerance: DefaultTolerance})

	for trial := 0; trial < 50; trial++ {
		pitches, durations := randomObservations(rng)
		hist, err := chroma.BuildHistogram(pitches, durations)
		if err != nil {
			t.Fatalf("trial %d: %v", trial, err)
		}

		a := direct.scoreCandidates(hist)
		b := spectral.scoreCandidates(hist)
		for i := range a {
			if a[i].Name != b[i].Name {
				t.Fatalf("trial %d: enumeration differs at %d: %s vs %s", trial, i, a[i].Name, b[i].Name)
			}
			if !common.ApproxEqual(a[i].Score, b[i].Score, 1e-9) {
				t.Errorf("trial %d %s: direct %v, spectral %v", trial, a[i].Name, a[i].Score, b[i].Score)
			}
		}

		if !direct.AnalyzeHistogram(hist).Scale.SameNotes(spectral.AnalyzeHistogram(hist).Scale) {
			t.Errorf("trial %d: direct and spectral disagree on the winning notes", trial)
		}
	}
}

func TestAnalyzeCandidates(t *testing.T) {
	pitches := []int{62, 64, 65, 67, 69, 71, 72, 74, 65, 62}
	durations := []float64{2, 1, 1, 0.5, 1, 0.5, 0.5, 2, 1, 1}

	result, err := NewScaleFinder().Analyze(pitches, durations)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if len(result.Candidates) != 5 {
		t.Fatalf("len(Candidates) = %d, want 5", len(result.Candidates))
	}

	best := result.Candidates[0]
	if best.Root != result.Scale.Root() || !best.Template.Equal(result.Scale.Template()) {
		t.Errorf("Candidates[0] = %s, want %s", best.Name, result.Scale.Name())
	}
	if best.Score != result.Scale.Score() {
		t.Errorf("Candidates[0].Score = %v, want %v", best.Score, result.Scale.Score())
	}
	for i := 2; i < len(result.Candidates); i++ {
		if result.Candidates[i].Score > result.Candidates[i-1].Score {
			t.Errorf("Candidates not in descending order at %d", i)
		}
	}

	if result.Clarity < 0 || result.Clarity > 1 {
		t.Errorf("Clarity = %v, want [0, 1]", result.Clarity)
	}
	if result.Degenerate {
		t.Error("result should not be degenerate")
	}
	if result.Entropy <= 0 || result.Entropy >= 1 {
		t.Errorf("Entropy = %v, want (0, 1)", result.Entropy)
	}
	if result.Method != MethodDirect {
		t.Errorf("Method = %v, want direct", result.Method)
	}
	if result.Histogram[chroma.FromPitch(62)] != 5 {
		t.Errorf("Histogram[D] = %v, want 5", result.Histogram[chroma.FromPitch(62)])
	}

	all := NewScaleFinderWithParams(ScaleFinderParams{MaxCandidates: 0, Tolerance: DefaultTolerance})
	full := all.AnalyzeHistogram(result.Histogram)
	if want := chroma.NumPitchClasses * CatalogSize(); len(full.Candidates) != want {
		t.Errorf("len(Candidates) = %d, want %d", len(full.Candidates), want)
	}
}

func TestClarity(t *testing.T) {
	unique, err := FindScaleFromNames([]string{"C", "D", "Eb", "F", "G", "Ab", "B"}, []float64{1, 1, 1, 1, 1, 1, 1})
	if err != nil {
		t.Fatal(err)
	}

	result := NewScaleFinder().AnalyzeHistogram(chroma.Histogram(unique.Profile()))
	if result.Clarity <= 0 {
		t.Errorf("Clarity = %v, want > 0 for an exact match", result.Clarity)
	}
}

func TestNewScaleFinderWithParamsSanitizes(t *testing.T) {
	sf := NewScaleFinderWithParams(ScaleFinderParams{
		Method:        CorrelationMethod(9),
		Tolerance:     math.NaN(),
		MaxCandidates: -3,
	})

	params := sf.GetParameters()
	defaults := DefaultScaleFinderParams()
	if params.Method != defaults.Method {
		t.Errorf("Method = %v, want %v", params.Method, defaults.Method)
	}
	if params.Tolerance != defaults.Tolerance {
		t.Errorf("Tolerance = %v, want %v", params.Tolerance, defaults.Tolerance)
	}
	if params.MaxCandidates != defaults.MaxCandidates {
		t.Errorf("MaxCandidates = %d, want %d", params.MaxCandidates, defaults.MaxCandidates)
	}
}

func TestParseCorrelationMethod(t *testing.T) {
	for _, m := range []CorrelationMethod{MethodDirect, MethodSpectral} {
		got, err := ParseCorrelationMethod(m.String())
		if err != nil || got != m {
			t.Errorf("ParseCorrelationMethod(%q) = %v, %v", m.String(), got, err)
		}
	}

	for _, name := range []string{"Direct", " SPECTRAL", "spectral\n"} {
		if _, err := ParseCorrelationMethod(name); err != nil {
			t.Errorf("ParseCorrelationMethod(%q) error = %v", name, err)
		}
	}

	if _, err := ParseCorrelationMethod("fourier"); !common.IsInputError(err) {
		t.Errorf("unknown method error = %v, want InputError", err)
	}
	if got := CorrelationMethod(7).String(); got != "unknown" {
		t.Errorf("String() = %q, want unknown", got)
	}
}

func TestFindScaleConcurrent(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	type input struct {
		pitches   []int
		durations []float64
	}

	inputs := make([]input, 16)
	want := make([]*Scale, len(inputs))
	sf := NewScaleFinder()
	for i := range inputs {
		inputs[i].pitches, inputs[i].durations = randomObservations(rng)
		scale, err := sf.FindScale(inputs[i].pitches, inputs[i].durations)
		if err != nil {
			t.Fatal(err)
		}
		want[i] = scale
	}

	var wg sync.WaitGroup
	got := make([]*Scale, len(inputs))
	for i := range inputs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got[i], _ = sf.FindScale(inputs[i].pitches, inputs[i].durations)
		}(i)
	}
	wg.Wait()

	for i := range inputs {
		if !got[i].Equal(want[i]) {
			t.Errorf("input %d: concurrent %v, sequential %v", i, got[i], want[i])
		}
	}
}
