package tonal

import (
	"fmt"
	"slices"

	"github.com/RyanBlaney/sonido-scales/algorithms/chroma"
)

// ChordFamily groups scales by the chord quality they are played over
type ChordFamily string

const (
	FamilyMajor          ChordFamily = "major"
	FamilyDominant7th    ChordFamily = "dominant_7th"
	FamilyMinor          ChordFamily = "minor"
	FamilyHalfDiminished ChordFamily = "half_diminished"
	FamilyDiminished     ChordFamily = "diminished"
)

// ScaleTemplate is a named scale shape: interval offsets from a root of 0.
// Values are immutable; Intervals returns a copy.
type ScaleTemplate struct {
	name      string
	family    ChordFamily
	intervals []int
}

// ModeRelation describes how one template is a mode of another
type ModeRelation struct {
	Mode          int `json:"mode"`          // 1-based mode number
	Transposition int `json:"transposition"` // Semitones from the mode's root up to this root
}

// catalog is the Aebersold scale syllabus in enumeration order.
// Enumeration order is part of the tie-break and must not change.
var catalog = mustBuildCatalog([]ScaleTemplate{
	{"major", FamilyMajor, []int{0, 2, 4, 5, 7, 9, 11}},
	{"major pentatonic", FamilyMajor, []int{0, 2, 4, 7, 9}},
	{"lydian", FamilyMajor, []int{0, 2, 4, 6, 7, 9, 11}},
	{"bebop major", FamilyMajor, []int{0, 2, 4, 5, 7, 8, 9, 11}},
	{"harmonic major", FamilyMajor, []int{0, 2, 4, 5, 7, 8, 11}},
	{"lydian augmented", FamilyMajor, []int{0, 2, 4, 6, 8, 9, 11}},
	{"augmented", FamilyMajor, []int{0, 3, 4, 7, 8, 11}},
	{"sixth mode harmonic minor", FamilyMajor, []int{0, 3, 4, 6, 7, 9, 11}},
	{"blues", FamilyMajor, []int{0, 3, 5, 6, 7, 10}},
	{"dominant 7th", FamilyDominant7th, []int{0, 2, 4, 5, 7, 9, 10}},
	{"bebop dominant 7th", FamilyDominant7th, []int{0, 2, 4, 5, 7, 9, 10, 11}},
	{"Spanish / Jewish", FamilyDominant7th, []int{0, 1, 4, 5, 7, 8, 10}},
	{"lydian dominant 7th", FamilyDominant7th, []int{0, 2, 4, 6, 7, 9, 10}},
	{"Hindu", FamilyDominant7th, []int{0, 2, 4, 5, 7, 8, 10}},
	{"whole tone", FamilyDominant7th, []int{0, 2, 4, 6, 8, 10}},
	{"diminished dominant 7th", FamilyDominant7th, []int{0, 1, 3, 4, 6, 7, 9, 10}},
	{"diminished whole tone", FamilyDominant7th, []int{0, 1, 3, 4, 6, 8, 10}},
	{"dorian", FamilyMinor, []int{0, 2, 3, 5, 7, 9, 10}},
	{"minor pentatonic", FamilyMinor, []int{0, 3, 5, 7, 10}},
	{"bebop minor", FamilyMinor, []int{0, 2, 3, 4, 5, 7, 9, 10}},
	{"melodic minor", FamilyMinor, []int{0, 2, 3, 5, 7, 9, 11}},
	{"bebop minor 2", FamilyMinor, []int{0, 2, 3, 5, 7, 8, 9, 11}},
	{"harmonic minor", FamilyMinor, []int{0, 2, 3, 5, 7, 8, 11}},
	{"diminished minor", FamilyMinor, []int{0, 2, 3, 5, 6, 8, 9, 11}},
	{"phrygian", FamilyMinor, []int{0, 1, 3, 5, 7, 8, 10}},
	{"aeolian", FamilyMinor, []int{0, 2, 3, 5, 7, 8, 10}},
	{"locrian", FamilyHalfDiminished, []int{0, 1, 3, 5, 6, 8, 10}},
	{"locrian sharp2", FamilyHalfDiminished, []int{0, 2, 3, 5, 6, 8, 10}},
	{"bebop half-diminished", FamilyHalfDiminished, []int{0, 1, 3, 5, 6, 7, 8, 10}},
	{"diminished 8-tone", FamilyDiminished, []int{0, 2, 3, 5, 6, 8, 9, 11}},
	{"phrygian major", FamilyMinor, []int{0, 1, 4, 5, 7, 8, 10}},
})

// mustBuildCatalog validates the static syllabus; bad data is a programming error
func mustBuildCatalog(templates []ScaleTemplate) []ScaleTemplate {
	seen := make(map[string]bool, len(templates))
	for _, t := range templates {
		if err := t.validate(); err != nil {
			panic(fmt.Sprintf("tonal: invalid scale template %q: %v", t.name, err))
		}
		if seen[t.name] {
			panic(fmt.Sprintf("tonal: duplicate scale template %q", t.name))
		}
		seen[t.name] = true
	}
	return templates
}

func (t ScaleTemplate) validate() error {
	if t.name == "" {
		return fmt.Errorf("empty name")
	}
	if len(t.intervals) < 2 {
		return fmt.Errorf("need at least two intervals, got %d", len(t.intervals))
	}
	if t.intervals[0] != 0 {
		return fmt.Errorf("intervals must start at the root (0), got %d", t.intervals[0])
	}
	for i, offset := range t.intervals {
		if offset < 0 || offset >= chroma.NumPitchClasses {
			return fmt.Errorf("interval %d out of range [0,11]", offset)
		}
		if i > 0 && offset <= t.intervals[i-1] {
			return fmt.Errorf("intervals must be strictly ascending (%d after %d)", offset, t.intervals[i-1])
		}
	}
	return nil
}

// Syllabus returns every scale template in catalog enumeration order
func Syllabus() []ScaleTemplate {
	return slices.Clone(catalog)
}

// CatalogSize returns the number of scale templates
func CatalogSize() int {
	return len(catalog)
}

// TemplateByName looks up a template by its canonical name
func TemplateByName(name string) (ScaleTemplate, bool) {
	for _, t := range catalog {
		if t.name == name {
			return t, true
		}
	}
	return ScaleTemplate{}, false
}

// Name returns the canonical scale name, e.g. "dorian"
func (t ScaleTemplate) Name() string {
	return t.name
}

// ChordFamily returns the chord family the scale belongs to
func (t ScaleTemplate) ChordFamily() ChordFamily {
	return t.family
}

// Intervals returns the ascending offsets from the root
func (t ScaleTemplate) Intervals() []int {
	return slices.Clone(t.intervals)
}

// Len returns the number of notes in the scale
func (t ScaleTemplate) Len() int {
	return len(t.intervals)
}

// IsZero reports whether t is the zero value rather than a catalog entry
func (t ScaleTemplate) IsZero() bool {
	return t.name == "" && t.intervals == nil
}

// Equal reports whether two templates are the same catalog entry
func (t ScaleTemplate) Equal(other ScaleTemplate) bool {
	return t.name == other.name && slices.Equal(t.intervals, other.intervals)
}

// Profile returns the binary pitch class membership vector of the template
// rotated to root
func (t ScaleTemplate) Profile(root chroma.PitchClass) [chroma.NumPitchClasses]float64 {
	var profile [chroma.NumPitchClasses]float64
	for _, offset := range t.intervals {
		profile[root.Transpose(offset)] = 1.0
	}
	return profile
}

// IntervalPattern returns the semitone steps between consecutive notes,
// wrapping from the last note back to the octave. Major is (2 2 1 2 2 2 1).
func (t ScaleTemplate) IntervalPattern() []int {
	n := len(t.intervals)
	pattern := make([]int, n)
	for i := range t.intervals {
		next := t.intervals[(i+1)%n]
		pattern[i] = (next - t.intervals[i] + chroma.NumPitchClasses) % chroma.NumPitchClasses
	}
	return pattern
}

// ModeOf reports whether other is a rotation (mode) of t. For Dorian against
// Major it returns mode 2, transposition 10: Dorian on D shares the notes of
// Major on C, and C is 10 semitones above D.
func (t ScaleTemplate) ModeOf(other ScaleTemplate) (ModeRelation, bool) {
	mine := t.IntervalPattern()
	theirs := other.IntervalPattern()
	if len(mine) != len(theirs) {
		return ModeRelation{}, false
	}

	for i := range mine {
		if slices.Equal(rotate(mine, i), theirs) {
			return ModeRelation{
				Mode:          i + 1,
				Transposition: (chroma.NumPitchClasses - t.intervals[i]) % chroma.NumPitchClasses,
			}, true
		}
	}

	return ModeRelation{}, false
}

// IsRotationallyEquivalent reports whether other is a mode of t.
// A template is not considered equivalent to itself.
func (t ScaleTemplate) IsRotationallyEquivalent(other ScaleTemplate) bool {
	if t.Equal(other) {
		return false
	}
	_, ok := t.ModeOf(other)
	return ok
}

func rotate(pattern []int, shift int) []int {
	rotated := make([]int, 0, len(pattern))
	rotated = append(rotated, pattern[shift:]...)
	return append(rotated, pattern[:shift]...)
}

func (t ScaleTemplate) String() string {
	return t.name
}
