package tonal

import (
	"math"
	"slices"

	"github.com/RyanBlaney/sonido-scales/algorithms/chroma"
	"github.com/RyanBlaney/sonido-scales/algorithms/common"
)

// NotInScale marks a note that is not a member of the scale in diatonic step
// conversions
const NotInScale = -1

// Scale is a scale template rooted on a pitch class, optionally carrying the
// correlation score that selected it. Scale values are immutable.
type Scale struct {
	root       chroma.PitchClass
	template   ScaleTemplate
	score      float64
	degenerate bool
}

// NewScale roots template on root (reduced modulo 12)
func NewScale(root chroma.PitchClass, template ScaleTemplate) *Scale {
	return &Scale{
		root:     chroma.FromPitch(int(root)),
		template: template,
	}
}

// NewScaleFromName looks up a catalog template by name and roots it on a note name,
// e.g. NewScaleFromName("Bb", "dorian")
func NewScaleFromName(root, templateName string) (*Scale, error) {
	pc, err := chroma.ParseNoteName(root)
	if err != nil {
		return nil, err
	}

	template, ok := TemplateByName(templateName)
	if !ok {
		return nil, common.NewInputError("scale template", "unknown scale template %q", templateName)
	}

	return NewScale(pc, template), nil
}

func newScoredScale(root chroma.PitchClass, template ScaleTemplate, score float64, degenerate bool) *Scale {
	return &Scale{
		root:       root,
		template:   template,
		score:      score,
		degenerate: degenerate,
	}
}

// Root returns the root pitch class
func (s *Scale) Root() chroma.PitchClass {
	return s.root
}

// RootName returns the root's note name, e.g. "A#"
func (s *Scale) RootName() string {
	return s.root.Name()
}

// Template returns the scale template
func (s *Scale) Template() ScaleTemplate {
	return s.template
}

// Family returns the template's canonical name, e.g. "major" or "dorian"
func (s *Scale) Family() string {
	return s.template.Name()
}

// ChordFamily returns the chord family grouping of the template
func (s *Scale) ChordFamily() ChordFamily {
	return s.template.ChordFamily()
}

// Score returns the correlation that selected this scale.
// It is -Inf when the input histogram had no variance (see Degenerate).
func (s *Scale) Score() float64 {
	return s.score
}

// Degenerate reports whether the scale was chosen by tie-break alone because
// correlation was undefined for every candidate
func (s *Scale) Degenerate() bool {
	return s.degenerate || math.IsInf(s.score, -1)
}

// Len returns the number of notes in the scale
func (s *Scale) Len() int {
	return s.template.Len()
}

// NoteNumbers returns the scale's pitch classes in ascending order from the root
func (s *Scale) NoteNumbers() []int {
	numbers := make([]int, 0, s.template.Len())
	for _, offset := range s.template.intervals {
		numbers = append(numbers, int(s.root.Transpose(offset)))
	}
	return numbers
}

// Notes returns the scale's note names in ascending order from the root,
// e.g. F major is [F G A A# C D E]
func (s *Scale) Notes() []string {
	names := make([]string, 0, s.template.Len())
	for _, offset := range s.template.intervals {
		names = append(names, s.root.Transpose(offset).Name())
	}
	return names
}

// Profile returns the binary pitch class membership vector
func (s *Scale) Profile() [chroma.NumPitchClasses]float64 {
	return s.template.Profile(s.root)
}

// Contains reports whether pc belongs to the scale
func (s *Scale) Contains(pc chroma.PitchClass) bool {
	_, ok := s.StepOf(pc)
	return ok
}

// StepOf returns the 0-indexed diatonic scale step of pc
func (s *Scale) StepOf(pc chroma.PitchClass) (int, bool) {
	step := slices.Index(s.NoteNumbers(), int(chroma.FromPitch(int(pc))))
	if step < 0 {
		return NotInScale, false
	}
	return step, true
}

// NoteAt returns the note name at a 0-indexed scale step
func (s *Scale) NoteAt(step int) (string, bool) {
	if step < 0 || step >= s.template.Len() {
		return "", false
	}
	return s.root.Transpose(s.template.intervals[step]).Name(), true
}

// NotesToDiatonicScaleSteps converts note names to 0-indexed scale steps.
// Notes outside the scale map to NotInScale; only malformed names are errors.
//
// Against F major, [C D Eb F D Bb C] gives [4 5 -1 0 5 3 4].
func (s *Scale) NotesToDiatonicScaleSteps(names []string) ([]int, error) {
	classes, err := chroma.ParseNoteNames(names)
	if err != nil {
		return nil, err
	}

	steps := make([]int, len(classes))
	for i, pc := range classes {
		steps[i], _ = s.StepOf(pc)
	}
	return steps, nil
}

// PitchesToDiatonicScaleSteps converts note numbers of any octave to
// 0-indexed scale steps, NotInScale for non-members
func (s *Scale) PitchesToDiatonicScaleSteps(pitches []int) []int {
	steps := make([]int, len(pitches))
	for i, pitch := range pitches {
		steps[i], _ = s.StepOf(chroma.FromPitch(pitch))
	}
	return steps
}

// SameNotes reports whether other contains exactly the same pitch classes
func (s *Scale) SameNotes(other *Scale) bool {
	return s.Profile() == other.Profile()
}

// EquivalentScales returns every other catalog scale built from exactly the
// same pitch classes, in catalog order then root order. For C major this
// includes F lydian, G dominant 7th, D dorian, E phrygian, A aeolian, B locrian.
func (s *Scale) EquivalentScales() []*Scale {
	profile := s.Profile()
	equivalent := make([]*Scale, 0)

	for _, template := range catalog {
		if template.Len() != s.template.Len() {
			continue
		}
		for root := chroma.PitchClass(0); root < chroma.NumPitchClasses; root++ {
			if root == s.root && template.Equal(s.template) {
				continue
			}
			if template.Profile(root) == profile {
				equivalent = append(equivalent, NewScale(root, template))
			}
		}
	}

	return equivalent
}

// Equal reports whether both scales share root and template
func (s *Scale) Equal(other *Scale) bool {
	return other != nil && s.root == other.root && s.template.Equal(other.template)
}

// Name returns the human-readable name, e.g. "A# dorian"
func (s *Scale) Name() string {
	return s.root.Name() + " " + s.template.Name()
}

func (s *Scale) String() string {
	return s.Name()
}
