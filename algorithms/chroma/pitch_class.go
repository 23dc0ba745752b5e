package chroma

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/RyanBlaney/sonido-scales/algorithms/common"
)

// NumPitchClasses is the number of chromatic pitch classes in an octave
const NumPitchClasses = 12

// PitchClass represents a pitch class (0=C, 1=C#, ..., 11=B)
type PitchClass int

// pitchClassNames uses sharp spellings for every black key
var pitchClassNames = [NumPitchClasses]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// naturals maps note letters to their pitch class
var naturals = map[rune]int{
	'C': 0, 'D': 2, 'E': 4, 'F': 5, 'G': 7, 'A': 9, 'B': 11,
}

// FromPitch reduces a note number of any octave (MIDI or otherwise, negative
// included) to its pitch class
func FromPitch(pitch int) PitchClass {
	return PitchClass(((pitch % NumPitchClasses) + NumPitchClasses) % NumPitchClasses)
}

// Valid reports whether pc lies in [0,11]
func (pc PitchClass) Valid() bool {
	return pc >= 0 && pc < NumPitchClasses
}

// Transpose moves pc up by semitones (negative moves down), wrapping at the octave
func (pc PitchClass) Transpose(semitones int) PitchClass {
	return FromPitch(int(pc) + semitones)
}

// Name returns the canonical (sharp) spelling, e.g. 10 -> "A#"
func (pc PitchClass) Name() string {
	return pitchClassNames[FromPitch(int(pc))]
}

func (pc PitchClass) String() string {
	return pc.Name()
}

// PitchClassNames returns the canonical names indexed by pitch class
func PitchClassNames() []string {
	names := make([]string, NumPitchClasses)
	copy(names, pitchClassNames[:])
	return names
}

// ParseNoteName parses a note name into its pitch class.
//
// Accepted: a letter A-G in either case, any number of sharps ('#', '♯') or
// flats ('b', '♭'), and an optional octave number which is ignored
// ("D#5", "Db2", "c", "Bb-1"). Accidentals wrap around the octave, so "Cb"
// is B and "E#" is F.
func ParseNoteName(name string) (PitchClass, error) {
	pc, reason := parseNoteName(name)
	if reason != "" {
		return 0, common.NewInputError("note name", "%s", reason)
	}
	return pc, nil
}

// parseNoteName returns a non-empty reason when name cannot be parsed
func parseNoteName(name string) (PitchClass, string) {
	s := strings.TrimSpace(name)
	if s == "" {
		return 0, "empty note name"
	}

	runes := []rune(s)
	base, ok := naturals[unicode.ToUpper(runes[0])]
	if !ok {
		return 0, fmt.Sprintf("%q does not start with a note letter A-G", name)
	}

	offset := 0
	i := 1
accidentals:
	for ; i < len(runes); i++ {
		switch runes[i] {
		case '#', '♯':
			offset++
		case 'b', '♭':
			offset--
		default:
			break accidentals
		}
	}

	if !validOctave(runes[i:]) {
		return 0, fmt.Sprintf("%q has an unrecognised suffix %q", name, string(runes[i:]))
	}

	return FromPitch(base + offset), ""
}

// validOctave accepts an empty suffix or an optionally negative integer
func validOctave(suffix []rune) bool {
	if len(suffix) == 0 {
		return true
	}
	if suffix[0] == '-' {
		suffix = suffix[1:]
		if len(suffix) == 0 {
			return false
		}
	}
	for _, r := range suffix {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// ParseNoteNames parses every name, reporting the index of the first failure
func ParseNoteNames(names []string) ([]PitchClass, error) {
	classes := make([]PitchClass, len(names))
	for i, name := range names {
		pc, reason := parseNoteName(name)
		if reason != "" {
			return nil, common.NewElementInputError("notes", i, "%s", reason)
		}
		classes[i] = pc
	}
	return classes, nil
}
