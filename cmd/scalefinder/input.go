package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/RyanBlaney/sonido-scales/algorithms/chroma"
)

// readObservations parses "note duration" pairs, one per line. A note is a
// note number of any octave ("60", "-5") or a note name ("Eb4").
// Blank lines and lines starting with '#' are skipped.
func readObservations(r io.Reader) ([]int, []float64, error) {
	var pitches []int
	var durations []float64

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) != 2 {
			return nil, nil, fmt.Errorf("line %d: expected \"note duration\", got %q", lineNo, line)
		}

		pitch, err := parseNote(fields[0])
		if err != nil {
			return nil, nil, fmt.Errorf("line %d: %w", lineNo, err)
		}

		duration, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, nil, fmt.Errorf("line %d: invalid duration %q: %w", lineNo, fields[1], err)
		}

		pitches = append(pitches, pitch)
		durations = append(durations, duration)
	}

	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("failed to read observations: %w", err)
	}

	return pitches, durations, nil
}

func parseNote(field string) (int, error) {
	if n, err := strconv.Atoi(field); err == nil {
		return n, nil
	}

	pc, err := chroma.ParseNoteName(field)
	if err != nil {
		return 0, err
	}
	return int(pc), nil
}
