package melodic

import (
	"fmt"
	"math"
)

// noteNames are the 12 pitch-class names, index 0 = C
var noteNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// Note identifies the tempered semitone nearest a frequency
type Note struct {
	Name       string `json:"name"`
	Octave     int    `json:"octave"`
	MIDI       int    `json:"midi"`
	PitchClass int    `json:"pitch_class"`
}

// String renders the note in scientific pitch notation, e.g. "A4"
func (n Note) String() string {
	return fmt.Sprintf("%s%d", n.Name, n.Octave)
}

// FrequencyToMIDI maps a frequency to the nearest MIDI note number
// (A4 = 440 Hz = 69). Returns -1 for non-positive frequencies.
func FrequencyToMIDI(freq float64) int {
	if freq <= 0 {
		return -1
	}
	return int(math.Round(12.0*math.Log2(freq/440.0) + 69.0))
}

// FrequencyToNote maps a frequency to its nearest tempered note
func FrequencyToNote(freq float64) Note {
	midi := FrequencyToMIDI(freq)
	if midi < 0 {
		return Note{Name: "", Octave: 0, MIDI: -1, PitchClass: -1}
	}

	pc := ((midi % 12) + 12) % 12
	return Note{
		Name:       noteNames[pc],
		Octave:     int(math.Floor(float64(midi)/12.0)) - 1,
		MIDI:       midi,
		PitchClass: pc,
	}
}

// PitchClassName returns the name of a pitch class (0 = C ... 11 = B)
func PitchClassName(pc int) string {
	if pc < 0 || pc > 11 {
		return ""
	}
	return noteNames[pc]
}
